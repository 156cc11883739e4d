package testkit

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	"intouch/internal/database"
	dbconfig "intouch/pkg/database"
)

// Logger returns the debug logger used across tests.
func Logger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}

// OpenTestManager opens a migrated SQLite database in t.TempDir() and closes
// it when the test ends.
func OpenTestManager(t testing.TB) *database.Manager {
	t.Helper()
	cfg := dbconfig.DefaultConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "intouch-test.db")

	manager, err := database.NewManager(cfg, Logger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	require.NoError(t, manager.Migrate(context.Background()))
	return manager
}
