package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", cfg.DSN())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestConfig_DefaultConfig(t *testing.T) {
	req := require.New(t)
	cfg := DefaultConfig()

	req.Equal("./data/intouch.db", cfg.DatabasePath)
	req.Equal(10, cfg.MaxConnections)
	req.Equal(time.Hour, cfg.ConnMaxLifetime)
	req.Equal(10*time.Minute, cfg.ConnMaxIdleTime)
	req.NoError(cfg.Validate())
}

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database path", func(c *Config) { c.DatabasePath = "" }},
		{"zero max connections", func(c *Config) { c.MaxConnections = 0 }},
		{"zero lifetime", func(c *Config) { c.ConnMaxLifetime = 0 }},
		{"zero idle time", func(c *Config) { c.ConnMaxIdleTime = 0 }},
		{"negative busy timeout", func(c *Config) { c.BusyTimeout = -time.Second }},
		{"zero write timeout", func(c *Config) { c.WriteTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_DSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DatabasePath = "/tmp/x.db"
	require.Equal(t, "/tmp/x.db?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on", cfg.DSN())
}

func TestMigrationManager_ApplyEmbedded(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)

	mm := NewMigrationManager(db, Migrations())
	req.NoError(mm.ApplyMigrations(ctx))
	req.NoError(mm.ValidateSchema(ctx))

	versions, err := mm.AppliedVersions(ctx)
	req.NoError(err)
	req.Equal([]string{"001"}, versions)

	// Applying twice is a no-op.
	req.NoError(mm.ApplyMigrations(ctx))
	versions, err = mm.AppliedVersions(ctx)
	req.NoError(err)
	req.Len(versions, 1)
}

func TestMigrationManager_OrdersByVersion(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)

	fsys := fstest.MapFS{
		"002_add_note.sql": {Data: []byte("ALTER TABLE things ADD COLUMN note TEXT;")},
		"001_things.sql":   {Data: []byte("CREATE TABLE things (id INTEGER PRIMARY KEY);")},
		"README.md":        {Data: []byte("ignored")},
	}

	mm := NewMigrationManager(db, fsys)
	req.NoError(mm.ApplyMigrations(ctx))

	versions, err := mm.AppliedVersions(ctx)
	req.NoError(err)
	req.Equal([]string{"001", "002"}, versions)

	_, err = db.ExecContext(ctx, "INSERT INTO things (id, note) VALUES (1, 'ok')")
	req.NoError(err)
}

func TestMigrationManager_FailedMigrationIsNotRecorded(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)

	fsys := fstest.MapFS{
		"001_broken.sql": {Data: []byte("CREATE TABLE oops (")},
	}

	mm := NewMigrationManager(db, fsys)
	req.Error(mm.ApplyMigrations(ctx))

	versions, err := mm.AppliedVersions(ctx)
	req.NoError(err)
	req.Empty(versions)
}

func TestMigrationManager_ValidateSchemaDetectsMissingTable(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	db := openTestDB(t)

	mm := NewMigrationManager(db, Migrations())
	req.NoError(mm.ApplyMigrations(ctx))

	_, err := db.ExecContext(ctx, "DROP TABLE pending_events")
	req.NoError(err)

	err = mm.ValidateSchema(ctx)
	req.Error(err)
	req.Contains(err.Error(), "pending_events")
}
