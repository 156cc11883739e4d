package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	dbconfig "intouch/pkg/database"
	"intouch/pkg/interfaces"
	"intouch/pkg/types"
)

// Manager implements the DatabaseManager interface on SQLite.
// Reads run concurrently on the pool; every write goes through writeLoop.
type Manager struct {
	db           *sql.DB
	config       *dbconfig.Config
	logger       *slog.Logger
	writeChannel chan writeOperation
	shutdown     chan struct{}
	wg           sync.WaitGroup
	closed       bool
	mu           sync.RWMutex
}

var _ interfaces.DatabaseManager = (*Manager)(nil)

type writeOperation struct {
	ctx       context.Context
	operation func(context.Context, *sql.DB) error
	result    chan error
}

// NewManager opens the database and starts the writer goroutine.
// The schema is not touched until Migrate is called.
func NewManager(config *dbconfig.Config, logger *slog.Logger) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}

	if dir := filepath.Dir(config.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(config.MaxConnections)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)
	db.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	if err := applySQLiteOptimizations(db, config.BusyTimeout); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply SQLite optimizations: %w", err)
	}

	manager := &Manager{
		db:           db,
		config:       config,
		logger:       logger.With("component", "database"),
		writeChannel: make(chan writeOperation, 100),
		shutdown:     make(chan struct{}),
	}

	manager.wg.Add(1)
	go manager.writeLoop()

	return manager, nil
}

// Migrate applies the embedded schema migrations and validates the result.
func (m *Manager) Migrate(ctx context.Context) error {
	migrations := dbconfig.NewMigrationManager(m.db, dbconfig.Migrations())
	if err := migrations.ApplyMigrations(ctx); err != nil {
		return err
	}
	return migrations.ValidateSchema(ctx)
}

func (m *Manager) writeLoop() {
	defer m.wg.Done()

	for {
		select {
		case op := <-m.writeChannel:
			if err := op.ctx.Err(); err != nil {
				op.result <- err
				continue
			}
			err := op.operation(op.ctx, m.db)
			if err != nil {
				m.logger.Warn("database write failed", "error", err)
			}
			op.result <- err

		case <-m.shutdown:
			m.logger.Debug("database write loop shutting down")
			return
		}
	}
}

// executeWrite queues a write operation and waits for completion
func (m *Manager) executeWrite(ctx context.Context, operation func(context.Context, *sql.DB) error) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return interfaces.ErrStoreClosed
	}
	m.mu.RUnlock()

	result := make(chan error, 1)
	timeout := time.NewTimer(m.config.WriteTimeout)
	defer timeout.Stop()

	select {
	case m.writeChannel <- writeOperation{ctx: ctx, operation: operation, result: result}:
	case <-timeout.C:
		return errors.New("write operation timeout")
	case <-ctx.Done():
		return ctx.Err()
	case <-m.shutdown:
		return interfaces.ErrStoreClosed
	}

	select {
	case err := <-result:
		return err
	case <-m.shutdown:
		// writeLoop may have exited before taking the operation.
		select {
		case err := <-result:
			return err
		default:
			return interfaces.ErrStoreClosed
		}
	}
}

// CreateMessage stores a message and assigns its ID. SentAt defaults to now.
func (m *Manager) CreateMessage(ctx context.Context, message *types.Message) error {
	if message.SentAt.IsZero() {
		message.SentAt = time.Now()
	}
	message.SentAt = message.SentAt.UTC()

	return m.executeWrite(ctx, func(ctx context.Context, db *sql.DB) error {
		res, err := db.ExecContext(ctx, `
			INSERT INTO messages (sender_id, receiver_id, content, sent_at, is_read)
			VALUES (?, ?, ?, ?, 0)
		`, message.SenderID, message.ReceiverID, message.Content, message.SentAt)
		if err != nil {
			return fmt.Errorf("failed to insert message: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read message id: %w", err)
		}
		message.ID = id
		message.IsRead = false
		return nil
	})
}

const messageColumns = "id, sender_id, receiver_id, content, sent_at, is_read"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*types.Message, error) {
	var msg types.Message
	if err := row.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.SentAt, &msg.IsRead); err != nil {
		return nil, err
	}
	msg.SentAt = msg.SentAt.UTC()
	return &msg, nil
}

// GetMessage retrieves a message by ID
func (m *Manager) GetMessage(ctx context.Context, messageID int64) (*types.Message, error) {
	row := m.db.QueryRowContext(ctx, "SELECT "+messageColumns+" FROM messages WHERE id = ?", messageID)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, interfaces.ErrMessageNotFound
		}
		return nil, fmt.Errorf("failed to query message: %w", err)
	}
	return msg, nil
}

// MarkMessageRead performs the unread to read transition as a single
// conditional update, so concurrent callers see exactly one true.
func (m *Manager) MarkMessageRead(ctx context.Context, messageID int64, receiverID string) (bool, error) {
	var changed bool
	err := m.executeWrite(ctx, func(ctx context.Context, db *sql.DB) error {
		res, err := db.ExecContext(ctx,
			"UPDATE messages SET is_read = 1 WHERE id = ? AND receiver_id = ? AND is_read = 0",
			messageID, receiverID)
		if err != nil {
			return fmt.Errorf("failed to mark message read: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		changed = n == 1
		return nil
	})
	return changed, err
}

// CountUnread counts messages from senderID to receiverID still unread.
func (m *Manager) CountUnread(ctx context.Context, senderID, receiverID string) (int, error) {
	var count int
	err := m.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM messages WHERE sender_id = ? AND receiver_id = ? AND is_read = 0",
		senderID, receiverID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

// GetLastMessage returns the newest message exchanged by the pair, or nil.
func (m *Manager) GetLastMessage(ctx context.Context, userID, otherUserID string) (*types.Message, error) {
	row := m.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY id DESC
		LIMIT 1
	`, userID, otherUserID, otherUserID, userID)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query last message: %w", err)
	}
	return msg, nil
}

// GetConversation returns the pair's newest messages oldest first.
func (m *Manager) GetConversation(ctx context.Context, userID, otherUserID string, limit int) ([]*types.Message, error) {
	query := `
		SELECT ` + messageColumns + ` FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY id DESC
	`
	args := []any{userID, otherUserID, otherUserID, userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := m.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*types.Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	slices.Reverse(messages)
	return messages, nil
}

// ListConversationPartners returns partners ordered by most recent exchange.
func (m *Manager) ListConversationPartners(ctx context.Context, userID string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT CASE WHEN sender_id = ? THEN receiver_id ELSE sender_id END AS partner,
		       MAX(id) AS last_id
		FROM messages
		WHERE sender_id = ? OR receiver_id = ?
		GROUP BY partner
		ORDER BY last_id DESC
	`, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation partners: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var partners []string
	for rows.Next() {
		var partner string
		var lastID int64
		if err := rows.Scan(&partner, &lastID); err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		partners = append(partners, partner)
	}
	return partners, rows.Err()
}

// TouchLastActive creates the user record on first sight.
func (m *Manager) TouchLastActive(ctx context.Context, userID string, at time.Time) error {
	return m.executeWrite(ctx, func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			INSERT INTO users (id, last_active) VALUES (?, ?)
			ON CONFLICT(id) DO UPDATE SET last_active = excluded.last_active
		`, userID, at.UTC())
		if err != nil {
			return fmt.Errorf("failed to touch last active: %w", err)
		}
		return nil
	})
}

// GetLastActive returns the zero time for unknown users.
func (m *Manager) GetLastActive(ctx context.Context, userID string) (time.Time, error) {
	var lastActive time.Time
	err := m.db.QueryRowContext(ctx, "SELECT last_active FROM users WHERE id = ?", userID).Scan(&lastActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to query last active: %w", err)
	}
	return lastActive.UTC(), nil
}

// EnqueuePending parks an event in the user's mailbox.
func (m *Manager) EnqueuePending(ctx context.Context, event *types.PendingEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	event.CreatedAt = event.CreatedAt.UTC()

	return m.executeWrite(ctx, func(ctx context.Context, db *sql.DB) error {
		res, err := db.ExecContext(ctx, `
			INSERT INTO pending_events (user_id, event_type, payload, created_at, expires_at)
			VALUES (?, ?, ?, ?, ?)
		`, event.UserID, event.Type, event.Payload, event.CreatedAt, event.ExpiresAt.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to enqueue pending event: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read pending event id: %w", err)
		}
		event.ID = id
		return nil
	})
}

// DrainPending reads and deletes the mailbox in one transaction.
func (m *Manager) DrainPending(ctx context.Context, userID string, now time.Time) ([]*types.PendingEvent, error) {
	var events []*types.PendingEvent
	err := m.executeWrite(ctx, func(ctx context.Context, db *sql.DB) error {
		events = nil

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, user_id, event_type, payload, created_at, expires_at
			FROM pending_events
			WHERE user_id = ? AND expires_at > ?
			ORDER BY id
		`, userID, now.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to query pending events: %w", err)
		}
		for rows.Next() {
			var evt types.PendingEvent
			var expiresAt int64
			if err := rows.Scan(&evt.ID, &evt.UserID, &evt.Type, &evt.Payload, &evt.CreatedAt, &expiresAt); err != nil {
				_ = rows.Close()
				return fmt.Errorf("failed to scan pending event: %w", err)
			}
			evt.CreatedAt = evt.CreatedAt.UTC()
			evt.ExpiresAt = time.Unix(0, expiresAt).UTC()
			events = append(events, &evt)
		}
		if err := rows.Close(); err != nil {
			return err
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to iterate pending events: %w", err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM pending_events WHERE user_id = ?", userID); err != nil {
			return fmt.Errorf("failed to delete pending events: %w", err)
		}

		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// PurgeExpired deletes mailbox entries whose expiry is not after now.
func (m *Manager) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	err := m.executeWrite(ctx, func(ctx context.Context, db *sql.DB) error {
		res, err := db.ExecContext(ctx, "DELETE FROM pending_events WHERE expires_at <= ?", now.UnixNano())
		if err != nil {
			return fmt.Errorf("failed to purge pending events: %w", err)
		}
		purged, err = res.RowsAffected()
		return err
	})
	return purged, err
}

// HealthCheck validates database connectivity
func (m *Manager) HealthCheck(ctx context.Context) error {
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return interfaces.ErrStoreClosed
	}

	if err := m.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	var count int
	if err := m.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("database read test failed: %w", err)
	}

	return nil
}

// Close stops the writer and closes the pool. Safe to call twice.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	close(m.shutdown)
	m.wg.Wait()

	if err := m.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

func applySQLiteOptimizations(db *sql.DB, busyTimeout time.Duration) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -64000",
		"PRAGMA temp_store = MEMORY",
		"PRAGMA foreign_keys = ON",
		fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds()),
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute pragma %s: %w", pragma, err)
		}
	}

	return nil
}
