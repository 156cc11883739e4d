//go:generate go run go.uber.org/mock/mockgen -source=database.go -destination=../../internal/mocks/mock_database.go -package=mocks

package interfaces

import (
	"context"
	"time"

	"intouch/pkg/types"
)

// MessageStore is the durable message store. Each call is atomic on its own;
// callers never span a transaction across calls.
type MessageStore interface {
	// CreateMessage persists message and assigns its ID.
	CreateMessage(ctx context.Context, message *types.Message) error

	// GetMessage returns ErrMessageNotFound for unknown IDs.
	GetMessage(ctx context.Context, messageID int64) (*types.Message, error)

	// MarkMessageRead flips is_read for a message addressed to receiverID.
	// It reports true only for the call that performed the transition.
	MarkMessageRead(ctx context.Context, messageID int64, receiverID string) (bool, error)

	// CountUnread counts messages from senderID to receiverID not yet read.
	CountUnread(ctx context.Context, senderID, receiverID string) (int, error)

	// GetLastMessage returns the most recent message between two users, or
	// nil when they never exchanged one.
	GetLastMessage(ctx context.Context, userID, otherUserID string) (*types.Message, error)

	// GetConversation returns up to limit most recent messages between two
	// users in chronological order. limit <= 0 means no limit.
	GetConversation(ctx context.Context, userID, otherUserID string, limit int) ([]*types.Message, error)

	// ListConversationPartners returns every user userID exchanged a message with.
	ListConversationPartners(ctx context.Context, userID string) ([]string, error)
}

// UserStore persists the presence fields of the user record.
type UserStore interface {
	TouchLastActive(ctx context.Context, userID string, at time.Time) error

	// GetLastActive returns the zero time for users never seen.
	GetLastActive(ctx context.Context, userID string) (time.Time, error)
}

// PendingStore is the shared mailbox behind the per-user fallback channel.
type PendingStore interface {
	EnqueuePending(ctx context.Context, event *types.PendingEvent) error

	// DrainPending removes and returns the user's unexpired events in
	// insertion order. An event is returned by at most one call.
	DrainPending(ctx context.Context, userID string, now time.Time) ([]*types.PendingEvent, error)

	// PurgeExpired deletes events that expired before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// DatabaseManager is everything the application needs from persistence.
type DatabaseManager interface {
	MessageStore
	UserStore
	PendingStore

	HealthCheck(ctx context.Context) error
	Close() error
}
