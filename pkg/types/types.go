package types

import (
	"time"
)

// Message is a direct message between two users.
// Everything except IsRead is immutable once the store has assigned an ID;
// IsRead only ever moves from false to true.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
	IsRead     bool      `json:"is_read"`
}

// ConversationSummary is the derived view of one conversation as seen by one
// of its participants. UserID is the other participant.
type ConversationSummary struct {
	UserID        string     `json:"user_id"`
	LastMessage   string     `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	LastSenderID  string     `json:"last_sender_id,omitempty"`
	UnreadCount   int        `json:"unread_count"`
}

// Presence describes whether a user currently holds a live connection and
// when they were last seen active.
type Presence struct {
	UserID     string    `json:"user_id"`
	Online     bool      `json:"online"`
	LastActive time.Time `json:"last_active"`
}

// PendingEvent is an outbound event parked in a user's fallback mailbox
// because no live connection for the user was known when it was produced.
type PendingEvent struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
