package types

import (
	"encoding/json"
	"time"
)

// Inbound operation names. The heartbeat keeps the name clients already use.
const (
	OpSendMessage = "SendMessage"
	OpTypingStart = "TypingStart"
	OpTypingStop  = "TypingStop"
	OpMarkAsRead  = "MarkAsRead"
	OpHeartbeat   = "UpdateLastActive"
)

// Outbound event names.
const (
	EventUserConnected          = "UserConnected"
	EventUserDisconnected       = "UserDisconnected"
	EventUserActive             = "UserActive"
	EventReceiveMessage         = "ReceiveMessage"
	EventMessageSent            = "MessageSent"
	EventUpdateConversationList = "UpdateConversationList"
	EventUserTyping             = "UserTyping"
	EventMessageRead            = "MessageRead"
	EventClearUnreadCount       = "ClearUnreadCountForConversation"
	EventOperationFailed        = "OperationFailed"
)

// Frame is the envelope of every inbound text frame.
type Frame struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Event is the envelope of every outbound text frame.
type Event struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
	Payload   any    `json:"payload"`
}

// NewEvent builds an outbound event that is not a reply to a request.
func NewEvent(eventType string, payload any) Event {
	return Event{Type: eventType, Payload: payload}
}

// Reply builds an outbound event correlated with an inbound request.
func Reply(requestID, eventType string, payload any) Event {
	return Event{Type: eventType, RequestID: requestID, Payload: payload}
}

// Inbound payloads.

type SendMessagePayload struct {
	ReceiverID string `json:"receiver_id"`
	Content    string `json:"content"`
}

type TypingPayload struct {
	ReceiverID string `json:"receiver_id"`
}

type MarkAsReadPayload struct {
	MessageID int64 `json:"message_id"`
}

// Outbound payloads.

type UserPresencePayload struct {
	UserID string `json:"user_id"`
}

type UserActivePayload struct {
	UserID     string    `json:"user_id"`
	LastActive time.Time `json:"last_active"`
}

type ReceiveMessagePayload struct {
	MessageID int64     `json:"message_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	SentAt    time.Time `json:"sent_at"`
}

type MessageSentPayload struct {
	MessageID  int64     `json:"message_id"`
	ReceiverID string    `json:"receiver_id"`
	Content    string    `json:"content"`
	SentAt     time.Time `json:"sent_at"`
}

type UserTypingPayload struct {
	SenderID string `json:"sender_id"`
	IsTyping bool   `json:"is_typing"`
}

type MessageReadPayload struct {
	MessageID int64 `json:"message_id"`
}

type ClearUnreadCountPayload struct {
	SenderID string `json:"sender_id"`
}

// OperationFailedPayload never carries internal error text.
type OperationFailedPayload struct {
	Operation string `json:"operation"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

// Operation failure codes.
const (
	CodeOperationFailed = "operation_failed"
	CodeRateLimited     = "rate_limited"
)
