// Package chat implements the messaging protocol: per-connection sessions,
// the inbound operations and the events they fan out.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"intouch/internal/auth"
	"intouch/internal/conversation"
	"intouch/internal/delivery"
	"intouch/internal/presence"
	"intouch/pkg/interfaces"
	"intouch/pkg/types"
)

// Config bounds what a client may send.
type Config struct {
	MaxContentRunes    int
	MaxMalformedFrames int
	RateLimit          int
	RateWindow         time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxContentRunes:    4000,
		MaxMalformedFrames: 3,
		RateLimit:          100,
		RateWindow:         time.Minute,
	}
}

// MailboxFlusher hands parked fallback events to a user's new connection.
type MailboxFlusher interface {
	Flush(ctx context.Context, userID string) (int, error)
}

// Handler runs protocol operations. One Handler serves every connection.
type Handler struct {
	store         interfaces.MessageStore
	presence      *presence.Tracker
	deliverer     *delivery.Deliverer
	conversations *conversation.Service
	mailbox       MailboxFlusher
	limiter       *RateLimiter
	config        Config
	logger        *slog.Logger
}

func NewHandler(
	store interfaces.MessageStore,
	tracker *presence.Tracker,
	deliverer *delivery.Deliverer,
	conversations *conversation.Service,
	mailbox MailboxFlusher,
	config Config,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		store:         store,
		presence:      tracker,
		deliverer:     deliverer,
		conversations: conversations,
		mailbox:       mailbox,
		limiter:       NewRateLimiter(config.RateLimit, config.RateWindow),
		config:        config,
		logger:        logger.With("component", "chat"),
	}
}

// Open attributes conn to its user and makes it Connected. Connections
// without an identity are refused and never reach the registry.
func (h *Handler) Open(ctx context.Context, conn interfaces.Connection) (*Session, error) {
	if conn == nil {
		return nil, ErrNilConnection
	}

	sess := newSession(conn)
	if conn.GetUserID() == "" {
		sess.setState(Disconnected)
		return nil, auth.ErrAuthenticationMissing
	}

	if _, err := h.presence.Connected(ctx, conn); err != nil {
		sess.setState(Disconnected)
		return nil, fmt.Errorf("failed to register connection: %w", err)
	}
	sess.setState(Connected)

	h.logger.Debug("session opened", "user_id", sess.UserID(), "connection_id", sess.ConnectionID())

	if h.mailbox != nil {
		if _, err := h.mailbox.Flush(ctx, sess.UserID()); err != nil {
			h.logger.Warn("failed to flush mailbox on connect", "user_id", sess.UserID(), "error", err)
		}
	}
	return sess, nil
}

// Close tears the session down. It always removes the connection from the
// registry and withdraws any typing indicator the connection left standing.
func (h *Handler) Close(ctx context.Context, sess *Session) {
	if sess == nil || !sess.markDisconnected() {
		return
	}
	ctx = context.WithoutCancel(ctx)

	userID := sess.UserID()
	for _, receiverID := range sess.drainTyping() {
		h.deliverer.ToUser(ctx, receiverID, types.NewEvent(types.EventUserTyping, types.UserTypingPayload{
			SenderID: userID,
			IsTyping: false,
		}))
	}

	h.presence.Disconnected(ctx, userID, sess.ConnectionID())
	h.logger.Debug("session closed", "user_id", userID, "connection_id", sess.ConnectionID())
}

// ShouldDisconnect reports whether the client sent too many undecodable
// frames in a row.
func (h *Handler) ShouldDisconnect(sess *Session) bool {
	return h.config.MaxMalformedFrames > 0 && sess.MalformedStreak() >= h.config.MaxMalformedFrames
}

// Dispatch decodes one inbound frame and runs its operation. Panics are
// contained here and reported to the calling connection.
func (h *Handler) Dispatch(ctx context.Context, sess *Session, data []byte) (outcome Outcome) {
	var frame types.Frame
	if err := json.Unmarshal(data, &frame); err != nil || frame.Type == "" {
		sess.recordFrame(false)
		return rejected(ReasonMalformedPayload)
	}

	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("operation panicked",
				"operation", frame.Type,
				"user_id", sess.UserID(),
				"panic", r,
				"stack", string(debug.Stack()))
			h.operationFailed(sess, frame.RequestID, frame.Type, types.CodeOperationFailed, false)
			outcome = failed(ReasonInternal)
		}
	}()

	switch frame.Type {
	case types.OpSendMessage:
		var payload types.SendMessagePayload
		if !h.decode(sess, frame, &payload) {
			return rejected(ReasonMalformedPayload)
		}
		return h.SendMessage(ctx, sess, frame.RequestID, payload)

	case types.OpTypingStart, types.OpTypingStop:
		var payload types.TypingPayload
		if !h.decode(sess, frame, &payload) {
			return rejected(ReasonMalformedPayload)
		}
		if frame.Type == types.OpTypingStart {
			return h.TypingStart(ctx, sess, payload)
		}
		return h.TypingStop(ctx, sess, payload)

	case types.OpMarkAsRead:
		var payload types.MarkAsReadPayload
		if !h.decode(sess, frame, &payload) {
			return rejected(ReasonMalformedPayload)
		}
		return h.MarkAsRead(ctx, sess, frame.RequestID, payload)

	case types.OpHeartbeat:
		sess.recordFrame(true)
		return h.Heartbeat(ctx, sess)

	default:
		sess.recordFrame(true)
		h.logger.Debug("unknown operation", "operation", frame.Type, "user_id", sess.UserID())
		return rejected(ReasonUnknownOperation)
	}
}

func (h *Handler) decode(sess *Session, frame types.Frame, out any) bool {
	if len(frame.Payload) == 0 {
		sess.recordFrame(false)
		return false
	}
	if err := json.Unmarshal(frame.Payload, out); err != nil {
		sess.recordFrame(false)
		h.logger.Debug("undecodable payload", "operation", frame.Type, "user_id", sess.UserID(), "error", err)
		return false
	}
	sess.recordFrame(true)
	return true
}

// SendMessage persists a message from the session's user and fans it out.
// Nothing is delivered unless the message was stored.
func (h *Handler) SendMessage(ctx context.Context, sess *Session, requestID string, payload types.SendMessagePayload) Outcome {
	if sess.State() != Connected {
		return rejected(ReasonNotConnected)
	}

	senderID := sess.UserID()
	receiverID := strings.TrimSpace(payload.ReceiverID)
	if receiverID == "" {
		return rejected(ReasonMissingReceiver)
	}
	if err := types.ValidateContent(payload.Content, h.config.MaxContentRunes); err != nil {
		if errors.Is(err, types.ErrContentTooLong) {
			return rejected(ReasonContentTooLong)
		}
		return rejected(ReasonBlankContent)
	}

	if !h.limiter.Allow(senderID) {
		h.logger.Info("send rate limited", "user_id", senderID)
		h.operationFailed(sess, requestID, types.OpSendMessage, types.CodeRateLimited, true)
		return rejected(ReasonRateLimited)
	}

	persistCtx := context.WithoutCancel(ctx)
	msg := &types.Message{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    payload.Content,
		SentAt:     time.Now().UTC(),
	}
	if err := h.store.CreateMessage(persistCtx, msg); err != nil {
		h.logger.Error("failed to persist message", "sender_id", senderID, "receiver_id", receiverID, "error", err)
		h.operationFailed(sess, requestID, types.OpSendMessage, types.CodeOperationFailed, true)
		return failed(ReasonPersistence)
	}

	sess.stopTyping(receiverID)

	h.deliverer.ToUser(persistCtx, receiverID, types.NewEvent(types.EventReceiveMessage, types.ReceiveMessagePayload{
		MessageID: msg.ID,
		SenderID:  senderID,
		Content:   msg.Content,
		SentAt:    msg.SentAt,
	}))

	h.deliverer.ToConnection(senderID, sess.ConnectionID(), types.Reply(requestID, types.EventMessageSent, types.MessageSentPayload{
		MessageID:  msg.ID,
		ReceiverID: receiverID,
		Content:    msg.Content,
		SentAt:     msg.SentAt,
	}))

	h.pushSummary(persistCtx, receiverID, senderID)
	h.pushSummary(persistCtx, senderID, receiverID)

	return accepted()
}

// pushSummary sends ownerID a freshly computed view of the conversation
// with otherID.
func (h *Handler) pushSummary(ctx context.Context, ownerID, otherID string) {
	summary, err := h.conversations.Summary(ctx, ownerID, otherID)
	if err != nil {
		h.logger.Warn("failed to compute conversation summary", "user_id", ownerID, "other_user_id", otherID, "error", err)
		return
	}
	h.deliverer.ToUser(ctx, ownerID, types.NewEvent(types.EventUpdateConversationList, summary))
}

// TypingStart tells receiverID that the session's user is typing.
func (h *Handler) TypingStart(ctx context.Context, sess *Session, payload types.TypingPayload) Outcome {
	return h.typing(ctx, sess, payload, true)
}

// TypingStop withdraws a typing indicator.
func (h *Handler) TypingStop(ctx context.Context, sess *Session, payload types.TypingPayload) Outcome {
	return h.typing(ctx, sess, payload, false)
}

func (h *Handler) typing(ctx context.Context, sess *Session, payload types.TypingPayload, isTyping bool) Outcome {
	if sess.State() != Connected {
		return rejected(ReasonNotConnected)
	}
	receiverID := strings.TrimSpace(payload.ReceiverID)
	if receiverID == "" {
		return rejected(ReasonMissingReceiver)
	}

	if isTyping {
		sess.startTyping(receiverID)
	} else {
		sess.stopTyping(receiverID)
	}

	h.deliverer.ToUser(ctx, receiverID, types.NewEvent(types.EventUserTyping, types.UserTypingPayload{
		SenderID: sess.UserID(),
		IsTyping: isTyping,
	}))
	return accepted()
}

// MarkAsRead flips a message addressed to the session's user to read.
// Only the call that performs the transition emits events.
func (h *Handler) MarkAsRead(ctx context.Context, sess *Session, requestID string, payload types.MarkAsReadPayload) Outcome {
	if sess.State() != Connected {
		return rejected(ReasonNotConnected)
	}
	if payload.MessageID <= 0 {
		return rejected(ReasonMessageNotFound)
	}

	readerID := sess.UserID()
	persistCtx := context.WithoutCancel(ctx)

	msg, err := h.store.GetMessage(persistCtx, payload.MessageID)
	if err != nil {
		if errors.Is(err, interfaces.ErrMessageNotFound) {
			return rejected(ReasonMessageNotFound)
		}
		h.logger.Error("failed to load message", "message_id", payload.MessageID, "error", err)
		h.operationFailed(sess, requestID, types.OpMarkAsRead, types.CodeOperationFailed, true)
		return failed(ReasonPersistence)
	}
	if msg.ReceiverID != readerID {
		return rejected(ReasonNotReceiver)
	}
	if msg.IsRead {
		return rejected(ReasonAlreadyRead)
	}

	changed, err := h.store.MarkMessageRead(persistCtx, msg.ID, readerID)
	if err != nil {
		h.logger.Error("failed to mark message read", "message_id", msg.ID, "error", err)
		h.operationFailed(sess, requestID, types.OpMarkAsRead, types.CodeOperationFailed, true)
		return failed(ReasonPersistence)
	}
	if !changed {
		return rejected(ReasonAlreadyRead)
	}

	h.deliverer.ToUser(persistCtx, msg.SenderID, types.NewEvent(types.EventMessageRead, types.MessageReadPayload{
		MessageID: msg.ID,
	}))
	h.deliverer.ToUser(persistCtx, readerID, types.Reply(requestID, types.EventClearUnreadCount, types.ClearUnreadCountPayload{
		SenderID: msg.SenderID,
	}))
	return accepted()
}

// Heartbeat records client activity.
func (h *Handler) Heartbeat(ctx context.Context, sess *Session) Outcome {
	if sess.State() != Connected {
		return rejected(ReasonNotConnected)
	}
	if !h.presence.Heartbeat(ctx, sess.UserID()) {
		return rejected(ReasonThrottled)
	}
	return accepted()
}

// RunMaintenance prunes idle rate limiter state until ctx ends.
func (h *Handler) RunMaintenance(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.limiter.Cleanup()
		case <-ctx.Done():
			return
		}
	}
}

// operationFailed tells the calling connection, and only it, that an
// operation did not complete. Internal error text never leaves the process.
func (h *Handler) operationFailed(sess *Session, requestID, operation, code string, retryable bool) {
	message := "The operation could not be completed."
	if code == types.CodeRateLimited {
		message = "Too many messages. Please slow down."
	}

	h.deliverer.ToConnection(sess.UserID(), sess.ConnectionID(), types.Reply(requestID, types.EventOperationFailed, types.OperationFailedPayload{
		Operation: operation,
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}))
}
