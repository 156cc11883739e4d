// Package presence turns registry transitions and heartbeats into presence
// events and last-active updates.
package presence

import (
	"context"
	"log/slog"
	"time"

	"intouch/internal/delivery"
	"intouch/internal/registry"
	"intouch/pkg/interfaces"
	"intouch/pkg/types"
)

// Tracker owns the online/offline transitions of users.
type Tracker struct {
	registry  *registry.Registry
	users     interfaces.UserStore
	deliverer *delivery.Deliverer
	throttle  *Throttle
	logger    *slog.Logger
	now       func() time.Time
}

func NewTracker(
	reg *registry.Registry,
	users interfaces.UserStore,
	deliverer *delivery.Deliverer,
	throttle *Throttle,
	logger *slog.Logger,
) *Tracker {
	return &Tracker{
		registry:  reg,
		users:     users,
		deliverer: deliverer,
		throttle:  throttle,
		logger:    logger.With("component", "presence"),
		now:       time.Now,
	}
}

// Connected registers conn and reports whether its user just came online.
// UserConnected goes to everyone else only on that transition.
func (t *Tracker) Connected(ctx context.Context, conn interfaces.Connection) (bool, error) {
	userID := conn.GetUserID()

	first, err := t.registry.Add(userID, conn)
	if err != nil {
		return false, err
	}

	t.touch(ctx, userID)

	if first {
		t.logger.Info("user online", "user_id", userID)
		t.deliverer.BroadcastExcept(userID, types.NewEvent(types.EventUserConnected, types.UserPresencePayload{UserID: userID}))
	}
	return first, nil
}

// Disconnected removes the connection and reports whether its user just
// went offline. Calling it for an unknown connection does nothing.
func (t *Tracker) Disconnected(ctx context.Context, userID, connectionID string) bool {
	last := t.registry.Remove(userID, connectionID)

	t.touch(ctx, userID)

	if last {
		t.logger.Info("user offline", "user_id", userID)
		t.deliverer.BroadcastExcept(userID, types.NewEvent(types.EventUserDisconnected, types.UserPresencePayload{UserID: userID}))
	}
	return last
}

// Heartbeat records activity for userID. At most one heartbeat per throttle
// window is persisted and announced; it reports whether this one was.
func (t *Tracker) Heartbeat(ctx context.Context, userID string) bool {
	allowed, err := t.throttle.Allow(userID)
	if err != nil {
		t.logger.Warn("heartbeat throttle unavailable", "user_id", userID, "error", err)
		allowed = true
	}
	if !allowed {
		return false
	}

	at := t.touch(ctx, userID)
	t.deliverer.BroadcastExcept(userID, types.NewEvent(types.EventUserActive, types.UserActivePayload{
		UserID:     userID,
		LastActive: at,
	}))
	return true
}

// Presence reports whether userID is online here and when they were last
// active.
func (t *Tracker) Presence(ctx context.Context, userID string) (types.Presence, error) {
	lastActive, err := t.users.GetLastActive(ctx, userID)
	if err != nil {
		return types.Presence{}, err
	}
	return types.Presence{
		UserID:     userID,
		Online:     t.registry.IsOnline(userID),
		LastActive: lastActive,
	}, nil
}

// touch persists last-active. Failures are logged and dropped.
func (t *Tracker) touch(ctx context.Context, userID string) time.Time {
	at := t.now().UTC()
	if err := t.users.TouchLastActive(context.WithoutCancel(ctx), userID, at); err != nil {
		t.logger.Warn("failed to update last active", "user_id", userID, "error", err)
	}
	return at
}
