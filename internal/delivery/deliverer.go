// Package delivery fans outbound events out to live connections, falling
// back to the per-user group channel when none are known.
package delivery

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"intouch/internal/registry"
	"intouch/pkg/interfaces"
	"intouch/pkg/types"
)

// Deliverer writes events to connections found in the registry.
type Deliverer struct {
	registry *registry.Registry
	fallback interfaces.GroupChannel
	logger   *slog.Logger
}

func NewDeliverer(reg *registry.Registry, fallback interfaces.GroupChannel, logger *slog.Logger) *Deliverer {
	return &Deliverer{
		registry: reg,
		fallback: fallback,
		logger:   logger.With("component", "delivery"),
	}
}

// ToUser writes evt to every live connection of userID. When the user has
// no connection, or every write failed, the event goes to the fallback
// channel instead. It returns the number of direct writes that succeeded.
func (d *Deliverer) ToUser(ctx context.Context, userID string, evt types.Event) int {
	conns := d.registry.Connections(userID)

	delivered := 0
	for _, conn := range conns {
		if err := conn.WriteJSON(evt); err != nil {
			d.logger.Warn("direct delivery failed",
				"user_id", userID,
				"connection_id", conn.GetConnectionID(),
				"event", evt.Type,
				"error", err)
			continue
		}
		delivered++
	}

	if delivered == 0 {
		d.publishFallback(ctx, userID, evt)
	}
	return delivered
}

// ToConnection writes evt to exactly one connection and never falls back.
// It reports whether the write happened.
func (d *Deliverer) ToConnection(userID, connectionID string, evt types.Event) bool {
	conn, ok := d.registry.Connection(userID, connectionID)
	if !ok {
		d.logger.Debug("connection no longer registered",
			"user_id", userID,
			"connection_id", connectionID,
			"event", evt.Type)
		return false
	}

	if err := conn.WriteJSON(evt); err != nil {
		d.logger.Warn("connection delivery failed",
			"user_id", userID,
			"connection_id", connectionID,
			"event", evt.Type,
			"error", err)
		return false
	}
	return true
}

// BroadcastExcept writes evt to every connection of every online user other
// than excludedUserID. Offline users are not queued.
func (d *Deliverer) BroadcastExcept(excludedUserID string, evt types.Event) int {
	delivered := 0
	recipients := lo.Without(d.registry.Users(), excludedUserID)
	for _, userID := range recipients {
		for _, conn := range d.registry.Connections(userID) {
			if err := conn.WriteJSON(evt); err != nil {
				d.logger.Debug("broadcast delivery failed",
					"user_id", userID,
					"connection_id", conn.GetConnectionID(),
					"event", evt.Type,
					"error", err)
				continue
			}
			delivered++
		}
	}
	return delivered
}

func (d *Deliverer) publishFallback(ctx context.Context, userID string, evt types.Event) {
	if d.fallback == nil {
		return
	}
	if err := d.fallback.Publish(ctx, userID, evt); err != nil {
		d.logger.Warn("fallback delivery failed",
			"user_id", userID,
			"event", evt.Type,
			"error", err)
	}
}
