// Package hub is the per-user fallback channel. Events published while a
// user has no known connection are parked in the shared mailbox and handed
// to the user's connections once any appear.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"intouch/internal/registry"
	"intouch/pkg/interfaces"
	"intouch/pkg/types"
)

// Config controls mailbox lifetimes and the pump cadence.
type Config struct {
	PumpInterval time.Duration
	PendingTTL   time.Duration
	TypingTTL    time.Duration
}

func DefaultConfig() Config {
	return Config{
		PumpInterval: 2 * time.Second,
		PendingTTL:   24 * time.Hour,
		TypingTTL:    10 * time.Second,
	}
}

// Hub implements interfaces.GroupChannel on top of a PendingStore.
type Hub struct {
	flushChannel    chan string
	shutdownChannel chan struct{}
	done            chan struct{}

	store    interfaces.PendingStore
	registry *registry.Registry
	config   Config
	logger   *slog.Logger
	now      func() time.Time

	running bool
	mu      sync.RWMutex
}

var _ interfaces.GroupChannel = (*Hub)(nil)

func NewHub(store interfaces.PendingStore, reg *registry.Registry, config Config, logger *slog.Logger) *Hub {
	return &Hub{
		flushChannel:    make(chan string, 100),
		shutdownChannel: make(chan struct{}),
		done:            make(chan struct{}),
		store:           store,
		registry:        reg,
		config:          config,
		logger:          logger.With("component", "hub"),
		now:             time.Now,
	}
}

// Start launches the pump loop.
func (h *Hub) Start(ctx context.Context) error {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return ErrHubAlreadyRunning
	}
	h.running = true
	h.mu.Unlock()

	h.logger.Info("starting fallback hub", "pump_interval", h.config.PumpInterval)
	go h.run(ctx)

	return nil
}

// Stop ends the pump loop and waits for it to exit.
func (h *Hub) Stop() error {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return ErrHubNotRunning
	}
	h.running = false

	select {
	case <-h.shutdownChannel:
	default:
		close(h.shutdownChannel)
	}
	h.mu.Unlock()

	<-h.done
	return nil
}

// Publish parks evt in userID's mailbox. Typing events get a short lifetime
// since a stale indicator is worse than none.
func (h *Hub) Publish(ctx context.Context, userID string, evt types.Event) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", evt.Type, err)
	}

	now := h.now().UTC()
	pending := &types.PendingEvent{
		UserID:    userID,
		Type:      evt.Type,
		Payload:   payload,
		CreatedAt: now,
		ExpiresAt: now.Add(h.ttlFor(evt.Type)),
	}
	if err := h.store.EnqueuePending(context.WithoutCancel(ctx), pending); err != nil {
		return fmt.Errorf("failed to park %s event: %w", evt.Type, err)
	}

	// The user may have connected since the caller looked.
	if h.registry.IsOnline(userID) {
		if err := h.RequestFlush(userID); err != nil {
			h.logger.Debug("flush request dropped", "user_id", userID, "error", err)
		}
	}
	return nil
}

// RequestFlush asks the pump loop to deliver userID's mailbox soon.
func (h *Hub) RequestFlush(userID string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !h.running {
		return ErrHubNotRunning
	}

	select {
	case h.flushChannel <- userID:
		return nil
	default:
		return ErrFlushChannelFull
	}
}

// Flush drains userID's mailbox into their live connections and returns how
// many events were delivered. Events no connection accepted are parked again.
func (h *Hub) Flush(ctx context.Context, userID string) (int, error) {
	if !h.registry.IsOnline(userID) {
		return 0, nil
	}

	events, err := h.store.DrainPending(ctx, userID, h.now())
	if err != nil {
		return 0, fmt.Errorf("failed to drain mailbox: %w", err)
	}

	delivered := 0
	for _, pending := range events {
		if h.deliver(userID, pending) {
			delivered++
			continue
		}
		pending.ID = 0
		if err := h.store.EnqueuePending(ctx, pending); err != nil {
			h.logger.Warn("failed to re-park event", "user_id", userID, "event", pending.Type, "error", err)
		}
	}

	if delivered > 0 {
		h.logger.Debug("mailbox flushed", "user_id", userID, "delivered", delivered)
	}
	return delivered, nil
}

func (h *Hub) deliver(userID string, pending *types.PendingEvent) bool {
	ok := false
	for _, conn := range h.registry.Connections(userID) {
		if err := conn.WriteJSON(json.RawMessage(pending.Payload)); err != nil {
			h.logger.Debug("mailbox delivery failed",
				"user_id", userID,
				"connection_id", conn.GetConnectionID(),
				"error", err)
			continue
		}
		ok = true
	}
	return ok
}

func (h *Hub) ttlFor(eventType string) time.Duration {
	if eventType == types.EventUserTyping {
		return h.config.TypingTTL
	}
	return h.config.PendingTTL
}

func (h *Hub) run(ctx context.Context) {
	defer close(h.done)
	defer h.logger.Info("fallback hub stopped")

	ticker := time.NewTicker(h.config.PumpInterval)
	defer ticker.Stop()

	for {
		select {
		case userID := <-h.flushChannel:
			if _, err := h.Flush(ctx, userID); err != nil {
				h.logger.Warn("mailbox flush failed", "user_id", userID, "error", err)
			}

		case <-ticker.C:
			h.pump(ctx)

		case <-h.shutdownChannel:
			return

		case <-ctx.Done():
			return
		}
	}
}

// pump flushes every locally online user and purges expired entries.
func (h *Hub) pump(ctx context.Context) {
	for _, userID := range h.registry.Users() {
		if _, err := h.Flush(ctx, userID); err != nil {
			h.logger.Warn("mailbox flush failed", "user_id", userID, "error", err)
		}
	}

	purged, err := h.store.PurgeExpired(ctx, h.now())
	if err != nil {
		h.logger.Warn("failed to purge expired events", "error", err)
		return
	}
	if purged > 0 {
		h.logger.Debug("purged expired events", "count", purged)
	}
}
