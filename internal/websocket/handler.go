package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"intouch/internal/chat"
)

// Config tunes the socket layer.
type Config struct {
	AllowedOrigins   []string
	HandshakeTimeout time.Duration
	ReadLimit        int64
	PongWait         time.Duration
	PingInterval     time.Duration
	WriteTimeout     time.Duration
	SendBuffer       int
}

func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		ReadLimit:        64 * 1024,
		PongWait:         60 * time.Second,
		PingInterval:     30 * time.Second,
		WriteTimeout:     5 * time.Second,
		SendBuffer:       100,
	}
}

// IdentityResolver attributes an upgrade request to a user.
type IdentityResolver interface {
	Resolve(r *http.Request) (string, error)
}

// Handler upgrades authenticated requests and runs one read loop per
// connection, feeding every text frame to the chat handler.
type Handler struct {
	chat     *chat.Handler
	resolver IdentityResolver
	upgrader websocket.Upgrader
	config   Config
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	conns   map[string]*Connection
	closing bool
}

func NewHandler(chatHandler *chat.Handler, resolver IdentityResolver, config Config, logger *slog.Logger) *Handler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handler{
		chat:     chatHandler,
		resolver: resolver,
		config:   config,
		logger:   logger.With("component", "websocket"),
		ctx:      ctx,
		cancel:   cancel,
		conns:    make(map[string]*Connection),
	}
	h.upgrader = websocket.Upgrader{
		HandshakeTimeout: config.HandshakeTimeout,
		CheckOrigin:      h.checkOrigin,
	}
	return h
}

// checkOrigin admits everything when no origins are configured, and
// requests without an Origin header (non-browser clients).
func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.config.AllowedOrigins) == 0 || slices.Contains(h.config.AllowedOrigins, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(h.config.AllowedOrigins, origin)
}

// ServeHTTP resolves the caller before upgrading; unauthenticated requests
// get 401 and never reach the registry.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolver.Resolve(r)
	if err != nil || userID == "" {
		h.logger.Debug("rejected unauthenticated upgrade", "remote_addr", r.RemoteAddr, "error", err)
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	h.mu.Lock()
	closing := h.closing
	h.mu.Unlock()
	if closing {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}

	conn := NewConnection(ws, userID, h.config)
	sess, err := h.chat.Open(h.ctx, conn)
	if err != nil {
		h.logger.Warn("failed to open session", "user_id", userID, "error", err)
		_ = conn.CloseWithReason(websocket.CloseInternalServerErr, "session unavailable")
		return
	}

	if !h.track(conn) {
		h.chat.Close(h.ctx, sess)
		_ = conn.CloseWithReason(websocket.CloseGoingAway, "server shutting down")
		return
	}

	go h.handleConnection(conn, sess)
}

func (h *Handler) track(conn *Connection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return false
	}
	h.conns[conn.GetConnectionID()] = conn
	h.wg.Add(1)
	return true
}

func (h *Handler) untrack(conn *Connection) {
	h.mu.Lock()
	delete(h.conns, conn.GetConnectionID())
	h.mu.Unlock()
	h.wg.Done()
}

// ActiveConnections returns the number of sockets currently served.
func (h *Handler) ActiveConnections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// handleConnection owns the read side of conn until the socket fails or the
// client exhausts its malformed-frame allowance.
func (h *Handler) handleConnection(conn *Connection, sess *chat.Session) {
	defer h.untrack(conn)
	defer func() {
		h.chat.Close(h.ctx, sess)
		_ = conn.Close()
	}()

	ws := conn.conn
	ws.SetReadLimit(h.config.ReadLimit)
	if err := ws.SetReadDeadline(time.Now().Add(h.config.PongWait)); err != nil {
		h.logger.Warn("failed to set read deadline", "connection_id", conn.GetConnectionID(), "error", err)
		return
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.config.PongWait))
	})

	go h.pingLoop(conn)

	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) &&
				!errors.Is(err, websocket.ErrCloseSent) {
				h.logger.Debug("websocket read failed", "connection_id", conn.GetConnectionID(), "error", err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		outcome := h.chat.Dispatch(h.ctx, sess, data)
		if outcome.Status != chat.Accepted {
			h.logger.Debug("operation not accepted",
				"user_id", sess.UserID(),
				"status", outcome.Status.String(),
				"reason", outcome.Reason)
		}

		if h.chat.ShouldDisconnect(sess) {
			h.logger.Info("closing connection after malformed frames", "user_id", sess.UserID(), "connection_id", conn.GetConnectionID())
			_ = conn.CloseWithReason(websocket.ClosePolicyViolation, "too many malformed frames")
			return
		}
	}
}

func (h *Handler) pingLoop(conn *Connection) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := conn.ping(); err != nil {
				_ = conn.Close()
				return
			}
		case <-conn.Done():
			return
		}
	}
}

// Shutdown refuses new upgrades, closes every live socket and waits for
// their read loops to finish tearing the sessions down.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	h.closing = true
	conns := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		_ = conn.CloseWithReason(websocket.CloseGoingAway, "server shutting down")
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	defer h.cancel()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
