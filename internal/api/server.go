// Package api serves the read-only HTTP surface next to the WebSocket
// endpoint: conversation listings, history, presence and health.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"intouch/internal/auth"
	"intouch/internal/conversation"
	"intouch/internal/presence"
	"intouch/pkg/types"
)

var validate = validator.New()

// IdentityResolver attributes a request to a user.
type IdentityResolver interface {
	Resolve(r *http.Request) (string, error)
}

// HealthChecker reports whether the store is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Stats reports live connection counters.
type Stats interface {
	Stats() map[string]int
}

// Config bounds history pages.
type Config struct {
	DefaultHistoryLimit int
	MaxHistoryLimit     int
}

func DefaultConfig() Config {
	return Config{DefaultHistoryLimit: 50, MaxHistoryLimit: 200}
}

// Server routes the HTTP API. The WebSocket handler is mounted on /ws.
type Server struct {
	resolver      IdentityResolver
	conversations *conversation.Service
	presence      *presence.Tracker
	health        HealthChecker
	stats         Stats
	config        Config
	logger        *slog.Logger
	router        *mux.Router
}

func NewServer(
	resolver IdentityResolver,
	conversations *conversation.Service,
	tracker *presence.Tracker,
	health HealthChecker,
	stats Stats,
	ws http.Handler,
	config Config,
	logger *slog.Logger,
) *Server {
	s := &Server{
		resolver:      resolver,
		conversations: conversations,
		presence:      tracker,
		health:        health,
		stats:         stats,
		config:        config,
		logger:        logger.With("component", "api"),
		router:        mux.NewRouter(),
	}
	s.setupRoutes(ws)
	return s
}

func (s *Server) setupRoutes(ws http.Handler) {
	if ws != nil {
		s.router.Handle("/ws", ws).Methods(http.MethodGet)
	}
	s.router.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(jsonMiddleware)
	api.HandleFunc("/conversations", s.withIdentity(s.listConversations)).Methods(http.MethodGet)
	api.HandleFunc("/conversations/{userID}/messages", s.withIdentity(s.conversationHistory)).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/presence", s.withIdentity(s.userPresence)).Methods(http.MethodGet)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type ConversationsResponse struct {
	Conversations []types.ConversationSummary `json:"conversations"`
	UnreadTotal   int                         `json:"unread_total"`
}

type HistoryResponse struct {
	UserID     string           `json:"user_id"`
	Online     bool             `json:"online"`
	LastActive time.Time        `json:"last_active"`
	Messages   []*types.Message `json:"messages"`
}

type HealthResponse struct {
	Status      string         `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Database    string         `json:"database"`
	Connections map[string]int `json:"connections"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type identityHandler func(w http.ResponseWriter, r *http.Request, userID string)

func (s *Server) withIdentity(next identityHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := s.resolver.Resolve(r)
		if err != nil {
			s.sendError(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		next(w, r, userID)
	}
}

// GET /api/conversations
func (s *Server) listConversations(w http.ResponseWriter, r *http.Request, userID string) {
	summaries, err := s.conversations.Summaries(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to list conversations", "user_id", userID, "error", err)
		s.sendError(w, "Failed to list conversations", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, ConversationsResponse{
		Conversations: summaries,
		UnreadTotal: lo.SumBy(summaries, func(summary types.ConversationSummary) int {
			return summary.UnreadCount
		}),
	})
}

// GET /api/conversations/{userID}/messages?limit=N
func (s *Server) conversationHistory(w http.ResponseWriter, r *http.Request, userID string) {
	otherID := mux.Vars(r)["userID"]
	if !types.IsValidUserID(otherID) {
		s.sendError(w, ErrInvalidUserID.Error(), http.StatusBadRequest)
		return
	}

	limit, err := s.parseLimit(r)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	messages, err := s.conversations.History(r.Context(), userID, otherID, limit)
	if err != nil {
		s.logger.Error("failed to load history", "user_id", userID, "other_user_id", otherID, "error", err)
		s.sendError(w, "Failed to load conversation", http.StatusInternalServerError)
		return
	}

	other, err := s.presence.Presence(r.Context(), otherID)
	if err != nil {
		s.logger.Warn("failed to load presence", "user_id", otherID, "error", err)
		other = types.Presence{UserID: otherID}
	}

	s.writeJSON(w, http.StatusOK, HistoryResponse{
		UserID:     otherID,
		Online:     other.Online,
		LastActive: other.LastActive,
		Messages:   messages,
	})
}

func (s *Server) parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return s.config.DefaultHistoryLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ErrInvalidLimit
	}
	rule := "gte=1"
	if s.config.MaxHistoryLimit > 0 {
		rule += ",lte=" + strconv.Itoa(s.config.MaxHistoryLimit)
	}
	if err := validate.Var(limit, rule); err != nil {
		return 0, ErrInvalidLimit
	}
	return limit, nil
}

// GET /api/users/{userID}/presence
func (s *Server) userPresence(w http.ResponseWriter, r *http.Request, _ string) {
	otherID := mux.Vars(r)["userID"]
	if !types.IsValidUserID(otherID) {
		s.sendError(w, ErrInvalidUserID.Error(), http.StatusBadRequest)
		return
	}

	p, err := s.presence.Presence(r.Context(), otherID)
	if err != nil {
		s.logger.Error("failed to load presence", "user_id", otherID, "error", err)
		s.sendError(w, "Failed to load presence", http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

// GET /health
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Database:    "healthy",
		Connections: s.stats.Stats(),
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check failed", "error", err)
		response.Status = "unhealthy"
		response.Database = "unavailable"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	s.writeJSON(w, status, response)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	s.writeJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Code:    code,
		Message: message,
	})
}

func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

var _ IdentityResolver = (*auth.Resolver)(nil)
