package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"intouch/internal/auth"
	"intouch/internal/conversation"
	"intouch/internal/database"
	"intouch/internal/delivery"
	"intouch/internal/hub"
	"intouch/internal/mocks"
	"intouch/internal/presence"
	"intouch/internal/registry"
	"intouch/internal/testkit"
	"intouch/pkg/types"
)

type fixture struct {
	server   *Server
	db       *database.Manager
	registry *registry.Registry
	tokens   *auth.Tokens
}

func newFixture(t *testing.T, health HealthChecker) *fixture {
	t.Helper()
	logger := testkit.Logger()
	db := testkit.OpenTestManager(t)
	if health == nil {
		health = db
	}

	reg := registry.NewRegistry()
	deliverer := delivery.NewDeliverer(reg, hub.NewHub(db, reg, hub.DefaultConfig(), logger), logger)
	throttle, err := presence.NewThrottle(0)
	require.NoError(t, err)
	tracker := presence.NewTracker(reg, db, deliverer, throttle, logger)

	tokens, err := auth.NewTokens("api-secret", "intouch-test", time.Hour)
	require.NoError(t, err)

	ws := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	return &fixture{
		server: NewServer(auth.NewResolver(tokens, ""), conversation.NewService(db, logger), tracker,
			health, reg, ws, DefaultConfig(), logger),
		db:       db,
		registry: reg,
		tokens:   tokens,
	}
}

func (f *fixture) get(t *testing.T, path, userID string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		token, err := f.tokens.GenerateToken(userID)
		require.NoError(t, err)
		r.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.server.ServeHTTP(w, r)
	return w
}

func (f *fixture) message(t *testing.T, from, to, content string) *types.Message {
	t.Helper()
	msg := &types.Message{SenderID: from, ReceiverID: to, Content: content}
	require.NoError(t, f.db.CreateMessage(context.Background(), msg))
	return msg
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

func TestServer_RequiresIdentity(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, nil)

	for _, path := range []string{"/api/conversations", "/api/conversations/bob/messages", "/api/users/bob/presence"} {
		w := f.get(t, path, "")
		req.Equal(http.StatusUnauthorized, w.Code, path)
		req.Equal("application/json", w.Header().Get("Content-Type"))
	}
}

func TestServer_ListConversations(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, nil)

	f.message(t, "bob", "alice", "hi alice")
	f.message(t, "bob", "alice", "are you there")
	f.message(t, "alice", "carol", "hey carol")

	w := f.get(t, "/api/conversations", "alice")
	req.Equal(http.StatusOK, w.Code)

	resp := decode[ConversationsResponse](t, w)
	req.Len(resp.Conversations, 2)
	req.Equal("carol", resp.Conversations[0].UserID)
	req.Equal("bob", resp.Conversations[1].UserID)
	req.Equal(2, resp.Conversations[1].UnreadCount)
	req.Equal("are you there", resp.Conversations[1].LastMessage)
	req.Equal(2, resp.UnreadTotal)
}

func TestServer_ConversationHistory(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, nil)

	for _, content := range []string{"one", "two", "three"} {
		f.message(t, "alice", "bob", content)
	}
	f.message(t, "alice", "carol", "elsewhere")
	require.NoError(t, f.db.TouchLastActive(context.Background(), "bob", time.Now().UTC()))

	w := f.get(t, "/api/conversations/bob/messages?limit=2", "alice")
	req.Equal(http.StatusOK, w.Code)

	resp := decode[HistoryResponse](t, w)
	req.Equal("bob", resp.UserID)
	req.False(resp.Online)
	req.False(resp.LastActive.IsZero())
	req.Len(resp.Messages, 2)
	req.Equal("two", resp.Messages[0].Content)
	req.Equal("three", resp.Messages[1].Content)

	w = f.get(t, "/api/conversations/bob/messages", "alice")
	req.Len(decode[HistoryResponse](t, w).Messages, 3)

	w = f.get(t, "/api/conversations/nobody/messages", "alice")
	req.Equal(http.StatusOK, w.Code)
	req.NotNil(decode[HistoryResponse](t, w).Messages)
}

func TestServer_ConversationHistoryRejectsBadLimit(t *testing.T) {
	f := newFixture(t, nil)

	for _, limit := range []string{"0", "-3", "abc", "201"} {
		w := f.get(t, "/api/conversations/bob/messages?limit="+limit, "alice")
		require.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", limit)
	}
}

func TestServer_UserPresence(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, nil)

	_, err := f.registry.Add("bob", testkit.NewRecordingConnection("bob"))
	req.NoError(err)

	w := f.get(t, "/api/users/bob/presence", "alice")
	req.Equal(http.StatusOK, w.Code)
	p := decode[types.Presence](t, w)
	req.Equal("bob", p.UserID)
	req.True(p.Online)

	w = f.get(t, "/api/users/carol/presence", "alice")
	p = decode[types.Presence](t, w)
	req.False(p.Online)
	req.True(p.LastActive.IsZero())
}

func TestServer_Health(t *testing.T) {
	req := require.New(t)
	f := newFixture(t, nil)

	_, err := f.registry.Add("bob", testkit.NewRecordingConnection("bob"))
	req.NoError(err)

	w := f.get(t, "/health", "")
	req.Equal(http.StatusOK, w.Code)
	resp := decode[HealthResponse](t, w)
	req.Equal("healthy", resp.Status)
	req.Equal(1, resp.Connections["online_users"])
	req.Equal(1, resp.Connections["total_connections"])
}

func TestServer_HealthReportsStoreFailure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	db := mocks.NewMockDatabaseManager(ctrl)
	db.EXPECT().HealthCheck(gomock.Any()).Return(errors.New("disk gone"))

	f := newFixture(t, db)
	w := f.get(t, "/health", "")
	req.Equal(http.StatusServiceUnavailable, w.Code)

	resp := decode[HealthResponse](t, w)
	req.Equal("unhealthy", resp.Status)
	req.Equal("unavailable", resp.Database)
}

func TestServer_MountsWebSocketHandler(t *testing.T) {
	f := newFixture(t, nil)
	require.Equal(t, http.StatusTeapot, f.get(t, "/ws", "").Code)
}
