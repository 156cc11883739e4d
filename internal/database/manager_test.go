package database

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"

	dbconfig "intouch/pkg/database"
	"intouch/pkg/interfaces"
	"intouch/pkg/types"
)

func setupTestDB(t *testing.T) *Manager {
	t.Helper()
	cfg := dbconfig.DefaultConfig()
	cfg.DatabasePath = filepath.Join(t.TempDir(), "test.db")

	manager, err := NewManager(cfg, logs.GetLoggerFromLevel(slog.LevelDebug))
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Close() })

	require.NoError(t, manager.Migrate(context.Background()))
	return manager
}

func send(t *testing.T, m *Manager, from, to, content string) *types.Message {
	t.Helper()
	msg := &types.Message{SenderID: from, ReceiverID: to, Content: content}
	require.NoError(t, m.CreateMessage(context.Background(), msg))
	return msg
}

func TestManager_CreateAndGetMessage(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := setupTestDB(t)

	sentAt := time.Date(2025, 6, 1, 3, 34, 3, 0, time.FixedZone("X", 3600))
	msg := &types.Message{SenderID: "alice", ReceiverID: "bob", Content: "hello", SentAt: sentAt}
	req.NoError(m.CreateMessage(ctx, msg))
	req.NotZero(msg.ID)

	got, err := m.GetMessage(ctx, msg.ID)
	req.NoError(err)
	req.Equal("alice", got.SenderID)
	req.Equal("bob", got.ReceiverID)
	req.Equal("hello", got.Content)
	req.False(got.IsRead)
	req.True(sentAt.Equal(got.SentAt))
	req.Equal(time.UTC, got.SentAt.Location())

	_, err = m.GetMessage(ctx, msg.ID+100)
	req.ErrorIs(err, interfaces.ErrMessageNotFound)
}

func TestManager_IdsFollowInsertionOrder(t *testing.T) {
	req := require.New(t)
	m := setupTestDB(t)

	first := send(t, m, "alice", "bob", "one")
	second := send(t, m, "alice", "bob", "one")
	req.Greater(second.ID, first.ID)
}

func TestManager_MarkMessageRead(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := setupTestDB(t)

	msg := send(t, m, "alice", "bob", "hi")

	// Only the receiver can flip it.
	changed, err := m.MarkMessageRead(ctx, msg.ID, "alice")
	req.NoError(err)
	req.False(changed)

	changed, err = m.MarkMessageRead(ctx, msg.ID, "bob")
	req.NoError(err)
	req.True(changed)

	changed, err = m.MarkMessageRead(ctx, msg.ID, "bob")
	req.NoError(err)
	req.False(changed)

	got, err := m.GetMessage(ctx, msg.ID)
	req.NoError(err)
	req.True(got.IsRead)
}

func TestManager_MarkMessageReadConcurrentSingleTransition(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := setupTestDB(t)

	msg := send(t, m, "alice", "bob", "hi")

	var wg sync.WaitGroup
	var mu sync.Mutex
	transitions := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			changed, err := m.MarkMessageRead(ctx, msg.ID, "bob")
			if err == nil && changed {
				mu.Lock()
				transitions++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	req.Equal(1, transitions)
}

func TestManager_CountUnread(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := setupTestDB(t)

	a := send(t, m, "alice", "bob", "1")
	send(t, m, "alice", "bob", "2")
	send(t, m, "alice", "bob", "3")
	send(t, m, "bob", "alice", "reply")

	count, err := m.CountUnread(ctx, "alice", "bob")
	req.NoError(err)
	req.Equal(3, count)

	_, err = m.MarkMessageRead(ctx, a.ID, "bob")
	req.NoError(err)

	count, err = m.CountUnread(ctx, "alice", "bob")
	req.NoError(err)
	req.Equal(2, count)

	count, err = m.CountUnread(ctx, "bob", "alice")
	req.NoError(err)
	req.Equal(1, count)
}

func TestManager_GetLastMessage(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := setupTestDB(t)

	last, err := m.GetLastMessage(ctx, "alice", "bob")
	req.NoError(err)
	req.Nil(last)

	send(t, m, "alice", "bob", "first")
	reply := send(t, m, "bob", "alice", "second")
	send(t, m, "alice", "carol", "elsewhere")

	last, err = m.GetLastMessage(ctx, "alice", "bob")
	req.NoError(err)
	req.Equal(reply.ID, last.ID)

	last, err = m.GetLastMessage(ctx, "bob", "alice")
	req.NoError(err)
	req.Equal(reply.ID, last.ID)
}

func TestManager_GetConversation(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := setupTestDB(t)

	for i := 0; i < 5; i++ {
		send(t, m, "alice", "bob", fmt.Sprintf("a%d", i))
		send(t, m, "bob", "alice", fmt.Sprintf("b%d", i))
	}
	send(t, m, "alice", "carol", "noise")

	all, err := m.GetConversation(ctx, "alice", "bob", 0)
	req.NoError(err)
	req.Len(all, 10)
	req.Equal("a0", all[0].Content)
	req.Equal("b4", all[9].Content)

	recent, err := m.GetConversation(ctx, "bob", "alice", 3)
	req.NoError(err)
	req.Len(recent, 3)
	req.Equal("b3", recent[0].Content)
	req.Equal("a4", recent[1].Content)
	req.Equal("b4", recent[2].Content)
}

func TestManager_ListConversationPartners(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := setupTestDB(t)

	send(t, m, "alice", "bob", "1")
	send(t, m, "carol", "alice", "2")
	send(t, m, "alice", "dave", "3")
	send(t, m, "bob", "alice", "4")
	send(t, m, "erin", "frank", "unrelated")

	partners, err := m.ListConversationPartners(ctx, "alice")
	req.NoError(err)
	req.Equal([]string{"bob", "dave", "carol"}, partners)

	partners, err = m.ListConversationPartners(ctx, "nobody")
	req.NoError(err)
	req.Empty(partners)
}

func TestManager_LastActive(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := setupTestDB(t)

	got, err := m.GetLastActive(ctx, "alice")
	req.NoError(err)
	req.True(got.IsZero())

	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	req.NoError(m.TouchLastActive(ctx, "alice", t1))
	req.NoError(m.TouchLastActive(ctx, "alice", t2))

	got, err = m.GetLastActive(ctx, "alice")
	req.NoError(err)
	req.True(t2.Equal(got))
}

func TestManager_PendingMailbox(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := setupTestDB(t)

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, ttl := range []time.Duration{time.Minute, time.Second, time.Hour} {
		evt := &types.PendingEvent{
			UserID:    "bob",
			Type:      types.EventReceiveMessage,
			Payload:   []byte(fmt.Sprintf(`{"n":%d}`, i)),
			CreatedAt: now,
			ExpiresAt: now.Add(ttl),
		}
		req.NoError(m.EnqueuePending(ctx, evt))
		req.NotZero(evt.ID)
	}
	req.NoError(m.EnqueuePending(ctx, &types.PendingEvent{
		UserID: "carol", Type: types.EventUserTyping, Payload: []byte(`{}`), ExpiresAt: now.Add(time.Hour),
	}))

	// The one second entry has expired by now+2s.
	events, err := m.DrainPending(ctx, "bob", now.Add(2*time.Second))
	req.NoError(err)
	req.Len(events, 2)
	req.JSONEq(`{"n":0}`, string(events[0].Payload))
	req.JSONEq(`{"n":2}`, string(events[1].Payload))
	req.True(now.Add(time.Hour).Equal(events[1].ExpiresAt))

	events, err = m.DrainPending(ctx, "bob", now)
	req.NoError(err)
	req.Empty(events)

	purged, err := m.PurgeExpired(ctx, now.Add(2*time.Hour))
	req.NoError(err)
	req.Equal(int64(1), purged)
}

func TestManager_HealthCheckAndClose(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	m := setupTestDB(t)

	req.NoError(m.HealthCheck(ctx))
	req.NoError(m.Close())
	req.NoError(m.Close())

	req.ErrorIs(m.HealthCheck(ctx), interfaces.ErrStoreClosed)
	req.ErrorIs(m.CreateMessage(ctx, &types.Message{SenderID: "a", ReceiverID: "b", Content: "x"}), interfaces.ErrStoreClosed)
}

func TestManager_WriteHonoursCancelledContext(t *testing.T) {
	m := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.TouchLastActive(ctx, "alice", time.Now())
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewManager_RejectsInvalidConfig(t *testing.T) {
	cfg := dbconfig.DefaultConfig()
	cfg.DatabasePath = ""
	_, err := NewManager(cfg, slog.Default())
	require.Error(t, err)
}
