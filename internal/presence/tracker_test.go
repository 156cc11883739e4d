package presence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"intouch/internal/delivery"
	"intouch/internal/mocks"
	"intouch/internal/registry"
	"intouch/internal/testkit"
	"intouch/pkg/interfaces"
	"intouch/pkg/types"
)

type fixture struct {
	tracker  *Tracker
	registry *registry.Registry
}

func newFixture(t *testing.T, users interfaces.UserStore, window time.Duration) *fixture {
	t.Helper()
	throttle, err := NewThrottle(window)
	require.NoError(t, err)
	t.Cleanup(func() { _ = throttle.Close() })

	reg := registry.NewRegistry()
	deliverer := delivery.NewDeliverer(reg, nil, testkit.Logger())
	return &fixture{
		tracker:  NewTracker(reg, users, deliverer, throttle, testkit.Logger()),
		registry: reg,
	}
}

func TestTracker_ConnectBroadcastsOnlyOnTransition(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, testkit.OpenTestManager(t), time.Minute)

	bob := testkit.NewRecordingConnection("bob")
	_, err := f.tracker.Connected(ctx, bob)
	req.NoError(err)

	tab1 := testkit.NewRecordingConnection("alice")
	tab2 := testkit.NewRecordingConnection("alice")

	first, err := f.tracker.Connected(ctx, tab1)
	req.NoError(err)
	req.True(first)

	first, err = f.tracker.Connected(ctx, tab2)
	req.NoError(err)
	req.False(first)

	connected := bob.EventsOfType(types.EventUserConnected)
	req.Len(connected, 1)
	payload, err := testkit.DecodePayload[types.UserPresencePayload](connected[0])
	req.NoError(err)
	req.Equal("alice", payload.UserID)

	// Nobody hears about their own arrival.
	req.Empty(tab1.EventsOfType(types.EventUserConnected))
}

func TestTracker_DisconnectBroadcastsOnlyOnTransition(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, testkit.OpenTestManager(t), time.Minute)

	bob := testkit.NewRecordingConnection("bob")
	tab1 := testkit.NewRecordingConnection("alice")
	tab2 := testkit.NewRecordingConnection("alice")
	for _, c := range []*testkit.RecordingConnection{bob, tab1, tab2} {
		_, err := f.tracker.Connected(ctx, c)
		req.NoError(err)
	}

	req.False(f.tracker.Disconnected(ctx, "alice", tab1.GetConnectionID()))
	req.Empty(bob.EventsOfType(types.EventUserDisconnected))

	req.True(f.tracker.Disconnected(ctx, "alice", tab2.GetConnectionID()))
	req.Len(bob.EventsOfType(types.EventUserDisconnected), 1)

	// Repeated disconnects are no-ops.
	req.False(f.tracker.Disconnected(ctx, "alice", tab2.GetConnectionID()))
	req.Len(bob.EventsOfType(types.EventUserDisconnected), 1)
}

func TestTracker_ConnectAndDisconnectTouchLastActive(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	store := testkit.OpenTestManager(t)
	f := newFixture(t, store, time.Minute)

	connectedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.tracker.now = func() time.Time { return connectedAt }

	conn := testkit.NewRecordingConnection("alice")
	_, err := f.tracker.Connected(ctx, conn)
	req.NoError(err)

	got, err := store.GetLastActive(ctx, "alice")
	req.NoError(err)
	req.True(connectedAt.Equal(got))

	leftAt := connectedAt.Add(5 * time.Minute)
	f.tracker.now = func() time.Time { return leftAt }
	f.tracker.Disconnected(ctx, "alice", conn.GetConnectionID())

	presence, err := f.tracker.Presence(ctx, "alice")
	req.NoError(err)
	req.False(presence.Online)
	req.True(leftAt.Equal(presence.LastActive))
}

func TestTracker_HeartbeatIsThrottled(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, testkit.OpenTestManager(t), time.Minute)

	bob := testkit.NewRecordingConnection("bob")
	alice := testkit.NewRecordingConnection("alice")
	_, _ = f.tracker.Connected(ctx, bob)
	_, _ = f.tracker.Connected(ctx, alice)

	req.True(f.tracker.Heartbeat(ctx, "alice"))
	req.False(f.tracker.Heartbeat(ctx, "alice"))
	req.False(f.tracker.Heartbeat(ctx, "alice"))

	active := bob.EventsOfType(types.EventUserActive)
	req.Len(active, 1)
	payload, err := testkit.DecodePayload[types.UserActivePayload](active[0])
	req.NoError(err)
	req.Equal("alice", payload.UserID)
	req.False(payload.LastActive.IsZero())
	req.Empty(alice.EventsOfType(types.EventUserActive))
}

func TestTracker_HeartbeatUnthrottledWhenWindowDisabled(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t, testkit.OpenTestManager(t), 0)

	bob := testkit.NewRecordingConnection("bob")
	_, _ = f.tracker.Connected(ctx, bob)

	req.True(f.tracker.Heartbeat(ctx, "alice"))
	req.True(f.tracker.Heartbeat(ctx, "alice"))
	req.Len(bob.EventsOfType(types.EventUserActive), 2)
}

func TestTracker_PersistenceFailureIsDropped(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)

	users := mocks.NewMockUserStore(ctrl)
	users.EXPECT().TouchLastActive(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("disk full")).AnyTimes()
	f := newFixture(t, users, time.Minute)

	bob := testkit.NewRecordingConnection("bob")
	_, err := f.tracker.Connected(ctx, bob)
	req.NoError(err)

	alice := testkit.NewRecordingConnection("alice")
	first, err := f.tracker.Connected(ctx, alice)
	req.NoError(err)
	req.True(first)
	req.Len(bob.EventsOfType(types.EventUserConnected), 1)

	req.True(f.tracker.Heartbeat(ctx, "alice"))
	req.True(f.tracker.Disconnected(ctx, "alice", alice.GetConnectionID()))
	req.Len(bob.EventsOfType(types.EventUserDisconnected), 1)
}

func TestTracker_ConnectedRejectsAnonymous(t *testing.T) {
	f := newFixture(t, testkit.OpenTestManager(t), time.Minute)
	_, err := f.tracker.Connected(context.Background(), testkit.NewRecordingConnection(""))
	require.ErrorIs(t, err, registry.ErrEmptyUserID)
}
