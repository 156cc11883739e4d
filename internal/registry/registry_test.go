package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"intouch/internal/testkit"
)

func TestRegistry_AddReportsFirstConnection(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	tab1 := testkit.NewRecordingConnection("alice")
	tab2 := testkit.NewRecordingConnection("alice")

	first, err := r.Add("alice", tab1)
	req.NoError(err)
	req.True(first)

	first, err = r.Add("alice", tab2)
	req.NoError(err)
	req.False(first)

	// Re-adding is idempotent.
	first, err = r.Add("alice", tab1)
	req.NoError(err)
	req.False(first)
	req.Len(r.ConnectionsFor("alice"), 2)
}

func TestRegistry_AddValidation(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	_, err := r.Add("alice", nil)
	req.ErrorIs(err, ErrNilConnection)

	_, err = r.Add("", testkit.NewRecordingConnection(""))
	req.ErrorIs(err, ErrEmptyUserID)
	req.Empty(r.Users())
}

func TestRegistry_RemoveReportsLastConnection(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	tab1 := testkit.NewRecordingConnection("alice")
	tab2 := testkit.NewRecordingConnection("alice")
	_, _ = r.Add("alice", tab1)
	_, _ = r.Add("alice", tab2)

	req.False(r.Remove("alice", tab1.GetConnectionID()))
	req.True(r.IsOnline("alice"))

	req.True(r.Remove("alice", tab2.GetConnectionID()))
	req.False(r.IsOnline("alice"))
	req.Empty(r.Users())

	// Removing again or for unknown users is harmless.
	req.False(r.Remove("alice", tab2.GetConnectionID()))
	req.False(r.Remove("nobody", "nothing"))
}

func TestRegistry_ConnectionsForUnknownUserIsEmpty(t *testing.T) {
	r := NewRegistry()
	ids := r.ConnectionsFor("ghost")
	require.NotNil(t, ids)
	require.Empty(t, ids)
}

func TestRegistry_Lookups(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	alice := testkit.NewRecordingConnection("alice")
	bob1 := testkit.NewRecordingConnection("bob")
	bob2 := testkit.NewRecordingConnection("bob")
	for _, c := range []*testkit.RecordingConnection{alice, bob1, bob2} {
		_, err := r.Add(c.GetUserID(), c)
		req.NoError(err)
	}

	conn, ok := r.Connection("bob", bob2.GetConnectionID())
	req.True(ok)
	req.Same(bob2, conn)

	_, ok = r.Connection("alice", bob2.GetConnectionID())
	req.False(ok)

	req.Len(r.Connections("bob"), 2)
	req.Equal([]string{"alice", "bob"}, r.Users())
	req.Equal(map[string]int{"online_users": 2, "total_connections": 3}, r.Stats())
}

func TestRegistry_ConcurrentAddRemoveSingleTransition(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	const tabs = 50
	conns := make([]*testkit.RecordingConnection, tabs)
	for i := range conns {
		conns[i] = testkit.NewRecordingConnection("alice")
	}

	var firsts, lasts int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, c := range conns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := r.Add("alice", c)
			if err != nil {
				return
			}
			if first {
				mu.Lock()
				firsts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	req.Equal(1, firsts)
	req.Len(r.ConnectionsFor("alice"), tabs)

	for _, c := range conns {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Remove("alice", c.GetConnectionID()) {
				mu.Lock()
				lasts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	req.Equal(1, lasts)
	req.False(r.IsOnline("alice"))
}

func TestRegistry_ManyUsers(t *testing.T) {
	req := require.New(t)
	r := NewRegistry()

	for i := 0; i < 20; i++ {
		user := fmt.Sprintf("user-%02d", i)
		_, err := r.Add(user, testkit.NewRecordingConnection(user))
		req.NoError(err)
	}
	req.Len(r.Users(), 20)
	req.Equal("user-00", r.Users()[0])
}
