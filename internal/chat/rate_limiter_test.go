package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_WindowAndReset(t *testing.T) {
	req := require.New(t)
	rl := NewRateLimiter(3, time.Minute)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }

	for i := 0; i < 3; i++ {
		req.True(rl.Allow("alice"))
	}
	req.False(rl.Allow("alice"))
	req.True(rl.Allow("bob"))

	rl.now = func() time.Time { return base.Add(time.Minute) }
	req.True(rl.Allow("alice"))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	req := require.New(t)
	rl := NewRateLimiter(3, time.Minute)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return base }
	rl.Allow("alice")
	rl.Allow("bob")

	rl.now = func() time.Time { return base.Add(3 * time.Minute) }
	rl.Allow("bob")
	rl.Cleanup()
	req.Equal(2, rl.size())

	rl.now = func() time.Time { return base.Add(6 * time.Minute) }
	rl.Cleanup()
	req.Equal(1, rl.size())
}

func TestRateLimiter_DisabledWithZeroLimit(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	for i := 0; i < 1000; i++ {
		require.True(t, rl.Allow("alice"))
	}
}
