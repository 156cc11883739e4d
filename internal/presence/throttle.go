package presence

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Throttle admits one event per key per window. Keys live in an in-memory
// badger store and expire through badger's TTL.
type Throttle struct {
	db     *badger.DB
	window time.Duration
}

// NewThrottle opens the in-memory store. A non-positive window disables
// throttling. Badger expiry has one-second resolution.
func NewThrottle(window time.Duration) (*Throttle, error) {
	if window <= 0 {
		return &Throttle{}, nil
	}

	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open throttle store: %w", err)
	}
	return &Throttle{db: db, window: window}, nil
}

// Allow reports whether key may proceed, and if so starts a new window.
// Concurrent callers for the same key are admitted at most once.
func (t *Throttle) Allow(key string) (bool, error) {
	if t.db == nil {
		return true, nil
	}

	allowed := false
	err := t.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		allowed = true
		return txn.SetEntry(badger.NewEntry([]byte(key), []byte{1}).WithTTL(t.window))
	})
	if errors.Is(err, badger.ErrConflict) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("throttle check failed: %w", err)
	}
	return allowed, nil
}

// Forget drops key so the next Allow for it is admitted.
func (t *Throttle) Forget(key string) error {
	if t.db == nil {
		return nil
	}
	return t.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

func (t *Throttle) Close() error {
	if t.db == nil {
		return nil
	}
	return t.db.Close()
}
