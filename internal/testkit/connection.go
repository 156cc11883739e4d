// Package testkit holds fakes and fixtures shared by package tests.
package testkit

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"intouch/pkg/types"
)

// ErrConnectionClosed is returned by WriteJSON after Close.
var ErrConnectionClosed = errors.New("recording connection closed")

// RecordingConnection is an in-memory interfaces.Connection that keeps every
// event written to it.
type RecordingConnection struct {
	id     string
	userID string

	mu       sync.Mutex
	events   []types.Event
	closed   bool
	failNext error
}

// NewRecordingConnection returns a connection with a fresh UUID.
func NewRecordingConnection(userID string) *RecordingConnection {
	return &RecordingConnection{id: uuid.NewString(), userID: userID}
}

func (c *RecordingConnection) GetConnectionID() string { return c.id }
func (c *RecordingConnection) GetUserID() string       { return c.userID }

// WriteJSON records v. Values that are not types.Event are round-tripped
// through JSON into one.
func (c *RecordingConnection) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}
	if c.failNext != nil {
		err := c.failNext
		c.failNext = nil
		return err
	}

	evt, ok := v.(types.Event)
	if !ok {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &evt); err != nil {
			return err
		}
	}
	c.events = append(c.events, evt)
	return nil
}

func (c *RecordingConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// FailNextWrite makes the next WriteJSON return err.
func (c *RecordingConnection) FailNextWrite(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failNext = err
}

func (c *RecordingConnection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Events returns a copy of everything written so far.
func (c *RecordingConnection) Events() []types.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Event(nil), c.events...)
}

// EventsOfType filters Events by type.
func (c *RecordingConnection) EventsOfType(eventType string) []types.Event {
	return lo.Filter(c.Events(), func(evt types.Event, _ int) bool {
		return evt.Type == eventType
	})
}

// Types lists the types of the recorded events in order.
func (c *RecordingConnection) Types() []string {
	return lo.Map(c.Events(), func(evt types.Event, _ int) string { return evt.Type })
}

// Reset forgets recorded events.
func (c *RecordingConnection) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

// DecodePayload converts an event payload into T, whether it was recorded as
// a typed struct or decoded from JSON.
func DecodePayload[T any](evt types.Event) (T, error) {
	var out T
	if typed, ok := evt.Payload.(T); ok {
		return typed, nil
	}
	data, err := json.Marshal(evt.Payload)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}
