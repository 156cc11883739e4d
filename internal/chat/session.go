package chat

import (
	"slices"
	"sync"

	"github.com/samber/lo"

	"intouch/pkg/interfaces"
)

// State of one connection's protocol session.
type State int

const (
	Connecting State = iota
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Session is the per-connection protocol state.
type Session struct {
	conn interfaces.Connection

	mu        sync.Mutex
	state     State
	typingTo  map[string]struct{}
	malformed int
}

func newSession(conn interfaces.Connection) *Session {
	return &Session{
		conn:     conn,
		state:    Connecting,
		typingTo: make(map[string]struct{}),
	}
}

func (s *Session) UserID() string       { return s.conn.GetUserID() }
func (s *Session) ConnectionID() string { return s.conn.GetConnectionID() }

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// markDisconnected moves to Disconnected and reports whether this call did it.
func (s *Session) markDisconnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Disconnected {
		return false
	}
	s.state = Disconnected
	return true
}

func (s *Session) startTyping(receiverID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.typingTo[receiverID] = struct{}{}
}

// stopTyping reports whether receiverID had an outstanding announcement.
func (s *Session) stopTyping(receiverID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.typingTo[receiverID]
	delete(s.typingTo, receiverID)
	return ok
}

// TypingTargets returns receivers with an outstanding TypingStart, sorted.
func (s *Session) TypingTargets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	targets := lo.Keys(s.typingTo)
	slices.Sort(targets)
	return targets
}

func (s *Session) drainTyping() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	targets := lo.Keys(s.typingTo)
	slices.Sort(targets)
	clear(s.typingTo)
	return targets
}

// recordFrame updates the streak of consecutive undecodable frames.
func (s *Session) recordFrame(decoded bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if decoded {
		s.malformed = 0
	} else {
		s.malformed++
	}
	return s.malformed
}

// MalformedStreak is the number of consecutive undecodable frames.
func (s *Session) MalformedStreak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.malformed
}
