package chat

import "errors"

var (
	ErrNilConnection = errors.New("connection cannot be nil")
	ErrSessionClosed = errors.New("session is closed")
)
