package hub

import "errors"

var (
	ErrHubAlreadyRunning = errors.New("hub is already running")
	ErrHubNotRunning     = errors.New("hub is not running")
	ErrFlushChannelFull  = errors.New("flush channel is full")
	ErrEmptyUserID       = errors.New("user id cannot be empty")
)
