package registry

import "errors"

var (
	ErrNilConnection = errors.New("connection cannot be nil")
	ErrEmptyUserID   = errors.New("user id cannot be empty")
)
