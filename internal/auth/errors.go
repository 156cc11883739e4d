package auth

import "errors"

var (
	ErrAuthenticationMissing = errors.New("authentication missing")
	ErrInvalidToken          = errors.New("invalid token")
	ErrEmptySecret           = errors.New("signing secret cannot be empty")
)
