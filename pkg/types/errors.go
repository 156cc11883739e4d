package types

import "errors"

var (
	ErrInvalidUserID   = errors.New("user ID must be 1-128 characters of letters, digits, '_', '-', '.', '@'")
	ErrMissingSender   = errors.New("message sender is required")
	ErrMissingReceiver = errors.New("message receiver is required")
	ErrBlankContent    = errors.New("message content cannot be blank")
	ErrContentTooLong  = errors.New("message content exceeds the configured length")
)
