package api

import "errors"

var (
	ErrInvalidLimit  = errors.New("limit must be between 1 and the configured maximum")
	ErrInvalidUserID = errors.New("invalid user id")
)
