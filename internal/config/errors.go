package config

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid configuration")
	ErrInvalidFile   = errors.New("invalid configuration file")
)
