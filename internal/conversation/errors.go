package conversation

import "errors"

var ErrInvalidUserID = errors.New("invalid user id")
