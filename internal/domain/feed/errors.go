package feed

import "errors"

// ErrInvalidEvent indicates an event is missing its group, user or type.
var ErrInvalidEvent = errors.New("invalid feed event")
