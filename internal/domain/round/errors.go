package round

import "errors"

// ErrRoundNotFound indicates the requested round doesn't exist.
var ErrRoundNotFound = errors.New("round not found")
