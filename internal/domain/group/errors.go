package group

import "errors"

var (
	// ErrInvalidInput indicates invalid member input.
	ErrInvalidInput = errors.New("invalid member input")
	// ErrMemberExists indicates the member ID is already taken.
	ErrMemberExists = errors.New("member already exists")
)
