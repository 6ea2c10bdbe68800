package chat

import "errors"

// Errors returned by Service operations. Callers match them with errors.Is;
// the wrapped message carries the detail.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicatePhone   = errors.New("phone number already registered")
	ErrDuplicateContact = errors.New("contact already exists")
	ErrNotFound         = errors.New("not found")
	ErrPersistence      = errors.New("persistence failure")
)
