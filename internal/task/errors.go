package task

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("task not found")
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrUnauthenticated  = errors.New("no signed-in user")
)
