package domain

import "errors"

var (
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInvalidTheme      = errors.New("invalid theme")
	ErrInvalidSession    = errors.New("invalid session id")
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrPersist wraps failures to mirror state into the key-value store.
	// The in-memory change has already been applied when it is returned.
	ErrPersist = errors.New("persist state")
)
