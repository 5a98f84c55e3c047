package domain

import "errors"

var (
	// ErrInvalidCredentials is returned for unknown email and wrong password
	// alike; callers must not be able to tell the two apart.
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrUnauthenticated = errors.New("unauthenticated")
	ErrEmailTaken      = errors.New("email already registered")
)
