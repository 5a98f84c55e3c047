package impl

import "errors"

var (
	ErrEmptyPassword = errors.New("empty password")
)

// User-facing message strings. The email-taken message doubles as the field
// error for both the pre-check and the unique-constraint path.
const (
	msgEmailTaken      = "This email is already registered"
	msgRegistered      = "Registration complete. Welcome aboard!"
	msgProfileUpdated  = "Profile updated"
	msgLoginSucceeded  = "Welcome back!"
)
