package service

import "signupflow/internal/rules"

// ValidationError aggregates per-field messages. The transport layer forwards
// Fields verbatim so client-side error placement needs no translation.
type ValidationError struct {
	Fields rules.FieldErrors
}

func (e *ValidationError) Error() string { return "validation failed" }
