package service

import (
	"context"

	"signupflow/internal/dto"

	"github.com/google/uuid"
)

// RegistrationService is the authoritative half of the signup flow. It re-runs
// the full rule table on every call and never trusts the client's validation.
type RegistrationService interface {
	// Register creates an account. Rule failures and a taken email are
	// reported as *ValidationError keyed by the client's field identifiers.
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error)

	// EmailExists answers the optimistic client-side uniqueness pre-check.
	EmailExists(ctx context.Context, email string) (bool, error)

	// UpdateProfile applies the same ruleset to an authenticated account,
	// minus the password pair unless req.ChangePassword is set.
	UpdateProfile(ctx context.Context, accountID uuid.UUID, req dto.ProfileUpdateRequest) (*dto.ProfileUpdateResponse, error)
}
