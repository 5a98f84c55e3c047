package service

import (
	"context"

	"signupflow/internal/domain"
	"signupflow/internal/dto"
)

// SessionService owns credential verification and session lifecycle. The token
// it hands out is an explicit argument to every protected operation; there is
// no ambient current-user state.
type SessionService interface {
	// Login verifies credentials and issues a session. Unknown email and wrong
	// password both yield domain.ErrInvalidCredentials.
	Login(ctx context.Context, req dto.LoginRequest, ip, ua string) (*dto.LoginResponse, error)

	// Logout destroys the session behind the token. Idempotent: an absent or
	// unparseable token is not an error.
	Logout(ctx context.Context, token string) error

	// Verify fails closed: any problem with the token or its session row
	// yields domain.ErrUnauthenticated, never a partial account.
	Verify(ctx context.Context, token string) (*domain.Account, error)
}
