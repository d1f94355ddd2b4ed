package ports

import (
	"context"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// AuthResult is returned by a successful sign-in.
type AuthResult struct {
	Token     string
	TokenID   string
	ExpiresAt time.Time
	Profile   *domain.Profile
}

// AuthService is the authentication collaborator. Failures are reported as
// domain error kinds (ErrInvalidCredentials, ErrEmailTaken,
// ErrPasswordTooShort, ErrValidation), never as text to be matched.
type AuthService interface {
	SignUp(ctx context.Context, email, password, fullName string) (*domain.Profile, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error
	CurrentUser(ctx context.Context, userID string) (*domain.Profile, error)
}

// TokenRevoker remembers signed-out tokens until they expire.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
