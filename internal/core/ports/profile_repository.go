package ports

import (
	"context"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// ProfileRepository defines the interface for profile persistence.
type ProfileRepository interface {
	// Create stores a new profile; domain.ErrEmailTaken when the email exists.
	Create(ctx context.Context, profile *domain.Profile) error
	FindByEmail(ctx context.Context, email string) (*domain.Profile, error)
	FindByID(ctx context.Context, id string) (*domain.Profile, error)
}
