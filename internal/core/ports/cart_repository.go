package ports

import (
	"context"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// CartRepository handles persistence of the cart_items relation. Every
// operation is scoped to the owning user so one user can never touch
// another user's lines.
type CartRepository interface {
	// ListByUser returns the user's lines ordered by created_at descending,
	// each joined to its product. Product is nil when the reference no longer
	// resolves.
	ListByUser(ctx context.Context, userID string) ([]domain.CartLine, error)

	Insert(ctx context.Context, line *domain.CartLine) error

	// UpdateQuantity sets the quantity of one line. Matching zero rows is not
	// an error.
	UpdateQuantity(ctx context.Context, userID, lineID string, quantity int) error

	// Delete removes one line. Deleting zero rows is not an error.
	Delete(ctx context.Context, userID, lineID string) error

	// DeleteByUser removes every line of the user.
	DeleteByUser(ctx context.Context, userID string) error
}
