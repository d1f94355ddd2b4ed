package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// ProductFilter carries the equality filters for listing products.
// Results are always ordered by created_at, newest first.
type ProductFilter struct {
	VisibleOnly bool   // true = is_visible must be true
	Category    string // optional: exact category match
}

// ProductPatch is a partial update of a product. Nil fields are left as they
// are; the Clear* flags unset optional fields.
type ProductPatch struct {
	Name               *string
	Description        *string
	Price              *decimal.Decimal
	OriginalPrice      *decimal.Decimal
	ClearOriginalPrice bool
	Category           *string
	ImageURL           *string
	ClearImageURL      bool
	IsVisible          *bool
	IsOnSale           *bool
	Stock              *int
	UpdatedAt          time.Time
}

// ProductRepository defines persistence operations for the products relation.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, error)
	// FindByID returns domain.ErrNotFound when no product has the given id.
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	// Update applies patch to the product; domain.ErrNotFound when no row matched.
	Update(ctx context.Context, id string, patch ProductPatch) error
	// Delete removes the product. Deleting zero rows is not an error.
	Delete(ctx context.Context, id string) error
}
