package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// CartEngine is the view of one user's cart. Mutations write to storage and
// then reload the whole cart; the reload is the only source of the cached
// state.
type CartEngine interface {
	Load(ctx context.Context) error
	AddToCart(ctx context.Context, productID string, quantity int) error
	UpdateQuantity(ctx context.Context, lineID string, quantity int) error
	RemoveLine(ctx context.Context, lineID string) error
	ClearCart(ctx context.Context) error

	Lines() []domain.CartLine
	Loading() bool
	TotalItemCount() int
	TotalPrice() decimal.Decimal
	QuantityOf(productID string) int
}
