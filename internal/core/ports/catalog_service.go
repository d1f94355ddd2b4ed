package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// ProductInput carries all data needed to create a product.
type ProductInput struct {
	Name          string
	Description   *string
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Category      string
	ImageURL      *string
	IsVisible     *bool // nil = visible
	IsOnSale      bool
	Stock         int
}

// CatalogReader is the read side of the catalog shown to shoppers.
type CatalogReader interface {
	Load(ctx context.Context) error
	Products() []*domain.Product
	// View filters the loaded products by category (CategoryAll or "" = any)
	// and by a case-insensitive search over name and description.
	View(category, search string) []*domain.Product
	Categories() []string
	ProductByID(id string) (*domain.Product, bool)
}

// AdminCatalog is the product management surface restricted to admins.
type AdminCatalog interface {
	Load(ctx context.Context, includeHidden bool) error
	Products() []*domain.Product
	ProductByID(id string) (*domain.Product, bool)
	ProductsByCategory(category string) []*domain.Product
	Categories() []string
	Search(query string) []*domain.Product

	Create(ctx context.Context, in ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, patch ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	SetVisibility(ctx context.Context, id string, visible bool) error
	SetOnSale(ctx context.Context, id string, onSale bool) error
	SetStock(ctx context.Context, id string, stock int) error
	ReplaceImage(ctx context.Context, id string, upload ImageUpload) (*domain.Product, error)
	RemoveImage(ctx context.Context, id string) error
}
