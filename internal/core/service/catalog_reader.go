package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// CatalogReader loads the visible catalog and derives filtered views from it.
type CatalogReader struct {
	repo ports.ProductRepository
	log  zerolog.Logger

	mu       sync.RWMutex
	products []*domain.Product
}

// NewCatalogReader returns a CatalogReader with an empty product list.
func NewCatalogReader(repo ports.ProductRepository, log zerolog.Logger) *CatalogReader {
	return &CatalogReader{repo: repo, log: log}
}

// Load fetches every visible product, newest first. On failure the previously
// loaded list is kept.
func (r *CatalogReader) Load(ctx context.Context) error {
	products, err := r.repo.List(ctx, ports.ProductFilter{VisibleOnly: true})
	if err != nil {
		r.log.Error().Err(err).Msg("failed to load catalog")
		return fmt.Errorf("%w: catalog: %w", domain.ErrLoad, err)
	}

	r.mu.Lock()
	r.products = products
	r.mu.Unlock()
	return nil
}

func (r *CatalogReader) Products() []*domain.Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*domain.Product(nil), r.products...)
}

func (r *CatalogReader) View(category, search string) []*domain.Product {
	return FilterProducts(r.Products(), category, search)
}

func (r *CatalogReader) Categories() []string {
	return Categories(r.Products())
}

func (r *CatalogReader) ProductByID(id string) (*domain.Product, bool) {
	return findProduct(r.Products(), id)
}

// FilterProducts keeps the products of category (any category when it is
// empty or domain.CategoryAll) whose name or description contains search,
// ignoring case. The input order is preserved.
func FilterProducts(products []*domain.Product, category, search string) []*domain.Product {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]*domain.Product, 0, len(products))
	for _, p := range products {
		if category != "" && category != domain.CategoryAll && p.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.DescriptionText()), term) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Categories returns the distinct categories of products, sorted.
func Categories(products []*domain.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := make([]string, 0)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	sort.Strings(out)
	return out
}

func findProduct(products []*domain.Product, id string) (*domain.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}
