package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
	"github.com/storefront/storefront-api/internal/core/session"
)

// ImageManager abstracts image storage for the admin catalog.
type ImageManager interface {
	Upload(ctx context.Context, upload ports.ImageUpload, productID string) (string, error)
	Delete(ctx context.Context, url string) error
	Owns(url string) bool
}

// ImageCleaner removes superseded images after the product write succeeded.
type ImageCleaner interface {
	Schedule(productID, url string)
}

// AdminCatalog manages products on behalf of an admin session. Every call
// checks the session's role itself; callers do not need to pre-authorize.
// Each mutation is followed by a reload of the product list.
type AdminCatalog struct {
	repo    ports.ProductRepository
	images  ImageManager
	cleaner ImageCleaner
	sess    *session.Session
	log     zerolog.Logger
	now     func() time.Time

	mu            sync.RWMutex
	products      []*domain.Product
	includeHidden bool
}

func NewAdminCatalog(
	repo ports.ProductRepository,
	images ImageManager,
	cleaner ImageCleaner,
	sess *session.Session,
	log zerolog.Logger,
) *AdminCatalog {
	return &AdminCatalog{
		repo:          repo,
		images:        images,
		cleaner:       cleaner,
		sess:          sess,
		log:           log,
		now:           time.Now,
		includeHidden: true,
	}
}

// Load fetches the product list, hidden products included when includeHidden.
func (a *AdminCatalog) Load(ctx context.Context, includeHidden bool) error {
	if err := a.authorize(); err != nil {
		return err
	}
	a.mu.Lock()
	a.includeHidden = includeHidden
	a.mu.Unlock()
	return a.reload(ctx)
}

func (a *AdminCatalog) Products() []*domain.Product {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]*domain.Product(nil), a.products...)
}

func (a *AdminCatalog) ProductByID(id string) (*domain.Product, bool) {
	return findProduct(a.Products(), id)
}

func (a *AdminCatalog) ProductsByCategory(category string) []*domain.Product {
	out := make([]*domain.Product, 0)
	for _, p := range a.Products() {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

func (a *AdminCatalog) Categories() []string {
	return Categories(a.Products())
}

// Search matches name, description or category, ignoring case.
func (a *AdminCatalog) Search(query string) []*domain.Product {
	term := strings.ToLower(query)
	out := make([]*domain.Product, 0)
	for _, p := range a.Products() {
		if strings.Contains(strings.ToLower(p.Name), term) ||
			strings.Contains(strings.ToLower(p.DescriptionText()), term) ||
			strings.Contains(strings.ToLower(p.Category), term) {
			out = append(out, p)
		}
	}
	return out
}

// Create validates and stores a new product.
func (a *AdminCatalog) Create(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	if err := a.authorize(); err != nil {
		return nil, err
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	now := a.now().UTC()
	visible := true
	if in.IsVisible != nil {
		visible = *in.IsVisible
	}
	p := &domain.Product{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price,
		OriginalPrice: in.OriginalPrice,
		Category:      strings.TrimSpace(in.Category),
		ImageURL:      in.ImageURL,
		IsVisible:     visible,
		IsOnSale:      in.IsOnSale,
		Stock:         in.Stock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := a.repo.Create(ctx, p); err != nil {
		a.log.Error().Err(err).Str("name", p.Name).Msg("failed to create product")
		return nil, fmt.Errorf("%w: create product: %w", domain.ErrWrite, err)
	}
	a.log.Info().Str("product_id", p.ID).Str("name", p.Name).Msg("product created")

	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Update applies a partial update and returns the stored product.
func (a *AdminCatalog) Update(ctx context.Context, id string, patch ports.ProductPatch) (*domain.Product, error) {
	if err := a.authorize(); err != nil {
		return nil, err
	}
	if err := validateProductPatch(patch); err != nil {
		return nil, err
	}
	if err := a.patch(ctx, id, patch); err != nil {
		return nil, err
	}

	updated, err := a.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: product %s: %w", domain.ErrLoad, id, err)
	}
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a product and schedules removal of its image. Deleting a
// product that does not exist succeeds.
func (a *AdminCatalog) Delete(ctx context.Context, id string) error {
	if err := a.authorize(); err != nil {
		return err
	}

	var imageURL string
	existing, err := a.repo.FindByID(ctx, id)
	switch {
	case err == nil:
		if existing.ImageURL != nil {
			imageURL = *existing.ImageURL
		}
	case !errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%w: product %s: %w", domain.ErrLoad, id, err)
	}

	if err := a.repo.Delete(ctx, id); err != nil {
		a.log.Error().Err(err).Str("product_id", id).Msg("failed to delete product")
		return fmt.Errorf("%w: delete product %s: %w", domain.ErrWrite, id, err)
	}
	a.log.Info().Str("product_id", id).Msg("product deleted")

	a.scheduleCleanup(id, imageURL)
	return a.reload(ctx)
}

func (a *AdminCatalog) SetVisibility(ctx context.Context, id string, visible bool) error {
	return a.toggle(ctx, id, ports.ProductPatch{IsVisible: &visible})
}

func (a *AdminCatalog) SetOnSale(ctx context.Context, id string, onSale bool) error {
	return a.toggle(ctx, id, ports.ProductPatch{IsOnSale: &onSale})
}

func (a *AdminCatalog) SetStock(ctx context.Context, id string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: stock must not be negative", domain.ErrValidation)
	}
	return a.toggle(ctx, id, ports.ProductPatch{Stock: &stock})
}

// ReplaceImage stores a new image for the product and points image_url at it.
// The previous image is removed in the background when it is one of ours.
func (a *AdminCatalog) ReplaceImage(ctx context.Context, id string, upload ports.ImageUpload) (*domain.Product, error) {
	if err := a.authorize(); err != nil {
		return nil, err
	}

	existing, err := a.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: product %s: %w", domain.ErrLoad, id, err)
	}

	url, err := a.images.Upload(ctx, upload, id)
	if err != nil {
		return nil, err
	}

	if err := a.patch(ctx, id, ports.ProductPatch{ImageURL: &url}); err != nil {
		// The product row was not touched; drop the orphaned upload.
		a.scheduleCleanup(id, url)
		return nil, err
	}

	if existing.ImageURL != nil {
		a.scheduleCleanup(id, *existing.ImageURL)
	}

	existing.ImageURL = &url
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	if p, ok := a.ProductByID(id); ok {
		return p, nil
	}
	return existing, nil
}

// RemoveImage clears the product's image and schedules its removal.
func (a *AdminCatalog) RemoveImage(ctx context.Context, id string) error {
	if err := a.authorize(); err != nil {
		return err
	}

	existing, err := a.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return fmt.Errorf("%w: product %s: %w", domain.ErrLoad, id, err)
	}
	if existing.ImageURL == nil {
		return nil
	}

	if err := a.patch(ctx, id, ports.ProductPatch{ClearImageURL: true}); err != nil {
		return err
	}
	a.scheduleCleanup(id, *existing.ImageURL)
	return a.reload(ctx)
}

func (a *AdminCatalog) authorize() error {
	user := a.sess.User()
	if user == nil {
		return domain.ErrAuthRequired
	}
	if !user.IsAdmin() {
		a.log.Warn().Str("user_id", user.ID).Str("role", user.Role).Msg("non-admin attempted catalog management")
		return domain.ErrForbidden
	}
	return nil
}

func (a *AdminCatalog) toggle(ctx context.Context, id string, patch ports.ProductPatch) error {
	if err := a.authorize(); err != nil {
		return err
	}
	if err := a.patch(ctx, id, patch); err != nil {
		return err
	}
	return a.reload(ctx)
}

// patch stamps updated_at and writes the partial update.
func (a *AdminCatalog) patch(ctx context.Context, id string, patch ports.ProductPatch) error {
	patch.UpdatedAt = a.now().UTC()
	if err := a.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		a.log.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		return fmt.Errorf("%w: update product %s: %w", domain.ErrWrite, id, err)
	}
	a.log.Info().Str("product_id", id).Msg("product updated")
	return nil
}

func (a *AdminCatalog) reload(ctx context.Context) error {
	a.mu.RLock()
	filter := ports.ProductFilter{VisibleOnly: !a.includeHidden}
	a.mu.RUnlock()

	products, err := a.repo.List(ctx, filter)
	if err != nil {
		a.log.Error().Err(err).Msg("failed to load products")
		return fmt.Errorf("%w: products: %w", domain.ErrLoad, err)
	}

	a.mu.Lock()
	a.products = products
	a.mu.Unlock()
	return nil
}

func (a *AdminCatalog) scheduleCleanup(productID, url string) {
	if url == "" || a.cleaner == nil || !a.images.Owns(url) {
		return
	}
	a.cleaner.Schedule(productID, url)
}

func validateProductInput(in ports.ProductInput) error {
	var problems []string
	if strings.TrimSpace(in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		problems = append(problems, "category is required")
	}
	if in.Price.IsNegative() {
		problems = append(problems, "price must not be negative")
	}
	if in.OriginalPrice != nil && in.OriginalPrice.IsNegative() {
		problems = append(problems, "original_price must not be negative")
	}
	if in.Stock < 0 {
		problems = append(problems, "stock must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}

func validateProductPatch(p ports.ProductPatch) error {
	var problems []string
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		problems = append(problems, "name must not be empty")
	}
	if p.Category != nil && strings.TrimSpace(*p.Category) == "" {
		problems = append(problems, "category must not be empty")
	}
	if p.Price != nil && p.Price.IsNegative() {
		problems = append(problems, "price must not be negative")
	}
	if p.OriginalPrice != nil && p.OriginalPrice.IsNegative() {
		problems = append(problems, "original_price must not be negative")
	}
	if p.Stock != nil && *p.Stock < 0 {
		problems = append(problems, "stock must not be negative")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(problems, "; "))
	}
	return nil
}
