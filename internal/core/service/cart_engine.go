package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
	"github.com/storefront/storefront-api/internal/core/session"
)

// CartEngine presents one user's cart. The cached lines are a read replica of
// storage: every mutation writes first and then replaces the cache wholesale
// from a fresh load, so the last reload observed wins.
//
// Two adds of the same product issued concurrently by the same user may both
// miss the cached line and insert twice, or both read the same quantity and
// lose one increment. Storage is not locked to prevent this.
type CartEngine struct {
	carts    ports.CartRepository
	products ports.ProductRepository
	sess     *session.Session
	log      zerolog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	lines   []domain.CartLine
	loading bool
}

func NewCartEngine(carts ports.CartRepository, products ports.ProductRepository, sess *session.Session, log zerolog.Logger) *CartEngine {
	return &CartEngine{
		carts:    carts,
		products: products,
		sess:     sess,
		log:      log,
		now:      time.Now,
		loading:  true,
	}
}

// Load replaces the cache with the user's lines from storage. Lines whose
// product no longer exists are dropped. Without a signed-in user the cart is
// empty and storage is not touched. On failure the previous cache is kept.
func (e *CartEngine) Load(ctx context.Context) error {
	user := e.sess.User()
	if user == nil {
		e.mu.Lock()
		e.lines = nil
		e.loading = false
		e.mu.Unlock()
		return nil
	}

	e.setLoading(true)
	defer e.setLoading(false)

	rows, err := e.carts.ListByUser(ctx, user.ID)
	if err != nil {
		e.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to load cart")
		return fmt.Errorf("%w: cart of user %s: %w", domain.ErrLoad, user.ID, err)
	}

	lines := make([]domain.CartLine, 0, len(rows))
	for _, row := range rows {
		if row.Product == nil {
			e.log.Debug().Str("line_id", row.ID).Str("product_id", row.ProductID).Msg("dropping cart line with missing product")
			continue
		}
		lines = append(lines, row)
	}

	e.mu.Lock()
	e.lines = lines
	e.mu.Unlock()
	return nil
}

// AddToCart adds quantity units of a product. A product already in the cart
// has its line's quantity increased instead of getting a second line.
func (e *CartEngine) AddToCart(ctx context.Context, productID string, quantity int) error {
	user := e.sess.User()
	if user == nil {
		return domain.ErrAuthRequired
	}
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)
	}

	if line, ok := e.lineByProduct(productID); ok {
		if line.Product != nil && !line.Product.IsVisible {
			return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		if quantity > math.MaxInt-line.Quantity {
			return fmt.Errorf("product %s: quantity overflows: %w", productID, domain.ErrInsufficientStock)
		}
		return e.UpdateQuantity(ctx, line.ID, line.Quantity+quantity)
	}

	product, err := e.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		return fmt.Errorf("%w: product %s: %w", domain.ErrLoad, productID, err)
	}
	if !product.IsVisible {
		return fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
	}
	if quantity > product.Stock {
		return fmt.Errorf("product %s has %d in stock: %w", productID, product.Stock, domain.ErrInsufficientStock)
	}

	line := &domain.CartLine{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: e.now().UTC(),
	}
	if err := e.carts.Insert(ctx, line); err != nil {
		e.log.Error().Err(err).Str("user_id", user.ID).Str("product_id", productID).Msg("failed to insert cart line")
		return fmt.Errorf("%w: add product %s: %w", domain.ErrWrite, productID, err)
	}

	e.log.Info().Str("user_id", user.ID).Str("product_id", productID).Int("quantity", quantity).Msg("cart line added")
	return e.Load(ctx)
}

// UpdateQuantity sets a line's quantity. A quantity <= 0 removes the line.
// Raising a quantity above the product's stock is rejected before writing.
func (e *CartEngine) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity <= 0 {
		return e.RemoveLine(ctx, lineID)
	}

	user := e.sess.User()
	if user == nil {
		return domain.ErrAuthRequired
	}

	if line, ok := e.lineByID(lineID); ok && line.Product != nil {
		if quantity > line.Quantity && quantity > line.Product.Stock {
			return fmt.Errorf("product %s has %d in stock: %w", line.ProductID, line.Product.Stock, domain.ErrInsufficientStock)
		}
	}

	if err := e.carts.UpdateQuantity(ctx, user.ID, lineID, quantity); err != nil {
		e.log.Error().Err(err).Str("line_id", lineID).Msg("failed to update cart line")
		return fmt.Errorf("%w: update line %s: %w", domain.ErrWrite, lineID, err)
	}
	return e.Load(ctx)
}

// RemoveLine deletes a line. Removing a line that does not exist succeeds.
func (e *CartEngine) RemoveLine(ctx context.Context, lineID string) error {
	user := e.sess.User()
	if user == nil {
		return domain.ErrAuthRequired
	}

	if err := e.carts.Delete(ctx, user.ID, lineID); err != nil {
		e.log.Error().Err(err).Str("line_id", lineID).Msg("failed to remove cart line")
		return fmt.Errorf("%w: remove line %s: %w", domain.ErrWrite, lineID, err)
	}
	return e.Load(ctx)
}

// ClearCart removes every line of the user. Without a user it does nothing.
func (e *CartEngine) ClearCart(ctx context.Context) error {
	user := e.sess.User()
	if user == nil {
		return nil
	}

	if err := e.carts.DeleteByUser(ctx, user.ID); err != nil {
		e.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to clear cart")
		return fmt.Errorf("%w: clear cart of user %s: %w", domain.ErrWrite, user.ID, err)
	}

	e.log.Info().Str("user_id", user.ID).Msg("cart cleared")
	return e.Load(ctx)
}

// Lines returns a copy of the cached lines, most recent first.
func (e *CartEngine) Lines() []domain.CartLine {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]domain.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

func (e *CartEngine) Loading() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loading
}

// TotalItemCount is the sum of quantities over the cached lines.
func (e *CartEngine) TotalItemCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	total := 0
	for _, l := range e.lines {
		total += l.Quantity
	}
	return total
}

// TotalPrice sums price*quantity using each line's currently joined price.
func (e *CartEngine) TotalPrice() decimal.Decimal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	total := decimal.Zero
	for _, l := range e.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// QuantityOf returns the cached quantity of a product, 0 when absent.
func (e *CartEngine) QuantityOf(productID string) int {
	if line, ok := e.lineByProduct(productID); ok {
		return line.Quantity
	}
	return 0
}

func (e *CartEngine) setLoading(v bool) {
	e.mu.Lock()
	e.loading = v
	e.mu.Unlock()
}

func (e *CartEngine) lineByProduct(productID string) (domain.CartLine, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, l := range e.lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return domain.CartLine{}, false
}

func (e *CartEngine) lineByID(lineID string) (domain.CartLine, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, l := range e.lines {
		if l.ID == lineID {
			return l, true
		}
	}
	return domain.CartLine{}, false
}
