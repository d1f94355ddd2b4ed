package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one (user, product, quantity) row of a cart. Product is joined
// on read and is nil when the referenced product no longer exists.
type CartLine struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	Product   *Product  `json:"product,omitempty"`
}

// Subtotal is the joined product's current price times the quantity.
func (l CartLine) Subtotal() decimal.Decimal {
	if l.Product == nil {
		return decimal.Zero
	}
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
