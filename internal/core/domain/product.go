package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryAll is the sentinel category that disables category filtering.
const CategoryAll = "all"

var hundred = decimal.NewFromInt(100)

// Product is a catalog entry. The discount percentage is always derived from
// Price and OriginalPrice and never stored.
type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   *string          `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Category      string           `json:"category"`
	ImageURL      *string          `json:"image_url"`
	IsVisible     bool             `json:"is_visible"`
	IsOnSale      bool             `json:"is_on_sale"`
	Stock         int              `json:"stock"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// DiscountPercent returns round((original-price)/original*100) for a product
// on sale. The result is kept in [1,99]; 0 means the product must be shown as
// not on sale (flag off, no original price, or original price <= price).
func (p *Product) DiscountPercent() int {
	if !p.IsOnSale || p.OriginalPrice == nil || !p.OriginalPrice.GreaterThan(p.Price) {
		return 0
	}
	pct := p.OriginalPrice.Sub(p.Price).Div(*p.OriginalPrice).Mul(hundred).Round(0).IntPart()
	switch {
	case pct < 1:
		return 1
	case pct > 99:
		return 99
	}
	return int(pct)
}

// OnSale reports whether the product should be presented as discounted.
func (p *Product) OnSale() bool {
	return p.DiscountPercent() > 0
}

// DescriptionText returns the description or "" when absent.
func (p *Product) DescriptionText() string {
	if p.Description == nil {
		return ""
	}
	return *p.Description
}
