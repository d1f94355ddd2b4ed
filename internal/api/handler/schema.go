package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/storefront/storefront-api/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type signUpRequest struct {
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"max=120"`
}

type signInRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token     string          `json:"token,omitempty"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	User      *domain.Profile `json:"user,omitempty"`
}

// --- Catalog ---

// productResponse is a product plus the derived sale presentation.
type productResponse struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     *string          `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	OriginalPrice   *decimal.Decimal `json:"original_price"`
	Category        string           `json:"category"`
	ImageURL        *string          `json:"image_url"`
	IsVisible       bool             `json:"is_visible"`
	IsOnSale        bool             `json:"is_on_sale"`
	Stock           int              `json:"stock"`
	OnSale          bool             `json:"on_sale"`
	DiscountPercent int              `json:"discount_percent"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

type productListResponse struct {
	Items []productResponse `json:"items"`
	Count int               `json:"count"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

// --- Cart ---

type addToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	// Quantity defaults to 1 when omitted.
	Quantity *int `json:"quantity" validate:"omitempty,gt=0,lte=100000"`
}

// updateQuantityRequest accepts any integer; zero or less removes the line.
type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type cartLineResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	CreatedAt time.Time       `json:"created_at"`
	Product   productResponse `json:"product"`
}

type cartResponse struct {
	Lines      []cartLineResponse `json:"lines"`
	TotalItems int                `json:"total_items"`
	TotalPrice decimal.Decimal    `json:"total_price"`
}

// --- Admin ---

type createProductRequest struct {
	Name          string           `json:"name"           validate:"required,max=200"`
	Description   *string          `json:"description"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price"`
	Category      string           `json:"category"       validate:"required,max=100"`
	ImageURL      *string          `json:"image_url"      validate:"omitempty,url"`
	IsVisible     *bool            `json:"is_visible"`
	IsOnSale      bool             `json:"is_on_sale"`
	Stock         int              `json:"stock"          validate:"gte=0"`
}

// updateProductRequest is a partial update; absent fields are left unchanged.
type updateProductRequest struct {
	Name               *string          `json:"name"                 validate:"omitempty,max=200"`
	Description        *string          `json:"description"`
	Price              *decimal.Decimal `json:"price"`
	OriginalPrice      *decimal.Decimal `json:"original_price"`
	ClearOriginalPrice bool             `json:"clear_original_price"`
	Category           *string          `json:"category"             validate:"omitempty,max=100"`
	IsVisible          *bool            `json:"is_visible"`
	IsOnSale           *bool            `json:"is_on_sale"`
	Stock              *int             `json:"stock"                validate:"omitempty,gte=0"`
}

type visibilityRequest struct {
	IsVisible *bool `json:"is_visible" validate:"required"`
}

type saleRequest struct {
	IsOnSale *bool `json:"is_on_sale" validate:"required"`
}

type stockRequest struct {
	Stock *int `json:"stock" validate:"required,gte=0"`
}
