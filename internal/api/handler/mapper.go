package handler

import (
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// --- Request → Service input ---

func toProductInput(r createProductRequest) ports.ProductInput {
	return ports.ProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Category:      r.Category,
		ImageURL:      r.ImageURL,
		IsVisible:     r.IsVisible,
		IsOnSale:      r.IsOnSale,
		Stock:         r.Stock,
	}
}

func toProductPatch(r updateProductRequest) ports.ProductPatch {
	return ports.ProductPatch{
		Name:               r.Name,
		Description:        r.Description,
		Price:              r.Price,
		OriginalPrice:      r.OriginalPrice,
		ClearOriginalPrice: r.ClearOriginalPrice,
		Category:           r.Category,
		IsVisible:          r.IsVisible,
		IsOnSale:           r.IsOnSale,
		Stock:              r.Stock,
	}
}

// --- Domain → HTTP response ---

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		OriginalPrice:   p.OriginalPrice,
		Category:        p.Category,
		ImageURL:        p.ImageURL,
		IsVisible:       p.IsVisible,
		IsOnSale:        p.IsOnSale,
		Stock:           p.Stock,
		OnSale:          p.OnSale(),
		DiscountPercent: p.DiscountPercent(),
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt.UTC(),
	}
}

func toProductList(products []*domain.Product) productListResponse {
	items := make([]productResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}
	return productListResponse{Items: items, Count: len(items)}
}

func toCartResponse(engine ports.CartEngine) cartResponse {
	lines := engine.Lines()
	out := make([]cartLineResponse, 0, len(lines))
	for _, l := range lines {
		if l.Product == nil {
			continue
		}
		out = append(out, cartLineResponse{
			ID:        l.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
			CreatedAt: l.CreatedAt.UTC(),
			Product:   toProductResponse(l.Product),
		})
	}
	return cartResponse{
		Lines:      out,
		TotalItems: engine.TotalItemCount(),
		TotalPrice: engine.TotalPrice(),
	}
}
