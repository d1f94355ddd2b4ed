package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// CatalogReaderFactory returns a fresh, unloaded catalog reader.
type CatalogReaderFactory func() ports.CatalogReader

// CatalogHandler serves the public, visible-only catalog.
type CatalogHandler struct {
	newReader CatalogReaderFactory
}

func NewCatalogHandler(newReader CatalogReaderFactory) *CatalogHandler {
	return &CatalogHandler{newReader: newReader}
}

func (h *CatalogHandler) load(c echo.Context) (ports.CatalogReader, error) {
	reader := h.newReader()
	if err := reader.Load(c.Request().Context()); err != nil {
		return nil, err
	}
	return reader, nil
}

// List handles GET /v1/products.
//
// @Summary      List visible products
// @Tags         catalog
// @Produce      json
// @Param        category  query     string  false  "Category, or \"all\""
// @Param        search    query     string  false  "Case-insensitive match on name and description"
// @Success      200       {object}  productListResponse
// @Failure      503       {object}  errorResponse
// @Router       /v1/products [get]
func (h *CatalogHandler) List(c echo.Context) error {
	reader, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductList(reader.View(c.QueryParam("category"), c.QueryParam("search"))))
}

// Categories handles GET /v1/products/categories.
//
// @Summary      List categories of visible products
// @Tags         catalog
// @Produce      json
// @Success      200  {object}  categoriesResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/products/categories [get]
func (h *CatalogHandler) Categories(c echo.Context) error {
	reader, err := h.load(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: reader.Categories()})
}

// Get handles GET /v1/products/:id. Hidden products are reported as missing.
//
// @Summary      Get a visible product
// @Tags         catalog
// @Produce      json
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  productResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/products/{id} [get]
func (h *CatalogHandler) Get(c echo.Context) error {
	reader, err := h.load(c)
	if err != nil {
		return err
	}
	p, ok := reader.ProductByID(c.Param("id"))
	if !ok {
		return domain.ErrNotFound
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}
