package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
	"github.com/storefront/storefront-api/internal/core/service"
	"github.com/storefront/storefront-api/internal/core/session"
)

// imageField is the multipart field carrying a product image.
const imageField = "image"

// AdminCatalogFactory builds an admin catalog bound to the caller's session.
type AdminCatalogFactory func(sess *session.Session) ports.AdminCatalog

// AdminHandler exposes product management to admins.
type AdminHandler struct {
	newCatalog AdminCatalogFactory
}

func NewAdminHandler(newCatalog AdminCatalogFactory) *AdminHandler {
	return &AdminHandler{newCatalog: newCatalog}
}

func (h *AdminHandler) catalog(c echo.Context) (ports.AdminCatalog, error) {
	sess, err := ctxSession(c)
	if err != nil {
		return nil, err
	}
	return h.newCatalog(sess), nil
}

// loaded returns a catalog with every product loaded, hidden ones included.
func (h *AdminHandler) loaded(c echo.Context) (ports.AdminCatalog, error) {
	cat, err := h.catalog(c)
	if err != nil {
		return nil, err
	}
	if err := cat.Load(c.Request().Context(), true); err != nil {
		return nil, err
	}
	return cat, nil
}

// List handles GET /v1/admin/products.
//
// @Summary      List products (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        include_hidden  query     bool    false  "Include hidden products (default true)"
// @Param        category        query     string  false  "Exact category"
// @Param        search          query     string  false  "Match on name, description or category"
// @Success      200             {object}  productListResponse
// @Failure      401             {object}  errorResponse
// @Failure      403             {object}  errorResponse
// @Router       /v1/admin/products [get]
func (h *AdminHandler) List(c echo.Context) error {
	includeHidden := true
	if raw := c.QueryParam("include_hidden"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "include_hidden must be a boolean")
		}
		includeHidden = v
	}

	cat, err := h.catalog(c)
	if err != nil {
		return err
	}
	if err := cat.Load(c.Request().Context(), includeHidden); err != nil {
		return err
	}

	var products []*domain.Product
	switch category, search := c.QueryParam("category"), c.QueryParam("search"); {
	case search != "":
		products = cat.Search(search)
	case category != "" && category != domain.CategoryAll:
		products = cat.ProductsByCategory(category)
	default:
		products = cat.Products()
	}
	return c.JSON(http.StatusOK, toProductList(products))
}

// Categories handles GET /v1/admin/products/categories.
//
// @Summary      List categories of all products (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  categoriesResponse
// @Router       /v1/admin/products/categories [get]
func (h *AdminHandler) Categories(c echo.Context) error {
	cat, err := h.loaded(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, categoriesResponse{Categories: cat.Categories()})
}

// Get handles GET /v1/admin/products/:id.
//
// @Summary      Get any product (admin)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product id"
// @Success      200  {object}  productResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/products/{id} [get]
func (h *AdminHandler) Get(c echo.Context) error {
	cat, err := h.loaded(c)
	if err != nil {
		return err
	}
	p, ok := cat.ProductByID(c.Param("id"))
	if !ok {
		return domain.ErrNotFound
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Create handles POST /v1/admin/products.
//
// @Summary      Create a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product"
// @Success      201   {object}  productResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/products [post]
func (h *AdminHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	cat, err := h.catalog(c)
	if err != nil {
		return err
	}
	p, err := cat.Create(c.Request().Context(), toProductInput(req))
	metrics.ProductMutationsTotal.WithLabelValues("create", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

// Update handles PUT /v1/admin/products/:id as a partial update.
//
// @Summary      Update a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Product id"
// @Param        body  body      updateProductRequest  true  "Fields to change"
// @Success      200   {object}  productResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/products/{id} [put]
func (h *AdminHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	cat, err := h.catalog(c)
	if err != nil {
		return err
	}
	p, err := cat.Update(c.Request().Context(), c.Param("id"), toProductPatch(req))
	metrics.ProductMutationsTotal.WithLabelValues("update", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Delete handles DELETE /v1/admin/products/:id. Deleting an unknown id succeeds.
//
// @Summary      Delete a product
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "Product id"
// @Success      204
// @Router       /v1/admin/products/{id} [delete]
func (h *AdminHandler) Delete(c echo.Context) error {
	cat, err := h.catalog(c)
	if err != nil {
		return err
	}
	err = cat.Delete(c.Request().Context(), c.Param("id"))
	metrics.ProductMutationsTotal.WithLabelValues("delete", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// SetVisibility handles PATCH /v1/admin/products/:id/visibility.
//
// @Summary      Show or hide a product
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Product id"
// @Param        body  body      visibilityRequest  true  "Visibility"
// @Success      200   {object}  productResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/admin/products/{id}/visibility [patch]
func (h *AdminHandler) SetVisibility(c echo.Context) error {
	var req visibilityRequest
	if err := h.bindToggle(c, &req); err != nil {
		return err
	}
	return h.toggle(c, "visibility", func(cat ports.AdminCatalog, id string) error {
		return cat.SetVisibility(c.Request().Context(), id, *req.IsVisible)
	})
}

// SetOnSale handles PATCH /v1/admin/products/:id/sale.
//
// @Summary      Put a product on sale or take it off
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Product id"
// @Param        body  body      saleRequest  true  "Sale flag"
// @Success      200   {object}  productResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/admin/products/{id}/sale [patch]
func (h *AdminHandler) SetOnSale(c echo.Context) error {
	var req saleRequest
	if err := h.bindToggle(c, &req); err != nil {
		return err
	}
	return h.toggle(c, "sale", func(cat ports.AdminCatalog, id string) error {
		return cat.SetOnSale(c.Request().Context(), id, *req.IsOnSale)
	})
}

// SetStock handles PATCH /v1/admin/products/:id/stock.
//
// @Summary      Set a product's stock
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Product id"
// @Param        body  body      stockRequest  true  "Stock"
// @Success      200   {object}  productResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/products/{id}/stock [patch]
func (h *AdminHandler) SetStock(c echo.Context) error {
	var req stockRequest
	if err := h.bindToggle(c, &req); err != nil {
		return err
	}
	return h.toggle(c, "stock", func(cat ports.AdminCatalog, id string) error {
		return cat.SetStock(c.Request().Context(), id, *req.Stock)
	})
}

// ReplaceImage handles PUT /v1/admin/products/:id/image (multipart field "image").
//
// @Summary      Upload or replace a product image
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Product id"
// @Param        image  formData  file    true  "Image, at most 5 MiB"
// @Success      200    {object}  productResponse
// @Failure      404    {object}  errorResponse
// @Failure      422    {object}  errorResponse
// @Router       /v1/admin/products/{id}/image [put]
func (h *AdminHandler) ReplaceImage(c echo.Context) error {
	upload, err := readUpload(c)
	if err != nil {
		return err
	}

	cat, err := h.catalog(c)
	if err != nil {
		return err
	}
	p, err := cat.ReplaceImage(c.Request().Context(), c.Param("id"), upload)
	metrics.ProductMutationsTotal.WithLabelValues("image", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	metrics.ImageUploadBytes.Observe(float64(len(upload.Data)))
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// RemoveImage handles DELETE /v1/admin/products/:id/image.
//
// @Summary      Remove a product image
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path  string  true  "Product id"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /v1/admin/products/{id}/image [delete]
func (h *AdminHandler) RemoveImage(c echo.Context) error {
	cat, err := h.catalog(c)
	if err != nil {
		return err
	}
	err = cat.RemoveImage(c.Request().Context(), c.Param("id"))
	metrics.ProductMutationsTotal.WithLabelValues("image", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) bindToggle(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return nil
}

// toggle runs a single-field mutation and answers with the updated product.
func (h *AdminHandler) toggle(c echo.Context, op string, apply func(cat ports.AdminCatalog, id string) error) error {
	cat, err := h.catalog(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	err = apply(cat, id)
	metrics.ProductMutationsTotal.WithLabelValues(op, metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	p, ok := cat.ProductByID(id)
	if !ok {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// readUpload reads the multipart image, keeping at most one byte more than the
// accepted size so oversize files are still recognised as such.
func readUpload(c echo.Context) (ports.ImageUpload, error) {
	fh, err := c.FormFile(imageField)
	if err != nil {
		return ports.ImageUpload{}, echo.NewHTTPError(http.StatusBadRequest, "missing image file")
	}
	f, err := fh.Open()
	if err != nil {
		return ports.ImageUpload{}, echo.NewHTTPError(http.StatusBadRequest, "unreadable image file")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, service.MaxImageSize+1))
	if err != nil {
		return ports.ImageUpload{}, echo.NewHTTPError(http.StatusBadRequest, "unreadable image file")
	}
	return ports.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}
