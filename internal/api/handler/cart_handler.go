package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/ports"
	"github.com/storefront/storefront-api/internal/core/session"
)

// CartEngineFactory builds a cart engine bound to the caller's session.
type CartEngineFactory func(sess *session.Session) ports.CartEngine

// CartHandler exposes the signed-in user's cart. Every request loads the cart
// first so that adds merge into existing lines, and answers with the cart as
// reloaded after the mutation.
type CartHandler struct {
	newEngine CartEngineFactory
}

func NewCartHandler(newEngine CartEngineFactory) *CartHandler {
	return &CartHandler{newEngine: newEngine}
}

func (h *CartHandler) engine(c echo.Context) (ports.CartEngine, error) {
	sess, err := ctxSession(c)
	if err != nil {
		return nil, err
	}
	engine := h.newEngine(sess)
	if err := engine.Load(c.Request().Context()); err != nil {
		return nil, err
	}
	return engine, nil
}

// Get handles GET /v1/cart.
//
// @Summary      Get the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cartResponse
// @Failure      401  {object}  errorResponse
// @Failure      503  {object}  errorResponse
// @Router       /v1/cart [get]
func (h *CartHandler) Get(c echo.Context) error {
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(engine))
}

// AddItem handles POST /v1/cart/items. Adding a product already in the cart
// increases that line's quantity.
//
// @Summary      Add a product to the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      addToCartRequest  true  "Product and quantity (default 1)"
// @Success      200   {object}  cartResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/cart/items [post]
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	err = engine.AddToCart(c.Request().Context(), req.ProductID, quantity)
	metrics.CartOperationsTotal.WithLabelValues("add", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(engine))
}

// UpdateItem handles PATCH /v1/cart/items/:id. A quantity of zero or less
// removes the line.
//
// @Summary      Set a cart line's quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Cart line id"
// @Param        body  body      updateQuantityRequest  true  "New quantity"
// @Success      200   {object}  cartResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/cart/items/{id} [patch]
func (h *CartHandler) UpdateItem(c echo.Context) error {
	var req updateQuantityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	err = engine.UpdateQuantity(c.Request().Context(), c.Param("id"), *req.Quantity)
	metrics.CartOperationsTotal.WithLabelValues("update", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(engine))
}

// RemoveItem handles DELETE /v1/cart/items/:id. Removing a missing line succeeds.
//
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Cart line id"
// @Success      200  {object}  cartResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c echo.Context) error {
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	err = engine.RemoveLine(c.Request().Context(), c.Param("id"))
	metrics.CartOperationsTotal.WithLabelValues("remove", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(engine))
}

// Clear handles DELETE /v1/cart.
//
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  cartResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/cart [delete]
func (h *CartHandler) Clear(c echo.Context) error {
	engine, err := h.engine(c)
	if err != nil {
		return err
	}
	err = engine.ClearCart(c.Request().Context())
	metrics.CartOperationsTotal.WithLabelValues("clear", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toCartResponse(engine))
}
