package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/storefront/storefront-api/internal/api/handler"
	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// imageBodyLimit leaves headroom above the accepted image size for the
// multipart envelope.
const imageBodyLimit = "6M"

// Deps carries everything the router wires into handlers.
type Deps struct {
	JWTSecret string
	Revoker   ports.TokenRevoker

	Auth             ports.AuthService
	NewCatalogReader handler.CatalogReaderFactory
	NewCartEngine    handler.CartEngineFactory
	NewAdminCatalog  handler.AdminCatalogFactory

	// Images serves GET /images/*. Nil when the storage backend exposes
	// its own public URLs.
	Images ports.FileSource

	HealthChecks map[string]handler.DependencyCheck
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echoprometheus.NewMiddleware("storefront"))

	authMiddleware := middleware.Auth(deps.JWTSecret, deps.Revoker)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	e.POST("/auth/signup", authHandler.SignUp)
	e.POST("/auth/signin", authHandler.SignIn)
	e.POST("/auth/signout", authHandler.SignOut, authMiddleware)
	e.GET("/auth/me", authHandler.Me, authMiddleware)

	v1 := e.Group("/v1")

	// --- Public catalog ---
	catalogHandler := handler.NewCatalogHandler(deps.NewCatalogReader)
	v1.GET("/products", catalogHandler.List)
	v1.GET("/products/categories", catalogHandler.Categories)
	v1.GET("/products/:id", catalogHandler.Get)

	// --- Cart (any signed-in user) ---
	cartHandler := handler.NewCartHandler(deps.NewCartEngine)
	cart := v1.Group("/cart", authMiddleware)
	cart.GET("", cartHandler.Get)
	cart.DELETE("", cartHandler.Clear)
	cart.POST("/items", cartHandler.AddItem)
	cart.PATCH("/items/:id", cartHandler.UpdateItem)
	cart.DELETE("/items/:id", cartHandler.RemoveItem)

	// --- Admin catalog ---
	adminHandler := handler.NewAdminHandler(deps.NewAdminCatalog)
	adminProducts := v1.Group("/admin/products", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	adminProducts.GET("", adminHandler.List)
	adminProducts.POST("", adminHandler.Create)
	adminProducts.GET("/categories", adminHandler.Categories)
	adminProducts.GET("/:id", adminHandler.Get)
	adminProducts.PUT("/:id", adminHandler.Update)
	adminProducts.DELETE("/:id", adminHandler.Delete)
	adminProducts.PATCH("/:id/visibility", adminHandler.SetVisibility)
	adminProducts.PATCH("/:id/sale", adminHandler.SetOnSale)
	adminProducts.PATCH("/:id/stock", adminHandler.SetStock)
	adminProducts.PUT("/:id/image", adminHandler.ReplaceImage, echomiddleware.BodyLimit(imageBodyLimit))
	adminProducts.DELETE("/:id/image", adminHandler.RemoveImage)

	// --- Stored images ---
	if deps.Images != nil {
		imageHandler := handler.NewImageHandler(deps.Images)
		e.GET("/images/*", imageHandler.Serve)
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
