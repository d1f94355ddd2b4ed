package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/session"
)

// ctxSession returns the session bound by the Auth middleware and fails fast
// with 401 when the request carries no identity.
func ctxSession(c echo.Context) (*session.Session, error) {
	sess := middleware.SessionFrom(c)
	if !sess.Authenticated() {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return sess, nil
}
