package handler

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/storefront/storefront-api/internal/api/middleware"
	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/session"
)

var (
	consumer = &domain.Profile{ID: "user-1", Email: "ana@example.com", Role: domain.RoleConsumer}
	admin    = &domain.Profile{ID: "admin-1", Email: "ops@example.com", Role: domain.RoleAdmin}
)

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withSession(c echo.Context, profile *domain.Profile) *session.Session {
	sess := session.New()
	sess.Init(profile, "jti-1", time.Now().Add(time.Hour))
	c.Set(middleware.SessionKey, sess)
	return sess
}

func withParam(c echo.Context, name, value string) {
	c.SetParamNames(name)
	c.SetParamValues(value)
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, code, he.Code)
}
