package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/storefront-api/internal/core/domain"
)

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"echo error", echo.NewHTTPError(http.StatusBadRequest, "invalid payload"), http.StatusBadRequest, "invalid payload"},
		{"auth required", domain.ErrAuthRequired, http.StatusUnauthorized, "authentication required"},
		{"bad credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid credentials"},
		{"forbidden", fmt.Errorf("create: %w", domain.ErrForbidden), http.StatusForbidden, "access forbidden"},
		{"not found", fmt.Errorf("product p1: %w", domain.ErrNotFound), http.StatusNotFound, "product p1: not found"},
		{"email taken", domain.ErrEmailTaken, http.StatusConflict, "email already registered"},
		{"insufficient stock", domain.ErrInsufficientStock, http.StatusUnprocessableEntity, "validation failed: insufficient stock"},
		{"load", fmt.Errorf("%w: cart: timeout", domain.ErrLoad), http.StatusServiceUnavailable, "storage temporarily unavailable"},
		{"write", fmt.Errorf("%w: insert: timeout", domain.ErrWrite), http.StatusServiceUnavailable, "storage temporarily unavailable"},
		{"unknown", errors.New("kaboom"), http.StatusInternalServerError, "internal server error"},
	}

	handle := NewHTTPErrorHandler(zerolog.Nop())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			handle(tc.err, c)

			assert.Equal(t, tc.wantCode, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantMsg, body.Error)
		})
	}
}

func TestHTTPErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, c.NoContent(http.StatusNoContent))

	NewHTTPErrorHandler(zerolog.Nop())(domain.ErrNotFound, c)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
