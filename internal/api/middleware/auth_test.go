package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/session"
)

type stubRevoker struct {
	revoked map[string]bool
	err     error
}

func (r *stubRevoker) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	r.revoked[tokenID] = true
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.revoked[tokenID], nil
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "user-1",
		"email": "alice@example.com",
		"role":  domain.RoleAdmin,
		"jti":   "jti-1",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func runAuth(t *testing.T, header string, revoker *stubRevoker, next echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var mw echo.MiddlewareFunc
	if revoker == nil {
		mw = Auth("secret", nil)
	} else {
		mw = Auth("secret", revoker)
	}
	err := mw(next)(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, err
}

func mustNotRun(t *testing.T) echo.HandlerFunc {
	return func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	called := false
	rec, err := runAuth(t, "Bearer "+signToken(t, validClaims()), &stubRevoker{revoked: map[string]bool{}}, func(c echo.Context) error {
		called = true
		sess, ok := c.Get(SessionKey).(*session.Session)
		if !ok {
			t.Fatalf("session not set")
		}
		user := sess.User()
		if user == nil || user.ID != "user-1" || user.Email != "alice@example.com" || !user.IsAdmin() {
			t.Fatalf("unexpected session user: %+v", user)
		}
		if tokenID, exp := sess.Token(); tokenID != "jti-1" || exp.IsZero() {
			t.Fatalf("unexpected token info: %s %v", tokenID, exp)
		}
		if c.Get(RoleKey) != domain.RoleAdmin || c.Get(UserIDKey) != "user-1" {
			t.Fatalf("role or user id not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	expired := validClaims()
	expired["exp"] = time.Now().Add(-time.Minute).Unix()
	noExp := validClaims()
	delete(noExp, "exp")
	noSub := validClaims()
	delete(noSub, "sub")
	badRole := validClaims()
	badRole["role"] = "superuser"

	tests := map[string]string{
		"missing header":      "",
		"wrong scheme":        "Token abc",
		"garbage token":       "Bearer not-a-token",
		"expired token":       "Bearer " + signToken(t, expired),
		"token without exp":   "Bearer " + signToken(t, noExp),
		"token without sub":   "Bearer " + signToken(t, noSub),
		"token with bad role": "Bearer " + signToken(t, badRole),
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			rec, _ := runAuth(t, header, nil, mustNotRun(t))
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}

func TestAuthMiddleware_RevokedToken(t *testing.T) {
	revoker := &stubRevoker{revoked: map[string]bool{"jti-1": true}}

	rec, _ := runAuth(t, "Bearer "+signToken(t, validClaims()), revoker, mustNotRun(t))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddleware_RevocationStoreDown(t *testing.T) {
	revoker := &stubRevoker{err: errors.New("redis: connection refused")}

	_, err := runAuth(t, "Bearer "+signToken(t, validClaims()), revoker, mustNotRun(t))

	if !errors.Is(err, domain.ErrLoad) {
		t.Fatalf("expected ErrLoad, got %v", err)
	}
}

func TestSessionFrom_AnonymousWithoutAuth(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	if SessionFrom(c).Authenticated() {
		t.Fatalf("expected anonymous session")
	}
}
