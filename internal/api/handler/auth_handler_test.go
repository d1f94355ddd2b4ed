package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

type stubAuthService struct {
	signUpFn  func(ctx context.Context, email, password, fullName string) (*domain.Profile, error)
	signInFn  func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	signOutFn func(ctx context.Context, tokenID string, expiresAt time.Time) error
	currentFn func(ctx context.Context, userID string) (*domain.Profile, error)
}

func (s *stubAuthService) SignUp(ctx context.Context, email, password, fullName string) (*domain.Profile, error) {
	return s.signUpFn(ctx, email, password, fullName)
}

func (s *stubAuthService) SignIn(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.signInFn(ctx, email, password)
}

func (s *stubAuthService) SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error {
	return s.signOutFn(ctx, tokenID, expiresAt)
}

func (s *stubAuthService) CurrentUser(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.currentFn(ctx, userID)
}

func TestAuthHandler_SignUp_Success(t *testing.T) {
	stub := &stubAuthService{
		signUpFn: func(_ context.Context, email, password, fullName string) (*domain.Profile, error) {
			if email != "ana@example.com" || password != "secret1" || fullName != "Ana" {
				t.Fatalf("unexpected args: %s %s %s", email, password, fullName)
			}
			return &domain.Profile{ID: "user-1", Email: email, Role: domain.RoleConsumer}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/signup", `{"email":"ana@example.com","password":"secret1","full_name":"Ana"}`)
	if err := h.SignUp(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("user missing from response: %s", rec.Body.String())
	}
	if user["role"] != domain.RoleConsumer {
		t.Fatalf("unexpected role: %v", user["role"])
	}
	if _, ok := resp["token"]; ok {
		t.Fatal("sign-up must not return a token")
	}
}

func TestAuthHandler_SignUp_ValidationError(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(http.MethodPost, "/auth/signup", `{"email":"not-an-email","password":"secret1"}`)
	requireHTTPError(t, h.SignUp(c), http.StatusUnprocessableEntity)
}

func TestAuthHandler_SignUp_PasswordTooLong(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	body := `{"email":"ana@example.com","password":"` + strings.Repeat("x", 73) + `"}`
	c, _ := newTestContext(http.MethodPost, "/auth/signup", body)
	requireHTTPError(t, h.SignUp(c), http.StatusUnprocessableEntity)
}

func TestAuthHandler_SignUp_EmailTaken(t *testing.T) {
	stub := &stubAuthService{
		signUpFn: func(context.Context, string, string, string) (*domain.Profile, error) {
			return nil, domain.ErrEmailTaken
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/auth/signup", `{"email":"ana@example.com","password":"secret1"}`)
	if err := h.SignUp(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthHandler_SignIn_Success(t *testing.T) {
	exp := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		signInFn: func(_ context.Context, email, password string) (*ports.AuthResult, error) {
			return &ports.AuthResult{Token: "tok", TokenID: "jti", ExpiresAt: exp, Profile: consumer}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/signin", `{"email":"ana@example.com","password":"secret1"}`)
	if err := h.SignIn(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Token != "tok" || resp.ExpiresAt == nil || !resp.ExpiresAt.Equal(exp) {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_SignIn_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		signInFn: func(context.Context, string, string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/auth/signin", `{"email":"ana@example.com","password":"wrong"}`)
	if err := h.SignIn(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_SignOut_RevokesAndResetsSession(t *testing.T) {
	var revoked string
	stub := &stubAuthService{
		signOutFn: func(_ context.Context, tokenID string, _ time.Time) error {
			revoked = tokenID
			return nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/auth/signout", "")
	sess := withSession(c, consumer)

	if err := h.SignOut(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if revoked != "jti-1" {
		t.Fatalf("expected jti-1 to be revoked, got %q", revoked)
	}
	if sess.Authenticated() {
		t.Fatal("session still authenticated after sign-out")
	}
}

func TestAuthHandler_SignOut_Anonymous(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, _ := newTestContext(http.MethodPost, "/auth/signout", "")
	requireHTTPError(t, h.SignOut(c), http.StatusUnauthorized)
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		currentFn: func(_ context.Context, userID string) (*domain.Profile, error) {
			if userID != consumer.ID {
				t.Fatalf("unexpected user id %q", userID)
			}
			return consumer, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodGet, "/auth/me", "")
	withSession(c, consumer)

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp authResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.User == nil || resp.User.Email != consumer.Email {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}
