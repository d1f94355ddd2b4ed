package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

// MaxPasswordLength is the longest password in bytes; bcrypt rejects longer input.
const MaxPasswordLength = 72

// AuthService implements sign-up, sign-in, sign-out and profile lookup.
type AuthService struct {
	repo      ports.ProfileRepository
	revoker   ports.TokenRevoker
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthService(repo ports.ProfileRepository, revoker ports.TokenRevoker, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, revoker: revoker, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// SignUp creates a consumer profile.
func (s *AuthService) SignUp(ctx context.Context, email, password, fullName string) (*domain.Profile, error) {
	profile, err := s.newProfile(email, password, fullName, domain.RoleConsumer)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *AuthService) newProfile(email, password, fullName, role string) (*domain.Profile, error) {
	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return nil, domain.ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	profile := &domain.Profile{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if name := strings.TrimSpace(fullName); name != "" {
		profile.FullName = &name
	}
	return profile, nil
}

// SignIn checks the credentials and issues a signed token.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	profile, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	tokenID := uuid.NewString()
	expiresAt := time.Now().Add(s.tokenTTL).UTC()
	token, err := s.generateToken(profile, tokenID, expiresAt)
	if err != nil {
		return nil, err
	}

	return &ports.AuthResult{Token: token, TokenID: tokenID, ExpiresAt: expiresAt, Profile: profile}, nil
}

// SignOut revokes the token until it would have expired anyway.
func (s *AuthService) SignOut(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" || s.revoker == nil {
		return nil
	}
	if !expiresAt.After(time.Now()) {
		return nil
	}
	return s.revoker.Revoke(ctx, tokenID, expiresAt)
}

// EnsureAdmin creates an admin profile for email unless one with that email
// already exists. Used to bootstrap the first admin at startup.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.Profile, error) {
	existing, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	profile, err := s.newProfile(email, password, "", domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.Profile, error) {
	if userID == "" {
		return nil, domain.ErrAuthRequired
	}
	return s.repo.FindByID(ctx, userID)
}

func (s *AuthService) generateToken(p *domain.Profile, tokenID string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   p.ID,
		"email": p.Email,
		"role":  p.Role,
		"jti":   tokenID,
		"exp":   expiresAt.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
