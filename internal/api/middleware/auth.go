package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/core/domain"
	"github.com/storefront/storefront-api/internal/core/ports"
	"github.com/storefront/storefront-api/internal/core/session"
)

// Context keys set by Auth.
const (
	SessionKey = "session"
	RoleKey    = "role"
	UserIDKey  = "user_id"
)

// Auth validates the bearer JWT, rejects signed-out tokens and binds a
// session for the caller. revoker may be nil, which disables the revocation
// check.
func Auth(jwtSecret string, revoker ports.TokenRevoker) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			}, jwt.WithExpirationRequired())
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			profile, tokenID, err := profileFromClaims(claims)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			if revoker != nil && tokenID != "" {
				revoked, err := revoker.IsRevoked(c.Request().Context(), tokenID)
				if err != nil {
					return fmt.Errorf("%w: %w", domain.ErrLoad, err)
				}
				if revoked {
					return echo.NewHTTPError(http.StatusUnauthorized, "token revoked")
				}
			}

			exp, _ := claims.GetExpirationTime()
			sess := session.New()
			sess.Init(profile, tokenID, exp.Time)

			c.Set(SessionKey, sess)
			c.Set(RoleKey, profile.Role)
			c.Set(UserIDKey, profile.ID)

			return next(c)
		}
	}
}

func profileFromClaims(claims jwt.MapClaims) (*domain.Profile, string, error) {
	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, "", errors.New("token missing subject")
	}
	role, _ := claims["role"].(string)
	if !domain.ValidRole(role) {
		return nil, "", errors.New("token carries an unknown role")
	}
	email, _ := claims["email"].(string)
	tokenID, _ := claims["jti"].(string)

	return &domain.Profile{ID: sub, Email: email, Role: role}, tokenID, nil
}

// SessionFrom returns the session bound by Auth, or an anonymous session on
// routes Auth does not guard.
func SessionFrom(c echo.Context) *session.Session {
	if sess, ok := c.Get(SessionKey).(*session.Session); ok && sess != nil {
		return sess
	}
	return session.New()
}
