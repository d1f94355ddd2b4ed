package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storefront/storefront-api/internal/api/metrics"
	"github.com/storefront/storefront-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUp creates a consumer account.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Account details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.authService.SignUp(c.Request().Context(), req.Email, req.Password, req.FullName)
	metrics.AuthAttemptsTotal.WithLabelValues("signup", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: user})
}

// SignIn authenticates with email and password and returns a bearer token.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.authService.SignIn(c.Request().Context(), req.Email, req.Password)
	metrics.AuthAttemptsTotal.WithLabelValues("signin", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, authResponse{Token: res.Token, ExpiresAt: &res.ExpiresAt, User: res.Profile})
}

// SignOut revokes the caller's token.
//
// @Summary      Sign out
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401  {object}  errorResponse
// @Router       /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	tokenID, expiresAt := sess.Token()
	err = h.authService.SignOut(c.Request().Context(), tokenID, expiresAt)
	metrics.AuthAttemptsTotal.WithLabelValues("signout", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	sess.Reset()
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's profile.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  authResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	user, err := h.authService.CurrentUser(c.Request().Context(), sess.User().ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{User: user})
}
