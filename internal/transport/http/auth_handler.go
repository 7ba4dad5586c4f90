package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/service"
	"github.com/humayunejaz/travel-planning-app/internal/util"
)

type AuthHandler struct {
	auth *service.AuthService
	log  *zap.SugaredLogger
}

func RegisterAuth(e *echo.Echo, auth *service.AuthService, log *zap.SugaredLogger) {
	handler := &AuthHandler{auth: auth, log: log}

	public := e.Group("/api/v1/auth")
	public.POST("/register", handler.register)
	public.POST("/login", handler.login)

	protected := e.Group("/api/v1/auth", RequireAuth(auth))
	protected.POST("/logout", handler.logout)
	protected.GET("/me", handler.me)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	result, err := h.auth.SignUp(c.Request().Context(), service.SignUpInput{
		Email:           req.Email,
		Password:        req.Password,
		FullName:        req.FullName,
		Role:            domain.UserRole(req.Role),
		InvitationToken: req.InvitationToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailTaken):
			return c.JSON(http.StatusConflict, util.Error("email already registered"))
		case errors.Is(err, service.ErrInvalidEmail), errors.Is(err, service.ErrRoleInvalid):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		case errors.Is(err, util.ErrPasswordTooShort), errors.Is(err, util.ErrPasswordTooWeak):
			return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
		default:
			h.log.Errorw("sign-up failed", "error", err)
			return c.JSON(http.StatusInternalServerError, util.Error("unable to register"))
		}
	}
	return c.JSON(http.StatusCreated, toTokenResponse(result))
}

func (h *AuthHandler) login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	result, err := h.auth.SignIn(c.Request().Context(), req.Email, req.Password, req.InvitationToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, util.Error("invalid credentials"))
		}
		h.log.Errorw("sign-in failed", "error", err)
		return c.JSON(http.StatusInternalServerError, util.Error("unable to sign in"))
	}
	return c.JSON(http.StatusOK, toTokenResponse(result))
}

func (h *AuthHandler) logout(c echo.Context) error {
	if err := h.auth.SignOut(c.Request().Context(), currentToken(c)); err != nil {
		h.log.Errorw("sign-out failed", "error", err)
		return c.JSON(http.StatusInternalServerError, util.Error("unable to sign out"))
	}
	return c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (h *AuthHandler) me(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	return c.JSON(http.StatusOK, AuthUserResponse{User: toAuthUser(user)})
}

func toTokenResponse(result *service.AuthResult) AuthTokenResponse {
	return AuthTokenResponse{
		Token:              result.Token,
		ExpiresAt:          result.ExpiresAt,
		InvitationAccepted: result.InvitationAccepted,
		User:               toAuthUser(result.User),
	}
}
