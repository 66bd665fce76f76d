// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"atelier/internal/delivery/http/middleware"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// oauthError is the OAuth2 protocol error response body.
type oauthError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// OAuthHandler serves the token endpoint and sign-out.
type OAuthHandler struct {
	grantUC   usecase.GrantUsecase
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewOAuthHandler is the constructor for OAuthHandler, injected by Fx.
func NewOAuthHandler(grantUC usecase.GrantUsecase, accountUC usecase.AccountUsecase, logger *slog.Logger) *OAuthHandler {
	return &OAuthHandler{
		grantUC:   grantUC,
		accountUC: accountUC,
		logger:    logger,
	}
}

// Token handles POST /auth/token. Unlike the rest of the API it speaks the
// raw OAuth2 wire format in both directions, so the shared response envelope
// and error middleware stay out of it.
func (h *OAuthHandler) Token(c echo.Context) error {
	var input usecase.TokenInput
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, oauthError{
			Error:            "invalid_request",
			ErrorDescription: "malformed token request body",
		})
	}

	output, err := h.grantUC.Token(c.Request().Context(), input)
	if err != nil {
		return h.writeOAuthError(c, err)
	}

	return c.JSON(http.StatusOK, output)
}

// SignOut handles POST /auth/signout. Revocation is idempotent; the response
// is 204 whether or not the token row still existed.
func (h *OAuthHandler) SignOut(c echo.Context) error {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, oauthError{Error: "invalid_token"})
	}

	if err := h.accountUC.SignOut(c.Request().Context(), middleware.GetAccessToken(c), principal.Account.ID); err != nil {
		return errors.WithStack(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// writeOAuthError shapes a grant failure into {error, error_description}.
// Internal failures collapse into server_error so nothing about the backend
// leaks onto the wire.
func (h *OAuthHandler) writeOAuthError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPCode() < http.StatusInternalServerError {
		return c.JSON(appErr.HTTPCode(), oauthError{
			Error:            appErr.ErrorCode(),
			ErrorDescription: appErr.Message(),
		})
	}

	h.logger.Error("Token endpoint failure",
		slog.String("path", c.Request().URL.Path),
		slog.Any("error", err),
	)

	return c.JSON(http.StatusInternalServerError, oauthError{Error: "server_error"})
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
