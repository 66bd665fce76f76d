package middleware

import (
	"net/http"
	"strings"

	"atelier/internal/domain/entity"
	domainerrors "atelier/internal/domain/errors"
	"atelier/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Context keys under which the authenticated principal is stored.
const (
	ContextKeyPrincipal   = "principal"
	ContextKeyAccessToken = "accessToken"
)

// AuthMiddleware resolves bearer tokens on protected routes.
type AuthMiddleware struct {
	authorizeUC usecase.AuthorizeUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(authorizeUC usecase.AuthorizeUsecase) *AuthMiddleware {
	return &AuthMiddleware{authorizeUC: authorizeUC}
}

// extractToken pulls the access token from the Authorization header, falling
// back to the access_token query parameter for clients that cannot set
// headers.
func extractToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return ""
		}

		return tokenString
	}

	return c.QueryParam("access_token")
}

// Authenticate validates the bearer token against the token store and puts
// the resolved principal on the request context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := extractToken(c)
		if tokenString == "" {
			return oauthUnauthorized(c, "invalid_token", "missing bearer token")
		}

		principal, err := m.authorizeUC.Authorize(c.Request().Context(), tokenString, "")
		if err != nil {
			return mapAuthorizeError(c, err)
		}

		c.Set(ContextKeyPrincipal, principal)
		c.Set(ContextKeyAccessToken, tokenString)

		return next(c)
	}
}

// RequireScope checks the authenticated principal's scope. Scope matching is
// exact. It must be used AFTER the Authenticate middleware.
func (m *AuthMiddleware) RequireScope(requiredScope entity.Scope) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, ok := GetPrincipal(c)
			if !ok {
				return oauthUnauthorized(c, "invalid_token", "no authenticated principal")
			}

			if principal.Scope != requiredScope {
				return oauthUnauthorized(c, "insufficient_scope", "token scope does not cover resource")
			}

			return next(c)
		}
	}
}

// GetPrincipal returns the principal Authenticate stored on the context.
func GetPrincipal(c echo.Context) (*usecase.Principal, bool) {
	principal, ok := c.Get(ContextKeyPrincipal).(*usecase.Principal)

	return principal, ok
}

// GetAccessToken returns the raw token string Authenticate stored on the context.
func GetAccessToken(c echo.Context) string {
	tokenString, _ := c.Get(ContextKeyAccessToken).(string)

	return tokenString
}

func mapAuthorizeError(c echo.Context, err error) error {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) && appErr.HTTPCode() < http.StatusInternalServerError {
		return oauthUnauthorized(c, appErr.ErrorCode(), appErr.Message())
	}

	return errors.WithStack(err)
}

// oauthUnauthorized writes an RFC 6750 style bearer-token error.
func oauthUnauthorized(c echo.Context, code, description string) error {
	c.Response().Header().Set("WWW-Authenticate", `Bearer error="`+code+`"`)

	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error":             code,
		"error_description": description,
	})
}
