// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"atelier/internal/delivery/http/middleware"
	"atelier/internal/delivery/http/router/handler"
	"atelier/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	OAuthHandler   *handler.OAuthHandler
	AccountHandler *handler.AccountHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	oauthHandler   *handler.OAuthHandler
	accountHandler *handler.AccountHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		oauthHandler:   params.OAuthHandler,
		accountHandler: params.AccountHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Token endpoint speaks raw OAuth2; sign-out requires a live token.
	authGroup := e.Group("/auth")
	{
		authGroup.POST("/token", r.oauthHandler.Token)
		authGroup.POST("/signout", r.oauthHandler.SignOut, r.authMiddleware.Authenticate)
	}

	// Account routes require authentication with any scope.
	accountGroup := e.Group("/account")
	accountGroup.Use(r.authMiddleware.Authenticate)
	{
		accountGroup.GET("/me", r.accountHandler.GetMe)
		accountGroup.PUT("/password", r.accountHandler.ChangePassword)
	}

	// Operator routes require authentication and the operator scope.
	operatorGroup := e.Group("/operator")
	operatorGroup.Use(r.authMiddleware.Authenticate)
	operatorGroup.Use(r.authMiddleware.RequireScope(entity.ScopeOperator))
	{
		operatorGroup.POST("/accounts", r.accountHandler.RegisterAccount)
	}
}
