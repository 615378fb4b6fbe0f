// Package router contains routing for the HTTP API.
package router

import (
	"authgate/internal/delivery/api/middleware"
	"authgate/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.HealthCheck)

	apiV1 := e.Group("/api/v1")
	{
		apiV1.POST("/sign-up", r.authHandler.Signup)
		apiV1.POST("/login", r.authHandler.Login)
		apiV1.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
	}
}
