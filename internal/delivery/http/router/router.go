// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"telecare/internal/delivery/http/middleware"
	"telecare/internal/delivery/http/router/handler"
	"telecare/internal/domain/entity"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	ProfileHandler *handler.ProfileHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler    *handler.AuthHandler
	profileHandler *handler.ProfileHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:    params.AuthHandler,
		profileHandler: params.ProfileHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Identity and session routes
	authGroup := e.Group("/auth/v1")
	{
		authGroup.POST("/signup", r.authHandler.SignUp)
		authGroup.POST("/token", r.authHandler.Token)
		authGroup.POST("/token/refresh", r.authHandler.Refresh)
		authGroup.POST("/logout", r.authHandler.Logout)
	}

	// Routes about the authenticated identity itself
	userGroup := e.Group("/auth/v1/user")
	userGroup.Use(r.authMiddleware.Authenticate)
	{
		userGroup.GET("", r.authHandler.CurrentUser)
		userGroup.DELETE("", r.authHandler.DeleteUser)
	}

	// Profile rows, keyed to the authenticated user
	profileGroup := e.Group("/rest/v1/profiles")
	profileGroup.Use(r.authMiddleware.Authenticate)
	{
		profileGroup.GET("", r.profileHandler.GetProfile)
		profileGroup.POST("", r.profileHandler.CreateProfile)
		profileGroup.PATCH("", r.profileHandler.UpdateProfile)

		// admins may read any profile
		profileGroup.GET("/:user_id", r.profileHandler.GetProfileByID,
			r.authMiddleware.RequireUserType(entity.UserTypeAdmin.String()))
	}
}
