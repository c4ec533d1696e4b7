package router

import (
	"date-booker/core/middleware"
	"date-booker/modules/auth/controller"

	"github.com/labstack/echo/v4"
)

type AuthRouter struct {
	SessionController *controller.SessionController
}

func NewAuthRouter(sessionController *controller.SessionController) *AuthRouter {
	return &AuthRouter{SessionController: sessionController}
}

func (r *AuthRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	publicRoutes := v1.Group("/public/instances")
	publicRoutes.POST("/:slug/sessions", r.SessionController.Join)

	privateRoutes := v1.Group("/private/instances", mw.AuthMiddleware())
	privateRoutes.DELETE("/:slug/sessions", r.SessionController.Leave)
}
