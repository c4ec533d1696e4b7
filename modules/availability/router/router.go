package router

import (
	"date-booker/core/middleware"
	"date-booker/modules/availability/controller"

	"github.com/labstack/echo/v4"
)

type AvailabilityRouter struct {
	AvailabilityController *controller.AvailabilityController
}

func NewAvailabilityRouter(availabilityController *controller.AvailabilityController) *AvailabilityRouter {
	return &AvailabilityRouter{
		AvailabilityController: availabilityController,
	}
}

// Setup registers availability routes
func (r *AvailabilityRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	publicRoutes := v1.Group("/public/instances")
	publicRoutes.GET("/:slug/board", r.AvailabilityController.GetBoard)
	publicRoutes.GET("/:slug/best-days", r.AvailabilityController.GetBestDays)

	// Participant token only
	privateRoutes := v1.Group("/private/instances", mw.AuthMiddleware())
	privateRoutes.POST("/:slug/availability/:date/toggle", r.AvailabilityController.ToggleAvailability)
	privateRoutes.POST("/:slug/favorites/:date/toggle", r.AvailabilityController.ToggleFavorite)
	privateRoutes.PUT("/:slug/availability", r.AvailabilityController.SetAllAvailability)
	privateRoutes.POST("/:slug/cant-attend/toggle", r.AvailabilityController.ToggleCantAttend)
}
