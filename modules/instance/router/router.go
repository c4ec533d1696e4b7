package router

import (
	"date-booker/core/middleware"
	"date-booker/modules/instance/controller"

	"github.com/labstack/echo/v4"
)

// InstanceRouter handles instance routes
type InstanceRouter struct {
	InstanceController *controller.InstanceController
}

func NewInstanceRouter(instanceController *controller.InstanceController) *InstanceRouter {
	return &InstanceRouter{
		InstanceController: instanceController,
	}
}

// Setup registers instance routes
func (r *InstanceRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	publicRoutes := v1.Group("/public/instances")
	publicRoutes.POST("", r.InstanceController.CreateInstance)
	publicRoutes.GET("/:slug", r.InstanceController.GetInstance)
	publicRoutes.GET("/:slug/participants", r.InstanceController.ListParticipants)
	publicRoutes.GET("/:slug/stream", r.InstanceController.Stream)

	// Admin token only
	adminRoutes := v1.Group("/private/instances", mw.AdminMiddleware())
	adminRoutes.DELETE("/:slug", r.InstanceController.DeleteInstance)
	adminRoutes.POST("/:slug/participants", r.InstanceController.AddParticipant)
	adminRoutes.DELETE("/:slug/participants/:participant_id", r.InstanceController.RemoveParticipant)
}
