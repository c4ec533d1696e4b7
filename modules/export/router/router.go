package router

import (
	"date-booker/core/middleware"
	"date-booker/modules/export/controller"

	"github.com/labstack/echo/v4"
)

type ExportRouter struct {
	ExportController *controller.ExportController
}

func NewExportRouter(exportController *controller.ExportController) *ExportRouter {
	return &ExportRouter{ExportController: exportController}
}

func (r *ExportRouter) Setup(e *echo.Echo, mw *middleware.Middleware) {
	v1 := e.Group("/api/v1")

	adminRoutes := v1.Group("/private/instances", mw.AdminMiddleware())
	adminRoutes.POST("/:slug/exports", r.ExportController.RequestExport)
	adminRoutes.GET("/:slug/exports/:task_id", r.ExportController.GetExport)
}
