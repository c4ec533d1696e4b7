package controller

import (
	"date-booker/core/controller"
	"date-booker/core/errors"
	"date-booker/core/middleware"
	"date-booker/modules/export/service"

	"github.com/labstack/echo/v4"
)

type ExportController struct {
	controller.BaseController
	ExportService service.ExportServiceInterface
}

func NewExportController(svc service.ExportServiceInterface) *ExportController {
	return &ExportController{
		BaseController: controller.NewBaseController(),
		ExportService:  svc,
	}
}

// RequestExport godoc
// @Summary Start an export
// @Description Queues a JSON snapshot of the instance for upload to object storage
// @Tags Export
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Success 202 {object} dto.ExportTaskResponse
// @Router /private/instances/{slug}/exports [post]
func (h *ExportController) RequestExport(c echo.Context) error {
	claims, ok := middleware.TokenClaims(c)
	if !ok {
		return h.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := h.ExportService.RequestExport(c.Request().Context(), claims, c.Param("slug"))
	if appErr != nil {
		return h.ErrorResponse(c, appErr)
	}

	return h.AcceptedResponse(c, result, "Export scheduled")
}

// GetExport godoc
// @Summary Export status
// @Description Returns the task state and, once completed, a presigned download url
// @Tags Export
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Param task_id path string true "Task id"
// @Success 200 {object} dto.ExportStatusResponse
// @Failure 404 {object} errors.AppError
// @Router /private/instances/{slug}/exports/{task_id} [get]
func (h *ExportController) GetExport(c echo.Context) error {
	claims, ok := middleware.TokenClaims(c)
	if !ok {
		return h.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := h.ExportService.GetExport(c.Request().Context(), claims, c.Param("slug"), c.Param("task_id"))
	if appErr != nil {
		return h.ErrorResponse(c, appErr)
	}

	return h.SuccessResponse(c, result, "Get export successfully")
}
