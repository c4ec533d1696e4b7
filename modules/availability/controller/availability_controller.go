package controller

import (
	"date-booker/core/controller"
	"date-booker/core/errors"
	"date-booker/core/middleware"
	"date-booker/modules/availability/dto"
	"date-booker/modules/availability/service"

	"github.com/labstack/echo/v4"
)

// AvailabilityController handles availability HTTP requests
type AvailabilityController struct {
	controller.BaseController
	AvailabilityService service.AvailabilityServiceInterface
}

func NewAvailabilityController(svc service.AvailabilityServiceInterface) *AvailabilityController {
	return &AvailabilityController{
		BaseController:      controller.NewBaseController(),
		AvailabilityService: svc,
	}
}

// GetBoard handles GET /public/instances/:slug/board
// @Summary Availability board
// @Description Date slots, roster status, marks and best days of an instance
// @Tags Availability
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Success 200 {object} dto.BoardResponse
// @Failure 404 {object} errors.AppError
// @Router /public/instances/{slug}/board [get]
func (c *AvailabilityController) GetBoard(ctx echo.Context) error {
	result, appErr := c.AvailabilityService.GetBoard(ctx.Request().Context(), ctx.Param("slug"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// GetBestDays handles GET /public/instances/:slug/best-days
// @Summary Best days
// @Description Up to three score groups of the days most participants can attend
// @Tags Availability
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Success 200 {object} dto.BestDaysResponse
// @Router /public/instances/{slug}/best-days [get]
func (c *AvailabilityController) GetBestDays(ctx echo.Context) error {
	result, appErr := c.AvailabilityService.GetBestDays(ctx.Request().Context(), ctx.Param("slug"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// ToggleAvailability handles POST /private/instances/:slug/availability/:date/toggle
// @Summary Toggle a day
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.ParticipantState
// @Failure 400 {object} errors.AppError
// @Router /private/instances/{slug}/availability/{date}/toggle [post]
func (c *AvailabilityController) ToggleAvailability(ctx echo.Context) error {
	claims, ok := middleware.TokenClaims(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := c.AvailabilityService.ToggleAvailability(ctx.Request().Context(), claims, ctx.Param("slug"), ctx.Param("date"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Availability updated")
}

// ToggleFavorite handles POST /private/instances/:slug/favorites/:date/toggle
// @Summary Toggle a favorite
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} dto.ParticipantState
// @Failure 400 {object} errors.AppError
// @Router /private/instances/{slug}/favorites/{date}/toggle [post]
func (c *AvailabilityController) ToggleFavorite(ctx echo.Context) error {
	claims, ok := middleware.TokenClaims(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := c.AvailabilityService.ToggleFavorite(ctx.Request().Context(), claims, ctx.Param("slug"), ctx.Param("date"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Favorite updated")
}

// SetAllAvailability handles PUT /private/instances/:slug/availability
// @Summary Mark all days available or clear all
// @Tags Availability
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Param request body dto.SetAllAvailabilityRequest true "Target value"
// @Success 200 {object} dto.ParticipantState
// @Router /private/instances/{slug}/availability [put]
func (c *AvailabilityController) SetAllAvailability(ctx echo.Context) error {
	claims, ok := middleware.TokenClaims(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.SetAllAvailabilityRequest
	if httpErr := c.BindAndValidate(ctx, &req); httpErr != nil {
		return httpErr
	}

	result, appErr := c.AvailabilityService.SetAllAvailability(ctx.Request().Context(), claims, ctx.Param("slug"), *req.Available)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Availability updated")
}

// ToggleCantAttend handles POST /private/instances/:slug/cant-attend/toggle
// @Summary Toggle "can't attend"
// @Tags Availability
// @Security BearerAuth
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Success 200 {object} dto.ParticipantState
// @Router /private/instances/{slug}/cant-attend/toggle [post]
func (c *AvailabilityController) ToggleCantAttend(ctx echo.Context) error {
	claims, ok := middleware.TokenClaims(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	result, appErr := c.AvailabilityService.ToggleCantAttend(ctx.Request().Context(), claims, ctx.Param("slug"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Attendance updated")
}
