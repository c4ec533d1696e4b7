package controller

import (
	"date-booker/core/controller"
	"date-booker/core/errors"
	"date-booker/core/middleware"
	"date-booker/core/realtime"
	"date-booker/modules/instance/dto"
	"date-booker/modules/instance/service"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// InstanceController handles instance HTTP requests
type InstanceController struct {
	controller.BaseController
	InstanceService service.InstanceServiceInterface
	Subscriber      realtime.Subscriber
	Heartbeat       time.Duration
}

func NewInstanceController(svc service.InstanceServiceInterface, sub realtime.Subscriber, heartbeat time.Duration) *InstanceController {
	return &InstanceController{
		BaseController:  controller.NewBaseController(),
		InstanceService: svc,
		Subscriber:      sub,
		Heartbeat:       heartbeat,
	}
}

// CreateInstance handles POST /public/instances
// @Summary Create an instance
// @Description Creates a date poll with its roster and returns an admin token
// @Tags Instance
// @Accept json
// @Produce json
// @Param request body dto.CreateInstanceRequest true "Instance"
// @Success 201 {object} dto.CreateInstanceResponse
// @Failure 400 {object} errors.AppError
// @Router /public/instances [post]
func (c *InstanceController) CreateInstance(ctx echo.Context) error {
	var req dto.CreateInstanceRequest
	if httpErr := c.BindAndValidate(ctx, &req); httpErr != nil {
		return httpErr
	}

	result, appErr := c.InstanceService.CreateInstance(ctx.Request().Context(), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.CreatedResponse(ctx, result, "Instance created successfully")
}

// GetInstance handles GET /public/instances/:slug
// @Summary Get an instance
// @Tags Instance
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Success 200 {object} dto.InstanceResponse
// @Failure 404 {object} errors.AppError
// @Router /public/instances/{slug} [get]
func (c *InstanceController) GetInstance(ctx echo.Context) error {
	result, appErr := c.InstanceService.GetInstance(ctx.Request().Context(), ctx.Param("slug"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// ListParticipants handles GET /public/instances/:slug/participants
// @Summary List the roster
// @Tags Instance
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Success 200 {array} dto.ParticipantResponse
// @Router /public/instances/{slug}/participants [get]
func (c *InstanceController) ListParticipants(ctx echo.Context) error {
	result, appErr := c.InstanceService.ListParticipants(ctx.Request().Context(), ctx.Param("slug"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, result, "Success")
}

// AddParticipant handles POST /private/instances/:slug/participants
// @Summary Add a participant
// @Tags Instance
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Param request body dto.AddParticipantRequest true "Participant"
// @Success 201 {object} dto.ParticipantResponse
// @Failure 409 {object} errors.AppError
// @Router /private/instances/{slug}/participants [post]
func (c *InstanceController) AddParticipant(ctx echo.Context) error {
	claims, ok := middleware.TokenClaims(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	var req dto.AddParticipantRequest
	if httpErr := c.BindAndValidate(ctx, &req); httpErr != nil {
		return httpErr
	}

	result, appErr := c.InstanceService.AddParticipant(ctx.Request().Context(), claims, ctx.Param("slug"), &req)
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.CreatedResponse(ctx, result, "Participant added successfully")
}

// RemoveParticipant handles DELETE /private/instances/:slug/participants/:participant_id
// @Summary Remove a participant
// @Tags Instance
// @Security BearerAuth
// @Param slug path string true "Instance slug or id"
// @Param participant_id path string true "Participant ID"
// @Success 200
// @Failure 404 {object} errors.AppError
// @Router /private/instances/{slug}/participants/{participant_id} [delete]
func (c *InstanceController) RemoveParticipant(ctx echo.Context) error {
	claims, ok := middleware.TokenClaims(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	participantID, err := uuid.Parse(ctx.Param("participant_id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid participant ID")
	}

	if appErr := c.InstanceService.RemoveParticipant(ctx.Request().Context(), claims, ctx.Param("slug"), participantID); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Participant removed successfully")
}

// DeleteInstance handles DELETE /private/instances/:slug
// @Summary Delete an instance
// @Description Deletes the instance and everything recorded for it
// @Tags Instance
// @Security BearerAuth
// @Param slug path string true "Instance slug or id"
// @Success 200
// @Router /private/instances/{slug} [delete]
func (c *InstanceController) DeleteInstance(ctx echo.Context) error {
	claims, ok := middleware.TokenClaims(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	if appErr := c.InstanceService.DeleteInstance(ctx.Request().Context(), claims, ctx.Param("slug")); appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	return c.SuccessResponse(ctx, nil, "Instance deleted successfully")
}

// Stream handles GET /public/instances/:slug/stream
// @Summary Live instance events
// @Description Server-Sent Events stream of chat, availability and roster changes
// @Tags Instance
// @Produce text/event-stream
// @Param slug path string true "Instance slug or id"
// @Router /public/instances/{slug}/stream [get]
func (c *InstanceController) Stream(ctx echo.Context) error {
	instance, appErr := c.InstanceService.ResolveInstance(ctx.Request().Context(), ctx.Param("slug"))
	if appErr != nil {
		return c.ErrorResponse(ctx, appErr)
	}

	if err := realtime.Stream(ctx, c.Subscriber, instance.ID, c.Heartbeat); err != nil {
		return c.ErrorResponse(ctx, errors.NewAppError(errors.ErrInternalServer, "Failed to open event stream", err))
	}
	return nil
}
