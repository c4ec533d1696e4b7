package controller

import (
	"date-booker/core/controller"
	"date-booker/core/errors"
	"date-booker/core/middleware"
	"date-booker/core/params"
	"date-booker/modules/chat/dto"
	"date-booker/modules/chat/service"

	"github.com/labstack/echo/v4"
)

type MessageController struct {
	controller.BaseController
	MessageService service.MessageServiceInterface
}

func NewMessageController(svc service.MessageServiceInterface) *MessageController {
	return &MessageController{
		BaseController: controller.NewBaseController(),
		MessageService: svc,
	}
}

// ListMessages godoc
// @Summary List chat messages
// @Description Oldest first, paginated
// @Tags Chat
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Param page_number query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.PaginatedMessageResponse
// @Router /public/instances/{slug}/messages [get]
func (h *MessageController) ListMessages(c echo.Context) error {
	ctx := c.Request().Context()
	queryParams := params.NewQueryParams(c)

	result, appErr := h.MessageService.ListMessages(ctx, c.Param("slug"), *queryParams)
	if appErr != nil {
		return h.ErrorResponse(c, appErr)
	}

	return h.SuccessResponse(c, result, "Get messages successfully")
}

// SendMessage godoc
// @Summary Post a chat message
// @Tags Chat
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Param request body dto.SendMessageRequest true "Message"
// @Success 201 {object} dto.MessageResponse
// @Failure 400 {object} errors.AppError
// @Router /private/instances/{slug}/messages [post]
func (h *MessageController) SendMessage(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.TokenClaims(c)
	if !ok {
		return h.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	requestData := new(dto.SendMessageRequest)
	if httpErr := h.BindAndValidate(c, requestData); httpErr != nil {
		return httpErr
	}

	result, appErr := h.MessageService.SendMessage(ctx, claims, c.Param("slug"), requestData)
	if appErr != nil {
		return h.ErrorResponse(c, appErr)
	}

	return h.CreatedResponse(c, result, "Message sent")
}
