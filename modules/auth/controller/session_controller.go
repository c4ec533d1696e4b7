package controller

import (
	"date-booker/core/controller"
	"date-booker/core/errors"
	"date-booker/core/middleware"
	"date-booker/modules/auth/dto"
	"date-booker/modules/auth/service"

	"github.com/labstack/echo/v4"
)

type SessionController struct {
	controller.BaseController
	SessionService service.SessionServiceInterface
}

func NewSessionController(svc service.SessionServiceInterface) *SessionController {
	return &SessionController{
		BaseController: controller.NewBaseController(),
		SessionService: svc,
	}
}

// Join handles POST /public/instances/:slug/sessions
// @Summary Join an instance
// @Description Exchanges a roster name and the instance password for a participant token
// @Tags Auth
// @Accept json
// @Produce json
// @Param slug path string true "Instance slug or id"
// @Param request body dto.JoinRequest true "Credentials"
// @Success 201 {object} dto.JoinResponse
// @Failure 401 {object} errors.AppError
// @Failure 429 {object} errors.AppError
// @Router /public/instances/{slug}/sessions [post]
func (controller *SessionController) Join(c echo.Context) error {
	ctx := c.Request().Context()

	requestData := new(dto.JoinRequest)
	if httpErr := controller.BindAndValidate(c, requestData); httpErr != nil {
		return httpErr
	}

	result, appErr := controller.SessionService.Join(ctx, c.Param("slug"), c.RealIP(), requestData)
	if appErr != nil {
		return controller.ErrorResponse(c, appErr)
	}

	return controller.CreatedResponse(c, result, "Joined successfully")
}

// Leave handles DELETE /private/instances/:slug/sessions
// @Summary Leave an instance
// @Description Revokes the current participant token
// @Tags Auth
// @Security BearerAuth
// @Param slug path string true "Instance slug or id"
// @Success 200
// @Router /private/instances/{slug}/sessions [delete]
func (controller *SessionController) Leave(c echo.Context) error {
	ctx := c.Request().Context()

	claims, ok := middleware.TokenClaims(c)
	if !ok {
		return controller.Unauthorized(errors.ErrUnauthorized, "User not authenticated")
	}

	if appErr := controller.SessionService.Leave(ctx, c.Param("slug"), claims); appErr != nil {
		return controller.ErrorResponse(c, appErr)
	}

	return controller.SuccessResponse(c, nil, "Logout success")
}
