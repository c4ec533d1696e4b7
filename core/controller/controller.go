package controller

import (
	"date-booker/core/errors"
	"date-booker/core/logger"
	"date-booker/core/validator"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// SuccessResponse is the envelope of every 2xx body.
type SuccessResponse struct {
	Status    int       `json:"status"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the envelope of every error body.
type ErrorResponse struct {
	Status    string           `json:"status"`
	Code      errors.ErrorCode `json:"code"`
	Message   string           `json:"message"`
	Details   any              `json:"details,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// BaseController is embedded by every module controller.
type BaseController interface {
	BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError

	SuccessResponse(c echo.Context, data any, message string) error
	CreatedResponse(c echo.Context, data any, message string) error
	AcceptedResponse(c echo.Context, data any, message string) error
	ErrorResponse(c echo.Context, err error) error

	BindAndValidate(c echo.Context, req any) *echo.HTTPError
}

type envelope struct{}

func NewBaseController() BaseController {
	return envelope{}
}

func NewSuccessResponse(httpStatusCode int, data any, message string) *SuccessResponse {
	return &SuccessResponse{
		Status:    httpStatusCode,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewErrorResponse builds an echo error whose message is the error envelope,
// so echo's default error handler renders it as JSON.
func NewErrorResponse(httpStatusCode int, appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	body := &ErrorResponse{
		Status:    "error",
		Code:      appErrCode,
		Message:   message,
		Timestamp: time.Now(),
	}
	if len(details) > 0 && details[0] != nil {
		body.Details = details[0]
	}
	return echo.NewHTTPError(httpStatusCode, body)
}

// HTTPStatus maps an application error code to its HTTP status.
func HTTPStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidInput, errors.ErrInvalidRequestData:
		return http.StatusBadRequest
	case errors.ErrUnauthorized, errors.ErrTokenExpired, errors.ErrInvalidTokenFormat, errors.ErrMissingAuthorizationHeader:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrAlreadyExists:
		return http.StatusConflict
	case errors.ErrTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func (envelope) BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusBadRequest, appErrCode, message, details...)
}

func (envelope) Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewErrorResponse(http.StatusUnauthorized, appErrCode, message, details...)
}

func (envelope) SuccessResponse(c echo.Context, data any, message string) error {
	return writeJSON(c, http.StatusOK, data, message)
}

func (envelope) CreatedResponse(c echo.Context, data any, message string) error {
	return writeJSON(c, http.StatusCreated, data, message)
}

func (envelope) AcceptedResponse(c echo.Context, data any, message string) error {
	return writeJSON(c, http.StatusAccepted, data, message)
}

func writeJSON(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, NewSuccessResponse(status, data, message))
}

// BindAndValidate binds the request body and runs the registered validator.
func (e envelope) BindAndValidate(c echo.Context, req any) *echo.HTTPError {
	if err := c.Bind(req); err != nil {
		return e.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if err := c.Validate(req); err != nil {
		return e.BadRequest(errors.ErrInvalidInput, "Validation failed", validator.Details(err))
	}
	return nil
}

// ErrorResponse converts a service error into the error envelope. Anything
// that is not an *errors.AppError is reported as an internal error and only
// its cause is logged.
func (envelope) ErrorResponse(c echo.Context, err error) error {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) || appErr == nil {
		logger.Error("Controller:ErrorResponse:Unexpected", "error", err, "path", c.Path())
		return NewErrorResponse(http.StatusInternalServerError, errors.ErrInternalServer, "internal server error")
	}

	status := HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		logger.Error("Controller:ErrorResponse", "code", appErr.Code, "message", appErr.Message, "error", appErr.Err, "path", c.Path())
	}

	message := appErr.Message
	if message == "" {
		message = http.StatusText(status)
	}
	return NewErrorResponse(status, appErr.Code, message)
}
