package controller

import (
	"context"
	"date-booker/core/constants"
	"date-booker/core/errors"
	"date-booker/core/middleware"
	"date-booker/core/params"
	"date-booker/core/utils"
	"date-booker/core/validator"
	"date-booker/modules/chat/dto"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessageService struct {
	mock.Mock
}

func (m *mockMessageService) SendMessage(ctx context.Context, claims *utils.TokenClaims, slugOrID string, req *dto.SendMessageRequest) (*dto.MessageResponse, *errors.AppError) {
	args := m.Called(ctx, claims, slugOrID, req)
	resp, _ := args.Get(0).(*dto.MessageResponse)
	appErr, _ := args.Get(1).(*errors.AppError)
	return resp, appErr
}

func (m *mockMessageService) ListMessages(ctx context.Context, slugOrID string, params params.QueryParams) (*dto.PaginatedMessageResponse, *errors.AppError) {
	args := m.Called(ctx, slugOrID, params)
	resp, _ := args.Get(0).(*dto.PaginatedMessageResponse)
	appErr, _ := args.Get(1).(*errors.AppError)
	return resp, appErr
}

func (m *mockMessageService) AllMessages(ctx context.Context, instanceID uuid.UUID) ([]dto.MessageResponse, *errors.AppError) {
	args := m.Called(ctx, instanceID)
	resp, _ := args.Get(0).([]dto.MessageResponse)
	appErr, _ := args.Get(1).(*errors.AppError)
	return resp, appErr
}

func setupEcho(svc *mockMessageService) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	ctrl := NewMessageController(svc)
	mw := middleware.NewMiddleware("chat-secret", nil)

	e.GET("/api/v1/public/instances/:slug/messages", ctrl.ListMessages)
	e.POST("/api/v1/private/instances/:slug/messages", ctrl.SendMessage, mw.AuthMiddleware())
	return e
}

func TestListMessages_PassesPaging(t *testing.T) {
	svc := &mockMessageService{}
	e := setupEcho(svc)

	page := &dto.PaginatedMessageResponse{Items: []dto.MessageResponse{{Content: "hi"}}, TotalItems: 11, PageNumber: 2, PageSize: 5}
	svc.On("ListMessages", mock.Anything, "trip", params.QueryParams{PageNumber: 2, PageSize: 5}).Return(page, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/instances/trip/messages?page_number=2&page_size=5", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_items":11`)
	svc.AssertExpectations(t)
}

func TestSendMessage(t *testing.T) {
	svc := &mockMessageService{}
	e := setupEcho(svc)

	participantID := uuid.New()
	token, err := utils.GenerateToken("chat-secret", uuid.New(), participantID, constants.ScopeTokenParticipant, time.Hour)
	require.NoError(t, err)

	svc.On("SendMessage", mock.Anything, mock.MatchedBy(func(c *utils.TokenClaims) bool {
		return c.ParticipantID == participantID
	}), "trip", &dto.SendMessageRequest{Content: "hello"}).Return(&dto.MessageResponse{Content: "hello"}, nil)

	send := func(authorization, body string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/private/instances/trip/messages", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		if authorization != "" {
			req.Header.Set(echo.HeaderAuthorization, authorization)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, send("Bearer "+token, `{"content":"hello"}`))
	assert.Equal(t, http.StatusBadRequest, send("Bearer "+token, `{}`))
	assert.Equal(t, http.StatusUnauthorized, send("", `{"content":"hello"}`))
	svc.AssertNumberOfCalls(t, "SendMessage", 1)
}
