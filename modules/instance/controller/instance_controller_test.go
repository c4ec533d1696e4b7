package controller

import (
	"context"
	"date-booker/core/errors"
	"date-booker/core/validator"
	"date-booker/modules/instance/dto"
	"date-booker/modules/instance/service"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mockInstanceService implements only what these handlers call.
type mockInstanceService struct {
	service.InstanceServiceInterface
	mock.Mock
}

func (m *mockInstanceService) CreateInstance(ctx context.Context, req *dto.CreateInstanceRequest) (*dto.CreateInstanceResponse, *errors.AppError) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.CreateInstanceResponse)
	appErr, _ := args.Get(1).(*errors.AppError)
	return resp, appErr
}

func (m *mockInstanceService) GetInstance(ctx context.Context, slugOrID string) (*dto.InstanceResponse, *errors.AppError) {
	args := m.Called(ctx, slugOrID)
	resp, _ := args.Get(0).(*dto.InstanceResponse)
	appErr, _ := args.Get(1).(*errors.AppError)
	return resp, appErr
}

func newEcho(svc *mockInstanceService) *echo.Echo {
	e := echo.New()
	e.Validator = validator.New()
	ctrl := NewInstanceController(svc, nil, time.Second)
	e.POST("/api/v1/public/instances", ctrl.CreateInstance)
	e.GET("/api/v1/public/instances/:slug", ctrl.GetInstance)
	return e
}

func post(e *echo.Echo, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/public/instances", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateInstance(t *testing.T) {
	svc := &mockInstanceService{}
	e := newEcho(svc)

	svc.On("CreateInstance", mock.Anything, mock.MatchedBy(func(req *dto.CreateInstanceRequest) bool {
		return req.Name == "Summer trip" && len(req.Participants) == 2
	})).Return(&dto.CreateInstanceResponse{Instance: &dto.InstanceResponse{Slug: "summer-trip"}, AdminToken: "tok"}, nil)

	rec := post(e, `{"name":"Summer trip","password":"pw","start_date":"2024-06-01","end_date":"2024-06-03","participants":["Alice","Bob"]}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"admin_token":"tok"`)
}

func TestCreateInstance_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "blank name", body: `{"name":" ","password":"pw","start_date":"2024-06-01","end_date":"2024-06-03","participants":["Alice"]}`},
		{name: "bad date", body: `{"name":"Trip","password":"pw","start_date":"June 1","end_date":"2024-06-03","participants":["Alice"]}`},
		{name: "no participants", body: `{"name":"Trip","password":"pw","start_date":"2024-06-01","end_date":"2024-06-03","participants":[]}`},
		{name: "blank participant", body: `{"name":"Trip","password":"pw","start_date":"2024-06-01","end_date":"2024-06-03","participants":["Alice"," "]}`},
		{name: "malformed", body: `{"name":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockInstanceService{}
			rec := post(newEcho(svc), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			svc.AssertNotCalled(t, "CreateInstance", mock.Anything, mock.Anything)
		})
	}
}

func TestGetInstance_NotFound(t *testing.T) {
	svc := &mockInstanceService{}
	e := newEcho(svc)
	svc.On("GetInstance", mock.Anything, "missing").Return(nil, errors.NewAppError(errors.ErrNotFound, "Instance not found", nil))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/public/instances/missing", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
