package service

import (
	"context"
	"date-booker/core/errors"
	"date-booker/core/params"
	"date-booker/core/realtime"
	"date-booker/core/utils"
	"date-booker/modules/chat/dto"
	"date-booker/modules/chat/entity"
	instanceEntity "date-booker/modules/instance/entity"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	return m.Called(ctx, message).Error(0)
}

func (m *mockMessageRepo) ListByInstance(ctx context.Context, instanceID uuid.UUID, params params.QueryParams) (*entity.PaginatedMessageEntity, error) {
	args := m.Called(ctx, instanceID, params)
	page, _ := args.Get(0).(*entity.PaginatedMessageEntity)
	return page, args.Error(1)
}

func (m *mockMessageRepo) ListAll(ctx context.Context, instanceID uuid.UUID) ([]entity.Message, error) {
	args := m.Called(ctx, instanceID)
	messages, _ := args.Get(0).([]entity.Message)
	return messages, args.Error(1)
}

type fakeInstances struct {
	instance     *instanceEntity.Instance
	participants []instanceEntity.Participant
}

func (f *fakeInstances) ResolveInstance(_ context.Context, slugOrID string) (*instanceEntity.Instance, *errors.AppError) {
	if slugOrID != f.instance.Slug {
		return nil, errors.NewAppError(errors.ErrNotFound, "Instance not found", nil)
	}
	return f.instance, nil
}

func (f *fakeInstances) ResolveForToken(ctx context.Context, slugOrID string, claims *utils.TokenClaims) (*instanceEntity.Instance, *errors.AppError) {
	instance, appErr := f.ResolveInstance(ctx, slugOrID)
	if appErr != nil {
		return nil, appErr
	}
	if claims.InstanceID != instance.ID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Token does not belong to this instance", nil)
	}
	return instance, nil
}

func (f *fakeInstances) GetParticipants(_ context.Context, _ uuid.UUID) ([]instanceEntity.Participant, *errors.AppError) {
	return f.participants, nil
}

type capturePublisher struct {
	events []realtime.Event
}

func (p *capturePublisher) Publish(_ context.Context, event realtime.Event) error {
	p.events = append(p.events, event)
	return nil
}

func newTestService() (*MessageService, *mockMessageRepo, *capturePublisher, *utils.TokenClaims) {
	instance := &instanceEntity.Instance{Slug: "trip"}
	instance.ID = uuid.New()
	alice := uuid.New()

	repo := &mockMessageRepo{}
	pub := &capturePublisher{}
	instances := &fakeInstances{
		instance:     instance,
		participants: []instanceEntity.Participant{{ID: alice, InstanceID: instance.ID, Name: "Alice"}},
	}
	claims := &utils.TokenClaims{InstanceID: instance.ID, ParticipantID: alice}

	return NewMessageService(repo, instances, pub), repo, pub, claims
}

func TestSendMessage_Success(t *testing.T) {
	svc, repo, pub, claims := newTestService()
	ctx := context.Background()
	sentAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	repo.On("Create", ctx, mock.MatchedBy(func(m *entity.Message) bool {
		return m.Content == "see you there" && m.ParticipantID == claims.ParticipantID
	})).Run(func(args mock.Arguments) {
		m := args.Get(1).(*entity.Message)
		m.ID = uuid.New()
		m.CreatedAt = sentAt
	}).Return(nil)

	resp, appErr := svc.SendMessage(ctx, claims, "trip", &dto.SendMessageRequest{Content: "  see you there \n"})
	require.Nil(t, appErr)
	assert.Equal(t, "see you there", resp.Content)
	assert.Equal(t, "Alice", resp.ParticipantName)
	assert.Equal(t, sentAt, resp.CreatedAt)

	require.Len(t, pub.events, 1)
	assert.Equal(t, realtime.EventMessageCreated, pub.events[0].Type)
	assert.Equal(t, claims.InstanceID, pub.events[0].InstanceID)
	repo.AssertExpectations(t)
}

func TestSendMessage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "blank", content: "   "},
		{name: "too long", content: strings.Repeat("a", dto.MaxMessageLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, pub, claims := newTestService()
			_, appErr := svc.SendMessage(context.Background(), claims, "trip", &dto.SendMessageRequest{Content: tt.content})
			require.NotNil(t, appErr)
			assert.Equal(t, errors.ErrInvalidInput, appErr.Code)
			assert.Empty(t, pub.events)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSendMessage_MaxLengthCountsCharacters(t *testing.T) {
	svc, repo, _, claims := newTestService()
	ctx := context.Background()
	repo.On("Create", ctx, mock.Anything).Return(nil)

	_, appErr := svc.SendMessage(ctx, claims, "trip", &dto.SendMessageRequest{Content: strings.Repeat("é", dto.MaxMessageLength)})
	assert.Nil(t, appErr)
}

func TestSendMessage_Rejections(t *testing.T) {
	svc, repo, _, claims := newTestService()
	ctx := context.Background()

	foreign := &utils.TokenClaims{InstanceID: uuid.New(), ParticipantID: claims.ParticipantID}
	_, appErr := svc.SendMessage(ctx, foreign, "trip", &dto.SendMessageRequest{Content: "hi"})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)

	stranger := &utils.TokenClaims{InstanceID: claims.InstanceID, ParticipantID: uuid.New()}
	_, appErr = svc.SendMessage(ctx, stranger, "trip", &dto.SendMessageRequest{Content: "hi"})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrUnauthorized, appErr.Code)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendMessage_RepoError(t *testing.T) {
	svc, repo, pub, claims := newTestService()
	ctx := context.Background()
	repo.On("Create", ctx, mock.Anything).Return(stderrors.New("db down"))

	_, appErr := svc.SendMessage(ctx, claims, "trip", &dto.SendMessageRequest{Content: "hi"})
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrCreateFailed, appErr.Code)
	assert.Empty(t, pub.events)
}

func TestListMessages(t *testing.T) {
	svc, repo, _, claims := newTestService()
	ctx := context.Background()
	query := params.QueryParams{PageNumber: 2, PageSize: 1}

	page := &entity.PaginatedMessageEntity{
		Items:      []entity.Message{{ID: uuid.New(), Content: "second", ParticipantName: "Alice"}},
		TotalItems: 2,
		PageNumber: 2,
		PageSize:   1,
	}
	repo.On("ListByInstance", ctx, claims.InstanceID, query).Return(page, nil)

	resp, appErr := svc.ListMessages(ctx, "trip", query)
	require.Nil(t, appErr)
	assert.Equal(t, 2, resp.TotalItems)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "second", resp.Items[0].Content)

	_, appErr = svc.ListMessages(ctx, "nope", query)
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrNotFound, appErr.Code)
}

func TestAllMessages(t *testing.T) {
	svc, repo, _, claims := newTestService()
	ctx := context.Background()
	repo.On("ListAll", ctx, claims.InstanceID).Return([]entity.Message{{Content: "a"}, {Content: "b"}}, nil)

	messages, appErr := svc.AllMessages(ctx, claims.InstanceID)
	require.Nil(t, appErr)
	require.Len(t, messages, 2)
	assert.Equal(t, "a", messages[0].Content)
}
