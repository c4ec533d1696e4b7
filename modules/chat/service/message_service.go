package service

import (
	"context"
	"date-booker/core/errors"
	"date-booker/core/params"
	"date-booker/core/realtime"
	"date-booker/core/utils"
	"date-booker/modules/chat/dto"
	"date-booker/modules/chat/entity"
	"date-booker/modules/chat/repository"
	instanceService "date-booker/modules/instance/service"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

type MessageServiceInterface interface {
	SendMessage(ctx context.Context, claims *utils.TokenClaims, slugOrID string, req *dto.SendMessageRequest) (*dto.MessageResponse, *errors.AppError)
	ListMessages(ctx context.Context, slugOrID string, params params.QueryParams) (*dto.PaginatedMessageResponse, *errors.AppError)
	AllMessages(ctx context.Context, instanceID uuid.UUID) ([]dto.MessageResponse, *errors.AppError)
}

type MessageService struct {
	repo      repository.MessageRepositoryInterface
	instances instanceService.InstanceLookup
	publisher realtime.Publisher
}

func NewMessageService(repo repository.MessageRepositoryInterface, instances instanceService.InstanceLookup, publisher realtime.Publisher) *MessageService {
	return &MessageService{
		repo:      repo,
		instances: instances,
		publisher: publisher,
	}
}

func (s *MessageService) SendMessage(ctx context.Context, claims *utils.TokenClaims, slugOrID string, req *dto.SendMessageRequest) (*dto.MessageResponse, *errors.AppError) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Message cannot be empty", nil)
	}
	if utf8.RuneCountInString(content) > dto.MaxMessageLength {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "Message is too long", nil)
	}

	instance, appErr := s.instances.ResolveForToken(ctx, slugOrID, claims)
	if appErr != nil {
		return nil, appErr
	}

	participants, appErr := s.instances.GetParticipants(ctx, instance.ID)
	if appErr != nil {
		return nil, appErr
	}
	senderName := ""
	for _, p := range participants {
		if p.ID == claims.ParticipantID {
			senderName = p.Name
			break
		}
	}
	if senderName == "" {
		return nil, errors.NewAppError(errors.ErrUnauthorized, "Participant is no longer part of this instance", nil)
	}

	message := &entity.Message{
		InstanceID:      instance.ID,
		ParticipantID:   claims.ParticipantID,
		Content:         content,
		ParticipantName: senderName,
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, errors.NewAppError(errors.ErrCreateFailed, "Failed to send message", err)
	}

	response := dto.ToMessageResponse(message)
	realtime.PublishSafe(ctx, s.publisher, realtime.NewEvent(realtime.EventMessageCreated, instance.ID, &message.ParticipantID, response))

	return response, nil
}

func (s *MessageService) ListMessages(ctx context.Context, slugOrID string, params params.QueryParams) (*dto.PaginatedMessageResponse, *errors.AppError) {
	instance, appErr := s.instances.ResolveInstance(ctx, slugOrID)
	if appErr != nil {
		return nil, appErr
	}

	page, err := s.repo.ListByInstance(ctx, instance.ID, params)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get messages", err)
	}

	return dto.ToPaginatedMessageResponse(page), nil
}

// AllMessages returns the full conversation, used by exports.
func (s *MessageService) AllMessages(ctx context.Context, instanceID uuid.UUID) ([]dto.MessageResponse, *errors.AppError) {
	messages, err := s.repo.ListAll(ctx, instanceID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get messages", err)
	}
	return dto.ToMessageResponses(messages), nil
}
