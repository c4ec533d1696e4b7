package dto

import (
	"date-booker/core/entity"
	chatEntity "date-booker/modules/chat/entity"
	"time"

	"github.com/google/uuid"
)

const MaxMessageLength = 2000

type SendMessageRequest struct {
	Content string `json:"content" validate:"required"`
}

type MessageResponse struct {
	ID              uuid.UUID `json:"id"`
	InstanceID      uuid.UUID `json:"instance_id"`
	ParticipantID   uuid.UUID `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
}

type PaginatedMessageResponse = entity.Pagination[MessageResponse]

func ToMessageResponse(message *chatEntity.Message) *MessageResponse {
	return &MessageResponse{
		ID:              message.ID,
		InstanceID:      message.InstanceID,
		ParticipantID:   message.ParticipantID,
		ParticipantName: message.ParticipantName,
		Content:         message.Content,
		CreatedAt:       message.CreatedAt,
	}
}

func ToMessageResponses(messages []chatEntity.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, *ToMessageResponse(&messages[i]))
	}
	return out
}

func ToPaginatedMessageResponse(page *chatEntity.PaginatedMessageEntity) *PaginatedMessageResponse {
	return entity.NewPagination(ToMessageResponses(page.Items), page.TotalItems, page.PageNumber, page.PageSize)
}
