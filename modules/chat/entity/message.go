package entity

import (
	"date-booker/core/entity"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	ID            uuid.UUID `db:"id" json:"id"`
	InstanceID    uuid.UUID `db:"instance_id" json:"instance_id"`
	ParticipantID uuid.UUID `db:"participant_id" json:"participant_id"`
	Content       string    `db:"content" json:"content"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`

	// Filled by list queries
	ParticipantName string `db:"participant_name" json:"participant_name"`
}

type PaginatedMessageEntity = entity.Pagination[Message]
