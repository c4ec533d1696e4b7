package entity

import (
	"date-booker/core/entity"
	"time"

	"github.com/google/uuid"
)

// Instance is one scheduling poll: a date range and a fixed roster.
type Instance struct {
	entity.BaseEntity
	Slug         string    `db:"slug" json:"slug"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
}

type Participant struct {
	ID         uuid.UUID `db:"id" json:"id"`
	InstanceID uuid.UUID `db:"instance_id" json:"instance_id"`
	Name       string    `db:"name" json:"name"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ParticipantIDs returns the roster ids in roster order.
func ParticipantIDs(participants []Participant) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(participants))
	for _, p := range participants {
		ids = append(ids, p.ID)
	}
	return ids
}
