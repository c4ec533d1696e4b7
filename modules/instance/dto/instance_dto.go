package dto

import (
	"date-booker/core/constants"
	"date-booker/modules/instance/entity"
	"time"
)

// ===================== Request DTOs =====================

// CreateInstanceRequest for creating a new instance with its roster
type CreateInstanceRequest struct {
	Name         string   `json:"name" validate:"required,notblank,max=200"`
	Password     string   `json:"password" validate:"required,notblank,max=72"`
	StartDate    string   `json:"start_date" validate:"required,datekey"`
	EndDate      string   `json:"end_date" validate:"required,datekey"`
	Participants []string `json:"participants" validate:"required,min=1,dive,required,notblank,max=100"`
}

// AddParticipantRequest for adding a name to the roster
type AddParticipantRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
}

// ===================== Response DTOs =====================

type ParticipantResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type InstanceResponse struct {
	ID           string                `json:"id"`
	Slug         string                `json:"slug"`
	Name         string                `json:"name"`
	StartDate    string                `json:"start_date"`
	EndDate      string                `json:"end_date"`
	Participants []ParticipantResponse `json:"participants"`
	CreatedAt    time.Time             `json:"created_at"`
}

// CreateInstanceResponse carries the admin token. It is only returned once.
type CreateInstanceResponse struct {
	Instance   *InstanceResponse `json:"instance"`
	AdminToken string            `json:"admin_token"`
}

// ===================== Mappers =====================

func ToParticipantResponse(p *entity.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
	}
}

func ToParticipantResponses(participants []entity.Participant) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(participants))
	for i := range participants {
		out = append(out, ToParticipantResponse(&participants[i]))
	}
	return out
}

func ToInstanceResponse(instance *entity.Instance, participants []entity.Participant) *InstanceResponse {
	return &InstanceResponse{
		ID:           instance.ID.String(),
		Slug:         instance.Slug,
		Name:         instance.Name,
		StartDate:    instance.StartDate.Format(constants.DateKeyLayout),
		EndDate:      instance.EndDate.Format(constants.DateKeyLayout),
		Participants: ToParticipantResponses(participants),
		CreatedAt:    instance.CreatedAt,
	}
}
