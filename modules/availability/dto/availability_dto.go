package dto

import (
	"date-booker/modules/availability/entity"
)

// SetAllAvailabilityRequest for marking every date available or clearing all
type SetAllAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// ParticipantState is one participant's marks after a change.
type ParticipantState struct {
	ParticipantID string           `json:"participant_id"`
	Name          string           `json:"name,omitempty"`
	HasResponded  bool             `json:"has_responded"`
	CantAttend    bool             `json:"cant_attend"`
	Available     []entity.DateKey `json:"available"`
	Favorites     []entity.DateKey `json:"favorites"`
}

// BoardResponse is the full availability board of an instance.
type BoardResponse struct {
	InstanceID        string               `json:"instance_id"`
	DateSlots         []entity.DateKey     `json:"date_slots"`
	Participants      []ParticipantState   `json:"participants"`
	CantAttend        []string             `json:"cant_attend"`
	RespondedCount    int                  `json:"responded_count"`
	TotalParticipants int                  `json:"total_participants"`
	BestDays          []entity.RankedGroup `json:"best_days"`
}

type BestDaysResponse struct {
	InstanceID        string               `json:"instance_id"`
	RespondedCount    int                  `json:"responded_count"`
	TotalParticipants int                  `json:"total_participants"`
	Groups            []entity.RankedGroup `json:"groups"`
}
