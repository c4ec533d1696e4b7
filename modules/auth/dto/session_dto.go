package dto

import "time"

// JoinRequest picks a roster name and proves knowledge of the instance password
type JoinRequest struct {
	ParticipantID string `json:"participant_id" validate:"required,uuid"`
	Password      string `json:"password" validate:"required"`
}

type JoinResponse struct {
	AccessToken     string    `json:"access_token"`
	ExpiresAt       time.Time `json:"expires_at"`
	InstanceID      string    `json:"instance_id"`
	InstanceSlug    string    `json:"instance_slug"`
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
}
