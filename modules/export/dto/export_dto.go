package dto

import (
	availabilityDto "date-booker/modules/availability/dto"
	chatDto "date-booker/modules/chat/dto"
	instanceDto "date-booker/modules/instance/dto"
	"time"

	"github.com/google/uuid"
)

// ExportPayload is the body of an instance:export task.
type ExportPayload struct {
	InstanceID uuid.UUID `json:"instance_id"`
}

type ExportTaskResponse struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
	State  string `json:"state"`
}

type ExportStatusResponse struct {
	TaskID      string     `json:"task_id"`
	State       string     `json:"state"`
	LastError   string     `json:"last_error,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	ObjectKey   string     `json:"object_key,omitempty"`
	DownloadURL string     `json:"download_url,omitempty"`
}

// Snapshot is the document uploaded to object storage.
type Snapshot struct {
	ExportedAt time.Time                      `json:"exported_at"`
	Instance   *instanceDto.InstanceResponse  `json:"instance"`
	Board      *availabilityDto.BoardResponse `json:"board"`
	Messages   []chatDto.MessageResponse      `json:"messages"`
}
