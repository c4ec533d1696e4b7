package entity

import (
	"date-booker/core/constants"
	"time"

	"github.com/google/uuid"
)

// DateKey identifies a date slot by its ISO calendar date (YYYY-MM-DD).
type DateKey string

// NewDateKey normalizes t to its calendar date in t's own location.
func NewDateKey(t time.Time) DateKey {
	return DateKey(t.Format(constants.DateKeyLayout))
}

func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(constants.DateKeyLayout, s)
	if err != nil {
		return "", err
	}
	return NewDateKey(t), nil
}

// Time returns the date at midnight UTC.
func (k DateKey) Time() time.Time {
	t, _ := time.Parse(constants.DateKeyLayout, string(k))
	return t
}

func (k DateKey) String() string {
	return string(k)
}

// Marks holds per participant, per date booleans. Reading a missing
// participant or date yields false.
type Marks map[uuid.UUID]map[DateKey]bool

func (m Marks) Get(participantID uuid.UUID, date DateKey) bool {
	return m[participantID][date]
}

func (m Marks) Set(participantID uuid.UUID, date DateKey, value bool) {
	days, ok := m[participantID]
	if !ok {
		days = make(map[DateKey]bool)
		m[participantID] = days
	}
	days[date] = value
}

// Dates returns the dates marked true for a participant, in slot order.
func (m Marks) Dates(participantID uuid.UUID, slots []DateKey) []DateKey {
	out := make([]DateKey, 0)
	for _, d := range slots {
		if m.Get(participantID, d) {
			out = append(out, d)
		}
	}
	return out
}

type ResponseStatus struct {
	HasResponded bool `json:"has_responded"`
	CantAttend   bool `json:"cant_attend"`
}

// AvailabilityRecord is a row of the availability table.
type AvailabilityRecord struct {
	ParticipantID uuid.UUID `db:"participant_id"`
	InstanceID    uuid.UUID `db:"instance_id"`
	Date          time.Time `db:"date"`
	IsAvailable   bool      `db:"is_available"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// FavoriteRecord is a row of the favorites table.
type FavoriteRecord struct {
	ParticipantID uuid.UUID `db:"participant_id"`
	InstanceID    uuid.UUID `db:"instance_id"`
	Date          time.Time `db:"date"`
	IsFavorite    bool      `db:"is_favorite"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ResponseRecord is a row of the responses table.
type ResponseRecord struct {
	ParticipantID uuid.UUID `db:"participant_id"`
	InstanceID    uuid.UUID `db:"instance_id"`
	HasResponded  bool      `db:"has_responded"`
	CantAttend    bool      `db:"cant_attend"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r ResponseRecord) Status() ResponseStatus {
	return ResponseStatus{HasResponded: r.HasResponded, CantAttend: r.CantAttend}
}

// ParticipantMarks is the stored state of a single participant.
type ParticipantMarks struct {
	Available map[DateKey]bool
	Favorites map[DateKey]bool
	Response  ResponseStatus
}
