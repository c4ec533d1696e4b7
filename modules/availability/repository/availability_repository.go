package repository

import (
	"context"
	"date-booker/core/database"
	"date-booker/core/logger"
	"date-booker/modules/availability/entity"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// AvailabilityRepository stores availability, favorites and response status.
type AvailabilityRepository struct {
	DB database.IDatabase
}

func NewAvailabilityRepository(db database.IDatabase) *AvailabilityRepository {
	return &AvailabilityRepository{DB: db}
}

// AvailabilityRepositoryInterface defines the repository contract. Every write
// runs in a single transaction.
type AvailabilityRepositoryInterface interface {
	// Reads
	GetAvailability(ctx context.Context, instanceID uuid.UUID) (entity.Marks, error)
	GetFavorites(ctx context.Context, instanceID uuid.UUID) (entity.Marks, error)
	GetResponses(ctx context.Context, instanceID uuid.UUID) (map[uuid.UUID]entity.ResponseStatus, error)
	GetParticipantMarks(ctx context.Context, instanceID, participantID uuid.UUID) (*entity.ParticipantMarks, error)

	// Writes
	SetAvailability(ctx context.Context, instanceID, participantID uuid.UUID, date entity.DateKey, value bool, response entity.ResponseStatus) error
	SetFavorite(ctx context.Context, instanceID, participantID uuid.UUID, date entity.DateKey, value bool, response entity.ResponseStatus) error
	SetAllAvailable(ctx context.Context, instanceID, participantID uuid.UUID, dates []entity.DateKey, response entity.ResponseStatus) error
	ClearParticipant(ctx context.Context, instanceID, participantID uuid.UUID, response entity.ResponseStatus) error
	SetResponse(ctx context.Context, instanceID, participantID uuid.UUID, response entity.ResponseStatus) error
}

// ===================== Reads =====================

func (r *AvailabilityRepository) GetAvailability(ctx context.Context, instanceID uuid.UUID) (entity.Marks, error) {
	query := `
		SELECT participant_id, instance_id, date, is_available, updated_at
		FROM availability
		WHERE instance_id = $1
	`

	var rows []entity.AvailabilityRecord
	if err := r.DB.SelectContext(ctx, &rows, query, instanceID); err != nil {
		logger.Error("AvailabilityRepository:GetAvailability:Error", "error", err, "instance_id", instanceID)
		return nil, err
	}

	marks := entity.Marks{}
	for _, row := range rows {
		marks.Set(row.ParticipantID, entity.NewDateKey(row.Date), row.IsAvailable)
	}
	return marks, nil
}

func (r *AvailabilityRepository) GetFavorites(ctx context.Context, instanceID uuid.UUID) (entity.Marks, error) {
	query := `
		SELECT participant_id, instance_id, date, is_favorite, updated_at
		FROM favorites
		WHERE instance_id = $1
	`

	var rows []entity.FavoriteRecord
	if err := r.DB.SelectContext(ctx, &rows, query, instanceID); err != nil {
		logger.Error("AvailabilityRepository:GetFavorites:Error", "error", err, "instance_id", instanceID)
		return nil, err
	}

	marks := entity.Marks{}
	for _, row := range rows {
		marks.Set(row.ParticipantID, entity.NewDateKey(row.Date), row.IsFavorite)
	}
	return marks, nil
}

func (r *AvailabilityRepository) GetResponses(ctx context.Context, instanceID uuid.UUID) (map[uuid.UUID]entity.ResponseStatus, error) {
	query := `
		SELECT participant_id, instance_id, has_responded, cant_attend, updated_at
		FROM responses
		WHERE instance_id = $1
	`

	var rows []entity.ResponseRecord
	if err := r.DB.SelectContext(ctx, &rows, query, instanceID); err != nil {
		logger.Error("AvailabilityRepository:GetResponses:Error", "error", err, "instance_id", instanceID)
		return nil, err
	}

	responses := make(map[uuid.UUID]entity.ResponseStatus, len(rows))
	for _, row := range rows {
		responses[row.ParticipantID] = row.Status()
	}
	return responses, nil
}

// GetParticipantMarks loads one participant's stored state. A participant
// with no rows yet gets empty maps and a zero response.
func (r *AvailabilityRepository) GetParticipantMarks(ctx context.Context, instanceID, participantID uuid.UUID) (*entity.ParticipantMarks, error) {
	marks := &entity.ParticipantMarks{
		Available: make(map[entity.DateKey]bool),
		Favorites: make(map[entity.DateKey]bool),
	}

	var available []entity.AvailabilityRecord
	err := r.DB.SelectContext(ctx, &available, `
		SELECT participant_id, instance_id, date, is_available, updated_at
		FROM availability
		WHERE instance_id = $1 AND participant_id = $2
	`, instanceID, participantID)
	if err != nil {
		logger.Error("AvailabilityRepository:GetParticipantMarks:Availability:Error", "error", err)
		return nil, err
	}
	for _, row := range available {
		marks.Available[entity.NewDateKey(row.Date)] = row.IsAvailable
	}

	var favorites []entity.FavoriteRecord
	err = r.DB.SelectContext(ctx, &favorites, `
		SELECT participant_id, instance_id, date, is_favorite, updated_at
		FROM favorites
		WHERE instance_id = $1 AND participant_id = $2
	`, instanceID, participantID)
	if err != nil {
		logger.Error("AvailabilityRepository:GetParticipantMarks:Favorites:Error", "error", err)
		return nil, err
	}
	for _, row := range favorites {
		marks.Favorites[entity.NewDateKey(row.Date)] = row.IsFavorite
	}

	var responses []entity.ResponseRecord
	err = r.DB.SelectContext(ctx, &responses, `
		SELECT participant_id, instance_id, has_responded, cant_attend, updated_at
		FROM responses
		WHERE instance_id = $1 AND participant_id = $2
	`, instanceID, participantID)
	if err != nil {
		logger.Error("AvailabilityRepository:GetParticipantMarks:Response:Error", "error", err)
		return nil, err
	}
	if len(responses) > 0 {
		marks.Response = responses[0].Status()
	}

	return marks, nil
}

// ===================== Writes =====================

// SetAvailability stores one availability mark. Clearing it also clears the
// favorite for the same date.
func (r *AvailabilityRepository) SetAvailability(ctx context.Context, instanceID, participantID uuid.UUID, date entity.DateKey, value bool, response entity.ResponseStatus) error {
	err := r.DB.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := upsertAvailability(ctx, tx, instanceID, participantID, date.Time(), value); err != nil {
			return err
		}
		if !value {
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM favorites WHERE participant_id = $1 AND date = $2`, participantID, date.Time()); err != nil {
				return err
			}
		}
		return upsertResponse(ctx, tx, instanceID, participantID, response)
	})
	if err != nil {
		logger.Error("AvailabilityRepository:SetAvailability:Error", "error", err, "participant_id", participantID, "date", date)
	}
	return err
}

func (r *AvailabilityRepository) SetFavorite(ctx context.Context, instanceID, participantID uuid.UUID, date entity.DateKey, value bool, response entity.ResponseStatus) error {
	err := r.DB.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO favorites (participant_id, instance_id, date, is_favorite)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (participant_id, date)
			DO UPDATE SET is_favorite = EXCLUDED.is_favorite, updated_at = NOW()
		`, participantID, instanceID, date.Time(), value)
		if err != nil {
			return err
		}
		return upsertResponse(ctx, tx, instanceID, participantID, response)
	})
	if err != nil {
		logger.Error("AvailabilityRepository:SetFavorite:Error", "error", err, "participant_id", participantID, "date", date)
	}
	return err
}

// SetAllAvailable marks every given date available.
func (r *AvailabilityRepository) SetAllAvailable(ctx context.Context, instanceID, participantID uuid.UUID, dates []entity.DateKey, response entity.ResponseStatus) error {
	err := r.DB.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, d := range dates {
			if err := upsertAvailability(ctx, tx, instanceID, participantID, d.Time(), true); err != nil {
				return err
			}
		}
		return upsertResponse(ctx, tx, instanceID, participantID, response)
	})
	if err != nil {
		logger.Error("AvailabilityRepository:SetAllAvailable:Error", "error", err, "participant_id", participantID)
	}
	return err
}

// ClearParticipant deletes all availability and favorites of a participant
// and stores the given response.
func (r *AvailabilityRepository) ClearParticipant(ctx context.Context, instanceID, participantID uuid.UUID, response entity.ResponseStatus) error {
	err := r.DB.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM availability WHERE participant_id = $1`, participantID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE participant_id = $1`, participantID); err != nil {
			return err
		}
		return upsertResponse(ctx, tx, instanceID, participantID, response)
	})
	if err != nil {
		logger.Error("AvailabilityRepository:ClearParticipant:Error", "error", err, "participant_id", participantID)
	}
	return err
}

func (r *AvailabilityRepository) SetResponse(ctx context.Context, instanceID, participantID uuid.UUID, response entity.ResponseStatus) error {
	err := r.DB.WithTx(ctx, func(tx *sqlx.Tx) error {
		return upsertResponse(ctx, tx, instanceID, participantID, response)
	})
	if err != nil {
		logger.Error("AvailabilityRepository:SetResponse:Error", "error", err, "participant_id", participantID)
	}
	return err
}

func upsertAvailability(ctx context.Context, tx *sqlx.Tx, instanceID, participantID uuid.UUID, date time.Time, value bool) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO availability (participant_id, instance_id, date, is_available)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_id, date)
		DO UPDATE SET is_available = EXCLUDED.is_available, updated_at = NOW()
	`, participantID, instanceID, date, value)
	return err
}

func upsertResponse(ctx context.Context, tx *sqlx.Tx, instanceID, participantID uuid.UUID, response entity.ResponseStatus) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO responses (participant_id, instance_id, has_responded, cant_attend)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_id)
		DO UPDATE SET has_responded = EXCLUDED.has_responded, cant_attend = EXCLUDED.cant_attend, updated_at = NOW()
	`, participantID, instanceID, response.HasResponded, response.CantAttend)
	return err
}
