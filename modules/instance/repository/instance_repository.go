package repository

import (
	"context"
	"database/sql"
	"date-booker/core/database"
	"date-booker/core/logger"
	"date-booker/modules/instance/entity"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// InstanceRepository handles instances and their rosters
type InstanceRepository struct {
	DB database.IDatabase
}

func NewInstanceRepository(db database.IDatabase) *InstanceRepository {
	return &InstanceRepository{DB: db}
}

// InstanceRepositoryInterface defines the repository contract
type InstanceRepositoryInterface interface {
	// Instances
	CreateInstance(ctx context.Context, instance *entity.Instance, participantNames []string) (*entity.Instance, []entity.Participant, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	GetInstanceBySlug(ctx context.Context, slug string) (*entity.Instance, error)
	GetInstanceByID(ctx context.Context, id uuid.UUID) (*entity.Instance, error)
	DeleteInstance(ctx context.Context, id uuid.UUID) error
	DeleteInstancesEndedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Participants
	GetParticipants(ctx context.Context, instanceID uuid.UUID) ([]entity.Participant, error)
	GetParticipantByID(ctx context.Context, instanceID, participantID uuid.UUID) (*entity.Participant, error)
	AddParticipant(ctx context.Context, instanceID uuid.UUID, name string) (*entity.Participant, error)
	RemoveParticipant(ctx context.Context, instanceID, participantID uuid.UUID) (bool, error)
}

const instanceColumns = `id, slug, name, password_hash, start_date, end_date, created_at, updated_at`

// ===================== Instances =====================

// CreateInstance inserts the instance and its roster in one transaction.
func (r *InstanceRepository) CreateInstance(ctx context.Context, instance *entity.Instance, participantNames []string) (*entity.Instance, []entity.Participant, error) {
	var (
		created      entity.Instance
		participants = make([]entity.Participant, 0, len(participantNames))
	)

	err := r.DB.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO instances (slug, name, password_hash, start_date, end_date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + instanceColumns

		if err := tx.GetContext(ctx, &created, query,
			instance.Slug, instance.Name, instance.PasswordHash, instance.StartDate, instance.EndDate); err != nil {
			return err
		}

		for _, name := range participantNames {
			p, err := insertParticipant(ctx, tx, created.ID, name)
			if err != nil {
				return err
			}
			participants = append(participants, *p)
		}
		return nil
	})
	if err != nil {
		logger.Error("InstanceRepository:CreateInstance:Error", "error", err, "slug", instance.Slug)
		return nil, nil, err
	}

	return &created, participants, nil
}

func (r *InstanceRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM instances WHERE slug = $1)`, slug)
	if err != nil {
		logger.Error("InstanceRepository:SlugExists:Error", "error", err)
		return false, err
	}
	return exists, nil
}

func (r *InstanceRepository) GetInstanceBySlug(ctx context.Context, slug string) (*entity.Instance, error) {
	return r.getInstance(ctx, `SELECT `+instanceColumns+` FROM instances WHERE slug = $1`, slug)
}

func (r *InstanceRepository) GetInstanceByID(ctx context.Context, id uuid.UUID) (*entity.Instance, error) {
	return r.getInstance(ctx, `SELECT `+instanceColumns+` FROM instances WHERE id = $1`, id)
}

func (r *InstanceRepository) getInstance(ctx context.Context, query string, arg any) (*entity.Instance, error) {
	var instance entity.Instance
	err := r.DB.GetContext(ctx, &instance, query, arg)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("InstanceRepository:GetInstance:Error", "error", err)
		return nil, err
	}
	return &instance, nil
}

// DeleteInstance removes the instance. Roster, availability, favorites,
// responses and messages go with it through ON DELETE CASCADE.
func (r *InstanceRepository) DeleteInstance(ctx context.Context, id uuid.UUID) error {
	if err := r.DB.ExecContext(ctx, `DELETE FROM instances WHERE id = $1`, id); err != nil {
		logger.Error("InstanceRepository:DeleteInstance:Error", "error", err, "instance_id", id)
		return err
	}
	return nil
}

func (r *InstanceRepository) DeleteInstancesEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.SQLx().ExecContext(ctx, `DELETE FROM instances WHERE end_date < $1`, cutoff)
	if err != nil {
		logger.Error("InstanceRepository:DeleteInstancesEndedBefore:Error", "error", err)
		return 0, err
	}
	return res.RowsAffected()
}

// ===================== Participants =====================

func (r *InstanceRepository) GetParticipants(ctx context.Context, instanceID uuid.UUID) ([]entity.Participant, error) {
	query := `
		SELECT id, instance_id, name, created_at
		FROM participants
		WHERE instance_id = $1
		ORDER BY created_at, name
	`

	participants := make([]entity.Participant, 0)
	if err := r.DB.SelectContext(ctx, &participants, query, instanceID); err != nil {
		logger.Error("InstanceRepository:GetParticipants:Error", "error", err, "instance_id", instanceID)
		return nil, err
	}
	return participants, nil
}

func (r *InstanceRepository) GetParticipantByID(ctx context.Context, instanceID, participantID uuid.UUID) (*entity.Participant, error) {
	query := `
		SELECT id, instance_id, name, created_at
		FROM participants
		WHERE instance_id = $1 AND id = $2
	`

	var p entity.Participant
	err := r.DB.GetContext(ctx, &p, query, instanceID, participantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("InstanceRepository:GetParticipantByID:Error", "error", err)
		return nil, err
	}
	return &p, nil
}

func (r *InstanceRepository) AddParticipant(ctx context.Context, instanceID uuid.UUID, name string) (*entity.Participant, error) {
	var created *entity.Participant
	err := r.DB.WithTx(ctx, func(tx *sqlx.Tx) error {
		p, err := insertParticipant(ctx, tx, instanceID, name)
		created = p
		return err
	})
	if err != nil {
		logger.Error("InstanceRepository:AddParticipant:Error", "error", err, "instance_id", instanceID)
		return nil, err
	}
	return created, nil
}

// RemoveParticipant reports false when the participant is not on the roster.
func (r *InstanceRepository) RemoveParticipant(ctx context.Context, instanceID, participantID uuid.UUID) (bool, error) {
	res, err := r.DB.SQLx().ExecContext(ctx,
		`DELETE FROM participants WHERE instance_id = $1 AND id = $2`, instanceID, participantID)
	if err != nil {
		logger.Error("InstanceRepository:RemoveParticipant:Error", "error", err)
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// insertParticipant adds a roster entry and its empty response row.
func insertParticipant(ctx context.Context, tx *sqlx.Tx, instanceID uuid.UUID, name string) (*entity.Participant, error) {
	var p entity.Participant
	err := tx.GetContext(ctx, &p, `
		INSERT INTO participants (instance_id, name)
		VALUES ($1, $2)
		RETURNING id, instance_id, name, created_at
	`, instanceID, name)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO responses (participant_id, instance_id, has_responded, cant_attend)
		VALUES ($1, $2, FALSE, FALSE)
	`, p.ID, instanceID)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
