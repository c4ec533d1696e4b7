package repository

import (
	"context"
	"date-booker/core/database"
	"date-booker/core/entity"
	"date-booker/core/logger"
	"date-booker/core/params"
	chatEntity "date-booker/modules/chat/entity"

	"github.com/google/uuid"
)

type MessageRepositoryInterface interface {
	Create(ctx context.Context, message *chatEntity.Message) error
	ListByInstance(ctx context.Context, instanceID uuid.UUID, params params.QueryParams) (*chatEntity.PaginatedMessageEntity, error)
	ListAll(ctx context.Context, instanceID uuid.UUID) ([]chatEntity.Message, error)
}

type MessageRepository struct {
	db database.IDatabase
}

func NewMessageRepository(db database.IDatabase) *MessageRepository {
	return &MessageRepository{db: db}
}

// Create inserts the message and fills in its id and timestamp.
func (r *MessageRepository) Create(ctx context.Context, message *chatEntity.Message) error {
	query := `
		INSERT INTO messages (instance_id, participant_id, content)
		VALUES (:instance_id, :participant_id, :content)
		RETURNING id, created_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, message)
	if err != nil {
		logger.Error("MessageRepository:Create:Error", "error", err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(&message.ID, &message.CreatedAt)
	}
	return rows.Err()
}

// ListByInstance pages through messages oldest first.
func (r *MessageRepository) ListByInstance(ctx context.Context, instanceID uuid.UUID, params params.QueryParams) (*chatEntity.PaginatedMessageEntity, error) {
	var totalItems int
	err := r.db.GetContext(ctx, &totalItems, `SELECT COUNT(*) FROM messages WHERE instance_id = $1`, instanceID)
	if err != nil {
		logger.Error("MessageRepository:ListByInstance:Count:Error", "error", err)
		return nil, err
	}

	query := `
		SELECT m.id, m.instance_id, m.participant_id, m.content, m.created_at, p.name AS participant_name
		FROM messages m
		JOIN participants p ON p.id = m.participant_id
		WHERE m.instance_id = $1
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT $2 OFFSET $3
	`

	var messages []chatEntity.Message
	err = r.db.SelectContext(ctx, &messages, query, instanceID, params.PageSize, params.Offset())
	if err != nil {
		logger.Error("MessageRepository:ListByInstance:Select:Error", "error", err)
		return nil, err
	}

	return entity.NewPagination(messages, totalItems, params.PageNumber, params.PageSize), nil
}

// ListAll returns the whole conversation, oldest first.
func (r *MessageRepository) ListAll(ctx context.Context, instanceID uuid.UUID) ([]chatEntity.Message, error) {
	query := `
		SELECT m.id, m.instance_id, m.participant_id, m.content, m.created_at, p.name AS participant_name
		FROM messages m
		JOIN participants p ON p.id = m.participant_id
		WHERE m.instance_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`

	messages := make([]chatEntity.Message, 0)
	if err := r.db.SelectContext(ctx, &messages, query, instanceID); err != nil {
		logger.Error("MessageRepository:ListAll:Error", "error", err)
		return nil, err
	}
	return messages, nil
}
