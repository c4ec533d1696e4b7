package service

import (
	"context"
	"date-booker/core/constants"
	"date-booker/core/errors"
	"date-booker/core/logger"
	"date-booker/core/queue"
	"date-booker/core/storage"
	"date-booker/core/utils"
	availabilityDto "date-booker/modules/availability/dto"
	chatDto "date-booker/modules/chat/dto"
	"date-booker/modules/export/dto"
	instanceDto "date-booker/modules/instance/dto"
	instanceEntity "date-booker/modules/instance/entity"
	instanceService "date-booker/modules/instance/service"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// BoardBuilder produces the availability board of an instance.
type BoardBuilder interface {
	BuildBoard(ctx context.Context, instance *instanceEntity.Instance) (*availabilityDto.BoardResponse, *errors.AppError)
}

// MessageSource returns the whole chat history of an instance.
type MessageSource interface {
	AllMessages(ctx context.Context, instanceID uuid.UUID) ([]chatDto.MessageResponse, *errors.AppError)
}

// ExpiredInstanceRemover deletes instances past their retention window.
type ExpiredInstanceRemover interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, *errors.AppError)
}

type ExportServiceInterface interface {
	RequestExport(ctx context.Context, claims *utils.TokenClaims, slugOrID string) (*dto.ExportTaskResponse, *errors.AppError)
	GetExport(ctx context.Context, claims *utils.TokenClaims, slugOrID, taskID string) (*dto.ExportStatusResponse, *errors.AppError)

	HandleExportTask(ctx context.Context, task *asynq.Task) error
	HandleCleanupTask(ctx context.Context, task *asynq.Task) error
}

type Options struct {
	PresignTTL time.Duration
}

type ExportService struct {
	instances instanceService.InstanceLookup
	boards    BoardBuilder
	messages  MessageSource
	cleaner   ExpiredInstanceRemover
	enqueuer  queue.Enqueuer
	inspector queue.TaskInspector
	storage   storage.ObjectStorage
	opts      Options
	now       func() time.Time
}

func NewExportService(
	instances instanceService.InstanceLookup,
	boards BoardBuilder,
	messages MessageSource,
	cleaner ExpiredInstanceRemover,
	enqueuer queue.Enqueuer,
	inspector queue.TaskInspector,
	objects storage.ObjectStorage,
	opts Options,
) *ExportService {
	return &ExportService{
		instances: instances,
		boards:    boards,
		messages:  messages,
		cleaner:   cleaner,
		enqueuer:  enqueuer,
		inspector: inspector,
		storage:   objects,
		opts:      opts,
		now:       time.Now,
	}
}

func (s *ExportService) RequestExport(ctx context.Context, claims *utils.TokenClaims, slugOrID string) (*dto.ExportTaskResponse, *errors.AppError) {
	instance, appErr := s.instances.ResolveForToken(ctx, slugOrID, claims)
	if appErr != nil {
		return nil, appErr
	}

	info, err := s.enqueuer.Enqueue(ctx, constants.TaskInstanceExport, dto.ExportPayload{InstanceID: instance.ID})
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to schedule export", err)
	}

	return &dto.ExportTaskResponse{
		TaskID: info.ID,
		Queue:  info.Queue,
		State:  info.State.String(),
	}, nil
}

func (s *ExportService) GetExport(ctx context.Context, claims *utils.TokenClaims, slugOrID, taskID string) (*dto.ExportStatusResponse, *errors.AppError) {
	instance, appErr := s.instances.ResolveForToken(ctx, slugOrID, claims)
	if appErr != nil {
		return nil, appErr
	}

	info, err := s.inspector.GetTaskInfo(constants.QueueDefault, taskID)
	if err != nil {
		if stderrors.Is(err, asynq.ErrTaskNotFound) || stderrors.Is(err, asynq.ErrQueueNotFound) {
			return nil, errors.NewAppError(errors.ErrNotFound, "Export not found", nil)
		}
		return nil, errors.NewAppError(errors.ErrGetFailed, "Failed to get export", err)
	}

	// a task id from another instance is reported as missing
	var payload dto.ExportPayload
	if info.Type != constants.TaskInstanceExport || json.Unmarshal(info.Payload, &payload) != nil || payload.InstanceID != instance.ID {
		return nil, errors.NewAppError(errors.ErrNotFound, "Export not found", nil)
	}

	resp := &dto.ExportStatusResponse{
		TaskID:    info.ID,
		State:     info.State.String(),
		LastError: info.LastErr,
	}
	if info.State != asynq.TaskStateCompleted {
		return resp, nil
	}

	completedAt := info.CompletedAt
	resp.CompletedAt = &completedAt
	resp.ObjectKey = string(info.Result)

	url, err := s.storage.PresignGet(ctx, resp.ObjectKey, s.opts.PresignTTL)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrInternalServer, "Failed to sign download url", err)
	}
	resp.DownloadURL = url

	return resp, nil
}

// ===================== Worker handlers =====================

// HandleExportTask builds the snapshot and uploads it. The object key is the
// task result.
func (s *ExportService) HandleExportTask(ctx context.Context, task *asynq.Task) error {
	var payload dto.ExportPayload
	if err := queue.DecodePayload(task, &payload); err != nil {
		return err
	}

	instance, appErr := s.instances.ResolveInstance(ctx, payload.InstanceID.String())
	if appErr != nil {
		if appErr.Code == errors.ErrNotFound {
			logger.Warn("ExportService:HandleExportTask:InstanceGone", "instance_id", payload.InstanceID)
			return fmt.Errorf("instance %s: %w", payload.InstanceID, asynq.SkipRetry)
		}
		return appErr
	}

	snapshot, appErr := s.BuildSnapshot(ctx, instance)
	if appErr != nil {
		return appErr
	}

	body, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	key := ObjectKey(instance.Slug, snapshot.ExportedAt)
	if err := s.storage.Put(ctx, key, body, "application/json"); err != nil {
		logger.Error("ExportService:HandleExportTask:Upload:Error", "error", err, "key", key)
		return err
	}

	logger.Info("ExportService:HandleExportTask", "instance_id", instance.ID, "key", key, "bytes", len(body))
	return queue.WriteResult(task, []byte(key))
}

// BuildSnapshot collects everything that belongs to an instance.
func (s *ExportService) BuildSnapshot(ctx context.Context, instance *instanceEntity.Instance) (*dto.Snapshot, *errors.AppError) {
	participants, appErr := s.instances.GetParticipants(ctx, instance.ID)
	if appErr != nil {
		return nil, appErr
	}

	board, appErr := s.boards.BuildBoard(ctx, instance)
	if appErr != nil {
		return nil, appErr
	}

	messages, appErr := s.messages.AllMessages(ctx, instance.ID)
	if appErr != nil {
		return nil, appErr
	}

	return &dto.Snapshot{
		ExportedAt: s.now().UTC(),
		Instance:   instanceDto.ToInstanceResponse(instance, participants),
		Board:      board,
		Messages:   messages,
	}, nil
}

func (s *ExportService) HandleCleanupTask(ctx context.Context, _ *asynq.Task) error {
	n, appErr := s.cleaner.DeleteExpired(ctx, s.now())
	if appErr != nil {
		return appErr
	}
	logger.Info("ExportService:HandleCleanupTask", "deleted", n)
	return nil
}

func ObjectKey(slug string, at time.Time) string {
	return fmt.Sprintf("exports/%s/%d.json", slug, at.Unix())
}
