package service

import (
	"context"
	"date-booker/core/constants"
	"date-booker/core/errors"
	"date-booker/core/utils"
	availabilityDto "date-booker/modules/availability/dto"
	chatDto "date-booker/modules/chat/dto"
	"date-booker/modules/export/dto"
	instanceEntity "date-booker/modules/instance/entity"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInstances struct {
	instance     *instanceEntity.Instance
	participants []instanceEntity.Participant
}

func (f *fakeInstances) ResolveInstance(_ context.Context, slugOrID string) (*instanceEntity.Instance, *errors.AppError) {
	if slugOrID != f.instance.Slug && slugOrID != f.instance.ID.String() {
		return nil, errors.NewAppError(errors.ErrNotFound, "Instance not found", nil)
	}
	return f.instance, nil
}

func (f *fakeInstances) ResolveForToken(ctx context.Context, slugOrID string, claims *utils.TokenClaims) (*instanceEntity.Instance, *errors.AppError) {
	instance, appErr := f.ResolveInstance(ctx, slugOrID)
	if appErr != nil {
		return nil, appErr
	}
	if claims.InstanceID != instance.ID {
		return nil, errors.NewAppError(errors.ErrForbidden, "Token does not belong to this instance", nil)
	}
	return instance, nil
}

func (f *fakeInstances) GetParticipants(_ context.Context, _ uuid.UUID) ([]instanceEntity.Participant, *errors.AppError) {
	return f.participants, nil
}

type stubBoards struct{}

func (stubBoards) BuildBoard(_ context.Context, instance *instanceEntity.Instance) (*availabilityDto.BoardResponse, *errors.AppError) {
	return &availabilityDto.BoardResponse{InstanceID: instance.ID.String(), TotalParticipants: 1}, nil
}

type stubMessages struct{}

func (stubMessages) AllMessages(_ context.Context, _ uuid.UUID) ([]chatDto.MessageResponse, *errors.AppError) {
	return []chatDto.MessageResponse{{Content: "hello", ParticipantName: "Alice"}}, nil
}

type stubCleaner struct {
	calledWith time.Time
	deleted    int64
}

func (c *stubCleaner) DeleteExpired(_ context.Context, now time.Time) (int64, *errors.AppError) {
	c.calledWith = now
	return c.deleted, nil
}

type fakeQueue struct {
	enqueued []asynq.TaskInfo
	tasks    map[string]*asynq.TaskInfo
}

func (q *fakeQueue) Enqueue(_ context.Context, taskType string, payload any, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	info := asynq.TaskInfo{ID: "task-1", Queue: constants.QueueDefault, Type: taskType, Payload: body, State: asynq.TaskStatePending}
	q.enqueued = append(q.enqueued, info)
	return &info, nil
}

func (q *fakeQueue) GetTaskInfo(_ string, id string) (*asynq.TaskInfo, error) {
	info, ok := q.tasks[id]
	if !ok {
		return nil, asynq.ErrTaskNotFound
	}
	return info, nil
}

type memoryStorage struct {
	objects map[string][]byte
}

func (m *memoryStorage) Put(_ context.Context, key string, body []byte, _ string) error {
	m.objects[key] = body
	return nil
}

func (m *memoryStorage) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if _, ok := m.objects[key]; !ok {
		return "", stderrors.New("no such key")
	}
	return "https://bucket.example/" + key + "?ttl=" + ttl.String(), nil
}

type fixture struct {
	svc       *ExportService
	instances *fakeInstances
	queue     *fakeQueue
	storage   *memoryStorage
	cleaner   *stubCleaner
	admin     *utils.TokenClaims
	now       time.Time
}

func newFixture() *fixture {
	instance := &instanceEntity.Instance{Slug: "trip", Name: "Trip"}
	instance.ID = uuid.New()

	f := &fixture{
		instances: &fakeInstances{
			instance:     instance,
			participants: []instanceEntity.Participant{{ID: uuid.New(), InstanceID: instance.ID, Name: "Alice"}},
		},
		queue:   &fakeQueue{tasks: map[string]*asynq.TaskInfo{}},
		storage: &memoryStorage{objects: map[string][]byte{}},
		cleaner: &stubCleaner{deleted: 2},
		admin:   &utils.TokenClaims{InstanceID: instance.ID, Scope: constants.ScopeTokenAdmin},
		now:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewExportService(f.instances, stubBoards{}, stubMessages{}, f.cleaner, f.queue, f.queue, f.storage, Options{PresignTTL: 15 * time.Minute})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestRequestExport(t *testing.T) {
	f := newFixture()

	resp, appErr := f.svc.RequestExport(context.Background(), f.admin, "trip")
	require.Nil(t, appErr)
	assert.Equal(t, "task-1", resp.TaskID)
	assert.Equal(t, "pending", resp.State)

	require.Len(t, f.queue.enqueued, 1)
	assert.Equal(t, constants.TaskInstanceExport, f.queue.enqueued[0].Type)

	var payload dto.ExportPayload
	require.NoError(t, json.Unmarshal(f.queue.enqueued[0].Payload, &payload))
	assert.Equal(t, f.instances.instance.ID, payload.InstanceID)
}

func TestRequestExport_ForeignToken(t *testing.T) {
	f := newFixture()

	_, appErr := f.svc.RequestExport(context.Background(), &utils.TokenClaims{InstanceID: uuid.New()}, "trip")
	require.NotNil(t, appErr)
	assert.Equal(t, errors.ErrForbidden, appErr.Code)
	assert.Empty(t, f.queue.enqueued)
}

func TestHandleExportTask_UploadsSnapshot(t *testing.T) {
	f := newFixture()
	body, _ := json.Marshal(dto.ExportPayload{InstanceID: f.instances.instance.ID})

	err := f.svc.HandleExportTask(context.Background(), asynq.NewTask(constants.TaskInstanceExport, body))
	require.NoError(t, err)

	key := ObjectKey("trip", f.now)
	assert.Equal(t, "exports/trip/1717243200.json", key)
	require.Contains(t, f.storage.objects, key)

	var snapshot dto.Snapshot
	require.NoError(t, json.Unmarshal(f.storage.objects[key], &snapshot))
	assert.Equal(t, "trip", snapshot.Instance.Slug)
	require.Len(t, snapshot.Instance.Participants, 1)
	assert.Equal(t, "Alice", snapshot.Instance.Participants[0].Name)
	assert.Equal(t, 1, snapshot.Board.TotalParticipants)
	require.Len(t, snapshot.Messages, 1)
	assert.Equal(t, "hello", snapshot.Messages[0].Content)
}

func TestHandleExportTask_DeletedInstanceIsNotRetried(t *testing.T) {
	f := newFixture()
	body, _ := json.Marshal(dto.ExportPayload{InstanceID: uuid.New()})

	err := f.svc.HandleExportTask(context.Background(), asynq.NewTask(constants.TaskInstanceExport, body))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, f.storage.objects)
}

func TestHandleExportTask_BadPayload(t *testing.T) {
	f := newFixture()

	err := f.svc.HandleExportTask(context.Background(), asynq.NewTask(constants.TaskInstanceExport, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestGetExport(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	key := ObjectKey("trip", f.now)
	f.storage.objects[key] = []byte("{}")

	payload, _ := json.Marshal(dto.ExportPayload{InstanceID: f.instances.instance.ID})
	f.queue.tasks["done"] = &asynq.TaskInfo{
		ID: "done", Type: constants.TaskInstanceExport, Payload: payload,
		State: asynq.TaskStateCompleted, CompletedAt: f.now, Result: []byte(key),
	}
	f.queue.tasks["running"] = &asynq.TaskInfo{
		ID: "running", Type: constants.TaskInstanceExport, Payload: payload, State: asynq.TaskStateActive,
	}
	otherPayload, _ := json.Marshal(dto.ExportPayload{InstanceID: uuid.New()})
	f.queue.tasks["other"] = &asynq.TaskInfo{
		ID: "other", Type: constants.TaskInstanceExport, Payload: otherPayload, State: asynq.TaskStateCompleted,
	}

	t.Run("completed", func(t *testing.T) {
		resp, appErr := f.svc.GetExport(ctx, f.admin, "trip", "done")
		require.Nil(t, appErr)
		assert.Equal(t, "completed", resp.State)
		assert.Equal(t, key, resp.ObjectKey)
		assert.Contains(t, resp.DownloadURL, key)
		require.NotNil(t, resp.CompletedAt)
	})

	t.Run("in progress", func(t *testing.T) {
		resp, appErr := f.svc.GetExport(ctx, f.admin, "trip", "running")
		require.Nil(t, appErr)
		assert.Equal(t, "active", resp.State)
		assert.Empty(t, resp.DownloadURL)
	})

	t.Run("other instance", func(t *testing.T) {
		_, appErr := f.svc.GetExport(ctx, f.admin, "trip", "other")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrNotFound, appErr.Code)
	})

	t.Run("unknown", func(t *testing.T) {
		_, appErr := f.svc.GetExport(ctx, f.admin, "trip", "missing")
		require.NotNil(t, appErr)
		assert.Equal(t, errors.ErrNotFound, appErr.Code)
	})
}

func TestHandleCleanupTask(t *testing.T) {
	f := newFixture()

	err := f.svc.HandleCleanupTask(context.Background(), asynq.NewTask(constants.TaskInstanceCleanup, nil))
	require.NoError(t, err)
	assert.Equal(t, f.now, f.cleaner.calledWith)
}
