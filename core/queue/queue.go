package queue

import (
	"context"
	"date-booker/core/constants"
	"date-booker/core/logger"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

type Enqueuer interface {
	Enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type TaskInspector interface {
	GetTaskInfo(queue, id string) (*asynq.TaskInfo, error)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) clientOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	}
}

type Client struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	retention time.Duration
}

func NewClient(cfg RedisConfig, retention time.Duration) *Client {
	return &Client{
		client:    asynq.NewClient(cfg.clientOpt()),
		inspector: asynq.NewInspector(cfg.clientOpt()),
		retention: retention,
	}
}

// Enqueue JSON encodes payload and enqueues it on the default queue, keeping the
// completed task (and its result) for the configured retention.
func (c *Client) Enqueue(ctx context.Context, taskType string, payload any, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", taskType, err)
	}

	defaults := []asynq.Option{
		asynq.Queue(constants.QueueDefault),
		asynq.MaxRetry(3),
		asynq.Timeout(2 * time.Minute),
	}
	if c.retention > 0 {
		defaults = append(defaults, asynq.Retention(c.retention))
	}

	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(taskType, body), append(defaults, opts...)...)
	if err != nil {
		logger.Error("Queue:Enqueue:Error", "error", err, "type", taskType)
		return nil, err
	}

	logger.Info("Queue:Enqueue", "type", taskType, "task_id", info.ID, "queue", info.Queue)
	return info, nil
}

func (c *Client) GetTaskInfo(queue, id string) (*asynq.TaskInfo, error) {
	return c.inspector.GetTaskInfo(queue, id)
}

func (c *Client) Close() error {
	if err := c.inspector.Close(); err != nil {
		return err
	}
	return c.client.Close()
}

type WorkerConfig struct {
	Concurrency int
}

// Worker runs task handlers and the periodic scheduler.
type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
}

func NewWorker(redis RedisConfig, cfg WorkerConfig) *Worker {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	server := asynq.NewServer(redis.clientOpt(), asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{constants.QueueDefault: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			logger.Error("Worker:Task:Error", "error", err, "type", task.Type())
		}),
	})

	scheduler := asynq.NewScheduler(redis.clientOpt(), &asynq.SchedulerOpts{
		Location: time.UTC,
	})

	return &Worker{
		server:    server,
		scheduler: scheduler,
		mux:       asynq.NewServeMux(),
	}
}

func (w *Worker) Handle(taskType string, handler func(ctx context.Context, task *asynq.Task) error) {
	w.mux.HandleFunc(taskType, handler)
}

// Schedule registers a periodic task using cron syntax (e.g. "@daily").
func (w *Worker) Schedule(cronspec, taskType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", taskType, err)
	}
	entryID, err := w.scheduler.Register(cronspec, asynq.NewTask(taskType, body), asynq.Queue(constants.QueueDefault))
	if err != nil {
		return fmt.Errorf("schedule %s: %w", taskType, err)
	}
	logger.Info("Worker:Schedule", "type", taskType, "cron", cronspec, "entry_id", entryID)
	return nil
}

func (w *Worker) Start() error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("start worker: %w", err)
	}
	if err := w.scheduler.Start(); err != nil {
		w.server.Shutdown()
		return fmt.Errorf("start scheduler: %w", err)
	}
	logger.Info("Worker started")
	return nil
}

func (w *Worker) Shutdown() {
	w.scheduler.Shutdown()
	w.server.Shutdown()
	logger.Info("Worker stopped")
}

// DecodePayload unmarshals a JSON task payload.
func DecodePayload(task *asynq.Task, dest any) error {
	if err := json.Unmarshal(task.Payload(), dest); err != nil {
		return fmt.Errorf("decode %s payload: %w: %w", task.Type(), err, asynq.SkipRetry)
	}
	return nil
}

// WriteResult stores the task result when the task runs under a server.
func WriteResult(task *asynq.Task, result []byte) error {
	w := task.ResultWriter()
	if w == nil {
		return nil
	}
	_, err := w.Write(result)
	return err
}
