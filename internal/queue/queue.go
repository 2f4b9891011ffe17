package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/logging"
)

const (
	TypeSidebarRebuild = "sidebar:rebuild"

	QueueCritical = "critical"
	QueueDefault  = "default"
)

type SidebarRebuildPayload struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requestedAt"`
}

// SidebarRebuilder recomputes the stored sidebar projection.
type SidebarRebuilder interface {
	Rebuild(ctx context.Context) error
}

func redisOpt(cfg *config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

type TaskQueue struct {
	client *asynq.Client
}

func NewQueue(cfg *config.RedisConfig) (*TaskQueue, error) {
	client := asynq.NewClient(redisOpt(cfg))

	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis queue: %w", err)
	}

	logging.Info("Connected to Redis task queue")

	return &TaskQueue{client: client}, nil
}

func (q *TaskQueue) Enqueue(ctx context.Context, taskType string, data any, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return q.client.EnqueueContext(ctx, asynq.NewTask(taskType, payload), opts...)
}

// RolesChanged schedules a sidebar rebuild after a role write.
func (q *TaskQueue) RolesChanged(ctx context.Context) error {
	info, err := q.Enqueue(ctx, TypeSidebarRebuild, SidebarRebuildPayload{
		Reason:      "roles changed",
		RequestedAt: time.Now().UTC(),
	}, asynq.Queue(QueueCritical), asynq.MaxRetry(5), asynq.Timeout(time.Minute))
	if err != nil {
		return fmt.Errorf("enqueue sidebar rebuild: %w", err)
	}
	logging.Debug("sidebar rebuild enqueued", "task_id", info.ID)
	return nil
}

func (q *TaskQueue) Close() error {
	return q.client.Close()
}

type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	rebuilder SidebarRebuilder
}

// NewWorker builds the task server. A non-empty schedule also registers a
// periodic rebuild so the projection heals after missed notifications.
func NewWorker(cfg *config.RedisConfig, rebuilder SidebarRebuilder, schedule string) (*Worker, error) {
	server := asynq.NewServer(
		redisOpt(cfg),
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				QueueCritical: 6,
				QueueDefault:  3,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logging.Error("process task failed", "type", task.Type(), "payload", string(task.Payload()), "error", err)
			}),
		},
	)

	w := &Worker{server: server, rebuilder: rebuilder}

	if schedule != "" {
		payload, err := json.Marshal(SidebarRebuildPayload{Reason: "scheduled"})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		w.scheduler = asynq.NewScheduler(redisOpt(cfg), &asynq.SchedulerOpts{Location: time.UTC})
		if _, err := w.scheduler.Register(schedule, asynq.NewTask(TypeSidebarRebuild, payload), asynq.Queue(QueueDefault)); err != nil {
			return nil, fmt.Errorf("register rebuild schedule %q: %w", schedule, err)
		}
	}

	return w, nil
}

func (w *Worker) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeSidebarRebuild, w.HandleSidebarRebuild)
	return mux
}

func (w *Worker) Start() error {
	if w.scheduler != nil {
		if err := w.scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}
	return w.server.Start(w.Mux())
}

func (w *Worker) Close() {
	if w.scheduler != nil {
		w.scheduler.Shutdown()
	}
	if w.server != nil {
		w.server.Shutdown()
	}
}

func (w *Worker) HandleSidebarRebuild(ctx context.Context, t *asynq.Task) error {
	var p SidebarRebuildPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	logging.Info("Rebuilding sidebar access", "reason", p.Reason)
	if err := w.rebuilder.Rebuild(ctx); err != nil {
		return fmt.Errorf("sidebar rebuild failed: %w", err)
	}
	return nil
}
