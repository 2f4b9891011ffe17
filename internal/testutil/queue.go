package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/queue"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
)

type TestQueue struct {
	Queue     *queue.TaskQueue
	Config    config.RedisConfig
	container *redis.RedisContainer
	Redis     *rdb.Client
	Inspector *asynq.Inspector // (this is for inspecting the queue in tests)
}

func NewTestQueue(t *testing.T) *TestQueue {
	ctx := context.Background()

	redisContainer, err := redis.Run(ctx,
		"redis:7-alpine",
		testcontainers.WithReuseByName("janseva-test-redis"),
		testcontainers.WithWaitStrategy(
			wait.ForAll(
				wait.ForLog("Ready to accept connections").
					WithStartupTimeout(30*time.Second),
				wait.ForListeningPort("6379/tcp").
					WithStartupTimeout(30*time.Second),
			),
		),
	)
	require.NoError(t, err, "Failed to start Redis container")

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err, "Failed to get redis connection string")

	appConfig := config.RedisConfig{Addr: endpoint}

	taskQueue, err := queue.NewQueue(&appConfig)
	require.NoError(t, err, "Failed to create application queue wrapper")

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: endpoint})

	redisClient := rdb.NewClient(&rdb.Options{
		Addr: endpoint,
	})

	return &TestQueue{
		Queue:     taskQueue,
		Config:    appConfig,
		container: redisContainer,
		Redis:     redisClient,
		Inspector: inspector,
	}
}

// PendingRebuilds decodes the sidebar rebuild tasks waiting on the critical
// queue, oldest first.
func (tQ *TestQueue) PendingRebuilds(t *testing.T) []queue.SidebarRebuildPayload {
	t.Helper()
	tasks, err := tQ.Inspector.ListPendingTasks(queue.QueueCritical)
	require.NoError(t, err)

	payloads := make([]queue.SidebarRebuildPayload, 0, len(tasks))
	for _, task := range tasks {
		require.Equal(t, queue.TypeSidebarRebuild, task.Type)
		var p queue.SidebarRebuildPayload
		require.NoError(t, json.Unmarshal(task.Payload, &p))
		payloads = append(payloads, p)
	}
	return payloads
}

func (tQ *TestQueue) Cleanup(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := tQ.Redis.FlushDB(ctx).Err(); err != nil {
		t.Logf("WARNING: failed to flush Redis between tests: %v", err)
	}
}

func (tq *TestQueue) Close() {
	if tq.Queue != nil {
		tq.Queue.Close()
	}
	if tq.Inspector != nil {
		tq.Inspector.Close()
	}
	if tq.Redis != nil {
		tq.Redis.Close()
	}
}
