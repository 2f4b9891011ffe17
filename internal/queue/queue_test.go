package queue_test

import (
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/queue"
	"github.com/janseva/constituency-admin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testQueue *testutil.TestQueue

func TestMain(m *testing.M) {
	code := m.Run()
	if testQueue != nil {
		testQueue.Close()
	}
	os.Exit(code)
}

func getQueue(t *testing.T) *testutil.TestQueue {
	if testing.Short() {
		t.Skip("skipping Redis-backed queue test in short mode")
	}
	if testQueue == nil {
		testQueue = testutil.NewTestQueue(t)
	}
	testQueue.Cleanup(t)
	return testQueue
}

func newWorker(t *testing.T, rebuilder queue.SidebarRebuilder) *queue.Worker {
	t.Helper()
	w, err := queue.NewWorker(&config.RedisConfig{Addr: "localhost:6379"}, rebuilder, "")
	require.NoError(t, err)
	return w
}

func TestHandleSidebarRebuild(t *testing.T) {
	rebuilder := testutil.NewMockSidebarRebuilder(t)
	rebuilder.ExpectRebuild(nil).Once()

	payload, err := json.Marshal(queue.SidebarRebuildPayload{Reason: "roles changed"})
	require.NoError(t, err)

	err = newWorker(t, rebuilder).HandleSidebarRebuild(t.Context(), asynq.NewTask(queue.TypeSidebarRebuild, payload))
	require.NoError(t, err)
	rebuilder.AssertExpectations(t)
}

func TestHandleSidebarRebuild_Failure(t *testing.T) {
	rebuilder := testutil.NewMockSidebarRebuilder(t)
	boom := errors.New("mongo unavailable")
	rebuilder.ExpectRebuild(boom).Once()

	err := newWorker(t, rebuilder).HandleSidebarRebuild(t.Context(), asynq.NewTask(queue.TypeSidebarRebuild, []byte(`{}`)))
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, asynq.SkipRetry, "store failures should be retried")
}

func TestHandleSidebarRebuild_BadPayload(t *testing.T) {
	rebuilder := testutil.NewMockSidebarRebuilder(t)

	err := newWorker(t, rebuilder).HandleSidebarRebuild(t.Context(), asynq.NewTask(queue.TypeSidebarRebuild, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)
	rebuilder.AssertNotCalled(t, "Rebuild", mock.Anything)
}

func TestNewWorker_InvalidSchedule(t *testing.T) {
	_, err := queue.NewWorker(&config.RedisConfig{Addr: "localhost:6379"}, testutil.NewMockSidebarRebuilder(t), "not a cron spec")
	assert.Error(t, err)
}

func TestTaskQueue_RolesChanged(t *testing.T) {
	tq := getQueue(t)

	require.NoError(t, tq.Queue.RolesChanged(t.Context()))

	tasks, err := tq.Inspector.ListPendingTasks(queue.QueueCritical)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 5, tasks[0].MaxRetry)

	pending := tq.PendingRebuilds(t)
	require.Len(t, pending, 1)
	assert.Equal(t, "roles changed", pending[0].Reason)
	assert.WithinDuration(t, time.Now(), pending[0].RequestedAt, time.Minute)
}

func TestWorker_ProcessesRebuild(t *testing.T) {
	tq := getQueue(t)

	done := make(chan struct{})
	rebuilder := testutil.NewMockSidebarRebuilder(t)
	rebuilder.ExpectRebuild(nil).Once().Run(func(mock.Arguments) { close(done) })

	w, err := queue.NewWorker(&tq.Config, rebuilder, "")
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	require.NoError(t, tq.Queue.RolesChanged(t.Context()))

	select {
	case <-done:
	case <-time.After(15 * time.Second):
		t.Fatal("rebuild task was not processed")
	}
	rebuilder.AssertExpectations(t)
}
