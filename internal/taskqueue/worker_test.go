package taskqueue

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:    5 * time.Millisecond,
		LockTimeout:     time.Minute,
		Concurrency:     2,
		ShutdownTimeout: time.Second,
	}
}

func TestWorkerProcessesTask(t *testing.T) {
	repo := NewMemoryRepository()
	enq, err := NewEnqueuer(repo, 3)
	require.NoError(t, err)

	var got atomic.Value
	worker, err := NewWorker(repo, testWorkerConfig(), testLogger())
	require.NoError(t, err)
	worker.Register(NewHandler("echo", func(_ context.Context, payload []byte) error {
		got.Store(string(payload))
		return nil
	}))

	taskID, err := enq.Enqueue(context.Background(), "echo", map[string]string{"hello": "world"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	require.Eventually(t, func() bool {
		task, ok := repo.TaskByID(taskID)
		return ok && task.Status == StatusCompleted
	}, 2*time.Second, 5*time.Millisecond)

	assert.JSONEq(t, `{"hello":"world"}`, got.Load().(string))

	processed, failed := worker.Stats()
	assert.Equal(t, int64(1), processed)
	assert.Equal(t, int64(0), failed)
}

func TestWorkerRetriesThenDeadLetters(t *testing.T) {
	repo := NewMemoryRepository()
	repo.RetryBackoff = 0 // retry immediately

	enq, err := NewEnqueuer(repo, 3)
	require.NoError(t, err)

	var attempts atomic.Int32
	worker, err := NewWorker(repo, testWorkerConfig(), testLogger())
	require.NoError(t, err)
	worker.Register(NewHandler("always-fails", func(context.Context, []byte) error {
		attempts.Add(1)
		return errors.New("boom")
	}))

	_, err = enq.Enqueue(context.Background(), "always-fails", struct{}{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	require.Eventually(t, func() bool {
		return repo.DLQSize() == 1
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, int32(3), attempts.Load())
}

func TestWorkerRecoversFromPanic(t *testing.T) {
	repo := NewMemoryRepository()
	repo.RetryBackoff = 0

	enq, err := NewEnqueuer(repo, 1)
	require.NoError(t, err)

	worker, err := NewWorker(repo, testWorkerConfig(), testLogger())
	require.NoError(t, err)
	worker.Register(NewHandler("panics", func(context.Context, []byte) error {
		panic("unexpected payload shape")
	}))

	_, err = enq.Enqueue(context.Background(), "panics", struct{}{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	require.Eventually(t, func() bool {
		return repo.DLQSize() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWorkerDeadLettersUnknownTask(t *testing.T) {
	repo := NewMemoryRepository()

	enq, err := NewEnqueuer(repo, 3)
	require.NoError(t, err)

	worker, err := NewWorker(repo, testWorkerConfig(), testLogger())
	require.NoError(t, err)
	worker.Register(NewHandler("known", func(context.Context, []byte) error { return nil }))

	_, err = enq.Enqueue(context.Background(), "unknown", struct{}{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = worker.Run(ctx) }()

	require.Eventually(t, func() bool {
		return repo.DLQSize() == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestWorkerRequiresHandlers(t *testing.T) {
	worker, err := NewWorker(NewMemoryRepository(), testWorkerConfig(), testLogger())
	require.NoError(t, err)

	err = worker.Run(context.Background())
	require.Error(t, err)
}

func TestMemoryRepositoryClaimOrderAndBackoff(t *testing.T) {
	repo := NewMemoryRepository()
	enq, err := NewEnqueuer(repo, 3)
	require.NoError(t, err)

	ctx := context.Background()
	firstID, err := enq.Enqueue(ctx, "t", 1)
	require.NoError(t, err)
	secondID, err := enq.Enqueue(ctx, "t", 2)
	require.NoError(t, err)

	worker := uuid.New()

	claimed, err := repo.ClaimTask(ctx, worker, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, firstID, claimed.ID)

	claimed, err = repo.ClaimTask(ctx, worker, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, secondID, claimed.ID)

	// Nothing claimable while both are locked.
	_, err = repo.ClaimTask(ctx, worker, time.Minute)
	assert.ErrorIs(t, err, ErrNoTaskToClaim)

	// A failed task is rescheduled into the future and not claimable yet.
	require.NoError(t, repo.FailTask(ctx, firstID, "boom"))
	task, ok := repo.TaskByID(firstID)
	require.True(t, ok)
	assert.Equal(t, StatusPending, task.Status)
	assert.Equal(t, 1, task.RetryCount)
	assert.True(t, task.ScheduledAt.After(time.Now()))
}
