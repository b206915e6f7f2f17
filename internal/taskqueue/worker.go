package taskqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"parcel-delivery-service/internal/platform/metrics"

	"github.com/google/uuid"
)

// Handler processes one kind of task.
type Handler interface {
	// Name routes tasks to this handler.
	Name() string
	// Handle processes the raw payload. A non-nil error makes the task
	// eligible for retry.
	Handle(ctx context.Context, payload []byte) error
}

// NewHandler wraps a plain function as a Handler.
func NewHandler(name string, fn func(ctx context.Context, payload []byte) error) Handler {
	return &funcHandler{name: name, fn: fn}
}

type funcHandler struct {
	name string
	fn   func(ctx context.Context, payload []byte) error
}

func (h *funcHandler) Name() string { return h.name }

func (h *funcHandler) Handle(ctx context.Context, payload []byte) error { return h.fn(ctx, payload) }

// WorkerRepository is the storage boundary for claiming and acknowledging
// tasks. ClaimTask must be atomic across concurrent workers.
type WorkerRepository interface {
	ClaimTask(ctx context.Context, workerID uuid.UUID, lockDuration time.Duration) (*Task, error)
	CompleteTask(ctx context.Context, taskID uuid.UUID) error
	FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) error
	MoveToDLQ(ctx context.Context, taskID uuid.UUID) error
}

// WorkerConfig holds worker pool tuning.
type WorkerConfig struct {
	PollInterval    time.Duration
	LockTimeout     time.Duration
	Concurrency     int
	ShutdownTimeout time.Duration
}

func (c *WorkerConfig) withDefaults() {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = 5 * time.Minute
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 1
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
}

// Worker polls the queue and runs registered handlers. Tasks execute on an
// independent context so a shutdown or a disconnected HTTP caller never
// cancels work already claimed; they run to completion or exhaust retries.
type Worker struct {
	repo     WorkerRepository
	handlers map[string]Handler
	workerID uuid.UUID
	cfg      WorkerConfig
	log      *slog.Logger

	sem chan struct{}
	wg  sync.WaitGroup

	processed atomic.Int64
	failed    atomic.Int64
}

// NewWorker builds a Worker; handlers are registered afterwards via Register.
func NewWorker(repo WorkerRepository, cfg WorkerConfig, log *slog.Logger) (*Worker, error) {
	if repo == nil {
		return nil, errors.New("taskqueue: worker repository is nil")
	}
	cfg.withDefaults()

	return &Worker{
		repo:     repo,
		handlers: make(map[string]Handler),
		workerID: uuid.New(),
		cfg:      cfg,
		log:      log,
		sem:      make(chan struct{}, cfg.Concurrency),
	}, nil
}

// Register adds a handler. Call before Run; registration is not synchronized.
func (w *Worker) Register(h Handler) {
	w.handlers[h.Name()] = h
}

// Stats returns lifetime counters for observability.
func (w *Worker) Stats() (processed, failed int64) {
	return w.processed.Load(), w.failed.Load()
}

// Run polls until ctx is cancelled, then waits up to ShutdownTimeout for
// in-flight tasks to finish.
func (w *Worker) Run(ctx context.Context) error {
	if len(w.handlers) == 0 {
		return errors.New("taskqueue: worker has no registered handlers")
	}

	w.log.Info("worker started",
		slog.String("worker_id", w.workerID.String()),
		slog.Int("concurrency", w.cfg.Concurrency))

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.drain()
		case <-ticker.C:
			select {
			case w.sem <- struct{}{}:
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-w.sem }()
					w.pullAndProcess(ctx)
				}()
			default:
				// All slots busy; claim again on the next tick.
			}
		}
	}
}

func (w *Worker) drain() error {
	w.log.Info("worker stopping, waiting for active tasks",
		slog.String("worker_id", w.workerID.String()))

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.log.Info("worker stopped", slog.String("worker_id", w.workerID.String()))
		return nil
	case <-time.After(w.cfg.ShutdownTimeout):
		return fmt.Errorf("worker shutdown timeout exceeded after %s", w.cfg.ShutdownTimeout)
	}
}

func (w *Worker) pullAndProcess(ctx context.Context) {
	task, err := w.repo.ClaimTask(ctx, w.workerID, w.cfg.LockTimeout)
	if err != nil {
		if !errors.Is(err, ErrNoTaskToClaim) && !errors.Is(err, context.Canceled) {
			w.log.Error("claim task failed",
				slog.String("worker_id", w.workerID.String()),
				slog.String("error", err.Error()))
		}
		return
	}

	w.processTask(task)
}

func (w *Worker) processTask(task *Task) {
	start := time.Now()

	// Independent deadline: the queue lock, not the caller, bounds the task.
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.LockTimeout)
	defer cancel()

	// A panicking handler fails the task instead of killing the process.
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("handler panicked",
				slog.String("task_id", task.ID.String()),
				slog.String("task", task.Name),
				slog.Any("panic", r))
			w.handleFailure(ctx, task, fmt.Errorf("panic in handler: %v", r))
		}
	}()

	handler, ok := w.handlers[task.Name]
	if !ok {
		w.failed.Add(1)
		metrics.TasksFailed.Inc()
		w.log.Error("no handler for task",
			slog.String("task_id", task.ID.String()),
			slog.String("task", task.Name))
		if err := w.repo.FailTask(ctx, task.ID, ErrHandlerNotFound.Error()); err != nil {
			w.log.Error("fail task", slog.String("task_id", task.ID.String()), slog.String("error", err.Error()))
			return
		}
		if err := w.repo.MoveToDLQ(ctx, task.ID); err != nil {
			w.log.Error("move task to dlq", slog.String("task_id", task.ID.String()), slog.String("error", err.Error()))
		}
		return
	}

	if err := handler.Handle(ctx, task.Payload); err != nil {
		w.log.Error("task failed",
			slog.String("task_id", task.ID.String()),
			slog.String("task", task.Name),
			slog.Int("retry_count", task.RetryCount),
			slog.Int("max_retries", task.MaxRetries),
			slog.Duration("dur", time.Since(start)),
			slog.String("error", err.Error()))
		w.handleFailure(ctx, task, err)
		return
	}

	// Acknowledge only after the handler's effects have committed; a crash
	// before this point causes a safe redelivery.
	if err := w.repo.CompleteTask(ctx, task.ID); err != nil {
		w.log.Error("complete task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	w.processed.Add(1)
	metrics.TasksProcessed.Inc()
	w.log.Info("task completed",
		slog.String("task_id", task.ID.String()),
		slog.String("task", task.Name),
		slog.Duration("dur", time.Since(start)))
}

func (w *Worker) handleFailure(ctx context.Context, task *Task, execErr error) {
	w.failed.Add(1)
	metrics.TasksFailed.Inc()

	if err := w.repo.FailTask(ctx, task.ID, execErr.Error()); err != nil {
		w.log.Error("fail task",
			slog.String("task_id", task.ID.String()),
			slog.String("error", err.Error()))
		return
	}

	if task.RetryCount+1 >= task.MaxRetries {
		if err := w.repo.MoveToDLQ(ctx, task.ID); err != nil {
			w.log.Error("move task to dlq",
				slog.String("task_id", task.ID.String()),
				slog.String("error", err.Error()))
			return
		}
		w.log.Warn("task retries exhausted, moved to dead letter queue",
			slog.String("task_id", task.ID.String()),
			slog.String("task", task.Name))
	}
}
