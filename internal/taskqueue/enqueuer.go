package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnqueuerRepository persists new tasks.
type EnqueuerRepository interface {
	CreateTask(ctx context.Context, task *Task) error
}

// Enqueuer writes units of work into the queue.
type Enqueuer struct {
	repo       EnqueuerRepository
	maxRetries int
}

// NewEnqueuer returns an Enqueuer that stamps every task with the given
// retry budget.
func NewEnqueuer(repo EnqueuerRepository, maxRetries int) (*Enqueuer, error) {
	if repo == nil {
		return nil, errors.New("taskqueue: enqueuer repository is nil")
	}
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Enqueuer{repo: repo, maxRetries: maxRetries}, nil
}

// Enqueue marshals payload and stores a pending task ready for immediate
// claim. It returns the generated task identifier.
func (e *Enqueuer) Enqueue(ctx context.Context, name string, payload any) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, errors.New("enqueue: task name must not be empty")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("enqueue: marshal payload for %q: %w", name, err)
	}

	now := time.Now()
	task := &Task{
		ID:          uuid.New(),
		Name:        name,
		Payload:     body,
		Status:      StatusPending,
		RetryCount:  0,
		MaxRetries:  e.maxRetries,
		ScheduledAt: now,
		CreatedAt:   now,
	}

	if err := e.repo.CreateTask(ctx, task); err != nil {
		return uuid.Nil, fmt.Errorf("enqueue: create task %q: %w", name, err)
	}

	return task.ID, nil
}
