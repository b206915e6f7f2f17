package taskqueue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository is an in-process queue backend. It mirrors the Postgres
// repository's claim and retry semantics and backs worker tests and local
// development without a database.
type MemoryRepository struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*Task
	dlq   map[uuid.UUID]*Task

	// RetryBackoff scales the linear retry delay (backoff = RetryBackoff *
	// retry_count). Tests may set it to zero for immediate redelivery.
	RetryBackoff time.Duration
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tasks:        make(map[uuid.UUID]*Task),
		dlq:          make(map[uuid.UUID]*Task),
		RetryBackoff: 30 * time.Second,
	}
}

func (m *MemoryRepository) CreateTask(_ context.Context, task *Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

// ClaimTask picks the oldest due pending task. Expired processing locks are
// reclaimed the same way, which is what makes redelivery possible after a
// worker crash.
func (m *MemoryRepository) ClaimTask(_ context.Context, workerID uuid.UUID, lockDuration time.Duration) (*Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var candidate *Task
	for _, t := range m.tasks {
		claimable := t.Status == StatusPending ||
			(t.Status == StatusProcessing && t.LockedUntil != nil && t.LockedUntil.Before(now))
		if !claimable || t.ScheduledAt.After(now) {
			continue
		}
		if candidate == nil || t.ScheduledAt.Before(candidate.ScheduledAt) {
			candidate = t
		}
	}

	if candidate == nil {
		return nil, ErrNoTaskToClaim
	}

	until := now.Add(lockDuration)
	candidate.Status = StatusProcessing
	candidate.LockedUntil = &until
	candidate.LockedBy = &workerID

	cp := *candidate
	return &cp, nil
}

func (m *MemoryRepository) CompleteTask(_ context.Context, taskID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return nil
	}

	now := time.Now()
	t.Status = StatusCompleted
	t.ProcessedAt = &now
	t.LockedUntil = nil
	t.LockedBy = nil
	return nil
}

func (m *MemoryRepository) FailTask(_ context.Context, taskID uuid.UUID, errorMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return nil
	}

	t.RetryCount++
	t.Error = &errorMsg
	t.LockedUntil = nil
	t.LockedBy = nil

	if t.RetryCount >= t.MaxRetries {
		t.Status = StatusFailed
		return nil
	}

	// Linear backoff spreads retries out without the bookkeeping an
	// exponential schedule needs.
	t.Status = StatusPending
	t.ScheduledAt = time.Now().Add(time.Duration(t.RetryCount) * m.RetryBackoff)
	return nil
}

func (m *MemoryRepository) MoveToDLQ(_ context.Context, taskID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return nil
	}

	delete(m.tasks, taskID)
	m.dlq[taskID] = t
	return nil
}

// TaskByID returns a snapshot of a live (non-DLQ) task, for tests.
func (m *MemoryRepository) TaskByID(taskID uuid.UUID) (*Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tasks[taskID]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

// DLQSize returns the number of dead-lettered tasks.
func (m *MemoryRepository) DLQSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.dlq)
}
