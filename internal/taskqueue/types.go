package taskqueue

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status tracks a unit of work through its lifecycle:
// pending -> processing -> {completed, failed}.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// SchemaVersion is stamped into every payload so workers never have to
// guess at the shape of what they dequeue.
const SchemaVersion = 1

// Task is one queued unit of work. Delivery is at-least-once: a task is
// acknowledged (completed) only after its handler's effects have committed,
// so handlers must be idempotent.
type Task struct {
	ID          uuid.UUID
	Name        string
	Payload     []byte
	Status      Status
	RetryCount  int
	MaxRetries  int
	ScheduledAt time.Time
	LockedUntil *time.Time
	LockedBy    *uuid.UUID
	ProcessedAt *time.Time
	Error       *string
	CreatedAt   time.Time
}

var (
	// ErrNoTaskToClaim signals an empty queue; workers treat it as a
	// normal idle tick.
	ErrNoTaskToClaim = errors.New("no task to claim")

	// ErrHandlerNotFound signals a dequeued task with no registered
	// handler. Such tasks go straight to the dead letter queue because
	// retrying cannot help.
	ErrHandlerNotFound = errors.New("no handler registered for task")
)
