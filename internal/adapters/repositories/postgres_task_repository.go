package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parcel-delivery-service/internal/platform/obs"
	"parcel-delivery-service/internal/taskqueue"

	"github.com/google/uuid"
)

// Postgres-backed queue storage. Claiming uses FOR UPDATE SKIP LOCKED so
// concurrent workers never hand out the same task twice, and expired
// processing locks become claimable again, which is what makes delivery
// at-least-once across worker crashes.
type PostgresTaskRepository struct{ DB *sql.DB }

func NewPostgresTaskRepository(db *sql.DB) *PostgresTaskRepository {
	return &PostgresTaskRepository{DB: db}
}

var (
	_ taskqueue.EnqueuerRepository = (*PostgresTaskRepository)(nil)
	_ taskqueue.WorkerRepository   = (*PostgresTaskRepository)(nil)
)

func (r *PostgresTaskRepository) CreateTask(ctx context.Context, task *taskqueue.Task) (err error) {
	defer obs.Time(ctx, "repo.CreateTask")(&err)

	if r.DB == nil {
		return errors.New("task repository: DB is nil")
	}

	query := `
	INSERT INTO tasks (id, name, payload, status, retry_count, max_retries, scheduled_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = r.DB.ExecContext(ctx, query,
		task.ID, task.Name, task.Payload, task.Status,
		task.RetryCount, task.MaxRetries, task.ScheduledAt, task.CreatedAt)
	if err != nil {
		return fmt.Errorf("create task: insert row: %w", err)
	}

	return nil
}

func (r *PostgresTaskRepository) ClaimTask(ctx context.Context, workerID uuid.UUID, lockDuration time.Duration) (_ *taskqueue.Task, err error) {
	defer obs.Time(ctx, "repo.ClaimTask")(&err)

	if r.DB == nil {
		return nil, errors.New("task repository: DB is nil")
	}

	query := `
	UPDATE tasks
	SET status = $1, locked_until = now() + $2 * INTERVAL '1 second', locked_by = $3
	WHERE id = (
		SELECT id
		FROM tasks
		WHERE (status = $4 OR (status = $1 AND locked_until < now()))
			AND scheduled_at <= now()
		ORDER BY scheduled_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	)
	RETURNING id, name, payload, status, retry_count, max_retries,
		scheduled_at, locked_until, locked_by, processed_at, error, created_at;
	`

	var t taskqueue.Task
	err = r.DB.QueryRowContext(ctx, query,
		taskqueue.StatusProcessing, int(lockDuration.Seconds()), workerID, taskqueue.StatusPending,
	).Scan(
		&t.ID, &t.Name, &t.Payload, &t.Status, &t.RetryCount, &t.MaxRetries,
		&t.ScheduledAt, &t.LockedUntil, &t.LockedBy, &t.ProcessedAt, &t.Error, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, taskqueue.ErrNoTaskToClaim
		}
		return nil, fmt.Errorf("claim task: %w", err)
	}

	return &t, nil
}

func (r *PostgresTaskRepository) CompleteTask(ctx context.Context, taskID uuid.UUID) (err error) {
	defer obs.Time(ctx, "repo.CompleteTask")(&err)

	if r.DB == nil {
		return errors.New("task repository: DB is nil")
	}

	query := `
	UPDATE tasks
	SET status = $2, processed_at = now(), locked_until = NULL, locked_by = NULL
	WHERE id = $1;
	`
	if _, err = r.DB.ExecContext(ctx, query, taskID, taskqueue.StatusCompleted); err != nil {
		return fmt.Errorf("complete task: %w", err)
	}

	return nil
}

// FailTask records the error and either reschedules with a linear backoff
// (30s per attempt already made) or parks the task as failed once the retry
// budget is spent.
func (r *PostgresTaskRepository) FailTask(ctx context.Context, taskID uuid.UUID, errorMsg string) (err error) {
	defer obs.Time(ctx, "repo.FailTask")(&err)

	if r.DB == nil {
		return errors.New("task repository: DB is nil")
	}

	query := `
	UPDATE tasks
	SET retry_count = retry_count + 1,
		error = $2,
		locked_until = NULL,
		locked_by = NULL,
		status = CASE WHEN retry_count + 1 >= max_retries THEN $3 ELSE $4 END,
		scheduled_at = CASE WHEN retry_count + 1 >= max_retries
			THEN scheduled_at
			ELSE now() + (retry_count + 1) * INTERVAL '30 seconds' END
	WHERE id = $1;
	`
	_, err = r.DB.ExecContext(ctx, query, taskID, errorMsg,
		taskqueue.StatusFailed, taskqueue.StatusPending)
	if err != nil {
		return fmt.Errorf("fail task: %w", err)
	}

	return nil
}

func (r *PostgresTaskRepository) MoveToDLQ(ctx context.Context, taskID uuid.UUID) (err error) {
	defer obs.Time(ctx, "repo.MoveTaskToDLQ")(&err)

	if r.DB == nil {
		return errors.New("task repository: DB is nil")
	}

	query := `
	WITH moved AS (
		DELETE FROM tasks WHERE id = $1
		RETURNING id, name, payload, retry_count, error, created_at
	)
	INSERT INTO tasks_dlq (id, name, payload, retry_count, error, failed_at, created_at)
	SELECT id, name, payload, retry_count, error, now(), created_at
	FROM moved;
	`
	if _, err = r.DB.ExecContext(ctx, query, taskID); err != nil {
		return fmt.Errorf("move task to dlq: %w", err)
	}

	return nil
}
