package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parcel-delivery-service/internal/domain"
	"parcel-delivery-service/internal/platform/obs"
	"parcel-delivery-service/internal/ports"

	"github.com/google/uuid"
)

// Postgres-backed implementation of the SessionRepository port.
type PostgresSessionRepository struct{ DB *sql.DB }

func NewPostgresSessionRepository(db *sql.DB) *PostgresSessionRepository {
	return &PostgresSessionRepository{DB: db}
}

var _ ports.SessionRepository = (*PostgresSessionRepository)(nil)

// Upsert creates-or-touches the session in a single statement, so two
// concurrent first requests with the same cookie cannot race into a
// duplicate-key failure.
func (r *PostgresSessionRepository) Upsert(ctx context.Context, id uuid.UUID, now time.Time) (_ *domain.Session, err error) {
	defer obs.Time(ctx, "repo.UpsertSession")(&err)

	if r.DB == nil {
		return nil, errors.New("session repository: DB is nil")
	}

	query := `
	INSERT INTO sessions (id, created_at, last_activity)
	VALUES ($1, $2, $2)
	ON CONFLICT (id) DO UPDATE
	SET last_activity = GREATEST(sessions.last_activity, EXCLUDED.last_activity)
	RETURNING id, created_at, last_activity;
	`

	var s domain.Session
	err = r.DB.QueryRowContext(ctx, query, id, now).Scan(&s.ID, &s.CreatedAt, &s.LastActivity)
	if err != nil {
		return nil, fmt.Errorf("upsert session: %w", err)
	}

	return &s, nil
}
