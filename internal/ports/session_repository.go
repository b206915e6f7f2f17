package ports

import (
	"context"
	"time"

	"parcel-delivery-service/internal/domain"

	"github.com/google/uuid"
)

// Port: a boundary for the session rows gating every package operation.
type SessionRepository interface {
	// Upsert creates the session if absent and stamps last_activity = now
	// either way, returning the definite row. Absence is the normal
	// new-user case, never an error.
	Upsert(ctx context.Context, id uuid.UUID, now time.Time) (*domain.Session, error)
}
