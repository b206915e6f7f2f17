package services

import (
	"context"
	"fmt"
	"time"

	"parcel-delivery-service/internal/domain"
	"parcel-delivery-service/internal/ports"

	"github.com/google/uuid"
)

// SessionService gates every package operation: it guarantees the session
// row exists and stamps its activity.
type SessionService struct {
	repo ports.SessionRepository
}

func NewSessionService(repo ports.SessionRepository) *SessionService {
	return &SessionService{repo: repo}
}

// Ensure creates the session when absent and bumps last_activity either
// way. An unknown identifier is the normal new-user case; only a malformed
// one is rejected, with domain.ErrInvalidSessionID.
func (s *SessionService) Ensure(ctx context.Context, rawID string) (*domain.Session, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidSessionID, rawID)
	}

	sess, err := s.repo.Upsert(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("ensure session: %w", err)
	}

	return sess, nil
}
