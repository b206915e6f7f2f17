package domain

import (
	"time"

	"github.com/google/uuid"
)

// Session is the anonymous browser identity that owns packages. It is
// created on the first request carrying an unknown cookie and touched on
// every gated access; this core never deletes sessions.
type Session struct {
	ID           uuid.UUID
	CreatedAt    time.Time
	LastActivity time.Time
}
