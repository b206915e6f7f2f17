package ports

import (
	"context"

	"parcel-delivery-service/internal/domain"

	"github.com/google/uuid"
)

// ListFilter narrows a session-scoped package listing. Filters are
// conjunctive; nil pointers mean "no restriction".
type ListFilter struct {
	Page            int // 1-indexed
	Size            int // 1..100
	TypeID          *int
	HasShippingCost *bool
}

// Offset returns the row offset implied by Page and Size.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Size
}

// Port: a boundary for storing and querying Package entities and their
// immutable reference types.
type PackageRepository interface {
	// Persist a new package. The caller populates the identifier and the
	// pending shipping cost.
	Create(ctx context.Context, p *domain.Package) error

	// List a session's packages in creation order, returning the filtered
	// total before pagination.
	ListBySession(ctx context.Context, sessionID uuid.UUID, f ListFilter) ([]*domain.Package, int, error)

	// Fetch a package scoped to its owning session. Returns
	// domain.ErrNotFound both for a nonexistent id and for a package owned
	// by another session.
	GetByIDAndSession(ctx context.Context, id, sessionID uuid.UUID) (*domain.Package, error)

	// Fetch a package regardless of session. Reserved for the pricing
	// worker, which re-reads authoritative weight/price before computing.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Package, error)

	// Overwrite the shipping cost. Idempotent; a missing package is a
	// no-op, not an error.
	UpdateShippingCost(ctx context.Context, id uuid.UUID, cost string) error

	// List packages still awaiting a computed cost, for operational
	// re-drives.
	ListUnpriced(ctx context.Context) ([]*domain.Package, error)

	// Reference data.
	ListTypes(ctx context.Context) ([]domain.PackageType, error)
	GetTypeByID(ctx context.Context, id int) (*domain.PackageType, error)
}
