package ports

import (
	"context"

	"parcel-delivery-service/internal/domain"

	"github.com/google/uuid"
)

// Port: hands a freshly created package to the asynchronous pricing
// pipeline. An enqueue failure must not roll back the package; the caller
// surfaces it as "not yet computed" and relies on an out-of-band re-drive.
type CostDispatcher interface {
	DispatchCostComputation(ctx context.Context, p *domain.Package) (taskID uuid.UUID, err error)
}
