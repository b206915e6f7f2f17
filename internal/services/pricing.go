package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"parcel-delivery-service/internal/domain"
	"parcel-delivery-service/internal/ports"
	"parcel-delivery-service/internal/taskqueue"

	"github.com/google/uuid"
)

// CostTaskName routes shipping-cost units of work to the pricing handler.
const CostTaskName = "package.compute_shipping_cost"

// CostTaskPayload is the fixed-schema unit of work. Weight and price ride
// along for operator visibility, but the worker re-reads the row before
// computing so a concurrent update can never price stale data.
type CostTaskPayload struct {
	SchemaVersion int       `json:"schema_version"`
	PackageID     uuid.UUID `json:"package_id"`
	Weight        float64   `json:"weight"`
	Price         float64   `json:"price"`
}

// CostDispatcher enqueues pricing work right after package creation.
type CostDispatcher struct {
	enq *taskqueue.Enqueuer
}

func NewCostDispatcher(enq *taskqueue.Enqueuer) *CostDispatcher {
	return &CostDispatcher{enq: enq}
}

var _ ports.CostDispatcher = (*CostDispatcher)(nil)

func (d *CostDispatcher) DispatchCostComputation(ctx context.Context, p *domain.Package) (uuid.UUID, error) {
	payload := CostTaskPayload{
		SchemaVersion: taskqueue.SchemaVersion,
		PackageID:     p.ID,
		Weight:        p.Weight,
		Price:         p.Price,
	}

	taskID, err := d.enq.Enqueue(ctx, CostTaskName, payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("dispatch cost computation for package %s: %w", p.ID, err)
	}

	return taskID, nil
}

// PricingService is the worker side of the pipeline: resolve the rate,
// compute the cost, persist it. Each step's failure semantics follow the
// at-least-once contract (idempotent update, missing row is success).
type PricingService struct {
	packages ports.PackageRepository
	rates    *RateService
	log      *slog.Logger
}

func NewPricingService(packages ports.PackageRepository, rates *RateService, log *slog.Logger) *PricingService {
	return &PricingService{packages: packages, rates: rates, log: log}
}

// Handler adapts the service to the queue worker.
func (s *PricingService) Handler() taskqueue.Handler {
	return taskqueue.NewHandler(CostTaskName, s.handle)
}

func (s *PricingService) handle(ctx context.Context, raw []byte) error {
	var payload CostTaskPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("price package: decode payload: %w", err)
	}
	if payload.SchemaVersion != taskqueue.SchemaVersion {
		return fmt.Errorf("price package: unsupported payload schema version %d", payload.SchemaVersion)
	}

	return s.PricePackage(ctx, payload.PackageID)
}

// PricePackage computes and stores the shipping cost for one package. A
// package deleted out-of-band is success, not failure; a rate-source
// failure is returned so the queue retries with backoff.
func (s *PricingService) PricePackage(ctx context.Context, packageID uuid.UUID) error {
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("package vanished before pricing, skipping",
				slog.String("package_id", packageID.String()))
			return nil
		}
		return fmt.Errorf("price package %s: read row: %w", packageID, err)
	}

	rate, err := s.rates.CurrentRate(ctx)
	if err != nil {
		return fmt.Errorf("price package %s: %w", packageID, err)
	}

	cost := domain.ShippingCost(pkg.Weight, pkg.Price, rate)

	if err := s.packages.UpdateShippingCost(ctx, pkg.ID, cost); err != nil {
		return fmt.Errorf("price package %s: store cost: %w", packageID, err)
	}

	s.log.Info("package priced",
		slog.String("package_id", pkg.ID.String()),
		slog.String("shipping_cost", cost),
		slog.Float64("usd_rate", rate))

	return nil
}
