package services

import (
	"context"
	"testing"
	"time"

	"parcel-delivery-service/internal/adapters/rates"
	"parcel-delivery-service/internal/domain"
	"parcel-delivery-service/internal/taskqueue"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPricingFixture(t *testing.T, provider *rates.MockRateProvider) (*PricingService, *fakePackageRepo, *fakeRateCache) {
	t.Helper()

	repo := newFakePackageRepo()
	cache := newFakeRateCache()
	rateSvc := NewRateService(cache, provider, time.Hour, discardLogger())
	return NewPricingService(repo, rateSvc, discardLogger()), repo, cache
}

func TestPricePackageComputesAndStoresCost(t *testing.T) {
	provider := rates.NewMockRateProvider(100)
	svc, repo, _ := newPricingFixture(t, provider)

	pkg := &domain.Package{
		ID:           uuid.New(),
		Name:         "Phone",
		Weight:       0.2,
		Price:        90000,
		TypeID:       2,
		SessionID:    uuid.New(),
		ShippingCost: domain.CostPending,
	}
	repo.add(pkg)

	require.NoError(t, svc.PricePackage(context.Background(), pkg.ID))

	stored, ok := repo.get(pkg.ID)
	require.True(t, ok)
	assert.Equal(t, "90010.00", stored.ShippingCost)
}

func TestPricePackageMissingRowIsSuccess(t *testing.T) {
	provider := rates.NewMockRateProvider(100)
	svc, repo, _ := newPricingFixture(t, provider)

	require.NoError(t, svc.PricePackage(context.Background(), uuid.New()))
	assert.Equal(t, 0, repo.updateCalls)
	assert.Equal(t, 0, provider.Calls())
}

func TestPricePackageSourceFailurePropagates(t *testing.T) {
	provider := &rates.MockRateProvider{Err: rates.ErrSourceUnavailable}
	svc, repo, _ := newPricingFixture(t, provider)

	pkg := &domain.Package{ID: uuid.New(), Weight: 1, Price: 100, ShippingCost: domain.CostPending}
	repo.add(pkg)

	err := svc.PricePackage(context.Background(), pkg.ID)
	require.ErrorIs(t, err, rates.ErrSourceUnavailable)

	// The package stays at the sentinel; the queue layer owns the retry.
	stored, _ := repo.get(pkg.ID)
	assert.Equal(t, domain.CostPending, stored.ShippingCost)
}

func TestPricePackageCacheHitSkipsProvider(t *testing.T) {
	provider := rates.NewMockRateProvider(100)
	svc, repo, cache := newPricingFixture(t, provider)

	require.NoError(t, cache.Set(context.Background(), RateCacheKey, 50, time.Hour))

	pkg := &domain.Package{ID: uuid.New(), Weight: 2, Price: 0, ShippingCost: domain.CostPending}
	repo.add(pkg)

	require.NoError(t, svc.PricePackage(context.Background(), pkg.ID))

	stored, _ := repo.get(pkg.ID)
	assert.Equal(t, "50.00", stored.ShippingCost) // 2*0.5*50
	assert.Equal(t, 0, provider.Calls())
}

func TestPricePackageIdempotentReprice(t *testing.T) {
	provider := rates.NewMockRateProvider(100)
	svc, repo, _ := newPricingFixture(t, provider)

	pkg := &domain.Package{ID: uuid.New(), Weight: 0.2, Price: 90000, ShippingCost: domain.CostPending}
	repo.add(pkg)

	ctx := context.Background()
	require.NoError(t, svc.PricePackage(ctx, pkg.ID))
	first, _ := repo.get(pkg.ID)

	// Redelivery after a crash between compute and ack must be safe.
	require.NoError(t, svc.PricePackage(ctx, pkg.ID))
	second, _ := repo.get(pkg.ID)

	assert.Equal(t, first.ShippingCost, second.ShippingCost)
	assert.Equal(t, 2, repo.updateCalls)
}

func TestHandlerRejectsUnknownSchemaVersion(t *testing.T) {
	provider := rates.NewMockRateProvider(100)
	svc, _, _ := newPricingFixture(t, provider)

	err := svc.Handler().Handle(context.Background(), []byte(`{"schema_version":99,"package_id":"`+uuid.NewString()+`"}`))
	assert.Error(t, err)
}

func TestDispatcherCarriesFixedSchemaPayload(t *testing.T) {
	queueRepo := taskqueue.NewMemoryRepository()
	enq, err := taskqueue.NewEnqueuer(queueRepo, 3)
	require.NoError(t, err)

	d := NewCostDispatcher(enq)
	pkg := &domain.Package{ID: uuid.New(), Weight: 1.5, Price: 200}

	taskID, err := d.DispatchCostComputation(context.Background(), pkg)
	require.NoError(t, err)

	task, ok := queueRepo.TaskByID(taskID)
	require.True(t, ok)
	assert.Equal(t, CostTaskName, task.Name)
	assert.JSONEq(t,
		`{"schema_version":1,"package_id":"`+pkg.ID.String()+`","weight":1.5,"price":200}`,
		string(task.Payload))
}
