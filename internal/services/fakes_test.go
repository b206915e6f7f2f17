package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"parcel-delivery-service/internal/domain"
	"parcel-delivery-service/internal/ports"

	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakePackageRepo struct {
	mu          sync.Mutex
	packages    map[uuid.UUID]*domain.Package
	types       map[int]domain.PackageType
	updateCalls int
	failUpdate  error
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{
		packages: make(map[uuid.UUID]*domain.Package),
		types: map[int]domain.PackageType{
			1: {ID: 1, Name: "clothing"},
			2: {ID: 2, Name: "electronics"},
		},
	}
}

func (f *fakePackageRepo) add(p *domain.Package) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.packages[p.ID] = &cp
}

func (f *fakePackageRepo) get(id uuid.UUID) (*domain.Package, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.packages[id]
	if !ok {
		return nil, false
	}
	cp := *p
	return &cp, true
}

func (f *fakePackageRepo) Create(_ context.Context, p *domain.Package) error {
	f.add(p)
	return nil
}

func (f *fakePackageRepo) ListBySession(_ context.Context, sessionID uuid.UUID, fl ports.ListFilter) ([]*domain.Package, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]*domain.Package, 0)
	for _, p := range f.packages {
		if p.SessionID != sessionID {
			continue
		}
		if fl.TypeID != nil && p.TypeID != *fl.TypeID {
			continue
		}
		if fl.HasShippingCost != nil && p.Priced() != *fl.HasShippingCost {
			continue
		}
		cp := *p
		matched = append(matched, &cp)
	}

	total := len(matched)
	start := fl.Offset()
	if start > total {
		start = total
	}
	end := start + fl.Size
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (f *fakePackageRepo) GetByIDAndSession(_ context.Context, id, sessionID uuid.UUID) (*domain.Package, error) {
	p, ok := f.get(id)
	if !ok || p.SessionID != sessionID {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePackageRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Package, error) {
	p, ok := f.get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakePackageRepo) UpdateShippingCost(_ context.Context, id uuid.UUID, cost string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls++
	if f.failUpdate != nil {
		return f.failUpdate
	}
	if p, ok := f.packages[id]; ok {
		p.ShippingCost = cost
	}
	return nil
}

func (f *fakePackageRepo) ListUnpriced(context.Context) ([]*domain.Package, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*domain.Package, 0)
	for _, p := range f.packages {
		if !p.Priced() {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePackageRepo) ListTypes(context.Context) ([]domain.PackageType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.PackageType, 0, len(f.types))
	for _, t := range f.types {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakePackageRepo) GetTypeByID(_ context.Context, id int) (*domain.PackageType, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t, ok := f.types[id]
	if !ok {
		return nil, domain.ErrUnknownType
	}
	return &t, nil
}

type cacheEntry struct {
	value     float64
	expiresAt time.Time
}

type fakeRateCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	getErr  error
	setErr  error
	sets    int
}

func newFakeRateCache() *fakeRateCache {
	return &fakeRateCache{entries: make(map[string]cacheEntry)}
}

func (f *fakeRateCache) Get(_ context.Context, key string) (float64, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return 0, false, f.getErr
	}
	e, ok := f.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return 0, false, nil
	}
	return e.value, true, nil
}

func (f *fakeRateCache) Set(_ context.Context, key string, value float64, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = cacheEntry{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (f *fakeRateCache) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.entries, key)
	return nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*domain.Session)}
}

func (f *fakeSessionRepo) Upsert(_ context.Context, id uuid.UUID, now time.Time) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[id]
	if !ok {
		s = &domain.Session{ID: id, CreatedAt: now, LastActivity: now}
		f.sessions[id] = s
	} else if now.After(s.LastActivity) {
		s.LastActivity = now
	}
	cp := *s
	return &cp, nil
}

var errCacheDown = errors.New("cache down")
