package rates

import (
	"context"
	"sync/atomic"

	"parcel-delivery-service/internal/ports"
)

// MockRateProvider serves a fixed rate (or error) and counts calls.
type MockRateProvider struct {
	Rate  float64
	Err   error
	calls atomic.Int32
}

func NewMockRateProvider(rate float64) *MockRateProvider {
	return &MockRateProvider{Rate: rate}
}

var _ ports.RateProvider = (*MockRateProvider)(nil)

func (p *MockRateProvider) FetchRate(_ context.Context) (float64, error) {
	p.calls.Add(1)
	if p.Err != nil {
		return 0, p.Err
	}
	return p.Rate, nil
}

// Calls reports how many fetches were attempted.
func (p *MockRateProvider) Calls() int {
	return int(p.calls.Load())
}
