package ports

import "context"

// Port: a single round trip to the external authority for the current
// USD/RUB rate. No retries happen at this boundary; retry policy belongs to
// the task queue consuming it.
type RateProvider interface {
	FetchRate(ctx context.Context) (float64, error)
}
