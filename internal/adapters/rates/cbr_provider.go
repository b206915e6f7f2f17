package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"parcel-delivery-service/internal/platform/obs"
	"parcel-delivery-service/internal/ports"
)

// ErrSourceUnavailable wraps every failure mode of the rate authority:
// timeout, non-success status, unparseable payload. Callers retry at the
// queue layer, never here.
var ErrSourceUnavailable = errors.New("rate source unavailable")

const DefaultBaseURL = "https://www.cbr-xml-daily.ru/daily_json.js"

// CBRRateProvider fetches the current USD/RUB rate from the Central Bank
// daily JSON feed in a single bounded round trip.
type CBRRateProvider struct {
	baseURL string
	session *http.Client
}

func NewCBRRateProvider(baseURL string, timeout time.Duration) (*CBRRateProvider, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("cbr provider: base URL must not be empty")
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &CBRRateProvider{
		baseURL: baseURL,
		session: &http.Client{Timeout: timeout},
	}, nil
}

var _ ports.RateProvider = (*CBRRateProvider)(nil)

type dailyResponse struct {
	Valute struct {
		USD struct {
			Value float64 `json:"Value"`
		} `json:"USD"`
	} `json:"Valute"`
}

func (p *CBRRateProvider) FetchRate(ctx context.Context) (_ float64, err error) {
	defer obs.Time(ctx, "cbr.FetchRate")(&err)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL, nil)
	if err != nil {
		return 0, fmt.Errorf("fetch rate: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.session.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: execute request: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: unexpected status %d", ErrSourceUnavailable, resp.StatusCode)
	}

	var decoded dailyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return 0, fmt.Errorf("%w: decode payload: %v", ErrSourceUnavailable, err)
	}

	rate := decoded.Valute.USD.Value
	if rate <= 0 {
		return 0, fmt.Errorf("%w: payload carries no USD rate", ErrSourceUnavailable)
	}

	return rate, nil
}
