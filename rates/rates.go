// Package rates fetches currency exchange rates used when a proposal is
// priced in a currency other than the reference one. A project can always
// override the fetched rate with a manually entered value.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultURL serves USD-based rates as {"rates": {"EUR": 0.92, ...}}.
const DefaultURL = "https://open.er-api.com/v6/latest/USD"

// Provider returns exchange rates keyed by currency code, relative to the
// reference currency (rate 1.0).
type Provider interface {
	GetRates(ctx context.Context) (map[string]float64, error)
}

// HTTPProvider fetches rates from a JSON endpoint.
type HTTPProvider struct {
	url    string
	client *http.Client
}

// NewHTTPProvider creates a provider for the given endpoint URL. An empty
// url falls back to DefaultURL.
func NewHTTPProvider(url string) *HTTPProvider {
	if url == "" {
		url = DefaultURL
	}
	return &HTTPProvider{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) GetRates(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rates request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("rates endpoint returned status %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode rates response: %w", err)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("rates response contained no rates")
	}
	return payload.Rates, nil
}

// Resolve picks the rate for code out of rates, falling back to 1.0 when
// the code is missing or the rate is not positive.
func Resolve(rates map[string]float64, code string) float64 {
	if r, ok := rates[code]; ok && r > 0 {
		return r
	}
	return 1.0
}

// Static is a fixed-rate provider for tests and offline use.
type Static map[string]float64

func (s Static) GetRates(ctx context.Context) (map[string]float64, error) {
	return s, nil
}
