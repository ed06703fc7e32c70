package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPFlightProvider queries a quote server over HTTP for flight prices.
type HTTPFlightProvider struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewHTTPFlightProvider creates a new HTTPFlightProvider.
func NewHTTPFlightProvider(name, baseURL string, timeout time.Duration) *HTTPFlightProvider {
	return &HTTPFlightProvider{
		name:    name,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name.
func (p *HTTPFlightProvider) Name() string {
	return p.name
}

// QuoteFlight requests one flight quote. A 404 means no fare exists for the
// probe and maps to (nil, nil).
func (p *HTTPFlightProvider) QuoteFlight(ctx context.Context, origin, destination string, date time.Time) (*FlightQuote, error) {
	u, err := url.Parse(p.baseURL + "/flights/quote")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("origin", origin)
	q.Set("destination", destination)
	q.Set("date", date.Format("2006-01-02"))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Explicitly ignore close error
	}()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var quote FlightQuote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &quote, nil
}

// HTTPLodgingProvider queries a quote server over HTTP for lodging offers.
type HTTPLodgingProvider struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

// NewHTTPLodgingProvider creates a new HTTPLodgingProvider.
func NewHTTPLodgingProvider(name, baseURL string, timeout time.Duration) *HTTPLodgingProvider {
	return &HTTPLodgingProvider{
		name:    name,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Name returns the provider name.
func (p *HTTPLodgingProvider) Name() string {
	return p.name
}

// QuoteLodgings requests the offers for a stay, best first.
func (p *HTTPLodgingProvider) QuoteLodgings(ctx context.Context, sq StayQuery) ([]LodgingQuote, error) {
	u, err := url.Parse(p.baseURL + "/lodgings/quote")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	q := u.Query()
	q.Set("destination", sq.Destination)
	q.Set("checkin", sq.Checkin.Format("2006-01-02"))
	q.Set("checkout", sq.Checkout.Format("2006-01-02"))
	q.Set("nights", strconv.Itoa(sq.Nights))
	q.Set("nightly_budget", strconv.FormatFloat(sq.NightlyBudget, 'f', 2, 64))
	q.Set("min_rating", strconv.FormatFloat(sq.MinRating, 'f', 1, 64))
	q.Set("type", sq.LodgingType)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Explicitly ignore close error
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("provider returned status %d: %s", resp.StatusCode, string(body))
	}

	var quotes []LodgingQuote
	if err := json.NewDecoder(resp.Body).Decode(&quotes); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return quotes, nil
}
