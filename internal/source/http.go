package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pricing-service/internal/pricing"
)

// pricesResponse is the payload returned by the website's pricing endpoint
type pricesResponse struct {
	Success bool                   `json:"success"`
	Prices  *pricing.PricingConfig `json:"prices"`
	Error   string                 `json:"error,omitempty"`
}

// HTTPSource fetches the pricing document from an HTTP endpoint
type HTTPSource struct {
	url        string
	httpClient *http.Client
}

// NewHTTPSource creates a new HTTP pricing source
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *HTTPSource) Name() string {
	return "http"
}

// Fetch performs a single GET; there are no retries
func (s *HTTPSource) Fetch(ctx context.Context) (*pricing.PricingConfig, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var payload pricesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode pricing response: %w", err)
	}

	if !payload.Success {
		if payload.Error != "" {
			return nil, fmt.Errorf("%w: %s", ErrUnsuccessful, payload.Error)
		}
		return nil, ErrUnsuccessful
	}

	return validated(payload.Prices)
}
