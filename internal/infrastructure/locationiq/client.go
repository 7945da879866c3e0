package locationiq

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"trazoo-cod-gateway/internal/ports"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public LocationIQ API endpoint.
const DefaultBaseURL = "https://api.locationiq.com"

// Client forwards autocomplete queries to the LocationIQ API and hands the
// raw suggestion payload back to the caller.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a LocationIQ client. baseURL is overridable for tests.
func NewClient(baseURL, apiKey string, logger zerolog.Logger) ports.Geocoder {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Autocomplete performs one forwarded autocomplete call.
func (c *Client) Autocomplete(ctx context.Context, query string) ([]byte, error) {
	u := fmt.Sprintf("%s/v1/autocomplete?key=%s&q=%s&limit=5&dedupe=1",
		c.baseURL, url.QueryEscape(c.apiKey), url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("autocomplete request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("autocomplete returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
