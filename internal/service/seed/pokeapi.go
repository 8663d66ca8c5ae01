package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// PokeResponse is the page document returned by the upstream list endpoint.
type PokeResponse struct {
	Count    int          `json:"count"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
	Results  []PokeResult `json:"results"`
}

// PokeResult is one entry of a page.
type PokeResult struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Fetcher retrieves one page of upstream results.
type Fetcher interface {
	FetchPage(ctx context.Context) ([]PokeResult, error)
}

// PokeAPIConfig configures the upstream client.
type PokeAPIConfig struct {
	SourceURL string
	PageSize  int
	Timeout   time.Duration
}

// PokeAPIClient fetches a fixed-size page from PokeAPI. Calls go through a
// circuit breaker so a dead upstream fails fast; there are no retries.
type PokeAPIClient struct {
	httpClient *http.Client
	config     PokeAPIConfig
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewPokeAPIClient creates the client. A nil httpClient gets one with config.Timeout.
func NewPokeAPIClient(httpClient *http.Client, config PokeAPIConfig, logger *zap.Logger) *PokeAPIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	logger = logger.Named("pokeapi")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "pokeapi",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &PokeAPIClient{httpClient: httpClient, config: config, breaker: breaker, logger: logger}
}

// PageURL is the single URL the client requests.
func (c *PokeAPIClient) PageURL() (string, error) {
	u, err := url.Parse(c.config.SourceURL)
	if err != nil {
		return "", fmt.Errorf("invalid source url %q: %w", c.config.SourceURL, err)
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(c.config.PageSize))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchPage performs one GET and decodes the page.
func (c *PokeAPIClient) FetchPage(ctx context.Context) ([]PokeResult, error) {
	pageURL, err := c.PageURL()
	if err != nil {
		return nil, err
	}

	out, err := c.breaker.Execute(func() (any, error) {
		return c.get(ctx, pageURL)
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	return out.([]PokeResult), nil
}

func (c *PokeAPIClient) get(ctx context.Context, pageURL string) ([]PokeResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	var page PokeResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("fetched page",
		zap.String("url", pageURL),
		zap.Int("results", len(page.Results)),
		zap.Duration("duration", time.Since(start)),
	)
	return page.Results, nil
}
