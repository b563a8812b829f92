// Package datasource fetches startlists from external feeds.
package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Startlist is the wire format of a startlist feed document.
type Startlist struct {
	Teams []StartlistTeam `json:"teams"`
}

// StartlistTeam is one team entry with its riders.
type StartlistTeam struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Riders      []StartlistRider `json:"riders"`
}

// StartlistRider is one rider entry.
type StartlistRider struct {
	Name        string `json:"name"`
	YearOfBirth int    `json:"year_of_birth"`
}

// ClientConfig holds startlist client settings.
type ClientConfig struct {
	URL          string
	APIKey       string
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	RateLimit    float64 // requests per second
}

// DefaultClientConfig returns recommended defaults.
func DefaultClientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:          url,
		Timeout:      30 * time.Second,
		MaxRetries:   5,
		RetryWaitMin: 100 * time.Millisecond,
		RetryWaitMax: 10 * time.Second,
		RateLimit:    2.0,
	}
}

// StartlistClient fetches startlist documents with retries and rate
// limiting.
type StartlistClient struct {
	cfg     ClientConfig
	client  *retryablehttp.Client
	limiter *rate.Limiter
	log     *logrus.Logger
}

// NewStartlistClient creates a startlist client.
func NewStartlistClient(cfg ClientConfig, log *logrus.Logger) *StartlistClient {
	if log == nil {
		log = logrus.New()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.Logger = nil

	return &StartlistClient{
		cfg:     cfg,
		client:  retryClient,
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		log:     log,
	}
}

// Fetch retrieves and decodes the startlist document.
func (c *StartlistClient) Fetch(ctx context.Context) (*Startlist, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build startlist request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("startlist fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("startlist fetch returned %d: %s", resp.StatusCode, string(body))
	}

	var list Startlist
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode startlist: %w", err)
	}

	c.log.WithField("teams", len(list.Teams)).Info("Startlist fetched")
	return &list, nil
}
