// Package client fetches location signals and nearby competitors from the
// geodata collaborator service.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"marketplace_backend/internal/locationintel/scoring"
	"marketplace_backend/platform/config"
	"marketplace_backend/platform/logger"
)

const (
	signalsPath        = "/v1/signals"
	defaultHTTPTimeout = 10 * time.Second
	defaultAttempts    = 3
	defaultRetryDelay  = 500 * time.Millisecond
	maxRetryDelay      = 5 * time.Second
	maxErrorBodyBytes  = 1 << 10
)

// ErrNoCoverage is returned when the collaborator has no data for a point.
var ErrNoCoverage = errors.New("no geodata coverage for location")

// StatusError is a non-2xx reply from the collaborator.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geodata status %d: %s", e.Status, e.Body)
}

// Query identifies one signal lookup.
type Query struct {
	Lat          float64
	Lng          float64
	PropertyType string
	BusinessType string
}

// Snapshot is the collaborator payload for one location.
type Snapshot struct {
	Signal      scoring.LocationSignal `json:"signal"`
	Competitors []scoring.Competitor   `json:"competitors"`
}

// Client handles geodata requests.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
	attempts   uint
	retryDelay time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithRetry overrides the attempt count and the initial backoff delay.
func WithRetry(attempts uint, delay time.Duration) Option {
	return func(c *Client) {
		c.attempts = attempts
		c.retryDelay = delay
	}
}

// New creates a geodata client from configuration.
func New(cfg config.GeodataConfig, log *logger.Logger, opts ...Option) *Client {
	timeout := cfg.GetGeodataTimeout()
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.GetGeodataAPIURL(), "/"),
		apiKey:     cfg.GetGeodataAPIKey(),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchSignals returns the signal snapshot for q. Transport errors, 429 and
// 5xx replies are retried with jittered backoff; other 4xx replies are not.
// A 404 reply maps to ErrNoCoverage.
func (c *Client) FetchSignals(ctx context.Context, q Query) (Snapshot, error) {
	reqURL := c.signalsURL(q)

	var snapshot Snapshot
	err := retry.Do(
		func() error {
			s, err := c.fetchOnce(ctx, reqURL)
			if err != nil {
				return err
			}
			snapshot = s
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn("retrying geodata request", "attempt", n+1, "error", err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		if !errors.Is(err, ErrNoCoverage) {
			c.log.Error("geodata request failed", "lat", q.Lat, "lng", q.Lng, "error", err)
		}
		return Snapshot{}, err
	}
	return snapshot, nil
}

func (c *Client) fetchOnce(ctx context.Context, reqURL string) (Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Snapshot{}, retry.Unrecoverable(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Snapshot{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return Snapshot{}, retry.Unrecoverable(ErrNoCoverage)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Snapshot{}, statusError(resp)
	default:
		return Snapshot{}, retry.Unrecoverable(statusError(resp))
	}

	var snapshot Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return Snapshot{}, retry.Unrecoverable(fmt.Errorf("decode geodata response: %w", err))
	}
	return snapshot, nil
}

func (c *Client) signalsURL(q Query) string {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
	params.Set("lng", strconv.FormatFloat(q.Lng, 'f', -1, 64))
	if q.PropertyType != "" {
		params.Set("propertyType", q.PropertyType)
	}
	if q.BusinessType != "" {
		params.Set("businessType", q.BusinessType)
	}
	return fmt.Sprintf("%s%s?%s", c.baseURL, signalsPath, params.Encode())
}

func statusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
	return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
