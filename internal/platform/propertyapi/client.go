// Package propertyapi is the REST client for the property map API. Read calls
// fall back to the bundled fixture when the API cannot be reached.
package propertyapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gta-invest/propertymap/internal/business/listing"
	"github.com/gta-invest/propertymap/internal/platform/apperr"
	"github.com/gta-invest/propertymap/internal/platform/fixture"
	"github.com/gta-invest/propertymap/internal/platform/logger"
	"github.com/gta-invest/propertymap/pkg/model"
)

var (
	// ErrNetwork marks a failed fetch: transport error, 5xx, or an open breaker.
	ErrNetwork = errors.New("property api unreachable")
	// ErrCircuitOpen signals the breaker is open after repeated network failures.
	ErrCircuitOpen = fmt.Errorf("%w: circuit open", ErrNetwork)
)

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config defines settings for the API client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	BreakerMax int
	// BreakerCooldown is how long an open breaker rejects calls before one
	// trial request is let through.
	BreakerCooldown time.Duration
	// NoFallback disables the fixture fallback so network errors surface.
	NoFallback bool
}

// Client calls the property map REST API.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	log        *logger.Logger
	fallback   bool

	maxRetries          int
	breakerThreshold    int32
	breakerCooldown     time.Duration
	consecutiveFailures atomic.Int32
	openedAt            atomic.Int64 // unix nanos of the last trip
	now                 func() time.Time
}

// New creates an API client.
func New(httpClient HTTPClient, cfg Config, log *logger.Logger) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	base := cfg.BaseURL
	if base == "" {
		base = "http://localhost:8080/api"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}
	breaker := cfg.BreakerMax
	if breaker <= 0 {
		breaker = 5
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		baseURL:          base,
		httpClient:       httpClient,
		log:              log,
		fallback:         !cfg.NoFallback,
		maxRetries:       maxRetries,
		breakerThreshold: int32(breaker),
		breakerCooldown:  cooldown,
		now:              time.Now,
	}
}

// Properties lists every property.
func (c *Client) Properties(ctx context.Context) ([]model.Property, error) {
	var out []model.Property
	err := c.get(ctx, "/properties", nil, &out)
	if c.shouldFallBack(err) {
		c.log.FallbackUsed("properties", err)
		return fixture.Properties(), nil
	}
	return out, err
}

// Property fetches one property. A miss is retried against the fixture before
// a NotFound error is returned.
func (c *Client) Property(ctx context.Context, id int64) (model.Property, error) {
	var out model.Property
	err := c.get(ctx, "/properties/"+strconv.FormatInt(id, 10), nil, &out)
	if err == nil {
		return out, nil
	}
	if apperr.Is(err, apperr.KindNotFound) || c.shouldFallBack(err) {
		if p, ok := fixture.Property(id); ok {
			c.log.FallbackUsed("property", err)
			return p, nil
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return model.Property{}, apperr.Wrap(apperr.KindNotFound, fmt.Sprintf("property %d not found", id), err)
		}
	}
	return model.Property{}, err
}

// PropertiesInBounds lists properties inside the box.
func (c *Client) PropertiesInBounds(ctx context.Context, b model.Bounds) ([]model.Property, error) {
	var out []model.Property
	err := c.get(ctx, "/properties/bounds", boundsQuery(b), &out)
	if c.shouldFallBack(err) {
		c.log.FallbackUsed("properties/bounds", err)
		return listing.InBounds(fixture.Properties(), b), nil
	}
	return out, err
}

// PropertiesByMetric lists properties whose metric is at least threshold.
func (c *Client) PropertiesByMetric(ctx context.Context, metric string, threshold float64) ([]model.Property, error) {
	q := url.Values{}
	q.Set(listing.MetricParam(metric), strconv.FormatFloat(threshold, 'f', -1, 64))
	var out []model.Property
	err := c.get(ctx, "/properties/filter", q, &out)
	if c.shouldFallBack(err) {
		c.log.FallbackUsed("properties/filter", err)
		return listing.FilterProperties(fixture.Properties(), q)
	}
	return out, err
}

// LocationScores lists every location score.
func (c *Client) LocationScores(ctx context.Context) ([]model.LocationScore, error) {
	var out []model.LocationScore
	err := c.get(ctx, "/location-scores", nil, &out)
	if c.shouldFallBack(err) {
		c.log.FallbackUsed("location-scores", err)
		return fixture.LocationScores(), nil
	}
	return out, err
}

// LocationScore fetches one location score, falling back to the fixture on a miss.
func (c *Client) LocationScore(ctx context.Context, id int64) (model.LocationScore, error) {
	var out model.LocationScore
	err := c.get(ctx, "/location-scores/"+strconv.FormatInt(id, 10), nil, &out)
	if err == nil {
		return out, nil
	}
	if apperr.Is(err, apperr.KindNotFound) || c.shouldFallBack(err) {
		if s, ok := fixture.LocationScore(id); ok {
			c.log.FallbackUsed("location-score", err)
			return s, nil
		}
		if !apperr.Is(err, apperr.KindNotFound) {
			return model.LocationScore{}, apperr.Wrap(apperr.KindNotFound, fmt.Sprintf("location score %d not found", id), err)
		}
	}
	return model.LocationScore{}, err
}

// LocationScoresInBounds lists location scores inside the box.
func (c *Client) LocationScoresInBounds(ctx context.Context, b model.Bounds) ([]model.LocationScore, error) {
	var out []model.LocationScore
	err := c.get(ctx, "/location-scores/bounds", boundsQuery(b), &out)
	if c.shouldFallBack(err) {
		c.log.FallbackUsed("location-scores/bounds", err)
		return listing.ScoresInBounds(fixture.LocationScores(), b), nil
	}
	return out, err
}

// CreateProperty posts a new property. Mutations never fall back.
func (c *Client) CreateProperty(ctx context.Context, p model.Property) (model.Property, error) {
	var out model.Property
	err := c.send(ctx, http.MethodPost, "/properties", p, &out)
	return out, err
}

// UpdateProperty replaces the property with the given id.
func (c *Client) UpdateProperty(ctx context.Context, id int64, p model.Property) (model.Property, error) {
	var out model.Property
	err := c.send(ctx, http.MethodPut, "/properties/"+strconv.FormatInt(id, 10), p, &out)
	return out, err
}

// DeleteProperty removes the property with the given id.
func (c *Client) DeleteProperty(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodDelete, "/properties/"+strconv.FormatInt(id, 10), nil, nil)
}

func (c *Client) shouldFallBack(err error) bool {
	return err != nil && c.fallback && errors.Is(err, ErrNetwork)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, dst any) error {
	endpoint := c.baseURL + path
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	return c.do(ctx, http.MethodGet, endpoint, nil, dst, c.maxRetries)
}

func (c *Client) send(ctx context.Context, method, path string, body, dst any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	return c.do(ctx, method, c.baseURL+path, payload, dst, 1)
}

func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte, dst any, attempts int) error {
	if c.consecutiveFailures.Load() >= c.breakerThreshold {
		opened := c.openedAt.Load()
		now := c.now().UnixNano()
		if time.Duration(now-opened) < c.breakerCooldown {
			return ErrCircuitOpen
		}
		// Half-open: the caller that re-arms the timer sends a single trial.
		if !c.openedAt.CompareAndSwap(opened, now) {
			return ErrCircuitOpen
		}
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, endpoint, err)
			if ctx.Err() != nil {
				break
			}
			continue
		}
		lastErr = c.handle(resp, method, endpoint, dst)
		if lastErr == nil || !errors.Is(lastErr, ErrNetwork) {
			break
		}
	}

	if lastErr != nil && errors.Is(lastErr, ErrNetwork) {
		if c.consecutiveFailures.Add(1) >= c.breakerThreshold {
			c.openedAt.Store(c.now().UnixNano())
		}
	} else {
		c.consecutiveFailures.Store(0)
	}
	return lastErr
}

func (c *Client) handle(resp *http.Response, method, endpoint string, dst any) error {
	defer resp.Body.Close()
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if dst == nil || len(bytes.TrimSpace(buf)) == 0 {
			return nil
		}
		if err := json.Unmarshal(buf, dst); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return apperr.NotFound(apiMessage(buf, "not found")).WithOp(method + " " + endpoint)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %s %s: status %d: %s", ErrNetwork, method, endpoint, resp.StatusCode, apiMessage(buf, ""))
	case resp.StatusCode == http.StatusBadRequest:
		return apperr.BadRequest(apiMessage(buf, "bad request")).WithOp(method + " " + endpoint)
	default:
		return fmt.Errorf("%s %s: status %d: %s", method, endpoint, resp.StatusCode, apiMessage(buf, ""))
	}
}

// apiMessage extracts the server's {"error": "..."} message.
func apiMessage(body []byte, fallback string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	if s := string(bytes.TrimSpace(body)); s != "" && len(s) < 200 {
		return s
	}
	return fallback
}

func boundsQuery(b model.Bounds) url.Values {
	q := url.Values{}
	q.Set("southLat", strconv.FormatFloat(b.SouthLat, 'f', -1, 64))
	q.Set("northLat", strconv.FormatFloat(b.NorthLat, 'f', -1, 64))
	q.Set("westLng", strconv.FormatFloat(b.WestLng, 'f', -1, 64))
	q.Set("eastLng", strconv.FormatFloat(b.EastLng, 'f', -1, 64))
	return q
}
