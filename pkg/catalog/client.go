package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/doodlesbykumbi/storefront-admin/pkg/metrics"
)

// DefaultBaseURL is the public demo API the storefront was built against.
const DefaultBaseURL = "https://dummyjson.com"

const maxBodySize = 8 << 20

const defaultTimeout = 15 * time.Second

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout bounds each call, including reading the response body.
	Timeout time.Duration
	// RateLimit bounds outbound requests per second. Zero disables the limit.
	RateLimit float64
	Burst     int
	// HTTPClient overrides the default client.
	HTTPClient *http.Client
}

// Client talks to the remote catalog and auth endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	timeout    atomic.Int64
}

// NewClient creates a new catalog client.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}
	c.SetTimeout(cfg.Timeout)
	c.SetRateLimit(cfg.RateLimit, cfg.Burst)
	return c
}

// SetTimeout changes the per-call deadline. Zero restores the default.
// Calls already in flight keep the deadline they started with.
func (c *Client) SetTimeout(timeout time.Duration) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c.timeout.Store(int64(timeout))
}

// Timeout returns the per-call deadline.
func (c *Client) Timeout() time.Duration {
	return time.Duration(c.timeout.Load())
}

// SetRateLimit changes the outbound request rate. A limit of zero or less
// lifts the limit.
func (c *Client) SetRateLimit(limit float64, burst int) {
	if limit <= 0 {
		c.limiter.SetLimit(rate.Inf)
		return
	}
	if burst < 1 {
		burst = 1
	}
	c.limiter.SetBurst(burst)
	c.limiter.SetLimit(rate.Limit(limit))
}

// BaseURL returns the root of the remote API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// request describes one call to the remote API.
type request struct {
	op      string
	summary string
	method  string
	path    string
	query   url.Values
	body    interface{}
	token   string
}

func (c *Client) do(ctx context.Context, req request, out interface{}) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveCatalogCall(req.op, err, time.Since(start)) }()

	ctx, cancel := context.WithTimeout(ctx, c.Timeout())
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s: %w", req.summary, err)
	}

	target := c.baseURL + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var bodyReader io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s: %w", req.summary, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{
			Op:         req.op,
			Summary:    req.summary,
			StatusCode: resp.StatusCode,
		}
		if gjson.ValidBytes(body) {
			apiErr.Message = gjson.GetBytes(body, "message").String()
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
