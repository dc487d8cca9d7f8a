// Package postgrest talks to the hosted backend over HTTP: the REST table
// API under /rest/v1, auth under /auth/v1 and object storage under
// /storage/v1.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"novelhub/internal/backend"
	"novelhub/internal/metrics"
)

const (
	// client side cap on backend calls; the hosted tier throttles above this
	defaultRateLimit = 20
	defaultRateBurst = 40

	restPrefix    = "/rest/v1"
	authPrefix    = "/auth/v1"
	storagePrefix = "/storage/v1"
)

type Options struct {
	BaseURL   string
	AnonKey   string
	RateLimit float64
	RateBurst int
	Timeout   time.Duration // transport level, the timeout race lives above
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
}

// Client is safe for concurrent use. Per-call credentials travel in the
// context (backend.WithCredentials); without them the anon key is used.
type Client struct {
	baseURL     string
	anonKey     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

var (
	_ backend.DataSource = (*Client)(nil)
	_ backend.AuthAPI    = (*Client)(nil)
	_ backend.StorageAPI = (*Client)(nil)
)

func NewClient(opts Options) *Client {
	if opts.RateLimit <= 0 {
		opts.RateLimit = defaultRateLimit
	}
	if opts.RateBurst <= 0 {
		opts.RateBurst = defaultRateBurst
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Client{
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		anonKey:     opts.AnonKey,
		rateLimiter: rate.NewLimiter(rate.Limit(opts.RateLimit), opts.RateBurst),
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// BaseURL is needed by the realtime client to derive its websocket URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) AnonKey() string { return c.anonKey }

type request struct {
	operation string
	method    string
	path      string
	query     url.Values
	header    http.Header
	body      io.Reader
	token     string // overrides the context credentials
}

func jsonBody(v any) (io.Reader, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// do sends the request and returns the response when the status is 2xx.
// Any other status is decoded into *backend.APIError and the body closed.
func (c *Client) do(ctx context.Context, r request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.send(ctx, r)
	c.metrics.ObserveBackend(r.operation, err, time.Since(start))
	if err != nil {
		c.logger.DebugContext(ctx, "backend call failed",
			slog.String("operation", r.operation),
			slog.String("error", err.Error()))
	}
	return resp, err
}

func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	fullURL := c.baseURL + r.path
	if len(r.query) > 0 {
		fullURL += "?" + r.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, r.method, fullURL, r.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range r.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("User-Agent", "NovelHub/1.0")
	if r.body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	token := r.token
	if token == "" {
		if creds, ok := backend.CredentialsFrom(ctx); ok {
			token = creds.AccessToken
		} else {
			token = c.anonKey
		}
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}
	return resp, nil
}

// decodeError understands the three error shapes the backend emits: the
// REST one (code/message/details/hint), the auth one (error/
// error_description or msg) and the storage one (statusCode/error/message).
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	apiErr := &backend.APIError{Status: resp.StatusCode}
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Message = strings.TrimSpace(string(body))
		if apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	apiErr.Code = stringField(raw, "code", "error_code")
	apiErr.Details = stringField(raw, "details")
	apiErr.Hint = stringField(raw, "hint")
	apiErr.Message = stringField(raw, "message", "msg", "error_description", "error")
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}

func stringField(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

func decodeJSON(resp *http.Response, dest any) error {
	defer resp.Body.Close()
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil && err != io.EOF {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
