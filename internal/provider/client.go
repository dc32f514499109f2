// Package provider implements the HTTP clients for the external data sources:
// DataForSEO, Fathom, Google Business Profile, Google Search Console,
// YouTube and Bunny Stream. All of them share Client, which adds
// authentication, rate limiting, a circuit breaker and request metrics on
// top of resty.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/masahif/seodash/internal/metrics"
)

// AuthType selects how credentials are attached to requests
type AuthType string

const (
	AuthNone         AuthType = ""
	AuthBasic        AuthType = "basic"
	AuthBearer       AuthType = "bearer"
	AuthAPIKeyHeader AuthType = "apikey-header"
	AuthAPIKeyQuery  AuthType = "apikey-query"
)

// Options are the transport settings shared by every provider client
type Options struct {
	BaseURL          string
	Timeout          time.Duration
	UserAgent        string
	Limiter          *RateLimiter  // Shared per-host limiter; nil disables limiting
	BreakerFailures  int           // Consecutive failures before the breaker opens; 0 disables it
	BreakerOpenDelay time.Duration // How long an open breaker rejects calls
	HTTPClient       *http.Client  // Optional base client, e.g. an OAuth2 client
}

// StatusError is returned when a provider answers with a non-2xx status
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s API error: %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s API error: %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Client is a resty client bound to one provider
type Client struct {
	name    string
	http    *resty.Client
	limiter *RateLimiter
	breaker *gobreaker.CircuitBreaker[*resty.Response]

	authType    AuthType
	username    string
	password    string
	bearerToken string
	apiKeyName  string
	apiKeyValue string
}

// NewClient creates a client for the named provider
func NewClient(name string, opts Options) *Client {
	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}

	rc.SetBaseURL(opts.BaseURL)
	rc.SetJSONMarshaler(json.Marshal)
	rc.SetJSONUnmarshaler(json.Unmarshal)
	rc.SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		rc.SetHeader("User-Agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}

	c := &Client{
		name:    name,
		http:    rc,
		limiter: opts.Limiter,
	}

	rc.OnBeforeRequest(c.applyAuth)
	rc.OnAfterResponse(c.onAfterResponse)
	rc.OnError(c.onError)

	if opts.BreakerFailures > 0 {
		c.breaker = newBreaker(name, opts.BreakerFailures, opts.BreakerOpenDelay)
	}

	return c
}

// Name returns the provider name used in logs and metrics
func (c *Client) Name() string {
	return c.name
}

// SetBasicAuth configures basic authentication
func (c *Client) SetBasicAuth(username, password string) {
	c.authType = AuthBasic
	c.username = username
	c.password = password
}

// SetBearerAuth configures bearer token authentication
func (c *Client) SetBearerAuth(token string) {
	c.authType = AuthBearer
	c.bearerToken = token
}

// SetAPIKeyHeader sends the key in a request header
func (c *Client) SetAPIKeyHeader(header, value string) {
	c.authType = AuthAPIKeyHeader
	c.apiKeyName = header
	c.apiKeyValue = value
}

// SetAPIKeyQuery sends the key as a query parameter
func (c *Client) SetAPIKeyQuery(param, value string) {
	c.authType = AuthAPIKeyQuery
	c.apiKeyName = param
	c.apiKeyValue = value
}

func (c *Client) applyAuth(_ *resty.Client, req *resty.Request) error {
	switch c.authType {
	case AuthBasic:
		req.SetBasicAuth(c.username, c.password)
	case AuthBearer:
		req.SetAuthToken(c.bearerToken)
	case AuthAPIKeyHeader:
		req.SetHeader(c.apiKeyName, c.apiKeyValue)
	case AuthAPIKeyQuery:
		req.SetQueryParam(c.apiKeyName, c.apiKeyValue)
	}
	return nil
}

func (c *Client) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	outcome := "success"
	if res.IsError() {
		outcome = "http_error"
	}
	metrics.RecordProviderRequest(c.name, outcome, res.Time())
	return nil
}

func (c *Client) onError(req *resty.Request, err error) {
	var rerr *resty.ResponseError
	if errors.As(err, &rerr) {
		return
	}
	metrics.RecordProviderRequest(c.name, "transport_error", 0)
	slog.DebugContext(req.Context(), "provider request failed",
		"provider", c.name,
		"method", req.Method,
		"url", req.URL,
		"error", err)
}

// Do executes one request and decodes a JSON body into result (if non-nil).
// build customizes the request (query params, body, path params).
func (c *Client) Do(ctx context.Context, method, path string, build func(*resty.Request), result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, c.http.BaseURL); err != nil {
			return err
		}
	}

	call := func() (*resty.Response, error) {
		req := c.http.R().SetContext(ctx)
		if build != nil {
			build(req)
		}

		res, err := req.Execute(method, path)
		if err != nil {
			return nil, fmt.Errorf("%s request failed: %w", c.name, err)
		}
		if res.IsError() {
			return res, &StatusError{Provider: c.name, StatusCode: res.StatusCode(), Body: truncate(res.String(), 256)}
		}
		return res, nil
	}

	var res *resty.Response
	var err error
	if c.breaker != nil {
		res, err = c.breaker.Execute(call)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordProviderRequest(c.name, "rejected", 0)
			return fmt.Errorf("%s: %w", c.name, err)
		}
	} else {
		res, err = call()
	}
	if err != nil {
		return err
	}

	if result == nil || len(res.Body()) == 0 {
		return nil
	}
	if err := json.Unmarshal(res.Body(), result); err != nil {
		return fmt.Errorf("%s: failed to decode response: %w", c.name, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
