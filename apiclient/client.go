// Package apiclient is the REST collaborator: a thin typed layer over the
// property-management backend, returning pages shaped for the pagelist
// accumulator and mutation executors shaped for the mutation runner.
package apiclient

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-resty/resty/v2"
)

// Config holds the HTTP client settings.
type Config struct {
	// BaseURL of the backend, e.g. "https://api.example.com/v1".
	BaseURL string

	// APIKey sent as a bearer token. Optional for anonymous endpoints.
	APIKey string

	// Timeout per request.
	Timeout time.Duration

	// RetryAttempts for transient failures on idempotent requests.
	RetryAttempts int

	// RetryBaseDelay between attempts, doubled each retry.
	RetryBaseDelay time.Duration
}

// DefaultConfig returns the client defaults.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		Timeout:        15 * time.Second,
		RetryAttempts:  3,
		RetryBaseDelay: 200 * time.Millisecond,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required),
		validation.Field(&c.Timeout, validation.Required, validation.Min(time.Millisecond)),
		validation.Field(&c.RetryAttempts, validation.Min(0), validation.Max(10)),
		validation.Field(&c.RetryBaseDelay, validation.Min(time.Duration(0))),
	)
}

// Client talks to the backend. Safe for concurrent use.
type Client struct {
	http *resty.Client
	cfg  Config
	log  *slog.Logger
}

// New builds a Client from the configuration.
func New(cfg Config, log *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("apiclient: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		http.SetAuthToken(cfg.APIKey)
	}

	return &Client{http: http, cfg: cfg, log: log}, nil
}

// get performs a GET with transient-failure retries. Only GETs retry:
// mutations are not assumed idempotent.
func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	op := func() error {
		return c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
			return r.SetQueryParams(params).SetResult(out).Get(path)
		})
	}

	if c.cfg.RetryAttempts <= 1 {
		return op()
	}

	return retry.Do(op,
		retry.Context(ctx),
		retry.Attempts(uint(c.cfg.RetryAttempts)),
		retry.Delay(c.cfg.RetryBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug("apiclient: retrying request",
				slog.String("path", path),
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err))
		}),
	)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(body).SetResult(out).Post(path)
	})
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(body).SetResult(out).Put(path)
	})
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, func(r *resty.Request) (*resty.Response, error) {
		return r.Delete(path)
	})
}

// do runs one request and normalizes failures: transport errors become
// *TransportError, non-2xx responses become *APIError with the server's
// message when the envelope carried one.
func (c *Client) do(ctx context.Context, send func(*resty.Request) (*resty.Response, error)) error {
	apiErr := &APIError{}
	req := c.http.R().SetContext(ctx).SetError(apiErr)

	resp, err := send(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return apiErr
	}
	return nil
}

// listParams renders pagination plus an optional filter into query params.
func listParams(offset, limit int, filter map[string]string) map[string]string {
	params := map[string]string{
		"offset": strconv.Itoa(offset),
		"limit":  strconv.Itoa(limit),
	}
	for k, v := range filter {
		if v != "" {
			params[k] = v
		}
	}
	return params
}
