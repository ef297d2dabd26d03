// Package httpclient is the JSON-over-HTTP client shared by the provider adapters.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valyala/fasthttp"

	"github.com/samirrijal/routeslope/internal/pkg/logging"
)

// Options configures timeouts and retries.
type Options struct {
	Timeout        time.Duration // per attempt
	MaxRetries     int           // retries after the first attempt
	InitialBackoff time.Duration
	UserAgent      string
}

// DefaultOptions returns a 15s timeout with 2 retries.
func DefaultOptions() Options {
	return Options{
		Timeout:        15 * time.Second,
		MaxRetries:     2,
		InitialBackoff: 200 * time.Millisecond,
		UserAgent:      "routeslope/1.0",
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// Client sends JSON requests to a single base URL.
// Transport errors and 5xx responses are retried with exponential backoff;
// 4xx responses and undecodable bodies are not.
type Client struct {
	BaseURL string
	fc      *fasthttp.Client
	opts    Options
}

// New creates a Client for baseURL.
func New(baseURL string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultOptions().Timeout
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = DefaultOptions().InitialBackoff
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Client{
		BaseURL: baseURL,
		fc: &fasthttp.Client{
			Name:            opts.UserAgent,
			ReadTimeout:     opts.Timeout,
			WriteTimeout:    opts.Timeout,
			MaxConnsPerHost: 64,
		},
		opts: opts,
	}
}

// GetJSON issues a GET and decodes the response into out.
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	return c.do(ctx, fasthttp.MethodGet, path, nil, out)
}

// PostJSON encodes in as the body of a POST and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	return c.do(ctx, fasthttp.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	uri := c.BaseURL + path
	attempt := func() error {
		req := fasthttp.AcquireRequest()
		defer fasthttp.ReleaseRequest(req)
		resp := fasthttp.AcquireResponse()
		defer fasthttp.ReleaseResponse(resp)

		req.SetRequestURI(uri)
		req.Header.SetMethod(method)
		req.Header.Set(fasthttp.HeaderAccept, "application/json")
		if body != nil {
			req.Header.SetContentType("application/json")
			req.SetBody(body)
		}

		deadline := time.Now().Add(c.opts.Timeout)
		if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
			deadline = d
		}
		if err := c.fc.DoDeadline(req, resp, deadline); err != nil {
			return fmt.Errorf("%s %s: %w", method, path, err)
		}

		code := resp.StatusCode()
		if code < 200 || code >= 300 {
			serr := &StatusError{Code: code, Body: truncate(string(resp.Body()), 256)}
			if code >= 500 {
				return serr
			}
			return backoff.Permanent(serr)
		}

		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.InitialBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.opts.MaxRetries)), ctx)

	return backoff.RetryNotify(attempt, policy, func(err error, wait time.Duration) {
		logging.FromContext(ctx).Warn("provider request failed, retrying",
			"url", uri,
			"error", err,
			"wait", wait.String(),
		)
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
