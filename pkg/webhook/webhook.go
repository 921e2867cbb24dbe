// Package webhook provides the HTTP client that posts batch reports to webhook endpoints.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mjlog/mjconv/pkg/logger"
	"github.com/mjlog/mjconv/pkg/output"
)

// DefaultTimeout is the default time budget for one Send, retries included.
const DefaultTimeout = 10 * time.Second

const userAgent = "mjconv-webhook"

// Client sends batch reports to webhook endpoints.
type Client struct {
	httpClient   *http.Client
	retryWait    time.Duration
	retryMaxWait time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithRetryWait sets the initial and maximum backoff between retries.
func WithRetryWait(wait, maxWait time.Duration) ClientOption {
	return func(c *Client) {
		c.retryWait = wait
		c.retryMaxWait = maxWait
	}
}

// NewClient creates a new webhook client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient:   &http.Client{},
		retryWait:    200 * time.Millisecond,
		retryMaxWait: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Budget for the whole send (uses DefaultTimeout if zero)
	Retries int           // Extra attempts after a 5xx, 429 or transport error
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Attempts   int
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts a batch report to a webhook endpoint.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}

	payload, err := json.Marshal(report)
	if err != nil {
		resp.Error = fmt.Errorf("failed to marshal report: %w", err)
		resp.Duration = time.Since(start)
		return resp
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := c.restyClient(opts.Retries).R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", userAgent).
		SetBody(payload)
	if opts.Token != "" {
		req.SetAuthToken(opts.Token)
	}

	log := logger.FromContext(ctx)
	log.Debug("sending webhook", "url", opts.URL, "retries", opts.Retries)

	httpResp, err := req.Post(opts.URL)
	resp.Duration = time.Since(start)
	resp.Attempts = req.Attempt
	if err != nil {
		resp.Error = fmt.Errorf("request failed: %w", err)
	} else {
		resp.StatusCode = httpResp.StatusCode()
		resp.Body = httpResp.String()
		if resp.StatusCode >= 400 {
			resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
		}
	}

	if resp.Error != nil {
		log.Warn("webhook delivery failed", "url", opts.URL, "attempts", resp.Attempts, "error", resp.Error)
	} else {
		log.Debug("webhook delivered", "url", opts.URL, "status", resp.StatusCode, "attempts", resp.Attempts)
	}
	return resp
}

func (c *Client) restyClient(retries int) *resty.Client {
	client := resty.NewWithClient(c.httpClient).
		SetRetryCount(max(retries, 0)).
		SetRetryWaitTime(c.retryWait).
		SetRetryMaxWaitTime(c.retryMaxWait)
	client.AddRetryCondition(retryCondition)
	return client
}

// retryCondition retries transport errors, throttling and server errors.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests
}
