// Package webhook posts finished run reports to HTTP endpoints.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/slh-dsa/sloth/pkg/config"
	"github.com/slh-dsa/sloth/pkg/output"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 10 * time.Second

// maxResponseBody caps how much of a response is kept.
const maxResponseBody = 1024 * 1024

// Client sends run reports to webhook endpoints.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new webhook client that logs results to logger
// (slog.Default() when nil).
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// SendOptions configures a webhook request.
type SendOptions struct {
	URL     string
	Token   string        // Bearer token (optional)
	Timeout time.Duration // Request timeout (uses DefaultTimeout if zero)
}

// Response contains the result of a webhook request.
type Response struct {
	StatusCode int
	Body       string
	Duration   time.Duration
	Error      error
}

// Success returns true if the webhook was sent successfully (2xx status).
func (r *Response) Success() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Send posts report as JSON to one endpoint.
func (c *Client) Send(ctx context.Context, report *output.Report, opts SendOptions) *Response {
	start := time.Now()
	resp := &Response{}
	fail := func(err error) *Response {
		resp.Error = err
		resp.Duration = time.Since(start)
		return resp
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fail(fmt.Errorf("failed to marshal report: %w", err))
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, opts.URL, bytes.NewReader(payload))
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "eprof-webhook")
	if opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+opts.Token)
	}

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("request failed: %w", err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return fail(fmt.Errorf("failed to read response: %w", err))
	}

	resp.StatusCode = httpResp.StatusCode
	resp.Body = string(body)
	resp.Duration = time.Since(start)
	if resp.StatusCode >= 400 {
		resp.Error = fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return resp
}

// ShouldFire reports whether a webhook with trigger fires for report.
func ShouldFire(trigger config.WebhookTrigger, report *output.Report) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	default:
		return report.HasIssues()
	}
}

// Notify sends report to every webhook whose trigger fires and returns
// the number of successful deliveries. Failures are logged, never returned:
// a notification problem must not fail a finished run.
func (c *Client) Notify(ctx context.Context, hooks []config.WebhookConfig, report *output.Report) int {
	sent := 0
	for _, wh := range hooks {
		if !ShouldFire(wh.Trigger, report) {
			continue
		}

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		resp := c.Send(ctx, report, SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})
		if resp.Success() {
			sent++
			c.logger.Info("webhook sent", slog.String("webhook", name),
				slog.Int("status", resp.StatusCode), slog.Duration("duration", resp.Duration))
			continue
		}
		err := resp.Error
		if err == nil {
			err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		c.logger.Error("webhook failed", slog.String("webhook", name), slog.String("error", err.Error()))
	}
	return sent
}
