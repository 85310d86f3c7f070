package checker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"mercator-hq/copycheck/pkg/config"
)

// Recorder receives per-call metrics. *metrics.Collector implements it.
type Recorder interface {
	RecordCheck(model, status string, duration time.Duration, inputTokens, outputTokens int)
}

// Options configures a Client beyond the checker configuration.
type Options struct {
	// HTTPClient defaults to a pooled client without its own timeout; the
	// per-call deadline comes from CheckerConfig.Timeout.
	HTTPClient *http.Client

	// Logger defaults to slog.Default()
	Logger *slog.Logger

	// Metrics is optional
	Metrics Recorder

	// Backoff is the first retry delay, doubled on each attempt.
	// Default: 1s
	Backoff time.Duration
}

// Client is a Checker for OpenAI-compatible chat completion endpoints.
// It is safe for concurrent use.
type Client struct {
	config   config.CheckerConfig
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	logger   *slog.Logger
	metrics  Recorder
	backoff  time.Duration
}

// NewClient creates a Client from checker configuration.
func NewClient(cfg config.CheckerConfig, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
				ForceAttemptHTTP2:   true,
			},
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := max(cfg.Burst, 1)
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		config:   cfg,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		http:     httpClient,
		limiter:  limiter,
		logger:   logger.With("component", "checker"),
		metrics:  opts.Metrics,
		backoff:  backoff,
	}
}

// Model returns the configured model.
func (c *Client) Model() string {
	return c.config.Model
}

// Check implements Checker. The whole call, retries included, is bounded by
// the configured timeout.
func (c *Client) Check(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, &RequestError{Kind: KindInvalid, Message: "content is empty"}
	}

	start := time.Now()
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	resp, err := c.check(ctx, req)

	status := "success"
	var in, out int
	if err != nil {
		var reqErr *RequestError
		if errors.As(err, &reqErr) {
			status = string(reqErr.Kind)
		} else {
			status = "error"
		}
	} else {
		in, out = resp.Usage.Input, resp.Usage.Output
	}
	if c.metrics != nil {
		c.metrics.RecordCheck(c.config.Model, status, time.Since(start), in, out)
	}
	return resp, err
}

func (c *Client) check(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(buildChatRequest(c.config.Model, c.config.MaxTokens, req))
	if err != nil {
		return nil, &RequestError{Kind: KindInvalid, Message: "failed to marshal request", Cause: err}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			if ctx.Err() == nil {
				// the wait alone would overrun the deadline
				return nil, &RequestError{Kind: KindTimeout, Message: "rate limit wait exceeds deadline", Cause: err}
			}
			return nil, c.contextError(ctx, err)
		}
	}

	var lastErr *RequestError
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.backoff
			c.logger.DebugContext(ctx, "retrying checker request",
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				return nil, c.contextError(ctx, ctx.Err())
			case <-time.After(backoff):
			}
		}

		resp, reqErr := c.do(ctx, body)
		if reqErr == nil {
			return resp, nil
		}
		if !reqErr.Retryable() {
			return nil, reqErr
		}
		lastErr = reqErr
		c.logger.WarnContext(ctx, "checker request failed, will retry",
			"attempt", attempt+1,
			"error", reqErr,
		)
	}
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, body []byte) (*Response, *RequestError) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Kind: KindInvalid, Message: "failed to create request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.contextError(ctx, ctx.Err())
		}
		return nil, &RequestError{Kind: KindTransport, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.contextError(ctx, ctx.Err())
		}
		return nil, &RequestError{Kind: KindTransport, Message: "failed to read response", Cause: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &RequestError{Kind: KindAuth, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RequestError{
			Kind:       KindRateLimit,
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    errorMessage(raw),
		}
	default:
		return nil, &RequestError{Kind: KindStatus, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	var chat chatResponse
	if err := json.Unmarshal(raw, &chat); err != nil {
		return nil, &RequestError{Kind: KindParse, Message: "failed to unmarshal response", Cause: err}
	}
	out, err := toResponse(&chat)
	if err != nil {
		var reqErr *RequestError
		errors.As(err, &reqErr)
		return nil, reqErr
	}
	return out, nil
}

func (c *Client) contextError(ctx context.Context, err error) *RequestError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &RequestError{
			Kind:    KindTimeout,
			Message: fmt.Sprintf("no response within %s", c.config.Timeout),
			Cause:   err,
		}
	}
	return &RequestError{Kind: KindCanceled, Message: "call canceled", Cause: err}
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
