package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"anicat/internal/logging"
	"anicat/internal/services"
)

const (
	defaultHTTPTimeout = 20 * time.Second
	defaultAttempts    = 3
	defaultDelay       = 5 * time.Second
	defaultMaxJitter   = 2 * time.Second
)

// Config captures the retry and timeout settings for outbound requests.
type Config struct {
	Attempts  uint
	Delay     time.Duration
	MaxJitter time.Duration
	Timeout   time.Duration
}

// Client issues HTTP requests with bounded retries. A "not found" response is
// a definitive negative result and is returned immediately without consuming
// a retry; every other failure shares the retry path. The delay before each
// retry is the fixed base plus uniform random jitter.
type Client struct {
	httpClient *http.Client
	attempts   uint
	delay      time.Duration
	maxJitter  time.Duration
	logger     *slog.Logger
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for retry reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New constructs a retrying HTTP client.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		attempts:   cfg.Attempts,
		delay:      cfg.Delay,
		maxJitter:  cfg.MaxJitter,
		logger:     logging.NewNop(),
	}
	if client.attempts == 0 {
		client.attempts = defaultAttempts
	}
	if client.delay < 0 {
		client.delay = defaultDelay
	}
	if client.maxJitter < 0 {
		client.maxJitter = defaultMaxJitter
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Result is the outcome of a completed request round trip.
type Result struct {
	StatusCode int
	Body       []byte
}

// NotFound reports whether the server answered with a definitive "no data".
func (r Result) NotFound() bool {
	return r.StatusCode == http.StatusNotFound
}

// StatusError describes a non-success HTTP status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

// Do performs the request, retrying transient failures up to the configured
// attempt bound. The body, when non-nil, is replayed on every attempt. After
// exhausting retries the last failure is returned wrapped as a transient
// service error for the caller to classify.
func (c *Client) Do(ctx context.Context, method, rawURL string, header http.Header, body []byte) (Result, error) {
	var result Result

	attempt := func() error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("build request: %w", err))
		}
		for key, values := range header {
			for _, value := range values {
				req.Header.Add(key, value)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("execute request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			result = Result{StatusCode: resp.StatusCode}
			return nil
		}

		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if resp.StatusCode >= http.StatusBadRequest {
			return &StatusError{StatusCode: resp.StatusCode, Body: string(payload)}
		}

		result = Result{StatusCode: resp.StatusCode, Body: payload}
		return nil
	}

	err := retry.Do(
		attempt,
		retry.Attempts(c.attempts),
		retry.Context(ctx),
		retry.Delay(c.delay),
		retry.MaxJitter(c.maxJitter),
		retry.DelayType(retry.CombineDelay(retry.FixedDelay, retry.RandomDelay)),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("request failed, retrying",
				logging.String("method", method),
				logging.String("url", rawURL),
				logging.Int("attempt", int(n)+1),
				logging.Error(err),
			)
		}),
	)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTransient, "fetch", method+" "+rawURL,
			fmt.Sprintf("failed after %d attempts", c.attempts), err)
	}
	return result, nil
}
