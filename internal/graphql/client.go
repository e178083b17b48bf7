package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"performersync/internal/logging"
	"performersync/internal/services"
)

const (
	defaultHTTPTimeout    = 30 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 30 * time.Second
	maxErrorBody          = 512
)

// Client issues GraphQL requests against a single endpoint.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
	limiter    *rate.Limiter

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
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

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithRetryMaxAttempts overrides the default attempt count (defaults to 3).
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithThrottle spaces outbound requests at least interval apart. A zero
// interval disables throttling.
func WithThrottle(interval time.Duration) Option {
	return func(c *Client) {
		if interval <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithLogger attaches a logger for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient constructs a client for endpoint. The endpoint is used verbatim;
// callers append /graphql where the server expects it.
func NewClient(endpoint, apiKey string, opts ...Option) *Client {
	client := &Client{
		endpoint:         strings.TrimSpace(endpoint),
		apiKey:           strings.TrimSpace(apiKey),
		httpClient:       &http.Client{Timeout: defaultHTTPTimeout},
		logger:           logging.NewNop(),
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// Endpoint returns the URL requests are posted to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graphql request: http %d: %s", e.StatusCode, e.Body)
}

// Error is one entry of a GraphQL error payload.
type Error struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// ResponseErrors is the error list returned alongside (or instead of) data.
type ResponseErrors []Error

func (e ResponseErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, item := range e {
		if msg := strings.TrimSpace(item.Message); msg != "" {
			msgs = append(msgs, msg)
		}
	}
	if len(msgs) == 0 {
		return "graphql errors"
	}
	return "graphql errors: " + strings.Join(msgs, "; ")
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors ResponseErrors  `json:"errors"`
}

// Query executes a read and decodes its data object into out. Transient
// failures are retried up to the configured attempt count.
func (c *Client) Query(ctx context.Context, op, query string, variables map[string]any, out any) error {
	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.do(ctx, op, query, variables, out)
		if err == nil {
			return nil
		}
		if !services.IsRetryable(err) || attempt >= attempts || ctx.Err() != nil {
			return err
		}
		lastErr = err
		delay := c.backoffDelay(attempt)
		c.logger.Debug("graphql retry scheduled",
			logging.String("operation", op),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", attempts),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return services.Wrap(services.ErrTransient, "graphql", op, "retry interrupted", err)
		}
	}
	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return lastErr
}

// Mutate executes a write exactly once and decodes its data object into out,
// which may be nil.
func (c *Client) Mutate(ctx context.Context, op, query string, variables map[string]any, out any) error {
	return c.do(ctx, op, query, variables, out)
}

func (c *Client) do(ctx context.Context, op, query string, variables map[string]any, out any) error {
	if c.endpoint == "" {
		return services.Wrap(services.ErrConfiguration, "graphql", op, "endpoint required", nil)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return services.Wrap(services.ErrTransient, "graphql", op, "throttle wait", err)
		}
	}
	encoded, err := json.Marshal(request{Query: query, Variables: variables})
	if err != nil {
		return services.Wrap(services.ErrValidation, "graphql", op, "encode body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "graphql", op, "new request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("ApiKey", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "graphql", op, fmt.Sprintf("http error (timeout=%s)", c.timeoutDuration()), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrTransient, "graphql", op, "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		statusErr := &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
		return services.Wrap(classifyStatus(resp.StatusCode), "graphql", op, "", statusErr)
	}

	var payload response
	if err := json.Unmarshal(body, &payload); err != nil {
		return services.Wrap(services.ErrTransient, "graphql", op, "decode response", err)
	}
	if len(payload.Errors) > 0 {
		return services.Wrap(services.ErrSemanticRejection, "graphql", op, "", payload.Errors)
	}
	if out == nil || len(payload.Data) == 0 || string(payload.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload.Data, out); err != nil {
		return services.Wrap(services.ErrValidation, "graphql", op, "decode data", err)
	}
	return nil
}

// classifyStatus treats timeouts, throttling, and server faults as transient.
// Every other client error, 422 included, is a rejection that a retry would
// only repeat.
func classifyStatus(code int) error {
	switch {
	case code == http.StatusRequestTimeout,
		code == http.StatusTooManyRequests,
		code >= http.StatusInternalServerError:
		return services.ErrTransient
	default:
		return services.ErrSemanticRejection
	}
}

func snippet(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBody {
		text = text[:maxErrorBody] + "..."
	}
	return text
}

func (c *Client) timeoutDuration() time.Duration {
	if c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func (c *Client) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	base := c.retryBaseDelay
	if base < 0 {
		base = defaultRetryBaseDelay
	}
	maxDelay := c.retryMaxDelay
	if maxDelay <= 0 {
		maxDelay = defaultRetryMaxDelay
	}
	if attempt < 1 {
		attempt = 1
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxDelay {
			return maxDelay
		}
	}
	if delay > maxDelay {
		return maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
