package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"azure-devops-mcp-server/internal/domain"
)

const (
	// maxRetryInterval caps a single backoff delay.
	maxRetryInterval = 5 * time.Minute

	// maxErrorBody bounds how much of an error payload is kept.
	maxErrorBody = 4096

	continuationHeader = "x-ms-continuationtoken"
	sessionHeader      = "X-TFS-Session"
)

// RetryPolicy controls retries of transient failures. MaxRetries counts
// retries after the first attempt.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// DefaultRetryPolicy returns three retries starting at one second and
// doubling each time.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:    domain.DefaultMaxRetries,
		InitialDelay:  domain.DefaultDelayMs * time.Millisecond,
		BackoffFactor: domain.DefaultBackoffFactor,
	}
}

// RetryPolicyFromConfig converts the configuration section into a policy.
func RetryPolicyFromConfig(cfg domain.RetryConfig) RetryPolicy {
	policy := DefaultRetryPolicy()
	policy.MaxRetries = cfg.Retries()
	if cfg.DelayMs > 0 {
		policy.InitialDelay = time.Duration(cfg.DelayMs) * time.Millisecond
	}
	if cfg.BackoffFactor >= 1 {
		policy.BackoffFactor = cfg.BackoffFactor
	}
	return policy
}

func (p RetryPolicy) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.InitialDelay),
		backoff.WithMultiplier(p.BackoffFactor),
		backoff.WithRandomizationFactor(0),
		backoff.WithMaxInterval(maxRetryInterval),
		backoff.WithMaxElapsedTime(0),
	)
	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)
}

// DevOpsClient is the transport client for the Azure DevOps REST API.
// It implements domain.APIClient.
type DevOpsClient struct {
	baseURL        string
	apiVersion     string
	httpClient     *http.Client
	retry          RetryPolicy
	attemptTimeout time.Duration
	logger         domain.Logger
	redactor       *domain.Redactor
	observer       domain.Observer
	newTimer       func() backoff.Timer
}

// Option configures a DevOpsClient.
type Option func(*DevOpsClient)

// WithRetryPolicy sets the retry policy.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *DevOpsClient) { c.retry = policy }
}

// WithAttemptTimeout bounds each individual HTTP attempt.
func WithAttemptTimeout(timeout time.Duration) Option {
	return func(c *DevOpsClient) { c.attemptTimeout = timeout }
}

// WithLogger sets the structured logger.
func WithLogger(logger domain.Logger) Option {
	return func(c *DevOpsClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRedactor sets the redactor applied to traced URLs and error bodies.
func WithRedactor(redactor *domain.Redactor) Option {
	return func(c *DevOpsClient) {
		if redactor != nil {
			c.redactor = redactor
		}
	}
}

// WithObserver sets the observability sink.
func WithObserver(observer domain.Observer) Option {
	return func(c *DevOpsClient) {
		if observer != nil {
			c.observer = observer
		}
	}
}

// WithTimerFactory replaces the timer used between retries. Each call gets
// its own timer from the factory.
func WithTimerFactory(factory func() backoff.Timer) Option {
	return func(c *DevOpsClient) { c.newTimer = factory }
}

// NewDevOpsClient creates a new transport client.
// The baseURL is the organization root (e.g., "https://dev.azure.com/contoso").
// The httpClient should be an authenticated client from the AuthenticationManager.
func NewDevOpsClient(baseURL, apiVersion string, httpClient *http.Client, opts ...Option) *DevOpsClient {
	if apiVersion == "" {
		apiVersion = domain.DefaultAPIVersion
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &DevOpsClient{
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiVersion:     apiVersion,
		httpClient:     httpClient,
		retry:          DefaultRetryPolicy(),
		attemptTimeout: domain.DefaultTimeout,
		logger:         domain.NopLogger(),
		redactor:       domain.NewRedactor(),
		observer:       domain.NoopObserver(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured organization URL.
func (c *DevOpsClient) BaseURL() string {
	return c.baseURL
}

// Call executes one logical request. Transient failures (network errors,
// attempt timeouts, 429 and 5xx) are retried with exponential backoff;
// everything else is returned after the first attempt.
func (c *DevOpsClient) Call(ctx context.Context, endpoint domain.Endpoint, params domain.RequestParams) (*domain.RawResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	method := endpoint.Method
	if method == "" {
		method = http.MethodGet
	}

	reqURL := c.buildURL(endpoint, params.Query)

	var body []byte
	if params.Body != nil {
		var err error
		body, err = json.Marshal(params.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	correlationID := uuid.NewString()
	attempt := 0

	operation := func() (*domain.RawResult, error) {
		attempt++
		result, err := c.do(ctx, method, reqURL, endpoint.Path, body, params.ContentType, attempt, correlationID)
		if err != nil && !isRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return result, err
	}

	notify := func(err error, delay time.Duration) {
		c.logger.Warn("retrying upstream call", map[string]interface{}{
			"method":         method,
			"url":            c.redactor.Redact(reqURL),
			"attempt":        attempt,
			"delay_ms":       delay.Milliseconds(),
			"error":          c.redactor.Redact(err.Error()),
			"correlation_id": correlationID,
		})
		c.observer.ObserveRetry(domain.RetryObservation{
			Method:  method,
			Path:    endpoint.Path,
			Attempt: attempt,
			Delay:   delay,
			Err:     err,
		})
	}

	var timer backoff.Timer
	if c.newTimer != nil {
		timer = c.newTimer()
	}

	return backoff.RetryNotifyWithTimerAndData(operation, c.retry.newBackOff(ctx), notify, timer)
}

// do performs a single HTTP attempt.
func (c *DevOpsClient) do(ctx context.Context, method, reqURL, path string, body []byte, contentType string, attempt int, correlationID string) (*domain.RawResult, error) {
	attemptCtx := ctx
	if c.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		defer cancel()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(attemptCtx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(sessionHeader, correlationID)
	if body != nil {
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("upstream request", map[string]interface{}{
		"method":         method,
		"url":            c.redactor.Redact(reqURL),
		"attempt":        attempt,
		"correlation_id": correlationID,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, path, attempt, 0, start, err, correlationID)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(method, path, attempt, resp.StatusCode, start, err, correlationID)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}
		// Attempt timeout or a connection dropped mid-body.
		return nil, &readError{err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := c.httpError(resp, data)
		c.observe(method, path, attempt, resp.StatusCode, start, httpErr, correlationID)
		return nil, httpErr
	}

	c.observe(method, path, attempt, resp.StatusCode, start, nil, correlationID)
	return parseResult(resp, data)
}

func (c *DevOpsClient) observe(method, path string, attempt, status int, start time.Time, err error, correlationID string) {
	duration := time.Since(start)
	fields := map[string]interface{}{
		"method":         method,
		"path":           path,
		"attempt":        attempt,
		"status":         status,
		"duration_ms":    duration.Milliseconds(),
		"correlation_id": correlationID,
	}
	if err != nil {
		fields["error"] = c.redactor.Redact(err.Error())
	}
	c.logger.Debug("upstream response", fields)

	c.observer.ObserveCall(domain.CallObservation{
		Method:        method,
		Path:          path,
		Attempt:       attempt,
		StatusCode:    status,
		Duration:      duration,
		Err:           err,
		CorrelationID: correlationID,
	})
}

// buildURL joins organization, optional project scope, the `_apis` root and
// the resource path, and pins the API version.
func (c *DevOpsClient) buildURL(endpoint domain.Endpoint, query url.Values) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	if endpoint.Project != "" {
		b.WriteString("/")
		b.WriteString(url.PathEscape(endpoint.Project))
	}
	b.WriteString("/_apis/")
	b.WriteString(strings.TrimLeft(endpoint.Path, "/"))

	values := url.Values{}
	for k, v := range query {
		values[k] = append([]string(nil), v...)
	}
	values.Set("api-version", c.apiVersion)

	b.WriteString("?")
	b.WriteString(values.Encode())
	return b.String()
}

// httpError builds the typed error for a non-2xx response.
func (c *DevOpsClient) httpError(resp *http.Response, data []byte) domain.HTTPError {
	body := string(data)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	httpErr := domain.NewHTTPError(resp.StatusCode, "", c.redactor.Redact(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		httpErr.Hint = "Verify that the personal access token is valid and has not expired."
	case http.StatusForbidden:
		httpErr.Hint = "The personal access token may lack the scope required for this resource."
	case http.StatusTooManyRequests:
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			httpErr.Hint = fmt.Sprintf("The service asked to retry after %s seconds.", retryAfter)
		}
	}
	return httpErr
}

// readError is a failure while reading a response body whose caller is
// still waiting.
type readError struct {
	err error
}

func (e *readError) Error() string {
	return "failed to read response: " + e.err.Error()
}

func (e *readError) Unwrap() error {
	return e.err
}

// isRetryable reports whether a failed attempt may be retried.
func isRetryable(err error) bool {
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == http.StatusTooManyRequests || httpErr.StatusCode >= 500
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var readErr *readError
	if errors.As(err, &readErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// parseResult normalizes the two list shapes of the API: `{count, value[]}`
// envelopes and raw arrays.
func parseResult(resp *http.Response, data []byte) (*domain.RawResult, error) {
	result := &domain.RawResult{
		StatusCode:        resp.StatusCode,
		ContinuationToken: resp.Header.Get(continuationHeader),
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return result, nil
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("failed to decode response: invalid JSON from %s", resp.Request.URL.Path)
	}
	result.Body = json.RawMessage(trimmed)

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		result.Items = items
		result.IsList = true
	case '{':
		var envelope struct {
			Count *int            `json:"count"`
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err == nil && envelope.Count != nil {
			value := bytes.TrimSpace(envelope.Value)
			if len(value) > 0 && value[0] == '[' {
				var items []json.RawMessage
				if err := json.Unmarshal(value, &items); err != nil {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				result.Items = items
				result.IsList = true
			}
		}
	}

	if result.IsList && result.Items == nil {
		result.Items = []json.RawMessage{}
	}
	return result, nil
}
