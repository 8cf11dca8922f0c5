package apiclient

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

	"github.com/vidlens/backend/internal/events"
	"github.com/vidlens/backend/internal/logging"
	"github.com/vidlens/backend/internal/models"
)

const (
	// maxRetries bounds transient-error retries per logical request. The
	// 401 refresh-and-replay path is separate and not counted here.
	maxRetries = 3

	baseBackoff   = time.Second
	slowThreshold = 3 * time.Second
)

// ErrSessionExpired indicates the guest session could not be refreshed and
// a new login is required.
var ErrSessionExpired = errors.New("guest session expired")

// APIError describes a non-2xx upstream response.
type APIError struct {
	Status     int
	Message    string
	RetryAfter string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.Status, e.Message)
}

// TokenSource supplies and invalidates the persisted bearer token.
type TokenSource interface {
	Token() (string, bool)
	Clear()
}

// Refresher exchanges the current token for a fresh one, persisting it on
// success. The pipeline invokes it at most once per logical request.
type Refresher interface {
	RefreshToken(ctx context.Context, current string) (string, error)
}

// Client is the single configured request pipeline every upstream call goes
// through. Per request it attaches the bearer token, times the exchange,
// retries transient failures with exponential backoff, performs one
// refresh-and-replay on 401, and publishes quota/network notifications on
// the event bus.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    TokenSource
	refresher Refresher
	bus       *events.Bus
	perf      *PerfLog

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New constructs the pipeline client. perf and bus must not be nil; the
// refresher is attached afterwards via SetRefresher because the auth module
// that implements it is itself built on this client.
func New(baseURL string, timeout time.Duration, tokens TokenSource, bus *events.Bus, perf *PerfLog) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		bus:     bus,
		perf:    perf,
		sleep:   sleepContext,
		now:     time.Now,
	}
}

// SetRefresher wires the 401 refresh-and-replay collaborator.
func (c *Client) SetRefresher(r Refresher) {
	c.refresher = r
}

// WithSleepFunc overrides the backoff sleeper. Useful for tests.
func (c *Client) WithSleepFunc(sleep func(context.Context, time.Duration) error) *Client {
	c.sleep = sleep
	return c
}

// Get issues a GET request and decodes the response body into out when out
// is non-nil.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.Do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

// Post issues a POST request with a JSON body and decodes the response into
// out when out is non-nil.
func (c *Client) Post(ctx context.Context, path string, body any, out any) error {
	data, err := c.Do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	return decodeInto(data, out)
}

// Do runs one logical request through the full pipeline and returns the raw
// response body. The body value is marshalled once up front so retries and
// the 401 replay resend identical bytes.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
	}

	logger := logging.FromContext(ctx)

	attempt := 0
	refreshed := false
	for {
		data, exchErr := c.exchange(ctx, method, path, query, payload)
		if exchErr == nil {
			return data, nil
		}

		var apiErr *APIError
		isAPIErr := errors.As(exchErr, &apiErr)

		if attempt < maxRetries && retryable(exchErr) {
			delay := baseBackoff << attempt
			logger.Warn("retrying upstream request",
				"method", method, "path", path, "attempt", attempt+1, "delay", delay, "error", exchErr)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
			attempt++
			continue
		}

		if isAPIErr && apiErr.Status == http.StatusUnauthorized && !refreshed && c.refresher != nil {
			refreshed = true
			current, _ := c.tokens.Token()
			if _, err := c.refresher.RefreshToken(ctx, current); err != nil {
				c.tokens.Clear()
				logger.Warn("token refresh failed, session purged", "error", err)
				return nil, fmt.Errorf("%w: %v", ErrSessionExpired, err)
			}
			logger.Info("token refreshed, replaying request", "method", method, "path", path)
			continue
		}

		return nil, exchErr
	}
}

// exchange performs exactly one HTTP round trip: attach, stamp, dispatch,
// record. Notifications for quota and network failures are published here so
// every failing attempt surfaces, matching the per-rejection semantics of
// the original interceptor chain.
func (c *Client) exchange(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, &permanentError{fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := c.now()
	resp, err := c.http.Do(req)
	duration := c.now().Sub(start)

	if err != nil {
		c.perf.Append(models.PerformanceSample{
			URL:       fullURL,
			Method:    method,
			Duration:  duration,
			Timestamp: start,
			Error:     err.Error(),
		})
		c.bus.Publish(events.Event{
			Kind:    events.KindNetworkError,
			Message: "upstream is unreachable",
		})
		return nil, fmt.Errorf("dispatch %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(resp.Body)

	sample := models.PerformanceSample{
		URL:       fullURL,
		Method:    method,
		Status:    resp.StatusCode,
		Duration:  duration,
		Timestamp: start,
	}
	if readErr != nil {
		sample.Error = readErr.Error()
	}
	c.perf.Append(sample)

	if duration > slowThreshold {
		logging.FromContext(ctx).Warn("slow upstream request",
			"method", method, "path", path, "duration", duration)
	}

	if readErr != nil {
		return nil, fmt.Errorf("read response body: %w", readErr)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{
			Status:     resp.StatusCode,
			Message:    errorMessage(data, resp.StatusCode),
			RetryAfter: resp.Header.Get("Retry-After"),
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			c.bus.Publish(events.Event{
				Kind:       events.KindQuotaExceeded,
				Message:    apiErr.Message,
				RetryAfter: apiErr.RetryAfter,
			})
		}
		return nil, apiErr
	}

	return data, nil
}

// permanentError marks failures that resubmitting cannot fix, such as a
// malformed request URL.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// retryable reports whether the failure is worth resubmitting: a genuine
// transport error, or one of the transient HTTP statuses. Canceled or
// timed-out contexts and unbuildable requests fail immediately.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var permanent *permanentError
	if errors.As(err, &permanent) {
		return false
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		// No response at all.
		return true
	}
	switch apiErr.Status {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

func errorMessage(body []byte, status int) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return http.StatusText(status)
}

func decodeInto(data []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
