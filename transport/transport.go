package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"
)

// Error is an HTTP layer failure. Responses with a transient status are
// turned into an Error so the retry path triggers; other error statuses are
// handed back to the caller as a body instead.
type Error struct {
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("HTTP %d - %s", e.Status, e.Message)
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Transient() bool {
	if e.Status == http.StatusTooManyRequests || e.Status >= 500 {
		return true
	}
	return transientCause(e.Cause)
}

func transientCause(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.ECONNRESET, syscall.ETIMEDOUT, syscall.ENETUNREACH,
		syscall.EHOSTUNREACH, syscall.ECONNREFUSED,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}

// IsTransient reports whether a failed attempt may be retried.
func IsTransient(err error) bool {
	var te *Error
	if errors.As(err, &te) {
		return te.Transient()
	}
	return transientCause(err)
}

// Client is the retrying HTTP client shared by every external call. All
// callers reuse one keep-alive connection pool.
type Client struct {
	http    *http.Client
	apiKey  string
	timeout time.Duration
	retries int
	backoff time.Duration
	logger  *log.Logger
	sleep   func(time.Duration)
}

func NewClient(timeout time.Duration, retries int, backoff time.Duration, apiKey string, logger *log.Logger) *Client {
	if retries < 1 {
		retries = 1
	}
	return &Client{
		http: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        64,
				MaxIdleConnsPerHost: 64,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		apiKey:  apiKey,
		timeout: timeout,
		retries: retries,
		backoff: backoff,
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// Get issues a GET with the query attached and decodes the response body,
// error payloads included, into out.
func (c *Client) Get(ctx context.Context, rawUrl string, query url.Values, out interface{}) error {
	if len(query) > 0 {
		rawUrl = rawUrl + "?" + query.Encode()
	}
	body, err := c.Do(ctx, http.MethodGet, rawUrl, nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) Post(ctx context.Context, rawUrl string, payload interface{}, out interface{}) error {
	return c.PostHeaders(ctx, rawUrl, payload, out, nil)
}

func (c *Client) PostHeaders(ctx context.Context, rawUrl string, payload interface{}, out interface{}, headers map[string]string) error {
	requestJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	body, err := c.Do(ctx, http.MethodPost, rawUrl, requestJson, headers)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Do runs the request with a per attempt timeout and the retry/backoff
// policy. Only transient failures are retried; the delay before attempt k is
// backoff * 2^(k-2).
func (c *Client) Do(ctx context.Context, method, rawUrl string, payload []byte, headers map[string]string) ([]byte, error) {
	attempt := 0
	var lastErr error
	for attempt < c.retries {
		body, err := c.once(ctx, method, rawUrl, payload, headers)
		if err == nil {
			return body, nil
		}
		lastErr = err
		attempt++
		if attempt < c.retries && IsTransient(err) {
			backoff := c.backoff * time.Duration(1<<(attempt-1))
			c.logger.Printf("[retry %d/%d] %v, wait %s", attempt, c.retries, err, backoff)
			c.sleep(backoff)
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, method, rawUrl string, payload []byte, headers map[string]string) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(callCtx, method, rawUrl, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Cause: err, Message: err.Error()}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Cause: err, Message: err.Error()}
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &Error{Status: resp.StatusCode, Message: snippet(body)}
	}
	// Other error statuses are surfaced as their payload so the caller can
	// decide semantics from content.
	return body, nil
}

func snippet(body []byte) string {
	const max = 200
	if len(body) > max {
		body = body[:max]
	}
	return string(body)
}
