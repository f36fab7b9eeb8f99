package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/teranos/wbwatch/errors"
	"github.com/teranos/wbwatch/logger"
)

// Doer is satisfied by *SaferClient and *http.Client
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RetryConfig configures RetryClient
type RetryConfig struct {
	MaxAttempts int           // total attempts, including the first
	Backoff     time.Duration // sleep after attempt n is Backoff * n
	UserAgent   string
}

// Response is a fully read HTTP response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// RetryClient performs requests with bounded retry and linear backoff.
//
// Only transport failures (connection errors, timeouts, truncated bodies) are
// retried. Any response that arrives, whatever its status, is returned as-is
// for the caller to classify. An error is returned only once every attempt
// has failed, and it always wraps errors.ErrTransport.
type RetryClient struct {
	doer   Doer
	cfg    RetryConfig
	logger *zap.SugaredLogger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewRetryClient creates a retrying client around doer
func NewRetryClient(doer Doer, cfg RetryConfig, log *zap.SugaredLogger) *RetryClient {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryClient{
		doer:   doer,
		cfg:    cfg,
		logger: logger.OrNop(log),
		sleep:  sleepContext,
	}
}

// SetSleep replaces the backoff sleeper (for tests)
func (c *RetryClient) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	c.sleep = fn
}

// Get issues a GET with params encoded into the query string
func (c *RetryClient) Get(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + params.Encode()
	}
	return c.Do(ctx, http.MethodGet, rawURL, nil, nil)
}

// PostJSON issues a POST with payload encoded as JSON
func (c *RetryClient) PostJSON(ctx context.Context, rawURL string, payload interface{}) (*Response, error) {
	body, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode payload")
	}
	header := http.Header{"Content-Type": []string{"application/json"}}
	return c.Do(ctx, http.MethodPost, rawURL, body, header)
}

// Do issues a request, retrying transport failures
func (c *RetryClient) Do(ctx context.Context, method, rawURL string, body []byte, header http.Header) (*Response, error) {
	target := loggableURL(rawURL)
	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		resp, err := c.attempt(ctx, method, rawURL, body, header)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		c.logger.Warnw("request attempt failed",
			logger.FieldMethod, method,
			logger.FieldURL, target,
			logger.FieldAttempt, attempt,
			logger.FieldError, err.Error(),
		)

		if attempt == c.cfg.MaxAttempts {
			break
		}
		wait := c.cfg.Backoff * time.Duration(attempt)
		if err := c.sleep(ctx, wait); err != nil {
			lastErr = err
			break
		}
	}

	c.logger.Errorw("request failed after retries",
		logger.FieldMethod, method,
		logger.FieldURL, target,
		logger.FieldAttempt, c.cfg.MaxAttempts,
		logger.FieldError, lastErr.Error(),
	)
	return nil, errors.WithSecondaryError(
		errors.Wrapf(errors.ErrTransport, "%s %s", method, target),
		lastErr,
	)
}

func (c *RetryClient) attempt(ctx context.Context, method, rawURL string, body []byte, header http.Header) (*Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// loggableURL drops the query string and hides webhook and bot tokens.
func loggableURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	path := u.Path
	if i := strings.Index(path, "/webhooks/"); i >= 0 {
		path = path[:i] + "/webhooks/****"
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, "bot") && strings.Contains(seg, ":") {
			segments[i] = "bot****"
		}
	}
	return u.Scheme + "://" + u.Host + strings.Join(segments, "/")
}
