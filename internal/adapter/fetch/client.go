// Package fetch downloads remote inputs over HTTP with bounded retries.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/go-resty/resty/v2"

	"github.com/couchcryptid/county-strain-etl/internal/domain"
)

const (
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 10 * time.Second
)

// Client fetches source documents. Locations without a URL scheme are read
// from the local filesystem, which keeps offline runs and tests simple.
type Client struct {
	http    *resty.Client
	retries int
	backoff time.Duration
	logger  *slog.Logger
}

// NewClient creates a Client with a per-request timeout and the number of
// retries after the first attempt.
func NewClient(timeout time.Duration, retries int, logger *slog.Logger) *Client {
	c := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", "county-strain-etl")
	return &Client{http: c, retries: retries, backoff: initialBackoff, logger: logger}
}

// Get downloads the whole document at location.
func (c *Client) Get(ctx context.Context, source, location string) ([]byte, error) {
	if isLocal(location) {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, &domain.SourceFetchError{Source: source, URL: location, Err: err}
		}
		return data, nil
	}

	var body []byte
	err := c.withRetry(ctx, source, location, func() error {
		resp, err := c.http.R().SetContext(ctx).Get(location)
		if err != nil {
			return err
		}
		if err := statusError(resp.StatusCode()); err != nil {
			return err
		}
		body = resp.Body()
		return nil
	})
	if err != nil {
		return nil, &domain.SourceFetchError{Source: source, URL: location, Err: err}
	}
	return body, nil
}

// Open streams the document at location. The caller closes the reader.
func (c *Client) Open(ctx context.Context, source, location string) (io.ReadCloser, error) {
	if isLocal(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, &domain.SourceFetchError{Source: source, URL: location, Err: err}
		}
		return f, nil
	}

	var body io.ReadCloser
	err := c.withRetry(ctx, source, location, func() error {
		resp, err := c.http.R().SetContext(ctx).SetDoNotParseResponse(true).Get(location)
		if err != nil {
			return err
		}
		if err := statusError(resp.StatusCode()); err != nil {
			resp.RawBody().Close()
			return err
		}
		body = resp.RawBody()
		return nil
	})
	if err != nil {
		return nil, &domain.SourceFetchError{Source: source, URL: location, Err: err}
	}
	return body, nil
}

// permanentError marks a failure that retrying cannot fix.
type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code >= 500 || code == http.StatusTooManyRequests:
		return fmt.Errorf("unexpected status %d", code)
	default:
		return permanentError{fmt.Errorf("unexpected status %d", code)}
	}
}

func (c *Client) withRetry(ctx context.Context, source, location string, attempt func() error) error {
	backoff := c.backoff
	var err error
	for i := 0; i <= c.retries; i++ {
		if err = attempt(); err == nil {
			return nil
		}
		var perm permanentError
		if errors.As(err, &perm) || ctx.Err() != nil || i == c.retries {
			break
		}
		c.logger.Warn("fetch failed, retrying",
			"source", source, "url", location, "attempt", i+1, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return err
}

func isLocal(location string) bool {
	return !strings.Contains(location, "://")
}
