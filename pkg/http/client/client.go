package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"
)

type Response struct {
	StatusCode int
	Body       []byte
}

type Interface interface {
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	headers    map[string]string
	limiter    *rate.Limiter
	newBackOff func() backoff.BackOff
}

var _ Interface = (*Client)(nil)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// Headers are sent on every request (e.g. the CDO "token" header).
	Headers map[string]string
	// Limiter is shared by every caller of this client. Nil means unlimited.
	Limiter *rate.Limiter
	// BackOff builds the retry policy for rate-limited responses.
	BackOff func() backoff.BackOff
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	// Zero selects the default; a negative count disables retries.
	switch {
	case opts.MaxRetries == 0:
		opts.MaxRetries = 3
	case opts.MaxRetries < 0:
		opts.MaxRetries = 0
	}

	if opts.BackOff == nil {
		opts.BackOff = func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.InitialInterval = time.Second
			bo.MaxElapsedTime = time.Minute
			return bo
		}
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		maxRetries: opts.MaxRetries,
		headers:    opts.Headers,
		limiter:    opts.Limiter,
		newBackOff: opts.BackOff,
	}
}

// Get issues a GET request. Responses with 429 or 503 are retried with
// backoff up to maxRetries times; the last such response is returned as-is
// once retries run out. Transport errors are returned immediately.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	var fullURL string
	if c.baseURL == "" {
		fullURL = path // If no base URL, treat path as full URL
	} else {
		fullURL = c.baseURL + path
	}
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var last *Response
	operation := func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(fmt.Errorf("waiting for rate limiter: %w", err))
			}
		}

		resp, err := c.do(ctx, fullURL)
		if err != nil {
			return backoff.Permanent(err)
		}
		last = resp

		if isRetryableStatus(resp.StatusCode) {
			return fmt.Errorf("rate limited: status %d", resp.StatusCode)
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), uint64(c.maxRetries)), ctx)
	if err := backoff.Retry(operation, bo); err != nil {
		if last != nil && isRetryableStatus(last.StatusCode) && ctx.Err() == nil {
			return last, nil
		}
		return nil, err
	}

	return last, nil
}

func (c *Client) do(ctx context.Context, fullURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		err := Body.Close()
		if err != nil {
			return
		}
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}

// IsTimeout reports whether err came from a request or context deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
