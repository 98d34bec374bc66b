// Package httpclient wraps the outbound HTTP transport behind a small
// interface so that discovery strategies and probes can be exercised with
// fakes in tests.
package httpclient

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

// ErrConnection marks transport-level failures (DNS, refused connections,
// timeouts). These are the retryable class of errors.
var ErrConnection = errors.New("connection failed")

// StatusError is returned for responses with a non-success HTTP status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// IsClientError reports whether the status is in the 4xx range.
func (e *StatusError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the raw Content-Type header value.
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Client is the HTTP capability consumed by the discovery engine.
type Client interface {
	Get(url string) (*Response, error)
}

// HTTPClient is the production Client backed by net/http.
type HTTPClient struct {
	client    *http.Client
	userAgent string
}

func New(userAgent string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// Get fetches url and returns the response with its body fully read. HTML
// bodies are transcoded to UTF-8 according to the declared charset so that
// downstream document queries always operate on UTF-8. Transport failures are
// wrapped in ErrConnection; non-2xx statuses yield a *StatusError.
func (c *HTTPClient) Get(url string) (*Response, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConnection, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	contentType := resp.Header.Get("Content-Type")

	// Feed XML keeps its declared encoding: the feed parser handles charsets
	// on its own and the declaration has to match the bytes it sees.
	if strings.Contains(contentType, "text/html") {
		reader, err := charset.NewReader(resp.Body, contentType)
		if err == nil {
			return io.ReadAll(reader)
		}
	}

	return io.ReadAll(resp.Body)
}
