package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"newsfetcher/internal/config"
	"newsfetcher/pkg/utils"
)

var (
	// ErrUnexpectedStatusCode indicates an HTTP response with unexpected status.
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	// ErrResponseTooLarge indicates a body larger than the configured buffer.
	ErrResponseTooLarge = errors.New("response body exceeds buffer size")
)

// StatusError carries the status of a response the caller could not accept.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap lets errors.Is match ErrUnexpectedStatusCode.
func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatusCode
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Scraper performs HTTP requests over one shared transport so connections are
// reused for the whole run. HEAD requests never follow redirects.
type Scraper struct {
	client       *http.Client
	headClient   *http.Client
	headers      http.Header
	bufferSizeKb int
}

// NewScraper creates a new scraper instance with default config.
func NewScraper() *Scraper {
	return NewScraperWithConfig(config.DefaultHTTPConfig())
}

// NewScraperWithConfig creates a scraper from HTTP settings.
func NewScraperWithConfig(cfg config.HTTPConfig) *Scraper {
	return NewScraperWithClient(&http.Client{Timeout: cfg.Timeout()}, cfg.UserAgent, cfg.BufferSizeKb)
}

// NewScraperWithClient creates a scraper around an existing client.
func NewScraperWithClient(client *http.Client, userAgent string, bufferSizeKb int) *Scraper {
	headers := utils.NewHTTPHelper().BuildHeaders(map[string]string{
		"User-Agent": userAgent,
	})

	headClient := *client
	headClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Scraper{
		client:       client,
		headClient:   &headClient,
		headers:      headers,
		bufferSizeKb: bufferSizeKb,
	}
}

// Get fetches rawURL with optional query parameters and returns the response
// whatever its status.
func (s *Scraper) Get(ctx context.Context, rawURL string, query url.Values) (*Response, error) {
	target := rawURL

	if len(query) > 0 {
		u, err := url.Parse(rawURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse URL %s: %w", rawURL, err)
		}

		q := u.Query()
		for key, values := range query {
			for _, v := range values {
				q.Add(key, v)
			}
		}

		u.RawQuery = q.Encode()
		target = u.String()
	}

	return s.do(ctx, s.client, http.MethodGet, target)
}

// GetOK fetches rawURL and fails with *StatusError unless the server answers 200.
func (s *Scraper) GetOK(ctx context.Context, rawURL string, query url.Values) ([]byte, error) {
	resp, err := s.Get(ctx, rawURL, query)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	return resp.Body, nil
}

// Head issues a HEAD request and returns the status code. A redirect is
// reported as is.
func (s *Scraper) Head(ctx context.Context, rawURL string) (int, error) {
	resp, err := s.do(ctx, s.headClient, http.MethodHead, rawURL)
	if err != nil {
		return 0, err
	}

	return resp.StatusCode, nil
}

func (s *Scraper) do(ctx context.Context, client *http.Client, method, target string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range s.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, target, err)
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	limit := int64(s.bufferSizeKb) * 1024 // bufferSizeKb is in KB
	if limit > 0 {
		reader = io.LimitReader(resp.Body, limit+1)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if limit > 0 && int64(len(body)) > limit {
		return nil, fmt.Errorf("%s %s: %w (%d KB)", method, target, ErrResponseTooLarge, s.bufferSizeKb)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
