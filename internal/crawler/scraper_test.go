package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"gotest.tools/assert"

	"newsfetcher/internal/config"
)

func newTestScraper() *Scraper {
	cfg := config.DefaultHTTPConfig()
	cfg.UserAgent = "TestBot/1.0"

	return NewScraperWithConfig(cfg)
}

func TestScraperGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Header.Get("User-Agent"), "TestBot/1.0")
		assert.Equal(t, r.URL.Query().Get("page"), "3")
		assert.Equal(t, r.URL.Query().Get("keep"), "yes")
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	resp, err := newTestScraper().Get(context.Background(), server.URL+"/api/?keep=yes", url.Values{"page": {"3"}})
	assert.NilError(t, err)
	assert.Equal(t, resp.StatusCode, http.StatusOK)
	assert.Equal(t, string(resp.Body), "ok")
}

func TestScraperGetOKStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestScraper().GetOK(context.Background(), server.URL, nil)

	var statusErr *StatusError
	assert.Assert(t, errors.As(err, &statusErr))
	assert.Equal(t, statusErr.StatusCode, http.StatusBadGateway)
	assert.Assert(t, errors.Is(err, ErrUnexpectedStatusCode))
}

func TestScraperHead(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.Method, http.MethodHead)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	status, err := newTestScraper().Head(context.Background(), server.URL)
	assert.NilError(t, err)
	assert.Equal(t, status, http.StatusNoContent)
}

func TestScraperBufferLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer server.Close()

	_, err := NewScraperWithClient(server.Client(), "TestBot/1.0", 1).Get(context.Background(), server.URL, nil)
	assert.Assert(t, errors.Is(err, ErrResponseTooLarge))

	resp, err := NewScraperWithClient(server.Client(), "TestBot/1.0", 4).Get(context.Background(), server.URL, nil)
	assert.NilError(t, err)
	assert.Equal(t, len(resp.Body), 4096)
}

func TestScraperHeadKeepsRedirect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/post/foo" {
			http.Redirect(w, r, "/football/foo", http.StatusMovedPermanently)
			return
		}
	}))
	defer server.Close()

	scraper := newTestScraper()
	ctx := context.Background()

	status, err := scraper.Head(ctx, server.URL+"/post/foo")
	assert.NilError(t, err)
	assert.Equal(t, status, http.StatusMovedPermanently)

	// GET still follows redirects.
	resp, err := scraper.Get(ctx, server.URL+"/post/foo", nil)
	assert.NilError(t, err)
	assert.Equal(t, resp.StatusCode, http.StatusOK)
}
