package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotest.tools/assert"

	"newsfetcher/internal/logger"
	"newsfetcher/internal/news"
)

func TestLivenessChecker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/live":
			return
		case "/post/moved":
			http.Redirect(w, r, "/live", http.StatusMovedPermanently)
			return
		case "/found":
			http.Redirect(w, r, "/live", http.StatusFound)
			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))

	checker := NewLivenessChecker(newTestScraper(), logger.Discard())
	ctx := context.Background()

	assert.Assert(t, checker.Check(ctx, server.URL+"/live"))
	assert.Assert(t, !checker.Check(ctx, server.URL+"/missing"))
	assert.Assert(t, !checker.Check(ctx, server.URL+"/post/moved"), "301 must count as dead")
	assert.Assert(t, !checker.Check(ctx, server.URL+"/found"), "302 must count as dead")

	closedURL := server.URL + "/live"
	server.Close()

	assert.Assert(t, !checker.Check(ctx, closedURL))
}

func TestItemCheckURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewLivenessChecker(newTestScraper(), logger.Discard())
	ctx := context.Background()

	noURL := news.Item{Name: "unresolved"}
	noURL.CheckURL(ctx, checker, true)
	assert.Assert(t, noURL.URLOK == nil)

	u := server.URL + "/gone"
	item := news.Item{Name: "gone", URL: &u}
	item.CheckURL(ctx, checker, false)
	assert.Assert(t, item.URLOK != nil && !*item.URLOK)

	ok := true
	item.URLOK = &ok
	item.CheckURL(ctx, checker, false)
	assert.Assert(t, *item.URLOK, "checked item must not be re-checked without force")

	item.CheckURL(ctx, checker, true)
	assert.Assert(t, !*item.URLOK)
}
