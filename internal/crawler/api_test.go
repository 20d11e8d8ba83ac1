package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gotest.tools/assert"

	"newsfetcher/internal/logger"
	"newsfetcher/internal/news"
	"newsfetcher/internal/schema"
)

const pageOne = `[
	{
		"post_title": "Зенит обыграл Спартак",
		"post_name": "zenit-spartak",
		"post_date": "2023-05-02T18:30:00Z",
		"tax": "{\"category\": {\"id\": 7, \"slug\": \"rpl\", \"name\": \"РПЛ\"}}, {\"post_tag\": {\"id\": \"40\", \"name\": \"Зенит\"}}, {\"post_tag\": {\"name\": \"Спартак\"}}"
	},
	{
		"post_title": "Трансферные слухи",
		"post_name": "transfer-rumours",
		"post_date": "2023-05-02T09:00:00Z",
		"tax": "{\"category\": {\"id\": \"12\", \"slug\": \"transfers\", \"name\": \"Трансферы\"}}"
	}
]`

const pageTwo = `[
	{
		"post_title": "Итоги тура",
		"post_name": "round-summary",
		"post_date": "2023-05-01T21:15:00.250000Z",
		"tax": "{\"category\": {\"id\": 7, \"slug\": \"rpl\", \"name\": \"РПЛ\"}}"
	}
]`

func newPagedServer(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{"1": pageOne, "2": pageTwo}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Query().Get("offset"), "1")

		body, ok := pages[r.URL.Query().Get("page")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		_, _ = w.Write([]byte(body))
	}))
}

func TestFetchPage(t *testing.T) {
	server := newPagedServer(t)
	defer server.Close()

	client := NewAPIClient(newTestScraper(), server.URL+"/api/main_news/", logger.Discard())

	entries, err := client.FetchPage(context.Background(), 1)
	assert.NilError(t, err)
	assert.Equal(t, len(entries), 2)

	first := entries[0]
	assert.Equal(t, first.Name, "zenit-spartak")
	assert.Equal(t, first.CategoryID, 7)
	assert.Equal(t, first.CategorySlug, "rpl")
	assert.Equal(t, first.CategoryTitle, "РПЛ")
	assert.DeepEqual(t, first.TagTitles(), []string{"Зенит", "Спартак"})
	assert.Equal(t, *first.Tags[0].ID, 40)
	assert.Assert(t, first.Tags[1].ID == nil)
	assert.Assert(t, first.Date.Equal(time.Date(2023, 5, 2, 18, 30, 0, 0, time.UTC)))

	assert.Equal(t, entries[1].CategoryID, 12)

	item := first.Item()
	assert.Equal(t, *item.CategoryID, 7)
	assert.Equal(t, *item.CategoryTitle, "РПЛ")
	assert.Assert(t, item.URL == nil)
}

func TestFetchPageStatusIsFatal(t *testing.T) {
	server := newPagedServer(t)
	defer server.Close()

	client := NewAPIClient(newTestScraper(), server.URL, logger.Discard())

	_, err := client.FetchPage(context.Background(), 9)
	assert.Assert(t, errors.Is(err, ErrUnexpectedStatusCode))
}

func TestPaginationOrdering(t *testing.T) {
	server := newPagedServer(t)
	defer server.Close()

	client := NewAPIClient(newTestScraper(), server.URL, logger.Discard())
	ctx := context.Background()

	toItems := func(entries []APIEntry) []news.Item {
		items := make([]news.Item, 0, len(entries))
		for _, e := range entries {
			items = append(items, e.Item())
		}

		news.SortByDate(items)

		return items
	}

	forward, err := client.FetchRange(ctx, 1, 2)
	assert.NilError(t, err)

	two, err := client.FetchPage(ctx, 2)
	assert.NilError(t, err)
	one, err := client.FetchPage(ctx, 1)
	assert.NilError(t, err)

	a := toItems(forward)
	b := toItems(append(two, one...))

	assert.Equal(t, len(a), 3)
	assert.DeepEqual(t, a, b)

	for i := 1; i < len(a); i++ {
		assert.Assert(t, a[i-1].Date.Before(a[i].Date), "items %d and %d out of order", i-1, i)
	}
}

func TestParseEntriesValidation(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{
			name:  "not an array",
			body:  `{"error": "bad"}`,
			field: "",
		},
		{
			name:  "title is a number",
			body:  `[{"post_title": 1, "post_name": "a", "post_date": "2023-05-01T00:00:00Z", "tax": ""}]`,
			field: "[0].post_title",
		},
		{
			name:  "bad date",
			body:  `[{"post_title": "t", "post_name": "a", "post_date": "yesterday", "tax": ""}]`,
			field: "[0].post_date",
		},
		{
			name:  "missing category",
			body:  `[{"post_title": "t", "post_name": "a", "post_date": "2023-05-01T00:00:00Z", "tax": "{\"post_tag\": {\"name\": \"x\"}}"}]`,
			field: "[0].tax",
		},
		{
			name:  "broken tax",
			body:  `[{"post_title": "t", "post_name": "a", "post_date": "2023-05-01T00:00:00Z", "tax": "{\"category\": "}]`,
			field: "[0].tax",
		},
		{
			name:  "non-numeric category id",
			body:  `[{"post_title": "t", "post_name": "a", "post_date": "2023-05-01T00:00:00Z", "tax": "{\"category\": {\"id\": \"x\", \"slug\": \"s\", \"name\": \"n\"}}"}]`,
			field: "[0].tax[0].category.id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEntries([]byte(tt.body))

			var verr *schema.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}

			assert.Equal(t, verr.Field, tt.field)
		})
	}
}
