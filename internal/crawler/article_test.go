package crawler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gotest.tools/assert"

	"newsfetcher/internal/config"
	"newsfetcher/internal/logger"
	"newsfetcher/internal/news"
)

const articlePage = `<html><body>
<div class="author"><form><button>
  Иван   Петров
</button></form></div>
<div class="page-content"><article>
<p>Матч завершился со счётом <strong>2:1</strong>.</p>
<p>Подробнее в <a href="/football/rpl/table">таблице</a>.<br>Смотрите <a href="https://old.example.com/video">видео</a>.</p>
<div><p>Не абзац статьи</p></div>
<p><img src="/photo.jpg"><script>track()</script>Конец</p>
</article></div>
</body></html>`

func newArticleServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/football/rpl/zenit-spartak":
			_, _ = w.Write([]byte(articlePage))
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestFetcher() *ArticleFetcher {
	return NewArticleFetcher(newTestScraper(), Selectors{
		Author:           config.DefaultAuthorSelector,
		Paragraph:        config.DefaultParagraphSelector,
		ReplaceableHosts: []string{"old.example.com"},
	}, logger.Discard())
}

func TestArticleFetcherFetch(t *testing.T) {
	server := newArticleServer(t)
	defer server.Close()

	body, err := newTestFetcher().Fetch(context.Background(), server.URL+"/football/rpl/zenit-spartak")
	assert.NilError(t, err)
	assert.Assert(t, !body.Dead)
	assert.Equal(t, *body.AuthorName, "Иван Петров")

	assert.DeepEqual(t, body.Paragraphs, []string{
		"Матч завершился со счётом '''2:1'''.",
		"Подробнее в [" + server.URL + "/football/rpl/table таблице].<br />Смотрите [" + server.URL + "/video видео].",
		"Конец",
	})
}

func TestArticleFetcherStatuses(t *testing.T) {
	server := newArticleServer(t)
	defer server.Close()

	fetcher := newTestFetcher()

	body, err := fetcher.Fetch(context.Background(), server.URL+"/gone")
	assert.NilError(t, err)
	assert.Assert(t, body.Dead)

	_, err = fetcher.Fetch(context.Background(), server.URL+"/broken")

	var statusErr *StatusError
	assert.Assert(t, errors.As(err, &statusErr))
	assert.Equal(t, statusErr.StatusCode, http.StatusInternalServerError)
}

func TestArticleFetcherWithoutAuthorSelector(t *testing.T) {
	fetcher := NewArticleFetcher(newTestScraper(), Selectors{Paragraph: "article > p"}, logger.Discard())

	server := newArticleServer(t)
	defer server.Close()

	body, err := fetcher.Fetch(context.Background(), server.URL+"/football/rpl/zenit-spartak")
	assert.NilError(t, err)
	assert.Assert(t, body.AuthorName == nil)
	assert.Equal(t, len(body.Paragraphs), 3)
}

func TestFetchItemBody(t *testing.T) {
	server := newArticleServer(t)
	defer server.Close()

	fetcher := newTestFetcher()
	ctx := context.Background()

	live := server.URL + "/football/rpl/zenit-spartak"
	item := news.Item{Name: "zenit-spartak", URL: &live}
	assert.NilError(t, FetchItemBody(ctx, fetcher, &item))
	assert.Equal(t, len(item.WikitextParagraphs), 3)
	assert.Assert(t, strings.Contains(*item.AuthorName, "Петров"))

	gone := server.URL + "/gone"
	deadItem := news.Item{Name: "gone", URL: &gone}
	assert.NilError(t, FetchItemBody(ctx, fetcher, &deadItem))
	assert.Assert(t, deadItem.URLOK != nil && !*deadItem.URLOK)
	assert.Assert(t, deadItem.WikitextParagraphs == nil)

	broken := server.URL + "/broken"
	notOK := false
	skipped := news.Item{Name: "broken", URL: &broken, URLOK: &notOK}
	assert.NilError(t, FetchItemBody(ctx, fetcher, &skipped))

	err := FetchItemBody(ctx, fetcher, &news.Item{Name: "no-url"})
	assert.Assert(t, errors.Is(err, news.ErrMissingURL))
}
