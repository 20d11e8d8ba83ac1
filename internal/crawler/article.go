package crawler

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"newsfetcher/internal/logger"
	"newsfetcher/internal/news"
	"newsfetcher/internal/wikitext"
	"newsfetcher/pkg/utils"
)

// Body is the result of fetching an article page.
type Body struct {
	Dead       bool
	AuthorName *string
	Paragraphs []string
}

// Selectors locate the parts of an article page.
type Selectors struct {
	Author           string
	Paragraph        string
	ReplaceableHosts []string
}

// ArticleFetcher downloads article pages and converts their paragraphs.
type ArticleFetcher struct {
	scraper     *Scraper
	selectors   Selectors
	replaceable map[string]bool
	strings     *utils.StringHelper
	log         *logger.Logger
}

// NewArticleFetcher creates a fetcher for one page layout.
func NewArticleFetcher(scraper *Scraper, selectors Selectors, log *logger.Logger) *ArticleFetcher {
	return &ArticleFetcher{
		scraper:     scraper,
		selectors:   selectors,
		replaceable: wikitext.HostSet(selectors.ReplaceableHosts),
		strings:     utils.NewStringHelper(),
		log:         log,
	}
}

// Fetch downloads rawURL. A 404 yields a dead body; any other non-200
// status is an error.
func (f *ArticleFetcher) Fetch(ctx context.Context, rawURL string) (*Body, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid article URL %s: %w", rawURL, err)
	}

	resp, err := f.scraper.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		f.log.Debug("Article is gone", "url", rawURL)
		return &Body{Dead: true}, nil
	default:
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	return f.Parse(resp.Body, base)
}

// Parse extracts author and paragraphs from an article page fetched from base.
func (f *ArticleFetcher) Parse(page []byte, base *url.URL) (*Body, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("failed to parse article HTML: %w", err)
	}

	body := &Body{Paragraphs: []string{}}

	if f.selectors.Author != "" {
		author := doc.Find(f.selectors.Author).First()
		if author.Length() > 0 {
			name := f.strings.NormalizeWhitespace(author.Text())
			body.AuthorName = &name
		}
	}

	rewrite := wikitext.HostRewriter(&url.URL{Scheme: base.Scheme, Host: base.Host}, f.replaceable)

	for _, node := range doc.Find(f.selectors.Paragraph).Nodes {
		text, err := wikitext.Convert(node, rewrite)
		if err != nil {
			return nil, fmt.Errorf("failed to convert paragraph: %w", err)
		}

		body.Paragraphs = append(body.Paragraphs, text)
	}

	return body, nil
}

// FetchItemBody fills author and paragraphs of a news item. Items already
// known to be dead are skipped; a 404 marks the item dead.
func FetchItemBody(ctx context.Context, f *ArticleFetcher, it *news.Item) error {
	if it.URL == nil {
		return fmt.Errorf("%w: %s", news.ErrMissingURL, it.Name)
	}

	if it.URLOK != nil && !*it.URLOK {
		return nil
	}

	body, err := f.Fetch(ctx, *it.URL)
	if err != nil {
		return err
	}

	if body.Dead {
		dead := false
		it.URLOK = &dead

		return nil
	}

	it.AuthorName = body.AuthorName
	it.WikitextParagraphs = body.Paragraphs

	return nil
}
