// Package source implements the news sources of the archiver and the
// operations run against them.
package source

import (
	"context"
	"fmt"

	"newsfetcher/internal/config"
	"newsfetcher/internal/crawler"
	"newsfetcher/internal/logger"
	"newsfetcher/internal/models"
	"newsfetcher/internal/wikipage"
)

// Module is a news source the archiver can ingest from.
type Module interface {
	// Slug names the source in the archive.
	Slug() string

	// FetchNews returns the articles listed on one page of the source.
	FetchNews(ctx context.Context, page int) ([]models.Article, error)

	// FetchArticle downloads the article body into a. Articles whose URL is
	// not known to be live are left untouched.
	FetchArticle(ctx context.Context, a *models.Article) error

	// WikiPage builds the wiki page of a, if it has a fetched body.
	WikiPage(a *models.Article) (wikipage.Page, bool)
}

// New builds the module described by cfg. API sources read their category
// table from cfg.CategoriesFile only when news are fetched.
func New(cfg config.SourceConfig, scraper *crawler.Scraper, log *logger.Logger) (Module, error) {
	switch cfg.Kind {
	case config.KindAPI:
		return NewAPISource(cfg, nil, scraper, log)
	case config.KindRSS:
		return NewRSSSource(cfg, scraper, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidSourceKind, cfg.Kind)
	}
}

func newArticleFetcher(cfg config.SourceConfig, scraper *crawler.Scraper, log *logger.Logger) *crawler.ArticleFetcher {
	return crawler.NewArticleFetcher(scraper, crawler.Selectors{
		Author:           cfg.AuthorSelector,
		Paragraph:        cfg.ParagraphSelector,
		ReplaceableHosts: cfg.ReplaceableHosts,
	}, log)
}

// fetchArticleBody is shared by both modules. A fetched author replaces the
// stored one only when the page names one.
func fetchArticleBody(ctx context.Context, f *crawler.ArticleFetcher, a *models.Article) error {
	if !a.Live() {
		return nil
	}

	body, err := f.Fetch(ctx, a.SourceURL)
	if err != nil {
		return fmt.Errorf("failed to fetch article %s: %w", a.SlugName, err)
	}

	if body.Dead {
		dead := false
		a.SourceURLOK = &dead

		return nil
	}

	if body.AuthorName != nil {
		a.AuthorName = body.AuthorName
	}

	a.WikitextParagraphs = body.Paragraphs

	return nil
}

// articlePage renders stored articles; topics are the sorted tag titles.
func articlePage(a *models.Article, opts wikipage.Options) (wikipage.Page, bool) {
	if a.WikitextParagraphs == nil || a.SourceURL == "" {
		return wikipage.Page{}, false
	}

	return wikipage.Page{
		Title:            a.Title,
		Date:             a.Date,
		Topics:           wikipage.SortedTopics(a.TagTitles()),
		Paragraphs:       a.WikitextParagraphs,
		URL:              a.SourceURL,
		Author:           a.AuthorName,
		SourceTitle:      opts.SourceTitle,
		CitationTemplate: opts.CitationTemplate,
	}, true
}
