package source

import (
	"context"

	"gorm.io/datatypes"

	"newsfetcher/internal/config"
	"newsfetcher/internal/crawler"
	"newsfetcher/internal/logger"
	"newsfetcher/internal/models"
	"newsfetcher/internal/wikipage"
)

// RSSSource reads an RSS or Atom feed. Feeds are not paginated.
//
// Feed categories carry no ids, so RSS articles are stored without tags.
type RSSSource struct {
	slug    string
	feedURL string
	client  *crawler.FeedClient
	fetcher *crawler.ArticleFetcher
	page    wikipage.Options
	log     *logger.Logger
}

// NewRSSSource creates a feed source.
func NewRSSSource(cfg config.SourceConfig, scraper *crawler.Scraper, log *logger.Logger) *RSSSource {
	log = log.With("source", cfg.Slug)

	return &RSSSource{
		slug:    cfg.Slug,
		feedURL: cfg.FeedURL,
		client:  crawler.NewFeedClient(scraper, log),
		fetcher: newArticleFetcher(cfg, scraper, log),
		page: wikipage.Options{
			SourceTitle:      cfg.Title,
			CitationTemplate: cfg.CitationTemplate,
		},
		log: log,
	}
}

// Slug implements Module.
func (s *RSSSource) Slug() string {
	return s.slug
}

// FetchNews implements Module. The page is ignored; the link of each entry
// is both its slug and its URL.
func (s *RSSSource) FetchNews(ctx context.Context, page int) ([]models.Article, error) {
	if page > 1 {
		s.log.Warn("Feeds have a single page, page number ignored", "page", page)
	}

	entries, err := s.client.Fetch(ctx, s.feedURL)
	if err != nil {
		return nil, err
	}

	articles := make([]models.Article, 0, len(entries))
	for _, entry := range entries {
		articles = append(articles, models.Article{
			SourceSlug: s.slug,
			SlugName:   entry.Link,
			Title:      entry.Title,
			Date:       entry.Date,
			SourceURL:  entry.Link,
			AuthorName: entry.Author,
			MiscData:   datatypes.JSON(entry.Raw),
		})
	}

	return articles, nil
}

// FetchArticle implements Module.
func (s *RSSSource) FetchArticle(ctx context.Context, a *models.Article) error {
	return fetchArticleBody(ctx, s.fetcher, a)
}

// WikiPage implements Module.
func (s *RSSSource) WikiPage(a *models.Article) (wikipage.Page, bool) {
	return articlePage(a, s.page)
}
