package source

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"newsfetcher/internal/category"
	"newsfetcher/internal/config"
	"newsfetcher/internal/crawler"
	"newsfetcher/internal/logger"
	"newsfetcher/internal/models"
	"newsfetcher/internal/wikipage"
)

// APISource reads the paginated JSON API of prostoprosport.ru.
type APISource struct {
	slug           string
	siteRoot       string
	client         *crawler.APIClient
	fetcher        *crawler.ArticleFetcher
	table          *category.Table
	categoriesFile string
	policy         category.Policy
	page     wikipage.Options
	log      *logger.Logger
}

// NewAPISource creates an API source resolving URLs through table. A nil
// table is loaded from cfg.CategoriesFile on the first FetchNews; a missing
// file then means an empty table.
func NewAPISource(cfg config.SourceConfig, table *category.Table, scraper *crawler.Scraper, log *logger.Logger) (*APISource, error) {
	policy, err := category.ParsePolicy(cfg.CategoryPolicy)
	if err != nil {
		return nil, err
	}

	log = log.With("source", cfg.Slug)

	return &APISource{
		slug:           cfg.Slug,
		siteRoot:       cfg.SiteURL,
		client:         crawler.NewAPIClient(scraper, cfg.APIURL, log),
		fetcher:        newArticleFetcher(cfg, scraper, log),
		table:          table,
		categoriesFile: cfg.CategoriesFile,
		policy:         policy,
		page: wikipage.Options{
			SourceTitle:      cfg.Title,
			CitationTemplate: cfg.CitationTemplate,
		},
		log: log,
	}, nil
}

// Slug implements Module.
func (s *APISource) Slug() string {
	return s.slug
}

// FetchNews implements Module. The category becomes a tag of the article
// together with every post tag that carries an id.
func (s *APISource) FetchNews(ctx context.Context, page int) ([]models.Article, error) {
	if err := s.loadTable(); err != nil {
		return nil, err
	}

	entries, err := s.client.FetchPage(ctx, page)
	if err != nil {
		return nil, err
	}

	articles := make([]models.Article, 0, len(entries))

	for _, entry := range entries {
		sourceURL, err := s.articleURL(entry)
		if err != nil {
			return nil, err
		}

		articles = append(articles, models.Article{
			SourceSlug: s.slug,
			SlugName:   entry.Name,
			Title:      entry.Title,
			Date:       entry.Date,
			SourceURL:  sourceURL,
			MiscData:   datatypes.JSON(entry.Raw),
			Tags:       entryTags(entry),
		})
	}

	return articles, nil
}

func (s *APISource) loadTable() error {
	if s.table != nil {
		return nil
	}

	table, found, err := category.LoadOptional(s.categoriesFile)
	if err != nil {
		return err
	}

	if !found {
		s.log.Warn("No categories file, unknown categories use the fallback path", "path", s.categoriesFile)
	}

	s.table = table

	return nil
}

func (s *APISource) articleURL(entry crawler.APIEntry) (string, error) {
	id := entry.CategoryID

	path, err := s.table.Resolve(entry.CategorySlug, &id, s.policy)
	if errors.Is(err, category.ErrUnresolved) {
		s.log.Warn("Category not resolved, article has no URL", "name", entry.Name, "category", entry.CategorySlug)
		return "", nil
	}

	if err != nil {
		return "", fmt.Errorf("failed to resolve category of %s: %w", entry.Name, err)
	}

	return category.ArticleURL(s.siteRoot, path, entry.Name), nil
}

func entryTags(entry crawler.APIEntry) []models.Tag {
	tags := []models.Tag{{TagID: entry.CategoryID, Title: entry.CategoryTitle}}
	seen := map[int]bool{entry.CategoryID: true}

	for _, tag := range entry.Tags {
		if tag.ID == nil || seen[*tag.ID] {
			continue
		}

		seen[*tag.ID] = true
		tags = append(tags, models.Tag{TagID: *tag.ID, Title: tag.Title})
	}

	return tags
}

// FetchArticle implements Module.
func (s *APISource) FetchArticle(ctx context.Context, a *models.Article) error {
	return fetchArticleBody(ctx, s.fetcher, a)
}

// WikiPage implements Module.
func (s *APISource) WikiPage(a *models.Article) (wikipage.Page, bool) {
	return articlePage(a, s.page)
}
