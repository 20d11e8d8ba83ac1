package source

import (
	"context"
	"fmt"

	"newsfetcher/internal/logger"
	"newsfetcher/internal/models"
	"newsfetcher/internal/news"
	"newsfetcher/internal/pagestore"
	"newsfetcher/internal/wikipage"
)

// Archive is the storage the archiver reads and writes.
type Archive interface {
	EnsureSource(ctx context.Context, slug string) error
	InsertArticles(ctx context.Context, articles []models.Article) (int, error)
	Articles(ctx context.Context, sourceSlug string) ([]models.Article, error)
	SaveLiveness(ctx context.Context, a *models.Article) error
	SaveBody(ctx context.Context, a *models.Article) error
	SaveTargetUploadName(ctx context.Context, a *models.Article) error
}

// Stats counts what one archiver operation did.
type Stats struct {
	Operation string
	Source    string
	Total     int
	Changed   int
	Skipped   int
}

// Archiver runs the storage-backed operations against a source module.
type Archiver struct {
	archive       Archive
	checker       news.URLChecker
	log           *logger.Logger
	progressEvery int
}

// NewArchiver creates an archiver. checker is used for liveness checks.
func NewArchiver(archive Archive, checker news.URLChecker, log *logger.Logger, progressEvery int) *Archiver {
	return &Archiver{
		archive:       archive,
		checker:       checker,
		log:           log,
		progressEvery: progressEvery,
	}
}

// InsertNews fetches one page of m and stores the new articles.
// It returns the number of articles that were not stored before.
func (a *Archiver) InsertNews(ctx context.Context, m Module, page int) (int, error) {
	if err := a.archive.EnsureSource(ctx, m.Slug()); err != nil {
		return 0, err
	}

	articles, err := m.FetchNews(ctx, page)
	if err != nil {
		return 0, err
	}

	inserted, err := a.archive.InsertArticles(ctx, articles)
	if err != nil {
		return 0, err
	}

	a.log.Debug("Inserted news", "source", m.Slug(), "page", page, "fetched", len(articles), "inserted", inserted)

	return inserted, nil
}

// InsertPages runs InsertNews for pages first..last in order.
func (a *Archiver) InsertPages(ctx context.Context, m Module, first, last int) (Stats, error) {
	stats := Stats{Operation: "insert-news", Source: m.Slug()}
	progress := a.log.NewProgress("Page progress", last-first+1, 1)

	for page := first; page <= last; page++ {
		inserted, err := a.InsertNews(ctx, m, page)
		if err != nil {
			return stats, fmt.Errorf("page %d: %w", page, err)
		}

		stats.Total++
		stats.Changed += inserted

		progress.Step()
	}

	return stats, nil
}

// CheckURL checks the liveness of one article and saves the result.
// Articles already checked are skipped unless force is set, as are
// articles without URL. It reports whether the article was checked.
func (a *Archiver) CheckURL(ctx context.Context, article *models.Article, force bool) (bool, error) {
	if article.SourceURL == "" {
		return false, nil
	}

	if article.SourceURLOK != nil && !force {
		return false, nil
	}

	ok := a.checker.Check(ctx, article.SourceURL)
	article.SourceURLOK = &ok

	if err := a.archive.SaveLiveness(ctx, article); err != nil {
		return false, err
	}

	return true, nil
}

// CheckURLs checks the liveness of every article of m.
func (a *Archiver) CheckURLs(ctx context.Context, m Module, force bool) (Stats, error) {
	stats := Stats{Operation: "check-urls", Source: m.Slug()}

	articles, err := a.archive.Articles(ctx, m.Slug())
	if err != nil {
		return stats, err
	}

	progress := a.log.NewProgress("URL check progress", len(articles), a.progressEvery)

	for i := range articles {
		checked, err := a.CheckURL(ctx, &articles[i], force)
		if err != nil {
			return stats, err
		}

		stats.Total++
		if checked {
			stats.Changed++
		} else {
			stats.Skipped++
		}

		progress.Step()
	}

	return stats, nil
}

// FetchArticle fetches the body of one article through m and saves it.
// Articles whose URL is not known to be live are skipped.
func (a *Archiver) FetchArticle(ctx context.Context, m Module, article *models.Article) (bool, error) {
	if !article.Live() {
		return false, nil
	}

	if err := m.FetchArticle(ctx, article); err != nil {
		return false, err
	}

	if err := a.archive.SaveBody(ctx, article); err != nil {
		return false, err
	}

	return true, nil
}

// FetchArticles fetches the body of every live article of m.
func (a *Archiver) FetchArticles(ctx context.Context, m Module) (Stats, error) {
	stats := Stats{Operation: "fetch-articles", Source: m.Slug()}

	articles, err := a.archive.Articles(ctx, m.Slug())
	if err != nil {
		return stats, err
	}

	progress := a.log.NewProgress("Article progress", len(articles), a.progressEvery)

	for i := range articles {
		fetched, err := a.FetchArticle(ctx, m, &articles[i])
		if err != nil {
			return stats, err
		}

		stats.Total++
		if fetched {
			stats.Changed++
		} else {
			stats.Skipped++
		}

		progress.Step()
	}

	return stats, nil
}

// GeneratePages renders the wiki page of every fetched article of m into
// sink and records the page title on the article. It returns the index of
// page title to sink location.
func (a *Archiver) GeneratePages(ctx context.Context, m Module, sink pagestore.Store, botName string) (map[string]string, Stats, error) {
	stats := Stats{Operation: "generate-wiki-pages", Source: m.Slug()}
	index := map[string]string{}

	articles, err := a.archive.Articles(ctx, m.Slug())
	if err != nil {
		return nil, stats, err
	}

	for i := range articles {
		article := &articles[i]
		stats.Total++

		page, ok := m.WikiPage(article)
		if !ok {
			stats.Skipped++
			continue
		}

		name := fmt.Sprintf("%s-%d", m.Slug(), article.ArticleID)

		location, err := sink.Put(ctx, name, wikipage.Render(page, botName))
		if err != nil {
			return nil, stats, err
		}

		index[page.Title] = location

		title := page.Title
		article.TargetUploadName = &title

		if err := a.archive.SaveTargetUploadName(ctx, article); err != nil {
			return nil, stats, err
		}

		stats.Changed++
	}

	a.log.Info("Generated wiki pages", "source", m.Slug(), "pages", stats.Changed)

	return index, stats, nil
}
