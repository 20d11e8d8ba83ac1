// Package store persists archived articles in SQLite through GORM.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"newsfetcher/internal/logger"
	"newsfetcher/internal/models"
)

// ErrNoArticleID is returned when updating an article that was never stored.
var ErrNoArticleID = errors.New("article has no id")

// Store wraps the archive database.
type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the SQLite database at dsn and migrates the schema.
func Open(dsn string, log *logger.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}

	// SQLite allows one writer; a single connection also keeps
	// in-memory databases alive for the life of the store.
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Source{}, &models.Tag{}, &models.Article{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Debug("Database ready", "dsn", dsn)

	return &Store{db: db, log: log}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// EnsureSource creates the source record when it does not exist yet.
func (s *Store) EnsureSource(ctx context.Context, slug string) error {
	source := models.Source{SlugName: slug}

	if err := s.db.WithContext(ctx).FirstOrCreate(&source, models.Source{SlugName: slug}).Error; err != nil {
		return fmt.Errorf("failed to ensure source %s: %w", slug, err)
	}

	return nil
}

// InsertArticles stores articles in one transaction. Articles whose
// (source, slug) pair already exists are skipped. Tags of new articles are
// created as needed and linked. It returns the number of new articles.
func (s *Store) InsertArticles(ctx context.Context, articles []models.Article) (int, error) {
	inserted := 0

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range articles {
			article := &articles[i]
			tags := article.Tags
			article.Tags = nil

			result := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(article)
			if result.Error != nil {
				return fmt.Errorf("failed to insert article %s: %w", article.SlugName, result.Error)
			}

			if result.RowsAffected == 0 {
				s.log.Debug("Article already stored", "source", article.SourceSlug, "slug", article.SlugName)
				continue
			}

			inserted++

			if len(tags) == 0 {
				continue
			}

			if err := tx.Model(article).Association("Tags").Append(tags); err != nil {
				return fmt.Errorf("failed to link tags of %s: %w", article.SlugName, err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

// Articles returns the articles of a source with their tags, oldest first.
func (s *Store) Articles(ctx context.Context, sourceSlug string) ([]models.Article, error) {
	var articles []models.Article

	err := s.db.WithContext(ctx).
		Preload("Tags").
		Where("source_slug = ?", sourceSlug).
		Order("date, article_id").
		Find(&articles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load articles of %s: %w", sourceSlug, err)
	}

	return articles, nil
}

// SaveLiveness writes the liveness result of one article.
func (s *Store) SaveLiveness(ctx context.Context, article *models.Article) error {
	return s.update(ctx, article, "SourceURLOK")
}

// SaveBody writes the fetched author, paragraphs and liveness of one article.
func (s *Store) SaveBody(ctx context.Context, article *models.Article) error {
	return s.update(ctx, article, "AuthorName", "WikitextParagraphs", "SourceURLOK")
}

// SaveTargetUploadName records the wiki page title generated for an article.
func (s *Store) SaveTargetUploadName(ctx context.Context, article *models.Article) error {
	return s.update(ctx, article, "TargetUploadName")
}

func (s *Store) update(ctx context.Context, article *models.Article, fields ...string) error {
	if article.ArticleID == 0 {
		return ErrNoArticleID
	}

	columns := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		columns = append(columns, f)
	}

	err := s.db.WithContext(ctx).
		Model(article).
		Omit(clause.Associations).
		Select(fields[0], columns[1:]...).
		Updates(article).Error
	if err != nil {
		return fmt.Errorf("failed to update article %d: %w", article.ArticleID, err)
	}

	return nil
}
