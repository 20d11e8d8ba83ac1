// Package models defines the persistent records of the archiver.
package models

import (
	"sort"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Source is a news provider; articles are unique per source.
type Source struct {
	SlugName  string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// Tag is a provider tag or category. Ids come from the provider.
type Tag struct {
	TagID int    `gorm:"primaryKey;autoIncrement:false"`
	Title string `gorm:"not null"`
}

// Article is one archived news article.
//
// SourceURLOK is nil until checked. WikitextParagraphs is nil until the body
// is fetched and empty when the page had no paragraphs.
type Article struct {
	ArticleID          uint      `gorm:"primaryKey"`
	SourceSlug         string    `gorm:"not null;uniqueIndex:idx_article_source_slug"`
	Source             Source    `gorm:"foreignKey:SourceSlug;references:SlugName"`
	SlugName           string    `gorm:"not null;uniqueIndex:idx_article_source_slug"`
	Title              string    `gorm:"not null"`
	Date               time.Time `gorm:"not null;index"`
	SourceURL          string
	SourceURLOK        *bool `gorm:"column:source_url_ok"`
	AuthorName         *string
	WikitextParagraphs []string       `gorm:"serializer:json"`
	MiscData           datatypes.JSON `gorm:"not null"`
	Tags               []Tag          `gorm:"many2many:article_tags;joinForeignKey:ArticleID;joinReferences:TagID"`
	TargetUploadName   *string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// BeforeCreate stores an empty object when no provider payload was kept.
func (a *Article) BeforeCreate(_ *gorm.DB) error {
	if len(a.MiscData) == 0 {
		a.MiscData = datatypes.JSON("{}")
	}

	return nil
}

// TagTitles returns the titles of the loaded tags, sorted.
func (a *Article) TagTitles() []string {
	titles := make([]string, 0, len(a.Tags))
	for _, tag := range a.Tags {
		titles = append(titles, tag.Title)
	}

	sort.Strings(titles)

	return titles
}

// Live reports whether the source URL was checked and found reachable.
func (a *Article) Live() bool {
	return a.SourceURLOK != nil && *a.SourceURLOK
}
