package crawler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"

	"newsfetcher/internal/logger"
	"newsfetcher/internal/news"
)

// ErrEntryWithoutDate is returned for feed entries with neither a published
// nor an updated timestamp.
var ErrEntryWithoutDate = errors.New("feed entry has no date")

// FeedEntry is one item of an RSS or Atom feed.
type FeedEntry struct {
	Link       string
	Title      string
	Author     *string
	Date       time.Time
	Categories []string
	Raw        json.RawMessage
}

// Item converts the entry into a news item. The link serves as both the
// identity and the URL of the article.
func (e FeedEntry) Item() news.Item {
	link := e.Link
	tags := append([]string{}, e.Categories...)

	return news.Item{
		Name:       e.Link,
		Title:      e.Title,
		Date:       e.Date,
		TagTitles:  tags,
		URL:        &link,
		AuthorName: e.Author,
	}
}

// FeedClient reads RSS and Atom feeds.
type FeedClient struct {
	scraper *Scraper
	parser  *gofeed.Parser
	log     *logger.Logger
}

// NewFeedClient creates a feed client sharing the scraper's HTTP client.
func NewFeedClient(scraper *Scraper, log *logger.Logger) *FeedClient {
	return &FeedClient{
		scraper: scraper,
		parser:  gofeed.NewParser(),
		log:     log,
	}
}

// Fetch downloads and parses the feed at feedURL.
func (c *FeedClient) Fetch(ctx context.Context, feedURL string) ([]FeedEntry, error) {
	body, err := c.scraper.GetOK(ctx, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := c.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}

	c.log.Debug("Fetched feed", "url", feedURL, "title", feed.Title, "items", len(feed.Items))

	entries := make([]FeedEntry, 0, len(feed.Items))

	for i, item := range feed.Items {
		entry, err := convertFeedItem(item)
		if err != nil {
			return nil, fmt.Errorf("feed item %d (%s): %w", i, item.Link, err)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func convertFeedItem(item *gofeed.Item) (FeedEntry, error) {
	published := item.PublishedParsed
	if published == nil {
		published = item.UpdatedParsed
	}

	if published == nil {
		return FeedEntry{}, ErrEntryWithoutDate
	}

	raw, err := json.Marshal(item)
	if err != nil {
		return FeedEntry{}, fmt.Errorf("failed to keep raw entry: %w", err)
	}

	entry := FeedEntry{
		Link:       item.Link,
		Title:      item.Title,
		Date:       news.Naive(published.UTC()),
		Categories: item.Categories,
		Raw:        raw,
	}

	if item.Author != nil && item.Author.Name != "" {
		name := item.Author.Name
		entry.Author = &name
	}

	return entry, nil
}
