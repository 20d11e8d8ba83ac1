package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"newsfetcher/internal/logger"
	"newsfetcher/internal/news"
	"newsfetcher/internal/schema"
)

// APITag is a post tag attached to an API entry.
type APITag struct {
	ID    *int
	Title string
}

// APIEntry is one element of a news API page.
type APIEntry struct {
	Name          string
	Title         string
	Date          time.Time
	CategoryID    int
	CategorySlug  string
	CategoryTitle string
	Tags          []APITag
	Raw           json.RawMessage
}

// TagTitles returns the post tag titles in API order.
func (e APIEntry) TagTitles() []string {
	titles := make([]string, 0, len(e.Tags))
	for _, tag := range e.Tags {
		titles = append(titles, tag.Title)
	}

	return titles
}

// Item converts the entry into a news item without URL.
func (e APIEntry) Item() news.Item {
	id := e.CategoryID
	title := e.CategoryTitle

	return news.Item{
		Name:          e.Name,
		Title:         e.Title,
		CategoryID:    &id,
		CategorySlug:  e.CategorySlug,
		CategoryTitle: &title,
		Date:          e.Date,
		TagTitles:     e.TagTitles(),
	}
}

// APIClient reads paginated news listings from the site API.
type APIClient struct {
	scraper  *Scraper
	endpoint string
	log      *logger.Logger
}

// NewAPIClient creates a client for one API endpoint.
func NewAPIClient(scraper *Scraper, endpoint string, log *logger.Logger) *APIClient {
	return &APIClient{
		scraper:  scraper,
		endpoint: endpoint,
		log:      log,
	}
}

// FetchPage fetches and validates one listing page. Pages are numbered from 1.
func (c *APIClient) FetchPage(ctx context.Context, page int) ([]APIEntry, error) {
	query := url.Values{}
	query.Set("offset", "1")
	query.Set("page", strconv.Itoa(page))

	body, err := c.scraper.GetOK(ctx, c.endpoint, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch news page %d: %w", page, err)
	}

	entries, err := ParseEntries(body)
	if err != nil {
		return nil, fmt.Errorf("invalid news page %d: %w", page, err)
	}

	c.log.Debug("Fetched news page", "page", page, "entries", len(entries))

	return entries, nil
}

// FetchRange fetches pages first..last in order and concatenates them.
func (c *APIClient) FetchRange(ctx context.Context, first, last int) ([]APIEntry, error) {
	var entries []APIEntry

	total := last - first + 1
	progress := c.log.NewProgress("Page progress", total, 1)

	for page := first; page <= last; page++ {
		pageEntries, err := c.FetchPage(ctx, page)
		if err != nil {
			return nil, err
		}

		entries = append(entries, pageEntries...)

		progress.Step()
	}

	return entries, nil
}

// ParseEntries validates a listing page body.
func ParseEntries(body []byte) ([]APIEntry, error) {
	elements, err := schema.DecodeArray("", body)
	if err != nil {
		return nil, err
	}

	entries := make([]APIEntry, 0, len(elements))

	for i, raw := range elements {
		entry, err := parseEntry(schema.Index("", i), raw)
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)
	}

	return entries, nil
}

func parseEntry(path string, raw json.RawMessage) (APIEntry, error) {
	obj, err := schema.DecodeObject(path, raw)
	if err != nil {
		return APIEntry{}, err
	}

	entry := APIEntry{Raw: raw}

	if entry.Title, err = obj.String("post_title"); err != nil {
		return APIEntry{}, err
	}

	if entry.Name, err = obj.String("post_name"); err != nil {
		return APIEntry{}, err
	}

	postDate, err := obj.String("post_date")
	if err != nil {
		return APIEntry{}, err
	}

	if entry.Date, err = parsePostDate(postDate); err != nil {
		return APIEntry{}, &schema.ValidationError{
			Field:    schema.Join(path, "post_date"),
			Expected: "ISO-8601 date with a trailing zone designator",
			Actual:   strconv.Quote(postDate),
		}
	}

	tax, err := obj.String("tax")
	if err != nil {
		return APIEntry{}, err
	}

	if err := parseTax(schema.Join(path, "tax"), tax, &entry); err != nil {
		return APIEntry{}, err
	}

	return entry, nil
}

// parsePostDate drops the trailing zone designator ("Z") before parsing.
func parsePostDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, news.ErrInvalidDate
	}

	trimmed := []rune(s)

	return news.ParseDate(string(trimmed[:len(trimmed)-1]))
}

// parseTax decodes the taxonomy string: comma separated JSON objects keyed by
// taxonomy name. The last category entry wins; other taxonomies are ignored.
func parseTax(path, tax string, entry *APIEntry) error {
	terms, err := schema.DecodeArray(path, json.RawMessage("["+tax+"]"))
	if err != nil {
		return err
	}

	hasCategory := false

	for i, raw := range terms {
		term, err := schema.DecodeObject(schema.Index(path, i), raw)
		if err != nil {
			return err
		}

		switch {
		case term.Has("category"):
			cat, err := term.Object("category")
			if err != nil {
				return err
			}

			if entry.CategoryID, err = cat.IntOrString("id"); err != nil {
				return err
			}

			if entry.CategorySlug, err = cat.String("slug"); err != nil {
				return err
			}

			if entry.CategoryTitle, err = cat.String("name"); err != nil {
				return err
			}

			hasCategory = true
		case term.Has("post_tag"):
			postTag, err := term.Object("post_tag")
			if err != nil {
				return err
			}

			tag := APITag{}
			if tag.Title, err = postTag.String("name"); err != nil {
				return err
			}

			if postTag.Has("id") {
				id, err := postTag.IntOrString("id")
				if err != nil {
					return err
				}

				tag.ID = &id
			}

			entry.Tags = append(entry.Tags, tag)
		}
	}

	if !hasCategory {
		return &schema.ValidationError{Field: path, Expected: "category entry", Actual: schema.KindMissing}
	}

	return nil
}
