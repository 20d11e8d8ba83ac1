// Package news provides the NewsItem model shared by every pipeline stage.
package news

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"newsfetcher/internal/category"
	"newsfetcher/internal/schema"
)

// ErrMissingURL is returned when an operation needs the article URL but the
// item has none.
var ErrMissingURL = errors.New("news item has no URL")

// Item is one news article. Nil pointer fields are unknown; a nil
// WikitextParagraphs means the body was never fetched.
type Item struct {
	Name               string
	Title              string
	CategoryID         *int
	CategorySlug       string
	CategoryTitle      *string
	Date               time.Time
	TagTitles          []string
	URL                *string
	URLOK              *bool
	AuthorName         *string
	WikitextParagraphs []string
}

// ResolveURL computes the article URL from the category table when it is
// not known yet. It reports whether the item has a URL afterwards.
func (it *Item) ResolveURL(table *category.Table, policy category.Policy, siteRoot string) bool {
	if it.URL != nil {
		return true
	}

	path, err := table.Resolve(it.CategorySlug, it.CategoryID, policy)
	if err != nil {
		return false
	}

	u := category.ArticleURL(siteRoot, path, it.Name)
	it.URL = &u

	return true
}

// Topics returns the category title, when known, followed by the tag titles.
func (it *Item) Topics() []string {
	topics := make([]string, 0, len(it.TagTitles)+1)
	if it.CategoryTitle != nil {
		topics = append(topics, *it.CategoryTitle)
	}

	return append(topics, it.TagTitles...)
}

// wireItem fixes the key order of the artifact format.
type wireItem struct {
	Name               string    `json:"name"`
	Title              string    `json:"title"`
	CategoryID         *int      `json:"category_id"`
	CategorySlug       string    `json:"category_slug"`
	CategoryTitle      *string   `json:"category_title"`
	Date               string    `json:"date"`
	URL                *string   `json:"url"`
	TagTitles          []string  `json:"tag_titles"`
	AuthorName         *string   `json:"author_name,omitempty"`
	URLOK              *bool     `json:"url_ok,omitempty"`
	WikitextParagraphs *[]string `json:"wikitext_paragraphs,omitempty"`
}

// MarshalJSON encodes the item in artifact form.
func (it Item) MarshalJSON() ([]byte, error) {
	w := wireItem{
		Name:          it.Name,
		Title:         it.Title,
		CategoryID:    it.CategoryID,
		CategorySlug:  it.CategorySlug,
		CategoryTitle: it.CategoryTitle,
		Date:          FormatDate(it.Date),
		URL:           it.URL,
		TagTitles:     it.TagTitles,
		AuthorName:    it.AuthorName,
		URLOK:         it.URLOK,
	}

	if w.TagTitles == nil {
		w.TagTitles = []string{}
	}

	if it.WikitextParagraphs != nil {
		paragraphs := it.WikitextParagraphs
		w.WikitextParagraphs = &paragraphs
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(w); err != nil {
		return nil, err
	}

	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalJSON decodes and validates an item in artifact form.
func (it *Item) UnmarshalJSON(data []byte) error {
	decoded, err := Decode("", data)
	if err != nil {
		return err
	}

	*it = decoded

	return nil
}

// Decode validates raw as a news item located at path.
func Decode(path string, raw json.RawMessage) (Item, error) {
	obj, err := schema.DecodeObject(path, raw)
	if err != nil {
		return Item{}, err
	}

	var it Item

	if it.Name, err = obj.String("name"); err != nil {
		return Item{}, err
	}

	if it.Title, err = obj.String("title"); err != nil {
		return Item{}, err
	}

	if it.CategoryID, err = obj.OptionalInt("category_id"); err != nil {
		return Item{}, err
	}

	if it.CategorySlug, err = obj.String("category_slug"); err != nil {
		return Item{}, err
	}

	if it.CategoryTitle, err = obj.OptionalString("category_title"); err != nil {
		return Item{}, err
	}

	date, err := obj.String("date")
	if err != nil {
		return Item{}, err
	}

	if it.Date, err = ParseDate(date); err != nil {
		return Item{}, &schema.ValidationError{Field: schema.Join(path, "date"), Expected: "ISO-8601 date", Actual: fmt.Sprintf("%q", date)}
	}

	if it.URL, err = obj.NullableString("url"); err != nil {
		return Item{}, err
	}

	if it.TagTitles, err = obj.OptionalStringList("tag_titles"); err != nil {
		return Item{}, err
	}

	if it.TagTitles == nil {
		it.TagTitles = []string{}
	}

	if it.AuthorName, err = obj.OptionalString("author_name"); err != nil {
		return Item{}, err
	}

	if it.URLOK, err = obj.OptionalBool("url_ok"); err != nil {
		return Item{}, err
	}

	if it.WikitextParagraphs, err = obj.OptionalStringList("wikitext_paragraphs"); err != nil {
		return Item{}, err
	}

	return it, nil
}

// DecodeBatch reads a JSON array of news items. The first invalid item
// aborts the whole batch.
func DecodeBatch(r io.Reader) ([]Item, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read news items: %w", err)
	}

	elements, err := schema.DecodeArray("", data)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(elements))

	for i, raw := range elements {
		it, err := Decode(schema.Index("", i), raw)
		if err != nil {
			return nil, err
		}

		items = append(items, it)
	}

	return items, nil
}

// EncodeBatch writes items as an indented JSON array.
func EncodeBatch(w io.Writer, items []Item) error {
	if items == nil {
		items = []Item{}
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")

	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("failed to encode news items: %w", err)
	}

	return nil
}

// SortByDate orders items by ascending date, keeping the order of equal dates.
func SortByDate(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})
}

// FilterByDate returns the items published on the calendar date of day.
func FilterByDate(items []Item, day time.Time) []Item {
	filtered := make([]Item, 0, len(items))

	for _, it := range items {
		if SameDay(it.Date, day) {
			filtered = append(filtered, it)
		}
	}

	return filtered
}

// URLChecker reports whether a URL is reachable.
type URLChecker interface {
	Check(ctx context.Context, rawURL string) bool
}

// CheckURL records the liveness of the item URL. Items without a URL keep a
// nil result, and already checked items are left alone unless force is set.
func (it *Item) CheckURL(ctx context.Context, checker URLChecker, force bool) {
	if it.URL == nil {
		it.URLOK = nil
		return
	}

	if it.URLOK != nil && !force {
		return
	}

	ok := checker.Check(ctx, *it.URL)
	it.URLOK = &ok
}
