// Package wikipage assembles archival wiki pages from fetched articles.
package wikipage

import (
	"sort"
	"strings"
	"time"

	"newsfetcher/internal/news"
)

// Page holds everything rendered into one wiki page.
type Page struct {
	Title            string
	Date             time.Time
	Topics           []string
	Paragraphs       []string
	URL              string
	Author           *string
	SourceTitle      string
	CitationTemplate string
}

// Options names the templates a source renders with.
type Options struct {
	SourceTitle      string
	CitationTemplate string
}

// FromNewsItem builds a page for an API news item. Topics are the category
// title followed by the tags. Items without a fetched body or URL have no page.
func FromNewsItem(it news.Item, opts Options) (Page, bool) {
	if it.WikitextParagraphs == nil || it.URL == nil {
		return Page{}, false
	}

	return Page{
		Title:            it.Title,
		Date:             it.Date,
		Topics:           it.Topics(),
		Paragraphs:       it.WikitextParagraphs,
		URL:              *it.URL,
		Author:           it.AuthorName,
		SourceTitle:      opts.SourceTitle,
		CitationTemplate: opts.CitationTemplate,
	}, true
}

// SortedTopics returns a sorted copy of tags.
func SortedTopics(tags []string) []string {
	topics := append([]string{}, tags...)
	sort.Strings(topics)

	return topics
}

// Render produces the wikitext of the page, blocks separated by blank lines.
func Render(p Page, botName string) string {
	topics := strings.Join(p.Topics, "|")

	blocks := make([]string, 0, len(p.Paragraphs)+8)
	blocks = append(blocks,
		"{{дата|"+p.Date.Format("2006-01-02")+"}}",
		"{{тема|"+topics+"}}",
	)
	blocks = append(blocks, p.Paragraphs...)
	blocks = append(blocks,
		"{{-}}",
		"== Источники ==",
		citation(p),
		"{{Загружено ботом в архив|"+botName+"|"+p.SourceTitle+"}}",
		"{{Подвал новости}}",
		"{{Категории|"+topics+"}}",
	)

	return strings.Join(blocks, "\n\n")
}

func citation(p Page) string {
	var sb strings.Builder

	sb.WriteString("{{")
	sb.WriteString(p.CitationTemplate)
	sb.WriteString("|url=")
	sb.WriteString(p.URL)
	sb.WriteString("|title=")
	sb.WriteString(p.Title)

	if p.Author != nil {
		sb.WriteString("|author=")
		sb.WriteString(*p.Author)
	}

	sb.WriteString("}}")

	return sb.String()
}
