package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"

	"newsfetcher/internal/category"
	"newsfetcher/internal/config"
	"newsfetcher/internal/crawler"
	"newsfetcher/internal/news"
	"newsfetcher/internal/pagestore"
	"newsfetcher/internal/report"
	"newsfetcher/internal/wikipage"
)

var (
	errMissingFlag      = errors.New("required flag missing")
	errInvalidPages     = errors.New("pages must satisfy 1 <= first-page <= last-page")
	errInvalidAPIMethod = errors.New("api-method must be 'main_news' or 'news'")
)

var apiMethods = map[string]bool{"main_news": true, "news": true}

func (a *app) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	return fs
}

// source returns the configured source named slug, or the first source
// when slug is empty.
func (a *app) source(slug string) (*config.SourceConfig, error) {
	if slug == "" {
		return &a.cfg.Sources[0], nil
	}

	return a.cfg.Source(slug)
}

// apiEndpoint swaps the method segment of the configured API URL.
func apiEndpoint(apiURL, method string) (string, error) {
	if !apiMethods[method] {
		return "", fmt.Errorf("%w: %q", errInvalidAPIMethod, method)
	}

	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("invalid api_url %q: %w", apiURL, err)
	}

	u.Path = path.Join(path.Dir(strings.TrimSuffix(u.Path, "/")), method) + "/"

	return u.String(), nil
}

func (a *app) report(headers []string, rows [][]string) {
	if err := report.WriteTable(a.stderr, headers, rows); err != nil {
		a.log.Warn("Failed to write summary", "error", err)
	}
}

func (a *app) processCategories(_ context.Context, args []string) error {
	fs := a.flagSet("process-categories")
	fromJSFile := fs.String("input-from-js-file", "", "Category tree dumped from the site scripts")
	bonusFile := fs.String("input-bonus-file", "", "Additional category URLs")
	colorsFile := fs.String("input-colors-file", "", "Section to category ids mapping")
	outputFile := fs.String("output-file", "-", "Category artifact to write")

	if err := fs.Parse(args); err != nil {
		return err
	}

	inputs := []struct{ flag, path string }{
		{"-input-from-js-file", *fromJSFile},
		{"-input-bonus-file", *bonusFile},
		{"-input-colors-file", *colorsFile},
	}
	readers := make([]io.Reader, 0, len(inputs))

	for _, in := range inputs {
		if in.path == "" {
			return fmt.Errorf("%w: %s", errMissingFlag, in.flag)
		}

		f, err := os.Open(in.path)
		if err != nil {
			return fmt.Errorf("failed to open input: %w", err)
		}
		defer f.Close()

		readers = append(readers, f)
	}

	table, err := category.BuildFrom(readers[0], readers[1], readers[2])
	if err != nil {
		return err
	}

	a.log.Info("✅ Categories processed", "by_slug", len(table.BySlug), "by_id", len(table.ByID))

	return a.writeOutput(*outputFile, table.Encode)
}

func (a *app) fetchNews(ctx context.Context, args []string) error {
	fs := a.flagSet("fetch-news")
	firstPage := fs.Int("first-page", 1, "First API page to fetch")
	lastPage := fs.Int("last-page", 1, "Last API page to fetch")
	categoriesFile := fs.String("categories-file", "", "Category artifact (default: categories_file of the source)")
	outputFile := fs.String("output-file", "-", "News batch to write")
	checkURL := fs.Bool("check-url", false, "Check the liveness of every article URL")
	apiMethod := fs.String("api-method", "main_news", "API method: main_news or news")
	strict := fs.Bool("strict-categories", false, "Leave URLs of unknown categories empty instead of using /post/")
	sourceSlug := fs.String("source", "", "Configured source (default: the first source)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *firstPage < 1 || *lastPage < *firstPage {
		return fmt.Errorf("%w: %d..%d", errInvalidPages, *firstPage, *lastPage)
	}

	src, err := a.source(*sourceSlug)
	if err != nil {
		return err
	}

	scraper := crawler.NewScraperWithConfig(a.cfg.HTTP)

	var items []news.Item

	if src.Kind == config.KindRSS {
		if *lastPage > 1 {
			a.log.Warn("Feeds have a single page, page flags ignored", "source", src.Slug)
		}

		items, err = a.fetchFeedItems(ctx, scraper, src)
	} else {
		items, err = a.fetchAPIItems(ctx, scraper, src, apiOptions{
			firstPage:      *firstPage,
			lastPage:       *lastPage,
			method:         *apiMethod,
			categoriesFile: *categoriesFile,
			strict:         *strict,
		})
	}

	if err != nil {
		return err
	}

	news.SortByDate(items)

	if *checkURL {
		a.checkItems(ctx, scraper, items, false)
	}

	return a.writeItems(*outputFile, items)
}

type apiOptions struct {
	firstPage, lastPage int
	method              string
	categoriesFile      string
	strict              bool
}

func (a *app) fetchAPIItems(ctx context.Context, scraper *crawler.Scraper, src *config.SourceConfig, opts apiOptions) ([]news.Item, error) {
	endpoint, err := apiEndpoint(src.APIURL, opts.method)
	if err != nil {
		return nil, err
	}

	table, err := a.categories(opts.categoriesFile, src.CategoriesFile)
	if err != nil {
		return nil, err
	}

	policy, err := category.ParsePolicy(src.CategoryPolicy)
	if err != nil {
		return nil, err
	}

	if opts.strict {
		policy = category.PolicyStrict
	}

	a.log.Info("🚀 Fetching news", "endpoint", endpoint, "first_page", opts.firstPage, "last_page", opts.lastPage, "policy", policy.String())

	entries, err := crawler.NewAPIClient(scraper, endpoint, a.log).FetchRange(ctx, opts.firstPage, opts.lastPage)
	if err != nil {
		return nil, err
	}

	items := make([]news.Item, 0, len(entries))
	unresolved := 0

	for _, entry := range entries {
		it := entry.Item()
		if !it.ResolveURL(table, policy, src.SiteURL) {
			unresolved++

			a.log.Warn("Category not resolved", "name", it.Name, "category", it.CategorySlug)
		}

		items = append(items, it)
	}

	a.log.Info("✅ News fetched", "items", len(items), "unresolved", unresolved)

	return items, nil
}

func (a *app) fetchFeedItems(ctx context.Context, scraper *crawler.Scraper, src *config.SourceConfig) ([]news.Item, error) {
	a.log.Info("🚀 Fetching feed", "url", src.FeedURL)

	entries, err := crawler.NewFeedClient(scraper, a.log).Fetch(ctx, src.FeedURL)
	if err != nil {
		return nil, err
	}

	items := make([]news.Item, 0, len(entries))
	for _, entry := range entries {
		items = append(items, entry.Item())
	}

	a.log.Info("✅ News fetched", "items", len(items))

	return items, nil
}

// categories loads the table named by -categories-file, which must exist.
// Without the flag the source's file is used, and an absent file leaves every
// category unknown.
func (a *app) categories(flagPath, configured string) (*category.Table, error) {
	if flagPath != "" {
		return category.Load(flagPath)
	}

	table, found, err := category.LoadOptional(configured)
	if err != nil {
		return nil, err
	}

	if !found {
		a.log.Warn("No categories file, unknown categories use the fallback path", "path", configured)
	}

	return table, nil
}

func (a *app) filterFetchedNews(_ context.Context, args []string) error {
	fs := a.flagSet("filter-fetched-news")
	date := fs.String("date", "", "Day to keep, YYYY-MM-DD (default: keep every item)")
	inputFile := fs.String("input-file", "-", "News batch to read")
	outputFile := fs.String("output-file", "-", "News batch to write")

	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := a.readItems(*inputFile)
	if err != nil {
		return err
	}

	filtered := items

	if *date != "" {
		day, err := news.ParseDay(*date)
		if err != nil {
			return err
		}

		filtered = news.FilterByDate(items, day)
	}

	a.log.Info("✅ News filtered", "date", *date, "kept", len(filtered), "total", len(items))

	return a.writeItems(*outputFile, filtered)
}

func (a *app) checkURLs(ctx context.Context, args []string) error {
	fs := a.flagSet("check-urls")
	inputFile := fs.String("input-file", "-", "News batch to read")
	outputFile := fs.String("output-file", "-", "News batch to write")
	force := fs.Bool("force", false, "Check again items that were already checked")

	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := a.readItems(*inputFile)
	if err != nil {
		return err
	}

	a.checkItems(ctx, crawler.NewScraperWithConfig(a.cfg.HTTP), items, *force)

	return a.writeItems(*outputFile, items)
}

func (a *app) checkItems(ctx context.Context, scraper *crawler.Scraper, items []news.Item, force bool) {
	checker := crawler.NewLivenessChecker(scraper, a.log)
	progress := a.log.NewProgress("URL check progress", len(items), a.cfg.Logging.ProgressEvery)

	live, dead, unknown := 0, 0, 0

	for i := range items {
		items[i].CheckURL(ctx, checker, force)

		switch {
		case items[i].URLOK == nil:
			unknown++
		case *items[i].URLOK:
			live++
		default:
			dead++
		}

		progress.Step()
	}

	a.report([]string{"Live", "Dead", "Without URL"}, [][]string{{
		strconv.Itoa(live), strconv.Itoa(dead), strconv.Itoa(unknown),
	}})
}

func (a *app) fetchNewsPages(ctx context.Context, args []string) error {
	fs := a.flagSet("fetch-news-pages")
	inputFile := fs.String("input-file", "-", "News batch to read")
	outputFile := fs.String("output-file", "-", "News batch to write")
	sourceSlug := fs.String("source", "", "Configured source whose selectors apply (default: the first source)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	src, err := a.source(*sourceSlug)
	if err != nil {
		return err
	}

	items, err := a.readItems(*inputFile)
	if err != nil {
		return err
	}

	fetcher := crawler.NewArticleFetcher(crawler.NewScraperWithConfig(a.cfg.HTTP), crawler.Selectors{
		Author:           src.AuthorSelector,
		Paragraph:        src.ParagraphSelector,
		ReplaceableHosts: src.ReplaceableHosts,
	}, a.log)

	progress := a.log.NewProgress("Article progress", len(items), a.cfg.Logging.ProgressEvery)

	for i := range items {
		if err := crawler.FetchItemBody(ctx, fetcher, &items[i]); err != nil {
			return fmt.Errorf("item %s: %w", items[i].Name, err)
		}

		progress.Step()
	}

	a.log.Info("✅ Article bodies fetched", "items", len(items))

	return a.writeItems(*outputFile, items)
}

func (a *app) generateWikiPages(ctx context.Context, args []string) error {
	fs := a.flagSet("generate-wiki-pages")
	inputFile := fs.String("input-file", "-", "News batch to read")
	outputFile := fs.String("output-file", "-", "Index of page title to location to write")
	outputDirectory := fs.String("output-directory", a.cfg.Wiki.OutputDirectory, "Directory receiving one .txt file per page")
	botName := fs.String("bot-name", a.cfg.Wiki.BotName, "Bot named in the upload template")
	s3Bucket := fs.String("s3-bucket", a.cfg.Wiki.S3.Bucket, "Upload pages to this S3 bucket instead of a directory")
	s3Prefix := fs.String("s3-prefix", a.cfg.Wiki.S3.Prefix, "Key prefix of uploaded pages")
	sourceSlug := fs.String("source", "", "Configured source naming the templates (default: the first source)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	src, err := a.source(*sourceSlug)
	if err != nil {
		return err
	}

	items, err := a.readItems(*inputFile)
	if err != nil {
		return err
	}

	wiki := a.cfg.Wiki
	wiki.OutputDirectory = *outputDirectory
	wiki.S3.Bucket = *s3Bucket
	wiki.S3.Prefix = *s3Prefix

	sink, err := pagestore.Open(ctx, wiki)
	if err != nil {
		return err
	}

	opts := wikipage.Options{SourceTitle: src.Title, CitationTemplate: src.CitationTemplate}
	index := map[string]string{}
	skipped := 0

	for _, it := range items {
		page, ok := wikipage.FromNewsItem(it, opts)
		if !ok {
			skipped++

			a.log.Warn("No article body, page skipped", "name", it.Name)

			continue
		}

		location, err := sink.Put(ctx, it.Name, wikipage.Render(page, *botName))
		if err != nil {
			return err
		}

		index[page.Title] = location
	}

	a.report([]string{"Pages", "Skipped"}, [][]string{{strconv.Itoa(len(index)), strconv.Itoa(skipped)}})

	return a.writeOutput(*outputFile, func(w io.Writer) error {
		return pagestore.WriteIndex(w, index)
	})
}

func (a *app) writeConfig(_ context.Context, args []string) error {
	fs := a.flagSet("write-config")
	outputFile := fs.String("output-file", "", "YAML file to write")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *outputFile == "" {
		return fmt.Errorf("%w: -output-file", errMissingFlag)
	}

	if err := a.cfg.SaveConfig(*outputFile); err != nil {
		return err
	}

	a.log.Info("✅ Configuration written", "path", *outputFile, "sources", len(a.cfg.Sources))

	return nil
}
