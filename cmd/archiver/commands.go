package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"newsfetcher/internal/pagestore"
)

var errInvalidPages = errors.New("pages must satisfy 1 <= first-page <= last-page")

func (a *app) insertNews(ctx context.Context, args []string) error {
	fs, slug := a.flagSet("insert-news")
	firstPage := fs.Int("first-page", 1, "First page to fetch")
	lastPage := fs.Int("last-page", 1, "Last page to fetch")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *firstPage < 1 || *lastPage < *firstPage {
		return fmt.Errorf("%w: %d..%d", errInvalidPages, *firstPage, *lastPage)
	}

	m, err := a.module(*slug)
	if err != nil {
		return err
	}

	a.log.Info("🚀 Inserting news", "source", m.Slug(), "first_page", *firstPage, "last_page", *lastPage)

	stats, err := a.archiver.InsertPages(ctx, m, *firstPage, *lastPage)
	if err != nil {
		return err
	}

	a.summary(stats)

	return nil
}

func (a *app) checkURLs(ctx context.Context, args []string) error {
	fs, slug := a.flagSet("check-urls")
	force := fs.Bool("force", false, "Check again articles that were already checked")

	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := a.module(*slug)
	if err != nil {
		return err
	}

	stats, err := a.archiver.CheckURLs(ctx, m, *force)
	if err != nil {
		return err
	}

	a.summary(stats)

	return nil
}

func (a *app) fetchArticles(ctx context.Context, args []string) error {
	fs, slug := a.flagSet("fetch-articles")

	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := a.module(*slug)
	if err != nil {
		return err
	}

	stats, err := a.archiver.FetchArticles(ctx, m)
	if err != nil {
		return err
	}

	a.summary(stats)

	return nil
}

func (a *app) generateWikiPages(ctx context.Context, args []string) error {
	fs, slug := a.flagSet("generate-wiki-pages")
	botName := fs.String("bot-name", a.cfg.Wiki.BotName, "Bot named in the upload template")
	outputDirectory := fs.String("output-directory", a.cfg.Wiki.OutputDirectory, "Directory receiving one .txt file per page")
	outputFile := fs.String("output-file", "-", "Index of page title to location to write (- for stdout)")
	s3Bucket := fs.String("s3-bucket", a.cfg.Wiki.S3.Bucket, "Upload pages to this S3 bucket instead of a directory")
	s3Prefix := fs.String("s3-prefix", a.cfg.Wiki.S3.Prefix, "Key prefix of uploaded pages")

	if err := fs.Parse(args); err != nil {
		return err
	}

	m, err := a.module(*slug)
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

	index, stats, err := a.archiver.GeneratePages(ctx, m, sink, *botName)
	if err != nil {
		return err
	}

	a.summary(stats)

	return a.writeIndex(*outputFile, index)
}

func (a *app) writeIndex(path string, index map[string]string) error {
	if path == "" || path == "-" {
		return pagestore.WriteIndex(a.stdout, index)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	if err := pagestore.WriteIndex(f, index); err != nil {
		_ = f.Close()
		return err
	}

	return f.Close()
}
