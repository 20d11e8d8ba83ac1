// Package main provides the archiver command: source modules backed by a
// SQLite archive of articles.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"newsfetcher/internal/config"
	"newsfetcher/internal/crawler"
	"newsfetcher/internal/logger"
	"newsfetcher/internal/report"
	"newsfetcher/internal/source"
	"newsfetcher/internal/store"
)

type app struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *store.Store
	scraper  *crawler.Scraper
	archiver *source.Archiver
	stdout   io.Writer
	stderr   io.Writer
}

type command struct {
	usage string
	run   func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"insert-news":         {"Fetch news pages of a source into the archive", (*app).insertNews},
	"check-urls":          {"Check that archived article URLs are live", (*app).checkURLs},
	"fetch-articles":      {"Fetch bodies of live archived articles", (*app).fetchArticles},
	"generate-wiki-pages": {"Render wiki pages of fetched articles", (*app).generateWikiPages},
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	name := os.Args[1]
	if name == "-h" || name == "-help" || name == "help" {
		printUsage(os.Stdout)
		os.Exit(0)
	}

	cmd, ok := commands[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", name)
		printUsage(os.Stderr)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := run(ctx, name, cmd, os.Args[2:])

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, name string, cmd command, args []string) error {
	log := logger.NewLogger("info").WithRun(name)

	env, err := config.LoadEnv()
	if err != nil {
		log.Error("❌ Failed to read environment", "error", err)
		return err
	}

	cfg, err := config.Load(env)
	if err != nil {
		log.Error("❌ Failed to load config", "error", err)
		return err
	}

	log.SetLevel(cfg.Logging.Level)

	db, err := store.Open(env.DatabaseURL, log)
	if err != nil {
		log.Error("❌ Failed to open archive", "error", err)
		return err
	}
	defer db.Close()

	a := newApp(cfg, log, db)

	if err := cmd.run(a, ctx, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}

		log.Error("❌ Command failed", "error", err)

		return err
	}

	return nil
}

func newApp(cfg *config.Config, log *logger.Logger, db *store.Store) *app {
	scraper := crawler.NewScraperWithConfig(cfg.HTTP)
	checker := crawler.NewLivenessChecker(scraper, log)

	return &app{
		cfg:      cfg,
		log:      log,
		store:    db,
		scraper:  scraper,
		archiver: source.NewArchiver(db, checker, log, cfg.Logging.ProgressEvery),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
}

func (a *app) flagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)

	slug := fs.String("source", a.cfg.Sources[0].Slug, "Configured source to work on")

	return fs, slug
}

func (a *app) module(slug string) (source.Module, error) {
	cfg, err := a.cfg.Source(slug)
	if err != nil {
		return nil, err
	}

	return source.New(*cfg, a.scraper, a.log)
}

func (a *app) summary(stats source.Stats) {
	rows := [][]string{{
		stats.Operation,
		stats.Source,
		fmt.Sprint(stats.Total),
		fmt.Sprint(stats.Changed),
		fmt.Sprint(stats.Skipped),
	}}

	if err := report.WriteTable(a.stderr, []string{"Operation", "Source", "Total", "Changed", "Skipped"}, rows); err != nil {
		a.log.Warn("Failed to write summary", "error", err)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: archiver <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %-22s %s\n", name, commands[name].usage)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment: DATABASE_URL, NEWSFETCHER_CONFIG, NEWSFETCHER_LOG_LEVEL.")
}
