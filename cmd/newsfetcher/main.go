// Package main provides the newsfetcher command: a pipeline of JSON-artifact
// stages that turn the prostoprosport.ru news API into wiki pages.
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
	"newsfetcher/internal/logger"
)

// app carries what every subcommand needs.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

type command struct {
	usage string
	run   func(a *app, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"process-categories":  {"Build the category artifact from site dumps", (*app).processCategories},
	"fetch-news":          {"Fetch news from the API or a feed", (*app).fetchNews},
	"filter-fetched-news": {"Keep the news of one day", (*app).filterFetchedNews},
	"check-urls":          {"Check that article URLs are live", (*app).checkURLs},
	"fetch-news-pages":    {"Fetch article bodies as wikitext", (*app).fetchNewsPages},
	"generate-wiki-pages": {"Render wiki pages from fetched news", (*app).generateWikiPages},
	"write-config":        {"Write the effective configuration as YAML", (*app).writeConfig},
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
	log.Debug("Configuration loaded", "config", cfg.String())

	a := &app{
		cfg:    cfg,
		log:    log,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	if err := cmd.run(a, ctx, args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}

		log.Error("❌ Command failed", "error", err)
		return err
	}

	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: newsfetcher <command> [flags]")
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
	fmt.Fprintln(w, "File flags accept \"-\" (or nothing) for stdin/stdout.")
	fmt.Fprintln(w, "Environment: NEWSFETCHER_CONFIG, NEWSFETCHER_LOG_LEVEL.")
}
