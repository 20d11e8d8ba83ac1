package main

import (
	"fmt"
	"io"
	"os"

	"newsfetcher/internal/news"
)

func isStdio(path string) bool {
	return path == "" || path == "-"
}

// openInput opens path for reading; "-" and "" mean stdin.
func (a *app) openInput(path string) (io.ReadCloser, error) {
	if isStdio(path) {
		return io.NopCloser(a.stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}

	return f, nil
}

// writeOutput hands a writer for path to write; "-" and "" mean stdout.
func (a *app) writeOutput(path string, write func(io.Writer) error) error {
	if isStdio(path) {
		return write(a.stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}

	return nil
}

func (a *app) readItems(path string) ([]news.Item, error) {
	in, err := a.openInput(path)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	items, err := news.DecodeBatch(in)
	if err != nil {
		return nil, fmt.Errorf("invalid news batch: %w", err)
	}

	return items, nil
}

func (a *app) writeItems(path string, items []news.Item) error {
	return a.writeOutput(path, func(w io.Writer) error {
		return news.EncodeBatch(w, items)
	})
}
