// Package pagestore writes rendered wiki pages to a directory or an S3 bucket.
package pagestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotDirectory is returned when the output directory is missing or is a file.
var ErrNotDirectory = errors.New("output directory does not exist")

// Store receives page texts and reports where each one ended up.
type Store interface {
	Put(ctx context.Context, name, text string) (string, error)
}

var unsafeNameChars = strings.NewReplacer(
	"/", "_", "\\", "_", ":", "_", "?", "_", "*", "_",
	"\"", "_", "<", "_", ">", "_", "|", "_", "\x00", "_",
)

// FileName turns a page name into a safe file name with the .txt suffix.
func FileName(name string) string {
	safe := unsafeNameChars.Replace(name)
	if safe == "" || safe == "." || safe == ".." {
		safe = "_" + safe
	}

	return safe + ".txt"
}

// DirStore writes each page to <dir>/<name>.txt.
type DirStore struct {
	dir string
}

// NewDirStore creates a store for an existing directory.
func NewDirStore(dir string) (*DirStore, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	return &DirStore{dir: dir}, nil
}

// Put writes the page and returns its path.
func (s *DirStore) Put(_ context.Context, name, text string) (string, error) {
	path := filepath.Join(s.dir, FileName(name))

	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", fmt.Errorf("failed to write page %s: %w", path, err)
	}

	return path, nil
}

// WriteIndex writes the title to location index as indented JSON.
func WriteIndex(w io.Writer, index map[string]string) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")

	if err := enc.Encode(index); err != nil {
		return fmt.Errorf("failed to write page index: %w", err)
	}

	return nil
}
