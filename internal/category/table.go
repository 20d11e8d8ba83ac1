// Package category resolves the site path of a news article from its category.
//
// The lookup table maps category slugs to full paths and numeric category ids
// to a top-level section. It is loaded once per run from the category artifact
// and passed explicitly to whoever needs it.
package category

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"newsfetcher/internal/schema"
)

// FallbackPath is used for articles whose category is unknown.
const FallbackPath = "post"

// ErrUnresolved is returned by Resolve under PolicyStrict for unknown categories.
var (
	ErrUnresolved    = errors.New("category cannot be resolved")
	ErrInvalidPolicy = errors.New("category policy must be 'post' or 'strict'")
)

// Policy decides what happens when neither slug nor id is known.
type Policy int

const (
	// PolicyFallbackPost resolves unknown categories to FallbackPath.
	PolicyFallbackPost Policy = iota
	// PolicyStrict reports unknown categories as ErrUnresolved.
	PolicyStrict
)

// ParsePolicy parses the configuration spelling of a policy.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "post":
		return PolicyFallbackPost, nil
	case "strict":
		return PolicyStrict, nil
	}

	return PolicyFallbackPost, fmt.Errorf("%w: %q", ErrInvalidPolicy, s)
}

func (p Policy) String() string {
	if p == PolicyStrict {
		return "strict"
	}

	return "post"
}

// Table is the category lookup table.
type Table struct {
	ByID   map[int]string
	BySlug map[string]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		ByID:   map[int]string{},
		BySlug: map[string]string{},
	}
}

// Resolve returns the site path for an article category.
//
// A known slug wins. Otherwise a known id yields its section, followed by the
// slug unless the section already equals it. Anything else is handled by policy.
func (t *Table) Resolve(slug string, id *int, policy Policy) (string, error) {
	if path, ok := t.BySlug[slug]; ok {
		return path, nil
	}

	if id != nil {
		if section, ok := t.ByID[*id]; ok {
			if section == slug {
				return section, nil
			}

			return section + "/" + slug, nil
		}
	}

	if policy == PolicyStrict {
		return "", fmt.Errorf("%w: slug %q", ErrUnresolved, slug)
	}

	return FallbackPath, nil
}

// ArticleURL joins the site root, category path and article name.
func ArticleURL(siteRoot, path, name string) string {
	return strings.TrimRight(siteRoot, "/") + "/" + path + "/" + name
}

// Decode reads a category artifact.
//
// categories_by_slug is required; categories_by_id may be omitted. Keys of
// categories_by_id must be base-10 integers.
func Decode(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	obj, err := schema.DecodeObject("", data)
	if err != nil {
		return nil, err
	}

	table := NewTable()

	bySlug, err := obj.StringMap("categories_by_slug")
	if err != nil {
		return nil, err
	}

	table.BySlug = bySlug

	if !obj.Has("categories_by_id") {
		return table, nil
	}

	byID, err := obj.StringMap("categories_by_id")
	if err != nil {
		return nil, err
	}

	for key, section := range byID {
		id, convErr := strconv.Atoi(key)
		if convErr != nil {
			return nil, &schema.ValidationError{
				Field:    schema.Join("categories_by_id", key),
				Expected: "integer key",
				Actual:   strconv.Quote(key),
			}
		}

		table.ByID[id] = section
	}

	return table, nil
}

// Load reads a category artifact from a file.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open categories file: %w", err)
	}
	defer f.Close()

	table, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("invalid categories file %s: %w", path, err)
	}

	return table, nil
}

// LoadOptional reads a category artifact like Load, but an empty path or a
// missing file yields an empty table. found reports whether a file was read.
func LoadOptional(path string) (table *Table, found bool, err error) {
	if path == "" {
		return NewTable(), false, nil
	}

	table, err = Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return NewTable(), false, nil
	}

	if err != nil {
		return nil, false, err
	}

	return table, true, nil
}

// Encode writes the table in artifact form.
func (t *Table) Encode(w io.Writer) error {
	byID := make(map[string]string, len(t.ByID))
	for id, section := range t.ByID {
		byID[strconv.Itoa(id)] = section
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")

	artifact := struct {
		ByID   map[string]string `json:"categories_by_id"`
		BySlug map[string]string `json:"categories_by_slug"`
	}{ByID: byID, BySlug: t.BySlug}

	if err := enc.Encode(artifact); err != nil {
		return fmt.Errorf("failed to encode categories: %w", err)
	}

	return nil
}
