package category

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"newsfetcher/internal/schema"
)

// Build assembles a table from the three category sources published by the site.
//
// fromJS is the navigation tree ([{"url": ..., "child": [...]}, ...]); each
// URL contributes its last segment as slug and its segments from index 2 on
// as path. bonus is a list of category paths added verbatim under their last
// segment, overriding the tree. colors maps a section name to category ids.
func Build(fromJS, bonus, colors json.RawMessage) (*Table, error) {
	table := NewTable()

	tree, err := schema.DecodeArray("from_js", fromJS)
	if err != nil {
		return nil, err
	}

	urls, err := treeURLs("from_js", tree)
	if err != nil {
		return nil, err
	}

	for _, u := range urls {
		segments := strings.Split(u, "/")
		path := ""

		if len(segments) > 2 {
			path = strings.Join(segments[2:], "/")
		}

		table.BySlug[segments[len(segments)-1]] = path
	}

	extra, err := schema.StringListValue("bonus", bonus)
	if err != nil {
		return nil, err
	}

	for _, u := range extra {
		segments := strings.Split(u, "/")
		table.BySlug[segments[len(segments)-1]] = u
	}

	sections, err := schema.DecodeObject("colors", colors)
	if err != nil {
		return nil, err
	}

	for _, section := range sections.Keys() {
		raw, _ := sections.Raw(section)

		ids, err := schema.IntListValue(schema.Join("colors", section), raw)
		if err != nil {
			return nil, err
		}

		for _, id := range ids {
			table.ByID[id] = section
		}
	}

	return table, nil
}

// BuildFrom reads the three category sources and builds a table.
func BuildFrom(fromJS, bonus, colors io.Reader) (*Table, error) {
	inputs := make([]json.RawMessage, 0, 3)

	for _, r := range []io.Reader{fromJS, bonus, colors} {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read category input: %w", err)
		}

		inputs = append(inputs, data)
	}

	return Build(inputs[0], inputs[1], inputs[2])
}

func treeURLs(path string, elements []json.RawMessage) ([]string, error) {
	var urls []string

	for i, raw := range elements {
		el, err := schema.DecodeObject(schema.Index(path, i), raw)
		if err != nil {
			return nil, err
		}

		if el.Has("url") {
			u, err := el.String("url")
			if err != nil {
				return nil, err
			}

			urls = append(urls, u)
		}

		if el.Has("child") {
			childRaw, _ := el.Raw("child")

			children, err := schema.DecodeArray(schema.Join(el.Path(), "child"), childRaw)
			if err != nil {
				return nil, err
			}

			nested, err := treeURLs(schema.Join(el.Path(), "child"), children)
			if err != nil {
				return nil, err
			}

			urls = append(urls, nested...)
		}
	}

	return urls, nil
}
