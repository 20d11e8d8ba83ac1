package wikitext

import (
	"errors"
	"net/url"
	"testing"

	"gotest.tools/assert"
)

func TestHostRewriter(t *testing.T) {
	base, err := url.Parse("https://prostoprosport.ru/football/news/foo")
	assert.NilError(t, err)

	rewrite := HostRewriter(base, HostSet([]string{"old.prostoprosport.ru"}))

	tests := []struct {
		name     string
		href     string
		expected string
	}{
		{"absolute path", "/hockey/news/bar", "https://prostoprosport.ru/hockey/news/bar"},
		{"relative path with query", "news/a?x=1#f", "https://prostoprosport.ru/news/a?x=1#f"},
		{"replaceable host", "http://old.prostoprosport.ru/x", "https://prostoprosport.ru/x"},
		{"foreign host untouched", "https://www.championat.com/a", "https://www.championat.com/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rewrite(tt.href)
			assert.NilError(t, err)
			assert.Equal(t, got, tt.expected)
		})
	}
}

func TestHostRewriterRejects(t *testing.T) {
	base, err := url.Parse("https://prostoprosport.ru")
	assert.NilError(t, err)

	rewrite := HostRewriter(base, nil)

	for _, href := range []string{"", "   ", "mailto:editor@prostoprosport.ru", "javascript:void(0)", "http://[::1"} {
		_, err := rewrite(href)
		if !errors.Is(err, ErrUnsupportedLink) {
			t.Errorf("rewrite(%q): expected ErrUnsupportedLink, got %v", href, err)
		}
	}
}

func TestIdentity(t *testing.T) {
	got, err := Identity("whatever:thing")
	assert.NilError(t, err)
	assert.Equal(t, got, "whatever:thing")
}
