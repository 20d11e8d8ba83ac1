package wikitext

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnsupportedLink marks an href that cannot be turned into a wiki link.
var ErrUnsupportedLink = errors.New("unsupported link")

// LinkRewriter maps an href found in article HTML to the URL written into the
// wikitext. A non-nil error makes the converter emit the link text unlinked.
type LinkRewriter func(href string) (string, error)

// Identity returns every href unchanged.
func Identity(href string) (string, error) {
	return href, nil
}

// HostRewriter resolves hrefs against the host an article was fetched from.
//
// Hrefs without a host, or whose host is listed in replaceable, get the
// scheme and host of base. Any other http(s) link is returned unchanged.
func HostRewriter(base *url.URL, replaceable map[string]bool) LinkRewriter {
	return func(href string) (string, error) {
		trimmed := strings.TrimSpace(href)
		if trimmed == "" {
			return "", fmt.Errorf("%w: empty href", ErrUnsupportedLink)
		}

		u, err := url.Parse(trimmed)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnsupportedLink, err)
		}

		switch strings.ToLower(u.Scheme) {
		case "", "http", "https":
		default:
			return "", fmt.Errorf("%w: scheme %q", ErrUnsupportedLink, u.Scheme)
		}

		if u.Host != "" && !replaceable[u.Host] {
			return href, nil
		}

		u.Scheme = base.Scheme
		u.Host = base.Host

		return u.String(), nil
	}
}

// HostSet builds the replaceable host set used by HostRewriter.
func HostSet(hosts []string) map[string]bool {
	set := make(map[string]bool, len(hosts))
	for _, h := range hosts {
		set[h] = true
	}

	return set
}
