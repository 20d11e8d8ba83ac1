// Package wikitext converts parsed HTML fragments into MediaWiki markup.
package wikitext

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// UnsupportedNodeError is returned for node kinds the converter has no rule for.
type UnsupportedNodeError struct {
	Type string
}

func (e *UnsupportedNodeError) Error() string {
	return fmt.Sprintf("unsupported HTML node type: %s", e.Type)
}

// Convert renders n and its descendants as wikitext.
//
// Text is copied verbatim. Links become [url content] when rewrite accepts
// the href and plain content otherwise; bold becomes '''content'''; line
// breaks become <br />; scripts and images are dropped; every other element
// contributes its children only.
func Convert(n *html.Node, rewrite LinkRewriter) (string, error) {
	switch n.Type {
	case html.TextNode:
		return n.Data, nil
	case html.DocumentNode:
		return convertChildren(n, rewrite)
	case html.ElementNode:
		content, err := convertChildren(n, rewrite)
		if err != nil {
			return "", err
		}

		return convertElement(n, content, rewrite), nil
	}

	return "", &UnsupportedNodeError{Type: nodeTypeName(n.Type)}
}

func convertChildren(n *html.Node, rewrite LinkRewriter) (string, error) {
	var sb strings.Builder

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		text, err := Convert(c, rewrite)
		if err != nil {
			return "", err
		}

		sb.WriteString(text)
	}

	return sb.String(), nil
}

func convertElement(n *html.Node, content string, rewrite LinkRewriter) string {
	switch strings.ToLower(n.Data) {
	case "a":
		href, ok := attr(n, "href")
		if !ok {
			return content
		}

		link, err := rewrite(href)
		if err != nil {
			return content
		}

		return "[" + link + " " + content + "]"
	case "strong", "b":
		return "'''" + content + "'''"
	case "br":
		return "<br />"
	case "script", "img":
		return ""
	}

	return content
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}

	return "", false
}

func nodeTypeName(t html.NodeType) string {
	switch t {
	case html.CommentNode:
		return "comment"
	case html.DoctypeNode:
		return "doctype"
	case html.RawNode:
		return "raw"
	case html.ErrorNode:
		return "error"
	}

	return fmt.Sprintf("node(%d)", t)
}
