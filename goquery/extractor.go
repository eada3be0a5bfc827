// Package goquery extracts plain text and outbound links from HTML pages.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/sitesearch"
	"golang.org/x/net/html"
)

// Ensure Extractor implements sitesearch.Extractor at compile time.
var _ sitesearch.Extractor = (*Extractor)(nil)

// Extractor parses HTML with goquery and walks the document tree for
// visible text and anchor links.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the visible text of the page and the absolute outbound
// links discovered on it. Script and style content is excluded from the
// text. Relative links are resolved against baseURL, fragments are
// stripped, non-HTTP schemes (javascript:, mailto:, tel:, data:) are
// dropped, and duplicates are removed keeping document order. Links are
// not filtered by host; that is the crawler's concern.
func (e *Extractor) Extract(rawHTML string, baseURL string) (*sitesearch.ExtractResult, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, sitesearch.Errorf(sitesearch.EINVALID, "invalid base URL: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, sitesearch.Errorf(sitesearch.EINVALID, "failed to parse HTML: %v", err)
	}

	result := &sitesearch.ExtractResult{
		Text: visibleText(doc),
	}

	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || isNonHTTPLink(href) {
			return
		}
		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		result.Links = append(result.Links, resolved)
	})

	return result, nil
}

// visibleText walks the document's text nodes, skipping script, style and
// noscript elements, and joins the trimmed pieces with single spaces.
// goquery's own Text() concatenates adjacent nodes without separators,
// which would glue together words from neighbouring elements and corrupt
// tokenization.
func visibleText(doc *goquery.Document) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				if b.Len() > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, root := range doc.Nodes {
		walk(root)
	}
	return b.String()
}

// resolveURL resolves a relative URL against a base URL.
// Returns empty string if the href cannot be parsed, resolves to a
// non-http(s) scheme, or is self-referential (same as the base URL after
// stripping fragments). Fragments are stripped from the resolved URL.
func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = "" // fragments address the same document

	result := resolved.String()
	baseNoFragment := *base
	baseNoFragment.Fragment = ""
	if result == baseNoFragment.String() {
		return ""
	}
	return result
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return href == "" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}
