package http

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/sitesearch"
)

// Ensure SitemapService implements sitesearch.SitemapService.
var _ sitesearch.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client    *http.Client
	userAgent string
}

// NewSitemapService creates a new SitemapService with the given HTTP
// client. If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client, userAgent: defaultUserAgent}
}

// DiscoverURLs finds page URLs for the site at baseURL. robots.txt is
// consulted for Sitemap directives first, with /sitemap.xml as the
// fallback. Sitemap indexes are resolved recursively; page URLs are
// deduplicated across sitemaps. Returns an empty slice (not nil) when
// the site publishes no sitemap.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, sitesearch.Errorf(sitesearch.EINVALID, "invalid base URL %q: %v", baseURL, err)
	}

	sitemaps := s.sitemapsFromRobots(ctx, base)
	if len(sitemaps) == 0 {
		fallback := base.ResolveReference(&url.URL{Path: "/sitemap.xml"}).String()
		ok, err := s.exists(ctx, fallback)
		if err != nil {
			// Propagate context errors, treat other errors as "no sitemap"
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return []string{}, nil
		}
		if !ok {
			return []string{}, nil
		}
		sitemaps = []string{fallback}
	}

	urls := []string{}
	seenDocs := make(map[string]bool)
	seenURLs := make(map[string]bool)
	for _, sm := range sitemaps {
		if err := s.collect(ctx, sm, seenDocs, seenURLs, &urls); err != nil {
			return nil, err
		}
	}

	return urls, nil
}

// sitemapsFromRobots extracts Sitemap: directives from the site's
// robots.txt. A missing or unreadable robots.txt yields no sitemaps.
func (s *SitemapService) sitemapsFromRobots(ctx context.Context, base *url.URL) []string {
	robotsURL := base.ResolveReference(&url.URL{Path: "/robots.txt"}).String()
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Case-insensitive check for Sitemap: directive
		if !strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			continue
		}
		if u := strings.TrimSpace(line[len("sitemap:"):]); u != "" {
			sitemaps = append(sitemaps, u)
		}
	}
	if scanner.Err() != nil {
		return nil
	}

	return sitemaps
}

// collect fetches one sitemap document and appends its page URLs to out.
// A <sitemapindex> is followed recursively; anything else is treated as a
// <urlset>. The seenDocs map prevents revisiting a sitemap that appears
// in several indexes.
func (s *SitemapService) collect(ctx context.Context, sitemapURL string, seenDocs, seenURLs map[string]bool, out *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if seenDocs[sitemapURL] {
		return nil
	}
	seenDocs[sitemapURL] = true

	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return sitesearch.Errorf(sitesearch.EFETCH, "parsing sitemap %s: %v", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return sitesearch.Errorf(sitesearch.EFETCH, "sitemap %s is empty", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		for _, el := range root.SelectElements("sitemap") {
			child := locText(el)
			if child == "" {
				continue
			}
			if err := s.collect(ctx, child, seenDocs, seenURLs, out); err != nil {
				return err
			}
		}
		return nil
	}

	for _, el := range root.SelectElements("url") {
		u := locText(el)
		if u == "" || seenURLs[u] {
			continue
		}
		seenURLs[u] = true
		*out = append(*out, u)
	}

	return nil
}

// locText returns the trimmed text of an element's <loc> child.
func locText(el *etree.Element) string {
	loc := el.SelectElement("loc")
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(loc.Text())
}

// get fetches a URL and returns the response body.
func (s *SitemapService) get(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, sitesearch.Errorf(sitesearch.EFETCH, "GET %s: %v", targetURL, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, sitesearch.Errorf(sitesearch.EFETCH, "HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}

// exists checks whether a URL answers 200 to a HEAD request.
func (s *SitemapService) exists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
