package sitesearch

import "context"

// SitemapService discovers page URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds page URLs for the site at baseURL. It first
	// checks robots.txt for Sitemap directives, then falls back to
	// /sitemap.xml. Sitemap indexes are resolved recursively. A site
	// that publishes no sitemap yields an empty result, not an error.
	DiscoverURLs(ctx context.Context, baseURL string) ([]string, error)
}
