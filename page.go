package sitesearch

// Page represents a single crawled page of the target site.
type Page struct {
	// URL is the canonical URL the page was fetched from. Fragments are
	// stripped; query strings are kept.
	URL string

	// Text is the visible plain text extracted from the page.
	Text string

	// Links holds the absolute URLs of outbound links discovered on the
	// page. Links drive the crawl and are not persisted with the index.
	Links []string
}
