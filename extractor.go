package sitesearch

// ExtractResult holds the text and outbound links extracted from an HTML
// page.
type ExtractResult struct {
	// Text is the visible plain text of the page.
	// Script and style content is excluded.
	Text string

	// Links holds absolute http(s) URLs discovered on the page, with
	// fragments stripped and duplicates removed. Links are not filtered
	// by host; that is the crawler's concern.
	Links []string
}

// Extractor extracts plain text and outbound links from raw HTML.
type Extractor interface {
	// Extract parses html and returns the page text and discovered
	// links. Relative links are resolved against baseURL.
	Extract(html string, baseURL string) (*ExtractResult, error)
}
