package sitesearch

import "context"

// Fetcher retrieves HTML documents from URLs.
type Fetcher interface {
	// Fetch retrieves the document at the URL and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
