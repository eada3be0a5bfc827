package crawl

import (
	"strings"

	"github.com/fwojciec/sitesearch"
)

// Compile-time interface verification.
var _ sitesearch.URLFrontier = (*Frontier)(nil)

// Frontier is an in-memory FIFO crawl queue with exact deduplication.
//
// Membership is tracked with a set rather than a probabilistic filter:
// every reachable page must be visited exactly once for the crawl to be
// complete and to terminate on cyclic link graphs, and a false positive
// would silently drop a page. The crawl is sequential, so Frontier is
// not safe for concurrent use.
type Frontier struct {
	seen  map[string]struct{}
	queue []string
}

// NewFrontier creates an empty frontier.
func NewFrontier() *Frontier {
	return &Frontier{seen: make(map[string]struct{})}
}

// Push adds a URL to the frontier.
// Returns false if the URL has already been seen.
// URL fragments are stripped before deduplication - URLs differing only
// by fragment are considered duplicates.
func (f *Frontier) Push(url string) bool {
	url = stripFragment(url)
	if _, ok := f.seen[url]; ok {
		return false
	}
	f.seen[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Pop returns the next URL in first-in-first-out order.
// The bool result is false if the frontier is empty.
func (f *Frontier) Pop() (string, bool) {
	if len(f.queue) == 0 {
		return "", false
	}
	url := f.queue[0]
	f.queue = f.queue[1:]
	return url, true
}

// Len returns the number of URLs in the queue.
func (f *Frontier) Len() int {
	return len(f.queue)
}

// Seen returns true if the URL has been processed or queued.
// URL fragments are stripped before checking.
func (f *Frontier) Seen(url string) bool {
	_, ok := f.seen[stripFragment(url)]
	return ok
}

// stripFragment removes the fragment part of a URL. Fragments address
// locations within a document, not distinct documents.
func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx != -1 {
		return url[:idx]
	}
	return url
}
