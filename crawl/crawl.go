// Package crawl provides single-site crawl orchestration.
// It coordinates fetching, text extraction, and rate limiting while
// walking a site's link graph breadth-first, and streams the visited
// pages to a consumer callback.
package crawl

import (
	"context"
	"net/url"

	"github.com/fwojciec/sitesearch"
)

// Crawler orchestrates a breadth-first crawl of a single site.
//
// The traversal is strictly sequential: the politeness delay between
// requests dominates the runtime, so there is nothing to gain from
// fetching concurrently.
type Crawler struct {
	Fetcher     sitesearch.Fetcher
	Extractor   sitesearch.Extractor
	RateLimiter sitesearch.DomainLimiter

	// Sitemaps, when set, pre-seeds the frontier from the site's
	// sitemap before the traversal starts. Discovery failures are
	// reported via the progress callback and do not abort the crawl.
	Sitemaps sitesearch.SitemapService

	// MaxPages stops the crawl after this many pages. Zero means the
	// whole site.
	MaxPages int
}

// Result holds the outcome of a crawl operation.
type Result struct {
	Crawled int // pages fetched, extracted, and emitted
	Failed  int // pages skipped after a fetch or extract failure
	Bytes   int // total HTML bytes fetched across emitted pages
}

// EmitFunc receives each crawled page as it is produced. Pages arrive in
// breadth-first order, each URL exactly once. Returning an error aborts
// the crawl.
type EmitFunc func(page *sitesearch.Page) error

// ProgressEvent reports progress during a crawl operation.
type ProgressEvent struct {
	Type      ProgressType
	Completed int // pages emitted so far
	Queued    int // frontier size after the event
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	// ProgressStarted fires once before the first fetch. Queued holds
	// the initial frontier size; Error carries a non-fatal sitemap
	// discovery failure, if any.
	ProgressStarted ProgressType = iota
	// ProgressCompleted fires after a page has been emitted.
	ProgressCompleted
	// ProgressFailed fires when a page is skipped after a failure.
	ProgressFailed
	// ProgressFinished fires once when the traversal ends.
	ProgressFinished
)

// ProgressFunc is a callback for reporting crawl progress.
type ProgressFunc func(event ProgressEvent)

// Crawl walks the site reachable from seedURL and streams every page to
// emit. Only links on the seed's host are followed and each URL is
// visited at most once, so the traversal terminates on cyclic link
// graphs. The rate limiter runs before every fetch. A failure on the
// seed itself aborts the crawl with an EFETCH error; a failure on any
// other page is reported via progress and the page is skipped. Crawl
// returns when the frontier is empty, the MaxPages cap is reached, or
// ctx is canceled.
func (c *Crawler) Crawl(ctx context.Context, seedURL string, emit EmitFunc, progress ProgressFunc) (*Result, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, sitesearch.Errorf(sitesearch.EINVALID, "invalid seed URL %q: %v", seedURL, err)
	}
	if (seed.Scheme != "http" && seed.Scheme != "https") || seed.Host == "" {
		return nil, sitesearch.Errorf(sitesearch.EINVALID, "seed URL %q must be absolute http(s)", seedURL)
	}

	frontier := NewFrontier()
	frontier.Push(seedURL)
	seedKey := stripFragment(seedURL)

	// Pre-seed the frontier from the sitemap when configured. Sitemap
	// URLs go through the same host filter and deduplication as links
	// discovered on pages.
	var sitemapErr error
	if c.Sitemaps != nil {
		urls, err := c.Sitemaps.DiscoverURLs(ctx, seedURL)
		if err != nil {
			sitemapErr = err
		}
		for _, u := range urls {
			if sameHost(seed, u) {
				frontier.Push(u)
			}
		}
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:   ProgressStarted,
			Queued: frontier.Len(),
			Error:  sitemapErr,
		})
	}

	var result Result
	for {
		if c.MaxPages > 0 && result.Crawled >= c.MaxPages {
			break
		}
		current, ok := frontier.Pop()
		if !ok {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := c.RateLimiter.Wait(ctx, seed.Host); err != nil {
			return nil, err
		}

		page, size, err := c.visit(ctx, current)
		if err != nil {
			if current == seedKey {
				return nil, sitesearch.Errorf(sitesearch.EFETCH, "fetching seed %s: %v", current, err)
			}
			result.Failed++
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressFailed,
					Completed: result.Crawled,
					Queued:    frontier.Len(),
					URL:       current,
					Error:     err,
				})
			}
			continue
		}

		if err := emit(page); err != nil {
			return nil, err
		}
		result.Crawled++
		result.Bytes += size

		for _, link := range page.Links {
			if sameHost(seed, link) {
				frontier.Push(link)
			}
		}

		if progress != nil {
			progress(ProgressEvent{
				Type:      ProgressCompleted,
				Completed: result.Crawled,
				Queued:    frontier.Len(),
				URL:       current,
			})
		}
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: result.Crawled,
		})
	}

	return &result, nil
}

// visit fetches one URL and extracts its text and links. The second
// return is the size of the fetched HTML.
func (c *Crawler) visit(ctx context.Context, pageURL string) (*sitesearch.Page, int, error) {
	html, err := c.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, 0, err
	}
	extracted, err := c.Extractor.Extract(html, pageURL)
	if err != nil {
		return nil, 0, err
	}
	return &sitesearch.Page{
		URL:   pageURL,
		Text:  extracted.Text,
		Links: extracted.Links,
	}, len(html), nil
}

// sameHost reports whether rawURL is on the same host as the seed.
// Subdomains count as different hosts.
func sameHost(seed *url.URL, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Host == seed.Host
}
