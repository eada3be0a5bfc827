package crawl_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/sitesearch"
	"github.com/fwojciec/sitesearch/crawl"
	"github.com/fwojciec/sitesearch/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSite wires a Crawler over an in-memory site. Each entry maps a URL
// to the text and links the extractor reports for it. Fetching a URL that
// has no entry fails like a broken link would.
type fakeSite struct {
	pages   map[string]*sitesearch.ExtractResult
	fetched []string
	waits   []string
}

func (s *fakeSite) crawler() *crawl.Crawler {
	return &crawl.Crawler{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				s.fetched = append(s.fetched, url)
				if _, ok := s.pages[url]; !ok {
					return "", sitesearch.Errorf(sitesearch.EFETCH, "HTTP 404 for %s", url)
				}
				return "<html>" + url + "</html>", nil
			},
			CloseFn: func() error { return nil },
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(_ string, baseURL string) (*sitesearch.ExtractResult, error) {
				return s.pages[baseURL], nil
			},
		},
		RateLimiter: &mock.DomainLimiter{
			WaitFn: func(_ context.Context, domain string) error {
				s.waits = append(s.waits, domain)
				return nil
			},
		},
	}
}

// collect returns an EmitFunc that appends emitted page URLs to urls.
func collect(urls *[]string) crawl.EmitFunc {
	return func(page *sitesearch.Page) error {
		*urls = append(*urls, page.URL)
		return nil
	}
}

func TestCrawler_Crawl(t *testing.T) {
	t.Parallel()

	const (
		seed  = "https://example.com/"
		pageB = "https://example.com/b"
		pageC = "https://example.com/c"
		pageD = "https://example.com/d"
	)

	t.Run("visits every page exactly once and terminates on cycles", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{
			seed:  {Text: "seed", Links: []string{pageB, pageC}},
			pageB: {Text: "b", Links: []string{seed, pageC}},
			pageC: {Text: "c", Links: []string{pageB}},
		}}

		var emitted []string
		result, err := site.crawler().Crawl(context.Background(), seed, collect(&emitted), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{seed, pageB, pageC}, emitted, "pages should arrive in breadth-first order")
		assert.Equal(t, []string{seed, pageB, pageC}, site.fetched, "each URL should be fetched exactly once")
		assert.Equal(t, 3, result.Crawled)
		assert.Equal(t, 0, result.Failed)
	})

	t.Run("only follows links on the seed host", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{
			seed:  {Text: "seed", Links: []string{"https://other.com/x", "https://sub.example.com/y", pageB}},
			pageB: {Text: "b"},
		}}

		var emitted []string
		result, err := site.crawler().Crawl(context.Background(), seed, collect(&emitted), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{seed, pageB}, emitted)
		assert.NotContains(t, site.fetched, "https://other.com/x")
		assert.NotContains(t, site.fetched, "https://sub.example.com/y", "subdomains count as different hosts")
		assert.Equal(t, 2, result.Crawled)
	})

	t.Run("aborts when the seed cannot be fetched", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{}}

		result, err := site.crawler().Crawl(context.Background(), seed, collect(new([]string)), nil)

		require.Error(t, err)
		assert.Equal(t, sitesearch.EFETCH, sitesearch.ErrorCode(err))
		assert.Nil(t, result)
	})

	t.Run("skips pages that fail after the seed", func(t *testing.T) {
		t.Parallel()

		// pageB is linked but does not exist
		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{
			seed:  {Text: "seed", Links: []string{pageB, pageC}},
			pageC: {Text: "c"},
		}}

		var emitted []string
		var events []crawl.ProgressEvent
		result, err := site.crawler().Crawl(context.Background(), seed, collect(&emitted), func(ev crawl.ProgressEvent) {
			events = append(events, ev)
		})

		require.NoError(t, err)
		assert.Equal(t, []string{seed, pageC}, emitted)
		assert.Equal(t, 2, result.Crawled)
		assert.Equal(t, 1, result.Failed)

		var failed []crawl.ProgressEvent
		for _, ev := range events {
			if ev.Type == crawl.ProgressFailed {
				failed = append(failed, ev)
			}
		}
		require.Len(t, failed, 1)
		assert.Equal(t, pageB, failed[0].URL)
		assert.Error(t, failed[0].Error)

		last := events[len(events)-1]
		assert.Equal(t, crawl.ProgressFinished, last.Type)
		assert.Equal(t, 2, last.Completed)
	})

	t.Run("waits for the rate limiter before every fetch", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{
			seed:  {Text: "seed", Links: []string{pageB}},
			pageB: {Text: "b"},
		}}

		_, err := site.crawler().Crawl(context.Background(), seed, collect(new([]string)), nil)

		require.NoError(t, err)
		assert.Equal(t, len(site.fetched), len(site.waits), "one rate limiter wait per fetch")
		for _, domain := range site.waits {
			assert.Equal(t, "example.com", domain)
		}
	})

	t.Run("stops at the MaxPages cap", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{
			seed:  {Text: "seed", Links: []string{pageB}},
			pageB: {Text: "b", Links: []string{pageC}},
			pageC: {Text: "c", Links: []string{pageD}},
			pageD: {Text: "d"},
		}}

		c := site.crawler()
		c.MaxPages = 2

		var emitted []string
		result, err := c.Crawl(context.Background(), seed, collect(&emitted), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{seed, pageB}, emitted)
		assert.Equal(t, 2, result.Crawled)
	})

	t.Run("tracks total bytes fetched", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{
			seed:  {Text: "seed", Links: []string{pageB}},
			pageB: {Text: "b"},
		}}

		result, err := site.crawler().Crawl(context.Background(), seed, collect(new([]string)), nil)

		require.NoError(t, err)
		want := len("<html>"+seed+"</html>") + len("<html>"+pageB+"</html>")
		assert.Equal(t, want, result.Bytes)
	})

	t.Run("pre-seeds the frontier from the sitemap", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{
			seed:  {Text: "seed"},
			pageC: {Text: "c"},
		}}

		c := site.crawler()
		c.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string) ([]string, error) {
				return []string{pageC, "https://other.com/x", seed}, nil
			},
		}

		var emitted []string
		var events []crawl.ProgressEvent
		result, err := c.Crawl(context.Background(), seed, collect(&emitted), func(ev crawl.ProgressEvent) {
			events = append(events, ev)
		})

		require.NoError(t, err)
		assert.Equal(t, []string{seed, pageC}, emitted, "sitemap URLs should be crawled after the seed")
		assert.Equal(t, 2, result.Crawled)

		require.NotEmpty(t, events)
		assert.Equal(t, crawl.ProgressStarted, events[0].Type)
		assert.Equal(t, 2, events[0].Queued, "off-host and duplicate sitemap URLs should be dropped")
		assert.NoError(t, events[0].Error)
	})

	t.Run("continues without the sitemap when discovery fails", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{
			seed: {Text: "seed"},
		}}

		c := site.crawler()
		c.Sitemaps = &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string) ([]string, error) {
				return nil, sitesearch.Errorf(sitesearch.EFETCH, "robots.txt unreachable")
			},
		}

		var emitted []string
		var events []crawl.ProgressEvent
		result, err := c.Crawl(context.Background(), seed, collect(&emitted), func(ev crawl.ProgressEvent) {
			events = append(events, ev)
		})

		require.NoError(t, err)
		assert.Equal(t, []string{seed}, emitted)
		assert.Equal(t, 1, result.Crawled)

		require.NotEmpty(t, events)
		assert.Equal(t, crawl.ProgressStarted, events[0].Type)
		assert.Error(t, events[0].Error, "discovery failure should be reported on the started event")
	})

	t.Run("stops when emit returns an error", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{
			seed:  {Text: "seed", Links: []string{pageB}},
			pageB: {Text: "b"},
		}}

		errStop := errors.New("stop")
		result, err := site.crawler().Crawl(context.Background(), seed, func(*sitesearch.Page) error {
			return errStop
		}, nil)

		assert.ErrorIs(t, err, errStop)
		assert.Nil(t, result)
		assert.Equal(t, []string{seed}, site.fetched, "no further pages should be fetched")
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{
			seed: {Text: "seed"},
		}}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := site.crawler().Crawl(ctx, seed, collect(new([]string)), nil)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Nil(t, result)
	})

	t.Run("rejects seed URLs that are not absolute http(s)", func(t *testing.T) {
		t.Parallel()

		site := &fakeSite{pages: map[string]*sitesearch.ExtractResult{}}

		for _, bad := range []string{"not a url", "ftp://example.com/", "/relative/path", ""} {
			_, err := site.crawler().Crawl(context.Background(), bad, collect(new([]string)), nil)
			require.Error(t, err, "seed %q should be rejected", bad)
			assert.Equal(t, sitesearch.EINVALID, sitesearch.ErrorCode(err))
		}
	})
}
