package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/sitesearch"
	"github.com/fwojciec/sitesearch/crawl"
	"github.com/google/uuid"
)

// Run executes the build command.
func (c *BuildCmd) Run(deps *Dependencies) error {
	idx := sitesearch.NewIndex()

	emit := func(page *sitesearch.Page) error {
		idx.AddPage(page)
		return nil
	}

	progress := func(event crawl.ProgressEvent) {
		switch event.Type {
		case crawl.ProgressStarted:
			if event.Error != nil {
				fmt.Fprintf(deps.Stderr, "  sitemap discovery failed: %v\n", event.Error)
			} else if event.Queued > 1 {
				fmt.Fprintf(deps.Stdout, "  Found %d sitemap URLs\n", event.Queued-1)
			}
		case crawl.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "  %d  %s\n", event.Completed, crawl.TruncateURL(event.URL, 70))
		case crawl.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  skip %s: %v\n", event.URL, event.Error)
		case crawl.ProgressFinished:
			// Summary printed after the build completes
		}
	}

	fmt.Fprintf(deps.Stdout, "Building index from %s\n", c.URL)

	result, err := deps.Crawler.Crawl(deps.Ctx, c.URL, emit, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitesearch.ErrorMessage(err))
		return err
	}

	idx.ID = uuid.New().String()
	idx.SeedURL = c.URL
	idx.BuiltAt = time.Now().UTC()

	if err := deps.Store.Save(deps.Ctx, idx); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitesearch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Indexed %d pages (%s, %d words", result.Crawled, crawl.FormatBytes(result.Bytes), idx.WordCount())
	if result.Failed > 0 {
		fmt.Fprintf(deps.Stdout, ", %d skipped", result.Failed)
	}
	fmt.Fprintln(deps.Stdout, ")")

	return nil
}
