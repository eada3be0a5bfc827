package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/sitesearch"
	"github.com/fwojciec/sitesearch/crawl"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Store   sitesearch.IndexStore
	Crawler *crawl.Crawler
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Index   string `help:"Index location: a JSON file, or a SQLite database for .db/.sqlite paths." env:"SITESEARCH_INDEX" default:"inverted_index.json"`
	Verbose bool   `short:"v" help:"Enable debug logging"`

	Build BuildCmd `cmd:"" help:"Crawl a site and build its inverted index"`
	Load  LoadCmd  `cmd:"" help:"Load the saved index and print a summary"`
	Print PrintCmd `cmd:"" help:"Print every page a word occurs on, with occurrence counts"`
	Find  FindCmd  `cmd:"" help:"Find pages containing all of the given words"`
}

// BuildCmd is the "build" subcommand.
type BuildCmd struct {
	URL      string        `arg:"" help:"Seed URL to start crawling from"`
	Delay    time.Duration `default:"1s" help:"Politeness delay between requests to the host"`
	MaxPages int           `help:"Stop after indexing this many pages (0 means no limit)"`
	Sitemap  bool          `help:"Also seed the crawl from the site's sitemap"`
	Timeout  time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
}

// LoadCmd is the "load" subcommand.
type LoadCmd struct{}

// PrintCmd is the "print" subcommand.
type PrintCmd struct {
	Word string `arg:"" help:"Word to look up"`
}

// FindCmd is the "find" subcommand.
type FindCmd struct {
	Words []string `arg:"" help:"Words that must all occur on a page"`
}
