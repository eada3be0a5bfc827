package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitesearch"
	"github.com/fwojciec/sitesearch/crawl"
	"github.com/fwojciec/sitesearch/fs"
	"github.com/fwojciec/sitesearch/goquery"
	ssehttp "github.com/fwojciec/sitesearch/http"
	sseslog "github.com/fwojciec/sitesearch/slog"
	"github.com/fwojciec/sitesearch/sqlite"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database backing the index store when the index path points
	// at a database file. Nil for JSON file stores.
	DB *sqlite.DB
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitesearch"),
		kong.Description("Crawl a website and answer word queries from its inverted index"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitesearch --help' to see available commands")
	}

	if len(args) == 1 && (args[0] == "help" || args[0] == "--help" || args[0] == "-h") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := kongCtx.Command()
	if i := strings.IndexByte(cmd, ' '); i >= 0 {
		cmd = cmd[:i]
	}

	logger := newLogger(stderr, cli.Verbose)

	// Querying commands need an index that already exists. Check before
	// opening the store so a SQLite store never leaves behind an empty
	// database created during a failed lookup.
	switch cmd {
	case "load":
		if _, err := os.Stat(cli.Index); err != nil {
			fmt.Fprintf(stderr, "error: index file %q does not exist\n", cli.Index)
			return sitesearch.Errorf(sitesearch.ESTORAGE, "index file %s does not exist", cli.Index)
		}
	case "print", "find":
		if _, err := os.Stat(cli.Index); err != nil {
			fmt.Fprintf(stderr, "error: no index found at %q. Run 'sitesearch build <url>' first.\n", cli.Index)
			return sitesearch.Errorf(sitesearch.EINVALID, "no index found at %s", cli.Index)
		}
	}

	store, err := m.openStore(cli.Index)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set SITESEARCH_INDEX or --index to use a different index path\n")
		return err
	}
	defer m.Close()
	deps.Store = sseslog.NewLoggingIndexStore(store, logger)

	// Wire command-specific dependencies based on command
	if cmd == "build" {
		fetcher := ssehttp.NewFetcher(ssehttp.WithTimeout(cli.Build.Timeout))

		var sitemaps sitesearch.SitemapService
		if cli.Build.Sitemap {
			sitemaps = sseslog.NewLoggingSitemapService(ssehttp.NewSitemapService(nil), logger)
		}

		deps.Crawler = &crawl.Crawler{
			Fetcher:     sseslog.NewLoggingFetcher(fetcher, logger),
			Extractor:   goquery.NewExtractor(),
			RateLimiter: crawl.NewDomainLimiter(cli.Build.Delay),
			Sitemaps:    sitemaps,
			MaxPages:    cli.Build.MaxPages,
		}
	}

	return kongCtx.Run(deps)
}

// openStore selects the storage backend from the index path extension.
func (m *Main) openStore(path string) (sitesearch.IndexStore, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		m.DB = sqlite.NewDB(path)
		if err := m.DB.Open(); err != nil {
			return nil, fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		return sqlite.NewIndexStore(m.DB), nil
	default:
		return fs.NewIndexStore(path), nil
	}
}

// newLogger returns a text logger writing to w. The default level keeps
// service logs quiet so command output stays readable; --verbose enables
// everything down to per-page fetch logs.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
