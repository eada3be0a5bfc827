package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/sitesearch"
)

// Ensure LoggingIndexStore implements sitesearch.IndexStore.
var _ sitesearch.IndexStore = (*LoggingIndexStore)(nil)

// LoggingIndexStore wraps an IndexStore with debug logging.
type LoggingIndexStore struct {
	next   sitesearch.IndexStore
	logger *slog.Logger
}

// NewLoggingIndexStore creates a new LoggingIndexStore.
func NewLoggingIndexStore(next sitesearch.IndexStore, logger *slog.Logger) *LoggingIndexStore {
	return &LoggingIndexStore{next: next, logger: logger}
}

// Save delegates to the wrapped store and logs the operation.
func (s *LoggingIndexStore) Save(ctx context.Context, idx *sitesearch.Index) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("index save",
			"words", idx.WordCount(),
			"pages", idx.PageCount(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, idx)
}

// Load delegates to the wrapped store and logs the operation.
func (s *LoggingIndexStore) Load(ctx context.Context) (idx *sitesearch.Index, err error) {
	defer func(begin time.Time) {
		words, pages := 0, 0
		if idx != nil {
			words, pages = idx.WordCount(), idx.PageCount()
		}
		s.logger.Info("index load",
			"words", words,
			"pages", pages,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Load(ctx)
}
