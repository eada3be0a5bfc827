package mock

import (
	"context"

	"github.com/fwojciec/sitesearch"
)

var _ sitesearch.IndexStore = (*IndexStore)(nil)

// IndexStore is a mock implementation of sitesearch.IndexStore.
type IndexStore struct {
	SaveFn func(ctx context.Context, idx *sitesearch.Index) error
	LoadFn func(ctx context.Context) (*sitesearch.Index, error)
}

func (s *IndexStore) Save(ctx context.Context, idx *sitesearch.Index) error {
	return s.SaveFn(ctx, idx)
}

func (s *IndexStore) Load(ctx context.Context) (*sitesearch.Index, error) {
	return s.LoadFn(ctx)
}
