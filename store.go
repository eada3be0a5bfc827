package sitesearch

import "context"

// IndexStore persists an inverted index between sessions.
// One stored index corresponds to one completed build of one site.
type IndexStore interface {
	// Save writes the index to durable storage. Save is atomic with
	// respect to a previously saved index: either the new index replaces
	// the old one completely or the old one is left intact.
	Save(ctx context.Context, idx *Index) error

	// Load reads a previously saved index. It returns an ESTORAGE error
	// when no index has been saved or the stored data cannot be decoded.
	// There is no silent empty-index fallback.
	Load(ctx context.Context) (*Index, error)
}
