// Package fs provides file-based index persistence.
package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/sitesearch"
)

// Ensure IndexStore implements sitesearch.IndexStore at compile time.
var _ sitesearch.IndexStore = (*IndexStore)(nil)

// IndexStore persists an inverted index as a single JSON file with atomic
// update semantics. Save writes to a temporary file next to the target
// and renames it into place, so an interrupted save never clobbers a
// previously saved index.
type IndexStore struct {
	path string
}

// NewIndexStore creates an IndexStore backed by the file at path.
// Parent directories are created on the first Save.
func NewIndexStore(path string) *IndexStore {
	return &IndexStore{path: path}
}

// envelope is the on-disk document. The words payload is kept as raw JSON
// and checksummed in canonical form (compact, sorted keys), so corruption
// of the index data is detected on load regardless of file formatting.
type envelope struct {
	ID       string          `json:"id"`
	SeedURL  string          `json:"seed_url"`
	BuiltAt  time.Time       `json:"built_at"`
	Checksum string          `json:"checksum"`
	Words    json.RawMessage `json:"words"`
}

// Save writes the index to the store's path.
func (s *IndexStore) Save(ctx context.Context, idx *sitesearch.Index) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// encoding/json writes map keys in sorted order, which makes this
	// the canonical form the checksum is computed over.
	words, err := json.Marshal(idx.Words)
	if err != nil {
		return sitesearch.Errorf(sitesearch.ESTORAGE, "encoding index: %v", err)
	}

	env := envelope{
		ID:       idx.ID,
		SeedURL:  idx.SeedURL,
		BuiltAt:  idx.BuiltAt,
		Checksum: checksum(words),
		Words:    words,
	}
	data, err := json.MarshalIndent(&env, "", "  ")
	if err != nil {
		return sitesearch.Errorf(sitesearch.ESTORAGE, "encoding index: %v", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return sitesearch.Errorf(sitesearch.ESTORAGE, "creating directory %s: %v", dir, err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return sitesearch.Errorf(sitesearch.ESTORAGE, "writing %s: %v", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return sitesearch.Errorf(sitesearch.ESTORAGE, "replacing %s: %v", s.path, err)
	}

	return nil
}

// Load reads the index back from disk. A missing file, malformed JSON, or
// a checksum mismatch all yield an ESTORAGE error.
func (s *IndexStore) Load(ctx context.Context) (*sitesearch.Index, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "index file %s does not exist", s.path)
	}
	if err != nil {
		return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "reading %s: %v", s.path, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "index file %s is malformed: %v", s.path, err)
	}

	var words map[string]map[string]int
	if err := json.Unmarshal(env.Words, &words); err != nil {
		return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "index file %s is malformed: %v", s.path, err)
	}

	canonical, err := json.Marshal(words)
	if err != nil {
		return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "encoding index: %v", err)
	}
	if env.Checksum != checksum(canonical) {
		return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "index file %s is corrupt: checksum mismatch", s.path)
	}

	idx := sitesearch.NewIndex()
	idx.ID = env.ID
	idx.SeedURL = env.SeedURL
	idx.BuiltAt = env.BuiltAt
	if words != nil {
		idx.Words = words
	}

	return idx, nil
}

// checksum computes the xxhash of the canonical words payload.
func checksum(words []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(words))
}
