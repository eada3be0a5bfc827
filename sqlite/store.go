package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/sitesearch"
)

// Compile-time interface verification.
var _ sitesearch.IndexStore = (*IndexStore)(nil)

// IndexStore implements sitesearch.IndexStore using SQLite. A database holds
// at most one index; saving replaces whatever build was stored before.
type IndexStore struct {
	db *DB
}

// NewIndexStore creates a new IndexStore.
func NewIndexStore(db *DB) *IndexStore {
	return &IndexStore{db: db}
}

// Save stores the index inside a single transaction. If the transaction fails
// or is interrupted the previously stored index remains intact.
func (s *IndexStore) Save(ctx context.Context, idx *sitesearch.Index) error {
	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return sitesearch.Errorf(sitesearch.ESTORAGE, "starting transaction: %v", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM postings",
		"DELETE FROM words",
		"DELETE FROM pages",
		"DELETE FROM meta",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return sitesearch.Errorf(sitesearch.ESTORAGE, "clearing previous index: %v", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO meta (id, seed_url, built_at)
		VALUES (?, ?, ?)
	`, idx.ID, idx.SeedURL, idx.BuiltAt.UTC().Format(time.RFC3339)); err != nil {
		return sitesearch.Errorf(sitesearch.ESTORAGE, "writing index metadata: %v", err)
	}

	pageIDs := make(map[string]int64)
	for word, pages := range idx.Words {
		res, err := tx.ExecContext(ctx, "INSERT INTO words (word) VALUES (?)", word)
		if err != nil {
			return sitesearch.Errorf(sitesearch.ESTORAGE, "writing word %q: %v", word, err)
		}
		wordID, err := res.LastInsertId()
		if err != nil {
			return sitesearch.Errorf(sitesearch.ESTORAGE, "writing word %q: %v", word, err)
		}

		for url, count := range pages {
			pageID, ok := pageIDs[url]
			if !ok {
				res, err := tx.ExecContext(ctx, "INSERT INTO pages (url) VALUES (?)", url)
				if err != nil {
					return sitesearch.Errorf(sitesearch.ESTORAGE, "writing page %q: %v", url, err)
				}
				if pageID, err = res.LastInsertId(); err != nil {
					return sitesearch.Errorf(sitesearch.ESTORAGE, "writing page %q: %v", url, err)
				}
				pageIDs[url] = pageID
			}

			if _, err := tx.ExecContext(ctx, `
				INSERT INTO postings (word_id, page_id, count)
				VALUES (?, ?, ?)
			`, wordID, pageID, count); err != nil {
				return sitesearch.Errorf(sitesearch.ESTORAGE, "writing posting for word %q: %v", word, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return sitesearch.Errorf(sitesearch.ESTORAGE, "committing index: %v", err)
	}
	return nil
}

// Load reads the stored index back into memory.
func (s *IndexStore) Load(ctx context.Context) (*sitesearch.Index, error) {
	idx := sitesearch.NewIndex()

	var builtAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, seed_url, built_at
		FROM meta
	`).Scan(&idx.ID, &idx.SeedURL, &builtAt)
	if err == sql.ErrNoRows {
		return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "no index has been saved to %s", s.db.path)
	}
	if err != nil {
		return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "reading index metadata: %v", err)
	}
	if idx.BuiltAt, err = parseRFC3339(builtAt, "built_at"); err != nil {
		return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "%v", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT w.word, p.url, po.count
		FROM postings po
		JOIN words w ON w.id = po.word_id
		JOIN pages p ON p.id = po.page_id
	`)
	if err != nil {
		return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "reading postings: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var word, url string
		var count int
		if err := rows.Scan(&word, &url, &count); err != nil {
			return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "reading postings: %v", err)
		}
		pages, ok := idx.Words[word]
		if !ok {
			pages = make(map[string]int)
			idx.Words[word] = pages
		}
		pages[url] = count
	}
	if err := rows.Err(); err != nil {
		return nil, sitesearch.Errorf(sitesearch.ESTORAGE, "reading postings: %v", err)
	}

	return idx, nil
}
