package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/sitesearch"
	"github.com/fwojciec/sitesearch/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func testIndex() *sitesearch.Index {
	idx := sitesearch.NewIndex()
	idx.ID = "build-1"
	idx.SeedURL = "https://example.com/"
	idx.BuiltAt = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	idx.AddPage(&sitesearch.Page{URL: "https://example.com/a", Text: "The cat sat."})
	idx.AddPage(&sitesearch.Page{URL: "https://example.com/b", Text: "The dog sat."})
	return idx
}

func TestIndexStore_SaveLoad(t *testing.T) {
	t.Parallel()

	t.Run("round trips an index", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		store := sqlite.NewIndexStore(db)
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, testIndex()))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)

		assert.Equal(t, "build-1", loaded.ID)
		assert.Equal(t, "https://example.com/", loaded.SeedURL)
		assert.True(t, loaded.BuiltAt.Equal(time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)))
		assert.Equal(t, testIndex().Words, loaded.Words)
	})

	t.Run("round trips an empty index", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		store := sqlite.NewIndexStore(db)
		ctx := context.Background()

		idx := sitesearch.NewIndex()
		idx.ID = "build-empty"
		idx.SeedURL = "https://example.com/"
		idx.BuiltAt = time.Now().UTC()
		require.NoError(t, store.Save(ctx, idx))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "build-empty", loaded.ID)
		assert.Empty(t, loaded.Words)
	})

	t.Run("round trips non-ASCII words", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		store := sqlite.NewIndexStore(db)
		ctx := context.Background()

		idx := sitesearch.NewIndex()
		idx.ID = "build-unicode"
		idx.SeedURL = "https://example.com/"
		idx.BuiltAt = time.Now().UTC()
		idx.Add("https://example.com/a", []string{"café", "żółć"})
		require.NoError(t, store.Save(ctx, idx))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, idx.Words, loaded.Words)
	})

	t.Run("replaces the previously saved index", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		store := sqlite.NewIndexStore(db)
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, testIndex()))

		replacement := sitesearch.NewIndex()
		replacement.ID = "build-2"
		replacement.SeedURL = "https://other.example/"
		replacement.BuiltAt = time.Now().UTC()
		replacement.Add("https://other.example/x", []string{"fox"})
		require.NoError(t, store.Save(ctx, replacement))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "build-2", loaded.ID)
		assert.Equal(t, replacement.Words, loaded.Words)

		_, ok := loaded.Words["cat"]
		assert.False(t, ok, "words from the replaced index should be gone")
	})

	t.Run("persists across database reopens", func(t *testing.T) {
		t.Parallel()

		dbPath := t.TempDir() + "/index.db"
		ctx := context.Background()

		db := sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		require.NoError(t, sqlite.NewIndexStore(db).Save(ctx, testIndex()))
		require.NoError(t, db.Close())

		db = sqlite.NewDB(dbPath)
		require.NoError(t, db.Open())
		defer db.Close()

		loaded, err := sqlite.NewIndexStore(db).Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, testIndex().Words, loaded.Words)
	})
}

func TestIndexStore_Load_NoSavedIndex(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	store := sqlite.NewIndexStore(db)

	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, sitesearch.ESTORAGE, sitesearch.ErrorCode(err))
	assert.Contains(t, sitesearch.ErrorMessage(err), "no index has been saved")
}

func TestIndexStore_Save_RespectsContextCancellation(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	store := sqlite.NewIndexStore(db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Save(ctx, testIndex())
	require.Error(t, err)
	assert.Equal(t, sitesearch.ESTORAGE, sitesearch.ErrorCode(err))
}
