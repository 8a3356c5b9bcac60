package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"catalog-sync/core/database"
	"catalog-sync/core/storage/mocks"
	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/catalog/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []models.CatalogItem {
	price := decimal.NewFromInt(13400)
	scanner := models.CatalogItem{
		ID:           "61887",
		Name:         "Сканер штрих-кода",
		Category:     "scanners",
		Price:        &price,
		ExternalCode: "61887",
		Images:       []string{"/img/61887.png"},
	}
	scanner.SetStock(3)

	return []models.CatalogItem{
		scanner,
		{ID: "cable-usb", Name: "Кабель USB", Category: "accessories"},
	}
}

func TestNew(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		s, err := store.New(store.Config{Backend: "file", Path: "x.json"}, store.Deps{})
		require.NoError(t, err)
		assert.IsType(t, &store.FileStore{}, s)
	})

	t.Run("S3 requires storage", func(t *testing.T) {
		_, err := store.New(store.Config{Backend: "s3"}, store.Deps{})
		assert.ErrorContains(t, err, "requires a storage client")
	})

	t.Run("S3", func(t *testing.T) {
		s, err := store.New(store.Config{Backend: "s3", Object: "catalog/products.json"}, store.Deps{Storage: new(mocks.Client), Bucket: "catalog"})
		require.NoError(t, err)
		assert.IsType(t, &store.ObjectStore{}, s)
	})

	t.Run("DB requires connection", func(t *testing.T) {
		_, err := store.New(store.Config{Backend: "db"}, store.Deps{})
		assert.ErrorContains(t, err, "requires a database connection")
	})

	t.Run("DB", func(t *testing.T) {
		db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
		require.NoError(t, err)
		s, err := store.New(store.Config{Backend: "db", AutoMigrate: true}, store.Deps{DB: db})
		require.NoError(t, err)
		assert.IsType(t, &store.DBStore{}, s)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := store.New(store.Config{Backend: "ftp"}, store.Deps{})
		assert.ErrorContains(t, err, "unknown catalog backend")
	})
}

func TestDecode(t *testing.T) {
	items, err := store.Decode([]byte(`{"products":[{"id":"a","name":"A"}]}`))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].ID)

	items, err = store.Decode([]byte(`{"items":[{"id":"b"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "b", items[0].ID)

	items, err = store.Decode([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = store.Decode([]byte(`{broken`))
	assert.Error(t, err)
}

func TestEncode_Empty(t *testing.T) {
	data, err := store.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestRevision(t *testing.T) {
	assert.Empty(t, store.Revision(nil))
	assert.Len(t, store.Revision([]byte("[]")), 64)
	assert.NotEqual(t, store.Revision([]byte("[]")), store.Revision([]byte("[ ]")))
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "products.json")
	s := store.NewFileStore(path)

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.Revision)

	rev, err := s.Save(ctx, sampleItems(), "")
	require.NoError(t, err)
	assert.NotEmpty(t, rev)

	snap, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, rev, snap.Revision)
	require.Len(t, snap.Items, 2)
	assert.Equal(t, "61887", snap.Items[0].ID)
	assert.Equal(t, 3, *snap.Items[0].Stock)
	assert.True(t, snap.Items[0].InStock)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestFileStore_RevisionConflict(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "products.json")
	s := store.NewFileStore(path)

	rev, err := s.Save(ctx, sampleItems(), "")
	require.NoError(t, err)

	// Someone else edits the catalog.
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"edited"}]`), 0o644))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = s.Save(ctx, sampleItems()[:1], rev)
	assert.ErrorIs(t, err, store.ErrRevisionConflict)

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestFileStore_WriteFailureLeavesCatalog(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := store.NewFileStore(filepath.Join(blocker, "products.json"))
	_, err := s.Save(ctx, sampleItems(), "")
	assert.Error(t, err)
}

func TestFileStore_LoadDerivesInStock(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "products.json")
	doc := `[{"id":"a","name":"A","stock":0,"inStock":true},{"id":"b","name":"B","inStock":true}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	snap, err := store.NewFileStore(path).Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Items, 2)
	assert.False(t, snap.Items[0].InStock)
	assert.False(t, snap.Items[1].InStock)
}
