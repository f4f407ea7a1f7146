package persistence

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/vecdb/internal/vecdb/collection"
	"github.com/Aman-CERP/vecdb/internal/vecdb/distance"
	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdberr"
)

func testParams() collection.Params {
	return collection.Params{M: 16, EfConstruction: 100, EfSearch: 64}
}

func randVec(r *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = r.Float32()*2 - 1
	}
	return v
}

func buildPopulatedCollection(t *testing.T, name string, n int) *collection.Collection {
	t.Helper()
	c, err := collection.New(name, 8, distance.L2, testParams())
	require.NoError(t, err)

	r := rand.New(rand.NewSource(1))
	for i := uint64(0); i < uint64(n); i++ {
		require.NoError(t, c.Insert(i, randVec(r, 8)))
	}
	for i := uint64(0); i < uint64(n); i += 5 {
		_, err := c.Delete(i)
		require.NoError(t, err)
	}
	return c
}

func TestSaveLoadCollection_RoundTripsCountAndQueries(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	c := buildPopulatedCollection(t, "docs", 200)

	query := randVec(rand.New(rand.NewSource(2)), 8)
	wantHits, err := c.Search(query, 10)
	require.NoError(t, err)

	require.NoError(t, store.SaveCollection(c))

	loaded, found, err := store.LoadCollection("docs")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, c.Count(), loaded.Count())
	assert.Equal(t, c.Stats().DeletedCount, loaded.Stats().DeletedCount)

	gotHits, err := loaded.Search(query, 10)
	require.NoError(t, err)
	require.Equal(t, len(wantHits), len(gotHits))
	for i := range gotHits {
		assert.Equal(t, wantHits[i].ID, gotHits[i].ID)
		assert.InDelta(t, wantHits[i].Distance, gotHits[i].Distance, 1e-6)
	}
}

func TestLoadCollection_MissingReturnsNoneNotError(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	loaded, found, err := store.LoadCollection("nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, loaded)
}

func TestLoadCollection_CorruptHnswFileReturnsDeserializationError(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	c := buildPopulatedCollection(t, "docs", 20)
	require.NoError(t, store.SaveCollection(c))

	// Corrupt the .hnsw file's version field.
	hnswPath := store.hnswPath("docs")
	data, err := os.ReadFile(hnswPath)
	require.NoError(t, err)
	data[0] = 0xFF
	require.NoError(t, os.WriteFile(hnswPath, data, 0o644))

	_, _, err = store.LoadCollection("docs")
	require.Error(t, err)
	assert.True(t, vecdberr.Is(err, vecdberr.Deserialization))
}

func TestDeleteCollection_RemovesFilesAndReportsExistence(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	c := buildPopulatedCollection(t, "docs", 10)
	require.NoError(t, store.SaveCollection(c))

	existed, err := store.DeleteCollection("docs")
	require.NoError(t, err)
	assert.True(t, existed)

	_, err = os.Stat(store.metaPath("docs"))
	assert.True(t, os.IsNotExist(err))

	existed, err = store.DeleteCollection("docs")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestListCollections_EnumeratesByMetaFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveCollection(buildPopulatedCollection(t, "alpha", 5)))
	require.NoError(t, store.SaveCollection(buildPopulatedCollection(t, "beta", 5)))

	names, err := store.ListCollections()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)
}

func TestSaveLoadMetadata_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveMetadata([]string{"beta", "alpha"}))

	names, err := store.LoadMetadata()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, names)

	raw, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version": 1`)
}

func TestLoadMetadata_MissingFileIsEmptyNotError(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	names, err := store.LoadMetadata()
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSaveCollection_AtomicWriteLeavesNoTmpFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, store.SaveCollection(buildPopulatedCollection(t, "docs", 30)))

	entries, err := os.ReadDir(store.collectionsDir())
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp")
	}
}

// TestSaveCollection_TruncationAtEveryOffsetNeverYieldsMixedState simulates a
// crash partway through writing one of a collection's three files: it
// truncates that file at every byte offset short of its full length (as if
// the crash landed mid-fsync, before rename ever replaces the prior
// snapshot). At every offset, LoadCollection must either fail cleanly with a
// Deserialization error or — the one tolerated case, a .meta file truncated
// only in its trailing CreatedAt/UpdatedAt fields — succeed with exactly the
// original collection's configuration and counts. It must never silently
// load a collection whose params or counts disagree with what was saved.
func TestSaveCollection_TruncationAtEveryOffsetNeverYieldsMixedState(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	c := buildPopulatedCollection(t, "docs", 20)
	require.NoError(t, store.SaveCollection(c))

	for _, path := range []string{store.metaPath("docs"), store.hnswPath("docs"), store.vectorsPath("docs")} {
		original, err := os.ReadFile(path)
		require.NoError(t, err)
		require.NotEmpty(t, original)

		for offset := 0; offset < len(original); offset++ {
			require.NoError(t, os.WriteFile(path, original[:offset], 0o644))

			loaded, found, err := store.LoadCollection("docs")
			if err != nil {
				assert.Truef(t, vecdberr.Is(err, vecdberr.Deserialization),
					"truncating %s at offset %d should report Deserialization, got %v", filepath.Base(path), offset, err)
				continue
			}

			// A clean (non-error) load at a truncated offset is only
			// tolerated for the .meta file's trailing timestamp fields — the
			// rest of the collection's state must match the original exactly.
			require.Truef(t, found, "truncating %s at offset %d: LoadCollection reported not-found instead of erroring or loading", filepath.Base(path), offset)
			assert.Equalf(t, c.Count(), loaded.Count(), "truncating %s at offset %d yielded a mismatched live count", filepath.Base(path), offset)
			assert.Equalf(t, c.Stats().DeletedCount, loaded.Stats().DeletedCount, "truncating %s at offset %d yielded a mismatched tombstone count", filepath.Base(path), offset)
			assert.Equalf(t, c.Dimension(), loaded.Dimension(), "truncating %s at offset %d yielded a mismatched dimension", filepath.Base(path), offset)
			assert.Equalf(t, c.Metric(), loaded.Metric(), "truncating %s at offset %d yielded a mismatched metric", filepath.Base(path), offset)
			assert.Equalf(t, c.Params(), loaded.Params(), "truncating %s at offset %d yielded mismatched params", filepath.Base(path), offset)
		}

		require.NoError(t, os.WriteFile(path, original, 0o644))
	}

	// The untruncated files still load cleanly once restored.
	loaded, found, err := store.LoadCollection("docs")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, c.Count(), loaded.Count())
}
