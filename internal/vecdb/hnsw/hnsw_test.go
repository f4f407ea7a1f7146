package hnsw

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/vecdb/internal/vecdb/distance"
	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdberr"
)

func randVec(r *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = r.Float32()*2 - 1
	}
	return v
}

func TestNew_RejectsBadParameters(t *testing.T) {
	_, err := New(0, distance.L2, 16, 100)
	require.Error(t, err)
	assert.True(t, vecdberr.Is(err, vecdberr.InvalidArgument))

	_, err = New(4, "manhattan", 16, 100)
	require.Error(t, err)

	_, err = New(4, distance.L2, 1, 100)
	require.Error(t, err)
	assert.True(t, vecdberr.Is(err, vecdberr.InvalidArgument))

	_, err = New(4, distance.L2, 16, 0)
	require.Error(t, err)
}

func TestAdd_SizeInvariant(t *testing.T) {
	// Given: a fresh graph
	g, err := New(8, distance.L2, 16, 100)
	require.NoError(t, err)

	// When: 50 distinct ids are added
	r := rand.New(rand.NewSource(1))
	for i := int64(0); i < 50; i++ {
		require.NoError(t, g.Add(i, randVec(r, 8)))
	}

	// Then: Len reports exactly 50 live nodes
	assert.Equal(t, 50, g.Len())
}

func TestAdd_DuplicateIDRejected(t *testing.T) {
	g, err := New(4, distance.L2, 16, 100)
	require.NoError(t, err)

	require.NoError(t, g.Add(1, []float32{1, 2, 3, 4}))
	err = g.Add(1, []float32{5, 6, 7, 8})
	require.Error(t, err)
	assert.True(t, vecdberr.Is(err, vecdberr.DuplicateID))
}

func TestAdd_DimensionMismatchRejected(t *testing.T) {
	g, err := New(4, distance.L2, 16, 100)
	require.NoError(t, err)

	err = g.Add(1, []float32{1, 2, 3})
	require.Error(t, err)
	assert.True(t, vecdberr.Is(err, vecdberr.DimensionMismatch))
}

func TestSearch_ExactMatchIsFirstResult(t *testing.T) {
	// Given: a graph with several random vectors and one known vector
	g, err := New(16, distance.L2, 16, 200)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(7))
	for i := int64(0); i < 300; i++ {
		require.NoError(t, g.Add(i, randVec(r, 16)))
	}

	target := randVec(r, 16)
	require.NoError(t, g.Add(999, target))

	// When: searching for the exact vector just inserted
	results, err := g.Search(target, 5, 64)
	require.NoError(t, err)

	// Then: its own id comes back first with distance 0
	require.NotEmpty(t, results)
	assert.Equal(t, int64(999), results[0].ID)
	assert.InDelta(t, float32(0), results[0].Distance, 1e-4)
}

func TestSearch_ReturnsAscendingByDistance(t *testing.T) {
	g, err := New(8, distance.L2, 16, 100)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(3))
	for i := int64(0); i < 200; i++ {
		require.NoError(t, g.Add(i, randVec(r, 8)))
	}

	results, err := g.Search(randVec(r, 8), 10, 64)
	require.NoError(t, err)
	require.Len(t, results, 10)

	assert.True(t, sort.SliceIsSorted(results, func(i, j int) bool {
		return results[i].Distance <= results[j].Distance
	}))
}

func unitVec(r *rand.Rand, dim int) []float32 {
	v := randVec(r, dim)
	var normSq float32
	for _, c := range v {
		normSq += c * c
	}
	norm := float32(math.Sqrt(float64(normSq)))
	if norm == 0 {
		v[0] = 1
		return v
	}
	for i := range v {
		v[i] /= norm
	}
	return v
}

func TestSearch_RecallAgainstBruteForce(t *testing.T) {
	// Given: 1,000 uniformly random 128-d unit vectors indexed with
	// M=16, ef_construction=200
	const dim = 128
	const n = 1000
	const k = 10
	const efSearch = 50

	g, err := New(dim, distance.L2, 16, 200)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(99))
	vectors := make(map[int64][]float32, n)
	for i := int64(0); i < n; i++ {
		v := unitVec(r, dim)
		vectors[i] = v
		require.NoError(t, g.Add(i, v))
	}

	type hit struct {
		id   int64
		dist float32
	}

	// When: querying with ef_search=50 across many independent query
	// vectors and averaging recall@10 against brute force — a single
	// k=10 query can only land on a multiple of 1/10, so the spec's
	// continuous 0.95 threshold is only meaningful averaged over queries.
	const numQueries = 30
	var totalRecall float64
	for q := 0; q < numQueries; q++ {
		query := unitVec(r, dim)

		truth := make([]hit, 0, len(vectors))
		for id, v := range vectors {
			truth = append(truth, hit{id, distance.L2Distance(query, v)})
		}
		sort.Slice(truth, func(i, j int) bool { return truth[i].dist < truth[j].dist })
		trueTop := make(map[int64]bool, k)
		for i := 0; i < k; i++ {
			trueTop[truth[i].id] = true
		}

		results, err := g.Search(query, k, efSearch)
		require.NoError(t, err)
		require.Len(t, results, k)

		hits := 0
		for _, res := range results {
			if trueTop[res.ID] {
				hits++
			}
		}
		totalRecall += float64(hits) / float64(k)
	}

	// Then: average recall@10 across queries is at least 0.95
	avgRecall := totalRecall / float64(numQueries)
	assert.GreaterOrEqual(t, avgRecall, 0.95, "expected average recall@10 >= 0.95 against brute force")
}

func TestRemove_TombstonesWithoutBreakingNavigability(t *testing.T) {
	g, err := New(8, distance.L2, 16, 100)
	require.NoError(t, err)

	r := rand.New(rand.NewSource(11))
	ids := make([]int64, 0, 100)
	for i := int64(0); i < 100; i++ {
		require.NoError(t, g.Add(i, randVec(r, 8)))
		ids = append(ids, i)
	}

	// When: half of the ids are removed
	for i := 0; i < 50; i++ {
		removed := g.Remove(ids[i])
		assert.True(t, removed)
	}

	// Then: Len reflects only live nodes, and removing twice is a no-op
	assert.Equal(t, 50, g.Len())
	assert.False(t, g.Remove(ids[0]))

	// And: search never returns a tombstoned id
	results, err := g.Search(randVec(r, 8), 50, 128)
	require.NoError(t, err)
	for _, res := range results {
		assert.GreaterOrEqual(t, res.ID, int64(50))
	}
}

func TestSearch_EmptyGraphReturnsNoResults(t *testing.T) {
	g, err := New(4, distance.L2, 16, 100)
	require.NoError(t, err)

	results, err := g.Search([]float32{1, 2, 3, 4}, 5, 64)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_RejectsBadArguments(t *testing.T) {
	g, err := New(4, distance.L2, 16, 100)
	require.NoError(t, err)
	require.NoError(t, g.Add(1, []float32{1, 2, 3, 4}))

	_, err = g.Search([]float32{1, 2, 3}, 1, 64)
	require.Error(t, err)
	assert.True(t, vecdberr.Is(err, vecdberr.DimensionMismatch))

	_, err = g.Search([]float32{1, 2, 3, 4}, 0, 64)
	require.Error(t, err)
	assert.True(t, vecdberr.Is(err, vecdberr.InvalidArgument))
}

func TestNewSeeded_IsDeterministic(t *testing.T) {
	// Given: two graphs built from identical inputs with the same seed
	build := func() *Graph {
		g, err := NewSeeded(6, distance.L2, 8, 64, 42)
		require.NoError(t, err)
		r := rand.New(rand.NewSource(5))
		for i := int64(0); i < 80; i++ {
			require.NoError(t, g.Add(i, randVec(r, 6)))
		}
		return g
	}
	g1 := build()
	g2 := build()

	// Then: they serialize to identical bytes
	b1, err := g1.Serialize()
	require.NoError(t, err)
	b2, err := g2.Serialize()
	require.NoError(t, err)
	assert.Equal(t, b1, b2)
}
