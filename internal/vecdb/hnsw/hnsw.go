// Package hnsw implements a Hierarchical Navigable Small World graph: insert,
// k-NN search, lazy deletion, and a self-contained binary codec. It has no
// knowledge of user-facing ids or on-disk layout — those are the collection
// and persistence layers' concerns (internal/vecdb/collection,
// internal/vecdb/persistence). This package only ever sees internal ids.
package hnsw

import (
	"container/heap"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/Aman-CERP/vecdb/internal/vecdb/distance"
	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdberr"
)

// defaultSeed seeds the level-generation RNG used by New, so that tests and
// reseeded rebuilds are reproducible. Production callers that want a fresh
// random graph shape call NewSeeded with a time-derived seed explicitly —
// this package never reads the clock itself.
const defaultSeed = 0xC0FFEE

// maxLevelCap bounds the level a single insert can be assigned, guarding
// against pathological configurations; with the M values this package
// accepts (>= 2) the computed level never approaches it in practice.
const maxLevelCap = 32

// Result is one hit of a Search call.
type Result struct {
	ID       int64
	Distance float32
}

type node struct {
	id        int64
	vector    []float32
	level     int32
	neighbors [][]int64 // neighbors[l] for l in 0..level
}

// Graph is a single HNSW index over fixed-dimensional vectors identified by
// internal id.
type Graph struct {
	dim            int
	metric         string
	distFn         distance.Func
	m              int
	mMax0          int
	efConstruction int

	mu         sync.RWMutex
	rngMu      sync.Mutex
	rng        *rand.Rand
	nodes      map[int64]*node
	deleted    map[int64]bool
	entryPoint int64
	hasEntry   bool
	maxLevel   int32
}

// New creates an empty index seeded from a fixed constant.
func New(dim int, metric string, m, efConstruction int) (*Graph, error) {
	return NewSeeded(dim, metric, m, efConstruction, defaultSeed)
}

// NewSeeded creates an empty index with an explicit level-generation seed.
func NewSeeded(dim int, metric string, m, efConstruction int, seed int64) (*Graph, error) {
	if dim < 1 {
		return nil, vecdberr.New(vecdberr.InvalidArgument, "dimension must be >= 1, got %d", dim)
	}
	distFn, err := distance.New(metric)
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.InvalidArgument, err, "unknown metric %q", metric)
	}
	if m < 2 {
		// 1/ln(M) is undefined at M=1 and meaningless below it; spec.md's
		// level formula has no defined behavior here, so we reject up front
		// rather than let it surface as a NaN level at insert time.
		return nil, vecdberr.New(vecdberr.InvalidArgument, "M must be >= 2, got %d", m)
	}
	if efConstruction < 1 {
		return nil, vecdberr.New(vecdberr.InvalidArgument, "ef_construction must be >= 1, got %d", efConstruction)
	}

	return &Graph{
		dim:            dim,
		metric:         metric,
		distFn:         distFn,
		m:              m,
		mMax0:          2 * m,
		efConstruction: efConstruction,
		rng:            rand.New(rand.NewSource(seed)),
		nodes:          make(map[int64]*node),
		deleted:        make(map[int64]bool),
		maxLevel:       -1,
	}, nil
}

// Dim, Metric, M, EfConstruction expose the index's immutable configuration.
func (g *Graph) Dim() int            { return g.dim }
func (g *Graph) Metric() string      { return g.metric }
func (g *Graph) M() int              { return g.m }
func (g *Graph) EfConstruction() int { return g.efConstruction }

// Len returns the number of live (non-tombstoned) nodes.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes) - len(g.deleted)
}

// assignLevel draws the new node's top level from the exponential
// distribution with parameter ln(M), per spec.md §4.2.
func (g *Graph) assignLevel() int32 {
	g.rngMu.Lock()
	u := 1 - g.rng.Float64() // uniform on (0,1]
	g.rngMu.Unlock()

	lvl := math.Floor(-math.Log(u) / math.Log(float64(g.m)))
	if lvl < 0 {
		lvl = 0
	}
	if lvl > maxLevelCap {
		lvl = maxLevelCap
	}
	return int32(lvl)
}

// Add inserts a new internal id with its vector into the graph.
func (g *Graph) Add(id int64, vector []float32) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(vector) != g.dim {
		return vecdberr.New(vecdberr.DimensionMismatch, "expected dimension %d, got %d", g.dim, len(vector))
	}
	if _, exists := g.nodes[id]; exists {
		return vecdberr.New(vecdberr.DuplicateID, "internal id %d already exists", id)
	}

	level := g.assignLevel()
	vec := make([]float32, len(vector))
	copy(vec, vector)
	n := &node{id: id, vector: vec, level: level, neighbors: make([][]int64, level+1)}
	g.nodes[id] = n

	if !g.hasEntry {
		g.hasEntry = true
		g.entryPoint = id
		g.maxLevel = level
		return nil
	}

	current := g.entryPoint
	for lvl := g.maxLevel; lvl > level; lvl-- {
		current = g.greedyDescend(vec, current, lvl)
	}

	top := level
	if g.maxLevel < top {
		top = g.maxLevel
	}
	for lvl := top; lvl >= 0; lvl-- {
		candidates := g.searchLayer(vec, current, lvl, g.efConstruction)

		capacity := g.m
		if lvl == 0 {
			capacity = g.mMax0
		}
		selected := candidates
		if len(selected) > capacity {
			selected = selected[:capacity]
		}

		neighborIDs := make([]int64, len(selected))
		for i, c := range selected {
			neighborIDs[i] = c.id
		}
		n.neighbors[lvl] = neighborIDs

		for _, c := range selected {
			nb := g.nodes[c.id]
			nb.neighbors[lvl] = append(nb.neighbors[lvl], id)
			nbCap := g.m
			if lvl == 0 {
				nbCap = g.mMax0
			}
			if len(nb.neighbors[lvl]) > nbCap {
				g.pruneNeighbors(nb, lvl, nbCap)
			}
		}

		if len(candidates) > 0 {
			current = candidates[0].id
		}
	}

	if level > g.maxLevel {
		g.maxLevel = level
		g.entryPoint = id
	}

	return nil
}

// pruneNeighbors trims nb's adjacency at lvl back down to cap, keeping the
// neighbors closest to nb (recomputed from nb's current vector).
func (g *Graph) pruneNeighbors(nb *node, lvl int32, capacity int) {
	neighbors := nb.neighbors[lvl]
	pairs := make([]candidate, len(neighbors))
	for i, id := range neighbors {
		pairs[i] = candidate{id: id, dist: g.distFn(nb.vector, g.nodes[id].vector)}
	}
	sort.Slice(pairs, func(i, j int) bool { return less(pairs[i], pairs[j]) })
	if len(pairs) > capacity {
		pairs = pairs[:capacity]
	}
	out := make([]int64, len(pairs))
	for i, p := range pairs {
		out[i] = p.id
	}
	nb.neighbors[lvl] = out
}

// greedyDescend walks from entry to a strict local minimum of distance to
// query within level, via best-improvement hill climbing.
func (g *Graph) greedyDescend(query []float32, entry int64, level int32) int64 {
	current := entry
	currentDist := g.distFn(query, g.nodes[current].vector)

	for {
		n := g.nodes[current]
		bestID := int64(-1)
		var bestDist float32
		for _, nbID := range n.neighbors[level] {
			d := g.distFn(query, g.nodes[nbID].vector)
			if bestID == -1 || less(candidate{nbID, d}, candidate{bestID, bestDist}) {
				bestID = nbID
				bestDist = d
			}
		}
		if bestID == -1 || !(bestDist < currentDist) {
			return current
		}
		current = bestID
		currentDist = bestDist
	}
}

// searchLayer is the bounded best-first search primitive shared by insertion
// and top-level search: up to ef nearest nodes to query reachable from entry
// within level, returned ascending by distance. Tombstoned nodes are not
// filtered — the graph must stay navigable through deleted nodes.
func (g *Graph) searchLayer(query []float32, entry int64, level int32, ef int) []candidate {
	visited := map[int64]bool{entry: true}
	entryDist := g.distFn(query, g.nodes[entry].vector)

	frontier := &minHeap{{id: entry, dist: entryDist}}
	heap.Init(frontier)
	results := &maxHeap{{id: entry, dist: entryDist}}
	heap.Init(results)

	for frontier.Len() > 0 {
		cur := heap.Pop(frontier).(candidate)
		worst := (*results)[0]
		if less(worst, cur) {
			break
		}

		n := g.nodes[cur.id]
		if n.level < level {
			continue
		}
		for _, nbID := range n.neighbors[level] {
			if visited[nbID] {
				continue
			}
			visited[nbID] = true

			d := g.distFn(query, g.nodes[nbID].vector)
			cand := candidate{id: nbID, dist: d}
			worst = (*results)[0]
			if results.Len() < ef || less(cand, worst) {
				heap.Push(frontier, cand)
				heap.Push(results, cand)
				if results.Len() > ef {
					heap.Pop(results)
				}
			}
		}
	}

	out := make([]candidate, results.Len())
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(results).(candidate)
	}
	return out
}

// Search returns up to k internal-id/distance pairs nearest to query,
// ascending by distance, skipping tombstoned ids.
func (g *Graph) Search(query []float32, k int, efSearch int) ([]Result, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(query) != g.dim {
		return nil, vecdberr.New(vecdberr.DimensionMismatch, "expected dimension %d, got %d", g.dim, len(query))
	}
	if k < 1 {
		return nil, vecdberr.New(vecdberr.InvalidArgument, "k must be >= 1, got %d", k)
	}
	if !g.hasEntry {
		return []Result{}, nil
	}

	current := g.entryPoint
	for lvl := g.maxLevel; lvl > 0; lvl-- {
		current = g.greedyDescend(query, current, lvl)
	}

	ef := efSearch
	if ef < k {
		ef = k
	}
	candidates := g.searchLayer(query, current, 0, ef)

	results := make([]Result, 0, k)
	for _, c := range candidates {
		if g.deleted[c.id] {
			continue
		}
		results = append(results, Result{ID: c.id, Distance: c.dist})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

// Remove tombstones id. Idempotent: returns true iff id was live before the
// call. The node stays in the graph as a routing vertex.
func (g *Graph) Remove(id int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; !exists {
		return false
	}
	if g.deleted[id] {
		return false
	}
	g.deleted[id] = true
	return true
}
