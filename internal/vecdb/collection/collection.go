// Package collection implements the user-facing id space on top of an HNSW
// graph: callers address vectors by their own uint64 ids, never by the
// graph's internal int64 ids. The collection also keeps the verbatim
// original vector for every live point, so Get never depends on how the index
// represents vectors internally; Get reads from this in-memory copy.
package collection

import (
	"sync"
	"time"

	"github.com/Aman-CERP/vecdb/internal/vecdb/hnsw"
	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdberr"
)

// Params are the HNSW construction parameters a collection is opened with.
type Params struct {
	M              int
	EfConstruction int
	EfSearch       int
}

// Stats summarizes a collection's current state.
type Stats struct {
	Count        int
	DeletedCount int
}

// Hit is one search result, translated back into the caller's id space.
type Hit struct {
	ID       uint64
	Distance float32
}

// Collection binds a name and dimension/metric to an HNSW graph, and
// maintains the bijection between caller-chosen uint64 ids and the graph's
// internally assigned, monotonically increasing int64 ids.
type Collection struct {
	mu sync.RWMutex

	name   string
	dim    int
	metric string
	params Params

	graph *hnsw.Graph

	userToInternal map[uint64]int64
	internalToUser map[int64]uint64
	vectors        map[uint64][]float32
	nextInternal   int64
	deletedCount   int

	createdAt time.Time
	updatedAt time.Time
}

// New creates an empty collection over a fresh HNSW graph.
func New(name string, dim int, metric string, params Params) (*Collection, error) {
	if name == "" {
		return nil, vecdberr.New(vecdberr.InvalidArgument, "collection name must not be empty")
	}

	graph, err := hnsw.New(dim, metric, params.M, params.EfConstruction)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Collection{
		name:           name,
		dim:            dim,
		metric:         metric,
		params:         params,
		graph:          graph,
		userToInternal: make(map[uint64]int64),
		internalToUser: make(map[int64]uint64),
		vectors:        make(map[uint64][]float32),
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// FromGraph wires an already-populated graph (e.g. just deserialized from
// disk) together with the id-bijection state the persistence layer restored
// alongside it. createdAt/updatedAt are the timestamps recorded in the
// collection's .meta file; a zero time means the file predates timestamp
// tracking.
func FromGraph(name string, dim int, metric string, params Params, graph *hnsw.Graph,
	userToInternal map[uint64]int64, vectors map[uint64][]float32, nextInternal int64, deletedCount int,
	createdAt, updatedAt time.Time) *Collection {

	internalToUser := make(map[int64]uint64, len(userToInternal))
	for u, i := range userToInternal {
		internalToUser[i] = u
	}

	return &Collection{
		name:           name,
		dim:            dim,
		metric:         metric,
		params:         params,
		graph:          graph,
		userToInternal: userToInternal,
		internalToUser: internalToUser,
		vectors:        vectors,
		nextInternal:   nextInternal,
		deletedCount:   deletedCount,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// Name, Dimension, Metric, Params are read-only accessors describing how the
// collection was configured.
func (c *Collection) Name() string   { return c.name }
func (c *Collection) Dimension() int { return c.dim }
func (c *Collection) Metric() string { return c.metric }
func (c *Collection) Params() Params { return c.params }

// CreatedAt and UpdatedAt report when the collection was created and last
// mutated (by Insert or Delete). Read-only convenience, not part of the
// id-bijection or search invariants.
func (c *Collection) CreatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.createdAt
}

func (c *Collection) UpdatedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updatedAt
}

// Stats reports the collection's current live/tombstoned counts.
func (c *Collection) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Count: len(c.userToInternal), DeletedCount: c.deletedCount}
}

// Count returns the number of live points.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.userToInternal)
}

// Contains reports whether id currently maps to a live point.
func (c *Collection) Contains(id uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.userToInternal[id]
	return ok
}

// Insert adds vector under the caller-chosen id. Re-using an id that is
// currently live is rejected as DuplicateId; inserting under an id that was
// previously deleted is allowed and receives a brand-new internal id (ids
// are never reused once tombstoned).
func (c *Collection) Insert(id uint64, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(vector) != c.dim {
		return vecdberr.New(vecdberr.DimensionMismatch, "collection %q expects dimension %d, got %d", c.name, c.dim, len(vector))
	}
	if _, exists := c.userToInternal[id]; exists {
		return vecdberr.New(vecdberr.DuplicateID, "id %d already exists in collection %q", id, c.name)
	}

	internal := c.nextInternal
	if err := c.graph.Add(internal, vector); err != nil {
		return err
	}
	c.nextInternal++

	c.userToInternal[id] = internal
	c.internalToUser[internal] = id

	stored := make([]float32, len(vector))
	copy(stored, vector)
	c.vectors[id] = stored
	c.updatedAt = time.Now()

	return nil
}

// Get returns the verbatim vector stored under id, or (nil, nil) if id is
// not currently live — a miss is the documented "none" case, not an error.
func (c *Collection) Get(id uint64) ([]float32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.vectors[id]
	if !ok {
		return nil, nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out, nil
}

// Delete tombstones id. Idempotent: returns false if id was not live.
func (c *Collection) Delete(id uint64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	internal, ok := c.userToInternal[id]
	if !ok {
		return false, nil
	}

	c.graph.Remove(internal)
	delete(c.userToInternal, id)
	delete(c.internalToUser, internal)
	delete(c.vectors, id)
	c.deletedCount++
	c.updatedAt = time.Now()

	return true, nil
}

// Search returns up to k nearest neighbors of query, translated back into
// caller ids.
func (c *Collection) Search(query []float32, k int) ([]Hit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(query) != c.dim {
		return nil, vecdberr.New(vecdberr.DimensionMismatch, "collection %q expects dimension %d, got %d", c.name, c.dim, len(query))
	}

	efSearch := c.params.EfSearch
	results, err := c.graph.Search(query, k, efSearch)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		userID, ok := c.internalToUser[r.ID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{ID: userID, Distance: r.Distance})
	}
	return hits, nil
}

// Snapshot exposes the internal state the persistence layer needs to write a
// collection to disk: the graph itself, the id bijection, the verbatim
// vectors, the next internal id to hand out, the tombstone count, and the
// creation/last-modified timestamps.
func (c *Collection) Snapshot() (graph *hnsw.Graph, userToInternal map[uint64]int64, vectors map[uint64][]float32, nextInternal int64, deletedCount int, createdAt, updatedAt time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	userToInternal = make(map[uint64]int64, len(c.userToInternal))
	for u, i := range c.userToInternal {
		userToInternal[u] = i
	}
	vectors = make(map[uint64][]float32, len(c.vectors))
	for id, v := range c.vectors {
		cp := make([]float32, len(v))
		copy(cp, v)
		vectors[id] = cp
	}

	return c.graph, userToInternal, vectors, c.nextInternal, c.deletedCount, c.createdAt, c.updatedAt
}

