package hnsw

import "github.com/chewxy/math32"

// candidate pairs an internal id with its distance to some query. Ordering
// everywhere in this package is (distance ascending, id ascending on ties) so
// that search and insertion are fully deterministic given the same graph
// state — required for the serialize/deserialize round-trip property.
type candidate struct {
	id   int64
	dist float32
}

// less reports whether a sorts before b: smaller distance wins, ties broken
// by the smaller internal id. NaN distances (which the distance kernels
// should never produce, but which IEEE-754 arithmetic can in principle yield)
// are treated as worse than any finite distance.
func less(a, b candidate) bool {
	aNaN, bNaN := math32.IsNaN(a.dist), math32.IsNaN(b.dist)
	if aNaN || bNaN {
		if aNaN && bNaN {
			return a.id < b.id
		}
		return bNaN // a is "less" (better) only if b is the NaN one
	}
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.id < b.id
}

// minHeap is a standard container/heap min-heap over candidate using less.
// Used for the search frontier: pop always yields the closest unexplored
// candidate.
type minHeap []candidate

func (h minHeap) Len() int            { return len(h) }
func (h minHeap) Less(i, j int) bool  { return less(h[i], h[j]) }
func (h minHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// maxHeap is a container/heap max-heap over candidate using less (reversed),
// so the root is always the current worst of the bounded result set — the
// one evicted first when the set grows past its capacity.
type maxHeap []candidate

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return less(h[j], h[i]) }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
