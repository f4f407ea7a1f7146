package hnsw

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"math/rand"
	"sort"

	"github.com/Aman-CERP/vecdb/internal/vecdb/distance"
	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdberr"
)

// codecVersion is bumped whenever the on-disk layout changes incompatibly.
// Deserialize refuses to read any other version.
const codecVersion uint32 = 1

// Serialize encodes the graph into a self-describing little-endian format: a
// header (version, dim, metric, M, ef_construction, entry point or -1, max
// level, node count), then per node its id, top level, vector, tombstone flag
// and one neighbor list per level. Nodes are written in ascending
// internal-id order (not map iteration order) so that two calls against the
// same logical graph state always produce byte-identical output.
func (g *Graph) Serialize() ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var buf bytes.Buffer

	writeU32(&buf, codecVersion)
	writeU64(&buf, uint64(g.dim))
	writeString(&buf, g.metric)
	writeU64(&buf, uint64(g.m))
	writeU64(&buf, uint64(g.efConstruction))

	entryPoint := int64(-1)
	if g.hasEntry {
		entryPoint = g.entryPoint
	}
	writeI64(&buf, entryPoint)

	writeI32(&buf, g.maxLevel)
	writeU64(&buf, uint64(len(g.nodes)))

	ids := make([]int64, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		n := g.nodes[id]
		writeI64(&buf, n.id)
		writeI32(&buf, n.level)
		for _, v := range n.vector {
			writeF32(&buf, v)
		}
		if g.deleted[n.id] {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
		for lvl := int32(0); lvl <= n.level; lvl++ {
			neighbors := n.neighbors[lvl]
			writeU32(&buf, uint32(len(neighbors)))
			for _, nb := range neighbors {
				writeI64(&buf, nb)
			}
		}
	}

	return buf.Bytes(), nil
}

// Deserialize rebuilds a Graph from bytes produced by Serialize. It does not
// re-run level assignment or insertion — the adjacency lists are restored
// verbatim, so search results are bit-for-bit identical to the graph that
// was serialized.
func Deserialize(data []byte) (*Graph, error) {
	r := bytes.NewReader(data)

	version, err := readU32(r)
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading version")
	}
	if version != codecVersion {
		return nil, vecdberr.New(vecdberr.Deserialization, "unsupported codec version %d", version)
	}

	dim, err := readU64(r)
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading dimension")
	}
	metric, err := readString(r)
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading metric")
	}
	distFn, err := distance.New(metric)
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "unknown metric %q", metric)
	}
	m, err := readU64(r)
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading M")
	}
	efConstruction, err := readU64(r)
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading ef_construction")
	}

	entryPoint, err := readI64(r)
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading entry point")
	}
	hasEntry := entryPoint != -1

	maxLevel, err := readI32(r)
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading max level")
	}
	nodeCount, err := readU64(r)
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading node count")
	}

	g := &Graph{
		dim:            int(dim),
		metric:         metric,
		distFn:         distFn,
		m:              int(m),
		mMax0:          2 * int(m),
		efConstruction: int(efConstruction),
		rng:            rand.New(rand.NewSource(defaultSeed)),
		nodes:          make(map[int64]*node, nodeCount),
		deleted:        make(map[int64]bool),
		entryPoint:     entryPoint,
		hasEntry:       hasEntry,
		maxLevel:       maxLevel,
	}

	for i := uint64(0); i < nodeCount; i++ {
		id, err := readI64(r)
		if err != nil {
			return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading node id")
		}
		level, err := readI32(r)
		if err != nil {
			return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading node level")
		}

		vector := make([]float32, g.dim)
		for d := 0; d < g.dim; d++ {
			vector[d], err = readF32(r)
			if err != nil {
				return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading vector component")
			}
		}

		deletedByte, err := r.ReadByte()
		if err != nil {
			return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading tombstone flag")
		}

		n := &node{id: id, vector: vector, level: level, neighbors: make([][]int64, level+1)}
		for lvl := int32(0); lvl <= level; lvl++ {
			count, err := readU32(r)
			if err != nil {
				return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading neighbor count")
			}
			neighbors := make([]int64, count)
			for j := uint32(0); j < count; j++ {
				neighbors[j], err = readI64(r)
				if err != nil {
					return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading neighbor id")
				}
			}
			n.neighbors[lvl] = neighbors
		}

		g.nodes[id] = n
		if deletedByte == 1 {
			g.deleted[id] = true
		}
	}

	return g, nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeI32(buf *bytes.Buffer, v int32) { writeU32(buf, uint32(v)) }

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func writeI64(buf *bytes.Buffer, v int64) {
	writeU64(buf, uint64(v))
}

func writeF32(buf *bytes.Buffer, v float32) {
	writeU32(buf, math.Float32bits(v))
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func readI32(r io.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}

func readU64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func readI64(r io.Reader) (int64, error) {
	v, err := readU64(r)
	return int64(v), err
}

func readF32(r io.Reader) (float32, error) {
	v, err := readU32(r)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func readString(r io.Reader) (string, error) {
	n, err := readU32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", err
	}
	return string(b), nil
}
