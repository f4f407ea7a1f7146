// Package persistence implements the on-disk layout for collections: atomic
// file writes via a temp-file-plus-rename commit point, and the load/save/
// list/delete operations the façade drives. Nothing in this package holds a
// collection in memory longer than the duration of one call.
package persistence

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/vecdb/internal/vecdb/collection"
	"github.com/Aman-CERP/vecdb/internal/vecdb/hnsw"
	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdberr"
)

const (
	metaVersion     = 1
	vectorsVersion  = uint32(1)
	metadataVersion = 1
)

// Store roots a database directory: <root>/metadata.json and
// <root>/collections/<name>.{meta,hnsw,vectors}.
type Store struct {
	root string
}

// Open returns a Store rooted at dir, creating the directory tree if it does
// not yet exist.
func Open(dir string) (*Store, error) {
	collectionsDir := filepath.Join(dir, "collections")
	if err := os.MkdirAll(collectionsDir, 0o755); err != nil {
		return nil, vecdberr.Wrap(vecdberr.InvalidArgument, err, "creating database directory %q", dir)
	}
	return &Store{root: dir}, nil
}

func (s *Store) collectionsDir() string { return filepath.Join(s.root, "collections") }
func (s *Store) metaPath(name string) string {
	return filepath.Join(s.collectionsDir(), name+".meta")
}
func (s *Store) hnswPath(name string) string {
	return filepath.Join(s.collectionsDir(), name+".hnsw")
}
func (s *Store) vectorsPath(name string) string {
	return filepath.Join(s.collectionsDir(), name+".vectors")
}
func (s *Store) metadataPath() string { return filepath.Join(s.root, "metadata.json") }

// collectionMeta is the structured-text sibling of a collection's binary
// files, stored as YAML.
type collectionMeta struct {
	Version        int    `yaml:"version"`
	Name           string `yaml:"name"`
	Dim            int    `yaml:"dim"`
	Metric         string `yaml:"metric"`
	Count          int    `yaml:"count"`
	DeletedCount   int    `yaml:"deleted_count"`
	NextInternalID int64  `yaml:"next_internal_id"`
	M              int    `yaml:"m"`
	EfConstruction int    `yaml:"ef_construction"`
	EfSearch       int    `yaml:"ef_search"`

	// CreatedAt/UpdatedAt are absent from .meta files written before these
	// fields existed; yaml.v3 leaves them as the zero time in that case,
	// which Info surfaces as-is rather than synthesizing a value.
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// databaseMetadata is the JSON root index of known collection names.
type databaseMetadata struct {
	Version     int      `json:"version"`
	Collections []string `json:"collections"`
}

// atomicWrite is the single commit primitive every file in this package goes
// through: write to a sibling .tmp, fsync it, then rename over the target.
// The rename is the only point at which the target's prior state is
// replaced, so any interruption before it leaves the previous file intact.
func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating temp file %q: %w", tmp, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing temp file %q: %w", tmp, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("fsyncing temp file %q: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing temp file %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %q to %q: %w", tmp, path, err)
	}
	return nil
}

// SaveCollection writes the .meta, .hnsw, and .vectors files for c, each
// through atomicWrite.
func (s *Store) SaveCollection(c *collection.Collection) error {
	graph, userToInternal, vectors, nextInternal, deletedCount, createdAt, updatedAt := c.Snapshot()

	meta := collectionMeta{
		Version:        metaVersion,
		Name:           c.Name(),
		Dim:            c.Dimension(),
		Metric:         c.Metric(),
		Count:          len(userToInternal),
		DeletedCount:   deletedCount,
		NextInternalID: nextInternal,
		M:              c.Params().M,
		EfConstruction: c.Params().EfConstruction,
		EfSearch:       c.Params().EfSearch,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
	metaBytes, err := yaml.Marshal(meta)
	if err != nil {
		return vecdberr.Wrap(vecdberr.InvalidArgument, err, "marshaling metadata for collection %q", c.Name())
	}

	hnswBytes, err := graph.Serialize()
	if err != nil {
		return vecdberr.Wrap(vecdberr.Deserialization, err, "serializing index for collection %q", c.Name())
	}

	vectorsBytes := encodeVectors(userToInternal, vectors, c.Dimension())

	if err := os.MkdirAll(s.collectionsDir(), 0o755); err != nil {
		return vecdberr.Wrap(vecdberr.InvalidArgument, err, "creating collections directory")
	}

	if err := atomicWrite(s.metaPath(c.Name()), metaBytes); err != nil {
		return vecdberr.Wrap(vecdberr.InvalidArgument, err, "saving meta for collection %q", c.Name())
	}
	if err := atomicWrite(s.hnswPath(c.Name()), hnswBytes); err != nil {
		return vecdberr.Wrap(vecdberr.InvalidArgument, err, "saving index for collection %q", c.Name())
	}
	if err := atomicWrite(s.vectorsPath(c.Name()), vectorsBytes); err != nil {
		return vecdberr.Wrap(vecdberr.InvalidArgument, err, "saving vectors for collection %q", c.Name())
	}

	return nil
}

// LoadCollection reconstructs a collection from its three files. A missing
// triple (directory or any of the three files absent) returns (nil, false,
// nil) — "none" in spec terms. A present-but-corrupt triple returns a
// Deserialization error.
func (s *Store) LoadCollection(name string) (*collection.Collection, bool, error) {
	metaBytes, err := os.ReadFile(s.metaPath(name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, vecdberr.Wrap(vecdberr.Deserialization, err, "reading meta for collection %q", name)
	}
	// yaml.Marshal ends every document with a newline; a .meta without one was
	// cut off mid-line, where a shortened number can still parse as a value.
	if len(metaBytes) == 0 || metaBytes[len(metaBytes)-1] != '\n' {
		return nil, false, vecdberr.New(vecdberr.Deserialization, "collection %q: meta file is truncated", name)
	}

	var meta collectionMeta
	if err := yaml.Unmarshal(metaBytes, &meta); err != nil {
		return nil, false, vecdberr.Wrap(vecdberr.Deserialization, err, "parsing meta for collection %q", name)
	}
	if meta.Version != metaVersion {
		return nil, false, vecdberr.New(vecdberr.Deserialization, "collection %q: unsupported meta version %d", name, meta.Version)
	}
	if meta.M < 2 || meta.EfConstruction < 1 || meta.EfSearch < 1 {
		return nil, false, vecdberr.New(vecdberr.Deserialization, "collection %q: meta has implausible params (m=%d ef_construction=%d ef_search=%d) — likely a truncated write", name, meta.M, meta.EfConstruction, meta.EfSearch)
	}

	hnswBytes, err := os.ReadFile(s.hnswPath(name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, vecdberr.Wrap(vecdberr.Deserialization, err, "reading index for collection %q", name)
	}
	graph, err := hnsw.Deserialize(hnswBytes)
	if err != nil {
		return nil, false, vecdberr.Wrap(vecdberr.Deserialization, err, "deserializing index for collection %q", name)
	}

	vectorsBytes, err := os.ReadFile(s.vectorsPath(name))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, vecdberr.Wrap(vecdberr.Deserialization, err, "reading vectors for collection %q", name)
	}
	userToInternal, vectors, err := decodeVectors(vectorsBytes, meta.Dim)
	if err != nil {
		return nil, false, vecdberr.Wrap(vecdberr.Deserialization, err, "decoding vectors for collection %q", name)
	}

	if len(userToInternal) != meta.Count {
		return nil, false, vecdberr.New(vecdberr.Deserialization, "collection %q: meta count %d disagrees with vectors file count %d", name, meta.Count, len(userToInternal))
	}
	if graph.Dim() != meta.Dim {
		return nil, false, vecdberr.New(vecdberr.Deserialization, "collection %q: index dimension %d disagrees with meta dimension %d", name, graph.Dim(), meta.Dim)
	}

	params := collection.Params{M: meta.M, EfConstruction: meta.EfConstruction, EfSearch: meta.EfSearch}
	c := collection.FromGraph(meta.Name, meta.Dim, meta.Metric, params, graph, userToInternal, vectors, meta.NextInternalID, meta.DeletedCount, meta.CreatedAt, meta.UpdatedAt)

	return c, true, nil
}

// DeleteCollection removes the three files for name. Returns false if none
// existed.
func (s *Store) DeleteCollection(name string) (bool, error) {
	paths := []string{s.metaPath(name), s.hnswPath(name), s.vectorsPath(name)}

	existed := false
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existed = true
			break
		}
	}
	if !existed {
		return false, nil
	}

	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return false, vecdberr.Wrap(vecdberr.InvalidArgument, err, "removing %q", p)
		}
	}
	return true, nil
}

// ListCollections enumerates collection names by scanning for .meta files.
func (s *Store) ListCollections() ([]string, error) {
	entries, err := os.ReadDir(s.collectionsDir())
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.InvalidArgument, err, "listing collections directory")
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".meta") {
			names = append(names, strings.TrimSuffix(e.Name(), ".meta"))
		}
	}
	sort.Strings(names)
	return names, nil
}

// SaveMetadata atomically writes metadata.json listing every known
// collection name.
func (s *Store) SaveMetadata(names []string) error {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	meta := databaseMetadata{Version: metadataVersion, Collections: sorted}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return vecdberr.Wrap(vecdberr.InvalidArgument, err, "marshaling database metadata")
	}
	if err := atomicWrite(s.metadataPath(), data); err != nil {
		return vecdberr.Wrap(vecdberr.InvalidArgument, err, "saving database metadata")
	}
	return nil
}

// LoadMetadata reads metadata.json. A missing file is treated as an empty
// database rather than an error.
func (s *Store) LoadMetadata() ([]string, error) {
	data, err := os.ReadFile(s.metadataPath())
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "reading database metadata")
	}

	var meta databaseMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, vecdberr.Wrap(vecdberr.Deserialization, err, "parsing database metadata")
	}
	if meta.Version != metadataVersion {
		return nil, vecdberr.New(vecdberr.Deserialization, "unsupported metadata version %d", meta.Version)
	}
	return meta.Collections, nil
}

// encodeVectors packs the bijection and verbatim vectors into the .vectors
// binary format: header {version, count, dim} then count records of
// {user_id, internal_id, dim*f32}. Records are emitted in ascending user-id
// order for deterministic output.
func encodeVectors(userToInternal map[uint64]int64, vectors map[uint64][]float32, dim int) []byte {
	userIDs := make([]uint64, 0, len(userToInternal))
	for id := range userToInternal {
		userIDs = append(userIDs, id)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	buf := make([]byte, 0, 16+len(userIDs)*(16+dim*4))
	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[0:4], vectorsVersion)
	binary.LittleEndian.PutUint64(hdr[4:12], uint64(len(userIDs)))
	binary.LittleEndian.PutUint32(hdr[12:16], uint32(dim))
	buf = append(buf, hdr[:]...)

	for _, uid := range userIDs {
		var rec [16]byte
		binary.LittleEndian.PutUint64(rec[0:8], uid)
		binary.LittleEndian.PutUint64(rec[8:16], uint64(userToInternal[uid]))
		buf = append(buf, rec[:]...)

		vec := vectors[uid]
		for _, v := range vec {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
			buf = append(buf, b[:]...)
		}
	}
	return buf
}

// decodeVectors is the inverse of encodeVectors.
func decodeVectors(data []byte, expectedDim int) (map[uint64]int64, map[uint64][]float32, error) {
	if len(data) < 16 {
		return nil, nil, fmt.Errorf("vectors file too short: %d bytes", len(data))
	}
	version := binary.LittleEndian.Uint32(data[0:4])
	if version != vectorsVersion {
		return nil, nil, fmt.Errorf("unsupported vectors version %d", version)
	}
	count := binary.LittleEndian.Uint64(data[4:12])
	dim := int(binary.LittleEndian.Uint32(data[12:16]))
	if expectedDim != 0 && dim != expectedDim {
		return nil, nil, fmt.Errorf("vectors file dimension %d disagrees with meta dimension %d", dim, expectedDim)
	}

	recordSize := 16 + dim*4
	offset := 16
	userToInternal := make(map[uint64]int64, count)
	vectors := make(map[uint64][]float32, count)

	for i := uint64(0); i < count; i++ {
		if offset+recordSize > len(data) {
			return nil, nil, fmt.Errorf("vectors file truncated at record %d", i)
		}
		userID := binary.LittleEndian.Uint64(data[offset : offset+8])
		internalID := int64(binary.LittleEndian.Uint64(data[offset+8 : offset+16]))

		vec := make([]float32, dim)
		base := offset + 16
		for d := 0; d < dim; d++ {
			bits := binary.LittleEndian.Uint32(data[base+d*4 : base+d*4+4])
			vec[d] = math.Float32frombits(bits)
		}

		userToInternal[userID] = internalID
		vectors[userID] = vec
		offset += recordSize
	}

	return userToInternal, vectors, nil
}
