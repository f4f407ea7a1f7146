// Package facade implements the embedding API: a single Database handle
// opened at a directory, offering create/get/delete/list/save/close over
// in-memory collections backed by the persistence layer.
package facade

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Aman-CERP/vecdb/internal/vecdb/collection"
	"github.com/Aman-CERP/vecdb/internal/vecdb/persistence"
	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdbconfig"
	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdberr"
)

// Info describes a collection's configuration, live/tombstoned counts, and
// creation/last-modified timestamps — a read-only convenience built from the
// same accessors Get's caller could assemble by hand, not a new invariant.
type Info struct {
	Name           string
	Dimension      int
	Metric         string
	Params         collection.Params
	Stats          collection.Stats
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Database is the entry point consumers use: Open loads every collection
// named in the directory's metadata, and Close saves and releases them.
type Database struct {
	mu     sync.RWMutex
	store  *persistence.Store
	logger *slog.Logger

	collections map[string]*collection.Collection
}

// Open rehydrates a Database from dir, loading every collection listed in
// its metadata.json.
func Open(dir string, logger *slog.Logger) (*Database, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store, err := persistence.Open(dir)
	if err != nil {
		return nil, err
	}

	names, err := store.LoadMetadata()
	if err != nil {
		return nil, err
	}

	db := &Database{
		store:       store,
		logger:      logger,
		collections: make(map[string]*collection.Collection, len(names)),
	}

	for _, name := range names {
		c, found, err := store.LoadCollection(name)
		if err != nil {
			return nil, err
		}
		if !found {
			logger.Warn("metadata references missing collection", "collection", name)
			continue
		}
		db.collections[name] = c
	}

	logger.Info("opened database", "dir", dir, "collections", len(db.collections))
	return db, nil
}

// Create makes a new, empty collection. Fails CollectionExists if name is
// already in use.
func (db *Database) Create(name string, dim int, metric string, params collection.Params) (*collection.Collection, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.collections[name]; exists {
		return nil, vecdberr.New(vecdberr.CollectionExists, "collection %q already exists", name)
	}

	if params.M == 0 {
		defaults := vecdbconfig.DefaultConfig()
		params = defaults.Params()
	}

	c, err := collection.New(name, dim, metric, params)
	if err != nil {
		return nil, err
	}

	db.collections[name] = c
	db.logger.Info("created collection", "collection", name, "dim", dim, "metric", metric)
	return c, nil
}

// Get returns the named collection. Fails CollectionNotFound if it is not
// open.
func (db *Database) Get(name string) (*collection.Collection, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	c, ok := db.collections[name]
	if !ok {
		return nil, vecdberr.New(vecdberr.CollectionNotFound, "collection %q not found", name)
	}
	return c, nil
}

// Info returns the named collection's configuration, stats, and timestamps.
// Fails CollectionNotFound if it is not open.
func (db *Database) Info(name string) (Info, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	c, ok := db.collections[name]
	if !ok {
		return Info{}, vecdberr.New(vecdberr.CollectionNotFound, "collection %q not found", name)
	}

	return Info{
		Name:      c.Name(),
		Dimension: c.Dimension(),
		Metric:    c.Metric(),
		Params:    c.Params(),
		Stats:     c.Stats(),
		CreatedAt: c.CreatedAt(),
		UpdatedAt: c.UpdatedAt(),
	}, nil
}

// Delete removes a collection from memory and from disk. Returns false if it
// did not exist.
func (db *Database) Delete(name string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, inMemory := db.collections[name]
	delete(db.collections, name)

	existed, err := db.store.DeleteCollection(name)
	if err != nil {
		return false, err
	}

	if inMemory || existed {
		db.logger.Info("deleted collection", "collection", name)
		return true, nil
	}
	return false, nil
}

// List returns every open collection's name, ascending.
func (db *Database) List() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	names := make([]string, 0, len(db.collections))
	for name := range db.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save persists every in-memory collection and updates metadata.json, one
// collection at a time: a failure partway through leaves already-saved
// collections committed.
func (db *Database) Save() error {
	db.mu.RLock()
	names := make([]string, 0, len(db.collections))
	collections := make([]*collection.Collection, 0, len(db.collections))
	for name, c := range db.collections {
		names = append(names, name)
		collections = append(collections, c)
	}
	db.mu.RUnlock()

	for _, c := range collections {
		if err := db.store.SaveCollection(c); err != nil {
			return err
		}
	}

	sort.Strings(names)
	if err := db.store.SaveMetadata(names); err != nil {
		return err
	}

	db.logger.Info("saved database", "collections", len(names))
	return nil
}

// Close saves every collection and releases the handle. Callers must not
// use the Database after Close returns.
func (db *Database) Close() error {
	if err := db.Save(); err != nil {
		return err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	db.collections = nil
	return nil
}

