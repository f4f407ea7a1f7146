// Package vecdbconfig holds the tunable defaults the façade and CLI apply
// when a caller does not specify HNSW parameters explicitly.
package vecdbconfig

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/vecdb/internal/vecdb/collection"
	"github.com/Aman-CERP/vecdb/internal/vecdb/distance"
	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdberr"
)

// Config is the recognized configuration surface: HNSW construction
// defaults and the default distance metric for newly created collections.
type Config struct {
	Metric         string `yaml:"metric"`
	M              int    `yaml:"m"`
	EfConstruction int    `yaml:"ef_construction"`
	EfSearch       int    `yaml:"ef_search"`
}

// DefaultConfig matches the defaults documented for the configuration
// surface: M=16, ef_construction=200, ef_search=50, metric=l2.
func DefaultConfig() Config {
	return Config{
		Metric:         distance.L2,
		M:              16,
		EfConstruction: 200,
		EfSearch:       50,
	}
}

// Params converts a Config into collection.Params, copying each field
// unchanged. The ef_search-at-least-k clamp is applied per query by
// hnsw.Graph.Search, not here.
func (c Config) Params() collection.Params {
	return collection.Params{
		M:              c.M,
		EfConstruction: c.EfConstruction,
		EfSearch:       c.EfSearch,
	}
}

// Validate rejects a configuration that would fail downstream at the
// hnsw/collection layer, so callers get an InvalidArgument before any state
// is touched.
func (c Config) Validate() error {
	if c.M < 2 {
		return vecdberr.New(vecdberr.InvalidArgument, "M must be >= 2, got %d", c.M)
	}
	if c.EfConstruction < 1 {
		return vecdberr.New(vecdberr.InvalidArgument, "ef_construction must be >= 1, got %d", c.EfConstruction)
	}
	if c.EfSearch < 1 {
		return vecdberr.New(vecdberr.InvalidArgument, "ef_search must be >= 1, got %d", c.EfSearch)
	}
	switch c.Metric {
	case distance.L2, distance.Cosine, distance.Dot:
	default:
		return vecdberr.New(vecdberr.InvalidArgument, "unknown metric %q", c.Metric)
	}
	return nil
}

// Load reads a YAML config file at path, applying DefaultConfig for any
// field left unset. A missing file is not an error — it just means the
// caller gets DefaultConfig().
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, vecdberr.Wrap(vecdberr.InvalidArgument, err, "reading config %q", path)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, vecdberr.Wrap(vecdberr.InvalidArgument, err, "parsing config %q", path)
	}
	return cfg, nil
}
