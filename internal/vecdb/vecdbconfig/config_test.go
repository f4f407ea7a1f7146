package vecdbconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/vecdb/internal/vecdb/distance"
	"github.com/Aman-CERP/vecdb/internal/vecdb/vecdberr"
)

func TestDefaultConfig_MatchesDocumentedDefaults(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, distance.L2, cfg.Metric)
	assert.Equal(t, 16, cfg.M)
	assert.Equal(t, 200, cfg.EfConstruction)
	assert.Equal(t, 50, cfg.EfSearch)
	require.NoError(t, cfg.Validate())
}

func TestValidate_RejectsBadFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.M = 1
	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, vecdberr.Is(err, vecdberr.InvalidArgument))

	cfg = DefaultConfig()
	cfg.Metric = "manhattan"
	err = cfg.Validate()
	require.Error(t, err)
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vecdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metric: cosine\nm: 32\nef_construction: 400\nef_search: 100\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, distance.Cosine, cfg.Metric)
	assert.Equal(t, 32, cfg.M)
	assert.Equal(t, 400, cfg.EfConstruction)
	assert.Equal(t, 100, cfg.EfSearch)
}

func TestParams_MapsFieldsDirectly(t *testing.T) {
	cfg := DefaultConfig()
	params := cfg.Params()
	assert.Equal(t, cfg.M, params.M)
	assert.Equal(t, cfg.EfConstruction, params.EfConstruction)
	assert.Equal(t, cfg.EfSearch, params.EfSearch)
}
