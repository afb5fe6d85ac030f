package pile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/tmp/somewhere")
	assert.Equal(t, "/tmp/somewhere", cfg.Dir)
	assert.Equal(t, int64(4<<30), cfg.FlatFileMapSize)
	assert.Equal(t, int64(512<<20), cfg.SeqNoIndexMapSize)
}

func TestLoadConfig_MissingFileFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadConfig(filepath.Join(dir, "missing.json"), dir)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(dir), cfg)
}

func TestConfig_SaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	cfg := DefaultConfig(dir)
	cfg.FlatFileMapSize = 1 << 20
	cfg.SeqNoIndexMapSize = 1 << 16
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path, dir)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfig_BuilderUsesConfiguredSizes(t *testing.T) {
	cfg := DefaultConfig("unused")
	cfg.FlatFileMapSize = 42
	cfg.SeqNoIndexMapSize = 7

	b := cfg.Builder()
	assert.Equal(t, int64(42), b.flatFileMapSize)
	assert.Equal(t, int64(7), b.seqNoIndexMapSize)
}
