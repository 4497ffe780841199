package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAMLOverlaysOnDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overlay.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clustersize: 7\n"), 0o600))

	cfg, err := LoadYAML(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.ClusterSize)
	// fields not present in the overlay retain their Default() value
	assert.Equal(t, Default().MaxAuctionDuration, cfg.MaxAuctionDuration)
}

func TestLoadYAMLMissingFileReturnsError(t *testing.T) {
	_, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadYAMLOrDefaultFallsBackOnMissingFile(t *testing.T) {
	cfg := LoadYAMLOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, Default(), cfg)
}
