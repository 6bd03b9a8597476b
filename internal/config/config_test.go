package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaizen-dev/memento/internal/config"
)

func TestDefaultConfigMatchesDocumentedDefaults(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, config.DefaultContextBudget, cfg.ContextBudget)
	assert.True(t, cfg.HistoryEnabled)
	assert.Equal(t, 0.45, cfg.Ranking.Vector)
	assert.Equal(t, 10, cfg.Capture.MinPromptLength)
	assert.Equal(t, 0.88, cfg.Consolidate.ClusterThreshold)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	original := config.DefaultConfig()
	original.Storage.Backend = "remote"
	original.Storage.DSN = "http://localhost:8182"
	original.ContextBudget = 8000

	require.NoError(t, config.Save(path, original))

	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "remote", loaded.Storage.Backend)
	assert.Equal(t, "http://localhost:8182", loaded.Storage.DSN)
	assert.Equal(t, 8000, loaded.ContextBudget)
}

func TestLoadPartialFileOverlaysOnDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("context_budget: 1234\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1234, cfg.ContextBudget)
	assert.Equal(t, "sqlite", cfg.Storage.Backend, "unset fields keep their default")
}

func TestPathJoinsConfigYAML(t *testing.T) {
	assert.Equal(t, filepath.Join("/tmp/kaizen", "config.yaml"), config.Path("/tmp/kaizen"))
}
