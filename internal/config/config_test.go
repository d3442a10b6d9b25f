package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, 4096, cfg.CtxSize)
	assert.Equal(t, -1, cfg.GPULayers)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	assert.False(t, cfg.MemoryEnabled)
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Port, cfg.Port)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"port: 9999\nmodel: qwen2.5-3b\nctx_size: 8192\nrequest_timeout: 30s\nmemory: true\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "qwen2.5-3b", cfg.Model)
	assert.Equal(t, 8192, cfg.CtxSize)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.MemoryEnabled)
	// Untouched keys keep their defaults.
	assert.Equal(t, "127.0.0.1", cfg.Host)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [not a number\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDataDirEnvOverride(t *testing.T) {
	t.Setenv("STEADYSOCIAL_DATA_DIR", "/tmp/steadysocial-test")
	assert.Equal(t, "/tmp/steadysocial-test", DataDir())
	assert.Equal(t, filepath.Join("/tmp/steadysocial-test", "models"), ModelsDir())
	assert.Equal(t, filepath.Join("/tmp/steadysocial-test", "config.yaml"), ConfigPath())
}

func TestEnsureDirs(t *testing.T) {
	base := t.TempDir()
	t.Setenv("STEADYSOCIAL_DATA_DIR", base)

	cfg := DefaultConfig()
	cfg.MemoryEnabled = true
	cfg.MemoryDir = filepath.Join(base, "memory")
	require.NoError(t, EnsureDirs(cfg))

	for _, dir := range []string{ModelsDir(), BinDir(), cfg.MemoryDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
