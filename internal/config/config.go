package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Config holds the SteadySocial local inference service configuration.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Model is the path or models-dir-relative name of the GGUF model to load.
	Model string `yaml:"model"`

	// Engine subprocess tuning.
	CtxSize        int  `yaml:"ctx_size"`
	GPULayers      int  `yaml:"gpu_layers"`
	Threads        int  `yaml:"threads"`
	FlashAttention bool `yaml:"flash_attention"`

	// RequestTimeout bounds how long a single generation request may stay
	// pending before the broker fails it locally. Zero disables the timeout.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	MemoryEnabled bool   `yaml:"memory"`
	MemoryDir     string `yaml:"memory_dir"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:           "127.0.0.1",
		Port:           8090,
		CtxSize:        4096,
		GPULayers:      -1,
		Threads:        0,
		FlashAttention: true,
		RequestTimeout: 2 * time.Minute,
		MemoryEnabled:  false,
		MemoryDir:      MemoryDir(),
	}
}

// Load reads the YAML config file at path over the defaults.
// A missing file is not an error — defaults are returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
