package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// DataDir returns the default data directory for steadysocial.
// Windows: %LOCALAPPDATA%\steadysocial
// Linux/Mac: ~/.local/share/steadysocial
func DataDir() string {
	if dir := os.Getenv("STEADYSOCIAL_DATA_DIR"); dir != "" {
		return dir
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "steadysocial")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "steadysocial")
}

// ModelsDir returns the directory where GGUF models are stored.
func ModelsDir() string {
	if dir := os.Getenv("STEADYSOCIAL_MODELS_DIR"); dir != "" {
		return dir
	}
	return filepath.Join(DataDir(), "models")
}

// BinDir returns the directory where llama-server binaries are stored.
func BinDir() string {
	return filepath.Join(DataDir(), "bin")
}

// MemoryDir returns the directory where generation memory is stored.
func MemoryDir() string {
	return filepath.Join(DataDir(), "memory")
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.yaml")
}

// EnsureDirs creates the required directories if they don't exist.
func EnsureDirs(cfg *Config) error {
	dirs := []string{DataDir(), ModelsDir(), BinDir()}
	if cfg.MemoryEnabled {
		dirs = append(dirs, cfg.MemoryDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
