// Package models manages locally available GGUF model files.
package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Model is a locally available GGUF file.
type Model struct {
	Name       string // filename without .gguf
	Path       string
	Size       int64
	ModifiedAt int64 // unix timestamp
}

// Store scans and resolves models under a directory.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// List returns every .gguf file under the store directory.
func (s *Store) List() []Model {
	var out []Model
	filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() || !strings.HasSuffix(strings.ToLower(info.Name()), ".gguf") {
			return nil
		}
		out = append(out, Model{
			Name:       strings.TrimSuffix(info.Name(), filepath.Ext(info.Name())),
			Path:       path,
			Size:       info.Size(),
			ModifiedAt: info.ModTime().Unix(),
		})
		return nil
	})
	return out
}

// Resolve maps a model name to a file path. Absolute paths pass through;
// otherwise the name is tried as a filename in the store dir, then matched
// against known models, exact before partial.
func (s *Store) Resolve(name string) (string, error) {
	if filepath.IsAbs(name) {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}

	candidate := filepath.Join(s.dir, name)
	if _, err := os.Stat(candidate); err == nil {
		return candidate, nil
	}
	if _, err := os.Stat(candidate + ".gguf"); err == nil {
		return candidate + ".gguf", nil
	}

	entries := s.List()
	for _, e := range entries {
		if strings.EqualFold(e.Name, name) {
			return e.Path, nil
		}
	}
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Name), strings.ToLower(name)) {
			return e.Path, nil
		}
	}

	return "", fmt.Errorf("model %q not found in %s", name, s.dir)
}
