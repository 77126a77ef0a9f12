// Package artifact abstracts the byte-addressable store that serialized
// models and preprocessors are loaded from. The serving layer never writes
// artifacts; training pipelines publish them out of band.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store is a read-only artifact store keyed by location strings.
type Store interface {
	Exists(location string) bool
	Load(location string) ([]byte, error)
}

// DirStore serves artifacts from a local directory tree, locations being
// paths relative to the root (e.g. "models/k2_logistic_model.json").
type DirStore struct {
	root string
}

// NewDirStore returns a store rooted at dir.
func NewDirStore(dir string) *DirStore {
	return &DirStore{root: dir}
}

func (s *DirStore) path(location string) string {
	return filepath.Join(s.root, filepath.FromSlash(location))
}

// Exists reports whether the artifact at location is present.
func (s *DirStore) Exists(location string) bool {
	info, err := os.Stat(s.path(location))
	return err == nil && info.Mode().IsRegular()
}

// Load reads the artifact at location.
func (s *DirStore) Load(location string) ([]byte, error) {
	data, err := os.ReadFile(s.path(location))
	if err != nil {
		return nil, fmt.Errorf("load artifact %s: %w", location, err)
	}
	return data, nil
}

// Root returns the directory the store serves from.
func (s *DirStore) Root() string { return s.root }
