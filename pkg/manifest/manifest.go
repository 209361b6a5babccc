// Package manifest records the outcome of an asset pack run.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Faultbox/assetgen/internal/fsutil"
)

// FileName is the manifest file written next to the assets.
const FileName = "manifest.json"

// Defaults for pack metadata.
const (
	DefaultName        = "Basic Game Asset Pack"
	DefaultDescription = "Collection of basic 3D assets for game development"
	Format             = "GLB"
	CreatedWith        = "assetgen"
)

// Manifest errors.
var (
	ErrManifest = errors.New("manifest serialization failed")
	ErrExport   = errors.New("manifest write failed")
)

// Entry records one generation attempt. File and Error are mutually exclusive.
type Entry struct {
	Name          string `json:"name"`
	File          string `json:"file,omitempty"`
	Type          string `json:"type"`
	VertexCount   int    `json:"vertex_count"`
	TriangleCount int    `json:"triangle_count"`
	TextureCount  int    `json:"texture_count"`
	Error         string `json:"error,omitempty"`
}

// Failed reports whether the entry records a failure.
func (e Entry) Failed() bool {
	return e.Error != ""
}

// Manifest lists every asset of a pack run in generation order.
type Manifest struct {
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Format      string  `json:"format"`
	CreatedWith string  `json:"created_with"`
	Assets      []Entry `json:"assets"`
}

// New creates an empty manifest with pack metadata.
func New(name, description string) *Manifest {
	if name == "" {
		name = DefaultName
	}
	return &Manifest{
		Name:        name,
		Description: description,
		Format:      Format,
		CreatedWith: CreatedWith,
		Assets:      []Entry{},
	}
}

// Counts returns the number of successful and failed entries.
func (m *Manifest) Counts() (ok, failed int) {
	for _, e := range m.Assets {
		if e.Failed() {
			failed++
		} else {
			ok++
		}
	}
	return ok, failed
}

// Validate checks that every entry has a name and exactly one of File or Error.
func (m *Manifest) Validate() error {
	for i, e := range m.Assets {
		if e.Name == "" {
			return fmt.Errorf("%w: entry %d has no name", ErrManifest, i)
		}
		if (e.File == "") == (e.Error == "") {
			return fmt.Errorf("%w: entry %s must have either a file or an error", ErrManifest, e.Name)
		}
	}
	return nil
}

// Write serializes the manifest to path, replacing any previous manifest.
func Write(path string, m *Manifest) error {
	if m == nil {
		return fmt.Errorf("%w: nil manifest", ErrManifest)
	}
	if err := m.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrManifest, err)
	}
	data = append(data, '\n')

	if err := fsutil.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrExport, err)
	}
	return nil
}

// Read loads a manifest from path.
func Read(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrManifest, path, err)
	}
	return &m, nil
}
