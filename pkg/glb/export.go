package glb

import (
	"fmt"
	"path/filepath"

	"github.com/Faultbox/assetgen/internal/fsutil"
	"github.com/Faultbox/assetgen/pkg/asset"
)

// Extension is the file extension of exported assets.
const Extension = ".glb"

// Exporter writes assets as GLB files into a directory.
type Exporter struct{}

// NewExporter creates a GLB exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes a to <dir>/<name>.glb and returns the path written.
func (e *Exporter) Export(dir string, a *asset.Asset) (string, error) {
	return WriteFile(dir, a)
}

// WriteFile encodes a and writes it to <dir>/<name>.glb through a temporary
// file and an atomic rename. Nothing is left at the final path on failure.
func WriteFile(dir string, a *asset.Asset) (string, error) {
	data, err := Encode(a)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, a.Name+Extension)
	if err := fsutil.WriteFileAtomic(path, data, 0644); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExport, err)
	}
	return path, nil
}
