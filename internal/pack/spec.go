// Package pack generates batches of assets and records them in a manifest.
package pack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/assetgen/pkg/asset"
)

// Spec errors.
var (
	ErrInvalidSpec = errors.New("invalid asset spec")
	ErrUnknownType = errors.New("unknown asset type")
)

// Spec describes one asset to generate.
type Spec struct {
	Name  string     `yaml:"name"`
	Type  asset.Type `yaml:"type"`
	Size  float32    `yaml:"size"`
	Seed  int64      `yaml:"seed"`
	Scale float32    `yaml:"scale,omitempty"` // Node scale, 0 = 1

	// Colors overrides the texture palette in order, as hex strings.
	Colors []string `yaml:"colors,omitempty"`
}

// DefaultSpecs returns the default asset pack.
func DefaultSpecs() []Spec {
	return []Spec{
		{Name: "cube_basic", Type: asset.TypeCube, Size: 1},
		{Name: "sphere_basic", Type: asset.TypeSphere, Size: 1},
		{Name: "cylinder_basic", Type: asset.TypeCylinder, Size: 1},
		{Name: "terrain_hills", Type: asset.TypeTerrain, Size: 1, Seed: 1},
		{Name: "tree_basic", Type: asset.TypeTree, Size: 1, Seed: 2},
		{Name: "building_basic", Type: asset.TypeBuilding, Size: 1},
	}
}

// Validate checks the name, size and scale of a spec. The type is checked against
// the recipes of the generator that runs it.
func (s Spec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSpec)
	}
	if strings.ContainsAny(s.Name, `/\`) || s.Name == "." || s.Name == ".." {
		return fmt.Errorf("%w: name %q is not a file stem", ErrInvalidSpec, s.Name)
	}
	if !(s.Size > 0) {
		return fmt.Errorf("%w: %s size %v", ErrInvalidSpec, s.Name, s.Size)
	}
	if !(s.Scale >= 0) {
		return fmt.Errorf("%w: %s scale %v", ErrInvalidSpec, s.Name, s.Scale)
	}
	return nil
}
