// Package asset binds meshes and textures into exportable assets with PBR
// material properties.
package asset

import (
	"errors"
	"fmt"

	"github.com/Faultbox/assetgen/pkg/mesh"
	"github.com/Faultbox/assetgen/pkg/texture"
)

// ErrInvalidAsset is returned when an asset cannot be assembled.
var ErrInvalidAsset = errors.New("invalid asset")

// Type tags the kind of asset.
type Type string

// Asset types.
const (
	TypeCube     Type = "cube"
	TypeSphere   Type = "sphere"
	TypeCylinder Type = "cylinder"
	TypeTerrain  Type = "terrain"
	TypeTree     Type = "tree"
	TypeBuilding Type = "building"
)

// Types lists every known asset type in presentation order.
var Types = []Type{TypeCube, TypeSphere, TypeCylinder, TypeTerrain, TypeTree, TypeBuilding}

// String returns the type tag.
func (t Type) String() string {
	return string(t)
}

// Known reports whether t is one of Types.
func (t Type) Known() bool {
	_, ok := surfaces[t]
	return ok
}

// ParseType converts a tag to a Type.
func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Known() {
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidAsset, s)
	}
	return t, nil
}

// Material is a metallic-roughness PBR material.
type Material struct {
	BaseColor *texture.Texture
	NormalMap *texture.Texture // optional
	Roughness float32
	Metallic  float32
}

// TextureCount returns the number of textures the material references.
func (m Material) TextureCount() int {
	n := 0
	if m.BaseColor != nil {
		n++
	}
	if m.NormalMap != nil {
		n++
	}
	return n
}

// Asset is a named mesh with its material, ready for export.
type Asset struct {
	Name     string
	Type     Type
	Mesh     *mesh.Mesh
	Material Material
	Scale    float32
}

// surface holds the material properties of an asset type.
type surface struct {
	roughness float32
	metallic  float32
}

var surfaces = map[Type]surface{
	TypeCube:     {roughness: 0.8, metallic: 0.1},
	TypeSphere:   {roughness: 0.6, metallic: 0.2},
	TypeCylinder: {roughness: 0.9, metallic: 0.0},
	TypeTerrain:  {roughness: 1.0, metallic: 0.0},
	TypeTree:     {roughness: 0.9, metallic: 0.0},
	TypeBuilding: {roughness: 0.8, metallic: 0.1},
}

var neutralSurface = surface{roughness: 0.5, metallic: 0.0}

// MaterialFor returns the material properties for an asset type.
// Unknown types get a neutral, non-metallic surface.
func MaterialFor(t Type, baseColor *texture.Texture) Material {
	s, ok := surfaces[t]
	if !ok {
		s = neutralSurface
	}
	return Material{
		BaseColor: baseColor,
		Roughness: s.roughness,
		Metallic:  s.metallic,
	}
}

// Bind assembles an asset from a mesh and its base color texture.
func Bind(name string, m *mesh.Mesh, baseColor *texture.Texture, t Type) (*Asset, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrInvalidAsset)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s has no mesh", ErrInvalidAsset, name)
	}
	if baseColor == nil {
		return nil, fmt.Errorf("%w: %s has no base color texture", ErrInvalidAsset, name)
	}
	return &Asset{
		Name:     name,
		Type:     t,
		Mesh:     m,
		Material: MaterialFor(t, baseColor),
		Scale:    1,
	}, nil
}

// WithNormalMap returns a copy of the asset whose material uses normalMap.
func (a *Asset) WithNormalMap(normalMap *texture.Texture) *Asset {
	out := *a
	out.Material.NormalMap = normalMap
	return &out
}

// WithScale returns a copy of the asset with a uniform scale.
func (a *Asset) WithScale(scale float32) (*Asset, error) {
	if !(scale > 0) {
		return nil, fmt.Errorf("%w: %s scale %v", ErrInvalidAsset, a.Name, scale)
	}
	out := *a
	out.Scale = scale
	return &out, nil
}
