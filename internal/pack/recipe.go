package pack

import (
	"fmt"
	"image"
	"image/color"

	"github.com/Faultbox/assetgen/pkg/asset"
	"github.com/Faultbox/assetgen/pkg/mesh"
	"github.com/Faultbox/assetgen/pkg/texture"
)

// MeshBuilder builds the geometry of an asset from its size and seed.
type MeshBuilder func(size float32, seed int64) (*mesh.Mesh, error)

// TextureSynthesizer builds a square base color texture. palette holds one
// colour per entry of the recipe's Palette.
type TextureSynthesizer func(size int, seed int64, palette []color.RGBA) (*texture.Texture, error)

// NormalMapper derives a normal map from a base color texture.
type NormalMapper func(base *texture.Texture) (*texture.Texture, error)

// Recipe is the generation pipeline of one asset type.
type Recipe struct {
	Mesh        MeshBuilder
	Texture     TextureSynthesizer
	Normal      NormalMapper // optional
	TextureSize int          // default base color resolution
	// Palette holds the default colours a Spec may override. Empty means
	// the texture has a fixed palette.
	Palette []color.RGBA
}

// Mesh detail per type.
const (
	sphereRings      = 16
	sphereSegments   = 16
	cylinderSegments = 16
	terrainExtent    = 10
	terrainRes       = 32
	terrainHeight    = 3
	normalStrength   = 2
)

var recipes = map[asset.Type]Recipe{
	asset.TypeCube: {
		Mesh: func(size float32, _ int64) (*mesh.Mesh, error) {
			return mesh.Cube(size)
		},
		Texture: func(size int, _ int64, p []color.RGBA) (*texture.Texture, error) {
			return texture.Checkerboard(size, 8, p[0], p[1])
		},
		TextureSize: 64,
		Palette:     []color.RGBA{texture.White, texture.Black},
	},
	asset.TypeSphere: {
		Mesh: func(size float32, _ int64) (*mesh.Mesh, error) {
			return mesh.Sphere(size, sphereRings, sphereSegments)
		},
		Texture: func(size int, _ int64, p []color.RGBA) (*texture.Texture, error) {
			return texture.Gradient(size, p[0], p[1], texture.AxisRadial)
		},
		TextureSize: 128,
		Palette:     []color.RGBA{texture.GlowOrange, texture.DeepBlue},
	},
	asset.TypeCylinder: {
		Mesh: func(size float32, _ int64) (*mesh.Mesh, error) {
			return mesh.Cylinder(size, 2*size, cylinderSegments)
		},
		Texture: func(size int, _ int64, p []color.RGBA) (*texture.Texture, error) {
			return texture.WoodGrain(size, 8, p[0])
		},
		TextureSize: 128,
		Palette:     []color.RGBA{texture.WoodBrown},
	},
	asset.TypeTerrain: {
		Mesh: func(size float32, seed int64) (*mesh.Mesh, error) {
			return mesh.Terrain(terrainExtent*size, terrainExtent*size, terrainRes, terrainHeight*size, seed)
		},
		Texture: func(size int, seed int64, _ []color.RGBA) (*texture.Texture, error) {
			return texture.GrassNoise(size, seed)
		},
		Normal:      normalMap,
		TextureSize: 256,
	},
	asset.TypeTree: {
		Mesh: func(size float32, _ int64) (*mesh.Mesh, error) {
			return mesh.Tree(3*size, 0.2*size, 1.5*size)
		},
		Texture: func(size int, seed int64, _ []color.RGBA) (*texture.Texture, error) {
			return texture.Bark(size, seed)
		},
		TextureSize: 128,
	},
	asset.TypeBuilding: {
		Mesh: func(size float32, _ int64) (*mesh.Mesh, error) {
			return mesh.Building(2 * size)
		},
		Texture:     buildingTexture,
		Normal:      normalMap,
		TextureSize: 128,
		Palette:     []color.RGBA{texture.MortarGray},
	},
}

// palette resolves the colour overrides of spec against the recipe defaults.
func (r Recipe) palette(spec Spec) ([]color.RGBA, error) {
	if len(spec.Colors) > len(r.Palette) {
		return nil, fmt.Errorf("%w: %s sets %d colors, type %s takes %d",
			ErrInvalidSpec, spec.Name, len(spec.Colors), spec.Type, len(r.Palette))
	}
	out := append([]color.RGBA(nil), r.Palette...)
	for i, hex := range spec.Colors {
		c, err := texture.Hex(hex)
		if err != nil {
			return nil, fmt.Errorf("%w: %s color %d: %w", ErrInvalidSpec, spec.Name, i, err)
		}
		out[i] = c
	}
	return out, nil
}

func normalMap(base *texture.Texture) (*texture.Texture, error) {
	return texture.NormalMap(base, normalStrength)
}

// buildingTexture lays brick over the whole texture and windows plus a door
// over the part the front face samples.
func buildingTexture(size int, _ int64, p []color.RGBA) (*texture.Texture, error) {
	bricks, err := texture.Brick(size, max(size/6, 2), max(size/8, 2), p[0])
	if err != nil {
		return nil, err
	}
	return texture.Facade(bricks, uvRegion(mesh.BoxFrontRegion, size), mesh.BuildingColumns, mesh.BuildingRows)
}

// uvRegion converts a UV rectangle into pixel bounds of a square texture.
func uvRegion(r mesh.UVRect, size int) image.Rectangle {
	s := float32(size)
	return image.Rect(int(r.Min[0]*s), int(r.Min[1]*s), int(r.Max[0]*s), int(r.Max[1]*s))
}
