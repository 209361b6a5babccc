package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/assetgen/pkg/noise"
)

// MaxTerrainResolution bounds the vertices per side of a terrain grid.
const MaxTerrainResolution = 1024

// Terrain builds a width x depth heightfield centered at the origin with
// resolution vertices per side. Heights are heightScale times fractal noise
// seeded by seed, so the same arguments always give the same surface.
func Terrain(width, depth float32, resolution int, heightScale float32, seed int64) (*Mesh, error) {
	if !(width > 0) || !(depth > 0) {
		return nil, fmt.Errorf("%w: terrain extent %vx%v", ErrInvalidParameter, width, depth)
	}
	if resolution < 2 || resolution > MaxTerrainResolution {
		return nil, fmt.Errorf("%w: terrain resolution %d outside [2, %d]",
			ErrInvalidParameter, resolution, MaxTerrainResolution)
	}
	if !(heightScale >= 0) {
		return nil, fmt.Errorf("%w: terrain height scale %v", ErrInvalidParameter, heightScale)
	}

	src := noise.New(seed, noise.DefaultOptions())
	n := resolution * resolution
	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, n),
		UVs:       make([]mgl32.Vec2, 0, n),
		Faces:     make([][3]uint32, 0, 2*(resolution-1)*(resolution-1)),
	}

	last := float32(resolution - 1)
	for j := 0; j < resolution; j++ {
		z := depth*float32(j)/last - depth/2
		for i := 0; i < resolution; i++ {
			x := width*float32(i)/last - width/2
			y := heightScale * src.Fractal(x, z)
			m.Positions = append(m.Positions, mgl32.Vec3{x, y, z})
			m.UVs = append(m.UVs, mgl32.Vec2{float32(i) / last, float32(j) / last})
		}
	}

	res := uint32(resolution)
	for j := uint32(0); j < res-1; j++ {
		for i := uint32(0); i < res-1; i++ {
			v00 := j*res + i
			v10 := v00 + 1
			v01 := v00 + res
			v11 := v01 + 1
			m.Faces = append(m.Faces, [3]uint32{v01, v11, v10}, [3]uint32{v01, v10, v00})
		}
	}

	m.Normals = averageNormals(m.Positions, m.Faces)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
