package mesh

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Tree detail.
const (
	trunkSegments     = 8
	crownRings        = 8
	crownSegments     = 12
	lobeRings         = 6
	lobeSegments      = 10
	lobeCount         = 3
	lobeRadiusRatio   = 0.6
	lobeOffsetRatio   = 0.7
	lobeDropRatio     = 0.3
	crownLiftFraction = 2.0 / 3.0
)

// Tree builds a cylindrical trunk standing on y=0 topped by a crown of one
// main sphere and three smaller lobes spaced 120 degrees apart. The parts
// are merged without welding.
func Tree(trunkHeight, trunkRadius, foliageRadius float32) (*Mesh, error) {
	if !(trunkHeight > 0) || !(trunkRadius > 0) || !(foliageRadius > 0) {
		return nil, fmt.Errorf("%w: tree trunk %vx%v foliage %v",
			ErrInvalidParameter, trunkHeight, trunkRadius, foliageRadius)
	}

	trunk, err := Cylinder(trunkRadius, trunkHeight, trunkSegments)
	if err != nil {
		return nil, err
	}
	parts := []*Mesh{trunk.Translate(mgl32.Vec3{0, trunkHeight / 2, 0})}

	crownY := trunkHeight + foliageRadius*crownLiftFraction
	crown, err := Sphere(foliageRadius, crownRings, crownSegments)
	if err != nil {
		return nil, err
	}
	parts = append(parts, crown.Translate(mgl32.Vec3{0, crownY, 0}))

	lobe, err := Sphere(foliageRadius*lobeRadiusRatio, lobeRings, lobeSegments)
	if err != nil {
		return nil, err
	}
	for k := 0; k < lobeCount; k++ {
		angle := 2 * math32.Pi * float32(k) / lobeCount
		offset := mgl32.Vec3{
			foliageRadius * lobeOffsetRatio * math32.Cos(angle),
			crownY - foliageRadius*lobeDropRatio,
			foliageRadius * lobeOffsetRatio * math32.Sin(angle),
		}
		parts = append(parts, lobe.Translate(offset))
	}

	return Merge(parts...)
}
