package mesh

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// averageNormals returns, per vertex, the normalized average of the unit
// normals of the faces that use it.
func averageNormals(positions []mgl32.Vec3, faces [][3]uint32) []mgl32.Vec3 {
	sums := make([]mgl32.Vec3, len(positions))
	for _, f := range faces {
		n := triangleNormal(positions[f[0]], positions[f[1]], positions[f[2]], mgl32.Vec3{})
		for _, idx := range f {
			sums[idx] = sums[idx].Add(n)
		}
	}
	for i := range sums {
		sums[i] = safeNormalize(sums[i], mgl32.Vec3{0, 1, 0})
	}
	return sums
}

// angleWeightedNormals weights each face normal by the corner angle at the
// vertex, so a vertex on a flat face gets the face normal regardless of how
// the face is triangulated.
func angleWeightedNormals(positions []mgl32.Vec3, faces [][3]uint32) []mgl32.Vec3 {
	sums := make([]mgl32.Vec3, len(positions))
	for _, f := range faces {
		p := [3]mgl32.Vec3{positions[f[0]], positions[f[1]], positions[f[2]]}
		n := triangleNormal(p[0], p[1], p[2], mgl32.Vec3{})
		for k := 0; k < 3; k++ {
			e1 := safeNormalize(p[(k+1)%3].Sub(p[k]), mgl32.Vec3{})
			e2 := safeNormalize(p[(k+2)%3].Sub(p[k]), mgl32.Vec3{})
			cos := e1.Dot(e2)
			if cos > 1 {
				cos = 1
			} else if cos < -1 {
				cos = -1
			}
			sums[f[k]] = sums[f[k]].Add(n.Mul(math32.Acos(cos)))
		}
	}
	for i := range sums {
		sums[i] = safeNormalize(sums[i], mgl32.Vec3{0, 1, 0})
	}
	return sums
}

// triangleNormal returns the unit normal of triangle abc following its
// winding, or fallback when the triangle is degenerate.
func triangleNormal(a, b, c, fallback mgl32.Vec3) mgl32.Vec3 {
	return safeNormalize(b.Sub(a).Cross(c.Sub(a)), fallback)
}
