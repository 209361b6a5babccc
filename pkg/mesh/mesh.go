// Package mesh builds triangle meshes for primitive and procedural shapes.
//
// Every builder is a pure function: the same arguments produce identical
// buffers. Faces wind counter-clockwise when seen from outside the surface.
package mesh

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh errors.
var (
	ErrInvalidParameter = errors.New("invalid mesh parameter")
	ErrGeometry         = errors.New("invalid mesh geometry")
)

// Mesh holds per-vertex attribute buffers and triangle faces.
// A Mesh is not modified after a builder returns it.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	UVs       []mgl32.Vec2
	Faces     [][3]uint32
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of faces.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// Bounds returns the axis-aligned bounding box of all positions.
func (m *Mesh) Bounds() (min, max mgl32.Vec3) {
	if len(m.Positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	min = m.Positions[0]
	max = m.Positions[0]
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return min, max
}

// Validate checks the structural invariants of the mesh.
func (m *Mesh) Validate() error {
	n := len(m.Positions)
	if len(m.Normals) != n || len(m.UVs) != n {
		return fmt.Errorf("%w: attribute counts differ (positions %d, normals %d, uvs %d)",
			ErrGeometry, n, len(m.Normals), len(m.UVs))
	}

	for i, p := range m.Positions {
		if !finite3(p) {
			return fmt.Errorf("%w: vertex %d has non-finite position %v", ErrGeometry, i, p)
		}
		if !finite3(m.Normals[i]) {
			return fmt.Errorf("%w: vertex %d has non-finite normal %v", ErrGeometry, i, m.Normals[i])
		}
		uv := m.UVs[i]
		if uv[0] < 0 || uv[0] > 1 || uv[1] < 0 || uv[1] > 1 {
			return fmt.Errorf("%w: vertex %d has uv %v outside [0,1]", ErrGeometry, i, uv)
		}
	}

	for i, f := range m.Faces {
		for _, idx := range f {
			if int(idx) >= n {
				return fmt.Errorf("%w: face %d references vertex %d of %d", ErrGeometry, i, idx, n)
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] {
			return fmt.Errorf("%w: face %d is degenerate %v", ErrGeometry, i, f)
		}
	}
	return nil
}

// IsClosedManifold reports whether every undirected edge is shared by exactly two faces.
func (m *Mesh) IsClosedManifold() bool {
	if len(m.Faces) == 0 {
		return false
	}
	edges := make(map[[2]uint32]int, len(m.Faces)*3/2)
	for _, f := range m.Faces {
		for k := 0; k < 3; k++ {
			a, b := f[k], f[(k+1)%3]
			if a > b {
				a, b = b, a
			}
			edges[[2]uint32{a, b}]++
		}
	}
	for _, count := range edges {
		if count != 2 {
			return false
		}
	}
	return true
}

// Translate returns a copy of the mesh moved by offset.
func (m *Mesh) Translate(offset mgl32.Vec3) *Mesh {
	out := m.clone()
	for i := range out.Positions {
		out.Positions[i] = out.Positions[i].Add(offset)
	}
	return out
}

func (m *Mesh) clone() *Mesh {
	return &Mesh{
		Positions: append([]mgl32.Vec3(nil), m.Positions...),
		Normals:   append([]mgl32.Vec3(nil), m.Normals...),
		UVs:       append([]mgl32.Vec2(nil), m.UVs...),
		Faces:     append([][3]uint32(nil), m.Faces...),
	}
}

// Merge concatenates meshes into a new one. Face indices of each part are
// offset by the number of vertices that precede it; vertices are not welded.
func Merge(parts ...*Mesh) (*Mesh, error) {
	var vertices, faces int
	for i, p := range parts {
		if p == nil {
			return nil, fmt.Errorf("%w: merge part %d is nil", ErrGeometry, i)
		}
		vertices += p.VertexCount()
		faces += p.TriangleCount()
	}
	if uint64(vertices) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: merged mesh has %d vertices", ErrGeometry, vertices)
	}

	out := &Mesh{
		Positions: make([]mgl32.Vec3, 0, vertices),
		Normals:   make([]mgl32.Vec3, 0, vertices),
		UVs:       make([]mgl32.Vec2, 0, vertices),
		Faces:     make([][3]uint32, 0, faces),
	}
	for _, p := range parts {
		base := uint32(len(out.Positions))
		out.Positions = append(out.Positions, p.Positions...)
		out.Normals = append(out.Normals, p.Normals...)
		out.UVs = append(out.UVs, p.UVs...)
		for _, f := range p.Faces {
			out.Faces = append(out.Faces, [3]uint32{f[0] + base, f[1] + base, f[2] + base})
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// Helper functions

func finite3(v mgl32.Vec3) bool {
	for _, c := range v {
		if math32.IsNaN(c) || math32.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func safeNormalize(v, fallback mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return fallback
	}
	return v.Mul(1 / l)
}
