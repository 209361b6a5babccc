package mesh

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxSegments bounds ring/segment counts of round primitives.
const MaxSegments = 1024

// Building front-face grid.
const (
	BuildingColumns = 3
	BuildingRows    = 3
)

// UVRect is an axis-aligned region of texture space.
type UVRect struct {
	Min, Max mgl32.Vec2
}

// BoxFrontRegion is the UV region covered by the +Z face of boxes built by
// Cube and Building. Building textures place doors and windows here.
var BoxFrontRegion = UVRect{Min: mgl32.Vec2{0.25, 0.25}, Max: mgl32.Vec2{1, 1}}

// boxUV projects a point of the [-1,1]^3 box obliquely onto texture space.
// Every face maps to a non-degenerate region without seams; the +Z face
// maps undistorted onto BoxFrontRegion.
func boxUV(xs, ys, zs float32) mgl32.Vec2 {
	return mgl32.Vec2{
		0.5 + 0.375*xs + 0.125*zs,
		0.5 - 0.375*ys + 0.125*zs,
	}
}

// Cube builds an axis-aligned cube centered at the origin: 8 vertices, 12 triangles.
func Cube(edgeLength float32) (*Mesh, error) {
	if !(edgeLength > 0) {
		return nil, fmt.Errorf("%w: cube edge length %v", ErrInvalidParameter, edgeLength)
	}
	return box(edgeLength, edgeLength, edgeLength, 1, 1)
}

// Building builds an edge x 1.5*edge x edge box whose front face is split
// into a BuildingColumns x BuildingRows grid for door and window placement.
func Building(edgeLength float32) (*Mesh, error) {
	if !(edgeLength > 0) {
		return nil, fmt.Errorf("%w: building edge length %v", ErrInvalidParameter, edgeLength)
	}
	return box(edgeLength, edgeLength*1.5, edgeLength, BuildingColumns, BuildingRows)
}

// box builds a closed box whose +Z face is a cols x rows grid. The four
// faces adjacent to the grid are fanned from their back corners so that the
// subdivided front edges stay shared and the mesh stays manifold.
func box(width, height, depth float32, cols, rows int) (*Mesh, error) {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	stride := uint32(cols + 1)
	front := func(i, j int) uint32 { return uint32(j)*stride + uint32(i) }

	vertexCount := (cols+1)*(rows+1) + 4
	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, vertexCount),
		UVs:       make([]mgl32.Vec2, 0, vertexCount),
	}
	add := func(xs, ys, zs float32) {
		m.Positions = append(m.Positions, mgl32.Vec3{xs * half[0], ys * half[1], zs * half[2]})
		m.UVs = append(m.UVs, boxUV(xs, ys, zs))
	}

	for j := 0; j <= rows; j++ {
		for i := 0; i <= cols; i++ {
			add(-1+2*float32(i)/float32(cols), -1+2*float32(j)/float32(rows), 1)
		}
	}
	back := uint32(len(m.Positions))
	b0, b1, b2, b3 := back, back+1, back+2, back+3 // (-x,-y) (+x,-y) (-x,+y) (+x,+y)
	add(-1, -1, -1)
	add(1, -1, -1)
	add(-1, 1, -1)
	add(1, 1, -1)

	faces := make([][3]uint32, 0, 2*cols*rows+2+2*(cols+1)+2*(rows+1))

	// Front (+Z)
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			p00, p10 := front(i, j), front(i+1, j)
			p01, p11 := front(i, j+1), front(i+1, j+1)
			faces = append(faces, [3]uint32{p00, p10, p11}, [3]uint32{p00, p11, p01})
		}
	}

	// Back (-Z)
	faces = append(faces, [3]uint32{b1, b0, b2}, [3]uint32{b1, b2, b3})

	// Right (+X), fanned from b1
	faces = append(faces, [3]uint32{b1, b3, front(cols, rows)})
	for j := rows; j > 0; j-- {
		faces = append(faces, [3]uint32{b1, front(cols, j), front(cols, j-1)})
	}

	// Left (-X), fanned from b0
	for j := 0; j < rows; j++ {
		faces = append(faces, [3]uint32{b0, front(0, j), front(0, j+1)})
	}
	faces = append(faces, [3]uint32{b0, front(0, rows), b2})

	// Top (+Y), fanned from b2
	for i := 0; i < cols; i++ {
		faces = append(faces, [3]uint32{b2, front(i, rows), front(i+1, rows)})
	}
	faces = append(faces, [3]uint32{b2, front(cols, rows), b3})

	// Bottom (-Y), fanned from b0
	faces = append(faces, [3]uint32{b0, b1, front(cols, 0)})
	for i := cols; i > 0; i-- {
		faces = append(faces, [3]uint32{b0, front(i, 0), front(i-1, 0)})
	}

	m.Faces = faces
	m.Normals = angleWeightedNormals(m.Positions, m.Faces)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Sphere builds a UV sphere with one vertex per pole.
// It has 2+(rings-1)*segments vertices and 2*segments*(rings-1) triangles.
func Sphere(radius float32, rings, segments int) (*Mesh, error) {
	if !(radius > 0) {
		return nil, fmt.Errorf("%w: sphere radius %v", ErrInvalidParameter, radius)
	}
	if rings < 2 || rings > MaxSegments {
		return nil, fmt.Errorf("%w: sphere rings %d outside [2, %d]", ErrInvalidParameter, rings, MaxSegments)
	}
	if segments < 3 || segments > MaxSegments {
		return nil, fmt.Errorf("%w: sphere segments %d outside [3, %d]", ErrInvalidParameter, segments, MaxSegments)
	}

	vertexCount := 2 + (rings-1)*segments
	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, vertexCount),
		Normals:   make([]mgl32.Vec3, 0, vertexCount),
		UVs:       make([]mgl32.Vec2, 0, vertexCount),
		Faces:     make([][3]uint32, 0, 2*segments*(rings-1)),
	}

	m.Positions = append(m.Positions, mgl32.Vec3{0, radius, 0})
	m.Normals = append(m.Normals, mgl32.Vec3{0, 1, 0})
	m.UVs = append(m.UVs, mgl32.Vec2{0.5, 0})

	for i := 1; i < rings; i++ {
		lat := math32.Pi * float32(i) / float32(rings)
		sinLat, cosLat := math32.Sin(lat), math32.Cos(lat)
		for j := 0; j < segments; j++ {
			lon := 2 * math32.Pi * float32(j) / float32(segments)
			n := mgl32.Vec3{sinLat * math32.Cos(lon), cosLat, sinLat * math32.Sin(lon)}
			m.Positions = append(m.Positions, n.Mul(radius))
			m.Normals = append(m.Normals, n)
			m.UVs = append(m.UVs, mgl32.Vec2{float32(j) / float32(segments), float32(i) / float32(rings)})
		}
	}

	south := uint32(len(m.Positions))
	m.Positions = append(m.Positions, mgl32.Vec3{0, -radius, 0})
	m.Normals = append(m.Normals, mgl32.Vec3{0, -1, 0})
	m.UVs = append(m.UVs, mgl32.Vec2{0.5, 1})

	ring := func(i, j int) uint32 {
		return uint32(1 + (i-1)*segments + j%segments)
	}

	for j := 0; j < segments; j++ {
		m.Faces = append(m.Faces, [3]uint32{0, ring(1, j+1), ring(1, j)})
	}
	for i := 1; i < rings-1; i++ {
		for j := 0; j < segments; j++ {
			a0, a1 := ring(i, j), ring(i, j+1)
			b0, b1 := ring(i+1, j), ring(i+1, j+1)
			m.Faces = append(m.Faces, [3]uint32{a0, a1, b1}, [3]uint32{a0, b1, b0})
		}
	}
	for j := 0; j < segments; j++ {
		m.Faces = append(m.Faces, [3]uint32{south, ring(rings-1, j), ring(rings-1, j+1)})
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Cylinder builds a capped cylinder centered at the origin along Y.
// Each cap is fanned around its own center vertex.
func Cylinder(radius, height float32, segments int) (*Mesh, error) {
	if !(radius > 0) || !(height > 0) {
		return nil, fmt.Errorf("%w: cylinder radius %v height %v", ErrInvalidParameter, radius, height)
	}
	if segments < 3 || segments > MaxSegments {
		return nil, fmt.Errorf("%w: cylinder segments %d outside [3, %d]", ErrInvalidParameter, segments, MaxSegments)
	}

	vertexCount := 2*segments + 2
	m := &Mesh{
		Positions: make([]mgl32.Vec3, 0, vertexCount),
		UVs:       make([]mgl32.Vec2, 0, vertexCount),
		Faces:     make([][3]uint32, 0, 4*segments),
	}

	halfH := height / 2
	for _, ring := range []struct{ y, v float32 }{{halfH, 0.2}, {-halfH, 0.8}} {
		for j := 0; j < segments; j++ {
			lon := 2 * math32.Pi * float32(j) / float32(segments)
			m.Positions = append(m.Positions, mgl32.Vec3{radius * math32.Cos(lon), ring.y, radius * math32.Sin(lon)})
			m.UVs = append(m.UVs, mgl32.Vec2{float32(j) / float32(segments), ring.v})
		}
	}
	topCenter := uint32(len(m.Positions))
	m.Positions = append(m.Positions, mgl32.Vec3{0, halfH, 0})
	m.UVs = append(m.UVs, mgl32.Vec2{0.5, 0})
	bottomCenter := topCenter + 1
	m.Positions = append(m.Positions, mgl32.Vec3{0, -halfH, 0})
	m.UVs = append(m.UVs, mgl32.Vec2{0.5, 1})

	seg := uint32(segments)
	top := func(j int) uint32 { return uint32(j) % seg }
	bottom := func(j int) uint32 { return seg + uint32(j)%seg }

	for j := 0; j < segments; j++ {
		m.Faces = append(m.Faces,
			[3]uint32{topCenter, top(j + 1), top(j)},
			[3]uint32{top(j), top(j + 1), bottom(j + 1)},
			[3]uint32{top(j), bottom(j + 1), bottom(j)},
			[3]uint32{bottomCenter, bottom(j), bottom(j + 1)},
		)
	}

	m.Normals = angleWeightedNormals(m.Positions, m.Faces)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
