package mesh

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// faceNormal returns the unit normal of face i following its winding.
func faceNormal(m *Mesh, i int) mgl32.Vec3 {
	f := m.Faces[i]
	return triangleNormal(m.Positions[f[0]], m.Positions[f[1]], m.Positions[f[2]], mgl32.Vec3{0, 1, 0})
}

// checkOutward verifies that every face of a mesh enclosing the origin
// points away from it.
func checkOutward(t *testing.T, m *Mesh) {
	t.Helper()
	for i, f := range m.Faces {
		centroid := m.Positions[f[0]].Add(m.Positions[f[1]]).Add(m.Positions[f[2]]).Mul(1.0 / 3)
		if d := faceNormal(m, i).Dot(centroid); d <= 0 {
			t.Fatalf("face %d %v points inward (dot %f)", i, f, d)
		}
	}
}

func TestCube(t *testing.T) {
	for _, edge := range []float32{0.01, 1, 2, 37.5} {
		m, err := Cube(edge)
		if err != nil {
			t.Fatalf("Cube(%v) failed: %v", edge, err)
		}
		if m.VertexCount() != 8 {
			t.Errorf("expected 8 vertices, got %d", m.VertexCount())
		}
		if m.TriangleCount() != 12 {
			t.Errorf("expected 12 triangles, got %d", m.TriangleCount())
		}
		for i, p := range m.Positions {
			for k := 0; k < 3; k++ {
				if p[k] < -edge/2 || p[k] > edge/2 {
					t.Errorf("vertex %d coordinate %d = %f outside ±%f", i, k, p[k], edge/2)
				}
			}
		}
		if !m.IsClosedManifold() {
			t.Error("expected closed manifold")
		}
		checkOutward(t, m)
	}
}

func TestCube_FrontFaceUVRegion(t *testing.T) {
	m, err := Cube(2)
	if err != nil {
		t.Fatalf("Cube failed: %v", err)
	}
	for i, p := range m.Positions {
		if p[2] <= 0 {
			continue
		}
		uv := m.UVs[i]
		if uv[0] < BoxFrontRegion.Min[0] || uv[0] > BoxFrontRegion.Max[0] ||
			uv[1] < BoxFrontRegion.Min[1] || uv[1] > BoxFrontRegion.Max[1] {
			t.Errorf("front vertex %d uv %v outside front region", i, uv)
		}
	}
}

func TestSphere_Counts(t *testing.T) {
	tests := []struct {
		rings, segments int
	}{
		{2, 3},
		{2, 8},
		{3, 3},
		{8, 8},
		{16, 32},
		{31, 7},
	}

	for _, tt := range tests {
		m, err := Sphere(1.5, tt.rings, tt.segments)
		if err != nil {
			t.Fatalf("Sphere(%d, %d) failed: %v", tt.rings, tt.segments, err)
		}
		wantV := 2 + (tt.rings-1)*tt.segments
		wantT := tt.segments*2 + (tt.rings-2)*tt.segments*2
		if m.VertexCount() != wantV {
			t.Errorf("rings=%d segments=%d: expected %d vertices, got %d", tt.rings, tt.segments, wantV, m.VertexCount())
		}
		if m.TriangleCount() != wantT {
			t.Errorf("rings=%d segments=%d: expected %d triangles, got %d", tt.rings, tt.segments, wantT, m.TriangleCount())
		}
		if !m.IsClosedManifold() {
			t.Errorf("rings=%d segments=%d: expected closed manifold", tt.rings, tt.segments)
		}
		checkOutward(t, m)
	}
}

func TestSphere_UnitScenario(t *testing.T) {
	m, err := Sphere(1.0, 8, 8)
	if err != nil {
		t.Fatalf("Sphere failed: %v", err)
	}
	if m.VertexCount() != 58 {
		t.Errorf("expected 58 vertices, got %d", m.VertexCount())
	}
	if m.TriangleCount() != 112 {
		t.Errorf("expected 112 triangles, got %d", m.TriangleCount())
	}
	for i, p := range m.Positions {
		if d := math32.Abs(p.Len() - 1); d > 1e-5 {
			t.Errorf("vertex %d at distance %f from origin", i, p.Len())
		}
	}
	if m.UVs[0] != (mgl32.Vec2{0.5, 0}) {
		t.Errorf("expected north pole uv (0.5, 0), got %v", m.UVs[0])
	}
	if last := m.UVs[len(m.UVs)-1]; last != (mgl32.Vec2{0.5, 1}) {
		t.Errorf("expected south pole uv (0.5, 1), got %v", last)
	}
}

func TestCylinder(t *testing.T) {
	for _, segments := range []int{3, 8, 16, 64} {
		m, err := Cylinder(1, 2, segments)
		if err != nil {
			t.Fatalf("Cylinder(%d) failed: %v", segments, err)
		}
		if m.VertexCount() != 2*segments+2 {
			t.Errorf("expected %d vertices, got %d", 2*segments+2, m.VertexCount())
		}
		if m.TriangleCount() != 4*segments {
			t.Errorf("expected %d triangles, got %d", 4*segments, m.TriangleCount())
		}
		if !m.IsClosedManifold() {
			t.Error("expected closed manifold")
		}
		checkOutward(t, m)

		min, max := m.Bounds()
		if min[1] != -1 || max[1] != 1 {
			t.Errorf("expected y bounds [-1, 1], got [%f, %f]", min[1], max[1])
		}
	}
}

func TestBuilding(t *testing.T) {
	m, err := Building(2)
	if err != nil {
		t.Fatalf("Building failed: %v", err)
	}
	if m.VertexCount() != 20 {
		t.Errorf("expected 20 vertices, got %d", m.VertexCount())
	}
	if m.TriangleCount() != 36 {
		t.Errorf("expected 36 triangles, got %d", m.TriangleCount())
	}
	if !m.IsClosedManifold() {
		t.Error("expected closed manifold")
	}
	checkOutward(t, m)

	min, max := m.Bounds()
	want := mgl32.Vec3{1, 1.5, 1}
	if !max.ApproxEqualThreshold(want, 1e-6) || !min.ApproxEqualThreshold(want.Mul(-1), 1e-6) {
		t.Errorf("expected bounds ±%v, got %v..%v", want, min, max)
	}
}

func TestBox_FlatFaceNormals(t *testing.T) {
	m, err := Cube(1)
	if err != nil {
		t.Fatalf("Cube failed: %v", err)
	}
	// Corner normals point diagonally outward.
	for i, n := range m.Normals {
		p := m.Positions[i]
		for k := 0; k < 3; k++ {
			if n[k]*p[k] <= 0 {
				t.Errorf("vertex %d normal %v does not follow corner %v", i, n, p)
			}
		}
		if d := math32.Abs(n.Len() - 1); d > 1e-5 {
			t.Errorf("vertex %d normal not unit: %v", i, n)
		}
	}
}

func TestTerrain_Deterministic(t *testing.T) {
	a, err := Terrain(10, 10, 32, 3, 42)
	if err != nil {
		t.Fatalf("Terrain failed: %v", err)
	}
	b, err := Terrain(10, 10, 32, 3, 42)
	if err != nil {
		t.Fatalf("Terrain failed: %v", err)
	}
	if a.VertexCount() != 32*32 {
		t.Errorf("expected %d vertices, got %d", 32*32, a.VertexCount())
	}
	if a.TriangleCount() != 2*31*31 {
		t.Errorf("expected %d triangles, got %d", 2*31*31, a.TriangleCount())
	}
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] || a.Normals[i] != b.Normals[i] || a.UVs[i] != b.UVs[i] {
			t.Fatalf("vertex %d differs between identical runs", i)
		}
	}

	c, err := Terrain(10, 10, 32, 3, 43)
	if err != nil {
		t.Fatalf("Terrain failed: %v", err)
	}
	same := true
	for i := range a.Positions {
		if a.Positions[i] != c.Positions[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("expected different seeds to produce different heights")
	}
}

func TestTerrain_Shape(t *testing.T) {
	m, err := Terrain(8, 4, 5, 2, 7)
	if err != nil {
		t.Fatalf("Terrain failed: %v", err)
	}
	min, max := m.Bounds()
	if min[0] != -4 || max[0] != 4 || min[2] != -2 || max[2] != 2 {
		t.Errorf("unexpected extent %v..%v", min, max)
	}
	if min[1] < 0 || max[1] > 2 {
		t.Errorf("heights %f..%f outside [0, 2]", min[1], max[1])
	}
	for i := range m.Faces {
		if n := faceNormal(m, i); n[1] <= 0 {
			t.Errorf("face %d normal %v points down", i, n)
		}
	}

	flat, err := Terrain(4, 4, 3, 0, 1)
	if err != nil {
		t.Fatalf("Terrain failed: %v", err)
	}
	for i, n := range flat.Normals {
		if !n.ApproxEqualThreshold(mgl32.Vec3{0, 1, 0}, 1e-5) {
			t.Errorf("flat terrain vertex %d normal %v", i, n)
		}
	}
}

func TestTree(t *testing.T) {
	m, err := Tree(3, 0.2, 1.5)
	if err != nil {
		t.Fatalf("Tree failed: %v", err)
	}
	// trunk 2*8+2, crown 2+7*12, three lobes 2+5*10
	if m.VertexCount() != 18+86+3*52 {
		t.Errorf("expected %d vertices, got %d", 18+86+3*52, m.VertexCount())
	}
	if m.TriangleCount() != 32+168+3*100 {
		t.Errorf("expected %d triangles, got %d", 32+168+3*100, m.TriangleCount())
	}
	min, _ := m.Bounds()
	if math32.Abs(min[1]) > 1e-6 {
		t.Errorf("expected trunk base at y=0, got %f", min[1])
	}
	if !m.IsClosedManifold() {
		t.Error("expected union of closed parts to be closed")
	}
}

func TestMerge_OffsetsIndices(t *testing.T) {
	a, _ := Cube(1)
	b, _ := Cube(2)
	m, err := Merge(a, b.Translate(mgl32.Vec3{5, 0, 0}))
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if m.VertexCount() != 16 || m.TriangleCount() != 24 {
		t.Fatalf("expected 16/24, got %d/%d", m.VertexCount(), m.TriangleCount())
	}
	for i := 12; i < 24; i++ {
		for k := 0; k < 3; k++ {
			if m.Faces[i][k] != b.Faces[i-12][k]+8 {
				t.Errorf("face %d index %d: expected %d, got %d", i, k, b.Faces[i-12][k]+8, m.Faces[i][k])
			}
		}
	}
	if b.Positions[0][0] == m.Positions[8][0] {
		t.Error("Translate modified the source mesh or was not applied")
	}

	if _, err := Merge(a, nil); !errors.Is(err, ErrGeometry) {
		t.Errorf("expected ErrGeometry for nil part, got %v", err)
	}
}

func TestValidate_Rejects(t *testing.T) {
	base := func() *Mesh {
		m, _ := Cube(1)
		return m.clone()
	}

	tests := []struct {
		name   string
		mutate func(m *Mesh)
	}{
		{"index out of range", func(m *Mesh) { m.Faces[0][1] = 99 }},
		{"degenerate face", func(m *Mesh) { m.Faces[0][1] = m.Faces[0][0] }},
		{"uv out of range", func(m *Mesh) { m.UVs[0][0] = 1.5 }},
		{"nan position", func(m *Mesh) { m.Positions[0][0] = math32.NaN() }},
		{"missing normals", func(m *Mesh) { m.Normals = m.Normals[:4] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(m)
			if err := m.Validate(); !errors.Is(err, ErrGeometry) {
				t.Errorf("expected ErrGeometry, got %v", err)
			}
		})
	}
}

func TestBuilders_InvalidParameters(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Mesh, error)
	}{
		{"cube zero", func() (*Mesh, error) { return Cube(0) }},
		{"cube negative", func() (*Mesh, error) { return Cube(-1) }},
		{"cube nan", func() (*Mesh, error) { return Cube(math32.NaN()) }},
		{"sphere radius", func() (*Mesh, error) { return Sphere(0, 8, 8) }},
		{"sphere rings", func() (*Mesh, error) { return Sphere(1, 1, 8) }},
		{"sphere segments", func() (*Mesh, error) { return Sphere(1, 8, 2) }},
		{"sphere too fine", func() (*Mesh, error) { return Sphere(1, MaxSegments+1, 8) }},
		{"cylinder height", func() (*Mesh, error) { return Cylinder(1, 0, 8) }},
		{"cylinder segments", func() (*Mesh, error) { return Cylinder(1, 1, 2) }},
		{"terrain size", func() (*Mesh, error) { return Terrain(0, 1, 8, 1, 0) }},
		{"terrain resolution low", func() (*Mesh, error) { return Terrain(1, 1, 1, 1, 0) }},
		{"terrain resolution high", func() (*Mesh, error) { return Terrain(1, 1, MaxTerrainResolution+1, 1, 0) }},
		{"terrain height", func() (*Mesh, error) { return Terrain(1, 1, 8, -1, 0) }},
		{"tree trunk", func() (*Mesh, error) { return Tree(0, 1, 1) }},
		{"tree foliage", func() (*Mesh, error) { return Tree(1, 1, -2) }},
		{"building", func() (*Mesh, error) { return Building(0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := tt.build()
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
			if m != nil {
				t.Error("expected nil mesh on error")
			}
		})
	}
}
