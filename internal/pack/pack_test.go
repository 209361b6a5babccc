package pack

import (
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/Faultbox/assetgen/pkg/asset"
	"github.com/Faultbox/assetgen/pkg/glb"
	"github.com/Faultbox/assetgen/pkg/manifest"
	"github.com/Faultbox/assetgen/pkg/mesh"
	"github.com/Faultbox/assetgen/pkg/texture"
)

func TestRun_DefaultPack(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "assets")
	g := New(dir, WithWorkers(3))

	res, err := g.Run(context.Background(), DefaultSpecs())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.OK || res.Err != nil {
		t.Fatalf("expected OK run, got %v", res.Err)
	}
	if len(res.Manifest.Assets) != len(DefaultSpecs()) {
		t.Fatalf("expected %d entries, got %d", len(DefaultSpecs()), len(res.Manifest.Assets))
	}

	for i, spec := range DefaultSpecs() {
		e := res.Manifest.Assets[i]
		if e.Name != spec.Name {
			t.Errorf("entry %d: expected name %s, got %s", i, spec.Name, e.Name)
		}
		if e.File != spec.Name+".glb" {
			t.Errorf("entry %d: expected file %s.glb, got %s", i, spec.Name, e.File)
		}

		model, err := glb.DecodeFile(filepath.Join(dir, e.File))
		if err != nil {
			t.Fatalf("%s: DecodeFile failed: %v", e.Name, err)
		}
		if model.VertexCount() != e.VertexCount || model.TriangleCount() != e.TriangleCount {
			t.Errorf("%s: manifest says %d/%d, file has %d/%d", e.Name,
				e.VertexCount, e.TriangleCount, model.VertexCount(), model.TriangleCount())
		}
		if len(model.Images) != e.TextureCount {
			t.Errorf("%s: expected %d images, got %d", e.Name, e.TextureCount, len(model.Images))
		}
	}

	m, err := manifest.Read(g.ManifestPath())
	if err != nil {
		t.Fatalf("Read manifest failed: %v", err)
	}
	if ok, failed := m.Counts(); ok != 6 || failed != 0 {
		t.Errorf("expected 6 ok 0 failed, got %d/%d", ok, failed)
	}
}

func TestRun_InvalidSpecInjected(t *testing.T) {
	dir := t.TempDir()
	specs := DefaultSpecs()
	specs = append(specs[:3], append([]Spec{{Name: "broken", Type: asset.TypeCube, Size: -1}}, specs[3:]...)...)

	res, err := New(dir, WithTextureSize(16)).Run(context.Background(), specs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.OK {
		t.Error("expected run to report failure")
	}
	if !errors.Is(res.Err, ErrInvalidSpec) {
		t.Errorf("expected ErrInvalidSpec in %v", res.Err)
	}

	m, err := manifest.Read(filepath.Join(dir, manifest.FileName))
	if err != nil {
		t.Fatalf("Read manifest failed: %v", err)
	}
	ok, failed := m.Counts()
	if ok != 6 || failed != 1 {
		t.Errorf("expected 6 ok 1 failed, got %d/%d", ok, failed)
	}
	bad := m.Assets[3]
	if bad.Name != "broken" || bad.Error == "" || bad.File != "" {
		t.Errorf("expected error entry for broken, got %+v", bad)
	}
	if _, err := os.Stat(filepath.Join(dir, "broken.glb")); !os.IsNotExist(err) {
		t.Error("expected no file for the failed item")
	}
}

func TestRun_ItemErrors(t *testing.T) {
	tests := []struct {
		name  string
		specs []Spec
		want  error
	}{
		{
			name:  "unknown type",
			specs: []Spec{{Name: "statue", Type: "statue", Size: 1}},
			want:  ErrUnknownType,
		},
		{
			name:  "empty name",
			specs: []Spec{{Type: asset.TypeCube, Size: 1}},
			want:  ErrInvalidSpec,
		},
		{
			name:  "negative scale",
			specs: []Spec{{Name: "shrunk", Type: asset.TypeCube, Size: 1, Scale: -2}},
			want:  ErrInvalidSpec,
		},
		{
			name:  "path in name",
			specs: []Spec{{Name: "../escape", Type: asset.TypeCube, Size: 1}},
			want:  ErrInvalidSpec,
		},
		{
			name: "duplicate name",
			specs: []Spec{
				{Name: "twin", Type: asset.TypeCube, Size: 1},
				{Name: "twin", Type: asset.TypeSphere, Size: 1},
			},
			want: ErrInvalidSpec,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := New(t.TempDir(), WithTextureSize(16)).Run(context.Background(), tt.specs)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if res.OK {
				t.Error("expected run to report failure")
			}
			if !errors.Is(res.Err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, res.Err)
			}
			if err := res.Manifest.Validate(); err != nil {
				t.Errorf("manifest invalid: %v", err)
			}
		})
	}
}

func TestRun_InvalidItemKeepsNameFree(t *testing.T) {
	specs := []Spec{
		{Name: "twin", Type: asset.TypeCube, Size: -1},
		{Name: "twin", Type: asset.TypeCube, Size: 1},
	}

	res, err := New(t.TempDir(), WithTextureSize(16)).Run(context.Background(), specs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	ok, failed := res.Manifest.Counts()
	if ok != 1 || failed != 1 {
		t.Fatalf("expected 1 ok 1 failed, got %d/%d", ok, failed)
	}
	if !res.Manifest.Assets[0].Failed() || res.Manifest.Assets[1].Failed() {
		t.Errorf("expected only the invalid first item to fail, got %+v", res.Manifest.Assets)
	}
}

func TestBuild_Colors(t *testing.T) {
	g := New(t.TempDir(), WithTextureSize(16))

	a, err := g.Build(Spec{Name: "red", Type: asset.TypeCube, Size: 1, Colors: []string{"#ff0000", "00f"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	base := a.Material.BaseColor
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	if got := base.At(0, 0); got != red {
		t.Errorf("expected first tile red, got %v", got)
	}
	if got := base.At(base.Width/8, 0); got != blue {
		t.Errorf("expected second tile blue, got %v", got)
	}

	// Partial override keeps the remaining defaults.
	a, err = g.Build(Spec{Name: "partial", Type: asset.TypeCube, Size: 1, Colors: []string{"#ff0000"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	base = a.Material.BaseColor
	if got := base.At(0, 0); got != red {
		t.Errorf("expected first tile red, got %v", got)
	}
	if got := base.At(base.Width/8, 0); got != texture.Black {
		t.Errorf("expected default black second tile, got %v", got)
	}
}

func TestGenerate_Scale(t *testing.T) {
	dir := t.TempDir()
	g := New(dir, WithTextureSize(16))

	entry, err := g.Generate(context.Background(), Spec{Name: "big", Type: asset.TypeCube, Size: 1, Scale: 2.5})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	model, err := glb.DecodeFile(filepath.Join(dir, entry.File))
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if model.Scale != 2.5 {
		t.Errorf("expected node scale 2.5, got %v", model.Scale)
	}

	a, err := g.Build(Spec{Name: "plain", Type: asset.TypeCube, Size: 1})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if a.Scale != 1 {
		t.Errorf("expected default scale 1, got %v", a.Scale)
	}
}

func TestBuild_ColorErrors(t *testing.T) {
	g := New(t.TempDir(), WithTextureSize(16))

	tests := []struct {
		name string
		spec Spec
	}{
		{"bad hex", Spec{Name: "x", Type: asset.TypeCube, Size: 1, Colors: []string{"#zz0000"}}},
		{"too many", Spec{Name: "x", Type: asset.TypeCylinder, Size: 1, Colors: []string{"#fff", "#000"}}},
		{"fixed palette", Spec{Name: "x", Type: asset.TypeTerrain, Size: 1, Colors: []string{"#fff"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Build(tt.spec); !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("expected ErrInvalidSpec, got %v", err)
			}
		})
	}
}

func TestRun_RecoversPanics(t *testing.T) {
	exploding := Recipe{
		Mesh: func(float32, int64) (*mesh.Mesh, error) {
			panic("boom")
		},
		Texture: func(size int, _ int64, _ []color.RGBA) (*texture.Texture, error) {
			return texture.Checkerboard(size, 2, texture.White, texture.Black)
		},
		TextureSize: 16,
	}
	specs := []Spec{
		{Name: "ok", Type: asset.TypeCube, Size: 1},
		{Name: "bang", Type: "exploding", Size: 1},
	}

	res, err := New(t.TempDir(), WithRecipe("exploding", exploding)).Run(context.Background(), specs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.OK {
		t.Error("expected run to report failure")
	}
	if !errors.Is(res.Err, ErrGeneration) {
		t.Errorf("expected ErrGeneration, got %v", res.Err)
	}
	if res.Manifest.Assets[0].Failed() || !res.Manifest.Assets[1].Failed() {
		t.Errorf("expected only the panicking item to fail, got %+v", res.Manifest.Assets)
	}
}

type failingExporter struct {
	calls atomic.Int32
}

func (e *failingExporter) Export(dir string, a *asset.Asset) (string, error) {
	e.calls.Add(1)
	return "", glb.ErrExport
}

func TestRun_ExportFailure(t *testing.T) {
	exp := &failingExporter{}
	res, err := New(t.TempDir(), WithExporter(exp), WithTextureSize(16)).Run(context.Background(), DefaultSpecs())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if int(exp.calls.Load()) != len(DefaultSpecs()) {
		t.Errorf("expected %d export calls, got %d", len(DefaultSpecs()), exp.calls.Load())
	}
	if _, failed := res.Manifest.Counts(); failed != len(DefaultSpecs()) {
		t.Errorf("expected every item to fail, got %d", failed)
	}
	if !errors.Is(res.Err, glb.ErrExport) {
		t.Errorf("expected ErrExport, got %v", res.Err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := New(t.TempDir(), WithTextureSize(16)).Run(ctx, DefaultSpecs())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", res.Err)
	}
	if ok, _ := res.Manifest.Counts(); ok != 0 {
		t.Errorf("expected no generated items, got %d", ok)
	}
}

func TestRun_InvalidTextureSize(t *testing.T) {
	_, err := New(t.TempDir(), WithTextureSize(8)).Run(context.Background(), DefaultSpecs())
	if !errors.Is(err, texture.ErrInvalidParameter) {
		t.Errorf("expected ErrInvalidParameter, got %v", err)
	}
}

func TestGenerate_MyCube(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "assets")

	entry, err := New(dir).Generate(context.Background(), Spec{Name: "my_cube", Type: asset.TypeCube, Size: 2})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	path := filepath.Join(dir, "my_cube.glb")
	if entry.File != "my_cube.glb" {
		t.Errorf("expected file my_cube.glb, got %s", entry.File)
	}

	model, err := glb.DecodeFile(path)
	if err != nil {
		t.Fatalf("DecodeFile failed: %v", err)
	}
	if !json.Valid(model.JSON) {
		t.Error("descriptor chunk is not valid JSON")
	}
	if model.MeshCount != 1 {
		t.Errorf("expected 1 mesh, got %d", model.MeshCount)
	}
	if model.VertexCount() != 8 || model.TriangleCount() != 12 {
		t.Errorf("expected 8 vertices 12 triangles, got %d/%d", model.VertexCount(), model.TriangleCount())
	}
	for i, p := range model.Positions {
		for k := 0; k < 3; k++ {
			if p[k] < -1 || p[k] > 1 {
				t.Errorf("vertex %d outside ±1: %v", i, p)
			}
		}
	}
}

func TestGenerate_Error(t *testing.T) {
	_, err := New(t.TempDir()).Generate(context.Background(), Spec{Name: "x", Type: asset.TypeSphere, Size: 0})
	if !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestBuild_SizeScaling(t *testing.T) {
	g := New(t.TempDir(), WithTextureSize(16))

	tests := []struct {
		typ    asset.Type
		extent [3]float32 // half extents for size 2
	}{
		{asset.TypeCube, [3]float32{1, 1, 1}},
		{asset.TypeSphere, [3]float32{2, 2, 2}},
		{asset.TypeCylinder, [3]float32{2, 2, 2}},
		{asset.TypeBuilding, [3]float32{2, 3, 2}},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			a, err := g.Build(Spec{Name: "s", Type: tt.typ, Size: 2})
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			_, max := a.Mesh.Bounds()
			for k := 0; k < 3; k++ {
				if d := max[k] - tt.extent[k]; d > 1e-5 || d < -1e-5 {
					t.Errorf("axis %d: expected max %v, got %v", k, tt.extent[k], max[k])
				}
			}
		})
	}
}

func TestRecipes_CoverAllTypes(t *testing.T) {
	for _, typ := range asset.Types {
		r, ok := recipes[typ]
		if !ok {
			t.Errorf("no recipe for %s", typ)
			continue
		}
		if r.Mesh == nil || r.Texture == nil || r.TextureSize == 0 {
			t.Errorf("incomplete recipe for %s", typ)
		}
	}
}
