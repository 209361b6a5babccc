package pack

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/assetgen/internal/fsutil"
	"github.com/Faultbox/assetgen/pkg/asset"
	"github.com/Faultbox/assetgen/pkg/glb"
	"github.com/Faultbox/assetgen/pkg/manifest"
	"github.com/Faultbox/assetgen/pkg/texture"
)

// ErrGeneration is returned when an asset pipeline fails unexpectedly.
var ErrGeneration = errors.New("asset generation failed")

// MinTextureSize is the smallest texture size override accepted.
const MinTextureSize = 16

// Exporter writes an asset into a directory and returns the written path.
type Exporter interface {
	Export(dir string, a *asset.Asset) (string, error)
}

// Option configures a Generator.
type Option func(*Generator)

// WithExporter replaces the GLB exporter.
func WithExporter(e Exporter) Option {
	return func(g *Generator) {
		g.exporter = e
	}
}

// WithWorkers limits how many assets are generated at once.
// Values below 1 mean one worker per CPU.
func WithWorkers(n int) Option {
	return func(g *Generator) {
		g.workers = n
	}
}

// WithTextureSize overrides the base color resolution of every asset.
// Zero keeps each type's default.
func WithTextureSize(size int) Option {
	return func(g *Generator) {
		g.textureSize = size
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// WithPackInfo sets the manifest name and description.
func WithPackInfo(name, description string) Option {
	return func(g *Generator) {
		g.packName = name
		g.packDescription = description
	}
}

// WithRecipe registers or replaces the recipe of an asset type.
func WithRecipe(t asset.Type, r Recipe) Option {
	return func(g *Generator) {
		g.recipes[t] = r
	}
}

// Generator turns specs into exported assets.
type Generator struct {
	dir             string
	exporter        Exporter
	workers         int
	textureSize     int
	log             *zap.Logger
	packName        string
	packDescription string
	recipes         map[asset.Type]Recipe
}

// New creates a generator writing into dir.
func New(dir string, opts ...Option) *Generator {
	g := &Generator{
		dir:             dir,
		exporter:        glb.NewExporter(),
		log:             zap.NewNop(),
		packName:        manifest.DefaultName,
		packDescription: manifest.DefaultDescription,
		recipes:         make(map[asset.Type]Recipe, len(recipes)),
	}
	for t, r := range recipes {
		g.recipes[t] = r
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.workers < 1 {
		g.workers = runtime.NumCPU()
	}
	return g
}

// Dir returns the output directory.
func (g *Generator) Dir() string {
	return g.dir
}

// ManifestPath returns where Run writes the manifest.
func (g *Generator) ManifestPath() string {
	return filepath.Join(g.dir, manifest.FileName)
}

// Result is the outcome of a pack run.
type Result struct {
	Manifest *manifest.Manifest
	// OK is false when any item failed.
	OK bool
	// Err combines every item failure.
	Err error
}

// Run generates every spec concurrently and writes the manifest. Item
// failures are recorded as manifest entries and never stop other items.
// The returned error is set only when the output directory or manifest
// cannot be written.
func (g *Generator) Run(ctx context.Context, specs []Spec) (*Result, error) {
	if err := g.checkOptions(); err != nil {
		return nil, err
	}
	if err := fsutil.EnsureDir(g.dir); err != nil {
		return nil, fmt.Errorf("%w: %w", glb.ErrExport, err)
	}

	start := time.Now()
	entries := make([]manifest.Entry, len(specs))
	errs := make([]error, len(specs))

	seen := make(map[string]int, len(specs))
	var eg errgroup.Group
	eg.SetLimit(g.workers)
	for i, spec := range specs {
		if first, dup := seen[spec.Name]; dup {
			errs[i] = fmt.Errorf("%w: name %q already used by item %d", ErrInvalidSpec, spec.Name, first)
			entries[i] = failedEntry(i, spec, errs[i])
			continue
		}
		// Invalid specs fail on their own and do not claim their name.
		if spec.Validate() == nil {
			seen[spec.Name] = i
		}

		eg.Go(func() error {
			entries[i], errs[i] = g.generate(ctx, i, spec)
			return nil
		})
	}
	eg.Wait()

	m := manifest.New(g.packName, g.packDescription)
	m.Assets = entries

	res := &Result{Manifest: m, Err: multierr.Combine(errs...)}
	res.OK = res.Err == nil
	g.log.Debug("pack items finished", zap.Int("errors", len(multierr.Errors(res.Err))))

	if err := manifest.Write(g.ManifestPath(), m); err != nil {
		return res, err
	}

	ok, failed := m.Counts()
	g.log.Info("asset pack generated",
		zap.String("dir", g.dir),
		zap.Int("ok", ok),
		zap.Int("failed", failed),
		zap.Duration("elapsed", time.Since(start)))
	return res, nil
}

// Generate builds and exports a single asset and returns its entry.
func (g *Generator) Generate(ctx context.Context, spec Spec) (manifest.Entry, error) {
	if err := g.checkOptions(); err != nil {
		return manifest.Entry{}, err
	}
	if err := fsutil.EnsureDir(g.dir); err != nil {
		return manifest.Entry{}, fmt.Errorf("%w: %w", glb.ErrExport, err)
	}
	return g.generate(ctx, 0, spec)
}

// Build runs the mesh, texture, material and scale steps of spec without exporting.
func (g *Generator) Build(spec Spec) (*asset.Asset, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	r, ok := g.recipes[spec.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s has type %q", ErrUnknownType, spec.Name, spec.Type)
	}

	palette, err := r.palette(spec)
	if err != nil {
		return nil, err
	}

	m, err := r.Mesh(spec.Size, spec.Seed)
	if err != nil {
		return nil, fmt.Errorf("%s mesh: %w", spec.Name, err)
	}

	size := g.textureSize
	if size == 0 {
		size = r.TextureSize
	}
	tex, err := r.Texture(size, spec.Seed, palette)
	if err != nil {
		return nil, fmt.Errorf("%s texture: %w", spec.Name, err)
	}

	a, err := asset.Bind(spec.Name, m, tex, spec.Type)
	if err != nil {
		return nil, err
	}
	if r.Normal != nil {
		normal, err := r.Normal(tex)
		if err != nil {
			return nil, fmt.Errorf("%s normal map: %w", spec.Name, err)
		}
		a = a.WithNormalMap(normal)
	}
	if spec.Scale != 0 {
		if a, err = a.WithScale(spec.Scale); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// generate runs one item and converts every failure, panics included, into
// an error entry.
func (g *Generator) generate(ctx context.Context, index int, spec Spec) (entry manifest.Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s panicked: %v", ErrGeneration, spec.Name, r)
			entry = failedEntry(index, spec, err)
		}
	}()

	if err := ctx.Err(); err != nil {
		return failedEntry(index, spec, err), err
	}

	start := time.Now()
	a, err := g.Build(spec)
	if err != nil {
		return failedEntry(index, spec, err), err
	}

	path, err := g.exporter.Export(g.dir, a)
	if err != nil {
		return failedEntry(index, spec, err), err
	}

	entry = manifest.Entry{
		Name:          spec.Name,
		File:          filepath.Base(path),
		Type:          spec.Type.String(),
		VertexCount:   a.Mesh.VertexCount(),
		TriangleCount: a.Mesh.TriangleCount(),
		TextureCount:  a.Material.TextureCount(),
	}
	g.log.Debug("asset exported",
		zap.String("name", entry.Name),
		zap.String("type", entry.Type),
		zap.String("file", path),
		zap.Int("vertices", entry.VertexCount),
		zap.Int("triangles", entry.TriangleCount),
		zap.Duration("elapsed", time.Since(start)))
	return entry, nil
}

func (g *Generator) checkOptions() error {
	if g.textureSize != 0 && (g.textureSize < MinTextureSize || g.textureSize > texture.MaxSize) {
		return fmt.Errorf("%w: texture size %d outside [%d, %d]",
			texture.ErrInvalidParameter, g.textureSize, MinTextureSize, texture.MaxSize)
	}
	if g.exporter == nil {
		return fmt.Errorf("%w: no exporter", ErrGeneration)
	}
	return nil
}

func failedEntry(index int, spec Spec, err error) manifest.Entry {
	name := spec.Name
	if name == "" {
		name = fmt.Sprintf("#%d", index)
	}
	return manifest.Entry{
		Name:  name,
		Type:  spec.Type.String(),
		Error: err.Error(),
	}
}
