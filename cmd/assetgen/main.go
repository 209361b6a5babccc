// assetgen generates procedural 3D game assets as binary glTF (GLB) files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/assetgen/internal/config"
	"github.com/Faultbox/assetgen/internal/logger"
	"github.com/Faultbox/assetgen/internal/pack"
	"github.com/Faultbox/assetgen/pkg/glb"
	"github.com/Faultbox/assetgen/pkg/manifest"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "inspect", "info":
			os.Exit(cmdInspect(os.Args[2:]))
		case "help", "-h", "--help":
			printUsage()
			return
		}
	}
	os.Exit(cmdGenerate())
}

func printUsage() {
	fmt.Println(`assetgen - procedural GLB asset generator

Usage:
  assetgen [flags]                   Generate one asset or the whole pack
  assetgen inspect <file.glb>...     Show statistics of generated files

Flags:
  -type, -t <type>      cube, sphere, cylinder, terrain, tree, building or pack (default pack)
  -name, -n <name>      File stem of a single asset (default asset)
  -size, -s <size>      Size parameter, must be positive (default 1.0)
  -output, -o <dir>     Output directory, created if absent (default assets)
  -seed <n>             Noise seed for terrain and textures
  -scale <f>            Uniform scale written to the asset node
  -workers <n>          Concurrent assets in pack mode (default one per CPU)
  -texture-size <n>     Base color texture size (default per type)
  -config <path>        Config file (default: assetgen.yaml in -output or the current directory)
  -save-config <path>   Write the effective config as YAML
  -log-file <path>      Also write logs to this file
  -debug                Enable debug logging

Examples:
  assetgen
  assetgen -type cube -name my_cube -size 2
  assetgen -t terrain -n valley -s 3 -seed 42 -o build
  assetgen inspect assets/tree_basic.glb`)
}

func cmdGenerate() int {
	flag.Usage = printUsage
	config.ParseFlags()
	if args := config.Args(); len(args) > 0 {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.File = cfg.Logging.LogFile
	logCfg.FileFormat = cfg.Logging.Format
	if err := logger.Init(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	if path := config.SaveConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			logger.Error("failed to save config", zap.String("path", path), zap.Error(err))
			return 1
		}
		logger.Info("config saved", zap.String("path", path))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g := pack.New(cfg.Output.Dir,
		pack.WithWorkers(cfg.Generation.Workers),
		pack.WithTextureSize(cfg.Generation.TextureSize),
		pack.WithPackInfo(cfg.Pack.Name, cfg.Pack.Description),
		pack.WithLogger(logger.L),
	)

	if cfg.Generation.Type == config.TypePack {
		return runPack(ctx, g, cfg)
	}

	spec := cfg.Spec()
	logger.Debug("generating asset",
		zap.String("name", spec.Name),
		zap.String("type", spec.Type.String()),
		zap.Float32("size", spec.Size),
		zap.Int64("seed", spec.Seed))

	entry, err := g.Generate(ctx, spec)
	if err != nil {
		logger.Error("generation failed", zap.String("name", spec.Name), zap.Error(err))
		return 1
	}
	logger.Info("asset generated",
		zap.String("file", filepath.Join(g.Dir(), entry.File)),
		zap.Int("vertices", entry.VertexCount),
		zap.Int("triangles", entry.TriangleCount),
		zap.Int("textures", entry.TextureCount))
	return 0
}

func runPack(ctx context.Context, g *pack.Generator, cfg *config.Config) int {
	res, err := g.Run(ctx, cfg.PackSpecs())
	if err != nil {
		logger.Error("pack generation failed", zap.Error(err))
		return 1
	}

	ok, failed := res.Manifest.Counts()
	for _, e := range res.Manifest.Assets {
		if e.Failed() {
			logger.Warn("asset skipped", zap.String("name", e.Name), zap.String("error", e.Error))
			continue
		}
		logger.Info("asset generated",
			zap.String("name", e.Name),
			zap.String("type", e.Type),
			zap.Int("vertices", e.VertexCount),
			zap.Int("triangles", e.TriangleCount))
	}
	logger.Info("pack summary",
		zap.Int("generated", ok),
		zap.Int("total", ok+failed),
		zap.String("manifest", g.ManifestPath()))

	if !res.OK {
		return 1
	}
	return 0
}

func cmdInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	raw := fs.Bool("json", false, "Print the JSON descriptor chunk")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: assetgen inspect [-json] <file.glb|manifest.json>...")
		return 1
	}

	status := 0
	for i, path := range fs.Args() {
		if i > 0 {
			fmt.Println()
		}
		if filepath.Base(path) == manifest.FileName {
			if err := printManifest(path); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				status = 1
			}
			continue
		}
		model, err := glb.DecodeFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			status = 1
			continue
		}
		printModel(path, model)
		if *raw {
			fmt.Printf("%s\n", model.JSON)
		}
	}
	return status
}

func printModel(path string, m *glb.Model) {
	indexType := "uint16"
	if m.IndexComponentType == glb.ComponentUnsignedInt {
		indexType = "uint32"
	}

	fmt.Printf("File:      %s (%d bytes)\n", path, m.Length)
	fmt.Printf("Name:      %s\n", m.Name)
	fmt.Printf("Generator: %s\n", m.Generator)
	fmt.Printf("Meshes:    %d\n", m.MeshCount)
	fmt.Printf("Vertices:  %d\n", m.VertexCount())
	fmt.Printf("Triangles: %d (%s indices)\n", m.TriangleCount(), indexType)
	fmt.Printf("Closed:    %v\n", m.Mesh().IsClosedManifold())
	if len(m.Positions) > 0 {
		lo, hi := m.Positions[0], m.Positions[0]
		for _, p := range m.Positions[1:] {
			for k := 0; k < 3; k++ {
				lo[k] = min(lo[k], p[k])
				hi[k] = max(hi[k], p[k])
			}
		}
		fmt.Printf("Bounds:    [%.3f %.3f %.3f] - [%.3f %.3f %.3f]\n",
			lo[0], lo[1], lo[2], hi[0], hi[1], hi[2])
	}
	if m.Scale != 1 {
		fmt.Printf("Scale:     %.3f\n", m.Scale)
	}
	fmt.Printf("Material:  roughness %.2f, metallic %.2f, normal map %v\n", m.Roughness, m.Metallic, m.HasNormal)
	for _, img := range m.Images {
		fmt.Printf("  image %-24s %s %d bytes\n", img.Name, img.MimeType, len(img.Data))
	}
}

func printManifest(path string) error {
	m, err := manifest.Read(path)
	if err != nil {
		return err
	}
	ok, failed := m.Counts()

	fmt.Printf("Manifest:  %s\n", path)
	fmt.Printf("Pack:      %s\n", m.Name)
	fmt.Printf("Format:    %s (%s)\n", m.Format, m.CreatedWith)
	fmt.Printf("Assets:    %d ok, %d failed\n", ok, failed)
	for _, e := range m.Assets {
		if e.Failed() {
			fmt.Printf("  %-16s FAILED %s\n", e.Name, e.Error)
			continue
		}
		fmt.Printf("  %-16s %-9s %6d vertices %6d triangles  %s\n",
			e.Name, e.Type, e.VertexCount, e.TriangleCount, e.File)
	}
	if failed > 0 {
		return fmt.Errorf("%d failed assets in %s", failed, path)
	}
	return nil
}
