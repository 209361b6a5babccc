package config

import "flag"

var (
	flagConfig      = flag.String("config", "", "Path to config file")
	flagSaveConfig  = flag.String("save-config", "", "Write the effective config to this path")
	flagDebug       = flag.Bool("debug", false, "Enable debug logging")
	flagType        = flag.String("type", "", "Asset type: cube, sphere, cylinder, terrain, tree, building or pack")
	flagName        = flag.String("name", "", "Name of the generated asset (file stem)")
	flagSize        = flag.Float64("size", 0, "Size parameter of the asset")
	flagOutput      = flag.String("output", "", "Output directory")
	flagSeed        = flag.Int64("seed", 0, "Noise seed for terrain and textures")
	flagScale       = flag.Float64("scale", 0, "Uniform scale written to the asset node")
	flagWorkers     = flag.Int("workers", 0, "Concurrent assets in pack mode (default: one per CPU)")
	flagTextureSize = flag.Int("texture-size", 0, "Base color texture size (default: per type)")
	flagLogFile     = flag.String("log-file", "", "Write logs to this file as well")
)

// shorthands maps short flag names to the flag they alias.
var shorthands = map[string]string{
	"t": "type",
	"n": "name",
	"s": "size",
	"o": "output",
}

// given records flags present on the command line. Flags whose zero value
// is meaningful are applied only when given.
var given = map[string]bool{}

func init() {
	flag.StringVar(flagType, "t", "", "Shorthand for -type")
	flag.StringVar(flagName, "n", "", "Shorthand for -name")
	flag.Float64Var(flagSize, "s", 0, "Shorthand for -size")
	flag.StringVar(flagOutput, "o", "", "Shorthand for -output")
}

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
	flag.Visit(func(f *flag.Flag) {
		if long, ok := shorthands[f.Name]; ok {
			given[long] = true
			return
		}
		given[f.Name] = true
	})
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveConfigPath returns where the effective config should be written, if anywhere.
func SaveConfigPath() string {
	return *flagSaveConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagType != "" {
		cfg.Generation.Type = *flagType
	}
	if *flagName != "" {
		cfg.Generation.Name = *flagName
	}
	if *flagSize != 0 || given["size"] {
		cfg.Generation.Size = float32(*flagSize)
	}
	if *flagOutput != "" {
		cfg.Output.Dir = *flagOutput
	}
	if given["seed"] {
		cfg.Generation.Seed = *flagSeed
	}
	if *flagScale != 0 {
		cfg.Generation.Scale = float32(*flagScale)
	}
	if *flagWorkers != 0 {
		cfg.Generation.Workers = *flagWorkers
	}
	if *flagTextureSize != 0 {
		cfg.Generation.TextureSize = *flagTextureSize
	}
	if *flagLogFile != "" {
		cfg.Logging.LogFile = *flagLogFile
	}
}
