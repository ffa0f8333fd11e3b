package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"weave/internal/pipeline"
	"weave/internal/syntax"
	"weave/internal/trace"
)

// Config is the content of weave.toml. Zero values are replaced by defaults
// in LoadConfig; flags override file values afterwards.
type Config struct {
	Project ProjectConfig `toml:"project"`
	Engine  EngineConfig  `toml:"engine"`
	Trace   TraceConfig   `toml:"trace"`
	Cache   CacheConfig   `toml:"cache"`

	// Path is where the config was loaded from; empty for defaults.
	Path string `toml:"-"`
}

// ProjectConfig names the default input files, relative to the config.
type ProjectConfig struct {
	Model string `toml:"model"`
	Plan  string `toml:"plan"`
}

type EngineConfig struct {
	LangVersion    int      `toml:"lang_version"`
	Nullability    string   `toml:"nullability"`
	MaxDiagnostics int      `toml:"max_diagnostics"`
	DesignTime     bool     `toml:"design_time"`
	Jobs           int      `toml:"jobs"`
	Header         []string `toml:"header"`
}

type TraceConfig struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Format   string `toml:"format"`
	Output   string `toml:"output"`
	RingSize int    `toml:"ring_size"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// DefaultConfig returns the configuration used when no weave.toml exists.
func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			Nullability:    "aware",
			MaxDiagnostics: 100,
		},
		Trace: TraceConfig{
			Level:    "off",
			Mode:     "stream",
			Format:   "auto",
			Output:   "-",
			RingSize: 4096,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".weave/cache",
		},
	}
}

// LoadConfig parses path on top of DefaultConfig and validates the result.
// Relative paths inside the file are resolved against its directory.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	dir := filepath.Dir(path)
	for _, p := range []*string{&cfg.Project.Model, &cfg.Project.Plan, &cfg.Cache.Dir, &cfg.Trace.Output} {
		*p = strings.TrimSpace(*p)
	}
	for _, p := range []*string{&cfg.Project.Model, &cfg.Project.Plan, &cfg.Cache.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
	if cfg.Trace.Output != "" && cfg.Trace.Output != "-" && !filepath.IsAbs(cfg.Trace.Output) {
		cfg.Trace.Output = filepath.Join(dir, cfg.Trace.Output)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Engine.LangVersion < 0 {
		return fmt.Errorf("engine.lang_version must not be negative, got %d", c.Engine.LangVersion)
	}
	if _, ok := syntax.ParseNullability(c.Engine.Nullability); !ok {
		return fmt.Errorf("engine.nullability: unknown mode %q (expected: aware|oblivious)", c.Engine.Nullability)
	}
	if c.Engine.MaxDiagnostics <= 0 {
		return fmt.Errorf("engine.max_diagnostics must be positive, got %d", c.Engine.MaxDiagnostics)
	}
	if c.Engine.Jobs < 0 {
		return fmt.Errorf("engine.jobs must not be negative, got %d", c.Engine.Jobs)
	}
	if _, err := c.TraceConfig(); err != nil {
		return err
	}
	if c.Cache.Enabled && strings.TrimSpace(c.Cache.Dir) == "" {
		return fmt.Errorf("cache.dir is required when the cache is enabled")
	}
	return nil
}

// PipelineOptions converts the engine section.
func (c Config) PipelineOptions() pipeline.Options {
	mode, _ := syntax.ParseNullability(c.Engine.Nullability)
	return pipeline.Options{
		LangVersion:    c.Engine.LangVersion,
		Mode:           mode,
		DesignTime:     c.Engine.DesignTime,
		MaxDiagnostics: c.Engine.MaxDiagnostics,
		Jobs:           c.Engine.Jobs,
		Header:         c.Engine.Header,
	}
}

// TraceConfig converts the trace section into a tracer configuration.
func (c Config) TraceConfig() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, fmt.Errorf("trace.level: %w", err)
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, fmt.Errorf("trace.mode: %w", err)
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, fmt.Errorf("trace.format: %w", err)
	}
	if c.Trace.RingSize < 0 {
		return trace.Config{}, fmt.Errorf("trace.ring_size must not be negative, got %d", c.Trace.RingSize)
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: c.Trace.Output,
		RingSize:   c.Trace.RingSize,
	}, nil
}
