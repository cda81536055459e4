// Package config loads and validates the invocation-scoped settings file.
// A Config is constructed once per invocation and passed explicitly to
// every component that needs it; there is no package-level mutable state.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	PotentialDir string `toml:"potential_dir"`
	TemplateDir  string `toml:"template_dir"`
}

// Generate contains pipeline generation settings.
type Generate struct {
	Potential        string  `toml:"potential"`
	SchedulerCommand string  `toml:"scheduler_command"`
	MinimumDistance  float64 `toml:"minimum_distance"`
	LowCutoff        float64 `toml:"low_cutoff"`
}

// NEB contains image-path generation settings.
type NEB struct {
	Images int     `toml:"images"`
	Spring float64 `toml:"spring"`
	Solver string  `toml:"solver"`
}

// Logging contains logger settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root settings object.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Generate Generate `toml:"generate"`
	NEB      NEB      `toml:"neb"`
	Logging  Logging  `toml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Paths: Paths{
			PotentialDir: "~/.config/vaspflow/pot",
			TemplateDir:  "~/.config/vaspflow/templates",
		},
		Generate: Generate{
			Potential:        "PAW_PBE",
			SchedulerCommand: "mpirun vasp_std > vasp.out 2>&1",
			MinimumDistance:  0.8,
			LowCutoff:        300,
		},
		NEB: NEB{
			Images: 4,
			Spring: -5.0,
			Solver: "idpp",
		},
		Logging: Logging{Level: "info", Format: "console"},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	return filepath.Join(configHome(), "vaspflow", "config.toml")
}

// Load reads the config at path, or the default location when path is
// empty. A missing file yields the defaults; exists reports whether a file
// was read.
func Load(path string) (cfg *Config, resolved string, exists bool, err error) {
	resolved = strings.TrimSpace(path)
	if resolved == "" {
		resolved = DefaultPath()
	}
	resolved = expandHome(resolved)

	cfg = Default()
	data, err := os.ReadFile(resolved)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, resolved, true, fmt.Errorf("parse %s: %w", resolved, err)
		}
		exists = true
	case errors.Is(err, fs.ErrNotExist):
		exists = false
	default:
		return nil, resolved, false, fmt.Errorf("read %s: %w", resolved, err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, resolved, exists, err
	}
	return cfg, resolved, exists, nil
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}

// Validate rejects settings that cannot drive a generation run.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Generate.Potential) == "" {
		return errors.New("config: generate.potential must be set")
	}
	if strings.TrimSpace(c.Generate.SchedulerCommand) == "" {
		return errors.New("config: generate.scheduler_command must be set")
	}
	if c.Generate.MinimumDistance <= 0 {
		return fmt.Errorf("config: generate.minimum_distance must be positive, got %g", c.Generate.MinimumDistance)
	}
	if c.Generate.LowCutoff <= 0 {
		return fmt.Errorf("config: generate.low_cutoff must be positive, got %g", c.Generate.LowCutoff)
	}
	if c.NEB.Images < 1 {
		return fmt.Errorf("config: neb.images must be at least 1, got %d", c.NEB.Images)
	}
	return nil
}

func (c *Config) normalize() {
	c.Paths.PotentialDir = expandHome(strings.TrimSpace(c.Paths.PotentialDir))
	c.Paths.TemplateDir = expandHome(strings.TrimSpace(c.Paths.TemplateDir))
	c.Generate.Potential = strings.TrimSpace(c.Generate.Potential)
	c.Logging.Level = strings.TrimSpace(c.Logging.Level)
	c.Logging.Format = strings.TrimSpace(c.Logging.Format)
}

func configHome() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}
