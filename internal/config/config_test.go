package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"vaspflow/internal/config"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("exists = true for missing file")
	}
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Generate.Potential != "PAW_PBE" {
		t.Fatalf("default potential = %q", cfg.Generate.Potential)
	}
	if cfg.NEB.Images != 4 {
		t.Fatalf("default images = %d", cfg.NEB.Images)
	}
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `[generate]
potential = "PAW_LDA"

[neb]
images = 7
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("exists = false for present file")
	}
	if cfg.Generate.Potential != "PAW_LDA" {
		t.Fatalf("potential = %q", cfg.Generate.Potential)
	}
	if cfg.NEB.Images != 7 {
		t.Fatalf("images = %d", cfg.NEB.Images)
	}
	if cfg.Generate.MinimumDistance != 0.8 {
		t.Fatalf("minimum_distance lost default: %g", cfg.Generate.MinimumDistance)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("generate = [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("malformed config accepted")
	}
}

func TestValidateRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"empty potential", func(c *config.Config) { c.Generate.Potential = " " }},
		{"empty scheduler command", func(c *config.Config) { c.Generate.SchedulerCommand = "" }},
		{"zero minimum distance", func(c *config.Config) { c.Generate.MinimumDistance = 0 }},
		{"zero low cutoff", func(c *config.Config) { c.Generate.LowCutoff = 0 }},
		{"zero images", func(c *config.Config) { c.NEB.Images = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("invalid config accepted")
			}
		})
	}
}

func TestSampleParsesAndValidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(config.Sample()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config rejected: %v", err)
	}
}

func TestDefaultPathHonorsXDGConfigHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	want := filepath.Join(dir, "vaspflow", "config.toml")
	if got := config.DefaultPath(); got != want {
		t.Fatalf("DefaultPath = %q, want %q", got, want)
	}
}
