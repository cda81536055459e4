// Package testsupport provides shared fixtures for package tests: isolated
// configurations and on-disk potential databases.
package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"vaspflow/internal/config"
)

// Config returns a validated configuration rooted in temporary directories.
func Config(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.PotentialDir = filepath.Join(base, "pot")
	cfg.Paths.TemplateDir = filepath.Join(base, "templates")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	return cfg
}

// WritePotential adds one element's block to the on-disk potential database.
func WritePotential(t *testing.T, potdir, set, element string, valence float64) {
	t.Helper()
	dir := filepath.Join(potdir, set, element)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	block := fmt.Sprintf(" PAW %s\n   POMASS =   1.000; ZVAL   =   %.3f    mass and valenz\nEnd of Dataset\n", element, valence)
	if err := os.WriteFile(filepath.Join(dir, "POTCAR"), []byte(block), 0o644); err != nil {
		t.Fatalf("write potential block: %v", err)
	}
}
