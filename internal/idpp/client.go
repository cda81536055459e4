// Package idpp wraps the external image-dependent pair-potential solver
// used for the improved interpolation of elastic-band initial guesses. Its
// numerics live in the external binary; this client only shells out with
// the fixed convergence parameters and confirms the produced image set.
package idpp

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

var commandContext = exec.CommandContext

// Client defines interpolation behaviour.
type Client interface {
	Interpolate(ctx context.Context, initial, final string, images int, outputDir string) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the idpp command-line solver.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "idpp"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Interpolate runs the solver between two endpoint structure files and
// verifies it produced every image directory, endpoints included.
func (c *CLI) Interpolate(ctx context.Context, initial, final string, images int, outputDir string) error {
	if initial == "" || final == "" {
		return fmt.Errorf("idpp: endpoint paths required")
	}
	if images < 1 {
		return fmt.Errorf("idpp: image count must be positive, got %d", images)
	}

	args := []string{
		"--initial", initial,
		"--final", final,
		"--images", fmt.Sprintf("%d", images),
		"--maxiter", "5000",
		"--tol", "1e-5",
		"--gtol", "1e-3",
		"--step-size", "0.05",
		"--max-disp", "0.05",
		"--spring", "5.0",
		"--output", outputDir,
	}
	cmd := commandContext(ctx, c.binary, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("idpp: run %s: %w: %s", c.binary, err, string(out))
	}

	for i := 0; i <= images+1; i++ {
		path := filepath.Join(outputDir, fmt.Sprintf("%02d", i), "POSCAR")
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("idpp: solver did not produce %s: %w", path, err)
		}
	}
	return nil
}
