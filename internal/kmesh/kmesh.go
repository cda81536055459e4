// Package kmesh derives and serializes reciprocal-space sampling: automatic
// Gamma-centered grids, forced single-point meshes, and explicit line-mode
// paths for band-structure runs.
package kmesh

import (
	"fmt"
	"math"
	"os"
	"strings"

	"vaspflow/internal/structure"
)

// Mode selects the sampling scheme.
type Mode int

const (
	// ModeAuto is an automatic Gamma-centered grid sized from the lattice.
	ModeAuto Mode = iota
	// ModeGamma forces a single-point 1x1x1 grid.
	ModeGamma
	// ModeLine is an explicit labeled path through reciprocal space.
	ModeLine
)

// PathPoint is one labeled endpoint on a line-mode path. Consecutive pairs
// form the sampled segments.
type PathPoint struct {
	Label string
	Coord [3]float64
}

// Mesh is an immutable k-point specification.
type Mesh struct {
	Mode    Mode
	Grid    [3]int
	Points  []PathPoint
	Density int
}

// AutoGrid sizes a Gamma-centered grid from the cell lengths: each axis gets
// ceil(30/length) points, never fewer than one.
func AutoGrid(lat structure.Lattice) [3]int {
	lengths := lat.Lengths()
	var grid [3]int
	for i := 0; i < 3; i++ {
		n := int(math.Ceil(30 / lengths[i]))
		if n < 1 {
			n = 1
		}
		grid[i] = n
	}
	return grid
}

// Auto builds an automatic mesh for the lattice.
func Auto(lat structure.Lattice) Mesh {
	return Mesh{Mode: ModeAuto, Grid: AutoGrid(lat)}
}

// Gamma builds the forced single-point mesh.
func Gamma() Mesh {
	return Mesh{Mode: ModeGamma, Grid: [3]int{1, 1, 1}}
}

// Line builds a line-mode path with the given per-segment density.
func Line(points []PathPoint, density int) Mesh {
	if density < 1 {
		density = 20
	}
	return Mesh{Mode: ModeLine, Points: points, Density: density}
}

// Render produces the k-point artifact text.
func (m Mesh) Render() string {
	var b strings.Builder
	b.WriteString("AutoGenerated\n")
	if m.Mode == ModeLine {
		fmt.Fprintf(&b, "%d\n", m.Density)
		b.WriteString("Line-mode\nRec\n")
		for i := 0; i+1 < len(m.Points); i++ {
			writePoint(&b, m.Points[i])
			writePoint(&b, m.Points[i+1])
			if i+2 < len(m.Points) {
				b.WriteString("\n")
			}
		}
		return b.String()
	}
	b.WriteString("0\nGamma\n")
	fmt.Fprintf(&b, "%d %d %d\n", m.Grid[0], m.Grid[1], m.Grid[2])
	b.WriteString("0 0 0\n")
	return b.String()
}

func writePoint(b *strings.Builder, p PathPoint) {
	fmt.Fprintf(b, "%.8f %.8f %.8f ! %s\n", p.Coord[0], p.Coord[1], p.Coord[2], p.Label)
}

// Write serializes the mesh to path.
func (m Mesh) Write(path string) error {
	return os.WriteFile(path, []byte(m.Render()), 0o644)
}
