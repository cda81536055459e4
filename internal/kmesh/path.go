package kmesh

import "vaspflow/internal/structure"

// PathProvider discovers a labeled high-symmetry path for a lattice.
// Symmetry analysis proper lives outside this module; callers may plug in a
// provider backed by a real symmetry engine.
type PathProvider interface {
	Path(lat structure.Lattice) ([]PathPoint, error)
}

// CubicPath is the default provider: the standard simple-cubic circuit
// GAMMA-X-M-GAMMA-R. It ignores the lattice metric.
type CubicPath struct{}

// Path returns the fixed circuit.
func (CubicPath) Path(structure.Lattice) ([]PathPoint, error) {
	return []PathPoint{
		{Label: "GAMMA", Coord: [3]float64{0, 0, 0}},
		{Label: "X", Coord: [3]float64{0.5, 0, 0}},
		{Label: "M", Coord: [3]float64{0.5, 0.5, 0}},
		{Label: "GAMMA", Coord: [3]float64{0, 0, 0}},
		{Label: "R", Coord: [3]float64{0.5, 0.5, 0.5}},
	}, nil
}
