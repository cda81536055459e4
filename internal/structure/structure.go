package structure

import (
	"fmt"
	"math"
)

// Atom is one site in a structure. Frac and Cart are kept in sync by the
// codec and by RebuildFractional; Selective flags follow the POSCAR
// convention where true means the axis is free to relax.
type Atom struct {
	Element   string
	Frac      [3]float64
	Cart      [3]float64
	Selective [3]bool
}

// Constrained reports whether the atom is pinned on every axis. The
// constrained transition-state task identifies its atom pair this way.
func (a Atom) Constrained() bool {
	return !a.Selective[0] && !a.Selective[1] && !a.Selective[2]
}

// Structure is an immutable-by-convention snapshot of a cell: rebuilds go
// through Copy plus RebuildFractional rather than in-place edits.
type Structure struct {
	Comment   string
	Lattice   Lattice
	Atoms     []Atom
	Selective bool
}

// ElementCount pairs an element label with its contiguous atom count.
type ElementCount struct {
	Element string
	Count   int
}

// Species returns the element labels and counts in atom order.
func (s *Structure) Species() []ElementCount {
	var out []ElementCount
	for _, atom := range s.Atoms {
		if n := len(out); n > 0 && out[n-1].Element == atom.Element {
			out[n-1].Count++
			continue
		}
		out = append(out, ElementCount{Element: atom.Element, Count: 1})
	}
	return out
}

// Elements returns the distinct element labels in atom order.
func (s *Structure) Elements() []string {
	species := s.Species()
	out := make([]string, len(species))
	for i, sp := range species {
		out[i] = sp.Element
	}
	return out
}

// SameComposition reports whether two structures hold the same elements with
// the same counts in the same order. Coordinates are not compared; this is
// the compatibility contract for interpolation endpoints.
func (s *Structure) SameComposition(other *Structure) bool {
	if other == nil || len(s.Atoms) != len(other.Atoms) {
		return false
	}
	for i := range s.Atoms {
		if s.Atoms[i].Element != other.Atoms[i].Element {
			return false
		}
	}
	return true
}

// Copy returns a deep copy.
func (s *Structure) Copy() *Structure {
	out := &Structure{
		Comment:   s.Comment,
		Lattice:   s.Lattice,
		Selective: s.Selective,
	}
	out.Atoms = make([]Atom, len(s.Atoms))
	copy(out.Atoms, s.Atoms)
	return out
}

// RebuildFractional re-derives every fractional coordinate from the current
// cartesian ones under the structure's lattice.
func (s *Structure) RebuildFractional() error {
	for i := range s.Atoms {
		frac, err := s.Lattice.Frac(s.Atoms[i].Cart)
		if err != nil {
			return fmt.Errorf("atom %d: %w", i, err)
		}
		s.Atoms[i].Frac = frac
	}
	return nil
}

// Distance computes the minimum-image distance between two atoms under the
// given lattice.
func Distance(a, b Atom, lat Lattice) float64 {
	best := math.Inf(1)
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			for dk := -1; dk <= 1; dk++ {
				frac := [3]float64{
					b.Frac[0] - a.Frac[0] + float64(di),
					b.Frac[1] - a.Frac[1] + float64(dj),
					b.Frac[2] - a.Frac[2] + float64(dk),
				}
				cart := lat.Cart(frac)
				d := math.Sqrt(cart[0]*cart[0] + cart[1]*cart[1] + cart[2]*cart[2])
				if d < best {
					best = d
				}
			}
		}
	}
	return best
}

// Overlap records one atom pair closer than the allowed minimum.
type Overlap struct {
	I, J     int
	Distance float64
}

// Overlaps returns every atom pair closer than min angstrom. The structure
// is never modified.
func (s *Structure) Overlaps(min float64) []Overlap {
	var out []Overlap
	for i := 0; i < len(s.Atoms); i++ {
		for j := i + 1; j < len(s.Atoms); j++ {
			if d := Distance(s.Atoms[i], s.Atoms[j], s.Lattice); d < min {
				out = append(out, Overlap{I: i, J: j, Distance: d})
			}
		}
	}
	return out
}
