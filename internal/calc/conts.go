package calc

import (
	"fmt"
	"os"

	"vaspflow/internal/structure"
)

// writeConstraintFile records the constrained atom pair and their current
// separation for the constrained transition-state search. Exactly two atoms
// must be pinned on all axes.
func (p *Pipeline) writeConstraintFile(st *structure.Structure) error {
	var pair []int
	for i, atom := range st.Atoms {
		if atom.Constrained() {
			pair = append(pair, i)
		}
	}
	if len(pair) != 2 {
		return Wrap(ErrConstraintCount, "variant-post-step",
			fmt.Sprintf("need exactly 2 constrained atoms, found %d", len(pair)), nil)
	}

	distance := structure.Distance(st.Atoms[pair[0]], st.Atoms[pair[1]], st.Lattice)
	body := fmt.Sprintf("1\n3\n6\n3\n0.03\n%d %d %.4f\n0\n", pair[0]+1, pair[1]+1, distance)
	if err := os.WriteFile(p.path(ConstraintFile), []byte(body), 0o644); err != nil {
		return Wrap(nil, "variant-post-step", ConstraintFile, err)
	}
	p.log.Info("constraint pair recorded",
		"atoms", fmt.Sprintf("%d-%d", pair[0]+1, pair[1]+1),
		"distance", fmt.Sprintf("%.4f", distance))
	return nil
}
