package calc

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"vaspflow/internal/outcar"
	"vaspflow/internal/structure"
)

// ImageStatus is one monitor row: tangent, energy, and barrier relative to
// the lowest-index image.
type ImageStatus struct {
	Dir     string
	Tangent float64
	Energy  float64
	Barrier float64
}

// Monitor reads every image's completed-run output and reports energies and
// barriers against the zero-index reference.
func (p *Pipeline) Monitor() ([]ImageStatus, error) {
	dirs, err := p.ImageDirs()
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		return nil, Wrap(nil, "monitor", "no image directories in "+p.workdir, nil)
	}

	reference := 0.0
	out := make([]ImageStatus, 0, len(dirs))
	for i, dir := range dirs {
		summary, err := outcar.Read(filepath.Join(p.workdir, dir, "OUTCAR"))
		if err != nil {
			return nil, Wrap(nil, "monitor", dir, err)
		}
		if i == 0 {
			reference = summary.LastEnergy
		}
		out = append(out, ImageStatus{
			Dir:     dir,
			Tangent: summary.LastTangent,
			Energy:  summary.LastEnergy,
			Barrier: summary.LastEnergy - reference,
		})
	}
	return out, nil
}

// Movie renders the current path into a trajectory archive, preferring each
// image's relaxed output over its initial guess.
func (p *Pipeline) Movie(name string) error {
	dirs, err := p.ImageDirs()
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		return Wrap(nil, "movie", "no image directories in "+p.workdir, nil)
	}
	frames := make([]*structure.Structure, 0, len(dirs))
	for _, dir := range dirs {
		path := filepath.Join(p.workdir, dir, RelaxedArtifact)
		if _, err := os.Stat(path); err != nil {
			path = filepath.Join(p.workdir, dir, StructureArtifact)
		}
		st, err := structure.Load(path)
		if err != nil {
			return Wrap(nil, "movie", dir, err)
		}
		frames = append(frames, st)
	}
	if err := structure.WriteARC(p.path(name), frames); err != nil {
		return Wrap(nil, "movie", "", err)
	}
	p.log.Info("trajectory archive written", "name", name, "frames", len(frames))
	return nil
}

// SortEndpoints reorders the final endpoint's atoms so each one pairs with
// its nearest same-element counterpart in the initial endpoint, writing the
// result next to the original with a _sorted suffix. Interpolating between
// carelessly ordered endpoints produces crossing trajectories; sorting
// first avoids that.
func (p *Pipeline) SortEndpoints(initial, final string) (string, error) {
	ini, err := structure.Load(initial)
	if err != nil {
		return "", Wrap(nil, "sort", initial, err)
	}
	fin, err := structure.Load(final)
	if err != nil {
		return "", Wrap(nil, "sort", final, err)
	}
	if len(ini.Atoms) != len(fin.Atoms) {
		return "", Wrap(ErrCompositionMismatch, "sort",
			fmt.Sprintf("%d atoms vs %d atoms", len(ini.Atoms), len(fin.Atoms)), nil)
	}

	used := make([]bool, len(fin.Atoms))
	sorted := fin.Copy()
	for i, ref := range ini.Atoms {
		bestJ := -1
		bestD := math.Inf(1)
		for j, cand := range fin.Atoms {
			if used[j] || cand.Element != ref.Element {
				continue
			}
			if d := structure.Distance(ref, cand, ini.Lattice); d < bestD {
				bestD = d
				bestJ = j
			}
		}
		if bestJ < 0 {
			return "", Wrap(ErrCompositionMismatch, "sort", "element "+ref.Element, nil)
		}
		used[bestJ] = true
		sorted.Atoms[i] = fin.Atoms[bestJ]
	}

	out := final + "_sorted"
	if err := sorted.Write(out); err != nil {
		return "", Wrap(nil, "sort", out, err)
	}
	p.log.Info("endpoint atom order aligned", "output", out)
	return out, nil
}
