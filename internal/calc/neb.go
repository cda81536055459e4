package calc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"vaspflow/internal/kmesh"
	"vaspflow/internal/params"
	"vaspflow/internal/structure"
)

// NEBInput names the two endpoint structure files for path generation.
type NEBInput struct {
	Initial string
	Final   string
}

// ImageOverlap reports the overlaps found in one image directory.
type ImageOverlap struct {
	Dir      string
	Overlaps []structure.Overlap
}

// GenerateNEB runs the elastic-band variant: the single-structure state is
// replaced by multi-image generation between the two endpoints, followed by
// the shared k-mesh, potential, parameter, and script states.
func (p *Pipeline) GenerateNEB(ctx context.Context, input NEBInput, f Flags) (*Result, error) {
	f = p.normalizeFlags(f)
	if f.Method != "linear" && f.Method != "idpp" {
		return nil, Wrap(ErrUnsupportedMethod, "generate-images", f.Method, nil)
	}

	ini, err := structure.Load(input.Initial)
	if err != nil {
		return nil, Wrap(nil, "generate-images", input.Initial, err)
	}

	switch f.Method {
	case "linear":
		if err := p.generateLinear(ini, input, f.Images); err != nil {
			return nil, err
		}
	case "idpp":
		if err := p.solver.Interpolate(ctx, input.Initial, input.Final, f.Images, p.workdir); err != nil {
			return nil, Wrap(nil, "generate-images", "external solver", err)
		}
		p.log.Info("improved interpolation of path initial guess generated", "images", f.Images)
	}

	var report []ImageOverlap
	if f.CheckOverlap {
		report, err = p.CheckOverlap()
		if err != nil {
			return nil, err
		}
	}

	var mesh kmesh.Mesh
	if f.Gamma {
		mesh = kmesh.Gamma()
	} else {
		mesh = kmesh.Auto(ini.Lattice)
	}
	if err := mesh.Write(p.path(KMeshArtifact)); err != nil {
		return nil, Wrap(nil, "compute-k-mesh", "", err)
	}

	pot, err := p.resolvePotential(ini)
	if err != nil {
		return nil, err
	}

	set, err := p.buildParams(NEB, f, ini, pot, params.Value{}, false)
	if err != nil {
		return nil, err
	}
	if err := set.Write(p.path(ParamsArtifact)); err != nil {
		return nil, Wrap(nil, "build-parameter-artifact", "", err)
	}

	script, runID, err := p.buildScript(NEB, f)
	if err != nil {
		return nil, err
	}
	if err := script.Write(p.path(ScriptArtifact)); err != nil {
		return nil, Wrap(nil, "build-submit-script", "", err)
	}

	result := &Result{
		Variant:   NEB,
		Structure: ini,
		Params:    set,
		Mesh:      mesh,
		Potential: pot,
		Script:    script,
		RunID:     runID,
		Summary:   p.summarize(ini, pot, set),
		Overlaps:  report,
	}
	p.log.Info("generation complete", "variant", NEB.String(), "run_id", runID, "images", f.Images)
	return result, nil
}

// generateLinear interpolates interior images on the straight cartesian
// path between the endpoints. Endpoint compatibility is checked before any
// directory is created.
func (p *Pipeline) generateLinear(ini *structure.Structure, input NEBInput, images int) error {
	fin, err := structure.Load(input.Final)
	if err != nil {
		return Wrap(nil, "generate-images", input.Final, err)
	}
	if !ini.SameComposition(fin) {
		return Wrap(ErrCompositionMismatch, "generate-images",
			fmt.Sprintf("%s and %s", input.Initial, input.Final), nil)
	}

	if err := p.writeImage(0, ini); err != nil {
		return err
	}
	if err := p.writeImage(images+1, fin); err != nil {
		return err
	}

	for k := 1; k <= images; k++ {
		img := ini.Copy()
		for i := range img.Atoms {
			for j := 0; j < 3; j++ {
				delta := (fin.Atoms[i].Cart[j] - ini.Atoms[i].Cart[j]) / float64(images+1)
				img.Atoms[i].Cart[j] = ini.Atoms[i].Cart[j] + delta*float64(k)
			}
		}
		if err := img.RebuildFractional(); err != nil {
			return Wrap(nil, "generate-images", fmt.Sprintf("image %02d", k), err)
		}
		if err := p.writeImage(k, img); err != nil {
			return err
		}
	}
	p.log.Info("linear interpolation of path initial guess generated", "images", images)
	return nil
}

func (p *Pipeline) writeImage(index int, st *structure.Structure) error {
	dir := p.path(fmt.Sprintf("%02d", index))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Wrap(nil, "generate-images", dir, err)
	}
	if err := st.Write(filepath.Join(dir, StructureArtifact)); err != nil {
		return Wrap(nil, "generate-images", dir, err)
	}
	return nil
}

// ImageDirs returns every numerically-named image directory under the
// working directory, sorted by index.
func (p *Pipeline) ImageDirs() ([]string, error) {
	entries, err := os.ReadDir(p.workdir)
	if err != nil {
		return nil, Wrap(nil, "discover-images", p.workdir, err)
	}
	var dirs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := strconv.Atoi(entry.Name()); err != nil {
			continue
		}
		dirs = append(dirs, entry.Name())
	}
	sort.Slice(dirs, func(i, j int) bool {
		a, _ := strconv.Atoi(dirs[i])
		b, _ := strconv.Atoi(dirs[j])
		return a < b
	})
	return dirs, nil
}

// CheckOverlap revalidates every image directory present, not only those
// just generated. Violations are reported per image; geometry is never
// modified.
func (p *Pipeline) CheckOverlap() ([]ImageOverlap, error) {
	p.log.Info("checking image structures for overlap")
	dirs, err := p.ImageDirs()
	if err != nil {
		return nil, err
	}
	var report []ImageOverlap
	for _, dir := range dirs {
		st, err := structure.Load(filepath.Join(p.workdir, dir, StructureArtifact))
		if err != nil {
			return nil, Wrap(nil, "check-overlap", dir, err)
		}
		overlaps := st.Overlaps(p.cfg.Generate.MinimumDistance)
		for _, o := range overlaps {
			p.log.Warn("atoms overlap",
				"image", dir, "pair", fmt.Sprintf("%d-%d", o.I+1, o.J+1),
				"distance", fmt.Sprintf("%.4f", o.Distance))
		}
		if len(overlaps) > 0 {
			report = append(report, ImageOverlap{Dir: dir, Overlaps: overlaps})
		}
	}
	if len(report) == 0 {
		p.log.Info("no overlapping atoms in any image")
	}
	return report, nil
}
