package calc

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"vaspflow/internal/config"
	"vaspflow/internal/idpp"
	"vaspflow/internal/kmesh"
	"vaspflow/internal/params"
	"vaspflow/internal/potential"
	"vaspflow/internal/structure"
	"vaspflow/internal/submit"
	"vaspflow/internal/template"
)

// Artifact file names written into the working directory.
const (
	StructureArtifact = "POSCAR"
	RelaxedArtifact   = "CONTCAR"
	ParamsArtifact    = "INCAR"
	KMeshArtifact     = "KPOINTS"
	PotentialArtifact = "POTCAR"
	ScriptArtifact    = "submit.script"
	ConstraintFile    = "fort.188"

	lowParamsArtifact = "INCAR_low"
	lowKMeshArtifact  = "KPOINTS_low"
)

// ModelExtension is the recognized structural-model input extension.
const ModelExtension = ".vasp"

// Pipeline executes the shared generation sequence. One Pipeline serves one
// invocation; nothing persists across calls beyond the artifacts on disk.
type Pipeline struct {
	cfg      *config.Config
	log      *slog.Logger
	workdir  string
	resolver *template.Resolver
	solver   idpp.Client
	paths    kmesh.PathProvider
}

// PipelineOption adjusts pipeline construction.
type PipelineOption func(*Pipeline)

// WithSolver replaces the external interpolation solver client.
func WithSolver(client idpp.Client) PipelineOption {
	return func(p *Pipeline) {
		if client != nil {
			p.solver = client
		}
	}
}

// WithPathProvider replaces the band-path provider.
func WithPathProvider(provider kmesh.PathProvider) PipelineOption {
	return func(p *Pipeline) {
		if provider != nil {
			p.paths = provider
		}
	}
}

// NewPipeline builds a pipeline rooted at workdir. Built-in templates are
// materialized under the configured template directory; override templates
// found in workdir or its ancestors win over them.
func NewPipeline(cfg *config.Config, log *slog.Logger, workdir string, opts ...PipelineOption) (*Pipeline, error) {
	defaults, err := template.Materialize(cfg.Paths.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("materialize templates: %w", err)
	}
	p := &Pipeline{
		cfg:      cfg,
		log:      log,
		workdir:  workdir,
		resolver: template.NewResolver(template.AncestorChain(workdir), defaults),
		solver:   idpp.NewCLI(idpp.WithBinary(cfg.NEB.Solver)),
		paths:    kmesh.CubicPath{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// SummaryRow is one element's line in the generation summary.
type SummaryRow struct {
	Element   string
	Total     int
	Relaxed   int
	Potential string
	Orbital   string
	U         string
}

// Result collects everything one generation run produced, for callers that
// render summaries or chain follow-up stages.
type Result struct {
	Variant   Variant
	Structure *structure.Structure
	Params    *params.Set
	Mesh      kmesh.Mesh
	Potential *potential.File
	Script    *submit.Script
	RunID     string
	Summary   []SummaryRow
	Overlaps  []ImageOverlap
}

// Generate runs the fixed state sequence for every variant except NEB,
// whose multi-image path generation lives in GenerateNEB.
func (p *Pipeline) Generate(ctx context.Context, v Variant, f Flags) (*Result, error) {
	if v == NEB {
		return nil, Wrap(nil, "generate", "elastic-band generation requires endpoint structures", nil)
	}
	f = p.normalizeFlags(f)

	st, carried, hasCarried, err := p.resolveStructure(f)
	if err != nil {
		return nil, err
	}
	if err := st.Write(p.path(StructureArtifact)); err != nil {
		return nil, Wrap(nil, "write-structural-artifact", "", err)
	}

	mesh, err := p.computeMesh(v, f, st.Lattice)
	if err != nil {
		return nil, err
	}
	if err := mesh.Write(p.path(KMeshArtifact)); err != nil {
		return nil, Wrap(nil, "compute-k-mesh", "", err)
	}
	if v == Opt && f.Low {
		if err := kmesh.Gamma().Write(p.path(lowKMeshArtifact)); err != nil {
			return nil, Wrap(nil, "compute-k-mesh", "low pass", err)
		}
	}

	pot, err := p.resolvePotential(st)
	if err != nil {
		return nil, err
	}

	set, err := p.buildParams(v, f, st, pot, carried, hasCarried)
	if err != nil {
		return nil, err
	}
	if err := set.Write(p.path(ParamsArtifact)); err != nil {
		return nil, Wrap(nil, "build-parameter-artifact", "", err)
	}
	if v == Opt && f.Low {
		low := set.Clone()
		low.Set("ENCUT", params.Float(p.cfg.Generate.LowCutoff))
		low.Set("PREC", params.String("Low"))
		if err := low.Write(p.path(lowParamsArtifact)); err != nil {
			return nil, Wrap(nil, "build-parameter-artifact", "low pass", err)
		}
	}

	if err := p.variantPostStep(v, st); err != nil {
		return nil, err
	}

	script, runID, err := p.buildScript(v, f)
	if err != nil {
		return nil, err
	}
	if err := script.Write(p.path(ScriptArtifact)); err != nil {
		return nil, Wrap(nil, "build-submit-script", "", err)
	}

	result := &Result{
		Variant:   v,
		Structure: st,
		Params:    set,
		Mesh:      mesh,
		Potential: pot,
		Script:    script,
		RunID:     runID,
		Summary:   p.summarize(st, pot, set),
	}
	p.log.Info("generation complete", "variant", v.String(), "run_id", runID)
	return result, nil
}

func (p *Pipeline) normalizeFlags(f Flags) Flags {
	if f.Images < 1 {
		f.Images = p.cfg.NEB.Images
	}
	if f.Spring == 0 {
		f.Spring = p.cfg.NEB.Spring
	}
	if strings.TrimSpace(f.Method) == "" {
		f.Method = "linear"
	}
	if f.Points < 1 {
		f.Points = 20
	}
	return f
}

func (p *Pipeline) path(name string) string {
	return filepath.Join(p.workdir, name)
}

// resolveStructure loads the run's structure: the unique structural model in
// the working directory, or, for continuous runs, the most recent relaxed
// output plus any spin recorded in the previous parameter artifact.
func (p *Pipeline) resolveStructure(f Flags) (*structure.Structure, params.Value, bool, error) {
	var carried params.Value
	if f.Continuous {
		st, err := structure.Load(p.path(RelaxedArtifact))
		if err != nil {
			return nil, carried, false, Wrap(nil, "resolve-structure", "continuous run needs a relaxed-structure output", err)
		}
		hasCarried := false
		if prev, err := params.Load(p.path(ParamsArtifact)); err == nil {
			if magmom, ok := prev.Get("MAGMOM"); ok {
				carried = magmom
				hasCarried = true
			}
		}
		return st, carried, hasCarried, nil
	}

	model, err := DiscoverModel(p.workdir)
	if err != nil {
		return nil, carried, false, err
	}
	st, err := structure.Load(model)
	if err != nil {
		return nil, carried, false, Wrap(nil, "resolve-structure", model, err)
	}
	return st, carried, false, nil
}

// DiscoverModel finds the single structural-model file in dir. Zero matches
// or more than one are hard errors.
func DiscoverModel(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", Wrap(nil, "resolve-structure", dir, err)
	}
	var matches []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ModelExtension {
			matches = append(matches, entry.Name())
		}
	}
	switch len(matches) {
	case 0:
		return "", Wrap(ErrModelMissing, "resolve-structure", "no *"+ModelExtension+" file in "+dir, nil)
	case 1:
		return filepath.Join(dir, matches[0]), nil
	default:
		return "", Wrap(ErrModelAmbiguous, "resolve-structure",
			fmt.Sprintf("%d candidate models in %s: %s", len(matches), dir, strings.Join(matches, ", ")), nil)
	}
}

func (p *Pipeline) computeMesh(v Variant, f Flags, lat structure.Lattice) (kmesh.Mesh, error) {
	if v.Capabilities().LinePath {
		points, err := p.paths.Path(lat)
		if err != nil {
			return kmesh.Mesh{}, Wrap(nil, "compute-k-mesh", "band path", err)
		}
		return kmesh.Line(points, f.Points), nil
	}
	if f.Gamma {
		return kmesh.Gamma(), nil
	}
	return kmesh.Auto(lat), nil
}

func (p *Pipeline) resolvePotential(st *structure.Structure) (*potential.File, error) {
	elements := st.Elements()
	pot, err := potential.Concat(p.cfg.Paths.PotentialDir, []string{p.cfg.Generate.Potential}, elements)
	if err != nil {
		return nil, Wrap(nil, "resolve-potential", "", err)
	}
	if err := pot.Write(p.path(PotentialArtifact)); err != nil {
		return nil, Wrap(nil, "resolve-potential", "", err)
	}
	return pot, nil
}

// buildParams assembles the parameter artifact: template, carried spin,
// correction injection, variant table, flag overrides, then the derived
// charge offset. Strictly last-write-wins.
func (p *Pipeline) buildParams(v Variant, f Flags, st *structure.Structure, pot *potential.File, carried params.Value, hasCarried bool) (*params.Set, error) {
	set, err := params.Load(p.resolver.Resolve(template.SuffixParams))
	if err != nil {
		return nil, Wrap(nil, "build-parameter-artifact", "load template", err)
	}

	if hasCarried {
		set.Set("MAGMOM", carried)
		set.Set("ISPIN", params.Int(2))
	}

	if f.HSE {
		stripCorrections(set)
	} else {
		table, err := LoadUTable(p.resolver.Resolve(template.SuffixUTable))
		if err != nil {
			return nil, Wrap(nil, "build-parameter-artifact", "load correction table", err)
		}
		injectCorrections(set, table, st.Elements(), p.log)
	}

	if rule, ok := overrides[v]; ok {
		rule(set, f)
	}
	applyFlagOverrides(set, f, len(st.Atoms))

	if f.HasNElect {
		species := st.Species()
		counts := make([]int, len(species))
		for i, sp := range species {
			counts[i] = sp.Count
		}
		neutral, err := pot.TotalElectrons(counts)
		if err != nil {
			return nil, Wrap(nil, "build-parameter-artifact", "charge offset", err)
		}
		set.Set("NELECT", params.Float(neutral+f.NElectOffset))
	}
	return set, nil
}

func (p *Pipeline) variantPostStep(v Variant, st *structure.Structure) error {
	if v.Capabilities().RequiresConstraintPair {
		return p.writeConstraintFile(st)
	}
	return nil
}

// buildScript assembles the submission script from the resolved scheduler
// template and the run command, stamping a run id into the header.
func (p *Pipeline) buildScript(v Variant, f Flags) (*submit.Script, string, error) {
	fragments, err := p.templateFragments()
	if err != nil {
		return nil, "", err
	}
	runID := uuid.NewString()

	script := submit.New()
	if header, ok := submit.TemplateFragment(fragments, submit.FragmentHeader); ok {
		script.Append(header)
	}
	script.Append(submit.Fragment{Name: "run-id", Body: "# run-id: " + runID})
	if env, ok := submit.TemplateFragment(fragments, submit.FragmentEnvironment); ok {
		script.Append(env)
	}
	if v == Opt && f.Low {
		script.Append(submit.Fragment{Name: "low-pass", Body: p.lowPassBody()})
	}
	script.Append(submit.Fragment{Name: submit.FragmentRun, Body: p.cfg.Generate.SchedulerCommand})
	if check, ok := submit.TemplateFragment(fragments, submit.FragmentCheck); ok {
		script.Append(check)
	}
	if v == Charge && f.Analysis {
		script.Append(submit.Fragment{Name: "analysis", Body: analysisBody})
	}
	if finish, ok := submit.TemplateFragment(fragments, submit.FragmentFinish); ok {
		script.Append(finish)
	} else {
		script.Append(submit.Fragment{Name: submit.FragmentFinish, Body: "echo done"})
	}
	return script, runID, nil
}

func (p *Pipeline) templateFragments() ([]submit.Fragment, error) {
	path := p.resolver.Resolve(template.SuffixSubmit)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Wrap(nil, "build-submit-script", "load template", err)
	}
	fragments, err := submit.ParseTemplate(string(data))
	if err != nil {
		return nil, Wrap(nil, "build-submit-script", path, err)
	}
	return fragments, nil
}

func (p *Pipeline) lowPassBody() string {
	return strings.Join([]string{
		"cp " + ParamsArtifact + " " + ParamsArtifact + ".full",
		"cp " + KMeshArtifact + " " + KMeshArtifact + ".full",
		"cp " + lowParamsArtifact + " " + ParamsArtifact,
		"cp " + lowKMeshArtifact + " " + KMeshArtifact,
		p.cfg.Generate.SchedulerCommand,
		"cp " + ParamsArtifact + ".full " + ParamsArtifact,
		"cp " + KMeshArtifact + ".full " + KMeshArtifact,
		"cp " + RelaxedArtifact + " " + StructureArtifact,
	}, "\n")
}

// analysisBody is the post-run charge-partitioning and spin-summary stage
// appended when the analysis flag is set on a charge run.
const analysisBody = `chgsum.pl AECCAR0 AECCAR2
bader CHGCAR -ref CHGCAR_sum
chgsplit.sh CHGCAR`

func (p *Pipeline) summarize(st *structure.Structure, pot *potential.File, set *params.Set) []SummaryRow {
	orbitals := set.GetOr("LDAUL", params.Value{}).List()
	us := set.GetOr("LDAUU", params.Value{}).List()
	js := set.GetOr("LDAUJ", params.Value{}).List()

	species := st.Species()
	rows := make([]SummaryRow, 0, len(species))
	index := 0
	for i, sp := range species {
		relaxed := 0
		for _, atom := range st.Atoms[index : index+sp.Count] {
			if atom.Selective[0] && atom.Selective[1] && atom.Selective[2] {
				relaxed++
			}
		}
		index += sp.Count

		row := SummaryRow{
			Element: sp.Element,
			Total:   sp.Count,
			Relaxed: relaxed,
			Orbital: "-",
			U:       "-",
		}
		if i < len(pot.Entries) {
			row.Potential = pot.Entries[i].Potential
		}
		if i < len(orbitals) && i < len(us) && i < len(js) {
			row.Orbital = orbitals[i].Format()
			row.U = fmt.Sprintf("%.2f", us[i].Float()-js[i].Float())
		}
		rows = append(rows, row)
	}
	return rows
}
