package calc

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"vaspflow/internal/params"
	"vaspflow/internal/submit"
)

// ChainStage names a follow-up stage a submission script can be extended
// with.
type ChainStage string

const (
	StageCharge   ChainStage = "charge"
	StageDOS      ChainStage = "dos"
	StageWorkFunc ChainStage = "workfunc"
)

// ParamEdit is one structured mutation applied to a chained stage's
// parameter artifact. Edits are applied in order; deletion of an absent key
// is a no-op.
type ParamEdit struct {
	Key    string
	Value  params.Value
	Delete bool
}

// stageEdits lists, per terminal stage, the ordered parameter edits applied
// on top of the first stage's artifact.
var stageEdits = map[ChainStage][]ParamEdit{
	StageCharge: {
		{Key: "IBRION", Value: params.Int(1)},
		{Key: "LAECHG", Value: params.Bool(true)},
		{Key: "LCHARG", Value: params.Bool(true)},
	},
	StageDOS: {
		{Key: "ISTART", Value: params.Int(1)},
		{Key: "ICHARG", Value: params.Int(11)},
		{Key: "IBRION", Value: params.Int(-1)},
		{Key: "NSW", Value: params.Int(1)},
		{Key: "LORBIT", Value: params.Int(12)},
		{Key: "NEDOS", Value: params.Int(2000)},
		{Key: "LCHARG", Value: params.Bool(false)},
		{Key: "LAECHG", Delete: true},
	},
	StageWorkFunc: {
		{Key: "IBRION", Value: params.Int(-1)},
		{Key: "NSW", Value: params.Int(1)},
		{Key: "LVHAR", Value: params.Bool(true)},
	},
}

// stageNeedsDensity marks stages whose restart consumes the charge-density
// output of the stage before them.
var stageNeedsDensity = map[ChainStage]bool{
	StageDOS:      true,
	StageWorkFunc: true,
}

// Chain runs a full optimization generation, then extends the produced
// submission script with a failure-gated follow-up stage: the terminal
// finish fragment is removed, the stage block is appended, and a single new
// finish fragment terminates the script.
func (p *Pipeline) Chain(ctx context.Context, stage ChainStage, f Flags) (*Result, error) {
	edits, ok := stageEdits[stage]
	if !ok {
		return nil, Wrap(ErrUnsupportedStage, "chain", string(stage), nil)
	}

	result, err := p.Generate(ctx, Opt, f)
	if err != nil {
		return nil, err
	}

	// Stages restarting from density need the first stage to write it.
	if stageNeedsDensity[stage] {
		result.Params.Set("LCHARG", params.Bool(true))
		if err := result.Params.Write(p.path(ParamsArtifact)); err != nil {
			return nil, Wrap(nil, "chain", "enable density output", err)
		}
	}

	if err := p.writeStageParams(stage, edits); err != nil {
		return nil, err
	}

	fragments, err := p.templateFragments()
	if err != nil {
		return nil, err
	}

	script := result.Script
	script.RemoveTerminal(submit.FragmentFinish)
	script.Append(submit.Fragment{Name: "chain-header", Body: "# --- stage: " + string(stage) + " ---"})
	script.Append(p.successCheck(stage))
	script.Append(submit.Fragment{Name: "stage-setup", Body: p.stageSetupBody(stage)})
	script.Append(submit.Fragment{Name: "stage-enter", Body: "cd " + string(stage)})
	script.Append(submit.Fragment{Name: submit.FragmentRun, Body: p.cfg.Generate.SchedulerCommand})
	if finish, ok := submit.TemplateFragment(fragments, submit.FragmentFinish); ok {
		script.Append(finish)
	} else {
		script.Append(submit.Fragment{Name: submit.FragmentFinish, Body: "echo done"})
	}
	if err := script.Write(p.path(ScriptArtifact)); err != nil {
		return nil, Wrap(nil, "chain", "", err)
	}

	p.log.Info("submission script chained", "stage", string(stage), "run_id", result.RunID)
	return result, nil
}

// writeStageParams applies the stage's ordered edits to the parameter
// artifact the first stage produced and writes the result into the stage
// directory.
func (p *Pipeline) writeStageParams(stage ChainStage, edits []ParamEdit) error {
	set, err := params.Load(p.path(ParamsArtifact))
	if err != nil {
		return Wrap(nil, "chain", "load parameter artifact", err)
	}
	staged := set.Clone()
	for _, edit := range edits {
		if edit.Delete {
			staged.Delete(edit.Key)
			continue
		}
		staged.Set(edit.Key, edit.Value)
	}
	dir := p.path(string(stage))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Wrap(nil, "chain", dir, err)
	}
	if err := staged.Write(filepath.Join(dir, ParamsArtifact)); err != nil {
		return Wrap(nil, "chain", "", err)
	}
	return nil
}

// successCheck builds the "previous stage succeeded" gate. An optimization
// pass counts as succeeded once it reports convergence. The dos stage gates
// under the charge stage's own success criterion instead, and a charge run
// counts as succeeded on normal completion, not ionic convergence.
func (p *Pipeline) successCheck(stage ChainStage) submit.Fragment {
	convergence := `if ! grep -q "reached required accuracy" vasp.out; then
    echo "previous stage did not converge" >&2
    exit 1
fi`
	completion := `if ! grep -q "General timing and accounting" OUTCAR; then
    echo "previous stage did not finish" >&2
    exit 1
fi`
	body := convergence
	if stage == StageDOS {
		body = completion
	}
	return submit.Fragment{Name: "stage-check", Body: body}
}

func (p *Pipeline) stageSetupBody(stage ChainStage) string {
	dir := string(stage)
	lines := []string{
		"mkdir -p " + dir,
		"cp " + RelaxedArtifact + " " + dir + "/" + StructureArtifact,
		"cp " + KMeshArtifact + " " + dir + "/" + KMeshArtifact,
		"cp " + PotentialArtifact + " " + dir + "/" + PotentialArtifact,
	}
	if stageNeedsDensity[stage] {
		lines = append(lines, "cp CHGCAR "+dir+"/CHGCAR")
	}
	return strings.Join(lines, "\n")
}
