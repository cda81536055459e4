package calc_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vaspflow/internal/calc"
	"vaspflow/internal/params"
	"vaspflow/internal/submit"
)

func TestChainOptimizationIntoDOS(t *testing.T) {
	p, _, workdir := newPipeline(t)
	writeFile(t, workdir, "model.vasp", cubicModel([3]float64{0, 0, 0}))

	result, err := p.Chain(context.Background(), calc.StageDOS, calc.Flags{})
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	if result.Script.Count(submit.FragmentFinish) != 1 {
		t.Fatalf("finish fragments = %d, want exactly one", result.Script.Count(submit.FragmentFinish))
	}
	if result.Script.Count(submit.FragmentRun) != 2 {
		t.Fatalf("run fragments = %d, want one per stage", result.Script.Count(submit.FragmentRun))
	}

	rendered := result.Script.Render()
	if !strings.Contains(rendered, "cd dos") {
		t.Fatalf("stage entry missing:\n%s", rendered)
	}
	if !strings.Contains(rendered, "cp CHGCAR dos/CHGCAR") {
		t.Fatalf("density handoff missing:\n%s", rendered)
	}
	if !strings.Contains(rendered, "General timing and accounting") {
		t.Fatalf("completion gate missing:\n%s", rendered)
	}

	staged, err := params.Load(filepath.Join(workdir, "dos", calc.ParamsArtifact))
	if err != nil {
		t.Fatalf("staged parameter artifact: %v", err)
	}
	if got := mustValue(t, staged, "ICHARG").Int(); got != 11 {
		t.Fatalf("staged ICHARG = %d", got)
	}
	if got := mustValue(t, staged, "NSW").Int(); got != 1 {
		t.Fatalf("staged NSW = %d", got)
	}
	if got := mustValue(t, staged, "LORBIT").Int(); got != 12 {
		t.Fatalf("staged LORBIT = %d", got)
	}
	if mustValue(t, staged, "LCHARG").Bool() {
		t.Fatal("staged LCHARG still enabled")
	}
	if staged.Has("LAECHG") {
		t.Fatal("staged LAECHG survived its deletion edit")
	}

	// The first stage's artifact keeps its optimization settings.
	first, err := params.Load(filepath.Join(workdir, calc.ParamsArtifact))
	if err != nil {
		t.Fatalf("first-stage parameter artifact: %v", err)
	}
	if got := mustValue(t, first, "IBRION").Int(); got != 2 {
		t.Fatalf("first-stage IBRION = %d", got)
	}
}

func TestChainChargeStageGatesOnConvergence(t *testing.T) {
	p, _, workdir := newPipeline(t)
	writeFile(t, workdir, "model.vasp", cubicModel([3]float64{0, 0, 0}))

	result, err := p.Chain(context.Background(), calc.StageCharge, calc.Flags{})
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	rendered := result.Script.Render()
	if !strings.Contains(rendered, "reached required accuracy") {
		t.Fatalf("convergence gate missing:\n%s", rendered)
	}
	if strings.Contains(rendered, "cp CHGCAR charge/CHGCAR") {
		t.Fatalf("charge stage copies a density it is supposed to produce:\n%s", rendered)
	}
	staged, err := params.Load(filepath.Join(workdir, "charge", calc.ParamsArtifact))
	if err != nil {
		t.Fatalf("staged parameter artifact: %v", err)
	}
	if !mustValue(t, staged, "LAECHG").Bool() {
		t.Fatal("staged LAECHG not enabled")
	}
}

func TestChainWorkFuncStage(t *testing.T) {
	p, _, workdir := newPipeline(t)
	writeFile(t, workdir, "model.vasp", cubicModel([3]float64{0, 0, 0}))

	result, err := p.Chain(context.Background(), calc.StageWorkFunc, calc.Flags{})
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	staged, err := params.Load(filepath.Join(workdir, "workfunc", calc.ParamsArtifact))
	if err != nil {
		t.Fatalf("staged parameter artifact: %v", err)
	}
	if !mustValue(t, staged, "LVHAR").Bool() {
		t.Fatal("staged LVHAR not enabled")
	}
	if !strings.Contains(result.Script.Render(), "cp CHGCAR workfunc/CHGCAR") {
		t.Fatal("density handoff missing for workfunc stage")
	}
}

func TestChainDensityStagesEnableFirstStageOutput(t *testing.T) {
	cases := []struct {
		stage calc.ChainStage
		want  bool
	}{
		// dos and workfunc restart from the density the first stage writes,
		// so chaining them must flip the template's LCHARG off-switch.
		{calc.StageDOS, true},
		{calc.StageWorkFunc, true},
		// charge produces its own density; the first stage stays untouched.
		{calc.StageCharge, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.stage), func(t *testing.T) {
			p, _, workdir := newPipeline(t)
			writeFile(t, workdir, "model.vasp", cubicModel([3]float64{0, 0, 0}))

			result, err := p.Chain(context.Background(), tc.stage, calc.Flags{})
			if err != nil {
				t.Fatalf("Chain: %v", err)
			}
			first, err := params.Load(filepath.Join(workdir, calc.ParamsArtifact))
			if err != nil {
				t.Fatalf("first-stage parameter artifact: %v", err)
			}
			if got := mustValue(t, first, "LCHARG").Bool(); got != tc.want {
				t.Fatalf("first-stage LCHARG = %v, want %v", got, tc.want)
			}
			handoff := "cp CHGCAR " + string(tc.stage) + "/CHGCAR"
			if tc.want && !strings.Contains(result.Script.Render(), handoff) {
				t.Fatalf("density handoff missing:\n%s", result.Script.Render())
			}
		})
	}
}

func TestChainUnsupportedStage(t *testing.T) {
	p, _, workdir := newPipeline(t)
	writeFile(t, workdir, "model.vasp", cubicModel([3]float64{0, 0, 0}))

	_, err := p.Chain(context.Background(), calc.ChainStage("band"), calc.Flags{})
	if !errors.Is(err, calc.ErrUnsupportedStage) {
		t.Fatalf("err = %v, want unsupported stage", err)
	}
	if _, err := os.Stat(filepath.Join(workdir, calc.ScriptArtifact)); !os.IsNotExist(err) {
		t.Fatal("stage validation ran after generation instead of before")
	}
}

func TestChargeAnalysisAppendsPartitioningStage(t *testing.T) {
	p, _, workdir := newPipeline(t)
	writeFile(t, workdir, "model.vasp", cubicModel([3]float64{0, 0, 0}))

	result, err := p.Generate(context.Background(), calc.Charge, calc.Flags{Analysis: true})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	rendered := result.Script.Render()
	if !strings.Contains(rendered, "bader CHGCAR") {
		t.Fatalf("partitioning stage missing:\n%s", rendered)
	}
	if result.Script.Count(submit.FragmentFinish) != 1 {
		t.Fatal("analysis stage must stay before the single finish fragment")
	}
}
