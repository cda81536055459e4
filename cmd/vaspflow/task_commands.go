package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaspflow/internal/calc"
)

// taskFlags binds the shared generation switches onto a command.
type taskFlags struct {
	low          bool
	vdw          bool
	sol          bool
	gamma        bool
	mag          bool
	hse          bool
	static       bool
	continuous   bool
	analysis     bool
	nelectOffset float64
}

func (tf *taskFlags) register(cmd *cobra.Command, variant calc.Variant) {
	flags := cmd.Flags()
	flags.BoolVar(&tf.vdw, "vdw", false, "Enable the dispersion correction")
	flags.BoolVar(&tf.sol, "sol", false, "Enable implicit solvation")
	flags.BoolVar(&tf.gamma, "gamma", false, "Force the single-point k-mesh")
	flags.BoolVar(&tf.mag, "mag", false, "Enable spin polarization")
	flags.BoolVar(&tf.hse, "hse", false, "Use the screened hybrid functional")
	flags.BoolVar(&tf.static, "static", false, "Freeze ions for a single-step run")
	flags.BoolVar(&tf.continuous, "continuous", false, "Restart from the previous relaxed structure")
	flags.Float64Var(&tf.nelectOffset, "nelect", 0, "Charge offset relative to the neutral electron count")
	if variant == calc.Opt {
		flags.BoolVar(&tf.low, "low", false, "Run a coarse first pass before the full one")
	}
	if variant == calc.Charge {
		flags.BoolVar(&tf.analysis, "analysis", false, "Append the charge-partitioning post-run stage")
	}
}

func (tf *taskFlags) build(cmd *cobra.Command) calc.Flags {
	return calc.Flags{
		Low:          tf.low,
		VDW:          tf.vdw,
		Sol:          tf.sol,
		Gamma:        tf.gamma,
		Mag:          tf.mag,
		HSE:          tf.hse,
		Static:       tf.static,
		Continuous:   tf.continuous,
		Analysis:     tf.analysis,
		HasNElect:    cmd.Flags().Changed("nelect"),
		NElectOffset: tf.nelectOffset,
	}
}

var taskDescriptions = map[calc.Variant]string{
	calc.Opt:      "Generate inputs for a structural optimization",
	calc.Charge:   "Generate inputs for a charge-density calculation",
	calc.DOS:      "Generate inputs for a density-of-states calculation",
	calc.Band:     "Generate inputs for a band-structure calculation",
	calc.Freq:     "Generate inputs for a frequency calculation",
	calc.MD:       "Generate inputs for a molecular-dynamics run",
	calc.STM:      "Generate inputs for a scanning-probe image model",
	calc.ConTS:    "Generate inputs for a constrained transition-state search",
	calc.Dimer:    "Generate inputs for a dimer-method search",
	calc.WorkFunc: "Generate inputs for a work-function calculation",
}

func newTaskCommands(ctx *commandContext) []*cobra.Command {
	variants := []calc.Variant{
		calc.Opt, calc.Charge, calc.DOS, calc.Band, calc.Freq,
		calc.MD, calc.STM, calc.ConTS, calc.Dimer, calc.WorkFunc,
	}
	out := make([]*cobra.Command, 0, len(variants))
	for _, variant := range variants {
		out = append(out, newTaskCommand(ctx, variant))
	}
	return out
}

func newTaskCommand(ctx *commandContext, variant calc.Variant) *cobra.Command {
	tf := &taskFlags{}
	var points int

	cmd := &cobra.Command{
		Use:   variant.String(),
		Short: taskDescriptions[variant],
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := ctx.pipeline()
			if err != nil {
				return err
			}
			flags := tf.build(cmd)
			flags.Points = points
			result, err := pipeline.Generate(cmd.Context(), variant, flags)
			if err != nil {
				return err
			}
			printSummary(cmd, result)
			return nil
		},
	}
	tf.register(cmd, variant)
	if variant == calc.Band {
		cmd.Flags().IntVar(&points, "points", 20, "Sampling density per band-path segment")
	}
	return cmd
}

func printSummary(cmd *cobra.Command, result *calc.Result) {
	rows := make([][]string, 0, len(result.Summary))
	for _, row := range result.Summary {
		rows = append(rows, []string{
			row.Element,
			fmt.Sprintf("%d", row.Total),
			fmt.Sprintf("%d", row.Relaxed),
			row.Potential,
			row.Orbital,
			row.U,
		})
	}
	cmd.Println(renderTable(
		[]string{"Element", "Total", "Relax", "Potential", "Orbital", "U-J"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignRight, alignRight},
	))
	if result.Mesh.Points == nil {
		cmd.Printf("KPoints: %d %d %d\n", result.Mesh.Grid[0], result.Mesh.Grid[1], result.Mesh.Grid[2])
	}
	cmd.Printf("Run ID: %s\n", result.RunID)
}
