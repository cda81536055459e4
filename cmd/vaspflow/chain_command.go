package main

import (
	"github.com/spf13/cobra"

	"vaspflow/internal/calc"
)

func newChainCommand(ctx *commandContext) *cobra.Command {
	tf := &taskFlags{}

	cmd := &cobra.Command{
		Use:   "chain <stage>",
		Short: "Generate an optimization and chain a follow-up stage onto its submission script",
		Long: `Runs the full optimization generation, then extends the produced
submission script with a failure-gated follow-up stage (charge, dos, or
workfunc), including the staged parameter-artifact edits that stage needs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := ctx.pipeline()
			if err != nil {
				return err
			}
			result, err := pipeline.Chain(cmd.Context(), calc.ChainStage(args[0]), tf.build(cmd))
			if err != nil {
				return err
			}
			printSummary(cmd, result)
			return nil
		},
	}
	tf.register(cmd, calc.Opt)
	return cmd
}
