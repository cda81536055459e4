package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaspflow/internal/calc"
)

func newNEBCommand(ctx *commandContext) *cobra.Command {
	var (
		initial      string
		final        string
		images       int
		method       string
		checkOverlap bool
		gamma        bool
	)

	cmd := &cobra.Command{
		Use:   "neb",
		Short: "Generate an interpolated image path between two endpoint structures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initial == "" || final == "" {
				return fmt.Errorf("neb: --initial and --final endpoint structures are required")
			}
			pipeline, err := ctx.pipeline()
			if err != nil {
				return err
			}
			result, err := pipeline.GenerateNEB(cmd.Context(), calc.NEBInput{Initial: initial, Final: final}, calc.Flags{
				Images:       images,
				Method:       method,
				CheckOverlap: checkOverlap,
				Gamma:        gamma,
			})
			if err != nil {
				return err
			}
			printSummary(cmd, result)
			for _, image := range result.Overlaps {
				for _, o := range image.Overlaps {
					cmd.Printf("overlap in image %s: atoms %d-%d at %.4f\n", image.Dir, o.I+1, o.J+1, o.Distance)
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&initial, "initial", "", "Initial endpoint structure file")
	flags.StringVar(&final, "final", "", "Final endpoint structure file")
	flags.IntVar(&images, "images", 0, "Interior image count (0 uses the configured default)")
	flags.StringVar(&method, "method", "linear", "Interpolation method: linear or idpp")
	flags.BoolVar(&checkOverlap, "check_overlap", true, "Validate interatomic distances over every image")
	flags.BoolVar(&gamma, "gamma", false, "Force the single-point k-mesh")

	cmd.AddCommand(newNEBSortCommand(ctx))
	cmd.AddCommand(newNEBMonitorCommand(ctx))
	cmd.AddCommand(newNEBMovieCommand(ctx))
	return cmd
}

func newNEBSortCommand(ctx *commandContext) *cobra.Command {
	var initial, final string

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Align the final endpoint's atom order with the initial one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if initial == "" || final == "" {
				return fmt.Errorf("neb sort: --initial and --final endpoint structures are required")
			}
			pipeline, err := ctx.pipeline()
			if err != nil {
				return err
			}
			out, err := pipeline.SortEndpoints(initial, final)
			if err != nil {
				return err
			}
			cmd.Printf("sorted endpoint written to %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&initial, "initial", "", "Initial endpoint structure file")
	cmd.Flags().StringVar(&final, "final", "", "Final endpoint structure file")
	return cmd
}

func newNEBMonitorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Report per-image tangent, energy, and barrier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := ctx.pipeline()
			if err != nil {
				return err
			}
			statuses, err := pipeline.Monitor()
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				rows = append(rows, []string{
					s.Dir,
					fmt.Sprintf("%10.6f", s.Tangent),
					fmt.Sprintf("%.6f", s.Energy),
					fmt.Sprintf("%.6f", s.Barrier),
				})
			}
			cmd.Println(renderTable(
				[]string{"Image", "Tangent", "Energy", "Barrier"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}
}

func newNEBMovieCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "movie",
		Short: "Render the image path into a trajectory archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := ctx.pipeline()
			if err != nil {
				return err
			}
			return pipeline.Movie(name)
		},
	}
	cmd.Flags().StringVar(&name, "name", "movie.arc", "Output archive name")
	return cmd
}
