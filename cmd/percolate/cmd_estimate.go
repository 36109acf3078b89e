package main

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"epibox/internal/percolation"
)

func newEstimateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate the percolation probability for one grid size and density",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			size, _ := cmd.Flags().GetInt("size")
			density, _ := cmd.Flags().GetFloat64("density")
			trials, _ := cmd.Flags().GetInt("trials")
			mode, _ := cmd.Flags().GetString("mode")
			workers := cfg.Workers
			if cmd.Flags().Changed("workers") {
				workers, _ = cmd.Flags().GetInt("workers")
			}

			est := percolation.Config{
				GridSize: size,
				Density:  density,
				Trials:   trials,
				Mode:     percolation.Mode(mode),
				Workers:  workers,
				Seed:     resolveSeed(cmd, cfg),
			}
			logger.Debug("estimating", "L", size, "p", density, "N", trials, "mode", mode, "seed", est.Seed)

			res, err := percolation.Estimate(cmd.Context(), est)
			if err != nil {
				return err
			}

			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().Int("size", 10, "Grid side length L")
	cmd.Flags().Float64("density", 0.5, "Tree density p in [0,1]")
	cmd.Flags().Int("trials", 100, "Number of independent realizations N")
	cmd.Flags().String("mode", string(percolation.ModeFire), "Realization mode: fire or cluster")
	cmd.Flags().Int("workers", 0, "Parallel realizations (0 = one per CPU)")
	cmd.Flags().Int64("seed", 0, "Random seed (default from config, random if unset)")
	return cmd
}

func printResult(w io.Writer, res percolation.Result) {
	fmt.Fprintf(w, "L = %d; p = %.2f; N = %s => %.4f ± %.4f",
		res.GridSize, res.Density, humanize.Comma(int64(res.Trials)), res.Probability, res.StdErr)
	switch res.Mode {
	case percolation.ModeCluster:
		fmt.Fprintf(w, " (mean clusters %s)\n", humanize.FtoaWithDigits(res.MeanClusters, 2))
	default:
		fmt.Fprintf(w, " (mean ticks %s)\n", humanize.FtoaWithDigits(res.MeanTicks, 2))
	}
}
