package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"epibox/internal/cluster"
	"epibox/internal/core"
	"epibox/internal/sims/forest"
)

func newClustersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clusters",
		Short: "Plant one forest and label its tree clusters",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			size, _ := cmd.Flags().GetInt("size")
			density, _ := cmd.Flags().GetFloat64("density")
			seed := resolveSeed(cmd, cfg)

			f, err := forest.New(size, density, core.NewRNG(seed))
			if err != nil {
				return err
			}
			l := cluster.From(f)
			logger.Debug("labelled forest", "L", size, "p", density, "seed", seed, "trees", f.Count(forest.Tree))

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(out, map[string]any{
					"size":     size,
					"density":  density,
					"seed":     seed,
					"trees":    f.Count(forest.Tree),
					"clusters": l.NoClusters(),
					"largest":  l.Largest(),
					"spans":    l.Spans(),
					"sizes":    l.Sizes(),
				})
			}

			if show, _ := cmd.Flags().GetBool("show"); show {
				fmt.Fprint(out, f)
			}
			fmt.Fprintf(out, "No. of clusters: %d (largest %d, spanning %t)\n", l.NoClusters(), l.Largest(), l.Spans())
			return nil
		},
	}

	cmd.Flags().Int("size", 10, "Grid side length L")
	cmd.Flags().Float64("density", 0.5, "Tree density p in [0,1]")
	cmd.Flags().Int64("seed", 0, "Random seed (default from config, random if unset)")
	cmd.Flags().Bool("show", false, "Print the forest before the summary")
	return cmd
}
