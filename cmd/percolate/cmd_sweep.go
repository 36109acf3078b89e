package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"epibox/internal/percolation"
	"epibox/internal/store"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Estimate every configured (grid size, density) point",
		Long: `sweep evaluates the cross product of grid sizes and densities from the
configuration file, prints each estimate and the interpolated density where
the probability crosses one half, and optionally stores the run in SQLite.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("trials") {
				cfg.Sweep.Trials, _ = cmd.Flags().GetInt("trials")
			}
			if cmd.Flags().Changed("mode") {
				cfg.Sweep.Mode, _ = cmd.Flags().GetString("mode")
			}
			if cmd.Flags().Changed("db") {
				cfg.Database, _ = cmd.Flags().GetString("db")
			}
			cfg.Seed = resolveSeed(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			sweep := cfg.PercolationSweep()
			results, err := percolation.Sweep(cmd.Context(), sweep, logger)
			if err != nil {
				return err
			}
			crossings := percolation.Crossings(results)

			var runID int64
			if cfg.Database != "" {
				db, err := store.Open(cfg.Database)
				if err != nil {
					return err
				}
				defer db.Close()
				mode := sweep.Mode
				if mode == "" {
					mode = percolation.ModeFire
				}
				runID, err = db.SaveRun(cmd.Context(), cfg.Seed, mode, cfg.Sweep.Trials, results)
				if err != nil {
					return fmt.Errorf("saving run: %w", err)
				}
				logger.Info("sweep stored", "db", cfg.Database, "run", runID)
			}

			out := cmd.OutOrStdout()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return writeJSON(out, map[string]any{
					"run_id":    runID,
					"seed":      cfg.Seed,
					"results":   results,
					"crossings": crossings,
				})
			}

			fmt.Fprintf(out, "Swept %d points (%s realizations each, seed %d)\n",
				len(results), humanize.Comma(int64(cfg.Sweep.Trials)), cfg.Seed)
			for _, res := range results {
				printResult(out, res)
			}
			for _, c := range crossings {
				fmt.Fprintf(out, "L = %d crosses 0.5 at p ≈ %.3f\n", c.GridSize, c.Density)
			}
			if runID != 0 {
				fmt.Fprintf(out, "Stored as run %d in %s\n", runID, cfg.Database)
			}
			return nil
		},
	}

	cmd.Flags().Int("trials", 0, "Realizations per point (overrides config)")
	cmd.Flags().String("mode", "", "Realization mode: fire or cluster (overrides config)")
	cmd.Flags().String("db", "", "SQLite file to store the run in (overrides config)")
	cmd.Flags().Int64("seed", 0, "Random seed (default from config, random if unset)")
	return cmd
}
