package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"epibox/internal/percolation"
	"epibox/internal/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored sweeps, or the points of one sweep with --run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("db") {
				cfg.Database, _ = cmd.Flags().GetString("db")
			}
			if cfg.Database == "" {
				return errors.New("no database configured (use --db or EPIBOX_DB)")
			}

			db, err := store.Open(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			jsonOut, _ := cmd.Flags().GetBool("json")
			runID, _ := cmd.Flags().GetInt64("run")
			if runID == 0 {
				limit, _ := cmd.Flags().GetInt("limit")
				runs, err := db.Runs(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(out, runs)
				}
				for _, r := range runs {
					fmt.Fprintf(out, "%4d  %s  mode=%s seed=%d trials=%d points=%d\n",
						r.ID, r.CreatedAt, r.Mode, r.Seed, r.Trials, r.Points)
				}
				return nil
			}

			run, err := db.Run(cmd.Context(), runID)
			if err != nil {
				return err
			}
			estimates, err := db.Estimates(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(out, estimates)
			}
			results := make([]percolation.Result, len(estimates))
			for i, e := range estimates {
				results[i] = e.Result(percolation.Mode(run.Mode))
				printResult(out, results[i])
			}
			for _, c := range percolation.Crossings(results) {
				fmt.Fprintf(out, "L = %d crosses 0.5 at p ≈ %.3f\n", c.GridSize, c.Density)
			}
			return nil
		},
	}

	cmd.Flags().String("db", "", "SQLite file holding stored runs (overrides config)")
	cmd.Flags().Int64("run", 0, "Show the points of this run")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list")
	return cmd
}
