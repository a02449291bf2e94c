package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/canhta/CareCircle/pkg/carecircle/internalerr"
	"github.com/canhta/CareCircle/pkg/carecircle/store"
	"github.com/canhta/CareCircle/pkg/carecircle/store/sqlite"
)

func runsCmd(a *app) *cobra.Command {
	var (
		storePath  string
		limit      int
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recorded processing runs",
		Long: `Lists the most recent processing runs. With a run ID only that run is
shown; an unknown ID is an error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if storePath == "" {
				storePath = a.cfg.Store.Path
			}
			if storePath == "" {
				return fmt.Errorf("no store configured (set --store or store.path): %w", internalerr.ErrInvalidConfig)
			}

			st, err := sqlite.OpenSQLite(cmd.Context(), storePath)
			if err != nil {
				return err
			}
			defer st.Close()

			if len(args) == 1 {
				limit = 0
			}
			runs, err := st.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				if runs, err = findRun(runs, args[0]); err != nil {
					return err
				}
			}

			if outputJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			w := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN ID\tSTARTED\tDURATION\tWORKERS\tTOTAL\tADMITTED\tSUCCESS")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.1f%%\n",
					r.ID,
					r.StartedAt.Local().Format(time.DateTime),
					r.Duration().Round(time.Millisecond),
					r.Workers,
					r.Stats.TotalItems,
					r.Admitted,
					r.Stats.SuccessRate*100,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "SQLite store path; overrides config")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output as JSON")

	return cmd
}

// findRun narrows runs to the one with the given ID.
func findRun(runs []store.Run, id string) ([]store.Run, error) {
	for _, r := range runs {
		if r.ID == id {
			return []store.Run{r}, nil
		}
	}
	return nil, fmt.Errorf("run %s: %w", id, internalerr.ErrNotFound)
}
