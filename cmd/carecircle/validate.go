package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/canhta/CareCircle/internal/logger"
	"github.com/canhta/CareCircle/internal/rawitems"
	"github.com/canhta/CareCircle/pkg/carecircle"
	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
)

func validateCmd(a *app) *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Report structure and base quality of raw items",
		Long: `Validates raw items with the same thresholds the process command uses
for base quality.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []ingest.RawItem
			for _, path := range args {
				loaded, err := rawitems.LoadFile(path, a.logger)
				if err != nil {
					return err
				}
				items = append(items, loaded...)
			}

			proc, err := carecircle.NewFromConfig(a.cfg, carecircle.Options{
				Logger: logger.WithComponent(a.logger, "validate"),
			})
			if err != nil {
				return err
			}
			report := proc.Validator().ValidateBatch(items)

			if outputJSON {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}
			_, err = fmt.Fprint(a.stdout, report.String())
			return err
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output the report as JSON")
	return cmd
}
