package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// newAnalyzeCmd creates the 'analyze' subcommand, a one-shot run of the same
// pipeline the HTTP service uses. No bearer token is required.
func newAnalyzeCmd() *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "analyze <url>",
		Short: "Analyze one URL and print the JSON report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			report, err := appInstance.Analyzer().Analyze(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print the report on a single line")
	return cmd
}
