package cmd

import (
	"github.com/spf13/cobra"

	"github.com/signalnine/skilleval/internal/report"
)

func newCompareCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "compare <report-a> <report-b>",
		Short: "Compare two evaluation reports (B against baseline A)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := report.Compare(args[0], args[1])
			if err != nil {
				return err
			}
			return report.WriteComparison(cmd.OutOrStdout(), c, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format (json, table)")
	return cmd
}
