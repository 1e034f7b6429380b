package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/skilleval/internal/report"
)

func newMergeCmd() *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "merge <report>...",
		Short: "Merge report files into a leaderboard",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := report.Merge(args)
			if err != nil {
				return err
			}
			if err := report.WriteLeaderboard(output, entries); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Merged %d files into %s\n\n", len(args), output)
			return report.RenderLeaderboard(w, entries, format)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "leaderboard.json", "leaderboard file")
	cmd.Flags().StringVar(&format, "format", "table", "output format (table, markdown, json)")
	return cmd
}
