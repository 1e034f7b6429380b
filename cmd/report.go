package cmd

import (
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/signalnine/skilleval/internal/report"
	"github.com/signalnine/skilleval/internal/result"
)

func newReportCmd() *cobra.Command {
	var skillName, mode string
	cmd := &cobra.Command{
		Use:   "report [report-file]",
		Short: "Print the summary of a saved report",
		Long:  "Print the summary of a saved report. Without a file, the latest report for --skill and --mode in the reports directory is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			switch {
			case len(args) > 0:
				path = args[0]
			case skillName != "":
				path = filepath.Join(cfg.Paths.Reports, result.LatestLinkName(mode, skillName))
			default:
				return errors.New("either a report file or --skill is required")
			}
			doc, err := result.ReadReport(path)
			if err != nil {
				return err
			}
			report.PrintSummary(cmd.OutOrStdout(), doc, colorize())
			return nil
		},
	}
	cmd.Flags().StringVar(&skillName, "skill", "", "skill of the latest report to show")
	cmd.Flags().StringVar(&mode, "mode", result.ModeDryRun, "mode of the latest report to show")
	return cmd
}
