package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/signalnine/skilleval/internal/grader"
	"github.com/signalnine/skilleval/internal/report"
)

func newGradersCmd() *cobra.Command {
	var skillName, project, tracePath string
	cmd := &cobra.Command{
		Use:   "graders",
		Short: "Run a skill's graders against a project directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := grader.Evidence{ProjectDir: project}
			if tracePath != "" {
				data, err := os.ReadFile(tracePath)
				if err != nil {
					return fmt.Errorf("reading trace: %w", err)
				}
				tr, err := grader.ParseTrace(data)
				if err != nil {
					return err
				}
				ev.Trace = tr
			}
			checks, err := grader.DefaultRegistry().Grade(skillName, ev)
			if err != nil {
				return err
			}
			report.PrintChecks(cmd.OutOrStdout(), checks, colorize())
			return nil
		},
	}
	cmd.Flags().StringVar(&skillName, "skill", "", "skill whose graders to run")
	cmd.Flags().StringVar(&project, "project", ".", "project directory")
	cmd.Flags().StringVar(&tracePath, "trace", "", "execution trace JSON for trace graders")
	cmd.MarkFlagRequired("skill")
	return cmd
}
