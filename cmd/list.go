package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signalnine/skilleval/internal/grader"
	"github.com/signalnine/skilleval/internal/log"
	"github.com/signalnine/skilleval/internal/scaffold"
	"github.com/signalnine/skilleval/internal/skill"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List graders, scaffolds and skills",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			reg := grader.DefaultRegistry()

			fmt.Fprintln(w, "Graders:")
			for _, name := range reg.Skills() {
				e, _ := reg.Lookup(name)
				fmt.Fprintf(w, "  - %s [%s] %s\n", e.Skill, e.Kind, e.Description)
				fmt.Fprintf(w, "      checks: %s\n", strings.Join(e.Checks, ", "))
			}

			fmt.Fprintln(w, "\nScaffolds:")
			names, err := scaffold.NewStore(cfg.Paths.Scaffolds).List()
			if err != nil {
				log.Warnf("%v", err)
			}
			for _, n := range names {
				fmt.Fprintf(w, "  - %s\n", n)
			}

			fmt.Fprintln(w, "\nSkills:")
			skills, err := skill.List(cfg.Paths.Skills)
			if err != nil {
				return err
			}
			for _, s := range skills {
				fmt.Fprintf(w, "  - %s: %s\n", s.Name, s.Description)
			}
			return nil
		},
	}
}
