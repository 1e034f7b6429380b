package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/skilleval/internal/dataset"
	"github.com/signalnine/skilleval/internal/grader"
	"github.com/signalnine/skilleval/internal/log"
	"github.com/signalnine/skilleval/internal/scaffold"
)

func newValidateCmd() *cobra.Command {
	var skillName, datasetPath string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a dataset against the scaffold store and the skill's check catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, err := grader.DefaultRegistry().Lookup(skillName)
			if err != nil {
				return err
			}
			cases, err := dataset.Load(datasetPath)
			if err != nil {
				return err
			}

			known := make(map[string]bool, len(entry.Checks))
			for _, c := range entry.Checks {
				known[c] = true
			}
			store := scaffold.NewStore(cfg.Paths.Scaffolds)
			missing := 0
			for _, tc := range cases {
				if !store.Exists(tc.Scaffold) {
					log.Errorf("case %s: scaffold %q not found in %s", tc.ID, tc.Scaffold, store.Root)
					missing++
				}
				for _, name := range tc.ExpectedChecks {
					if !known[name] {
						log.Warnf("case %s: check %q is not produced by the %s grader", tc.ID, name, skillName)
					}
				}
			}
			if missing > 0 {
				return fmt.Errorf("%d of %d test cases reference missing scaffolds", missing, len(cases))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d test cases OK\n", datasetPath, len(cases))
			return nil
		},
	}
	cmd.Flags().StringVar(&skillName, "skill", "", "skill the dataset targets")
	cmd.Flags().StringVar(&datasetPath, "dataset", "", "dataset CSV")
	cmd.MarkFlagRequired("skill")
	cmd.MarkFlagRequired("dataset")
	return cmd
}
