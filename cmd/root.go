package cmd

import (
	"errors"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/signalnine/skilleval/internal/config"
	"github.com/signalnine/skilleval/internal/log"
)

var (
	cfgFile      string
	flagLogLevel string
	flagVerbose  bool

	cfg *config.Config
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "skilleval",
		Short:         "Evaluate coding agents against skill-specific graders",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output (same as --log-level debug)")

	root.AddCommand(newEvalCmd())
	root.AddCommand(newAgentCmd())
	root.AddCommand(newCompareCmd())
	root.AddCommand(newMergeCmd())
	root.AddCommand(newGradersCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newValidateCmd())
	root.AddCommand(newListCmd())
	return root
}

// setup loads the config, applies the log level and exports secrets. An
// explicitly named config file must exist; the default one is optional.
func setup(cmd *cobra.Command) error {
	var err error
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadOptional(cfgFile)
	}
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if flagVerbose {
		level = log.LevelDebug
	}
	log.SetLevel(level)

	if cfg.Secrets.EnvFile != "" {
		n, err := config.LoadEnvFile(cfg.Secrets.EnvFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Debugf("secrets file %s not found", cfg.Secrets.EnvFile)
		case err != nil:
			log.Warnf("could not load secrets: %v", err)
		default:
			log.Debugf("loaded %d variables from %s", n, cfg.Secrets.EnvFile)
		}
	}
	return nil
}

// colorize reports whether stdout is a terminal that should get ANSI colors.
func colorize() bool {
	if color.NoColor {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
