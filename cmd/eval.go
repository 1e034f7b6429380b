package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/signalnine/skilleval/internal/agent"
	"github.com/signalnine/skilleval/internal/config"
	"github.com/signalnine/skilleval/internal/grader"
	"github.com/signalnine/skilleval/internal/judge"
	"github.com/signalnine/skilleval/internal/log"
	"github.com/signalnine/skilleval/internal/metrics"
	"github.com/signalnine/skilleval/internal/report"
	"github.com/signalnine/skilleval/internal/result"
	"github.com/signalnine/skilleval/internal/runner"
	"github.com/signalnine/skilleval/internal/scaffold"
	"github.com/signalnine/skilleval/internal/skill"
)

type evalFlags struct {
	skill      string
	dataset    string
	mode       string
	output     string
	noSave     bool
	agentType  string
	timeout    int
	withRubric bool
	debug      bool
	testIDs    []string
}

func newEvalCmd() *cobra.Command {
	f := &evalFlags{}
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a skill against a dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, f)
		},
	}
	addEvalFlags(cmd, f)
	cmd.Flags().StringVar(&f.mode, "mode", result.ModeDryRun, "evaluation mode (dry-run, agent, baseline)")
	return cmd
}

func newAgentCmd() *cobra.Command {
	f := &evalFlags{}
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Evaluate a skill by running the coding agent (eval --mode agent)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.mode = result.ModeAgent
			return runEval(cmd, f)
		},
	}
	addEvalFlags(cmd, f)
	return cmd
}

func addEvalFlags(cmd *cobra.Command, f *evalFlags) {
	cmd.Flags().StringVar(&f.skill, "skill", "", "skill to evaluate")
	cmd.Flags().StringVar(&f.dataset, "dataset", "", "dataset CSV")
	cmd.Flags().StringVar(&f.output, "output", "", "report directory (default from config)")
	cmd.Flags().BoolVar(&f.noSave, "no-save", false, "do not persist the report")
	cmd.Flags().StringVar(&f.agentType, "agent", "", "agent backend (claude-code, docker)")
	cmd.Flags().IntVar(&f.timeout, "timeout", 0, "agent timeout in seconds (default from config)")
	cmd.Flags().BoolVar(&f.withRubric, "with-rubric", false, "score agent runs with the LLM judge")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "save per-case debug artifacts")
	cmd.Flags().StringArrayVar(&f.testIDs, "test-id", nil, "only run these test case ids (repeatable)")
	cmd.MarkFlagRequired("skill")
	cmd.MarkFlagRequired("dataset")
}

func runEval(cmd *cobra.Command, f *evalFlags) error {
	opts := runner.Options{
		Skill:       f.skill,
		Mode:        f.mode,
		DatasetPath: f.dataset,
		OutputDir:   cfg.Paths.Reports,
		Graders:     grader.DefaultRegistry(),
		Scaffolds:   scaffold.NewStore(cfg.Paths.Scaffolds),
		WithRubric:  f.withRubric,
		TestIDs:     f.testIDs,
	}
	if f.output != "" {
		opts.OutputDir = f.output
	}
	if f.noSave {
		opts.OutputDir = ""
	}

	agentCfg := cfg.Agent
	if f.agentType != "" {
		agentCfg.Type = f.agentType
	}
	if f.timeout > 0 {
		agentCfg.TimeoutSeconds = f.timeout
	}
	opts.AgentTimeout = agentCfg.Timeout()

	if f.mode == result.ModeAgent {
		r, err := newAgentRunner(agentCfg)
		if err != nil {
			return err
		}
		opts.Agent = r

		if f.withRubric {
			j, err := newJudge(cfg.Judge, cfg.Paths.Rubric)
			switch {
			case errors.Is(err, judge.ErrUnavailable):
				log.Warnf("could not initialize LLM judge: %v", err)
			case err != nil:
				return err
			default:
				opts.Judge = j
			}
		}
	}

	if s, err := skill.Load(cfg.Paths.Skills, f.skill); err == nil {
		opts.SkillContent = s.Content
	} else {
		log.Debugf("no SKILL.md for %s: %v", f.skill, err)
	}

	if f.debug {
		opts.Debug = runner.NewDebugWriter(cfg.Paths.Debug)
	}
	if cfg.Metrics.Textfile != "" {
		opts.Metrics = metrics.New()
	}

	ev, err := runner.New(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	rep, _, err := ev.Run(ctx)
	if err != nil {
		return err
	}

	if opts.Metrics != nil {
		if err := opts.Metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Warnf("%v", err)
		}
	}
	report.PrintSummary(cmd.OutOrStdout(), rep.Document(), colorize())
	return nil
}

func newAgentRunner(a config.Agent) (agent.Runner, error) {
	switch a.Type {
	case config.AgentClaudeCode, "":
		r := agent.NewCLIRunner()
		if a.Binary != "" {
			r.Binary = a.Binary
		}
		if a.Args != nil {
			r.Args = a.Args
		}
		return r, nil
	case config.AgentDocker:
		if a.Image == "" {
			return nil, errors.New("docker agent requires agent.image")
		}
		r := agent.NewDockerRunner(a.Image)
		r.Command = a.Command
		r.Env = a.Env
		r.CPULimit = a.CPULimit
		r.MemoryLimit = a.MemoryLimit
		return r, nil
	default:
		return nil, fmt.Errorf("unknown agent type %q", a.Type)
	}
}

// newJudge wires the configured completion backend. A missing API key
// yields judge.ErrUnavailable; a bad rubric file is a hard error.
func newJudge(j config.Judge, rubricPath string) (*judge.Judge, error) {
	rubric, err := judge.LoadRubric(rubricPath)
	if err != nil {
		return nil, err
	}
	key := j.APIKey()
	if key == "" {
		return nil, fmt.Errorf("%w: %s is not set", judge.ErrUnavailable, j.APIKeyEnv)
	}

	var c judge.Completer
	switch j.Provider {
	case config.ProviderOpenAI:
		c = judge.NewOpenAICompleter(key, j.BaseURL, j.Model)
	default:
		c = judge.NewAnthropicCompleter(key, j.BaseURL, j.Model)
	}
	return judge.New(c, rubric,
		judge.WithMaxTokens(j.MaxTokens),
		judge.WithTimeout(j.Timeout()),
	)
}
