// Command eval runs the SQL agent over a corpus of questions with reference
// answers and scores every answer for correctness and helpfulness with a
// judge model.
//
//	eval --cases extra.yaml --output report.json
//
// Settings come from the environment (and .env): SQLASSIST_*, AGENT_*, JUDGE_*.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sqlassist/internal/app"
	"sqlassist/internal/evaluation"
	"sqlassist/internal/llm"
	"sqlassist/internal/logger"
)

type evalFlags struct {
	app.Options
	casesPath    string
	replaceCases bool
	limit        int
	outputPath   string
}

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var f evalFlags

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Score the SQL agent against reference answers",
		Long: `Load the dataset, answer every test case with the SQL agent, grade each
answer with the judge model and print per-case and average scores.

The compiled-in corpus is used unless --cases is given. Cases from the
file are appended to it, or replace it with --replace.`,
		Example: `  # Built-in corpus
  eval

  # Only the cases in a file, saving the full report
  eval --cases cases.yaml --replace --output report.json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runEval(ctx, f)
		},
	}

	cmd.Flags().StringVar(&f.EnvFile, "env-file", ".env", "Optional dotenv file")
	cmd.Flags().StringVar(&f.DatasetPath, "csv", "", "Dataset CSV (overrides SQLASSIST_DATASET)")
	cmd.Flags().BoolVar(&f.SkipLoad, "skip-load", false, "Use the existing store without reloading the CSV")
	cmd.Flags().BoolVar(&f.CountTokens, "count-tokens", false, "Count agent tokens with cl100k_base")
	cmd.Flags().BoolVarP(&f.Debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().StringVar(&f.casesPath, "cases", "", "YAML file with additional test cases")
	cmd.Flags().BoolVar(&f.replaceCases, "replace", false, "Use only the cases from --cases")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "Evaluate at most this many cases (0 = all)")
	cmd.Flags().StringVarP(&f.outputPath, "output", "o", "", "Write the JSON report to this file")
	return cmd
}

func loadCases(f evalFlags) ([]evaluation.TestCase, error) {
	if f.replaceCases && f.casesPath == "" {
		return nil, errors.New("--replace requires --cases")
	}
	var cases []evaluation.TestCase
	if !f.replaceCases {
		cases = evaluation.DefaultCases()
	}
	if f.casesPath != "" {
		extra, err := evaluation.LoadCases(f.casesPath)
		if err != nil {
			return nil, err
		}
		cases = append(cases, extra...)
	}
	if f.limit > 0 && f.limit < len(cases) {
		cases = cases[:f.limit]
	}
	return cases, nil
}

func runEval(ctx context.Context, f evalFlags) error {
	cases, err := loadCases(f)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, f.Options)
	if err != nil {
		return err
	}
	defer a.Close()

	judgeModel, err := llm.CreateLLM(a.Config.Judge)
	if err != nil {
		return err
	}
	a.Logger.Info("Judge model", zap.String("model", a.Config.Judge.DisplayName()))
	judge := evaluation.NewLLMJudge(judgeModel, a.Logger)

	progress := logger.NewLogger(os.Stdout, len(cases))
	progress.SetPhase("Evaluation")

	report := evaluation.Evaluate(ctx, cases, a.Agent, judge.Judges(),
		evaluation.WithObserver(progress),
		evaluation.WithLogger(a.Logger))

	progress.PrintSummary()
	report.Print(os.Stdout)

	if f.outputPath != "" {
		if err := report.WriteJSON(f.outputPath); err != nil {
			return err
		}
		a.Logger.Info("Report saved", zap.String("path", f.outputPath))
	}
	return nil
}
