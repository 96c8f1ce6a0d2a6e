// Command chat answers questions about the freelancer earnings dataset in an
// interactive terminal session.
//
//	chat --csv freelancer_earnings_bd.csv --transcript chat.log
//
// Settings come from the environment (and .env): SQLASSIST_*, AGENT_*.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sqlassist/internal/app"
	"sqlassist/internal/session"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	var (
		opts       app.Options
		transcript string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions about the dataset in plain language",
		Long: `Load the CSV dataset into its SQLite store, then read questions from stdin
and answer each one with the SQL agent. Type 'exit' to quit.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runChat(ctx, opts, transcript)
		},
	}

	cmd.Flags().StringVar(&opts.EnvFile, "env-file", ".env", "Optional dotenv file")
	cmd.Flags().StringVar(&opts.DatasetPath, "csv", "", "Dataset CSV (overrides SQLASSIST_DATASET)")
	cmd.Flags().BoolVar(&opts.SkipLoad, "skip-load", false, "Use the existing store without reloading the CSV")
	cmd.Flags().BoolVarP(&opts.Debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().StringVar(&transcript, "transcript", "", "Append the session to this file")
	return cmd
}

func runChat(ctx context.Context, opts app.Options, transcriptPath string) error {
	a, err := app.New(ctx, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	out := session.NewTranscript(os.Stdout)
	if transcriptPath != "" {
		if err := out.OpenFile(transcriptPath); err != nil {
			return err
		}
	}
	defer out.Close()

	return session.New(os.Stdin, out, a.Agent, a.Logger).Run(ctx)
}
