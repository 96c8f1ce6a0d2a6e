package evaluation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Asker answers one question
type Asker interface {
	Ask(ctx context.Context, question string) (string, error)
}

// Observer follows a run case by case
type Observer interface {
	OnCaseStart(index int, question string)
	OnCaseDone(index int, correctness, helpfulness float64)
	OnCaseError(index int, err error)
}

// Option configures Evaluate
type Option func(*options)

type options struct {
	observer Observer
	logger   *zap.Logger
}

// WithObserver reports progress to o
func WithObserver(o Observer) Option {
	return func(opts *options) { opts.observer = o }
}

// WithLogger sets the diagnostics logger
func WithLogger(l *zap.Logger) Option {
	return func(opts *options) { opts.logger = l }
}

type nopObserver struct{}

func (nopObserver) OnCaseStart(int, string)          {}
func (nopObserver) OnCaseDone(int, float64, float64) {}
func (nopObserver) OnCaseError(int, error)           {}

// Evaluate runs every case in order: ask the agent, then both judges.
// A failing case is recorded as errored and the run continues.
// Cancelling ctx stops the run; cases not yet started are left out of the report.
func Evaluate(ctx context.Context, cases []TestCase, agent Asker, judges Judges, opts ...Option) *Report {
	o := options{observer: nopObserver{}, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Total:     len(cases),
	}
	o.logger.Info("Evaluation started", zap.String("run_id", report.RunID), zap.Int("cases", len(cases)))

	for i, tc := range cases {
		if ctx.Err() != nil {
			report.Interrupted = true
			break
		}
		o.observer.OnCaseStart(i, tc.Question)

		start := time.Now()
		result, err := runCase(ctx, i, tc, agent, judges)
		result.Duration = time.Since(start)
		if err != nil && ctx.Err() != nil {
			report.Interrupted = true
			o.observer.OnCaseError(i, err)
			break
		}
		if err != nil {
			result.Error = err.Error()
			o.logger.Warn("Test case errored", zap.Int("case", i+1), zap.Error(err))
			o.observer.OnCaseError(i, err)
		} else {
			o.observer.OnCaseDone(i, result.Correctness.Value, result.Helpfulness.Value)
		}
		report.Cases = append(report.Cases, result)
	}

	report.aggregate()
	report.Duration = time.Since(report.StartedAt)
	o.logger.Info("Evaluation finished",
		zap.String("run_id", report.RunID),
		zap.Int("scored", report.Scored),
		zap.Int("errored", report.Errored),
		zap.Bool("interrupted", report.Interrupted),
		zap.Duration("elapsed", report.Duration))
	return report
}

func runCase(ctx context.Context, index int, tc TestCase, agent Asker, judges Judges) (CaseResult, error) {
	result := CaseResult{Index: index, Question: tc.Question}
	output, err := agent.Ask(ctx, tc.Question)
	if err != nil {
		return result, fmt.Errorf("agent: %w", err)
	}
	result.Output = output

	correctness, err := judges.Correctness(ctx, tc.Question, output, tc.ReferenceAnswer)
	if err != nil {
		return result, fmt.Errorf("correctness: %w", err)
	}
	helpfulness, err := judges.Helpfulness(ctx, tc.Question, output)
	if err != nil {
		return result, fmt.Errorf("helpfulness: %w", err)
	}

	result.Correctness = correctness
	result.Helpfulness = helpfulness
	return result, nil
}
