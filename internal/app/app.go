// Package app wires configuration, logging, the dataset store and the SQL
// agent together for the command-line entry points.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sqlassist/internal/config"
	"sqlassist/internal/dataset"
	"sqlassist/internal/inference"
	"sqlassist/internal/llm"
	"sqlassist/internal/logger"
)

// Options command-line overrides applied on top of the environment
type Options struct {
	EnvFile     string
	DatasetPath string // overrides SQLASSIST_DATASET
	SkipLoad    bool   // query the existing store without reloading the CSV
	CountTokens bool
	Debug       bool
}

// App the running process: config, logger and a ready agent
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Agent  *inference.SQLAgent
}

// New loads configuration, loads the dataset and builds the agent.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	if opts.DatasetPath != "" {
		cfg.DatasetPath = opts.DatasetPath
	}
	if opts.Debug {
		cfg.LogLevel = "debug"
	}

	log, err := logger.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, err
	}

	agent, err := buildAgent(ctx, cfg, opts, log)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return &App{Config: cfg, Logger: log, Agent: agent}, nil
}

func buildAgent(ctx context.Context, cfg *config.Config, opts Options, log *zap.Logger) (*inference.SQLAgent, error) {
	storeURI := dataset.StoreURI(cfg.DatasetPath)
	if !opts.SkipLoad {
		uri, err := dataset.Load(ctx, cfg.DatasetPath, log)
		if err != nil {
			return nil, fmt.Errorf("load dataset: %w", err)
		}
		storeURI = uri
	}
	if cfg.StoreURI != "" {
		storeURI = cfg.StoreURI
	}

	model, err := llm.CreateLLM(cfg.Agent)
	if err != nil {
		return nil, err
	}
	log.Info("Agent model", zap.String("model", cfg.Agent.DisplayName()))

	return inference.Build(ctx, storeURI, model, &inference.Config{
		TableName:     dataset.TableName(cfg.DatasetPath),
		MaxIterations: cfg.MaxIterations,
		LogMode:       cfg.LogMode,
		TopK:          cfg.TopK,
		UseDryRun:     cfg.DryRun,
		CountTokens:   opts.CountTokens,
	}, log)
}

// Close releases the store and flushes the logger
func (a *App) Close() error {
	err := a.Agent.Close()
	_ = a.Logger.Sync()
	return err
}
