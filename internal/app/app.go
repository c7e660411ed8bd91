package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/riskgridgo/internal/ctxlog"
	"github.com/vk/riskgridgo/internal/gsim"
	"github.com/vk/riskgridgo/internal/hcl"
	"github.com/vk/riskgridgo/internal/logictree"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	input  *hcl.Input
	tree   *logictree.Tree
	gsims  map[string]gsim.Model
}

// NewApp is the constructor for the main application. It loads and validates
// the job up front: the logic trees are expanded-checked and every GSIM name
// resolved before any task can be scheduled, so model errors abort startup.
func NewApp(outW io.Writer, cfg *Config, loader *hcl.Loader) *App {
	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	if err != nil {
		panic(fmt.Errorf("invalid logging configuration: %w", err))
	}
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	input, err := loader.Load(ctx, cfg.JobPath)
	if err != nil {
		// A failure to load the job is a fatal startup error.
		panic(fmt.Errorf("failed to load job: %w", err))
	}
	logger.Debug("Job loaded and translated into domain model.")

	tree, err := logictree.New(input.Branches, input.GsimSets)
	if err != nil {
		panic(fmt.Errorf("invalid logic tree: %w", err))
	}
	logger.Debug("Logic trees validated.", "source_model_branches", len(tree.Branches))

	// Strict parity check between logic-tree GSIM names and Go implementations.
	registry := gsim.New()
	gsims, err := registry.Resolve(tree.ModelNames())
	if err != nil {
		panic(err)
	}
	logger.Debug("Ground-motion models resolved.", "count", len(gsims))

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
		input:  input,
		tree:   tree,
		gsims:  gsims,
	}
}

// Input returns the loaded job. This is primarily for testing.
func (a *App) Input() *hcl.Input {
	return a.input
}
