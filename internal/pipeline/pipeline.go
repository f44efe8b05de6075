// Package pipeline orchestrates the build-and-package run
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/packwright/packwright/pkg/archive"
	"github.com/packwright/packwright/pkg/config"
	"github.com/packwright/packwright/pkg/export"
	"github.com/packwright/packwright/pkg/logger"
	"github.com/packwright/packwright/pkg/notifier"
	"github.com/packwright/packwright/pkg/packager"
	"github.com/packwright/packwright/pkg/presets"
	"github.com/packwright/packwright/pkg/process"
	"github.com/packwright/packwright/pkg/relocate"
	"github.com/packwright/packwright/pkg/toolchain"
	"github.com/packwright/packwright/pkg/types"
)

// Pipeline drives one full run: provision the toolchain once, export
// presets sequentially, then fan out packaging and relocation across
// artifacts. Any sentinel error is fatal and surfaces to the caller;
// per-artifact conditions are logged and skipped.
type Pipeline struct {
	cfg      *config.Config
	logger   logger.Logger
	runner   process.Runner
	notifier *notifier.PipelineNotifier
}

// New creates a pipeline with default collaborators
func New(cfg *config.Config, log logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		logger:   log,
		runner:   process.NewExecRunner(log),
		notifier: notifier.New(cfg.Notify, log),
	}
}

// NewWithRunner creates a pipeline with a custom process runner,
// used by tests to stand in for the engine and archiver.
func NewWithRunner(cfg *config.Config, log logger.Logger, runner process.Runner) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		logger:   log,
		runner:   runner,
		notifier: notifier.New(cfg.Notify, log),
	}
}

// Run executes the full pipeline
func (p *Pipeline) Run(ctx context.Context) error {
	started := time.Now()
	runID := uuid.NewString()
	log := p.logger
	log.Info("Pipeline starting", logger.WithField("run_id", runID))

	artifacts, err := p.run(ctx, log)
	if err != nil {
		log.Error("Pipeline failed", logger.WithField("error", err))
		p.notifier.NotifyFailure(err)
		return err
	}

	log.Success("Pipeline finished",
		logger.WithField("artifacts", len(artifacts)),
		logger.WithField("duration", time.Since(started).Round(time.Second)))
	p.notifier.NotifySuccess(len(artifacts), time.Since(started))
	return nil
}

func (p *Pipeline) run(ctx context.Context, log logger.Logger) ([]types.BuildArtifact, error) {
	targets, err := presets.Load(p.cfg.ProjectPath)
	if err != nil {
		return nil, err
	}
	log.Info("Presets loaded", logger.WithField("count", len(targets)))

	archiver := archive.New(p.runner)

	tc, err := toolchain.NewProvisioner(p.cfg, log, p.runner, archiver).Provision(ctx)
	if err != nil {
		return nil, err
	}

	artifacts, err := export.NewExecutor(p.cfg, log, p.runner).Run(ctx, targets, tc)
	if err != nil {
		return nil, err
	}

	if p.cfg.Archive {
		pack := packager.New(p.cfg, log, archiver, tc.ArchivesDir())
		if err := pack.PackageAll(ctx, artifacts); err != nil {
			return nil, err
		}
	}

	if err := relocate.New(p.cfg, log).Relocate(ctx, artifacts); err != nil {
		return nil, err
	}

	return artifacts, nil
}
