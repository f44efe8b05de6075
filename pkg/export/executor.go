// Package export invokes the engine's headless export per preset
package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/packwright/packwright/pkg/config"
	"github.com/packwright/packwright/pkg/fsutil"
	"github.com/packwright/packwright/pkg/logger"
	"github.com/packwright/packwright/pkg/process"
	"github.com/packwright/packwright/pkg/toolchain"
	"github.com/packwright/packwright/pkg/types"
)

// ErrExportFailed indicates an engine invocation returned non-zero.
// Fatal; remaining targets are abandoned and partial results discarded.
var ErrExportFailed = errors.New("engine export failed")

// Executor runs the engine once per export target. Invocations are
// strictly sequential: the engine is a single-instance external process
// and overlapping runs are never attempted.
type Executor struct {
	cfg    *config.Config
	logger logger.Logger
	runner process.Runner
}

// NewExecutor creates an export executor
func NewExecutor(cfg *config.Config, log logger.Logger, runner process.Runner) *Executor {
	return &Executor{
		cfg:    cfg,
		logger: log,
		runner: runner,
	}
}

// Run exports every target in order. Targets without an export path are
// skipped with a warning; any non-zero engine exit aborts the whole run.
func (e *Executor) Run(ctx context.Context, targets []types.ExportTarget, tc *toolchain.Toolchain) ([]types.BuildArtifact, error) {
	artifacts := make([]types.BuildArtifact, 0, len(targets))

	for i := range targets {
		target := &targets[i]
		log := e.logger.WithPreset(target.Name)

		if target.ExportPath == "" {
			log.Warn("Preset has no export path, skipping")
			continue
		}

		artifact, err := e.exportOne(ctx, target, tc, log)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, *artifact)
	}

	return artifacts, nil
}

func (e *Executor) exportOne(ctx context.Context, target *types.ExportTarget, tc *toolchain.Toolchain, log logger.Logger) (*types.BuildArtifact, error) {
	sanitized := types.SanitizeName(target.Name)
	buildDir := filepath.Join(tc.BuildsDir(), sanitized)
	if err := fsutil.EnsureDirectory(buildDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	outPath := filepath.Join(buildDir, filepath.Base(target.ExportPath))
	args := e.buildArgs(target, tc, outPath)

	log.Info("Exporting preset", logger.WithField("platform", target.Platform))
	if err := e.runner.Run(ctx, tc.BinaryPath, args...); err != nil {
		return nil, fmt.Errorf("%w: preset %q: %v", ErrExportFailed, target.Name, err)
	}

	entries, err := fsutil.CountEntries(buildDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	log.Success("Export finished", logger.WithField("entries", entries))

	return &types.BuildArtifact{
		Preset:              target,
		SanitizedName:       sanitized,
		Directory:           buildDir,
		ExecutablePath:      e.finalOutPath(tc, outPath),
		DirectoryEntryCount: entries,
	}, nil
}

// buildArgs derives the engine invocation for one target. The export
// mode flag depends on engine generation, debug and pack-only state;
// the current generation additionally runs windowless and packs to a
// .pck file when pack-only is requested.
func (e *Executor) buildArgs(target *types.ExportTarget, tc *toolchain.Toolchain, outPath string) []string {
	projectFile := filepath.Join(e.cfg.ProjectPath, tc.ProjectFile())

	var args []string
	if tc.Major == types.EngineLegacy {
		switch {
		case e.cfg.PackOnly:
			args = []string{projectFile, "-export_pck"}
		case e.cfg.Debug:
			args = []string{projectFile, "-export_debug"}
		default:
			args = []string{projectFile, "-export"}
		}
	} else {
		mode := "--export"
		if e.cfg.Debug {
			mode = "--export-debug"
		}
		args = []string{projectFile, "--no-window", mode}
	}

	args = append(args, target.Name, e.finalOutPath(tc, outPath))
	if e.cfg.Verbose {
		args = append(args, "-v")
	}
	return args
}

// finalOutPath appends .pck for current-generation pack-only exports
func (e *Executor) finalOutPath(tc *toolchain.Toolchain, outPath string) string {
	if e.cfg.PackOnly && tc.Major == types.EngineCurrent {
		return outPath + ".pck"
	}
	return outPath
}
