// Package relocate moves finished artifacts to their final destination
package relocate

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/packwright/packwright/internal/taskgroup"
	"github.com/packwright/packwright/pkg/config"
	"github.com/packwright/packwright/pkg/fsutil"
	"github.com/packwright/packwright/pkg/logger"
	"github.com/packwright/packwright/pkg/types"
)

// Relocator copies artifacts (archived or raw) out of scratch space
// into the configured export destination.
type Relocator struct {
	cfg    *config.Config
	logger logger.Logger
}

// New creates a relocator
func New(cfg *config.Config, log logger.Logger) *Relocator {
	return &Relocator{
		cfg:    cfg,
		logger: log,
	}
}

// Relocate moves every artifact concurrently and joins before
// returning, with the same fail-together policy as packaging. In
// archived mode an artifact without an archive is skipped with a
// warning; siblings are unaffected. In raw mode the build directory is
// copied recursively and the artifact's paths are updated to the new
// location.
func (r *Relocator) Relocate(ctx context.Context, artifacts []types.BuildArtifact) error {
	group, _ := taskgroup.New(ctx, r.logger)

	for i := range artifacts {
		artifact := &artifacts[i]
		group.Go(func() error {
			return r.relocateOne(artifact)
		})
	}

	return group.Wait()
}

func (r *Relocator) relocateOne(artifact *types.BuildArtifact) error {
	log := r.logger.WithPreset(artifact.Preset.Name)
	destDir := r.destination(artifact)

	if r.cfg.Archive {
		if !artifact.Archived() {
			log.Warn("Artifact has no archive, skipping relocation")
			return nil
		}
		dest := filepath.Join(destDir, filepath.Base(artifact.ArchivePath))
		if err := fsutil.CopyFile(artifact.ArchivePath, dest); err != nil {
			return fmt.Errorf("relocating archive for preset %q: %w", artifact.Preset.Name, err)
		}
		log.Success("Archive relocated", logger.WithField("destination", dest))
		return nil
	}

	dest := filepath.Join(destDir, artifact.SanitizedName)
	if err := fsutil.CopyDirectory(artifact.Directory, dest); err != nil {
		return fmt.Errorf("relocating build for preset %q: %w", artifact.Preset.Name, err)
	}

	// later consumers must observe the moved paths, not the scratch ones
	rel, err := filepath.Rel(artifact.Directory, artifact.ExecutablePath)
	if err == nil {
		artifact.ExecutablePath = filepath.Join(dest, rel)
	}
	artifact.Directory = dest

	log.Success("Build relocated", logger.WithField("destination", dest))
	return nil
}

// destination resolves the output directory for one artifact: the
// preset's own export path layout when mirroring is enabled, otherwise
// the single configured output directory.
func (r *Relocator) destination(artifact *types.BuildArtifact) string {
	if r.cfg.UsePresetPath {
		return filepath.Join(r.cfg.ProjectPath, filepath.Dir(artifact.Preset.ExportPath))
	}
	return r.cfg.OutputPath
}
