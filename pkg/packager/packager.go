// Package packager archives artifacts and assembles SDK content
package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/packwright/packwright/internal/taskgroup"
	"github.com/packwright/packwright/pkg/archive"
	"github.com/packwright/packwright/pkg/config"
	"github.com/packwright/packwright/pkg/fsutil"
	"github.com/packwright/packwright/pkg/logger"
	"github.com/packwright/packwright/pkg/types"
)

// ErrPackagingFailed indicates the archiver or extractor failed for one
// artifact. Fatal to that artifact's task; sibling tasks still complete.
var ErrPackagingFailed = errors.New("artifact packaging failed")

// Packager turns build artifacts into compressed archives. Desktop
// platforms additionally receive third-party SDK content: macOS bundles
// are unpacked, injected and repacked, other desktop platforms get the
// SDK library copied in before compression.
type Packager struct {
	cfg         *config.Config
	logger      logger.Logger
	archiver    *archive.Archiver
	archivesDir string
}

// New creates a packager writing archives under archivesDir
func New(cfg *config.Config, log logger.Logger, archiver *archive.Archiver, archivesDir string) *Packager {
	return &Packager{
		cfg:         cfg,
		logger:      log,
		archiver:    archiver,
		archivesDir: archivesDir,
	}
}

// PackageAll packages every artifact concurrently, one task per
// artifact, and joins before returning. Policy is fail-together: a
// failing task never interrupts its siblings; Wait reports the first
// error after all tasks finish. Artifacts own disjoint scratch paths,
// so no locking is needed beyond the idempotent creation of the shared
// archives root.
func (p *Packager) PackageAll(ctx context.Context, artifacts []types.BuildArtifact) error {
	group, _ := taskgroup.New(ctx, p.logger)

	// tasks get the parent context, not the group's: a failing sibling
	// must not cancel in-flight archiver invocations
	for i := range artifacts {
		artifact := &artifacts[i]
		group.Go(func() error {
			return p.packageOne(ctx, artifact)
		})
	}

	return group.Wait()
}

func (p *Packager) packageOne(ctx context.Context, artifact *types.BuildArtifact) error {
	log := p.logger.WithPreset(artifact.Preset.Name)

	if err := fsutil.EnsureDirectory(p.archivesDir); err != nil {
		return fmt.Errorf("%w: %v", ErrPackagingFailed, err)
	}

	archivePath := filepath.Join(p.archivesDir, artifact.SanitizedName+".zip")

	if artifact.Preset.Platform == types.PlatformMacOS {
		if err := p.assembleMacOSBundle(ctx, artifact, archivePath, log); err != nil {
			return err
		}
		if artifact.Archived() {
			return nil
		}
	}

	// the existence check must come before SDK placement: MoveFile
	// consumes the source library, so a second run would fail on it
	if fsutil.FileExists(archivePath) {
		log.Info("Archive already present, skipping compression")
		artifact.ArchivePath = archivePath
		return nil
	}

	if lib, ok := p.cfg.SDKLibrary(artifact.Preset.Platform); ok &&
		artifact.Preset.Platform != types.PlatformMacOS && artifact.Preset.Platform.IsDesktop() {
		if err := fsutil.MoveFile(lib, filepath.Join(artifact.Directory, filepath.Base(lib))); err != nil {
			return fmt.Errorf("%w: placing SDK library: %v", ErrPackagingFailed, err)
		}
		log.Debug("SDK library placed", logger.WithField("library", filepath.Base(lib)))
	}

	if err := p.archiver.Create(ctx, archivePath, artifact.Directory, p.cfg.StripRoot); err != nil {
		return fmt.Errorf("%w: %v", ErrPackagingFailed, err)
	}

	artifact.ArchivePath = archivePath
	log.Success("Artifact archived", logger.WithField("archive", archivePath))
	return nil
}

// assembleMacOSBundle handles macOS exports that produced a flat zip
// instead of a .app bundle: the export zip is unpacked into the build
// directory, the SDK library and its identity file are injected under
// Contents/MacOS, and the bundle is compressed back under the original
// archive name before being copied to the deterministic archive path.
// Exports that already contain a .app directory fall through to plain
// compression.
func (p *Packager) assembleMacOSBundle(ctx context.Context, artifact *types.BuildArtifact, archivePath string, log logger.Logger) error {
	exportZip := artifact.ExecutablePath
	if !fsutil.FileExists(exportZip) || filepath.Ext(exportZip) != ".zip" {
		return nil
	}

	if fsutil.FileExists(archivePath) {
		log.Info("Archive already present, skipping bundle assembly")
		artifact.ArchivePath = archivePath
		return nil
	}

	if err := p.archiver.Extract(ctx, exportZip, artifact.Directory); err != nil {
		return fmt.Errorf("%w: unpacking export: %v", ErrPackagingFailed, err)
	}
	if err := os.Remove(exportZip); err != nil {
		return fmt.Errorf("%w: %v", ErrPackagingFailed, err)
	}

	bundles, err := fsutil.FindByExtension(artifact.Directory, ".app")
	if err != nil {
		return fmt.Errorf("%w: scanning for .app bundle: %v", ErrPackagingFailed, err)
	}
	if len(bundles) == 0 {
		return fmt.Errorf("%w: no .app bundle in macOS export", ErrPackagingFailed)
	}
	bundle := bundles[0]

	binDir := filepath.Join(bundle, "Contents", "MacOS")
	if lib, ok := p.cfg.SDKLibrary(types.PlatformMacOS); ok {
		if err := fsutil.CopyFile(lib, filepath.Join(binDir, filepath.Base(lib))); err != nil {
			return fmt.Errorf("%w: injecting SDK library: %v", ErrPackagingFailed, err)
		}
	}
	if p.cfg.SDKIdentityFile != "" {
		if err := fsutil.CopyFile(p.cfg.SDKIdentityFile, filepath.Join(binDir, filepath.Base(p.cfg.SDKIdentityFile))); err != nil {
			return fmt.Errorf("%w: injecting SDK identity file: %v", ErrPackagingFailed, err)
		}
	}

	if err := p.archiver.Create(ctx, exportZip, bundle, false); err != nil {
		return fmt.Errorf("%w: repacking bundle: %v", ErrPackagingFailed, err)
	}

	if err := fsutil.CopyFile(exportZip, archivePath); err != nil {
		return fmt.Errorf("%w: %v", ErrPackagingFailed, err)
	}

	artifact.ArchivePath = archivePath
	log.Success("Bundle reassembled and archived", logger.WithField("archive", archivePath))
	return nil
}
