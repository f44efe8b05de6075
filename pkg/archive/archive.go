// Package archive drives the external zip archiver
package archive

import (
	"context"
	"path/filepath"

	"github.com/packwright/packwright/pkg/fsutil"
	"github.com/packwright/packwright/pkg/process"
)

// Archiver creates and extracts zip archives by invoking the system
// archiver. Compression itself is fully delegated; errors from the
// external process propagate unmodified.
type Archiver struct {
	runner process.Runner
}

// New creates an archiver backed by the given runner
func New(runner process.Runner) *Archiver {
	return &Archiver{runner: runner}
}

// Create compresses dir into zipPath. With stripRoot the archive holds
// dir's entries at the top level; without it the archive holds dir
// itself as its single root folder.
func (a *Archiver) Create(ctx context.Context, zipPath, dir string, stripRoot bool) error {
	absZip, err := filepath.Abs(zipPath)
	if err != nil {
		return err
	}

	if stripRoot {
		return a.runner.RunIn(ctx, dir, "zip", "-q", "-r", absZip, ".")
	}
	return a.runner.RunIn(ctx, filepath.Dir(dir), "zip", "-q", "-r", absZip, filepath.Base(dir))
}

// Extract unpacks zipPath into destDir, creating it if needed.
func (a *Archiver) Extract(ctx context.Context, zipPath, destDir string) error {
	if err := fsutil.EnsureDirectory(destDir); err != nil {
		return err
	}
	return a.runner.Run(ctx, "unzip", "-q", "-o", zipPath, "-d", destDir)
}
