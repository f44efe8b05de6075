// Package toolchain downloads and prepares the engine for headless export
package toolchain

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"
	"github.com/packwright/packwright/internal/taskgroup"
	"github.com/packwright/packwright/pkg/archive"
	"github.com/packwright/packwright/pkg/config"
	"github.com/packwright/packwright/pkg/fsutil"
	"github.com/packwright/packwright/pkg/logger"
	"github.com/packwright/packwright/pkg/process"
	"github.com/packwright/packwright/pkg/types"
)

// ErrAcquisitionFailed indicates the toolchain could not be downloaded
// or unpacked. Fatal; the caller may retry the whole provision step.
var ErrAcquisitionFailed = errors.New("toolchain acquisition failed")

//go:embed templates/editor_settings-3.tres
var settingsTemplateCurrent []byte

//go:embed templates/editor_settings-legacy.xml
var settingsTemplateLegacy []byte

// Toolchain is the provisioned engine, ready for headless invocation.
// Built once per run and read-only afterwards; scratch directories are
// ephemeral and cleaned up by process exit.
type Toolchain struct {
	WorkDir    string
	BinDir     string
	BinaryPath string
	Version    string
	Major      types.EngineMajor
}

// BuildsDir is the scratch root holding one build directory per preset
func (t *Toolchain) BuildsDir() string {
	return filepath.Join(t.WorkDir, "builds")
}

// ArchivesDir is the shared output root for final archives
func (t *Toolchain) ArchivesDir() string {
	return filepath.Join(t.WorkDir, "archives")
}

// ProjectFile returns the engine project file name for this generation
func (t *Toolchain) ProjectFile() string {
	if t.Major == types.EngineLegacy {
		return "engine.cfg"
	}
	return "project.godot"
}

// Provisioner acquires the engine and its export templates
type Provisioner struct {
	cfg      *config.Config
	logger   logger.Logger
	runner   process.Runner
	archiver *archive.Archiver
	homeDir  string
}

// NewProvisioner creates a provisioner. Engine data and settings roots
// are derived from the current user's home directory.
func NewProvisioner(cfg *config.Config, log logger.Logger, runner process.Runner, archiver *archive.Archiver) *Provisioner {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return &Provisioner{
		cfg:      cfg,
		logger:   log,
		runner:   runner,
		archiver: archiver,
		homeDir:  home,
	}
}

// NewProvisionerAt creates a provisioner with an explicit home root,
// used by tests to keep engine settings out of the real home directory.
func NewProvisionerAt(cfg *config.Config, log logger.Logger, runner process.Runner, archiver *archive.Archiver, home string) *Provisioner {
	return &Provisioner{
		cfg:      cfg,
		logger:   log,
		runner:   runner,
		archiver: archiver,
		homeDir:  home,
	}
}

// Provision downloads the engine and templates, locates the real
// binary inside the release archive, places templates where the engine
// expects them and materializes editor settings. Steps are independently
// retryable by re-running Provision; nothing retries internally.
func (p *Provisioner) Provision(ctx context.Context) (*Toolchain, error) {
	workDir := p.cfg.Workdir
	if workDir == "" {
		workDir = filepath.Join(os.TempDir(), "packwright-"+uuid.NewString())
	}
	for _, dir := range []string{
		workDir,
		filepath.Join(workDir, "builds"),
		filepath.Join(workDir, "archives"),
		filepath.Join(workDir, "bin"),
	} {
		if err := fsutil.EnsureDirectory(dir); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAcquisitionFailed, err)
		}
	}

	engineZip := filepath.Join(workDir, "engine.zip")
	templatesZip := filepath.Join(workDir, "templates.zip")

	group, gctx := taskgroup.New(ctx, p.logger)
	group.Go(func() error { return download(gctx, p.cfg.EngineURL, engineZip) })
	group.Go(func() error { return download(gctx, p.cfg.TemplatesURL, templatesZip) })
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAcquisitionFailed, err)
	}
	p.logger.Info("Toolchain downloaded",
		logger.WithField("engine", p.cfg.EngineURL),
		logger.WithField("templates", p.cfg.TemplatesURL))

	extractDir := filepath.Join(workDir, "engine")
	if err := p.archiver.Extract(ctx, engineZip, extractDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAcquisitionFailed, err)
	}

	located, err := LocateExecutable(extractDir)
	if err != nil {
		return nil, err
	}

	binDir := filepath.Join(workDir, "bin")
	binaryPath := filepath.Join(binDir, "godot")
	if err := fsutil.MoveFile(located, binaryPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAcquisitionFailed, err)
	}
	if err := os.Chmod(binaryPath, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAcquisitionFailed, err)
	}
	if err := process.RegisterSearchPath(binDir); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAcquisitionFailed, err)
	}

	out, err := p.runner.RunOutput(ctx, binaryPath, "--version")
	if err != nil {
		return nil, fmt.Errorf("%w: version query: %v", ErrAcquisitionFailed, err)
	}
	version, err := NormalizeVersion(out)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Engine ready", logger.WithField("version", version))

	if err := p.installTemplates(ctx, templatesZip, version); err != nil {
		return nil, fmt.Errorf("%w: templates: %v", ErrAcquisitionFailed, err)
	}

	if err := p.materializeEditorSettings(); err != nil {
		return nil, err
	}

	return &Toolchain{
		WorkDir:    workDir,
		BinDir:     binDir,
		BinaryPath: binaryPath,
		Version:    version,
		Major:      p.cfg.EngineMajor,
	}, nil
}

// installTemplates places the export templates at the version-keyed
// path the engine resolves. The legacy layout needs a rename dance: the
// template zip carries a "templates" root folder, so it is extracted to
// a staging dir and the root folder is renamed into place. The current
// layout extracts directly into the flat export_templates root.
func (p *Provisioner) installTemplates(ctx context.Context, templatesZip, version string) error {
	if p.cfg.EngineMajor == types.EngineLegacy {
		dest := filepath.Join(p.homeDir, ".godot", "templates", version)
		if err := fsutil.EnsureDirectory(filepath.Dir(dest)); err != nil {
			return err
		}
		staging := filepath.Join(filepath.Dir(templatesZip), "templates-staging")
		if err := p.archiver.Extract(ctx, templatesZip, staging); err != nil {
			return err
		}
		defer os.RemoveAll(staging)

		zipRoot := filepath.Join(staging, "templates")
		if !fsutil.DirectoryExists(zipRoot) {
			zipRoot = staging
		}
		return os.Rename(zipRoot, dest)
	}

	dest := filepath.Join(p.homeDir, ".local", "share", "godot", "export_templates", version)
	return p.archiver.Extract(ctx, templatesZip, dest)
}

// materializeEditorSettings writes the bundled settings template only
// if no settings file exists yet; user settings are never overwritten.
// The Windows cross-toolchain lines are appended unconditionally when
// configured, which tolerates duplicates across runs.
func (p *Provisioner) materializeEditorSettings() error {
	path := p.settingsPath()
	if err := fsutil.EnsureDirectory(filepath.Dir(path)); err != nil {
		return err
	}

	if !fsutil.FileExists(path) {
		template := settingsTemplateCurrent
		if p.cfg.EngineMajor == types.EngineLegacy {
			template = settingsTemplateLegacy
		}
		if err := os.WriteFile(path, template, 0644); err != nil {
			return err
		}
		p.logger.Debug("Editor settings materialized", logger.WithField("path", path))
	}

	if p.cfg.WinePath == "" {
		return nil
	}
	return fsutil.AppendLines(path, []string{
		fmt.Sprintf("export/windows/rcedit = %s", strconv.Quote(filepath.Join(p.cfg.WinePath, "rcedit.exe"))),
		fmt.Sprintf("export/windows/wine = %s", strconv.Quote(filepath.Join(p.cfg.WinePath, "bin", "wine"))),
	})
}

func (p *Provisioner) settingsPath() string {
	if p.cfg.EngineMajor == types.EngineLegacy {
		return filepath.Join(p.homeDir, ".godot", "editor_settings.xml")
	}
	return filepath.Join(p.homeDir, ".config", "godot", "editor_settings-3.tres")
}

// download fetches url into dest. Timeouts are the transport's concern;
// the pipeline models none of its own.
func download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return err
	}
	return file.Close()
}
