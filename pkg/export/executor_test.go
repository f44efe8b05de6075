package export_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/packwright/packwright/pkg/config"
	"github.com/packwright/packwright/pkg/export"
	"github.com/packwright/packwright/pkg/logger"
	"github.com/packwright/packwright/pkg/toolchain"
	"github.com/packwright/packwright/pkg/types"
)

// captureRunner records invocations; Run fails when fail is set.
type captureRunner struct {
	calls [][]string
	fail  bool
}

func (c *captureRunner) Run(ctx context.Context, name string, args ...string) error {
	c.calls = append(c.calls, append([]string{name}, args...))
	if c.fail {
		return fmt.Errorf("exit status 1")
	}
	return nil
}

func (c *captureRunner) RunIn(ctx context.Context, dir, name string, args ...string) error {
	return c.Run(ctx, name, args...)
}

func (c *captureRunner) RunOutput(ctx context.Context, name string, args ...string) (string, error) {
	return "", c.Run(ctx, name, args...)
}

func testLogger() logger.Logger {
	return logger.CreateLoggerWithOutput("error", discard{})
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newToolchain(t *testing.T, major types.EngineMajor) *toolchain.Toolchain {
	t.Helper()
	return &toolchain.Toolchain{
		WorkDir:    t.TempDir(),
		BinaryPath: "/usr/bin/godot",
		Version:    "3.2.2.stable",
		Major:      major,
	}
}

func TestRun_FlagMatrix(t *testing.T) {
	cases := []struct {
		name      string
		major     types.EngineMajor
		debug     bool
		packOnly  bool
		wantFlags []string
		wantPck   bool
	}{
		{"legacy release", types.EngineLegacy, false, false, []string{"-export"}, false},
		{"legacy debug", types.EngineLegacy, true, false, []string{"-export_debug"}, false},
		{"legacy pack-only release", types.EngineLegacy, false, true, []string{"-export_pck"}, false},
		{"legacy pack-only debug", types.EngineLegacy, true, true, []string{"-export_pck"}, false},
		{"current release", types.EngineCurrent, false, false, []string{"--no-window", "--export"}, false},
		{"current debug", types.EngineCurrent, true, false, []string{"--no-window", "--export-debug"}, false},
		{"current pack-only release", types.EngineCurrent, false, true, []string{"--no-window", "--export"}, true},
		{"current pack-only debug", types.EngineCurrent, true, true, []string{"--no-window", "--export-debug"}, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := &config.Config{
				ProjectPath: "game",
				EngineMajor: c.major,
				Debug:       c.debug,
				PackOnly:    c.packOnly,
			}
			runner := &captureRunner{}
			tc := newToolchain(t, c.major)

			targets := []types.ExportTarget{{
				Name:       "Windows Desktop",
				Platform:   types.PlatformWindows,
				ExportPath: "win/Game.exe",
			}}

			artifacts, err := export.NewExecutor(cfg, testLogger(), runner).Run(context.Background(), targets, tc)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if len(artifacts) != 1 {
				t.Fatalf("expected 1 artifact, got %d", len(artifacts))
			}
			if len(runner.calls) != 1 {
				t.Fatalf("expected 1 engine invocation, got %d", len(runner.calls))
			}

			call := runner.calls[0]
			if call[0] != tc.BinaryPath {
				t.Errorf("invoked %q, want %q", call[0], tc.BinaryPath)
			}

			projectFile := filepath.Join("game", tc.ProjectFile())
			if call[1] != projectFile {
				t.Errorf("project file arg = %q, want %q", call[1], projectFile)
			}

			gotFlags := call[2 : 2+len(c.wantFlags)]
			if !reflect.DeepEqual([]string(gotFlags), c.wantFlags) {
				t.Errorf("mode flags = %v, want %v", gotFlags, c.wantFlags)
			}

			rest := call[2+len(c.wantFlags):]
			if len(rest) != 2 {
				t.Fatalf("expected preset name and output path, got %v", rest)
			}
			if rest[0] != "Windows Desktop" {
				t.Errorf("preset arg = %q", rest[0])
			}

			outPath := rest[1]
			if c.wantPck && filepath.Ext(outPath) != ".pck" {
				t.Errorf("pack-only output path %q should end in .pck", outPath)
			}
			if !c.wantPck && filepath.Base(outPath) != "Game.exe" {
				t.Errorf("output path %q should end in Game.exe", outPath)
			}

			if artifacts[0].ExecutablePath != outPath {
				t.Errorf("artifact executable %q does not match invocation output %q",
					artifacts[0].ExecutablePath, outPath)
			}
		})
	}
}

func TestRun_VerboseFlagAppended(t *testing.T) {
	cfg := &config.Config{
		ProjectPath: "game",
		EngineMajor: types.EngineCurrent,
		Verbose:     true,
	}
	runner := &captureRunner{}
	tc := newToolchain(t, types.EngineCurrent)

	targets := []types.ExportTarget{{Name: "p", Platform: types.PlatformLinux, ExportPath: "linux/Game.x86_64"}}
	if _, err := export.NewExecutor(cfg, testLogger(), runner).Run(context.Background(), targets, tc); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	call := runner.calls[0]
	if call[len(call)-1] != "-v" {
		t.Errorf("expected trailing -v flag, got %v", call)
	}
}

func TestRun_SkipsEmptyExportPath(t *testing.T) {
	cfg := &config.Config{ProjectPath: "game", EngineMajor: types.EngineCurrent}
	runner := &captureRunner{}
	tc := newToolchain(t, types.EngineCurrent)

	targets := []types.ExportTarget{
		{Name: "no path", Platform: types.PlatformMacOS, ExportPath: ""},
		{Name: "linux", Platform: types.PlatformLinux, ExportPath: "linux/Game.x86_64"},
	}

	artifacts, err := export.NewExecutor(cfg, testLogger(), runner).Run(context.Background(), targets, tc)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(artifacts) != 1 {
		t.Fatalf("expected 1 artifact, got %d", len(artifacts))
	}
	if artifacts[0].Preset.Name != "linux" {
		t.Errorf("wrong preset exported: %q", artifacts[0].Preset.Name)
	}
	if len(runner.calls) != 1 {
		t.Errorf("skipped preset must not reach the engine, got %d calls", len(runner.calls))
	}
}

func TestRun_NonZeroExitAbortsRemainingTargets(t *testing.T) {
	cfg := &config.Config{ProjectPath: "game", EngineMajor: types.EngineCurrent}
	runner := &captureRunner{fail: true}
	tc := newToolchain(t, types.EngineCurrent)

	targets := []types.ExportTarget{
		{Name: "first", Platform: types.PlatformLinux, ExportPath: "a/Game.x86_64"},
		{Name: "second", Platform: types.PlatformWindows, ExportPath: "b/Game.exe"},
	}

	artifacts, err := export.NewExecutor(cfg, testLogger(), runner).Run(context.Background(), targets, tc)
	if !errors.Is(err, export.ErrExportFailed) {
		t.Fatalf("expected ErrExportFailed, got %v", err)
	}
	if artifacts != nil {
		t.Error("partial results must be discarded on fatal export failure")
	}
	if len(runner.calls) != 1 {
		t.Errorf("remaining targets must be abandoned, got %d calls", len(runner.calls))
	}
}
