package archive_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/packwright/packwright/pkg/archive"
)

type call struct {
	dir  string
	name string
	args []string
}

type captureRunner struct {
	calls []call
}

func (c *captureRunner) Run(ctx context.Context, name string, args ...string) error {
	return c.RunIn(ctx, "", name, args...)
}

func (c *captureRunner) RunIn(ctx context.Context, dir, name string, args ...string) error {
	c.calls = append(c.calls, call{dir: dir, name: name, args: args})
	return nil
}

func (c *captureRunner) RunOutput(ctx context.Context, name string, args ...string) (string, error) {
	return "", c.Run(ctx, name, args...)
}

func TestCreate_KeepsRootFolder(t *testing.T) {
	runner := &captureRunner{}
	a := archive.New(runner)

	dir := filepath.Join(t.TempDir(), "build", "my_preset")
	zipPath := filepath.Join(t.TempDir(), "my_preset.zip")

	if err := a.Create(context.Background(), zipPath, dir, false); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	c := runner.calls[0]
	if c.name != "zip" {
		t.Errorf("invoked %q, want zip", c.name)
	}
	if c.dir != filepath.Dir(dir) {
		t.Errorf("working dir = %q, want parent of the target", c.dir)
	}
	if c.args[len(c.args)-1] != "my_preset" {
		t.Errorf("last arg = %q, want the root folder name", c.args[len(c.args)-1])
	}
}

func TestCreate_StripsRootFolder(t *testing.T) {
	runner := &captureRunner{}
	a := archive.New(runner)

	dir := filepath.Join(t.TempDir(), "build", "my_preset")
	zipPath := filepath.Join(t.TempDir(), "my_preset.zip")

	if err := a.Create(context.Background(), zipPath, dir, true); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	c := runner.calls[0]
	if c.dir != dir {
		t.Errorf("working dir = %q, want the target itself", c.dir)
	}
	if c.args[len(c.args)-1] != "." {
		t.Errorf("last arg = %q, want .", c.args[len(c.args)-1])
	}
}

func TestExtract(t *testing.T) {
	runner := &captureRunner{}
	a := archive.New(runner)

	dest := filepath.Join(t.TempDir(), "unpacked")
	if err := a.Extract(context.Background(), "/tmp/some.zip", dest); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	c := runner.calls[0]
	if c.name != "unzip" {
		t.Errorf("invoked %q, want unzip", c.name)
	}
	if c.args[len(c.args)-1] != dest {
		t.Errorf("destination arg = %q, want %q", c.args[len(c.args)-1], dest)
	}
}
