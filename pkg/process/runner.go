// Package process provides external process execution
package process

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/packwright/packwright/pkg/logger"
)

// Runner executes an external program and reports its outcome. Failure
// is a non-zero exit status or a spawn error; captured output is folded
// into the returned error for diagnosis.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	RunIn(ctx context.Context, dir, name string, args ...string) error
	RunOutput(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs programs via os/exec
type ExecRunner struct {
	logger logger.Logger
}

// NewExecRunner creates a runner that logs invocations at debug level
func NewExecRunner(log logger.Logger) *ExecRunner {
	return &ExecRunner{logger: log}
}

// Run executes a program and waits for it to finish. Stdout and stderr
// are captured together.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	_, err := r.RunOutput(ctx, name, args...)
	return err
}

// RunIn executes a program with dir as its working directory.
func (r *ExecRunner) RunIn(ctx context.Context, dir, name string, args ...string) error {
	_, err := r.run(ctx, dir, name, args...)
	return err
}

// RunOutput executes a program and returns its combined output.
func (r *ExecRunner) RunOutput(ctx context.Context, name string, args ...string) (string, error) {
	return r.run(ctx, "", name, args...)
}

func (r *ExecRunner) run(ctx context.Context, dir, name string, args ...string) (string, error) {
	if r.logger != nil {
		r.logger.Debug(fmt.Sprintf("Executing: %s %s", name, strings.Join(args, " ")))
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return output.String(), fmt.Errorf("%s failed: %w\n%s", name, err, output.String())
	}

	return output.String(), nil
}

// RegisterSearchPath prepends dir to the process PATH so later stages
// can invoke binaries placed there by short name.
func RegisterSearchPath(dir string) error {
	path := os.Getenv("PATH")
	if path == "" {
		return os.Setenv("PATH", dir)
	}
	for _, existing := range strings.Split(path, string(os.PathListSeparator)) {
		if existing == dir {
			return nil
		}
	}
	return os.Setenv("PATH", dir+string(os.PathListSeparator)+path)
}
