// Package taskgroup provides short-lived concurrent task batches
package taskgroup

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/packwright/packwright/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// SafeGroup wraps errgroup.Group with panic recovery so a panicking
// task surfaces as an error instead of crashing the run. Tasks started
// with Go all run to completion; Wait returns the first error.
type SafeGroup struct {
	group  *errgroup.Group
	logger logger.Logger
}

// New creates a new SafeGroup with panic recovery
func New(ctx context.Context, log logger.Logger) (*SafeGroup, context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	return &SafeGroup{
		group:  g,
		logger: log,
	}, ctx
}

// Go runs the given function in a new goroutine with panic recovery.
// Any panic is converted to an error and logged with stack trace.
func (sg *SafeGroup) Go(fn func() error) {
	sg.group.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()

				panicErr := fmt.Errorf("task panic: %v", r)

				if sg.logger != nil {
					sg.logger.Error("Task panic recovered",
						logger.WithField("panic", r),
						logger.WithField("stack_trace", string(stack)))
				}

				err = panicErr
			}
		}()

		return fn()
	})
}

// Wait blocks until all tasks have completed and returns the first
// error encountered.
func (sg *SafeGroup) Wait() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if sg.logger != nil {
				sg.logger.Error("Panic during SafeGroup.Wait()",
					logger.WithField("panic", r),
					logger.WithField("stack_trace", string(debug.Stack())))
			}
			err = fmt.Errorf("wait panic: %v", r)
		}
	}()

	return sg.group.Wait()
}
