// Package notifier provides desktop notifications for pipeline runs
package notifier

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/packwright/packwright/pkg/logger"
)

// PipelineNotifier reports run completion to the desktop. Disabled by
// default; CI environments have no notification daemon.
type PipelineNotifier struct {
	enabled bool
	logger  logger.Logger
}

// New creates a pipeline notifier
func New(enabled bool, log logger.Logger) *PipelineNotifier {
	return &PipelineNotifier{
		enabled: enabled,
		logger:  log,
	}
}

// NotifySuccess notifies that a pipeline run finished
func (n *PipelineNotifier) NotifySuccess(artifacts int, duration time.Duration) {
	if !n.enabled {
		return
	}

	message := fmt.Sprintf("%d artifact(s) packaged in %s", artifacts, duration.Round(time.Second))
	n.send("✅ Packwright", message)
}

// NotifyFailure notifies that a pipeline run failed
func (n *PipelineNotifier) NotifyFailure(err error) {
	if !n.enabled {
		return
	}

	n.send("❌ Packwright", err.Error())
}

func (n *PipelineNotifier) send(title, message string) {
	if err := beeep.Notify(title, message, ""); err != nil {
		n.logger.Debug("Failed to send notification", logger.WithField("error", err))
	}
}
