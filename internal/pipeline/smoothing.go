package pipeline

import (
	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/motion"
)

// Smooth is the reserved corner-smoothing pass between the first
// (jerk-unenforced) motion planning pass and corner-arc insertion. The
// original source carried a config surface for this stage (min_angle,
// new_angle) but the smoothing algorithm itself was never completed, so
// this pass returns the stream unchanged whatever its configuration. It
// exists as a named stage, rather than being
// skipped entirely, so a future smoothing implementation has a single
// place to attach without reshuffling the driver's stage order.
func Smooth(commands []motion.Command, cfg config.SmoothingConfig) []motion.Command {
	if !cfg.Enable {
		return commands
	}
	return commands
}
