// Package diagnostics replaces the original implementation's process-wide
// failed_jerk_tests global with a per-run record threaded through the
// pipeline by pointer, per the Design Notes' explicit instruction.
package diagnostics

import "github.com/google/uuid"

// Sink accumulates counters for a single pipeline run. It is created by the
// driver, passed by pointer into the stages that need it, and returned to
// the caller (and report writer) once the run completes.
type Sink struct {
	// RunID identifies this run in logs and report output, the same short
	// form the teacher's model package uses for part/inventory IDs.
	RunID string
	// FailedJerkTests counts joins where no jerk-feasible exit feedrate
	// existed, so the planner forced exit_feedrate to zero.
	FailedJerkTests int
	// RejectedArcs counts corner-arc candidates that failed the feasibility
	// test (radius reduced below arc.min_radius).
	RejectedArcs int
	// DegenerateGeometry counts geometric degeneracies recovered locally by
	// retaining the original segment (zero-length carve, unsolvable circle
	// fit).
	DegenerateGeometry int
	// UnknownCommands counts input lines whose command word matched no
	// dispatch entry.
	UnknownCommands int
	// AccumulatorsEmitted counts arc_accumulator primitives successfully
	// solved and emitted by the arc accumulator stage.
	AccumulatorsEmitted int
}

// New returns a zeroed Sink, stamped with a fresh run ID, ready for a
// single run.
func New() *Sink {
	return &Sink{RunID: uuid.New().String()[:8]}
}
