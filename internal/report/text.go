package report

import "fmt"

// Text renders the always-on plain-text run summary the CLI writes to
// stderr regardless of whether a PDF/Excel report was also requested.
func (s Summary) Text() string {
	return fmt.Sprintf(
		"[%s] travel %.2f mm, extrude %.2f mm (%.4f mm^3); rejected arcs %d, failed jerk tests %d, degenerate geometry %d, unknown commands %d, accumulated arcs %d\n",
		s.Sink.RunID, s.TravelDistance, s.ExtrudeDistance, s.ExtrudeVolume,
		s.Sink.RejectedArcs, s.Sink.FailedJerkTests, s.Sink.DegenerateGeometry,
		s.Sink.UnknownCommands, s.Sink.AccumulatorsEmitted,
	)
}
