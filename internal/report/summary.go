// Package report renders a completed run's diagnostics into the output
// formats the teacher's export package demonstrates: a PDF summary for a
// human reader, an Excel workbook of per-kind counts for further analysis,
// and an always-on plain-text line for the terminal.
package report

import (
	"github.com/ameisen/gcgg-go/internal/diagnostics"
	"github.com/ameisen/gcgg-go/internal/motion"
)

// Summary aggregates a run's command stream into the counts the report
// writers render: one entry per command kind, the travel/extrusion
// distance totals, and a copy of the run's diagnostics sink.
type Summary struct {
	KindCounts      map[motion.Kind]int
	TravelDistance  float64
	ExtrudeDistance float64
	ExtrudeVolume   float64
	Sink            diagnostics.Sink
}

// Summarize walks the final command stream and the run's sink into a
// Summary ready for rendering.
func Summarize(commands []motion.Command, sink *diagnostics.Sink) Summary {
	s := Summary{KindCounts: make(map[motion.Kind]int)}
	if sink != nil {
		s.Sink = *sink
	}
	for _, cmd := range commands {
		s.KindCounts[cmd.Kind()]++
		seg, ok := cmd.(motion.Segment)
		if !ok {
			continue
		}
		b := seg.Base()
		length := b.Start.Distance(b.End)
		if b.IsTravel {
			s.TravelDistance += length
		} else {
			s.ExtrudeDistance += length
		}
		if e, ok := cmd.(*motion.ExtrusionMove); ok {
			s.ExtrudeVolume += e.Extrude
		}
	}
	return s
}
