package pipeline

import (
	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/diagnostics"
	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/ameisen/gcgg-go/internal/vecmath"
)

// InsertCornerArcs walks the linked stream and replaces every vertex whose
// incident segments bend beyond arc.min_angle with a circular fillet, per
// section 4.2. commands must already be Link-ed; the result needs Link
// run again before the planner's second pass.
func InsertCornerArcs(commands []motion.Command, cfg config.ArcConfig, sink *diagnostics.Sink) []motion.Command {
	if !cfg.Generate {
		return commands
	}

	out := make([]motion.Command, 0, len(commands))
	var lastSeg motion.Segment
	lastSegIdx := -1

	for _, cmd := range commands {
		seg, isSeg := cmd.(motion.Segment)
		if !isSeg {
			out = append(out, cmd)
			if cmd.IsDelayInducing() {
				lastSeg = nil
			}
			continue
		}

		// Arcs are never fused: a prior arc is skipped as a left candidate.
		if lastSeg != nil && lastSeg.Kind() != motion.KindArc && seg.Base().Prev == lastSeg {
			if arc, prevEnd, nextStart, ok := buildCornerArc(lastSeg, seg, cfg, sink); ok {
				lastSeg.Base().End = prevEnd
				seg.Base().Start = nextStart

				if lastSeg.Base().Length() < vecmath.ScalarEpsilon && lastSegIdx >= 0 {
					out[lastSegIdx] = arc
				} else {
					out = append(out, arc)
				}
				out = append(out, seg)
				lastSeg = seg
				lastSegIdx = len(out) - 1
				continue
			}
		}

		out = append(out, seg)
		lastSeg = seg
		lastSegIdx = len(out) - 1
	}
	return out
}

// buildCornerArc attempts to fillet the vertex between prev and next. It
// returns the arc, the carved endpoint of prev, and the carved startpoint
// of next.
func buildCornerArc(prev, next motion.Segment, cfg config.ArcConfig, sink *diagnostics.Sink) (*motion.Arc, vecmath.Vector3, vecmath.Vector3, bool) {
	pb, nb := prev.Base(), next.Base()
	corner := pb.End

	v1 := corner.Sub(pb.Start)
	v2 := nb.End.Sub(corner)
	len1, len2 := v1.Length(), v2.Length()
	if len1 == 0 || len2 == 0 {
		return nil, vecmath.Zero, vecmath.Zero, false
	}

	dir1 := v1.Normalized(1)
	dir2 := v2.Normalized(1)
	theta := vecmath.AngleBetween(dir1, dir2)
	minAngle := degToRad(cfg.MinAngleDeg)
	if theta <= minAngle {
		return nil, vecmath.Zero, vecmath.Zero, false
	}

	r := cfg.Radius
	if pb.IsTravel && nb.IsTravel {
		r = cfg.TravelRadius
	}
	if pb.IsTravel && nb.IsTravel && cfg.HalveTravels {
		// Travels under halve_travels ignore the configured radius entirely
		// and fillet to half the shorter incident segment.
		r = minFloat(len1, len2*0.5)
	} else {
		r = minFloat(r, len1, len2*0.5)
	}
	if r <= cfg.MinRadius {
		if sink != nil {
			sink.RejectedArcs++
		}
		return nil, vecmath.Zero, vecmath.Zero, false
	}

	prevEnd := pb.Start.Add(v1.Scale(1 - r/len1))
	nextStart := nb.End.Sub(v2.Scale(1 - r/len2))

	feedrateEntry, feedrateExit := pb.Feedrate, nb.Feedrate
	meanFeedrate := (feedrateEntry + feedrateExit) * 0.5
	if cfg.ConstantSpeed {
		feedrateEntry, feedrateExit = meanFeedrate, meanFeedrate
	}

	arc := &motion.Arc{
		MovementBase: motion.MovementBase{
			Start:    prevEnd,
			End:      nextStart,
			Feedrate: meanFeedrate,
		},
		Corner:          corner,
		Radius:          r,
		Angle:           theta,
		EndFeedrate:     motion.ArcEnds{feedrateEntry, feedrateExit},
		ParentVelocity0: dir1.Scale(feedrateEntry),
		ParentVelocity1: dir2.Scale(feedrateExit),
	}

	apportionExtrusion(prev, len1, r, &arc.Extrude[0])
	apportionExtrusion(next, len2, r, &arc.Extrude[1])

	return arc, prevEnd, nextStart, true
}

// apportionExtrusion scales a carved movement's extrusion proportionally
// to the fraction of its length removed by the fillet, crediting the
// removed fraction to the arc endpoint out.
func apportionExtrusion(seg motion.Segment, originalLength, radius float64, out *float64) {
	var extrudePtr *float64
	switch v := seg.(type) {
	case *motion.ExtrusionMove:
		extrudePtr = &v.Extrude
	case *motion.Extrusion:
		extrudePtr = &v.Extrude
	default:
		return
	}
	if originalLength == 0 {
		return
	}
	fractionRemoved := radius / originalLength
	removed := *extrudePtr * fractionRemoved
	*extrudePtr -= removed
	*out = removed
}

func degToRad(deg float64) float64 { return deg * (3.141592653589793 / 180) }

func minFloat(values ...float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
