package pipeline

import (
	"math"

	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/diagnostics"
	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/ameisen/gcgg-go/internal/vecmath"
)

// SubdivideArcs expands every Arc and ArcAccumulator primitive back into
// short line segments, per section 4.4. flattenAccumulators
// (output.subdivide_arcs) controls whether this happens: when true, an Arc
// is split into chords and an ArcAccumulator is unwrapped into its original
// contributors; when false, both are left intact for the emitter, which
// writes an Arc as a single chord or G15 directive and an ArcAccumulator as
// its contributing moves.
func SubdivideArcs(commands []motion.Command, cfg config.ArcConfig, flattenAccumulators bool, sink *diagnostics.Sink) []motion.Command {
	out := make([]motion.Command, 0, len(commands))
	for _, cmd := range commands {
		switch v := cmd.(type) {
		case *motion.Arc:
			if v.Start == v.End && sink != nil {
				sink.DegenerateGeometry++
			}
			if !flattenAccumulators {
				out = append(out, v)
				continue
			}
			out = append(out, subdivideArc(v, cfg)...)
		case *motion.ArcAccumulator:
			if flattenAccumulators {
				out = append(out, flattenAccumulator(v)...)
			} else {
				out = append(out, v)
			}
		default:
			out = append(out, cmd)
		}
	}
	return out
}

// subdivideArc implements the iterative midpoint-projection split. For a
// corner fillet the curvature is uniform, so a pass that splits every
// current subsegment simultaneously converges geometrically: each pass
// halves the per-child bend angle.
func subdivideArc(a *motion.Arc, cfg config.ArcConfig) []motion.Command {
	corner := a.Corner
	midpoint := a.Start.Add(a.End).Scale(0.5)
	origin := corner.Add(midpoint.Sub(corner).Scale(2))

	points := []vecmath.Vector3{a.Start, a.End}
	bend := a.Angle
	minAngle := degToRad(cfg.MinAngleDeg)
	maxAngle := degToRad(cfg.MaxAngleDeg)
	maxSegments := cfg.MaxSegments
	if maxSegments <= 0 {
		maxSegments = 64
	}
	cornerDistance := corner.Distance(origin)

	// A corner whose total sweep already meets or exceeds max_angle is left
	// as a single chord; the bend-halving loop below never runs for it.
	for a.Angle < maxAngle && bend > minAngle && len(points)-1 < maxSegments {
		next := make([]vecmath.Vector3, 0, len(points)*2-1)
		next = append(next, points[0])
		changed := false
		for i := 0; i < len(points)-1; i++ {
			p0, p1 := points[i], points[i+1]
			mid := p0.Add(p1).Scale(0.5)
			dir := mid.Sub(origin)
			if dir.Length() == 0 {
				next = append(next, p1)
				continue
			}
			localRadius := a.Radius
			if cfg.ConstrainRadius {
				blend := radiusBlend(i, len(points)-1, a.Angle)
				localRadius = a.Radius + (cornerDistance-a.Radius)*blend
			}
			projected := origin.Add(dir.Normalized(localRadius))
			next = append(next, projected, p1)
			changed = true
		}
		if !changed {
			break
		}
		points = next
		bend /= 2
	}

	return buildArcChildren(a, points)
}

// radiusBlend approximates the constrain_radius slerp: children nearer the
// midpoint of the sweep lean toward the corner-to-origin distance, scaled
// by how wide the overall sweep is, so a near-straight fillet is barely
// affected while a tight switchback blends harder.
func radiusBlend(i, n int, theta float64) float64 {
	mid := float64(n) / 2
	pos := float64(i) + 0.5
	closeness := 1 - math.Abs(pos-mid)/mid
	thetaFactor := theta / math.Pi
	if thetaFactor > 1 {
		thetaFactor = 1
	}
	return closeness * thetaFactor
}

// buildArcChildren distributes extrusion and feedrate across the final
// chord list, applying the travel<->extrude transition special cases.
func buildArcChildren(a *motion.Arc, points []vecmath.Vector3) []motion.Command {
	n := len(points) - 1
	if n <= 0 {
		return nil
	}
	lengths := make([]float64, n)
	var total float64
	for i := 0; i < n; i++ {
		lengths[i] = points[i].Distance(points[i+1])
		total += lengths[i]
	}

	extrudeStart, extrudeEnd := a.Extrude[0], a.Extrude[1]
	totalExtrude := extrudeStart + extrudeEnd
	feedStart, feedEnd := a.EndFeedrate[0], a.EndFeedrate[1]
	sameFeedrate := vecmath.NearlyEqualScalar(feedStart, feedEnd)

	out := make([]motion.Command, 0, n)
	var accumulated float64
	for i := 0; i < n; i++ {
		fracStart := 0.0
		if total != 0 {
			fracStart = accumulated / total
		}
		accumulated += lengths[i]
		fracEnd := 1.0
		if total != 0 {
			fracEnd = accumulated / total
		}

		feedrate := feedStart
		if !sameFeedrate {
			feedrate = lerp(feedStart, feedEnd, (fracStart+fracEnd)/2)
		}

		var extrude float64
		switch {
		case extrudeStart == 0 && extrudeEnd != 0:
			if i == n-1 {
				extrude = totalExtrude
			}
		case extrudeStart != 0 && extrudeEnd == 0:
			if i == 0 {
				extrude = totalExtrude
			}
		default:
			if total != 0 {
				extrude = totalExtrude * (lengths[i] / total)
			}
		}

		base := motion.MovementBase{
			Start:            points[i],
			End:              points[i+1],
			Feedrate:         feedrate,
			FromArc:          true,
			IsTravel:         a.IsTravel,
			AccelerationHint: a.AccelerationHint,
			JerkHint:         a.JerkHint,
		}
		switch {
		case extrude != 0:
			out = append(out, &motion.ExtrusionMove{MovementBase: base, Extrude: extrude})
		case a.IsTravel:
			out = append(out, &motion.Travel{MovementBase: base})
		default:
			out = append(out, &motion.Linear{MovementBase: base})
		}
	}
	return out
}

// flattenAccumulator restores the accumulator's original contributors,
// tagging each as arc-derived so later stages treat it as already final.
func flattenAccumulator(a *motion.ArcAccumulator) []motion.Command {
	out := make([]motion.Command, 0, len(a.Contributors))
	for _, c := range a.Contributors {
		c.Base().FromArc = true
		out = append(out, c)
	}
	return out
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }
