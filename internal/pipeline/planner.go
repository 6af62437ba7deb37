package pipeline

import (
	"math"

	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/diagnostics"
	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/ameisen/gcgg-go/internal/vecmath"
)

// ComputeMotion fills in entry/plateau/exit feedrate for every linked
// segment, per section 4.5. It is run twice by the driver: once before
// arc generation with jerkEnforced=false, once after arc subdivision with
// jerkEnforced=true. A single forward pass suffices because exit feedrate
// depends only on this segment's and its successor's commanded velocity,
// never on the successor's own computed motion data.
func ComputeMotion(commands []motion.Command, jerkEnforced bool, cfg config.Config, sink *diagnostics.Sink) {
	for _, cmd := range commands {
		seg, ok := cmd.(motion.Segment)
		if !ok {
			continue
		}
		b := seg.Base()
		velocity := b.Velocity()
		jerk := effectiveJerk(b, cfg)
		dir := b.Vector().Normalized(1)

		var entry float64
		if b.Prev == nil {
			entry = jerkBoundedSpeed(dir, jerk)
		} else {
			entry = b.Prev.Base().Motion.ExitFeedrate
		}

		var exit float64
		if b.Next == nil {
			exit = jerkBoundedSpeed(dir, jerk.Scale(0.5))
		} else {
			nb := b.Next.Base()
			nextDir := nb.Vector().Normalized(1)
			if vecmath.NearlyEqualScalar(dir.Dot(nextDir), 1.0) {
				exit = nb.Feedrate
			} else {
				exit = computeJoinExitFeedrate(velocity, nb.Velocity(), jerk, jerkEnforced, cfg.Options.BruteForceFeedrate, sink)
			}
		}

		b.Motion = motion.MotionData{
			Computed:        true,
			EntryFeedrate:   entry,
			PlateauFeedrate: b.Feedrate,
			ExitFeedrate:    exit,
		}
	}
}

// effectiveJerk prefers the segment's own jerk hint (set by the slicer)
// and falls back to the run's configured default.
func effectiveJerk(b *motion.MovementBase, cfg config.Config) vecmath.Vector3 {
	if b.JerkHint != vecmath.Zero {
		return b.JerkHint
	}
	return vecmath.New(cfg.Defaults.Jerk.X, cfg.Defaults.Jerk.Y, cfg.Defaults.Jerk.Z)
}

// jerkBoundedSpeed computes the jerk-limited feedrate for starting from
// (or decelerating to) rest along dir, per section 4.5.
func jerkBoundedSpeed(dir, jerk vecmath.Vector3) float64 {
	maxDir := dir.Abs().MaxElement()
	if maxDir == 0 {
		return 0
	}
	maxJerk := jerk.Abs().MaxElement()
	v := dir.Scale(maxJerk / maxDir)

	scale := 1.0
	for _, axis := range [][2]float64{{v.X, jerk.X}, {v.Y, jerk.Y}, {v.Z, jerk.Z}} {
		vi, ji := axis[0], axis[1]
		if ji == 0 {
			continue
		}
		if ratio := math.Abs(vi) / ji; ratio > scale {
			scale = ratio
		}
	}
	return v.Scale(1 / scale).Length()
}

// computeJoinExitFeedrate resolves the exit feedrate for a non-collinear
// join: scale this segment's velocity by the mean per-axis divisor toward
// the successor's velocity, then gate the result by the jerk budget.
func computeJoinExitFeedrate(velocity, nextVelocity, jerk vecmath.Vector3, jerkEnforced, bruteForce bool, sink *diagnostics.Sink) float64 {
	candidate, dBar, feasible := joinDivisorScale(velocity, nextVelocity)
	if !feasible {
		if sink != nil {
			sink.FailedJerkTests++
		}
		return 0
	}
	if !jerkEnforced {
		return candidate.Length()
	}
	if jerkSatisfied(candidate, nextVelocity, jerk) {
		return candidate.Length()
	}
	if bruteForce {
		if climbed, ok := hillClimbExit(velocity, nextVelocity, jerk, dBar); ok {
			return climbed.Length()
		}
	}
	if sink != nil {
		sink.FailedJerkTests++
	}
	return 0
}

// joinDivisorScale computes per-axis divisors d_i = v_i/v_next_i over axes
// where both sides are non-zero and same-signed, their mean d̄, and the
// candidate v' = v / d̄. A sign-opposite axis makes the join infeasible.
func joinDivisorScale(v, vNext vecmath.Vector3) (vecmath.Vector3, float64, bool) {
	var sum float64
	var count int
	for _, axis := range [][2]float64{{v.X, vNext.X}, {v.Y, vNext.Y}, {v.Z, vNext.Z}} {
		vi, vn := axis[0], axis[1]
		if vi == 0 || vn == 0 {
			continue
		}
		if (vi > 0) != (vn > 0) {
			return vecmath.Zero, 0, false
		}
		sum += vi / vn
		count++
	}
	if count == 0 {
		return vecmath.Zero, 0, false
	}
	dBar := sum / float64(count)
	if dBar == 0 {
		return vecmath.Zero, 0, false
	}
	return v.Scale(1 / dBar), dBar, true
}

func jerkSatisfied(candidate, vNext, jerk vecmath.Vector3) bool {
	return math.Abs(candidate.X-vNext.X) <= jerk.X &&
		math.Abs(candidate.Y-vNext.Y) <= jerk.Y &&
		math.Abs(candidate.Z-vNext.Z) <= jerk.Z
}

// hillClimbExit nudges d̄ in ±0.1% steps looking for a jerkable solution
// closer to the successor's velocity, stopping as soon as a step fails to
// improve on the current best.
func hillClimbExit(v, vNext, jerk vecmath.Vector3, dBar float64) (vecmath.Vector3, bool) {
	type candidate struct {
		v   vecmath.Vector3
		ok  bool
		err float64
	}
	eval := func(d float64) candidate {
		cv := v.Scale(1 / d)
		return candidate{v: cv, ok: jerkSatisfied(cv, vNext, jerk), err: cv.Sub(vNext).Length()}
	}

	best := eval(dBar)
	for _, step := range []float64{1.001, 1 / 1.001} {
		cur := best
		d := dBar
		for {
			d *= step
			next := eval(d)
			if next.ok && (!cur.ok || next.err < cur.err) {
				cur = next
				continue
			}
			break
		}
		if cur.ok && (!best.ok || cur.err < best.err) {
			best = cur
		}
	}
	return best.v, best.ok
}
