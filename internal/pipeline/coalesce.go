package pipeline

import (
	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/ameisen/gcgg-go/internal/vecmath"
)

// jerkHintEpsilon is compared componentwise against jerk-hint vectors using
// the same scalar epsilon as acceleration hints. Open Question (a) flags
// this as plausible-but-should-be-explicit: it is kept exactly as the
// original source does it, rather than introducing a separate
// vector-specific tolerance nothing in the source motivates.
const jerkHintEpsilon = vecmath.ScalarEpsilon

// Coalesce performs a single forward pass merging adjacent movement
// commands of identical kind, feedrate, direction, and hints into one,
// per section 4.1. Merges never cross any instruction — including
// non-delay-inducing ones — since "adjacent" in the source stream means
// immediately adjacent entries; an intervening instruction (even a mode
// toggle) ends the run. This is a conservative superset of "never crosses
// a delay-inducing instruction" and never produces a merge the original
// algorithm would reject.
func Coalesce(commands []motion.Command, extrusionEpsilon float64) []motion.Command {
	if len(commands) == 0 {
		return commands
	}
	out := make([]motion.Command, 0, len(commands))
	out = append(out, commands[0])

	for i := 1; i < len(commands); i++ {
		cur := commands[i]
		lastIdx := len(out) - 1
		last := out[lastIdx]

		if merged, ok := tryMerge(last, cur, extrusionEpsilon); ok {
			out[lastIdx] = merged
			continue
		}
		out = append(out, cur)
	}
	return out
}

func tryMerge(a, b motion.Command, extrusionEpsilon float64) (motion.Command, bool) {
	sa, okA := a.(motion.Segment)
	sb, okB := b.(motion.Segment)
	if !okA || !okB || sa.Kind() != sb.Kind() {
		return nil, false
	}
	ba, bb := sa.Base(), sb.Base()

	if !vecmath.NearlyEqualScalar(ba.Feedrate, bb.Feedrate) {
		return nil, false
	}
	dirA := ba.Vector().Normalized(1)
	dirB := bb.Vector().Normalized(1)
	if !vecmath.NearlyEqualScalar(dirA.Dot(dirB), 1.0) {
		return nil, false
	}
	if !vecmath.NearlyEqualScalar(ba.AccelerationHint, bb.AccelerationHint) {
		return nil, false
	}
	if !componentwiseNearlyEqual(ba.JerkHint, bb.JerkHint, jerkHintEpsilon) {
		return nil, false
	}

	switch va := a.(type) {
	case *motion.ExtrusionMove:
		vb := b.(*motion.ExtrusionMove)
		if absDiff(va.ExtrudeRate(), vb.ExtrudeRate()) > extrusionEpsilon {
			return nil, false
		}
		if !vecmath.NearlyEqualScalar(va.ExtrudeJerkHint, vb.ExtrudeJerkHint) {
			return nil, false
		}
		merged := *va
		merged.End = vb.End
		merged.Extrude = va.Extrude + vb.Extrude
		return &merged, true
	case *motion.Travel:
		vb := b.(*motion.Travel)
		merged := *va
		merged.End = vb.End
		return &merged, true
	case *motion.Hop:
		vb := b.(*motion.Hop)
		merged := *va
		merged.End = vb.End
		return &merged, true
	case *motion.Linear:
		vb := b.(*motion.Linear)
		merged := *va
		merged.End = vb.End
		return &merged, true
	case *motion.Extrusion:
		vb := b.(*motion.Extrusion)
		merged := *va
		merged.End = vb.End
		merged.Extrude = va.Extrude + vb.Extrude
		return &merged, true
	default:
		return nil, false
	}
}

func componentwiseNearlyEqual(a, b vecmath.Vector3, epsilon float64) bool {
	return absDiff(a.X, b.X) <= epsilon && absDiff(a.Y, b.Y) <= epsilon && absDiff(a.Z, b.Z) <= epsilon
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
