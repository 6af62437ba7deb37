package pipeline

import (
	"math"

	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/diagnostics"
	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/ameisen/gcgg-go/internal/vecmath"
)

// arcChord is a pair of segments whose mean positions define one sample
// vector for turning-angle measurement.
type arcChord struct {
	a, b motion.Segment
}

func meanPos(s motion.Segment) vecmath.Vector3 {
	b := s.Base()
	return b.Start.Add(b.End).Scale(0.5)
}

func (c arcChord) vector() vecmath.Vector3 { return meanPos(c.b).Sub(meanPos(c.a)) }

type arcDirection struct {
	plane      motion.Plane
	handedness motion.Handedness
}

func planeUp(p motion.Plane) vecmath.Vector3 {
	switch p {
	case motion.PlaneXZ:
		return vecmath.Vector3{Y: 1}
	case motion.PlaneYZ:
		return vecmath.Vector3{X: 1}
	default:
		return vecmath.Vector3{Z: 1}
	}
}

// inferDirection classifies the plane of motion by the least-dominant axis
// of the outgoing chord direction, and handedness by the sign of the dot
// product between the incoming chord's left-vector and the outgoing chord.
func inferDirection(incoming, outgoing arcChord) arcDirection {
	inDir := incoming.vector().Normalized(1)
	moveDir := outgoing.vector().Normalized(1)
	moveAbs := moveDir.Abs()

	var plane motion.Plane
	switch {
	case moveAbs.Z <= moveAbs.X && moveAbs.Z <= moveAbs.Y:
		plane = motion.PlaneXY
	case moveAbs.Y <= moveAbs.X && moveAbs.Y <= moveAbs.Z:
		plane = motion.PlaneXZ
	default:
		plane = motion.PlaneYZ
	}

	left := inDir.Cross(planeUp(plane)).Normalized(1)
	handedness := motion.HandednessCCW
	if left.Dot(moveDir) > 0 {
		handedness = motion.HandednessCW
	}
	return arcDirection{plane: plane, handedness: handedness}
}

// accumulator is the running state of a candidate implicit-curve run, per
// section 4.3. It owns no segments directly; the driver below decides
// whether to keep them as-is or hand them to an emitted ArcAccumulator.
type accumulator struct {
	segments   []motion.Segment
	accumAngle float64
	meanAngle  float64
	dir        arcDirection
	haveDir    bool
}

func (a *accumulator) reset() { *a = accumulator{} }

// tryConsume attempts to extend the run with seg, per the Consume(s) rules.
// It has no side effects on rejection; the caller decides whether to flush.
func (a *accumulator) tryConsume(seg motion.Segment, cfg config.RegArcGenConfig) bool {
	b := seg.Base()
	vec := b.Vector()
	if vec.Length() >= cfg.MaxSegmentLength {
		return false
	}
	if !cfg.ArcsSupportZ && vec.Z != 0 {
		return false
	}

	if len(a.segments) == 0 {
		a.segments = append(a.segments, seg)
		return true
	}

	back := a.segments[len(a.segments)-1]
	if back.Kind() != seg.Kind() {
		return false
	}

	curVec := vec.Normalized(1)
	var angle float64
	if len(a.segments) >= 2 {
		chord := arcChord{a.segments[len(a.segments)-2], a.segments[len(a.segments)-1]}
		angle = vecmath.AngleBetween(chord.vector(), curVec)
	} else {
		angle = vecmath.AngleBetween(back.Base().Vector().Normalized(1), curVec)
	}
	maxAngle := degToRad(cfg.MaxAngleDeg)
	if angle >= maxAngle {
		return false
	}

	minCount := minSegmentCount(cfg)
	if len(a.segments) >= minCount {
		if math.Abs(a.meanAngle-angle) >= degToRad(cfg.MaxAngleDivergence) {
			return false
		}
	}

	if len(a.segments) >= minCount && len(a.segments) >= 3 {
		incoming := arcChord{a.segments[len(a.segments)-3], a.segments[len(a.segments)-2]}
		outgoing := arcChord{a.segments[len(a.segments)-1], seg}
		dir := inferDirection(incoming, outgoing)
		if !a.haveDir {
			a.dir = dir
			a.haveDir = true
		} else if dir != a.dir {
			return false
		}
	}

	a.segments = append(a.segments, seg)
	a.recomputeAngles()
	return true
}

// recomputeAngles mirrors the original's two chord-insertion loops: both the
// accumulated angle and the mean angle sum disjoint (non-overlapping)
// 2-segment chord pairs, sliding the comparison window by a full chord
// rather than by one segment, so a late join is tested against the same
// few, non-overlapping samples the original's shuffled chord pair produces.
func (a *accumulator) recomputeAngles() {
	segs := a.segments

	a.accumAngle = 0
	for i := 0; i+4 <= len(segs); i += 4 {
		c0 := arcChord{segs[i], segs[i+1]}
		c1 := arcChord{segs[i+2], segs[i+3]}
		a.accumAngle += vecmath.AngleBetween(c0.vector(), c1.vector())
	}

	a.meanAngle = 0
	divisor := 0
	numChords := len(segs) / 2
	var prevChord arcChord
	havePrev := false
	for k := 0; k < numChords; k++ {
		chord := arcChord{segs[2*k], segs[2*k+1]}
		if havePrev {
			a.meanAngle += vecmath.AngleBetween(prevChord.vector(), chord.vector())
			divisor++
		}
		prevChord = chord
		havePrev = true
	}
	if divisor > 0 {
		a.meanAngle /= float64(divisor)
	}
}

func minSegmentCount(cfg config.RegArcGenConfig) int {
	if cfg.MinSegmentCount < 2 {
		return 4
	}
	return cfg.MinSegmentCount
}

type arcSubsegment struct {
	start, end vecmath.Vector3
	weight     float64
}

func (s arcSubsegment) length() float64           { return s.start.Distance(s.end) }
func (s arcSubsegment) vector() vecmath.Vector3   { return s.end.Sub(s.start) }
func (s arcSubsegment) mean() vecmath.Vector3     { return s.start.Add(s.end).Scale(0.5) }

// solve fits a circle to the accumulated run, per section 4.3's Solve and
// half-circle-detection algorithms, and returns the ArcAccumulator primitive
// that replaces the run in the stream.
func (a *accumulator) solve() *motion.ArcAccumulator {
	var subs []arcSubsegment
	for _, seg := range a.segments {
		b := seg.Base()
		vectorAlong := b.End.Sub(b.Start)
		magnitude := vectorAlong.Length()

		start := b.Start
		if len(subs) > 0 {
			start = subs[len(subs)-1].end
		}
		vec1 := b.Start.Add(vectorAlong.Normalized(magnitude * 0.25))
		vec2 := b.Start.Add(vectorAlong.Normalized(magnitude * 0.75))
		subs = append(subs, arcSubsegment{start: start, end: vec1})
		subs = append(subs, arcSubsegment{start: vec1, end: vec2})
	}
	lastBase := a.segments[len(a.segments)-1].Base()
	subs = append(subs, arcSubsegment{start: subs[len(subs)-1].end, end: lastBase.End})

	var accumulatedLength float64
	for _, s := range subs {
		accumulatedLength += s.length()
	}
	meanLength := accumulatedLength / float64(len(subs))
	for i := range subs {
		if meanLength != 0 {
			subs[i].weight = subs[i].length() / meanLength
		} else {
			subs[i].weight = 1
		}
	}

	up := planeUp(a.dir.plane)

	var origin vecmath.Vector3
	pairs := 0
	var prev *arcSubsegment
	for i := 1; i < len(subs)-1; i++ {
		if prev == nil {
			prev = &subs[i]
			continue
		}
		cur := &subs[i]
		v0 := prev.vector().Normalized(1)
		v1 := cur.vector().Normalized(1)
		p0 := prev.mean()
		p1 := cur.mean()

		cross0 := v0.Cross(up).Normalized(1)
		cross1 := v1.Cross(up).Normalized(1)

		crossA := p1.Sub(p0).Cross(cross1)
		crossB := cross0.Cross(cross1)
		if crossB.Length() != 0 {
			scale := crossA.Length() / crossB.Length()
			originVector := cross0.Scale(scale)
			if originVector.Normalized(1).Dot(v1) < 0 {
				originVector = originVector.Negate()
			}
			origin = origin.Add(p0.Add(originVector))
			pairs++
		}
		prev = cur
	}
	if pairs > 0 {
		origin = origin.Scale(1 / float64(pairs))
	}

	var radius float64
	for i := 1; i < len(subs)-1; i++ {
		radius += origin.Distance(subs[i].start) * subs[i].weight
		radius += origin.Distance(subs[i].end) * subs[i].weight
	}
	if pairs > 0 {
		radius /= float64(pairs * 2)
	}

	firstStart := a.segments[0].Base().Start
	radius = math.Max(radius, firstStart.Distance(lastBase.End)/2)

	accum := &motion.ArcAccumulator{
		MovementBase: motion.MovementBase{
			Start:    firstStart,
			End:      lastBase.End,
			Feedrate: a.segments[0].Base().Feedrate,
			IsTravel: a.segments[0].Base().IsTravel,
		},
		Contributors:     append([]motion.Segment(nil), a.segments...),
		AccumulatedAngle: a.accumAngle,
		MeanAngle:        a.meanAngle,
		Plane:            a.dir.plane,
		Handedness:       a.dir.handedness,
		Center:           origin,
		Radius:           radius,
	}
	accum.MajorArc = detectMajorArc(a.segments, origin, up)
	return accum
}

// detectMajorArc projects the endpoint normal onto a binormal built from
// the first-segment normal rotated 90 degrees in-plane; a negative
// projection means the run sweeps more than a half-circle.
func detectMajorArc(segments []motion.Segment, origin, up vecmath.Vector3) bool {
	if len(segments) < 2 {
		return false
	}
	firstNormal := origin.Sub(segments[0].Base().Start)
	secondNormal := origin.Sub(segments[1].Base().Start)
	lastNormal := origin.Sub(segments[len(segments)-1].Base().End)

	binormal := firstNormal.Cross(up).Normalized(1)
	if binormal.Dot(secondNormal) <= 0 {
		binormal = binormal.Negate()
	}
	return lastNormal.Dot(binormal) < 0
}

// AccumulateArcs scans the linked stream for maximal runs of short,
// coplanar, consistently-turning movements and replaces each qualifying
// run with a single ArcAccumulator primitive, per section 4.3. Runs that
// never reach min_segment_count are left untouched in the stream.
func AccumulateArcs(commands []motion.Command, cfg config.RegArcGenConfig, sink *diagnostics.Sink) []motion.Command {
	if !cfg.Enable {
		return commands
	}

	out := make([]motion.Command, 0, len(commands))
	var acc accumulator
	var pending []motion.Command

	flush := func() []motion.Command {
		defer acc.reset()
		if len(acc.segments) >= minSegmentCount(cfg) {
			accum := acc.solve()
			if sink != nil {
				sink.AccumulatorsEmitted++
			}
			return []motion.Command{accum}
		}
		return pending
	}

	for _, cmd := range commands {
		seg, isSeg := cmd.(motion.Segment)
		if !isSeg {
			out = append(out, flush()...)
			pending = nil
			out = append(out, cmd)
			continue
		}

		if acc.tryConsume(seg, cfg) {
			pending = append(pending, cmd)
			continue
		}

		out = append(out, flush()...)
		pending = nil
		if acc.tryConsume(seg, cfg) {
			pending = append(pending, cmd)
		} else {
			out = append(out, cmd)
		}
	}
	out = append(out, flush()...)
	return out
}
