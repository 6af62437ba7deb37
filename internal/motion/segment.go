package motion

import "github.com/ameisen/gcgg-go/internal/vecmath"

// MotionData is the per-segment feedrate record the planner (C7) fills in.
// It is run twice: once before arc generation (Computed but without jerk
// enforcement) and once after arc subdivision (with jerk enforcement).
type MotionData struct {
	Computed        bool
	EntryFeedrate   float64
	PlateauFeedrate float64
	ExitFeedrate    float64
}

// Segment is the interface every movement variant implements. prev/next are
// non-owning: the stream container (a []Command of pointers, see
// internal/pipeline) is the sole owner. Because the stream holds pointers
// rather than struct values, growing or reordering it during a pass never
// invalidates a Prev/Next pointer held elsewhere, sidestepping the iterator
// invalidation hazard the original source worked around with reserved
// capacity.
type Segment interface {
	Command
	Base() *MovementBase
}

// MovementBase carries the fields every movement subkind shares: the two
// endpoints, the commanded feedrate, the printer hints the slicer attached,
// and the segment's linkage and motion data.
type MovementBase struct {
	Prev Segment
	Next Segment

	FromArc bool
	Motion  MotionData

	Start vecmath.Vector3
	End   vecmath.Vector3

	Feedrate float64

	AccelerationHint float64
	AccelerationAxes vecmath.Vector3
	JerkHint         vecmath.Vector3
	ExtrudeJerkHint  float64

	IsTravel bool
}

func (b *MovementBase) Base() *MovementBase { return b }

// Vector returns the displacement from Start to End.
func (b *MovementBase) Vector() vecmath.Vector3 { return b.End.Sub(b.Start) }

// Velocity returns the directional velocity vector at the commanded
// feedrate.
func (b *MovementBase) Velocity() vecmath.Vector3 {
	return b.Vector().Normalized(b.Feedrate)
}

// Length is the Euclidean length of the movement.
func (b *MovementBase) Length() float64 { return b.Vector().Length() }

func (b *MovementBase) IsSegment() bool        { return true }
func (b *MovementBase) IsDelayInducing() bool  { return false }

// Travel is a non-extruding XY movement.
type Travel struct {
	MovementBase
}

func (t *Travel) Kind() Kind { return KindTravel }

// Hop is a pure-Z movement, typically lifting the tool clear of the part.
type Hop struct {
	MovementBase
}

func (h *Hop) Kind() Kind { return KindHop }

// Linear is a non-extruding XY movement kept distinct from Travel (a
// commanded feed move with no extrusion, as opposed to a rapid).
type Linear struct {
	MovementBase
}

func (l *Linear) Kind() Kind { return KindLinear }

// Extrusion is an extrude-only movement: no XYZ displacement.
type Extrusion struct {
	MovementBase
	Extrude float64
}

func (e *Extrusion) Kind() Kind { return KindExtrusion }

// ExtrusionMove is a combined XYZ + extrude movement, the common case for
// printed perimeters and infill.
type ExtrusionMove struct {
	MovementBase
	Extrude float64
}

func (m *ExtrusionMove) Kind() Kind { return KindExtrusionMove }

// ExtrudeRate returns extrusion per unit length scaled by the commanded
// feedrate (extrusion per unit time), the quantity the coalescer compares
// within extrusion.epsilon.
func (m *ExtrusionMove) ExtrudeRate() float64 {
	length := m.Length()
	if length == 0 {
		return 0
	}
	return m.Extrude / length * m.Feedrate
}

// ArcEnds pairs a per-endpoint value: index 0 is the arc's start side,
// index 1 its end side.
type ArcEnds [2]float64

// Arc is a corner fillet: a circular replacement for a sharp vertex,
// carrying the paired entry/exit values the planner and emitter need.
type Arc struct {
	MovementBase

	Corner vecmath.Vector3
	Radius float64
	Angle  float64 // corner angle in radians between the incident directions

	Extrude          ArcEnds
	EndFeedrate      ArcEnds
	Acceleration     ArcEnds
	Jerk             ArcEnds
	ExtrudeJerk      ArcEnds
	ParentVelocity0  vecmath.Vector3
	ParentVelocity1  vecmath.Vector3
}

func (a *Arc) Kind() Kind { return KindArc }

// Plane names the coordinate plane an ArcAccumulator's run lies in.
type Plane uint8

const (
	PlaneXY Plane = iota
	PlaneXZ
	PlaneYZ
)

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "XY"
	case PlaneXZ:
		return "XZ"
	case PlaneYZ:
		return "YZ"
	default:
		return "?"
	}
}

type Handedness uint8

const (
	HandednessCW Handedness = iota
	HandednessCCW
)

// ArcAccumulator is an implicit-curve detector's output: an ordered run of
// movements it has taken ownership of, replaced in the stream by this
// single primitive until Solve (C5) fits a circle and the subdivider (C6)
// expands it back into line segments.
type ArcAccumulator struct {
	MovementBase

	Contributors []Segment

	AccumulatedAngle float64
	MeanAngle        float64

	Plane      Plane
	Handedness Handedness

	// Filled in by Solve (C5).
	Center   vecmath.Vector3
	Radius   float64
	MajorArc bool
}

func (a *ArcAccumulator) Kind() Kind { return KindArcAccumulator }
