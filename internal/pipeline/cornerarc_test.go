package pipeline

import (
	"math"
	"testing"

	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/diagnostics"
	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/ameisen/gcgg-go/internal/vecmath"
)

func travel(start, end vecmath.Vector3, feedrate float64) *motion.Travel {
	return &motion.Travel{MovementBase: motion.MovementBase{Start: start, End: end, Feedrate: feedrate, IsTravel: true}}
}

func linearMove(start, end vecmath.Vector3, feedrate float64) *motion.Linear {
	return &motion.Linear{MovementBase: motion.MovementBase{Start: start, End: end, Feedrate: feedrate}}
}

func defaultArcConfig() config.ArcConfig {
	return config.ArcConfig{
		Generate:     true,
		MaxAngleDeg:  175,
		MinAngleDeg:  1,
		Radius:       1,
		TravelRadius: 1,
		MinRadius:    0.01,
	}
}

// TestCornerArc_S2 is the specification's scenario: a right-angle corner
// between two linear moves produces exactly one arc between carved
// endpoints.
func TestCornerArc_S2(t *testing.T) {
	a := linearMove(vecmath.Vector3{}, vecmath.Vector3{X: 10}, 1200)
	b := linearMove(vecmath.Vector3{X: 10}, vecmath.Vector3{X: 10, Y: 10}, 1200)
	commands := []motion.Command{a, b}
	Link(commands)

	sink := diagnostics.New()
	out := InsertCornerArcs(commands, defaultArcConfig(), sink)

	if len(out) != 3 {
		t.Fatalf("expected prev, arc, next = 3 commands, got %d", len(out))
	}
	arc, ok := out[1].(*motion.Arc)
	if !ok {
		t.Fatalf("expected middle command to be an arc, got %T", out[1])
	}
	if !vecmath.NearlyEqualScalar(arc.Angle, math.Pi/2) {
		t.Errorf("expected a 90 degree sweep, got %v rad", arc.Angle)
	}
	if arc.Corner != (vecmath.Vector3{X: 10}) {
		t.Errorf("expected corner at (10,0,0), got %+v", arc.Corner)
	}
	// The carved prev endpoint must sit radius units short of the corner.
	wantPrevEnd := vecmath.Vector3{X: 9}
	if !vecmath.NearlyEqual(a.End, wantPrevEnd) {
		t.Errorf("expected prev carved to %+v, got %+v", wantPrevEnd, a.End)
	}
	wantNextStart := vecmath.Vector3{X: 10, Y: 1}
	if !vecmath.NearlyEqual(b.Start, wantNextStart) {
		t.Errorf("expected next carved to %+v, got %+v", wantNextStart, b.Start)
	}
	if sink.RejectedArcs != 0 {
		t.Errorf("expected no rejected arcs, got %d", sink.RejectedArcs)
	}
}

// TestCornerArc_BelowMinAngleSkipped verifies a near-collinear vertex never
// gets a fillet.
func TestCornerArc_BelowMinAngleSkipped(t *testing.T) {
	a := linearMove(vecmath.Vector3{}, vecmath.Vector3{X: 10}, 1200)
	b := linearMove(vecmath.Vector3{X: 10}, vecmath.Vector3{X: 20, Y: 0.0001}, 1200)
	commands := []motion.Command{a, b}
	Link(commands)

	out := InsertCornerArcs(commands, defaultArcConfig(), diagnostics.New())
	if len(out) != 2 {
		t.Fatalf("expected no arc inserted for a near-straight vertex, got %d commands", len(out))
	}
}

// TestCornerArc_InfeasibleRadiusRejected exercises invariant 3: when the
// incident segments are too short to support even min_radius, no arc is
// inserted and the rejection is recorded.
func TestCornerArc_InfeasibleRadiusRejected(t *testing.T) {
	cfg := defaultArcConfig()
	cfg.Radius = 1
	cfg.MinRadius = 0.49

	a := linearMove(vecmath.Vector3{}, vecmath.Vector3{X: 0.5}, 1200)
	b := linearMove(vecmath.Vector3{X: 0.5}, vecmath.Vector3{X: 0.5, Y: 0.5}, 1200)
	commands := []motion.Command{a, b}
	Link(commands)

	sink := diagnostics.New()
	out := InsertCornerArcs(commands, cfg, sink)
	if len(out) != 2 {
		t.Fatalf("expected infeasible arc to be rejected, got %d commands", len(out))
	}
	if sink.RejectedArcs != 1 {
		t.Errorf("expected one rejected arc recorded, got %d", sink.RejectedArcs)
	}
}

// TestCornerArc_NeverFusesConsecutiveArcs confirms a previously inserted
// arc is never used as a left candidate for a second fillet.
func TestCornerArc_NeverFusesConsecutiveArcs(t *testing.T) {
	a := linearMove(vecmath.Vector3{}, vecmath.Vector3{X: 10}, 1200)
	b := linearMove(vecmath.Vector3{X: 10}, vecmath.Vector3{X: 10, Y: 10}, 1200)
	c := linearMove(vecmath.Vector3{X: 10, Y: 10}, vecmath.Vector3{X: 0, Y: 10}, 1200)
	commands := []motion.Command{a, b, c}
	Link(commands)

	out := InsertCornerArcs(commands, defaultArcConfig(), diagnostics.New())

	arcCount := 0
	for _, cmd := range out {
		if _, ok := cmd.(*motion.Arc); ok {
			arcCount++
		}
	}
	if arcCount != 2 {
		t.Fatalf("expected two independent fillets, got %d arcs among %d commands", arcCount, len(out))
	}
}

// TestCornerArc_TransparentInstructionPassesThrough confirms a
// non-delay-inducing instruction between two moves does not block fillet
// detection, per the "transparent" edge case.
func TestCornerArc_TransparentInstructionPassesThrough(t *testing.T) {
	a := linearMove(vecmath.Vector3{}, vecmath.Vector3{X: 10}, 1200)
	fan := motion.SetFan{Speed: 128}
	b := linearMove(vecmath.Vector3{X: 10}, vecmath.Vector3{X: 10, Y: 10}, 1200)
	commands := []motion.Command{a, fan, b}
	Link(commands)

	out := InsertCornerArcs(commands, defaultArcConfig(), diagnostics.New())

	arcCount := 0
	for _, cmd := range out {
		if _, ok := cmd.(*motion.Arc); ok {
			arcCount++
		}
	}
	if arcCount != 1 {
		t.Fatalf("expected the fan command to be transparent to fillet detection, got %d arcs among %d commands", arcCount, len(out))
	}
}

// TestCornerArc_DelayInducingBlocksFillet confirms a delay-inducing
// instruction (e.g. a blocking M109 wait) prevents a fillet from spanning
// it, since the chain link is broken there.
func TestCornerArc_DelayInducingBlocksFillet(t *testing.T) {
	a := linearMove(vecmath.Vector3{}, vecmath.Vector3{X: 10}, 1200)
	wait := motion.SetExtruderTemperature{TargetCelsius: 200, Wait: true}
	b := linearMove(vecmath.Vector3{X: 10}, vecmath.Vector3{X: 10, Y: 10}, 1200)
	commands := []motion.Command{a, wait, b}
	Link(commands)

	out := InsertCornerArcs(commands, defaultArcConfig(), diagnostics.New())
	if len(out) != 3 {
		t.Fatalf("expected no fillet across a delay-inducing instruction, got %d commands", len(out))
	}
}

// TestCornerArc_ExtrusionApportioned verifies extrusion removed from the
// carved portions of each incident move is credited to the arc, preserving
// total extrusion (invariant 2).
func TestCornerArc_ExtrusionApportioned(t *testing.T) {
	a := extrusionMove(vecmath.Vector3{}, vecmath.Vector3{X: 10}, 1200, 10)
	b := extrusionMove(vecmath.Vector3{X: 10}, vecmath.Vector3{X: 10, Y: 10}, 1200, 10)
	commands := []motion.Command{a, b}
	Link(commands)

	out := InsertCornerArcs(commands, defaultArcConfig(), diagnostics.New())
	var arc *motion.Arc
	var total float64
	for _, cmd := range out {
		switch v := cmd.(type) {
		case *motion.Arc:
			arc = v
			total += v.Extrude[0] + v.Extrude[1]
		case *motion.ExtrusionMove:
			total += v.Extrude
		}
	}
	if arc == nil {
		t.Fatal("expected an arc to be inserted")
	}
	if !vecmath.NearlyEqualScalar(total, 20) {
		t.Errorf("expected total extrusion conserved at 20, got %v", total)
	}
}

// TestCornerArc_TravelRadiusAndHalving confirms that under halve_travels a
// corner between two travels ignores travel_radius and takes
// min(|v1|, |v2|/2) as its radius.
func TestCornerArc_TravelRadiusAndHalving(t *testing.T) {
	cfg := defaultArcConfig()
	cfg.TravelRadius = 5
	cfg.HalveTravels = true

	a := travel(vecmath.Vector3{}, vecmath.Vector3{X: 10}, 3000)
	b := travel(vecmath.Vector3{X: 10}, vecmath.Vector3{X: 10, Y: 2}, 3000)
	commands := []motion.Command{a, b}
	Link(commands)

	out := InsertCornerArcs(commands, cfg, diagnostics.New())
	arc, ok := out[1].(*motion.Arc)
	if !ok {
		t.Fatalf("expected an arc, got %T", out[1])
	}
	// travel_radius (5) is ignored; min(10, 2/2) = 1.
	if !vecmath.NearlyEqualScalar(arc.Radius, 1) {
		t.Errorf("expected radius clamped to 1, got %v", arc.Radius)
	}
}

// TestCornerArc_DisabledIsNoOp confirms arc.generate=false leaves the
// stream untouched.
func TestCornerArc_DisabledIsNoOp(t *testing.T) {
	a := linearMove(vecmath.Vector3{}, vecmath.Vector3{X: 10}, 1200)
	b := linearMove(vecmath.Vector3{X: 10}, vecmath.Vector3{X: 10, Y: 10}, 1200)
	commands := []motion.Command{a, b}
	Link(commands)

	cfg := defaultArcConfig()
	cfg.Generate = false
	out := InsertCornerArcs(commands, cfg, diagnostics.New())
	if len(out) != 2 {
		t.Fatalf("expected untouched stream when disabled, got %d commands", len(out))
	}
}
