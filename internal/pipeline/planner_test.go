package pipeline

import (
	"testing"

	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/diagnostics"
	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/ameisen/gcgg-go/internal/vecmath"
)

// TestComputeMotion_S5 is the specification's scenario: two extrusion
// moves sharing an endpoint with opposite unit directions must zero the
// shared exit/entry feedrate and increment the failed-jerk-test counter.
func TestComputeMotion_S5(t *testing.T) {
	a := extrusionMove(vecmath.Vector3{}, vecmath.Vector3{X: 10}, 3000, 1)
	b := extrusionMove(vecmath.Vector3{X: 10}, vecmath.Vector3{}, 3000, 1)
	commands := []motion.Command{a, b}
	Link(commands)

	cfg := config.Default()
	cfg.Defaults.Jerk = config.Vec3Config{X: 20, Y: 20, Z: 20}

	sink := diagnostics.New()
	ComputeMotion(commands, true, cfg, sink)

	if a.Motion.ExitFeedrate != 0 {
		t.Errorf("expected first move's exit feedrate zeroed, got %v", a.Motion.ExitFeedrate)
	}
	if b.Motion.EntryFeedrate != 0 {
		t.Errorf("expected second move's entry feedrate zeroed, got %v", b.Motion.EntryFeedrate)
	}
	if sink.FailedJerkTests != 1 {
		t.Errorf("expected exactly one failed jerk test recorded, got %d", sink.FailedJerkTests)
	}
}

// TestComputeMotion_CollinearJoinCarriesFullSpeed confirms invariant 4:
// a collinear join with matching feedrate never clamps the shared speed.
func TestComputeMotion_CollinearJoinCarriesFullSpeed(t *testing.T) {
	a := extrusionMove(vecmath.Vector3{}, vecmath.Vector3{X: 10}, 1200, 1)
	b := extrusionMove(vecmath.Vector3{X: 10}, vecmath.Vector3{X: 20}, 1200, 1)
	commands := []motion.Command{a, b}
	Link(commands)

	cfg := config.Default()
	ComputeMotion(commands, true, cfg, diagnostics.New())

	if !vecmath.NearlyEqualScalar(a.Motion.ExitFeedrate, 1200) {
		t.Errorf("expected collinear exit feedrate to carry the full 1200, got %v", a.Motion.ExitFeedrate)
	}
	if !vecmath.NearlyEqualScalar(b.Motion.EntryFeedrate, a.Motion.ExitFeedrate) {
		t.Errorf("expected entry to match predecessor's exit: %v vs %v", b.Motion.EntryFeedrate, a.Motion.ExitFeedrate)
	}
}

// TestComputeMotion_IsolatedMoveStartsAndStopsAtJerkBound confirms a move
// with no linked neighbors ramps from and to a jerk-bounded speed rather
// than the full commanded feedrate.
func TestComputeMotion_IsolatedMoveStartsAndStopsAtJerkBound(t *testing.T) {
	a := extrusionMove(vecmath.Vector3{}, vecmath.Vector3{X: 10}, 3000, 1)
	commands := []motion.Command{a}
	Link(commands)

	cfg := config.Default()
	cfg.Defaults.Jerk = config.Vec3Config{X: 20, Y: 20, Z: 20}
	ComputeMotion(commands, true, cfg, diagnostics.New())

	if a.Motion.EntryFeedrate <= 0 || a.Motion.EntryFeedrate >= 3000 {
		t.Errorf("expected a jerk-bounded entry feedrate strictly between 0 and plateau, got %v", a.Motion.EntryFeedrate)
	}
	if a.Motion.ExitFeedrate <= 0 || a.Motion.ExitFeedrate >= a.Motion.EntryFeedrate {
		t.Errorf("expected the stop feedrate (half jerk budget) below the start feedrate, got %v vs %v", a.Motion.ExitFeedrate, a.Motion.EntryFeedrate)
	}
}

// TestSolveTrapezoid_PlainTrapezoid exercises the common case: ramps
// shorter than the travel distance produce a genuine plateau.
func TestSolveTrapezoid_PlainTrapezoid(t *testing.T) {
	tz := SolveTrapezoid(0, 100, 0, 100, 1000)
	if tz.PlateauDistance <= 0 {
		t.Errorf("expected a positive plateau distance, got %v", tz.PlateauDistance)
	}
	if !vecmath.NearlyEqualScalar(tz.RampDistance[0]+tz.RampDistance[1]+tz.PlateauDistance, 100) {
		t.Errorf("expected ramp + plateau distances to sum to the travel distance, got %v", tz.RampDistance[0]+tz.RampDistance[1]+tz.PlateauDistance)
	}
}

// TestSolveTrapezoid_Triangle exercises a travel distance too short to
// reach the commanded plateau speed.
func TestSolveTrapezoid_Triangle(t *testing.T) {
	tz := SolveTrapezoid(0, 1000, 0, 1, 1000)
	if tz.PlateauDistance != 0 {
		t.Errorf("expected no plateau in the triangle case, got %v", tz.PlateauDistance)
	}
	if tz.PlateauSpeed >= 1000 {
		t.Errorf("expected the achievable peak speed to fall short of the commanded plateau, got %v", tz.PlateauSpeed)
	}
	if !vecmath.NearlyEqualScalar(tz.RampDistance[0]+tz.RampDistance[1], 1) {
		t.Errorf("expected the two ramps to cover the whole distance, got %v", tz.RampDistance[0]+tz.RampDistance[1])
	}
}

// TestSolveTrapezoid_ConstantVelocity exercises the degenerate case where
// start, plateau, and end speed all match.
func TestSolveTrapezoid_ConstantVelocity(t *testing.T) {
	tz := SolveTrapezoid(500, 500, 500, 50, 1000)
	if !vecmath.NearlyEqualScalar(tz.PlateauDistance, 50) {
		t.Errorf("expected the whole distance to be a plateau, got %v", tz.PlateauDistance)
	}
	if tz.RampDistance[0] != 0 || tz.RampDistance[1] != 0 {
		t.Errorf("expected no ramps for a constant-velocity pass, got %v/%v", tz.RampDistance[0], tz.RampDistance[1])
	}
}
