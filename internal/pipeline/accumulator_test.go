package pipeline

import (
	"math"
	"testing"

	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/diagnostics"
	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/ameisen/gcgg-go/internal/vecmath"
)

func defaultRegArcGenConfig() config.RegArcGenConfig {
	return config.RegArcGenConfig{
		Enable:             true,
		MaxSegmentLength:   10,
		MaxAngleDeg:        45,
		MaxAngleDivergence: 5,
		MinSegmentCount:    4,
	}
}

// circleSegments builds n consecutive linear moves tracing a closed
// polygon inscribed in a circle of the given radius in the XY plane.
func circleSegments(n int, radius, feedrate float64) []motion.Command {
	points := make([]vecmath.Vector3, n+1)
	for i := 0; i <= n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		points[i] = vecmath.Vector3{X: radius * math.Cos(theta), Y: radius * math.Sin(theta)}
	}
	commands := make([]motion.Command, n)
	for i := 0; i < n; i++ {
		commands[i] = linearMove(points[i], points[i+1], feedrate)
	}
	return commands
}

// TestAccumulator_S4 is the specification's scenario: twelve consecutive
// 30-degree moves around a radius-5 circle collapse to a single
// arc_accumulator whose solved radius and accumulated angle match within
// the stated tolerances.
func TestAccumulator_S4(t *testing.T) {
	commands := circleSegments(12, 5, 1200)
	Link(commands)

	sink := diagnostics.New()
	out := AccumulateArcs(commands, defaultRegArcGenConfig(), sink)

	if len(out) != 1 {
		t.Fatalf("expected the run to collapse to a single accumulator, got %d commands", len(out))
	}
	accum, ok := out[0].(*motion.ArcAccumulator)
	if !ok {
		t.Fatalf("expected an ArcAccumulator, got %T", out[0])
	}
	if len(accum.Contributors) != 12 {
		t.Errorf("expected 12 contributors, got %d", len(accum.Contributors))
	}

	wantRadius := 5.0
	if diff := math.Abs(accum.Radius-wantRadius) / wantRadius; diff > 0.01 {
		t.Errorf("expected radius within 1%% of %v, got %v", wantRadius, accum.Radius)
	}

	wantAngleDeg := 360.0
	gotAngleDeg := accum.AccumulatedAngle * 180 / math.Pi
	if diff := math.Abs(gotAngleDeg - wantAngleDeg); diff > 1 {
		t.Errorf("expected accumulated angle within 1 degree of 360, got %v", gotAngleDeg)
	}

	if accum.Plane != motion.PlaneXY {
		t.Errorf("expected plane inference to land on XY, got %v", accum.Plane)
	}
	if sink.AccumulatorsEmitted != 1 {
		t.Errorf("expected one accumulator emitted in diagnostics, got %d", sink.AccumulatorsEmitted)
	}
}

// TestAccumulator_ShortRunLeftInStream confirms a run that never reaches
// min_segment_count is discarded back into the stream untouched.
func TestAccumulator_ShortRunLeftInStream(t *testing.T) {
	commands := circleSegments(2, 5, 1200)
	Link(commands)

	out := AccumulateArcs(commands, defaultRegArcGenConfig(), diagnostics.New())
	if len(out) != 2 {
		t.Fatalf("expected the short run to remain as individual moves, got %d commands", len(out))
	}
	for _, cmd := range out {
		if _, ok := cmd.(*motion.ArcAccumulator); ok {
			t.Fatalf("did not expect an accumulator for a run below min_segment_count")
		}
	}
}

// TestAccumulator_RejectsOversizedSegment confirms a move longer than
// max_segment_length never joins a run.
func TestAccumulator_RejectsOversizedSegment(t *testing.T) {
	cfg := defaultRegArcGenConfig()
	cfg.MaxSegmentLength = 1
	commands := circleSegments(12, 5, 1200)
	Link(commands)

	out := AccumulateArcs(commands, cfg, diagnostics.New())
	for _, cmd := range out {
		if _, ok := cmd.(*motion.ArcAccumulator); ok {
			t.Fatalf("did not expect an accumulator once every segment exceeds max_segment_length")
		}
	}
}

// TestAccumulator_RejectsNonzeroZWhenUnsupported confirms a move with a Z
// component is rejected unless arcs_support_Z is set.
func TestAccumulator_RejectsNonzeroZWhenUnsupported(t *testing.T) {
	cfg := defaultRegArcGenConfig()
	commands := circleSegments(12, 5, 1200)
	if lin, ok := commands[3].(*motion.Linear); ok {
		lin.End.Z = 1
	}
	Link(commands)

	out := AccumulateArcs(commands, cfg, diagnostics.New())
	for _, cmd := range out {
		if accum, ok := cmd.(*motion.ArcAccumulator); ok {
			for _, c := range accum.Contributors {
				if c.Base().Vector().Z != 0 {
					t.Fatalf("a Z-bearing move should never join an accumulator when arcs_support_Z is false")
				}
			}
		}
	}
}

// TestAccumulator_DisabledIsNoOp confirms reg_arc_gen.enable=false leaves
// the stream untouched.
func TestAccumulator_DisabledIsNoOp(t *testing.T) {
	cfg := defaultRegArcGenConfig()
	cfg.Enable = false
	commands := circleSegments(12, 5, 1200)
	Link(commands)

	out := AccumulateArcs(commands, cfg, diagnostics.New())
	if len(out) != 12 {
		t.Fatalf("expected untouched stream when disabled, got %d commands", len(out))
	}
}
