package motion

import (
	"testing"

	"github.com/ameisen/gcgg-go/internal/vecmath"
)

func TestMovementBaseVelocity(t *testing.T) {
	m := &ExtrusionMove{
		MovementBase: MovementBase{
			Start:    vecmath.Vector3{X: 0},
			End:      vecmath.Vector3{X: 10},
			Feedrate: 1200,
		},
		Extrude: 2,
	}
	v := m.Velocity()
	if !vecmath.NearlyEqualScalar(v.Length(), 1200) {
		t.Errorf("expected velocity magnitude 1200, got %v", v.Length())
	}
	if !vecmath.NearlyEqualScalar(m.ExtrudeRate(), 2.0/10.0*1200) {
		t.Errorf("unexpected extrude rate %v", m.ExtrudeRate())
	}
}

func TestExtrudeRateDegenerate(t *testing.T) {
	m := &ExtrusionMove{MovementBase: MovementBase{Start: vecmath.Vector3{}, End: vecmath.Vector3{}}}
	if got := m.ExtrudeRate(); got != 0 {
		t.Errorf("expected 0 extrude rate for zero-length move, got %v", got)
	}
}

func TestKindsSatisfySegmentInterface(t *testing.T) {
	var segs []Segment = []Segment{
		&Travel{}, &Hop{}, &Linear{}, &Extrusion{}, &ExtrusionMove{}, &Arc{}, &ArcAccumulator{},
	}
	for _, s := range segs {
		if !s.IsSegment() {
			t.Errorf("%v: expected IsSegment true", s.Kind())
		}
		if s.IsDelayInducing() {
			t.Errorf("%v: movements are never delay-inducing", s.Kind())
		}
	}
}

func TestInstructionsSatisfyCommandInterface(t *testing.T) {
	tests := []struct {
		cmd              Command
		wantDelay        bool
		wantKind         Kind
	}{
		{Home{}, true, KindHome},
		{SetPositioning{}, false, KindSetPositioning},
		{DisableSteppers{}, true, KindDisableSteppers},
		{SetExtruderTemperature{Wait: false}, false, KindSetExtruderTemperature},
		{SetExtruderTemperature{Wait: true}, true, KindSetExtruderTemperature},
		{SetBedTemperature{Wait: true}, true, KindSetBedTemperature},
		{SetFan{}, false, KindSetFan},
		{SetAcceleration{}, false, KindSetAcceleration},
		{SetJerk{}, false, KindSetJerk},
	}
	for _, tt := range tests {
		if tt.cmd.IsSegment() {
			t.Errorf("%v: instructions are never segments", tt.wantKind)
		}
		if got := tt.cmd.IsDelayInducing(); got != tt.wantDelay {
			t.Errorf("%v: IsDelayInducing() = %v, want %v", tt.wantKind, got, tt.wantDelay)
		}
		if got := tt.cmd.Kind(); got != tt.wantKind {
			t.Errorf("Kind() = %v, want %v", got, tt.wantKind)
		}
	}
}

func TestKindStringCoversAllVariants(t *testing.T) {
	for k := KindTravel; k <= KindSetJerk; k++ {
		if k.String() == "unknown" {
			t.Errorf("Kind %d has no String() case", k)
		}
	}
}
