package pipeline

import (
	"testing"

	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/ameisen/gcgg-go/internal/vecmath"
)

// TestSmooth_IsAlwaysANoOp confirms the reserved stage never mutates the
// stream, whether enabled or not, since no smoothing algorithm is carried.
func TestSmooth_IsAlwaysANoOp(t *testing.T) {
	commands := []motion.Command{
		linearMove(vecmath.Vector3{}, vecmath.Vector3{X: 1}, 1200),
		linearMove(vecmath.Vector3{X: 1}, vecmath.Vector3{X: 1, Y: 1}, 1200),
	}

	for _, enabled := range []bool{false, true} {
		out := Smooth(commands, config.SmoothingConfig{Enable: enabled, MinAngleDeg: 5, NewAngleDeg: 2})
		if len(out) != len(commands) {
			t.Fatalf("expected the stream length untouched (enable=%v), got %d", enabled, len(out))
		}
		for i := range out {
			if out[i] != commands[i] {
				t.Errorf("expected identical command at %d (enable=%v)", i, enabled)
			}
		}
	}
}
