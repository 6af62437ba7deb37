package vecmath

import (
	"math"
	"testing"
)

func TestNormalized(t *testing.T) {
	v := Vector3{X: 3, Y: 4, Z: 0}
	n := v.Normalized(1.0)
	if !NearlyEqualScalar(n.Length(), 1.0) {
		t.Errorf("expected unit length, got %v", n.Length())
	}
	if !NearlyEqualScalar(n.X, 0.6) || !NearlyEqualScalar(n.Y, 0.8) {
		t.Errorf("unexpected normalized vector: %+v", n)
	}
}

func TestNormalizedZero(t *testing.T) {
	got := Zero.Normalized(5)
	if got != Zero {
		t.Errorf("expected zero vector unchanged, got %+v", got)
	}
}

func TestIsInverted(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector3
		want bool
	}{
		{"same sign", Vector3{1, 1, 1}, Vector3{2, 2, 2}, false},
		{"opposite x", Vector3{1, 0, 0}, Vector3{-1, 0, 0}, true},
		{"zero against negative is fine", Vector3{0, 0, 0}, Vector3{-1, 0, 0}, false},
		{"zero against positive is fine", Vector3{0, 0, 0}, Vector3{1, 0, 0}, false},
		{"both negative", Vector3{-1, -2, -3}, Vector3{-4, -5, -6}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.IsInverted(tt.b); got != tt.want {
				t.Errorf("IsInverted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAngleBetween(t *testing.T) {
	a := Vector3{X: 1, Y: 0, Z: 0}
	b := Vector3{X: 0, Y: 1, Z: 0}
	got := AngleBetween(a, b)
	if !NearlyEqualScalar(got, math.Pi/2) {
		t.Errorf("expected pi/2, got %v", got)
	}
}

func TestAngleBetweenDegenerate(t *testing.T) {
	if got := AngleBetween(Zero, Vector3{X: 1}); got != 0 {
		t.Errorf("expected 0 for degenerate vector, got %v", got)
	}
}

func TestCrossDot(t *testing.T) {
	x := Vector3{X: 1}
	y := Vector3{Y: 1}
	z := x.Cross(y)
	if !NearlyEqual(z, Vector3{Z: 1}) {
		t.Errorf("expected unit Z, got %+v", z)
	}
	if got := x.Dot(y); got != 0 {
		t.Errorf("expected orthogonal dot 0, got %v", got)
	}
}

func TestLimit(t *testing.T) {
	a := Vector3{X: 5, Y: -2, Z: 10}
	b := Vector3{X: 3, Y: 4, Z: 1}
	got := a.Limit(b)
	want := Vector3{X: 3, Y: -2, Z: 1}
	if got != want {
		t.Errorf("Limit() = %+v, want %+v", got, want)
	}
}
