// Package vecmath provides the 3-axis real-number arithmetic shared by the
// segment model and every pipeline stage: normalization, angle measurement,
// and epsilon-aware equality.
package vecmath

import "math"

// ScalarEpsilon is the tolerance used for scalar floating point comparisons
// throughout the pipeline (feedrates, extrusion rates, angles in radians).
const ScalarEpsilon = 1e-11

// Vector3 is a 3-component real vector: X, Y, Z axes of machine motion.
type Vector3 struct {
	X, Y, Z float64
}

// Zero is the additive identity.
var Zero = Vector3{}

func New(x, y, z float64) Vector3 { return Vector3{X: x, Y: y, Z: z} }

func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector3) Mul(o Vector3) Vector3 { return Vector3{v.X * o.X, v.Y * o.Y, v.Z * o.Z} }

func (v Vector3) Scale(s float64) Vector3 { return Vector3{v.X * s, v.Y * s, v.Z * s} }

func (v Vector3) Negate() Vector3 { return Vector3{-v.X, -v.Y, -v.Z} }

func (v Vector3) MinElement() float64 { return math.Min(v.X, math.Min(v.Y, v.Z)) }
func (v Vector3) MaxElement() float64 { return math.Max(v.X, math.Max(v.Y, v.Z)) }

func (v Vector3) LengthSq() float64 { return v.X*v.X + v.Y*v.Y + v.Z*v.Z }
func (v Vector3) Length() float64   { return math.Sqrt(v.LengthSq()) }

// LinearSum is the sum of the three components.
func (v Vector3) LinearSum() float64 { return v.X + v.Y + v.Z }

// IsInverted reports whether any axis of v has the opposite sign from the
// corresponding axis of o. Zero (of either sign) matches both signs, so an
// axis that is zero on either side never counts as an inversion.
func (v Vector3) IsInverted(o Vector3) bool {
	sameSign := func(a, b float64) bool {
		return (a <= -0.0 && b <= -0.0) || (a >= 0.0 && b >= 0.0)
	}
	return !sameSign(v.X, o.X) || !sameSign(v.Y, o.Y) || !sameSign(v.Z, o.Z)
}

// Normalized scales v to the given magnitude (1.0 by default meaning a unit
// vector). Division by a zero length is guarded: the zero vector is
// returned unchanged rather than producing NaN.
func (v Vector3) Normalized(magnitude float64) Vector3 {
	length := v.Length()
	if length == 0 {
		return Zero
	}
	return v.Scale(magnitude / length)
}

// Limit returns the componentwise minimum of v and o.
func (v Vector3) Limit(o Vector3) Vector3 {
	return Vector3{math.Min(v.X, o.X), math.Min(v.Y, o.Y), math.Min(v.Z, o.Z)}
}

func (v Vector3) Dot(o Vector3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vector3) Cross(o Vector3) Vector3 {
	return Vector3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

func (v Vector3) DistanceSq(o Vector3) float64 { return v.Sub(o).LengthSq() }
func (v Vector3) Distance(o Vector3) float64   { return v.Sub(o).Length() }

func (v Vector3) Abs() Vector3 {
	return Vector3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)}
}

// AngleBetween returns the angle, in radians, between two (not necessarily
// normalized) vectors. Returns 0 when either vector is degenerate (zero
// length), since no angle is well-defined.
func AngleBetween(a, b Vector3) float64 {
	la, lb := a.Length(), b.Length()
	if la == 0 || lb == 0 {
		return 0
	}
	cos := a.Dot(b) / (la * lb)
	// Guard against floating point drift pushing cos slightly outside [-1,1].
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// NearlyEqualScalar reports whether two scalars are equal within
// ScalarEpsilon.
func NearlyEqualScalar(a, b float64) bool {
	return math.Abs(a-b) <= ScalarEpsilon
}

// NearlyEqual reports whether two vectors are equal within ScalarEpsilon on
// every axis.
func NearlyEqual(a, b Vector3) bool {
	return NearlyEqualScalar(a.X, b.X) && NearlyEqualScalar(a.Y, b.Y) && NearlyEqualScalar(a.Z, b.Z)
}
