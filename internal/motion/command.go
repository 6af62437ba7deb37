// Package motion holds the typed command/segment model that the pipeline
// operates on: a closed set of movement and instruction kinds discriminated
// by a tag, linked into a doubly-connected, non-owning sequence.
//
// The original source expresses this as a virtual-dispatch class hierarchy
// rooted at a polymorphic "command" base. Go has no inheritance, and the
// kind set is small and closed, so this package uses tagged variants
// instead: one Kind enum as discriminator, one interface (Command) that
// every variant implements, and concrete structs for each variant.
package motion

// Kind discriminates the closed set of command variants. It plays the role
// the original source's kind-tag hash played: a stable, cheap-to-compare
// identifier for "what concrete type is this."
type Kind uint8

const (
	KindTravel Kind = iota
	KindHop
	KindLinear
	KindExtrusion
	KindExtrusionMove
	KindArc
	KindArcAccumulator

	KindHome
	KindSetPositioning
	KindSetExtrusionMode
	KindDisableSteppers
	KindSetExtruderTemperature
	KindSetFan
	KindSetBedTemperature
	KindSetAcceleration
	KindSetJerk
)

func (k Kind) String() string {
	switch k {
	case KindTravel:
		return "travel"
	case KindHop:
		return "hop"
	case KindLinear:
		return "linear"
	case KindExtrusion:
		return "extrusion"
	case KindExtrusionMove:
		return "extrusion_move"
	case KindArc:
		return "arc"
	case KindArcAccumulator:
		return "arc_accumulator"
	case KindHome:
		return "home"
	case KindSetPositioning:
		return "set_positioning"
	case KindSetExtrusionMode:
		return "set_extrusion_mode"
	case KindDisableSteppers:
		return "disable_steppers"
	case KindSetExtruderTemperature:
		return "set_extruder_temperature"
	case KindSetFan:
		return "set_fan"
	case KindSetBedTemperature:
		return "set_bed_temperature"
	case KindSetAcceleration:
		return "set_acceleration"
	case KindSetJerk:
		return "set_jerk"
	default:
		return "unknown"
	}
}

// IsMovementKind reports whether a kind belongs to the segment/movement
// family rather than the instruction family.
func (k Kind) IsMovementKind() bool {
	return k <= KindArcAccumulator
}

// Command is the root interface every stream element implements: segments
// (movements) and instructions alike.
type Command interface {
	Kind() Kind
	// IsDelayInducing reports whether this command forces the motion queue
	// to drain before anything after it executes. Delay-inducing commands
	// break arc-candidate runs and coalescing runs.
	IsDelayInducing() bool
	// IsSegment reports whether this command is a Segment (geometric
	// movement) as opposed to an out-of-band Instruction.
	IsSegment() bool
}
