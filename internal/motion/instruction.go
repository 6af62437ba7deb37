package motion

// InstructionBase carries nothing geometric; instructions are out-of-band
// commands that never participate in the segment chain. Each concrete
// instruction kind declares its own delay-inducing behavior.
type InstructionBase struct{}

func (InstructionBase) IsSegment() bool { return false }

// Home corresponds to G28. Per-axis flags select which axes home; an empty
// set (all false) means "home everything," matching the input dialect's
// "empty = all" convention.
type Home struct {
	InstructionBase
	X, Y, Z bool
}

func (Home) Kind() Kind             { return KindHome }
func (Home) IsDelayInducing() bool  { return true }

// PositioningMode is the argument to SetPositioning / the parser's internal
// absolute/relative tracking.
type PositioningMode uint8

const (
	PositioningAbsolute PositioningMode = iota
	PositioningRelative
)

// SetPositioning corresponds to G90/G91.
type SetPositioning struct {
	InstructionBase
	Mode PositioningMode
}

func (SetPositioning) Kind() Kind            { return KindSetPositioning }
func (SetPositioning) IsDelayInducing() bool { return false }

// SetExtrusionMode corresponds to M82/M83.
type SetExtrusionMode struct {
	InstructionBase
	Mode PositioningMode
}

func (SetExtrusionMode) Kind() Kind            { return KindSetExtrusionMode }
func (SetExtrusionMode) IsDelayInducing() bool { return false }

// DisableSteppers corresponds to M84. DelaySeconds is the optional S
// argument; zero means immediate.
type DisableSteppers struct {
	InstructionBase
	DelaySeconds float64
}

func (DisableSteppers) Kind() Kind            { return KindDisableSteppers }
func (DisableSteppers) IsDelayInducing() bool { return true }

// SetExtruderTemperature corresponds to M104, and to M109 when Wait is
// true (M109 is delay-inducing; M104 is not).
type SetExtruderTemperature struct {
	InstructionBase
	Index          int
	TargetCelsius  float64
	Wait           bool
	MinimumAccurate bool
}

func (SetExtruderTemperature) Kind() Kind { return KindSetExtruderTemperature }
func (s SetExtruderTemperature) IsDelayInducing() bool { return s.Wait }

// SetFan corresponds to M106 (Speed > 0) / M107 (Speed == 0).
type SetFan struct {
	InstructionBase
	Index int
	Speed float64 // 0..255
}

func (SetFan) Kind() Kind            { return KindSetFan }
func (SetFan) IsDelayInducing() bool { return false }

// SetBedTemperature corresponds to M140, and to M190 when Wait is true.
type SetBedTemperature struct {
	InstructionBase
	Index         int
	TargetCelsius float64
	Wait          bool
}

func (SetBedTemperature) Kind() Kind            { return KindSetBedTemperature }
func (s SetBedTemperature) IsDelayInducing() bool { return s.Wait }

// SetAcceleration corresponds to M204. A field that was not present on the
// command line is left at its previous value by the dispatcher (C9); this
// struct only carries values actually supplied.
type SetAcceleration struct {
	InstructionBase
	HasPrint   bool
	Print      float64
	HasTravel  bool
	Travel     float64
	HasRetract bool
	Retract    float64
}

func (SetAcceleration) Kind() Kind            { return KindSetAcceleration }
func (SetAcceleration) IsDelayInducing() bool { return false }

// SetJerk corresponds to M205.
type SetJerk struct {
	InstructionBase
	HasX, HasY, HasZ, HasE bool
	X, Y, Z, E             float64
}

func (SetJerk) Kind() Kind            { return KindSetJerk }
func (SetJerk) IsDelayInducing() bool { return false }
