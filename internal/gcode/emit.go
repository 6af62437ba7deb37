package gcode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/motion"
)

// emitState is the emitter's running memory of the last value written for
// every suppressible field: position, feedrate, the three acceleration
// channels, per-axis jerk, and the temperature/fan maps. Grounded on
// original_source/source/output/state.hpp's field set and the teacher's
// strings.Builder-based accumulation in internal/gcode/generator.go.
type emitState struct {
	hasPosition bool
	position    [3]float64

	hasFeedrate bool
	feedrate    float64

	hasPrintAccel, hasTravelAccel, hasRetractAccel bool
	printAccel, travelAccel, retractAccel          float64

	hasJerk [4]bool // X, Y, Z, E
	jerk    [4]float64

	hasPositioning   bool
	positioning      motion.PositioningMode
	hasExtrusionMode bool
	extrusionMode    motion.PositioningMode

	extruderTemp map[int]float64
	bedTemp      map[int]float64
	fanSpeed     map[int]float64
}

func newEmitState() *emitState {
	return &emitState{
		extruderTemp: make(map[int]float64),
		bedTemp:      make(map[int]float64),
		fanSpeed:     make(map[int]float64),
	}
}

// Emitter serializes a command stream into the output dialect, suppressing
// any field whose value is unchanged from the last emission.
type Emitter struct {
	cfg   config.Config
	state *emitState
	b     strings.Builder
}

func NewEmitter(cfg config.Config) *Emitter {
	return &Emitter{cfg: cfg, state: newEmitState()}
}

// Emit serializes the full command stream and returns the resulting text.
func (e *Emitter) Emit(commands []motion.Command) string {
	for _, cmd := range commands {
		e.emitOne(cmd)
	}
	return e.b.String()
}

func (e *Emitter) emitOne(cmd motion.Command) {
	switch c := cmd.(type) {
	case *motion.Travel:
		e.emitMovement("G0", c.MovementBase, 0, false)
	case *motion.Hop:
		e.emitMovement("G0", c.MovementBase, 0, false)
	case *motion.Linear:
		e.emitMovement("G1", c.MovementBase, 0, false)
	case *motion.Extrusion:
		e.emitMovement("G1", c.MovementBase, c.Extrude, true)
	case *motion.ExtrusionMove:
		e.emitMovement("G1", c.MovementBase, c.Extrude, true)
	case *motion.Arc:
		e.emitArc(c)
	case *motion.ArcAccumulator:
		e.emitAccumulator(c)
	case motion.Home:
		e.emitHome(c)
	case motion.SetPositioning:
		e.emitSetPositioning(c)
	case motion.SetExtrusionMode:
		e.emitSetExtrusionMode(c)
	case motion.DisableSteppers:
		e.line(fmt.Sprintf("M84%s", optionalField('S', c.DelaySeconds, c.DelaySeconds != 0)))
	case motion.SetExtruderTemperature:
		e.emitExtruderTemperature(c)
	case motion.SetFan:
		e.emitFan(c)
	case motion.SetBedTemperature:
		e.emitBedTemperature(c)
	case motion.SetAcceleration:
		e.emitAcceleration(c)
	case motion.SetJerk:
		e.emitJerk(c)
	}
}

func (e *Emitter) line(s string) {
	e.b.WriteString(s)
	e.b.WriteByte('\n')
}

// emitMovement writes a G0/G1 line, suppressing unchanged position axes and
// feedrate, per section 4.6's rules.
func (e *Emitter) emitMovement(word string, base motion.MovementBase, extrude float64, hasExtrude bool) {
	if extrude != 0 {
		hasExtrude = true
		word = "G1"
	}

	var b strings.Builder
	b.WriteString(word)

	end := [3]float64{base.End.X, base.End.Y, base.End.Z}
	axisLetters := [3]byte{'X', 'Y', 'Z'}
	for i, letter := range axisLetters {
		if !e.state.hasPosition || !trimEqual(e.state.position[i], end[i]) {
			b.WriteByte(' ')
			b.WriteByte(letter)
			b.WriteString(formatFloat(end[i]))
		}
	}
	if hasExtrude && extrude != 0 {
		b.WriteString(" E")
		b.WriteString(formatFloat(extrude))
	}
	if !e.state.hasFeedrate || e.state.feedrate != base.Feedrate {
		b.WriteString(" F")
		b.WriteString(formatFloat(base.Feedrate))
	}

	e.state.hasPosition = true
	e.state.position = end
	e.state.hasFeedrate = true
	e.state.feedrate = base.Feedrate

	e.line(b.String())
}

// emitArc handles an Arc reaching the emitter unsubdivided (subdivide_arcs
// disabled): default flattening emits a single chord with a trailing
// comment; the extended dialect emits a G15 directive carrying paired
// entry/exit velocities and a signed radius.
func (e *Emitter) emitArc(a *motion.Arc) {
	if e.cfg.Output.GenerateG15 {
		e.line(fmt.Sprintf("G15 X%s Y%s Z%s VX1%s VY1%s VZ1%s VX2%s VY2%s VZ2%s R%s",
			formatFloat(a.End.X), formatFloat(a.End.Y), formatFloat(a.End.Z),
			formatFloat(a.ParentVelocity0.X), formatFloat(a.ParentVelocity0.Y), formatFloat(a.ParentVelocity0.Z),
			formatFloat(a.ParentVelocity1.X), formatFloat(a.ParentVelocity1.Y), formatFloat(a.ParentVelocity1.Z),
			formatFloat(a.Radius)))
		e.state.hasPosition = true
		e.state.position = [3]float64{a.End.X, a.End.Y, a.End.Z}
		return
	}
	mid := motion.MovementBase{Start: a.Start, End: a.End, Feedrate: a.Feedrate}
	e.emitMovementWithComment(mid, a.Extrude[0]+a.Extrude[1], "arc")
}

func (e *Emitter) emitAccumulator(a *motion.ArcAccumulator) {
	if len(a.Contributors) == 0 {
		return
	}
	for _, c := range a.Contributors {
		e.emitOne(c)
	}
}

func (e *Emitter) emitMovementWithComment(base motion.MovementBase, extrude float64, comment string) {
	e.emitMovement("G1", base, extrude, extrude != 0)
	// Overwrite the trailing newline with a comment suffix.
	s := e.b.String()
	s = strings.TrimSuffix(s, "\n")
	s += fmt.Sprintf(" ; %s\n", comment)
	e.b.Reset()
	e.b.WriteString(s)
}

func (e *Emitter) emitHome(h motion.Home) {
	var b strings.Builder
	b.WriteString("G28")
	if h.X {
		b.WriteString(" X0")
	}
	if h.Y {
		b.WriteString(" Y0")
	}
	if h.Z {
		b.WriteString(" Z0")
	}
	e.line(b.String())
	e.state.hasPosition = false
}

func (e *Emitter) emitSetPositioning(s motion.SetPositioning) {
	if e.state.hasPositioning && e.state.positioning == s.Mode {
		return
	}
	e.state.hasPositioning = true
	e.state.positioning = s.Mode
	if s.Mode == motion.PositioningAbsolute {
		e.line("G90")
	} else {
		e.line("G91")
	}
}

func (e *Emitter) emitSetExtrusionMode(s motion.SetExtrusionMode) {
	if e.state.hasExtrusionMode && e.state.extrusionMode == s.Mode {
		return
	}
	e.state.hasExtrusionMode = true
	e.state.extrusionMode = s.Mode
	if s.Mode == motion.PositioningAbsolute {
		e.line("M82")
	} else {
		e.line("M83")
	}
}

func (e *Emitter) emitExtruderTemperature(s motion.SetExtruderTemperature) {
	if last, ok := e.state.extruderTemp[s.Index]; ok && last == s.TargetCelsius && !s.Wait {
		return
	}
	e.state.extruderTemp[s.Index] = s.TargetCelsius
	word := "M104"
	if s.Wait {
		word = "M109"
	}
	line := fmt.Sprintf("%s%s S%s", word, optionalIndex(s.Index), formatFloat(s.TargetCelsius))
	if s.Wait && s.MinimumAccurate {
		line += " R1"
	}
	e.line(line)
}

func (e *Emitter) emitBedTemperature(s motion.SetBedTemperature) {
	if last, ok := e.state.bedTemp[s.Index]; ok && last == s.TargetCelsius && !s.Wait {
		return
	}
	e.state.bedTemp[s.Index] = s.TargetCelsius
	word := "M140"
	if s.Wait {
		word = "M190"
	}
	e.line(fmt.Sprintf("%s%s S%s", word, optionalIndex(s.Index), formatFloat(s.TargetCelsius)))
}

func (e *Emitter) emitFan(s motion.SetFan) {
	if last, ok := e.state.fanSpeed[s.Index]; ok && last == s.Speed {
		return
	}
	e.state.fanSpeed[s.Index] = s.Speed
	if s.Speed == 0 {
		e.line(fmt.Sprintf("M107%s", optionalIndex(s.Index)))
		return
	}
	e.line(fmt.Sprintf("M106%s S%s", optionalIndex(s.Index), formatFloat(s.Speed)))
}

// emitAcceleration emits M204 only for channels that changed and are
// non-zero, per section 4.6.
func (e *Emitter) emitAcceleration(s motion.SetAcceleration) {
	var b strings.Builder
	b.WriteString("M204")
	wrote := false
	if s.HasPrint && s.Print != 0 && (!e.state.hasPrintAccel || e.state.printAccel != s.Print) {
		b.WriteString(" P")
		b.WriteString(formatFloat(s.Print))
		e.state.hasPrintAccel = true
		e.state.printAccel = s.Print
		wrote = true
	}
	if s.HasTravel && s.Travel != 0 && (!e.state.hasTravelAccel || e.state.travelAccel != s.Travel) {
		b.WriteString(" T")
		b.WriteString(formatFloat(s.Travel))
		e.state.hasTravelAccel = true
		e.state.travelAccel = s.Travel
		wrote = true
	}
	if s.HasRetract && s.Retract != 0 && (!e.state.hasRetractAccel || e.state.retractAccel != s.Retract) {
		b.WriteString(" R")
		b.WriteString(formatFloat(s.Retract))
		e.state.hasRetractAccel = true
		e.state.retractAccel = s.Retract
		wrote = true
	}
	if wrote {
		e.line(b.String())
	}
}

func (e *Emitter) emitJerk(s motion.SetJerk) {
	var b strings.Builder
	b.WriteString("M205")
	wrote := false
	fields := []struct {
		has   bool
		value float64
		axis  int
		letter byte
	}{
		{s.HasX, s.X, 0, 'X'},
		{s.HasY, s.Y, 1, 'Y'},
		{s.HasZ, s.Z, 2, 'Z'},
		{s.HasE, s.E, 3, 'E'},
	}
	for _, f := range fields {
		if f.has && f.value != 0 && (!e.state.hasJerk[f.axis] || e.state.jerk[f.axis] != f.value) {
			b.WriteByte(' ')
			b.WriteByte(f.letter)
			b.WriteString(formatFloat(f.value))
			e.state.hasJerk[f.axis] = true
			e.state.jerk[f.axis] = f.value
			wrote = true
		}
	}
	if wrote {
		e.line(b.String())
	}
}

func optionalIndex(index int) string {
	if index == 0 {
		return ""
	}
	return " P" + strconv.Itoa(index)
}

func optionalField(letter byte, v float64, present bool) string {
	if !present {
		return ""
	}
	return " " + string(letter) + formatFloat(v)
}

func trimEqual(a, b float64) bool { return a == b }

// formatFloat renders v with eight fractional digits, strips trailing
// zeros, and removes the decimal point entirely if nothing remains after
// it — the trim-float rule from section 4.6.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', 8, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "" || s == "-" {
		s = "0"
	}
	return s
}
