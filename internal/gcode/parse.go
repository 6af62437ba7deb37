// Package gcode tokenizes the input dialect into typed commands (C9/C10)
// and serializes the pipeline's output back into text (C8).
//
// The tokenizer is grounded on the teacher's internal/gcode/parser.go: a
// single compiled regular expression extracts <Letter><signed-float>
// argument pairs, and a small dispatch table keyed by the leading command
// word turns them into typed commands while tracking running parser state
// (position, feedrate, positioning/extrusion mode) the same way the
// teacher's classifyMove state machine did for its narrower G0/G1-only
// dialect.
package gcode

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/ameisen/gcgg-go/internal/vecmath"
)

var argPattern = regexp.MustCompile(`([A-Za-z])(-?[0-9]*\.?[0-9]+)`)

// ParseError is a parse-failure (malformed argument, negative where
// unsigned required): fatal per the error handling design.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// parserState tracks the running position and modal state the dispatcher
// needs to turn a single line's arguments into an absolute movement.
type parserState struct {
	position       vecmath.Vector3
	extruder       float64
	feedrate       float64
	positioning    motion.PositioningMode
	extrusionMode  motion.PositioningMode
}

// UnknownCommandFunc is called once per line whose command word matched no
// dispatch entry, so the caller can log it and increment a diagnostics
// counter without this package importing the diagnostics/logging packages
// directly.
type UnknownCommandFunc func(line int, word string)

// Parse reads line-oriented G-code from r and returns the ordered command
// stream. onUnknown, if non-nil, is invoked for each unrecognized command
// word; unknown words never change parser state (S7).
func Parse(r io.Reader, onUnknown UnknownCommandFunc) ([]motion.Command, error) {
	state := &parserState{positioning: motion.PositioningAbsolute, extrusionMode: motion.PositioningAbsolute}

	var commands []motion.Command
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := stripComments(scanner.Text())
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		word := strings.ToUpper(fields[0])
		args := parseArgs(fields[1:])

		cmd, err := dispatch(state, word, args, lineNo)
		if err != nil {
			return nil, err
		}
		if cmd == nil {
			if onUnknown != nil {
				onUnknown(lineNo, word)
			}
			continue
		}
		commands = append(commands, cmd...)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return commands, nil
}

// stripComments removes a trailing `;` line comment and any `(...)`
// parenthetical comments, matching the input dialect's comment rules.
func stripComments(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	for {
		start := strings.IndexByte(line, '(')
		if start < 0 {
			break
		}
		end := strings.IndexByte(line[start:], ')')
		if end < 0 {
			line = line[:start]
			break
		}
		line = line[:start] + line[start+end+1:]
	}
	return line
}

// parseArgs extracts <Letter><Number> pairs from the remainder of a line.
func parseArgs(tokens []string) map[byte]float64 {
	args := make(map[byte]float64)
	for _, tok := range tokens {
		m := argPattern.FindStringSubmatch(tok)
		if m == nil {
			continue
		}
		letter := strings.ToUpper(m[1])[0]
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		args[letter] = v
	}
	return args
}

// unsignedInt rounds a parsed argument to the nearest integer and rejects
// negative results, per section 6's "Integer arguments are parsed from
// real values via round-to-nearest; negative values where unsigned are
// required terminate the program with a diagnostic."
func unsignedInt(args map[byte]float64, letter byte, lineNo int, context string) (int, bool, error) {
	v, ok := args[letter]
	if !ok {
		return 0, false, nil
	}
	rounded := math.Round(v)
	if rounded < 0 {
		return 0, false, &ParseError{Line: lineNo, Msg: fmt.Sprintf("%s: negative value not allowed for %c (%v)", context, letter, v)}
	}
	return int(rounded), true, nil
}

func dispatch(state *parserState, word string, args map[byte]float64, lineNo int) ([]motion.Command, error) {
	switch word {
	case "G0", "G1":
		return dispatchMove(state, word, args, lineNo)
	case "G28":
		return []motion.Command{motion.Home{
			X: hasFlag(args, 'X'),
			Y: hasFlag(args, 'Y'),
			Z: hasFlag(args, 'Z'),
		}}, nil
	case "G90":
		state.positioning = motion.PositioningAbsolute
		return []motion.Command{motion.SetPositioning{Mode: motion.PositioningAbsolute}}, nil
	case "G91":
		state.positioning = motion.PositioningRelative
		return []motion.Command{motion.SetPositioning{Mode: motion.PositioningRelative}}, nil
	case "M82":
		state.extrusionMode = motion.PositioningAbsolute
		return []motion.Command{motion.SetExtrusionMode{Mode: motion.PositioningAbsolute}}, nil
	case "M83":
		state.extrusionMode = motion.PositioningRelative
		return []motion.Command{motion.SetExtrusionMode{Mode: motion.PositioningRelative}}, nil
	case "M84":
		return []motion.Command{motion.DisableSteppers{DelaySeconds: args['S']}}, nil
	case "M104", "M109":
		idx, _, err := unsignedInt(args, 'P', lineNo, word)
		if err != nil {
			return nil, err
		}
		return []motion.Command{motion.SetExtruderTemperature{
			Index:           idx,
			TargetCelsius:   args['S'],
			Wait:            word == "M109",
			MinimumAccurate: hasFlag(args, 'R'),
		}}, nil
	case "M106", "M107":
		idx, _, err := unsignedInt(args, 'P', lineNo, word)
		if err != nil {
			return nil, err
		}
		speed := args['S']
		if word == "M107" {
			speed = 0
		}
		return []motion.Command{motion.SetFan{Index: idx, Speed: speed}}, nil
	case "M140", "M190":
		indexLetter := byte('P')
		if hasFlag(args, 'H') {
			indexLetter = 'H'
		}
		idx, _, err := unsignedInt(args, indexLetter, lineNo, word)
		if err != nil {
			return nil, err
		}
		return []motion.Command{motion.SetBedTemperature{
			Index:         idx,
			TargetCelsius: args['S'],
			Wait:          word == "M190",
		}}, nil
	case "M204":
		sa := motion.SetAcceleration{}
		if v, ok := args['S']; ok {
			sa.HasPrint, sa.Print = true, v
			sa.HasTravel, sa.Travel = true, v
		}
		if v, ok := args['P']; ok {
			sa.HasPrint, sa.Print = true, v
		}
		if v, ok := args['T']; ok {
			sa.HasTravel, sa.Travel = true, v
		}
		if v, ok := args['R']; ok {
			sa.HasRetract, sa.Retract = true, v
		}
		return []motion.Command{sa}, nil
	case "M205":
		sj := motion.SetJerk{}
		if v, ok := args['X']; ok {
			sj.HasX, sj.X = true, v
		}
		if v, ok := args['Y']; ok {
			sj.HasY, sj.Y = true, v
		}
		if v, ok := args['Z']; ok {
			sj.HasZ, sj.Z = true, v
		}
		if v, ok := args['E']; ok {
			sj.HasE, sj.E = true, v
		}
		return []motion.Command{sj}, nil
	default:
		return nil, nil
	}
}

func hasFlag(args map[byte]float64, letter byte) bool {
	_, ok := args[letter]
	return ok
}

// dispatchMove handles G0/G1: it resolves the new absolute position and
// extrusion delta from the arguments and the current positioning/extrusion
// mode, then classifies the result into the appropriate movement subkind.
func dispatchMove(state *parserState, word string, args map[byte]float64, lineNo int) ([]motion.Command, error) {
	start := state.position
	end := start
	hasX, hasY, hasZ, hasE := hasFlag(args, 'X'), hasFlag(args, 'Y'), hasFlag(args, 'Z'), hasFlag(args, 'E')

	if state.positioning == motion.PositioningAbsolute {
		if hasX {
			end.X = args['X']
		}
		if hasY {
			end.Y = args['Y']
		}
		if hasZ {
			end.Z = args['Z']
		}
	} else {
		if hasX {
			end.X += args['X']
		}
		if hasY {
			end.Y += args['Y']
		}
		if hasZ {
			end.Z += args['Z']
		}
	}

	extrude := 0.0
	if hasE {
		if state.extrusionMode == motion.PositioningAbsolute {
			extrude = args['E'] - state.extruder
			state.extruder = args['E']
		} else {
			extrude = args['E']
			state.extruder += args['E']
		}
	}

	if f, ok := args['F']; ok {
		state.feedrate = f
	}

	state.position = end

	if start == end && extrude == 0 {
		// No-op move: nothing to reconstruct. A non-nil empty slice keeps
		// Parse from reporting the word as unknown.
		return []motion.Command{}, nil
	}

	base := motion.MovementBase{Start: start, End: end, Feedrate: state.feedrate}

	changedXY := !vecmath.NearlyEqualScalar(start.X, end.X) || !vecmath.NearlyEqualScalar(start.Y, end.Y)
	changedZ := !vecmath.NearlyEqualScalar(start.Z, end.Z)

	switch {
	case extrude != 0 && (changedXY || changedZ):
		base.IsTravel = false
		return []motion.Command{&motion.ExtrusionMove{MovementBase: base, Extrude: extrude}}, nil
	case extrude != 0:
		return []motion.Command{&motion.Extrusion{MovementBase: base, Extrude: extrude}}, nil
	case changedXY && changedZ:
		// Combined XY+Z travel: classified as Travel (rapid) or Linear
		// (feed) by command word, same as the teacher's classifyMove.
		base.IsTravel = word == "G0"
		if word == "G0" {
			return []motion.Command{&motion.Travel{MovementBase: base}}, nil
		}
		return []motion.Command{&motion.Linear{MovementBase: base}}, nil
	case changedZ:
		return []motion.Command{&motion.Hop{MovementBase: base}}, nil
	case changedXY:
		base.IsTravel = word == "G0"
		if word == "G0" {
			return []motion.Command{&motion.Travel{MovementBase: base}}, nil
		}
		return []motion.Command{&motion.Linear{MovementBase: base}}, nil
	default:
		return []motion.Command{}, nil
	}
}
