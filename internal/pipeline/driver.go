package pipeline

import (
	"io"

	"github.com/ameisen/gcgg-go/internal/config"
	"github.com/ameisen/gcgg-go/internal/diagnostics"
	"github.com/ameisen/gcgg-go/internal/gcode"
	"github.com/ameisen/gcgg-go/internal/motion"
)

// Result bundles a completed run's emitted text alongside the diagnostics
// gathered while producing it, for the CLI and report writers to consume.
type Result struct {
	Commands []motion.Command
	Output   string
	Sink     *diagnostics.Sink
}

// Run executes the full post-processing pipeline over r, per section 2's
// data-flow: parse, coalesce, link, plan motion without jerk enforcement,
// smooth (reserved), insert corner arcs, accumulate regular arcs, subdivide
// arcs, relink, plan motion with jerk enforcement, and emit.
func Run(r io.Reader, cfg config.Config) (*Result, error) {
	sink := diagnostics.New()

	commands, err := gcode.Parse(r, func(line int, word string) {
		sink.UnknownCommands++
	})
	if err != nil {
		return nil, err
	}

	commands = Coalesce(commands, cfg.Extrusion.Epsilon)
	Link(commands)

	ComputeMotion(commands, false, cfg, sink)

	commands = Smooth(commands, cfg.Smoothing)

	commands = InsertCornerArcs(commands, cfg.Arc, sink)
	commands = AccumulateArcs(commands, cfg.RegArcGen, sink)
	commands = SubdivideArcs(commands, cfg.Arc, cfg.Output.SubdivideArcs, sink)

	Link(commands)
	ComputeMotion(commands, true, cfg, sink)

	emitter := gcode.NewEmitter(cfg)
	output := emitter.Emit(commands)

	return &Result{Commands: commands, Output: output, Sink: sink}, nil
}
