// Package pipeline implements the post-parse pipeline stages (C3-C7): the
// coalescer, corner-arc inserter, arc accumulator, arc subdivider, and
// motion planner, plus the driver that sequences them.
package pipeline

import "github.com/ameisen/gcgg-go/internal/motion"

// Link rebuilds the doubly-linked segment chain over an ordered command
// stream, breaking the chain across any delay-inducing instruction. The
// driver runs it after coalescing and again after arc subdivision,
// matching the pass ordering in section 2's data-flow diagram.
func Link(commands []motion.Command) {
	for _, cmd := range commands {
		if seg, ok := cmd.(motion.Segment); ok {
			seg.Base().Prev = nil
			seg.Base().Next = nil
		}
	}

	var prev motion.Segment
	for _, cmd := range commands {
		if cmd.IsDelayInducing() {
			prev = nil
			continue
		}
		seg, ok := cmd.(motion.Segment)
		if !ok {
			continue
		}
		if prev != nil {
			prev.Base().Next = seg
			seg.Base().Prev = prev
		}
		prev = seg
	}
}
