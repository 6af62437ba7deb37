// Package trace writes a debug DXF of the geometry a run produced, so a
// CAD viewer can be used to inspect corner arcs, accumulated regular arcs,
// and the final subdivided chord list. Only the final command stream is
// written; the original moves are not included.
// Grounded on the teacher's internal/importer/dxf.go, which reads entities
// through the same github.com/yofu/dxf library this package writes with.
package trace

import (
	"github.com/yofu/dxf"

	"github.com/ameisen/gcgg-go/internal/motion"
)

// WriteDXF renders every movement as a 3D DXF LINE entity from its start
// to its end point. All lines go on the drawing's default layer; extrusion
// moves and travels are not separated.
func WriteDXF(path string, commands []motion.Command) error {
	d := dxf.NewDrawing()

	for _, cmd := range commands {
		seg, ok := cmd.(motion.Segment)
		if !ok {
			continue
		}
		b := seg.Base()
		d.Line(b.Start.X, b.Start.Y, b.Start.Z, b.End.X, b.End.Y, b.End.Z)
	}

	return d.SaveAs(path)
}
