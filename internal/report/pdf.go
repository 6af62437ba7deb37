package report

import (
	"fmt"

	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/go-pdf/fpdf"
)

const (
	pageWidth   = 210.0
	pageHeight  = 297.0
	marginLeft  = 15.0
	marginRight = 15.0
	marginTop   = 15.0
)

// WritePDF renders a single-page run summary, grounded on the teacher's
// export.ExportPDF layout conventions (A4, Helvetica, a header and a
// labeled statistics table) but carrying this domain's counters instead of
// sheet-placement geometry.
func WritePDF(path string, s Summary) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, marginTop)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	title := "G-code Post-Processing Summary"
	if s.Sink.RunID != "" {
		title += fmt.Sprintf(" (run %s)", s.Sink.RunID)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, title, "", 0, "L", false, 0, "")

	y := marginTop + 14
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, y, pageWidth-marginRight, y)
	y += 6

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Geometry", "", 0, "L", false, 0, "")
	y += 9

	geometryRows := []struct {
		label string
		value string
	}{
		{"Travel distance", fmt.Sprintf("%.2f mm", s.TravelDistance)},
		{"Extrusion distance", fmt.Sprintf("%.2f mm", s.ExtrudeDistance)},
		{"Extrusion volume", fmt.Sprintf("%.4f mm^3", s.ExtrudeVolume)},
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range geometryRows {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, row.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, row.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Diagnostics", "", 0, "L", false, 0, "")
	y += 9

	diagRows := []struct {
		label string
		value int
	}{
		{"Failed jerk tests", s.Sink.FailedJerkTests},
		{"Rejected corner arcs", s.Sink.RejectedArcs},
		{"Degenerate geometry recoveries", s.Sink.DegenerateGeometry},
		{"Unknown input commands", s.Sink.UnknownCommands},
		{"Accumulated regular arcs emitted", s.Sink.AccumulatorsEmitted},
	}
	pdf.SetFont("Helvetica", "", 10)
	for _, row := range diagRows {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(70, 6, row.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", row.value), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Command kinds", "", 0, "L", false, 0, "")
	y += 9

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetFillColor(230, 230, 230)
	for kind := motion.KindTravel; kind <= motion.KindSetJerk; kind++ {
		count, ok := s.KindCounts[kind]
		if !ok {
			continue
		}
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(70, 5, kind.String(), "1", 0, "L", true, 0, "")
		pdf.CellFormat(30, 5, fmt.Sprintf("%d", count), "1", 0, "C", true, 0, "")
		y += 5
	}

	return pdf.OutputFileAndClose(path)
}
