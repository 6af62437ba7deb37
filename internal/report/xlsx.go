package report

import (
	"fmt"

	"github.com/ameisen/gcgg-go/internal/motion"
	"github.com/xuri/excelize/v2"
)

// WriteXLSX renders the run's diagnostics and per-kind counts into a
// workbook, grounded on the teacher importer's excelize.OpenFile/GetRows
// usage mirrored in reverse: here the file is built rather than read.
func WriteXLSX(path string, s Summary) error {
	f := excelize.NewFile()
	defer f.Close()

	const diagSheet = "Diagnostics"
	f.SetSheetName("Sheet1", diagSheet)

	diagRows := [][]any{
		{"Metric", "Value"},
		{"Run ID", s.Sink.RunID},
		{"Failed jerk tests", s.Sink.FailedJerkTests},
		{"Rejected corner arcs", s.Sink.RejectedArcs},
		{"Degenerate geometry recoveries", s.Sink.DegenerateGeometry},
		{"Unknown input commands", s.Sink.UnknownCommands},
		{"Accumulated regular arcs emitted", s.Sink.AccumulatorsEmitted},
		{"Travel distance (mm)", s.TravelDistance},
		{"Extrusion distance (mm)", s.ExtrudeDistance},
		{"Extrusion volume (mm^3)", s.ExtrudeVolume},
	}
	if err := writeRows(f, diagSheet, diagRows); err != nil {
		return err
	}

	const kindSheet = "Command Kinds"
	if _, err := f.NewSheet(kindSheet); err != nil {
		return err
	}
	kindRows := [][]any{{"Kind", "Count"}}
	for kind := motion.KindTravel; kind <= motion.KindSetJerk; kind++ {
		count, ok := s.KindCounts[kind]
		if !ok {
			continue
		}
		kindRows = append(kindRows, []any{kind.String(), count})
	}
	if err := writeRows(f, kindSheet, kindRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return fmt.Errorf("report: %s row %d: %w", sheet, i, err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}
