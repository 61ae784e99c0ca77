package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"govigil/app"
)

const sheetName = "Ranked Signals"

// Exporter writes a scored batch to an .xlsx workbook, one row per pair in
// rank order.
type Exporter struct{}

// NewExporter creates an exporter
func NewExporter() *Exporter {
	return &Exporter{}
}

var headers = []string{
	"Rank", "Drug", "Event", "Composite Score", "Tier", "Percentile",
	"Cases (a)", "PRR", "PRR CI Low", "PRR CI High", "ROR", "IC", "IC025",
	"EBGM", "EB05", "EB95", "Adjusted p", "UMC", "Naranjo", "Spikes", "Novelty", "Error",
}

// Export writes the batch to the given path
func (e *Exporter) Export(batch *app.BatchResult, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}

	for i := range batch.Results {
		r := &batch.Results[i]
		row := []interface{}{
			r.Rank, r.Drug, r.Event, r.CompositeScore, string(r.Tier), r.Percentile,
			r.Table.A,
		}
		if d := r.Disproportionality; d != nil {
			row = append(row, d.PRR.Value, d.PRR.CILower, d.PRR.CIUpper, d.ROR.Value, d.IC.Value, d.IC.CILower)
		} else {
			row = append(row, nil, nil, nil, nil, nil, nil)
		}
		if b := r.Bayesian; b != nil {
			row = append(row, b.EBGM, b.EB05, b.EB95, b.AdjustedP)
		} else {
			row = append(row, nil, nil, nil, nil)
		}
		if c := r.Causality; c != nil {
			row = append(row, string(c.UMC), r.Causality.NaranjoScore)
		} else {
			row = append(row, nil, nil)
		}
		if t := r.Temporal; t != nil {
			row = append(row, len(t.Spikes), t.Novelty)
		} else {
			row = append(row, nil, nil)
		}
		row = append(row, r.Error)

		start, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, start, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
