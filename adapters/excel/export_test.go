package excel

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"govigil/app"
	"govigil/domain/signal"
	"govigil/internal/testkit"
)

func TestExport(t *testing.T) {
	service, err := app.NewFusionService(signal.DefaultScoringConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	batch, err := service.ScoreBatch(context.Background(), app.BatchRequest{
		Pairs: testkit.NewBatchGenerator(17).Batch(5),
	})
	if err != nil {
		t.Fatalf("score batch: %v", err)
	}

	path := filepath.Join(t.TempDir(), "signals.xlsx")
	if err := NewExporter().Export(batch, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	// Header plus one row per pair.
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	if rows[0][0] != "Rank" || rows[0][1] != "Drug" {
		t.Errorf("unexpected header row: %v", rows[0])
	}
}
