package report

import (
	"context"
	"strings"
	"testing"

	"govigil/app"
	"govigil/domain/signal"
	"govigil/internal/testkit"
)

func scoredBatch(t *testing.T) *app.BatchResult {
	t.Helper()
	service, err := app.NewFusionService(signal.DefaultScoringConfig())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	pairs := testkit.NewBatchGenerator(13).Batch(4)
	pairs = append(pairs, signal.PairInput{Drug: "", Event: "rash", Table: signal.ContingencyTable{A: 1, B: 1, C: 1, D: 1}})

	batch, err := service.ScoreBatch(context.Background(), app.BatchRequest{Pairs: pairs})
	if err != nil {
		t.Fatalf("score batch: %v", err)
	}
	return batch
}

func TestMarkdown(t *testing.T) {
	batch := scoredBatch(t)
	doc := string(NewRenderer().Markdown(batch))

	if !strings.Contains(doc, "# Signal Detection Report") {
		t.Error("missing report title")
	}
	if !strings.Contains(doc, string(batch.Fingerprint)) {
		t.Error("missing batch fingerprint")
	}
	if !strings.Contains(doc, "| Rank | Drug | Event |") {
		t.Error("missing ranked table header")
	}
	for _, r := range batch.Results {
		if r.Failed() {
			continue
		}
		if !strings.Contains(doc, r.Drug) {
			t.Errorf("ranked table missing pair %s", r.Drug)
		}
	}
	if !strings.Contains(doc, "## Unscored pairs") {
		t.Error("missing unscored pairs section for the failed pair")
	}
}

func TestHTML(t *testing.T) {
	doc := string(NewRenderer().HTML(scoredBatch(t)))

	if !strings.Contains(doc, "<table>") {
		t.Error("expected the ranked table rendered as HTML")
	}
	if !strings.Contains(doc, "Signal Detection Report") {
		t.Error("missing report title in HTML output")
	}
}
