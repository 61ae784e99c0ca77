package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"govigil/app"
	"govigil/domain/signal"
)

// Renderer turns a scored batch into a ranked signal report.
type Renderer struct{}

// NewRenderer creates a report renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Markdown renders the ranked batch as a markdown document
func (r *Renderer) Markdown(batch *app.BatchResult) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# Signal Detection Report\n\n")
	fmt.Fprintf(&b, "Batch `%s` — %d pairs scored, fingerprint `%s`\n\n", batch.BatchID, len(batch.Results), batch.Fingerprint)
	fmt.Fprintf(&b, "Shrinkage prior: Gamma(shape=%.4f, rate=%.4f) over %d pairs", batch.Prior.Shape, batch.Prior.Rate, batch.Prior.PairsFitted)
	if batch.Prior.LowConfidence {
		b.WriteString(" *(default prior fallback, low confidence)*")
	}
	b.WriteString("\n\n")

	b.WriteString("| Rank | Drug | Event | Score | Tier | PRR | EBGM | EB05 | Causality | Spikes | Novelty |\n")
	b.WriteString("|------|------|-------|-------|------|-----|------|------|-----------|--------|--------|\n")

	for _, result := range batch.Results {
		if result.Failed() {
			continue
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %.3f | %s | %s | %s | %s | %s | %s | %s |\n",
			result.Rank, result.Drug, result.Event,
			result.CompositeScore, result.Tier,
			formatMetric(result.Disproportionality),
			formatEBGM(result.Bayesian), formatEB05(result.Bayesian),
			formatCausality(result.Causality),
			formatSpikes(result.Temporal), formatNovelty(result.Temporal))
	}

	if failed := failedResults(batch.Results); len(failed) > 0 {
		b.WriteString("\n## Unscored pairs\n\n")
		for _, result := range failed {
			fmt.Fprintf(&b, "- **%s / %s**: %s\n", result.Drug, result.Event, result.Error)
		}
	}

	return []byte(b.String())
}

// HTML renders the markdown report to standalone HTML
func (r *Renderer) HTML(batch *app.BatchResult) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.CompletePage})
	return markdown.ToHTML(r.Markdown(batch), p, renderer)
}

func formatMetric(d *signal.DisproportionalityResult) string {
	if d == nil {
		return "—"
	}
	marker := ""
	if d.PRR.Signal {
		marker = " ⚑"
	}
	return fmt.Sprintf("%.2f%s", d.PRR.Value, marker)
}

func formatEBGM(b *signal.BayesianResult) string {
	if b == nil {
		return "—"
	}
	return fmt.Sprintf("%.2f", b.EBGM)
}

func formatEB05(b *signal.BayesianResult) string {
	if b == nil {
		return "—"
	}
	marker := ""
	if b.Signal {
		marker = " ⚑"
	}
	return fmt.Sprintf("%.2f%s", b.EB05, marker)
}

func formatCausality(c *signal.CausalityResult) string {
	if c == nil {
		return "—"
	}
	return fmt.Sprintf("%s / %s (%d)", c.UMC, c.NaranjoCategory, c.NaranjoScore)
}

func formatSpikes(t *signal.TemporalResult) string {
	if t == nil {
		return "—"
	}
	return fmt.Sprintf("%d", len(t.Spikes))
}

func formatNovelty(t *signal.TemporalResult) string {
	if t == nil {
		return "—"
	}
	return fmt.Sprintf("%.2f", t.Novelty)
}

func failedResults(results []signal.FusionResult) []signal.FusionResult {
	var failed []signal.FusionResult
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	return failed
}
