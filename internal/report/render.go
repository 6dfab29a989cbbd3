package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"statbasket/domain/core"
	"statbasket/domain/stats"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// DefaultRoundPlaces is used when Options.RoundPlaces is negative.
const DefaultRoundPlaces = 3

// Options controls report rendering.
type Options struct {
	RoundPlaces int
	Format      Format
}

// Report is a rendered describe document.
type Report struct {
	ID          core.ReportID  `json:"id"`
	BasketID    core.BasketID  `json:"basket_id"`
	Format      Format         `json:"format"`
	CreatedAt   core.Timestamp `json:"created_at"`
	ContentType string         `json:"-"`
	Body        []byte         `json:"-"`
}

// Render builds the describe report for a basket. outcome may be nil when no
// hypothesis test was run.
func Render(b *stats.Basket, outcome *stats.HypothesisOutcome, opts Options) (*Report, error) {
	if b == nil || len(b.Stats) == 0 {
		return nil, core.NewDegenerateSampleError("basket has no statistics")
	}
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if _, err := ParseFormat(string(opts.Format)); err != nil {
		return nil, err
	}
	if opts.RoundPlaces < 0 {
		opts.RoundPlaces = DefaultRoundPlaces
	}

	r := &Report{
		ID:          core.NewReportID(),
		BasketID:    b.ID,
		Format:      opts.Format,
		CreatedAt:   core.Now(),
		ContentType: opts.Format.ContentType(),
	}

	var err error
	switch opts.Format {
	case FormatJSON:
		r.Body, err = renderJSON(r, b, outcome)
	case FormatMarkdown:
		r.Body = []byte(renderMarkdown(buildTable(b, outcome, opts.RoundPlaces)))
	case FormatHTML:
		r.Body = renderHTML(buildTable(b, outcome, opts.RoundPlaces))
	default:
		r.Body = []byte(renderText(buildTable(b, outcome, opts.RoundPlaces)))
	}
	if err != nil {
		return nil, fmt.Errorf("render %s report: %w", opts.Format, err)
	}
	return r, nil
}

func renderJSON(r *Report, b *stats.Basket, outcome *stats.HypothesisOutcome) ([]byte, error) {
	doc := struct {
		*Report
		Basket     *stats.Basket             `json:"basket"`
		Hypothesis *stats.HypothesisOutcome `json:"hypothesis,omitempty"`
	}{r, b, outcome}
	return json.MarshalIndent(doc, "", "  ")
}

func renderText(t table) string {
	labelWidth := len("Statistic")
	valueWidth := 0
	for _, c := range t.columns {
		valueWidth = max(valueWidth, width(c))
	}
	for _, s := range t.sections {
		for _, r := range s.rows {
			labelWidth = max(labelWidth, width(r.label))
			if s.merged {
				continue
			}
			for _, v := range r.values {
				valueWidth = max(valueWidth, width(v))
			}
		}
	}
	cols := len(t.columns)
	// Inner width of the value area, columns separated by " | ".
	valueArea := cols*valueWidth + (cols-1)*3
	for _, s := range t.sections {
		if !s.merged {
			continue
		}
		for _, r := range s.rows {
			valueArea = max(valueArea, width(r.values[0]))
		}
	}
	need := width(t.title)
	for _, s := range t.sections {
		need = max(need, width(s.title)+2)
	}
	valueArea = max(valueArea, need-labelWidth-3)
	if cols > 0 {
		valueWidth = (valueArea - (cols-1)*3 + cols - 1) / cols
		valueArea = cols*valueWidth + (cols-1)*3
	}
	inner := labelWidth + 3 + valueArea

	var sb strings.Builder
	rule := "|" + strings.Repeat("=", inner+2) + "|\n"
	line := func(label, values string) {
		fmt.Fprintf(&sb, "| %s | %s |\n", pad(label, labelWidth), pad(values, valueArea))
	}

	sb.WriteString(rule)
	fmt.Fprintf(&sb, "| %s |\n", center(t.title, inner, ' '))
	sb.WriteString(rule)
	headers := make([]string, cols)
	for i, c := range t.columns {
		headers[i] = pad(c, valueWidth)
	}
	line("Statistic", strings.Join(headers, " | "))

	for _, s := range t.sections {
		sb.WriteString(rule)
		fmt.Fprintf(&sb, "|-%s-|\n", center(" "+s.title+" ", inner, '-'))
		sb.WriteString(rule)
		for _, r := range s.rows {
			if s.merged {
				line(r.label, r.values[0])
				continue
			}
			cells := make([]string, len(r.values))
			for i, v := range r.values {
				cells[i] = pad(v, valueWidth)
			}
			line(r.label, strings.Join(cells, " | "))
		}
	}
	sb.WriteString(rule)
	return sb.String()
}

func renderMarkdown(t table) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", t.title)
	for _, s := range t.sections {
		fmt.Fprintf(&sb, "\n## %s\n\n", s.title)
		if s.merged {
			sb.WriteString("| Statistic | Value |\n|---|---|\n")
			for _, r := range s.rows {
				fmt.Fprintf(&sb, "| %s | %s |\n", escapeCell(r.label), escapeCell(r.values[0]))
			}
			continue
		}
		sb.WriteString("| Statistic | " + strings.Join(t.columns, " | ") + " |\n")
		sb.WriteString("|---" + strings.Repeat("|---", len(t.columns)) + "|\n")
		for _, r := range s.rows {
			cells := make([]string, len(r.values))
			for i, v := range r.values {
				cells[i] = escapeCell(v)
			}
			fmt.Fprintf(&sb, "| %s | %s |\n", escapeCell(r.label), strings.Join(cells, " | "))
		}
	}
	return sb.String()
}

func renderHTML(t table) []byte {
	md := []byte(renderMarkdown(t))
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML(md, p, renderer)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func width(s string) int {
	return utf8.RuneCountInString(s)
}

func pad(s string, w int) string {
	if n := width(s); n < w {
		return s + strings.Repeat(" ", w-n)
	}
	return s
}

func center(s string, w int, fill rune) string {
	n := width(s)
	if n >= w {
		return s
	}
	left := (w - n) / 2
	right := w - n - left
	return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), right)
}
