package report

import (
	"strings"

	"statbasket/domain/stats"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const undefined = "undefined"

var printer = message.NewPrinter(language.English)

type row struct {
	label  string
	values []string
}

type section struct {
	title string
	rows  []row
	// merged sections span every value column with a single value.
	merged bool
}

// table is the format-independent content of a describe report.
type table struct {
	title    string
	columns  []string
	sections []section
}

// buildTable lays out a basket and an optional hypothesis outcome.
func buildTable(b *stats.Basket, outcome *stats.HypothesisOutcome, places int) table {
	t := table{title: "DESCRIPTION OF " + subject(b)}
	for _, st := range b.Stats {
		t.columns = append(t.columns, st.Name)
	}

	kind, letter := "Sample", "n"
	if b.Config.IsPopulation {
		kind, letter = "Population", "N"
	}

	per := func(f func(stats.SampleStats) string) []string {
		out := make([]string, len(b.Stats))
		for i, st := range b.Stats {
			out[i] = f(st)
		}
		return out
	}
	num := func(f func(stats.SampleStats) float64) []string {
		return per(func(st stats.SampleStats) string { return formatNumber(f(st), places) })
	}
	opt := func(f func(stats.SampleStats) *float64) []string {
		return per(func(st stats.SampleStats) string { return formatOptional(f(st), places) })
	}

	general := section{title: "General " + kind + " Statistics", rows: []row{
		{"Size of " + kind + " (" + letter + ")", per(func(st stats.SampleStats) string { return printer.Sprint(st.N) })},
		{"Minimum Value (min)", num(func(st stats.SampleStats) float64 { return st.Min })},
		{"Maximum Value (max)", num(func(st stats.SampleStats) float64 { return st.Max })},
	}}
	if outliers := per(func(st stats.SampleStats) string { return printer.Sprint(st.OutliersRemoved) }); hasNonZero(b.Stats) {
		general.rows = append(general.rows, row{"Outliers Removed", outliers})
	}

	central := section{title: "Measures of Central Tendency", rows: []row{
		{"Mean", num(func(st stats.SampleStats) float64 { return st.Mean })},
		{"Median", num(func(st stats.SampleStats) float64 { return st.Median })},
		{"Mode", per(func(st stats.SampleStats) string { return formatMode(st.Mode, places) })},
		{"Range", num(func(st stats.SampleStats) float64 { return st.Range })},
		{"Skewness", opt(func(st stats.SampleStats) *float64 { return st.Skewness })},
	}}

	variation := section{title: "Measures of Variation", rows: []row{
		{"Variance", num(func(st stats.SampleStats) float64 { return st.Variance })},
		{"Standard Deviation", num(func(st stats.SampleStats) float64 { return st.StandardDeviation })},
		{"Standard Error", num(func(st stats.SampleStats) float64 { return st.StandardError })},
		{"Coeff. of Variation", opt(func(st stats.SampleStats) *float64 { return st.CV })},
		{"Interquartile Range", num(func(st stats.SampleStats) float64 { return st.Quartiles.IQR })},
	}}
	if b.PooledVariance != nil {
		variation.rows = append(variation.rows, row{"Pooled Variance", spread(formatNumber(*b.PooledVariance, places), len(b.Stats))})
	}

	interval := section{title: "Confidence Interval Statistics", rows: []row{
		{"Confidence Level", spread(formatNumber(b.Config.ConfidenceLevel.Float64(), places), len(b.Stats))},
		{"α (" + b.Config.Tail.String() + "-tailed)", spread(formatNumber(1-b.Config.ConfidenceLevel.Float64(), places), len(b.Stats))},
		{criticalLabel(b.Stats), num(func(st stats.SampleStats) float64 { return st.Interval.Critical.Score })},
		{"Margin of Error (E)", num(func(st stats.SampleStats) float64 { return st.Interval.MarginOfError })},
		{"CI (mean ± E)", per(func(st stats.SampleStats) string {
			return "[" + formatNumber(st.Interval.Lower, places) + ", " + formatNumber(st.Interval.Upper, places) + "]"
		})},
	}}

	t.sections = []section{general, central, variation, interval}

	if outcome != nil {
		decision := "fail to reject h0"
		if outcome.RejectNull {
			decision = "reject h0"
		}
		hyp := section{title: "Hypothesis Test Results", merged: true, rows: []row{
			{"Test Type", []string{outcome.TestName}},
			{"Null Hypothesis", []string{"h0: " + outcome.Null}},
			{"Alternative Hypothesis", []string{"h1: " + outcome.Alternative}},
			{"Score Type", []string{string(outcome.Distribution)}},
			{"Score", []string{formatNumber(outcome.Statistic, places)}},
			{"Critical Score", []string{formatNumber(outcome.Critical.Score, places)}},
		}}
		if outcome.PValue != nil {
			hyp.rows = append(hyp.rows, row{"p-value", []string{formatNumber(*outcome.PValue, 4)}})
		}
		hyp.rows = append(hyp.rows, row{"Decision", []string{decision}})
		t.sections = append(t.sections, hyp)
	}
	return t
}

func subject(b *stats.Basket) string {
	switch b.Kind {
	case stats.BasketDependent:
		return "DATA DIFFERENCE"
	case stats.BasketIndependent:
		return b.Stats[0].Name + " and " + b.Stats[1].Name
	}
	if len(b.Stats) > 0 {
		return b.Stats[0].Name
	}
	return ""
}

func criticalLabel(all []stats.SampleStats) string {
	if len(all) == 0 {
		return "critical score"
	}
	return string(all[0].Interval.Critical.Distribution) + "-score"
}

func hasNonZero(all []stats.SampleStats) bool {
	for _, st := range all {
		if st.OutliersRemoved > 0 {
			return true
		}
	}
	return false
}

func spread(v string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// formatNumber rounds to places decimals with thousands separators.
func formatNumber(v float64, places int) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(places)))
}

func formatOptional(v *float64, places int) string {
	if v == nil {
		return undefined
	}
	return formatNumber(*v, places)
}

func formatMode(m stats.Mode, places int) string {
	switch m.Kind {
	case stats.ModeUnique:
		return formatNumber(m.Values[0], places)
	case stats.ModeMultimodal:
		parts := make([]string, len(m.Values))
		for i, v := range m.Values {
			parts[i] = formatNumber(v, places)
		}
		return "multimodal (" + strings.Join(parts, "; ") + ")"
	}
	return "none"
}
