package stats

import (
	"sort"

	"statbasket/domain/core"
)

// ============================================================================
// SCORES AND INTERVALS
// ============================================================================

// CriticalScore is a table lookup result.
type CriticalScore struct {
	Score        float64      `json:"score"`
	Distribution Distribution `json:"distribution"`
	Alpha        float64      `json:"alpha"`
	DF           int          `json:"df"`
	LookupDF     int          `json:"lookup_df"`
}

// ConfidenceInterval is always symmetric around Mean.
type ConfidenceInterval struct {
	Lower         float64       `json:"lower"`
	Upper         float64       `json:"upper"`
	Mean          float64       `json:"mean"`
	StandardError float64       `json:"standard_error"`
	MarginOfError float64       `json:"margin_of_error"`
	Critical      CriticalScore `json:"critical"`
}

// ============================================================================
// HYPOTHESIS TESTS
// ============================================================================

// TestKind identifies which test statistic was computed.
type TestKind string

const (
	TestOnePopulation              TestKind = "one_population"
	TestTwoPopulationKnownVariance TestKind = "two_population_known_variance"
	TestTwoPopulationDependent     TestKind = "two_population_dependent"
	TestTwoPopulationPooled        TestKind = "two_population_pooled_variance"
)

// Name returns a human-readable label.
func (k TestKind) Name() string {
	switch k {
	case TestOnePopulation:
		return "single population"
	case TestTwoPopulationKnownVariance:
		return "two populations, known variance"
	case TestTwoPopulationDependent:
		return "two populations, dependent"
	case TestTwoPopulationPooled:
		return "two populations, pooled variance"
	}
	return string(k)
}

// TwoSample reports whether the statistic compares two means.
func (k TestKind) TwoSample() bool {
	return k != TestOnePopulation
}

// HypothesisResult is the raw outcome of the test engine. Statistic is
// not rounded.
type HypothesisResult struct {
	Statistic    float64      `json:"statistic"`
	Distribution Distribution `json:"distribution"`
	Test         TestKind     `json:"test"`
	TestName     string       `json:"test_name"`
	DF           int          `json:"df"`
	LookupDF     int          `json:"lookup_df"`
}

// HypothesisOutcome adds a decision at the basket's confidence level.
type HypothesisOutcome struct {
	HypothesisResult
	H0          float64       `json:"h0"`
	Tail        Tail          `json:"tail"`
	Critical    CriticalScore `json:"critical"`
	RejectNull  bool          `json:"reject_null"`
	Null        string        `json:"null_hypothesis"`
	Alternative string        `json:"alternative_hypothesis"`
	// PValue is only set for z statistics.
	PValue      *float64      `json:"p_value,omitempty"`
}

// ============================================================================
// DESCRIPTIVE STATISTICS
// ============================================================================

// ModeKind discriminates Mode.
type ModeKind string

const (
	ModeNone       ModeKind = "none"
	ModeUnique     ModeKind = "unimodal"
	ModeMultimodal ModeKind = "multimodal"
)

// Mode is the most frequent value(s) of a sample. Values is empty for
// ModeNone and sorted ascending otherwise.
type Mode struct {
	Kind   ModeKind  `json:"kind"`
	Values []float64 `json:"values,omitempty"`
}

// NewMode classifies the given most-frequent values.
func NewMode(values []float64) Mode {
	switch len(values) {
	case 0:
		return Mode{Kind: ModeNone}
	case 1:
		return Mode{Kind: ModeUnique, Values: []float64{values[0]}}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Mode{Kind: ModeMultimodal, Values: sorted}
}

// Quartiles holds Tukey hinges and the interquartile range.
type Quartiles struct {
	Q1  float64 `json:"q1"`
	Q2  float64 `json:"q2"`
	Q3  float64 `json:"q3"`
	IQR float64 `json:"iqr"`
}

// SampleStats is the per-sample bundle a basket reports.
type SampleStats struct {
	Name              string             `json:"name"`
	N                 int                `json:"n"`
	DF                int                `json:"df"`
	Min               float64            `json:"min"`
	Max               float64            `json:"max"`
	Range             float64            `json:"range"`
	Mean              float64            `json:"mean"`
	Median            float64            `json:"median"`
	Mode              Mode               `json:"mode"`
	Quartiles         Quartiles          `json:"quartiles"`
	Variance          float64            `json:"variance"`
	StandardDeviation float64            `json:"standard_deviation"`
	StandardError     float64            `json:"standard_error"`
	CV                *float64           `json:"cv,omitempty"`
	Skewness          *float64           `json:"skewness,omitempty"`
	OutliersRemoved   int                `json:"outliers_removed"`
	Interval          ConfidenceInterval `json:"interval"`
}

// BasketKind tells how a basket's samples relate.
type BasketKind string

const (
	BasketSingle      BasketKind = "single"
	BasketIndependent BasketKind = "independent"
	BasketDependent   BasketKind = "dependent"
)

// Basket is the full descriptive picture of one sample or a pair.
// Stats holds one entry for single and dependent baskets (the latter
// describing the paired differences) and two for independent ones.
type Basket struct {
	ID             core.BasketID  `json:"id"`
	InputHash      core.Hash      `json:"input_hash"`
	CreatedAt      core.Timestamp `json:"created_at"`
	Kind           BasketKind     `json:"kind"`
	Config         TestConfig     `json:"config"`
	Stats          []SampleStats  `json:"stats"`
	PooledVariance *float64       `json:"pooled_variance,omitempty"`
	Samples        Samples        `json:"-"`
}
