package stats

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"statbasket/domain/core"
)

// ============================================================================
// TEST CONFIGURATION
// ============================================================================

// Tail selects which side(s) of the distribution a test rejects on.
type Tail string

const (
	TailTwo   Tail = "two"
	TailLeft  Tail = "left"
	TailRight Tail = "right"
)

// Tails lists every accepted tail in display order.
var Tails = []Tail{TailTwo, TailLeft, TailRight}

// ParseTail validates a tail name. Matching is case-insensitive.
func ParseTail(s string) (Tail, error) {
	switch Tail(strings.ToLower(strings.TrimSpace(s))) {
	case TailTwo:
		return TailTwo, nil
	case TailLeft:
		return TailLeft, nil
	case TailRight:
		return TailRight, nil
	}
	return "", fmt.Errorf("%w: %q (want two, left or right)", core.ErrInvalidTail, s)
}

// OneTailed reports whether all of alpha sits in a single tail.
func (t Tail) OneTailed() bool {
	return t == TailLeft || t == TailRight
}

func (t Tail) String() string { return string(t) }

// ConfidenceLevel is one of the tabulated confidence levels.
type ConfidenceLevel float64

const (
	CL90 ConfidenceLevel = 0.90
	CL95 ConfidenceLevel = 0.95
	CL99 ConfidenceLevel = 0.99
)

// ConfidenceLevels lists every accepted confidence level.
var ConfidenceLevels = []ConfidenceLevel{CL90, CL95, CL99}

// NewConfidenceLevel validates a confidence level given as a fraction.
func NewConfidenceLevel(v float64) (ConfidenceLevel, error) {
	for _, cl := range ConfidenceLevels {
		if math.Abs(float64(cl)-v) < 1e-9 {
			return cl, nil
		}
	}
	return 0, fmt.Errorf("%w: %v (want 0.90, 0.95 or 0.99)", core.ErrInvalidConfidence, v)
}

// ParseConfidenceLevel accepts "0.95", "95" and "95%".
func ParseConfidenceLevel(s string) (ConfidenceLevel, error) {
	trimmed := strings.TrimSpace(s)
	percent := strings.HasSuffix(trimmed, "%")
	trimmed = strings.TrimSuffix(trimmed, "%")

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidConfidence, s)
	}
	if percent || v > 1 {
		v /= 100
	}
	return NewConfidenceLevel(v)
}

// Float64 returns the level as a fraction.
func (c ConfidenceLevel) Float64() float64 { return float64(c) }

func (c ConfidenceLevel) String() string {
	return strconv.FormatFloat(float64(c)*100, 'f', -1, 64) + "%"
}

// Alpha is the significance carried by one tail of the table lookup:
// (1-CL)/2 for two-tailed tests and 1-CL otherwise, rounded to three
// decimals so it compares equal to the table's column keys.
func (c ConfidenceLevel) Alpha(tail Tail) float64 {
	a := 1 - float64(c)
	if !tail.OneTailed() {
		a /= 2
	}
	return math.Round(a*1000) / 1000
}

// Distribution tags the reference distribution of a score.
type Distribution string

const (
	DistributionT Distribution = "t"
	DistributionZ Distribution = "z"
)

// TestConfig bundles the switches that shape a basket.
type TestConfig struct {
	IsPopulation     bool            `json:"is_population"`
	Tail             Tail            `json:"tail"`
	ConfidenceLevel  ConfidenceLevel `json:"confidence_level"`
	SamplesDependent bool            `json:"samples_dependent"`
}

// DefaultTestConfig is a two-tailed 95% sample test.
func DefaultTestConfig() TestConfig {
	return TestConfig{Tail: TailTwo, ConfidenceLevel: CL95}
}

// Validate rejects tails and confidence levels outside the tabulated sets.
func (c TestConfig) Validate() error {
	if _, err := ParseTail(string(c.Tail)); err != nil {
		return err
	}
	if _, err := NewConfidenceLevel(float64(c.ConfidenceLevel)); err != nil {
		return err
	}
	return nil
}

// ============================================================================
// SAMPLES
// ============================================================================

// Sample is a one-dimensional numeric sample. Nothing in this module
// mutates a Sample it is handed.
type Sample []float64

// Len returns the sample size.
func (s Sample) Len() int { return len(s) }

// Clone returns an independent copy.
func (s Sample) Clone() Sample {
	if s == nil {
		return nil
	}
	out := make(Sample, len(s))
	copy(out, s)
	return out
}

// Samples is the input of a hypothesis test: either one sample or a pair.
type Samples interface {
	samples()
}

// Single is a one-population input.
type Single struct {
	Data Sample
}

// Pair is a two-population input. Dependent pairs are matched element-wise.
type Pair struct {
	X         Sample
	Y         Sample
	Dependent bool
}

func (Single) samples() {}
func (Pair) samples()   {}

// NewPair builds a pair, rejecting dependent samples of unequal length.
func NewPair(x, y Sample, dependent bool) (Pair, error) {
	if dependent && len(x) != len(y) {
		return Pair{}, core.NewLengthMismatchError(len(x), len(y))
	}
	return Pair{X: x, Y: y, Dependent: dependent}, nil
}

// SamplesOf picks the variant for an optional second sample: Single when y
// is empty, Pair otherwise. Dependent samples always need a second sample of
// the same length.
func SamplesOf(x, y Sample, dependent bool) (Samples, error) {
	if len(y) == 0 && !dependent {
		return Single{Data: x}, nil
	}
	return NewPair(x, y, dependent)
}

// Slices returns the raw data of any Samples variant.
func Slices(s Samples) [][]float64 {
	switch v := s.(type) {
	case Single:
		return [][]float64{v.Data}
	case Pair:
		return [][]float64{v.X, v.Y}
	}
	return nil
}
