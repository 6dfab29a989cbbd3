package scores

import (
	"fmt"

	"statbasket/domain/core"
	"statbasket/domain/stats"
)

// Engine looks up critical scores. It holds no state and is safe for
// concurrent use.
type Engine struct{}

// NewEngine creates a new critical score engine
func NewEngine() *Engine {
	return &Engine{}
}

// LookupDF resolves df to its table row.
func (e *Engine) LookupDF(df int, isPopulation bool) int {
	return ResolveLookupDF(df, isPopulation)
}

// CriticalScore returns the critical t or z score for a logical df at the
// given confidence level and tail. The score is z whenever df resolves to
// NormalDF. A missing table entry panics with *LookupError.
func (e *Engine) CriticalScore(df int, cl stats.ConfidenceLevel, tail stats.Tail, isPopulation bool) (stats.CriticalScore, error) {
	if _, err := stats.ParseTail(string(tail)); err != nil {
		return stats.CriticalScore{}, err
	}
	if _, err := stats.NewConfidenceLevel(float64(cl)); err != nil {
		return stats.CriticalScore{}, err
	}
	if df < 1 && !isPopulation {
		return stats.CriticalScore{}, core.NewDegenerateSampleError(fmt.Sprintf("degrees of freedom must be at least 1, got %d", df))
	}

	alpha := cl.Alpha(tail)
	lookupDF := e.LookupDF(df, isPopulation)
	score, ok := Lookup(lookupDF, alpha)
	if !ok {
		panic(&LookupError{LookupDF: lookupDF, Alpha: alpha})
	}

	distribution := stats.DistributionT
	if lookupDF == NormalDF {
		distribution = stats.DistributionZ
	}

	return stats.CriticalScore{
		Score:        score,
		Distribution: distribution,
		Alpha:        alpha,
		DF:           df,
		LookupDF:     lookupDF,
	}, nil
}
