package inference

import (
	"fmt"

	"statbasket/domain/core"
	"statbasket/domain/stats"
	"statbasket/ports"
)

// IntervalEngine builds confidence intervals for a sample mean.
type IntervalEngine struct {
	moments ports.MomentCalculator
	scores  ports.CriticalScorer
}

// NewIntervalEngine creates a new confidence interval engine
func NewIntervalEngine(moments ports.MomentCalculator, scores ports.CriticalScorer) *IntervalEngine {
	return &IntervalEngine{moments: moments, scores: scores}
}

// Interval returns mean ± critical × standard error, with the critical
// score taken at df = n-1.
func (e *IntervalEngine) Interval(sample stats.Sample, cl stats.ConfidenceLevel, tail stats.Tail, isPopulation bool) (stats.ConfidenceInterval, error) {
	n := e.moments.N(sample)
	if n == 0 {
		return stats.ConfidenceInterval{}, core.ErrEmptySample
	}

	mean, err := e.moments.Mean(sample)
	if err != nil {
		return stats.ConfidenceInterval{}, err
	}
	sterr, err := e.moments.StandardError(sample, isPopulation)
	if err != nil {
		return stats.ConfidenceInterval{}, fmt.Errorf("standard error: %w", err)
	}
	critical, err := e.scores.CriticalScore(n-1, cl, tail, isPopulation)
	if err != nil {
		return stats.ConfidenceInterval{}, err
	}

	moe := critical.Score * sterr
	return stats.ConfidenceInterval{
		Lower:         mean - moe,
		Upper:         mean + moe,
		Mean:          mean,
		StandardError: sterr,
		MarginOfError: moe,
		Critical:      critical,
	}, nil
}
