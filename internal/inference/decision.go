package inference

import (
	"fmt"
	"math"
	"strconv"

	"statbasket/domain/stats"
	"statbasket/internal/scores"
)

// Test scores the samples and decides whether the null hypothesis is
// rejected at the configured confidence level and tail. z statistics also
// carry a tabulated p-value.
func (e *HypothesisEngine) Test(samples stats.Samples, h0 float64, cfg stats.TestConfig) (stats.HypothesisOutcome, error) {
	if err := cfg.Validate(); err != nil {
		return stats.HypothesisOutcome{}, err
	}

	result, err := e.Score(samples, h0, cfg.IsPopulation)
	if err != nil {
		return stats.HypothesisOutcome{}, err
	}

	usesNormal := result.LookupDF == scores.NormalDF
	critical, err := e.scores.CriticalScore(result.DF, cfg.ConfidenceLevel, cfg.Tail, usesNormal)
	if err != nil {
		return stats.HypothesisOutcome{}, fmt.Errorf("critical score for df %d: %w", result.DF, err)
	}

	null, alternative := Hypotheses(result.Test, h0, cfg.Tail)
	outcome := stats.HypothesisOutcome{
		HypothesisResult: result,
		H0:               h0,
		Tail:             cfg.Tail,
		Critical:         critical,
		RejectNull:       RejectNull(result.Statistic, critical.Score, cfg.Tail),
		Null:             null,
		Alternative:      alternative,
	}
	if result.Distribution == stats.DistributionZ {
		p := scores.PValue(result.Statistic, cfg.Tail)
		outcome.PValue = &p
	}
	return outcome, nil
}

// RejectNull compares a statistic with a positive critical score.
func RejectNull(statistic, critical float64, tail stats.Tail) bool {
	switch tail {
	case stats.TailLeft:
		return statistic < -critical
	case stats.TailRight:
		return statistic > critical
	default:
		return math.Abs(statistic) > critical
	}
}

// Hypotheses renders the null and alternative hypotheses of a test.
func Hypotheses(kind stats.TestKind, h0 float64, tail stats.Tail) (string, string) {
	subject := "μ"
	switch kind {
	case stats.TestTwoPopulationDependent:
		subject = "μd"
	case stats.TestTwoPopulationKnownVariance, stats.TestTwoPopulationPooled:
		subject = "μx - μy"
	}
	value := strconv.FormatFloat(h0, 'g', -1, 64)

	switch tail {
	case stats.TailLeft:
		return subject + " ≥ " + value, subject + " < " + value
	case stats.TailRight:
		return subject + " ≤ " + value, subject + " > " + value
	default:
		return subject + " = " + value, subject + " ≠ " + value
	}
}
