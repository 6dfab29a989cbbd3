package inference

import (
	"fmt"
	"math"

	"statbasket/domain/core"
	"statbasket/domain/stats"
	"statbasket/internal/scores"
	"statbasket/ports"

	"gonum.org/v1/gonum/floats"
)

// HypothesisEngine computes hypothesis test statistics. The test is chosen
// in this order:
//
//  1. one sample                          -> one-population t or z
//  2. pair whose combined df resolves to z -> known-variance z
//  3. dependent pair                      -> one-population test on x-y
//  4. independent pair                    -> pooled-variance t
type HypothesisEngine struct {
	moments ports.MomentCalculator
	scores  ports.CriticalScorer
}

// NewHypothesisEngine creates a new hypothesis test engine
func NewHypothesisEngine(moments ports.MomentCalculator, scores ports.CriticalScorer) *HypothesisEngine {
	return &HypothesisEngine{moments: moments, scores: scores}
}

// Score computes the unrounded test statistic against the null mean (or
// mean difference) h0.
func (e *HypothesisEngine) Score(samples stats.Samples, h0 float64, isPopulation bool) (stats.HypothesisResult, error) {
	switch s := samples.(type) {
	case stats.Single:
		return e.onePopulation(s.Data, h0, isPopulation, stats.TestOnePopulation)
	case stats.Pair:
		return e.twoPopulation(s, h0, isPopulation)
	case nil:
		return stats.HypothesisResult{}, core.ErrEmptySample
	}
	return stats.HypothesisResult{}, fmt.Errorf("%w: unsupported samples %T", core.ErrInvalidConfiguration, samples)
}

func (e *HypothesisEngine) twoPopulation(p stats.Pair, h0 float64, isPopulation bool) (stats.HypothesisResult, error) {
	if p.Dependent && len(p.X) != len(p.Y) {
		return stats.HypothesisResult{}, core.NewLengthMismatchError(len(p.X), len(p.Y))
	}
	if len(p.Y) == 0 {
		return e.onePopulation(p.X, h0, isPopulation, stats.TestOnePopulation)
	}

	nx, ny := e.moments.N(p.X), e.moments.N(p.Y)
	df := nx + ny - 2
	if p.Dependent {
		df = nx - 1
	}
	if df < 1 && !isPopulation {
		return stats.HypothesisResult{}, core.NewDegenerateSampleError(fmt.Sprintf("two-sample test needs df >= 1, got %d", df))
	}

	if e.scores.LookupDF(df, isPopulation) == scores.NormalDF {
		return e.knownVariance(p.X, p.Y, h0, df)
	}
	if p.Dependent {
		diff := make(stats.Sample, nx)
		floats.SubTo(diff, p.X, p.Y)
		return e.onePopulation(diff, h0, isPopulation, stats.TestTwoPopulationDependent)
	}
	return e.pooled(p.X, p.Y, h0, df)
}

// onePopulation computes (mean - h0) / (sd/√n).
func (e *HypothesisEngine) onePopulation(s stats.Sample, h0 float64, isPopulation bool, kind stats.TestKind) (stats.HypothesisResult, error) {
	n := e.moments.N(s)
	if n == 0 {
		return stats.HypothesisResult{}, core.ErrEmptySample
	}
	mean, err := e.moments.Mean(s)
	if err != nil {
		return stats.HypothesisResult{}, err
	}
	sterr, err := e.moments.StandardError(s, isPopulation)
	if err != nil {
		return stats.HypothesisResult{}, err
	}

	statistic, err := ratio(mean-h0, sterr)
	if err != nil {
		return stats.HypothesisResult{}, err
	}
	return e.result(statistic, kind, n-1, isPopulation), nil
}

// knownVariance computes (x̄ - ȳ - h0) / √(σ²x/nx + σ²y/ny).
func (e *HypothesisEngine) knownVariance(x, y stats.Sample, h0 float64, df int) (stats.HypothesisResult, error) {
	mx, err := e.moments.Mean(x)
	if err != nil {
		return stats.HypothesisResult{}, err
	}
	my, err := e.moments.Mean(y)
	if err != nil {
		return stats.HypothesisResult{}, err
	}
	vx, err := e.moments.Variance(x, true)
	if err != nil {
		return stats.HypothesisResult{}, err
	}
	vy, err := e.moments.Variance(y, true)
	if err != nil {
		return stats.HypothesisResult{}, err
	}

	denominator := math.Sqrt(vx/float64(len(x)) + vy/float64(len(y)))
	statistic, err := ratio(mx-my-h0, denominator)
	if err != nil {
		return stats.HypothesisResult{}, err
	}
	return e.result(statistic, stats.TestTwoPopulationKnownVariance, df, true), nil
}

// pooled computes (x̄ - ȳ - h0) / √(s²p/nx + s²p/ny).
func (e *HypothesisEngine) pooled(x, y stats.Sample, h0 float64, df int) (stats.HypothesisResult, error) {
	mx, err := e.moments.Mean(x)
	if err != nil {
		return stats.HypothesisResult{}, err
	}
	my, err := e.moments.Mean(y)
	if err != nil {
		return stats.HypothesisResult{}, err
	}
	sp2, err := PooledVariance(e.moments, x, y)
	if err != nil {
		return stats.HypothesisResult{}, err
	}

	denominator := math.Sqrt(sp2/float64(len(x)) + sp2/float64(len(y)))
	statistic, err := ratio(mx-my-h0, denominator)
	if err != nil {
		return stats.HypothesisResult{}, err
	}
	return e.result(statistic, stats.TestTwoPopulationPooled, df, false), nil
}

func (e *HypothesisEngine) result(statistic float64, kind stats.TestKind, df int, isPopulation bool) stats.HypothesisResult {
	lookupDF := e.scores.LookupDF(df, isPopulation)
	distribution := stats.DistributionT
	if lookupDF == scores.NormalDF {
		distribution = stats.DistributionZ
	}
	return stats.HypothesisResult{
		Statistic:    statistic,
		Distribution: distribution,
		Test:         kind,
		TestName:     kind.Name(),
		DF:           df,
		LookupDF:     lookupDF,
	}
}

// PooledVariance returns ((nx-1)s²x + (ny-1)s²y) / (nx+ny-2). A sample of
// one contributes nothing to the numerator.
func PooledVariance(m ports.MomentCalculator, x, y stats.Sample) (float64, error) {
	nx, ny := m.N(x), m.N(y)
	if nx == 0 || ny == 0 || nx+ny-2 < 1 {
		return 0, core.NewDegenerateSampleError(fmt.Sprintf("pooled variance needs n1+n2-2 >= 1, got %d and %d", nx, ny))
	}
	var sum float64
	for _, s := range []stats.Sample{x, y} {
		if len(s) < 2 {
			continue
		}
		v, err := m.Variance(s, false)
		if err != nil {
			return 0, err
		}
		sum += float64(len(s)-1) * v
	}
	return sum / float64(nx+ny-2), nil
}

// ratio divides, reporting a zero or non-finite denominator as degenerate.
func ratio(numerator, denominator float64) (float64, error) {
	if denominator == 0 || math.IsNaN(denominator) || math.IsInf(denominator, 0) {
		return 0, core.ErrZeroVariance
	}
	return numerator / denominator, nil
}
