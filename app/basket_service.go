package app

import (
	"context"
	"fmt"
	"strconv"

	"statbasket/domain/core"
	"statbasket/domain/stats"
	"statbasket/internal/inference"
	"statbasket/ports"
)

// Default sample names used when a request leaves them blank.
const (
	DefaultName     = "DATA"
	DefaultNameX    = "DATA_X"
	DefaultNameY    = "DATA_Y"
	DefaultNameDiff = "DATA_DIFF"
)

// BasketService builds descriptive baskets and runs hypothesis tests on them
type BasketService struct {
	describer ports.Describer
	intervals *inference.IntervalEngine
	tests     *inference.HypothesisEngine
}

// BasketRequest defines the inputs of a basket. Y is optional.
type BasketRequest struct {
	X              stats.Sample
	Y              stats.Sample
	NameX          string
	NameY          string
	Config         stats.TestConfig
	RemoveOutliers bool
}

// NewBasketService creates a basket service
func NewBasketService(describer ports.Describer, scorer ports.CriticalScorer) *BasketService {
	return &BasketService{
		describer: describer,
		intervals: inference.NewIntervalEngine(describer, scorer),
		tests:     inference.NewHypothesisEngine(describer, scorer),
	}
}

// Build computes the statistics of one sample, an independent pair, or the
// differences of a dependent pair.
func (s *BasketService) Build(ctx context.Context, req BasketRequest) (*stats.Basket, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Config.Validate(); err != nil {
		return nil, err
	}
	if len(req.X) == 0 {
		return nil, fmt.Errorf("first sample: %w", core.ErrEmptySample)
	}
	if req.Config.SamplesDependent && len(req.X) != len(req.Y) {
		return nil, core.NewLengthMismatchError(len(req.X), len(req.Y))
	}

	basket := &stats.Basket{
		ID:        core.NewBasketID(),
		CreatedAt: core.Now(),
		Config:    req.Config,
	}

	var err error
	switch {
	case len(req.Y) == 0:
		err = s.buildSingle(basket, req)
	case req.Config.SamplesDependent:
		err = s.buildDependent(basket, req)
	default:
		err = s.buildIndependent(basket, req)
	}
	if err != nil {
		return nil, err
	}

	basket.InputHash = core.ComputeInputHash(stats.Slices(basket.Samples), map[string]string{
		"cl":              req.Config.ConfidenceLevel.String(),
		"tail":            req.Config.Tail.String(),
		"population":      strconv.FormatBool(req.Config.IsPopulation),
		"dependent":       strconv.FormatBool(req.Config.SamplesDependent),
		"remove_outliers": strconv.FormatBool(req.RemoveOutliers),
	})
	return basket, nil
}

// Test runs the hypothesis test matching the basket's samples against h0.
func (s *BasketService) Test(ctx context.Context, basket *stats.Basket, h0 float64) (*stats.HypothesisOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if basket == nil || basket.Samples == nil {
		return nil, fmt.Errorf("hypothesis test: %w", core.ErrEmptySample)
	}
	outcome, err := s.tests.Test(basket.Samples, h0, basket.Config)
	if err != nil {
		return nil, fmt.Errorf("hypothesis test: %w", err)
	}
	return &outcome, nil
}

// Interval computes the confidence interval of a single sample.
func (s *BasketService) Interval(ctx context.Context, sample stats.Sample, cfg stats.TestConfig) (*stats.ConfidenceInterval, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ci, err := s.intervals.Interval(sample, cfg.ConfidenceLevel, cfg.Tail, cfg.IsPopulation)
	if err != nil {
		return nil, fmt.Errorf("confidence interval: %w", err)
	}
	return &ci, nil
}

// Hypothesis tests raw samples without building a basket. y may be empty.
func (s *BasketService) Hypothesis(ctx context.Context, x, y stats.Sample, h0 float64, cfg stats.TestConfig) (*stats.HypothesisOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	samples, err := stats.SamplesOf(x, y, cfg.SamplesDependent)
	if err != nil {
		return nil, fmt.Errorf("hypothesis test: %w", err)
	}
	outcome, err := s.tests.Test(samples, h0, cfg)
	if err != nil {
		return nil, fmt.Errorf("hypothesis test: %w", err)
	}
	return &outcome, nil
}

func (s *BasketService) buildSingle(basket *stats.Basket, req BasketRequest) error {
	data, removed, err := s.trim(req.X, req.RemoveOutliers)
	if err != nil {
		return err
	}
	st, err := s.Describe(nameOr(req.NameX, DefaultName), data, req.Config)
	if err != nil {
		return err
	}
	st.OutliersRemoved = removed

	basket.Kind = stats.BasketSingle
	basket.Stats = []stats.SampleStats{st}
	basket.Samples = stats.Single{Data: data}
	return nil
}

func (s *BasketService) buildIndependent(basket *stats.Basket, req BasketRequest) error {
	x, removedX, err := s.trim(req.X, req.RemoveOutliers)
	if err != nil {
		return err
	}
	y, removedY, err := s.trim(req.Y, req.RemoveOutliers)
	if err != nil {
		return err
	}

	stX, err := s.Describe(nameOr(req.NameX, DefaultNameX), x, req.Config)
	if err != nil {
		return err
	}
	stY, err := s.Describe(nameOr(req.NameY, DefaultNameY), y, req.Config)
	if err != nil {
		return err
	}
	stX.OutliersRemoved, stY.OutliersRemoved = removedX, removedY

	pooled, err := inference.PooledVariance(s.describer, x, y)
	if err != nil {
		return err
	}

	basket.Kind = stats.BasketIndependent
	basket.Stats = []stats.SampleStats{stX, stY}
	basket.PooledVariance = &pooled
	basket.Samples = stats.Pair{X: x, Y: y}
	return nil
}

// buildDependent describes the paired differences. Outlier removal drops
// whole pairs whose difference falls outside the fences, so x and y stay
// aligned.
func (s *BasketService) buildDependent(basket *stats.Basket, req BasketRequest) error {
	x, y := req.X, req.Y
	diff, err := s.describer.Differences(x, y)
	if err != nil {
		return err
	}

	removed := 0
	if req.RemoveOutliers {
		outliers, err := s.describer.Outliers(diff)
		if err != nil {
			return err
		}
		if len(outliers) > 0 {
			drop := make(map[float64]bool, len(outliers))
			for _, v := range outliers {
				drop[v] = true
			}
			keptX, keptY, keptDiff := stats.Sample{}, stats.Sample{}, stats.Sample{}
			for i, d := range diff {
				if drop[d] {
					continue
				}
				keptX = append(keptX, x[i])
				keptY = append(keptY, y[i])
				keptDiff = append(keptDiff, d)
			}
			removed = len(diff) - len(keptDiff)
			x, y, diff = keptX, keptY, keptDiff
		}
	}

	st, err := s.Describe(DefaultNameDiff, diff, req.Config)
	if err != nil {
		return err
	}
	st.OutliersRemoved = removed

	basket.Kind = stats.BasketDependent
	basket.Stats = []stats.SampleStats{st}
	basket.Samples = stats.Pair{X: x, Y: y, Dependent: true}
	return nil
}

// Describe computes the descriptive statistics and confidence interval of
// one sample.
func (s *BasketService) Describe(name string, data stats.Sample, cfg stats.TestConfig) (stats.SampleStats, error) {
	d := s.describer
	pop := cfg.IsPopulation

	st := stats.SampleStats{Name: name, N: d.N(data), DF: d.N(data) - 1}

	var err error
	if st.Min, err = d.Min(data); err != nil {
		return st, describeErr(name, err)
	}
	if st.Max, err = d.Max(data); err != nil {
		return st, describeErr(name, err)
	}
	st.Range = st.Max - st.Min
	if st.Mean, err = d.Mean(data); err != nil {
		return st, describeErr(name, err)
	}
	if st.Median, err = d.Median(data); err != nil {
		return st, describeErr(name, err)
	}
	st.Mode = d.Mode(data)
	if st.Quartiles, err = d.Quartiles(data); err != nil {
		return st, describeErr(name, err)
	}
	if st.Variance, err = d.Variance(data, pop); err != nil {
		return st, describeErr(name, err)
	}
	if st.StandardDeviation, err = d.StandardDeviation(data, pop); err != nil {
		return st, describeErr(name, err)
	}
	if st.StandardError, err = d.StandardError(data, pop); err != nil {
		return st, describeErr(name, err)
	}
	if st.CV, err = d.CoefficientOfVariation(data, pop); err != nil {
		return st, describeErr(name, err)
	}
	if st.Skewness, err = d.Skewness(data, pop); err != nil {
		return st, describeErr(name, err)
	}
	if st.Interval, err = s.intervals.Interval(data, cfg.ConfidenceLevel, cfg.Tail, pop); err != nil {
		return st, describeErr(name, err)
	}
	return st, nil
}

func (s *BasketService) trim(data stats.Sample, removeOutliers bool) (stats.Sample, int, error) {
	if !removeOutliers || len(data) == 0 {
		return data, 0, nil
	}
	kept, err := s.describer.WithoutOutliers(data)
	if err != nil {
		return nil, 0, err
	}
	return kept, len(data) - len(kept), nil
}

func describeErr(name string, err error) error {
	return fmt.Errorf("describe %s: %w", name, err)
}

func nameOr(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
