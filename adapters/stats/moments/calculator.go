package moments

import (
	"errors"
	"fmt"
	"math"

	"statbasket/domain/core"
	"statbasket/domain/stats"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
)

// Calculator computes descriptive statistics over montanaflynn/stats.
// It never mutates its input; montanaflynn sorts copies internally.
type Calculator struct{}

// NewCalculator creates a new moment calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// N returns the sample size
func (c *Calculator) N(s stats.Sample) int {
	return len(s)
}

// Mean returns the arithmetic mean. An empty sample is degenerate.
func (c *Calculator) Mean(s stats.Sample) (float64, error) {
	m, err := mstats.Mean(mstats.Float64Data(s))
	if err != nil {
		return 0, translate(err)
	}
	return m, nil
}

// Variance returns the sample (n-1) or population (n) variance.
func (c *Calculator) Variance(s stats.Sample, isPopulation bool) (float64, error) {
	if err := c.requireSize(s, isPopulation); err != nil {
		return 0, err
	}
	var (
		v   float64
		err error
	)
	if isPopulation {
		v, err = mstats.PopulationVariance(mstats.Float64Data(s))
	} else {
		v, err = mstats.SampleVariance(mstats.Float64Data(s))
	}
	if err != nil {
		return 0, translate(err)
	}
	return v, nil
}

// StandardDeviation returns the square root of Variance.
func (c *Calculator) StandardDeviation(s stats.Sample, isPopulation bool) (float64, error) {
	if err := c.requireSize(s, isPopulation); err != nil {
		return 0, err
	}
	var (
		sd  float64
		err error
	)
	if isPopulation {
		sd, err = mstats.StandardDeviationPopulation(mstats.Float64Data(s))
	} else {
		sd, err = mstats.StandardDeviationSample(mstats.Float64Data(s))
	}
	if err != nil {
		return 0, translate(err)
	}
	return sd, nil
}

// StandardError returns sd/sqrt(n).
func (c *Calculator) StandardError(s stats.Sample, isPopulation bool) (float64, error) {
	sd, err := c.StandardDeviation(s, isPopulation)
	if err != nil {
		return 0, err
	}
	return sd / math.Sqrt(float64(len(s))), nil
}

func (c *Calculator) Min(s stats.Sample) (float64, error) {
	v, err := mstats.Min(mstats.Float64Data(s))
	return v, translate(err)
}

func (c *Calculator) Max(s stats.Sample) (float64, error) {
	v, err := mstats.Max(mstats.Float64Data(s))
	return v, translate(err)
}

func (c *Calculator) Median(s stats.Sample) (float64, error) {
	v, err := mstats.Median(mstats.Float64Data(s))
	return v, translate(err)
}

// Mode returns the most frequent values. A sample in which every value
// occurs once has no mode unless it holds a single value.
func (c *Calculator) Mode(s stats.Sample) stats.Mode {
	if len(s) == 0 {
		return stats.NewMode(nil)
	}
	counts := make(map[float64]int, len(s))
	highest := 0
	for _, v := range s {
		counts[v]++
		if counts[v] > highest {
			highest = counts[v]
		}
	}
	if highest == 1 && len(s) > 1 {
		return stats.NewMode(nil)
	}
	modes := make([]float64, 0, 1)
	for v, n := range counts {
		if n == highest {
			modes = append(modes, v)
		}
	}
	return stats.NewMode(modes)
}

// Quartiles returns Tukey hinges: the medians of the lower and upper
// halves, leaving out the middle element when n is odd.
func (c *Calculator) Quartiles(s stats.Sample) (stats.Quartiles, error) {
	switch len(s) {
	case 0:
		return stats.Quartiles{}, core.ErrEmptySample
	case 1:
		return stats.Quartiles{Q1: s[0], Q2: s[0], Q3: s[0]}, nil
	}
	q, err := mstats.Quartile(mstats.Float64Data(s))
	if err != nil {
		return stats.Quartiles{}, translate(err)
	}
	return stats.Quartiles{Q1: q.Q1, Q2: q.Q2, Q3: q.Q3, IQR: q.Q3 - q.Q1}, nil
}

// fences returns the 1.5 IQR outlier limits.
func (c *Calculator) fences(s stats.Sample) (float64, float64, error) {
	q, err := c.Quartiles(s)
	if err != nil {
		return 0, 0, err
	}
	return q.Q1 - 1.5*q.IQR, q.Q3 + 1.5*q.IQR, nil
}

// Outliers returns the values outside [Q1-1.5*IQR, Q3+1.5*IQR] in input order.
func (c *Calculator) Outliers(s stats.Sample) (stats.Sample, error) {
	lower, upper, err := c.fences(s)
	if err != nil {
		return nil, err
	}
	out := stats.Sample{}
	for _, v := range s {
		if v < lower || v > upper {
			out = append(out, v)
		}
	}
	return out, nil
}

// WithoutOutliers returns a copy of s with the outliers dropped.
func (c *Calculator) WithoutOutliers(s stats.Sample) (stats.Sample, error) {
	lower, upper, err := c.fences(s)
	if err != nil {
		return nil, err
	}
	kept := make(stats.Sample, 0, len(s))
	for _, v := range s {
		if v >= lower && v <= upper {
			kept = append(kept, v)
		}
	}
	return kept, nil
}

// Skewness returns (1/n)Σ(x-mean)³ / sd³. It is nil when sd is zero.
func (c *Calculator) Skewness(s stats.Sample, isPopulation bool) (*float64, error) {
	mean, err := c.Mean(s)
	if err != nil {
		return nil, err
	}
	sd, err := c.StandardDeviation(s, isPopulation)
	if err != nil {
		return nil, err
	}
	if sd == 0 {
		return nil, nil
	}
	var cubed float64
	for _, v := range s {
		d := v - mean
		cubed += d * d * d
	}
	skew := cubed / float64(len(s)) / (sd * sd * sd)
	return &skew, nil
}

// CoefficientOfVariation returns sd/mean. It is nil when the mean is zero.
func (c *Calculator) CoefficientOfVariation(s stats.Sample, isPopulation bool) (*float64, error) {
	mean, err := c.Mean(s)
	if err != nil {
		return nil, err
	}
	sd, err := c.StandardDeviation(s, isPopulation)
	if err != nil {
		return nil, err
	}
	if mean == 0 {
		return nil, nil
	}
	cv := sd / mean
	return &cv, nil
}

// Differences returns x[i]-y[i] for equal-length dependent samples.
func (c *Calculator) Differences(x, y stats.Sample) (stats.Sample, error) {
	if len(x) != len(y) {
		return nil, core.NewLengthMismatchError(len(x), len(y))
	}
	diff := make(stats.Sample, len(x))
	floats.SubTo(diff, x, y)
	return diff, nil
}

// requireSize rejects samples too small for the requested variance.
func (c *Calculator) requireSize(s stats.Sample, isPopulation bool) error {
	if len(s) == 0 {
		return core.ErrEmptySample
	}
	if !isPopulation && len(s) < 2 {
		return core.NewDegenerateSampleError("sample variance needs at least two values")
	}
	return nil
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mstats.ErrEmptyInput) {
		return core.ErrEmptySample
	}
	return fmt.Errorf("moments: %w", err)
}
