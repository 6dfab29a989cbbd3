package ports

import (
	"statbasket/domain/stats"
)

// MomentCalculator supplies the sample moments the inference engines need.
// Sample variance divides by n-1, population variance by n.
type MomentCalculator interface {
	N(s stats.Sample) int
	Mean(s stats.Sample) (float64, error)
	Variance(s stats.Sample, isPopulation bool) (float64, error)
	StandardDeviation(s stats.Sample, isPopulation bool) (float64, error)
	StandardError(s stats.Sample, isPopulation bool) (float64, error)
}

// Describer extends MomentCalculator with the descriptive statistics a
// basket reports.
type Describer interface {
	MomentCalculator

	Min(s stats.Sample) (float64, error)
	Max(s stats.Sample) (float64, error)
	Median(s stats.Sample) (float64, error)
	Mode(s stats.Sample) stats.Mode
	Quartiles(s stats.Sample) (stats.Quartiles, error)
	Outliers(s stats.Sample) (stats.Sample, error)
	WithoutOutliers(s stats.Sample) (stats.Sample, error)
	Skewness(s stats.Sample, isPopulation bool) (*float64, error)
	CoefficientOfVariation(s stats.Sample, isPopulation bool) (*float64, error)
	Differences(x, y stats.Sample) (stats.Sample, error)
}
