package scores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbasket/domain/core"
	"statbasket/domain/stats"
)

func TestEngine_CriticalScore(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name         string
		df           int
		cl           stats.ConfidenceLevel
		tail         stats.Tail
		isPopulation bool
		expected     stats.CriticalScore
	}{
		{"small sample two-tailed 95", 7, stats.CL95, stats.TailTwo, false,
			stats.CriticalScore{Score: 2.365, Distribution: stats.DistributionT, Alpha: 0.025, DF: 7, LookupDF: 7}},
		{"small sample one-tailed 95", 7, stats.CL95, stats.TailRight, false,
			stats.CriticalScore{Score: 1.895, Distribution: stats.DistributionT, Alpha: 0.05, DF: 7, LookupDF: 7}},
		{"rounds down between keys", 45, stats.CL90, stats.TailLeft, false,
			stats.CriticalScore{Score: 1.303, Distribution: stats.DistributionT, Alpha: 0.1, DF: 45, LookupDF: 40}},
		{"population uses z", 12, stats.CL99, stats.TailTwo, true,
			stats.CriticalScore{Score: 2.576, Distribution: stats.DistributionZ, Alpha: 0.005, DF: 12, LookupDF: NormalDF}},
		{"large df uses z", 500, stats.CL95, stats.TailTwo, false,
			stats.CriticalScore{Score: 1.96, Distribution: stats.DistributionZ, Alpha: 0.025, DF: 500, LookupDF: NormalDF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.CriticalScore(tt.df, tt.cl, tt.tail, tt.isPopulation)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEngine_CriticalScore_AllCombinations(t *testing.T) {
	e := NewEngine()
	for _, df := range []int{1, 15, 30, 31, 99, 150, 151} {
		for _, cl := range stats.ConfidenceLevels {
			for _, tail := range stats.Tails {
				for _, pop := range []bool{false, true} {
					assert.NotPanics(t, func() {
						_, err := e.CriticalScore(df, cl, tail, pop)
						assert.NoError(t, err)
					})
				}
			}
		}
	}
}

func TestEngine_CriticalScore_Errors(t *testing.T) {
	e := NewEngine()

	_, err := e.CriticalScore(10, 0.98, stats.TailTwo, false)
	assert.True(t, core.IsConfigurationError(err))

	_, err = e.CriticalScore(10, stats.CL95, "up", false)
	assert.ErrorIs(t, err, core.ErrInvalidTail)

	_, err = e.CriticalScore(0, stats.CL95, stats.TailTwo, false)
	assert.True(t, core.IsDegenerateSample(err))

	got, err := e.CriticalScore(0, stats.CL95, stats.TailTwo, true)
	require.NoError(t, err)
	assert.Equal(t, stats.DistributionZ, got.Distribution)
}
