package app

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbasket/adapters/stats/moments"
	"statbasket/domain/core"
	"statbasket/domain/stats"
	"statbasket/internal/scores"
)

var (
	reference = stats.Sample{1, 2, 3, 4, 4, 5, 6, 10}
	negated   = stats.Sample{-1, -2, -3, -4, -4, -5, -6, -10}
)

func newService() *BasketService {
	return NewBasketService(moments.NewCalculator(), scores.NewEngine())
}

func ptr(v float64) *float64 { return &v }

func TestBasketService_BuildSingle(t *testing.T) {
	svc := newService()

	basket, err := svc.Build(context.Background(), BasketRequest{X: reference, Config: stats.DefaultTestConfig()})
	require.NoError(t, err)

	want := stats.SampleStats{
		Name:              DefaultName,
		N:                 8,
		DF:                7,
		Min:               1,
		Max:               10,
		Range:             9,
		Mean:              4.375,
		Median:            4,
		Mode:              stats.Mode{Kind: stats.ModeUnique, Values: []float64{4}},
		Quartiles:         stats.Quartiles{Q1: 2.5, Q2: 4, Q3: 5.5, IQR: 3},
		Variance:          7.696428571428571,
		StandardDeviation: 2.774243783705493,
		StandardError:     0.9808432960613899,
		CV:                ptr(0.6341128648469698),
		Skewness:          ptr(0.7491694790879486),
		Interval: stats.ConfidenceInterval{
			Lower:         2.0553056048148126,
			Upper:         6.694694395185188,
			Mean:          4.375,
			StandardError: 0.9808432960613899,
			MarginOfError: 2.3196943951851874,
			Critical:      stats.CriticalScore{Score: 2.365, Distribution: stats.DistributionT, Alpha: 0.025, DF: 7, LookupDF: 7},
		},
	}

	assert.Equal(t, stats.BasketSingle, basket.Kind)
	require.Len(t, basket.Stats, 1)
	if diff := cmp.Diff(want, basket.Stats[0], cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("SampleStats mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, basket.PooledVariance)
	assert.False(t, basket.ID.String() == "")
	assert.False(t, basket.InputHash.IsEmpty())
}

func TestBasketService_BuildIndependent(t *testing.T) {
	svc := newService()

	basket, err := svc.Build(context.Background(), BasketRequest{X: reference, Y: negated, NameX: "before", Config: stats.DefaultTestConfig()})
	require.NoError(t, err)

	assert.Equal(t, stats.BasketIndependent, basket.Kind)
	require.Len(t, basket.Stats, 2)
	assert.Equal(t, "before", basket.Stats[0].Name)
	assert.Equal(t, DefaultNameY, basket.Stats[1].Name)
	assert.InDelta(t, -4.375, basket.Stats[1].Mean, 1e-12)
	require.NotNil(t, basket.PooledVariance)
	assert.InDelta(t, 7.696428571428571, *basket.PooledVariance, 1e-9)

	outcome, err := svc.Test(context.Background(), basket, 0)
	require.NoError(t, err)
	assert.Equal(t, stats.TestTwoPopulationPooled, outcome.Test)
	assert.InDelta(t, 6.308025308657502, outcome.Statistic, 1e-9)
	assert.True(t, outcome.RejectNull)
}

func TestBasketService_BuildDependent(t *testing.T) {
	svc := newService()
	cfg := stats.DefaultTestConfig()
	cfg.SamplesDependent = true

	basket, err := svc.Build(context.Background(), BasketRequest{X: reference, Y: negated, Config: cfg})
	require.NoError(t, err)

	assert.Equal(t, stats.BasketDependent, basket.Kind)
	require.Len(t, basket.Stats, 1)
	assert.Equal(t, DefaultNameDiff, basket.Stats[0].Name)
	assert.InDelta(t, 8.75, basket.Stats[0].Mean, 1e-12)

	outcome, err := svc.Test(context.Background(), basket, 0)
	require.NoError(t, err)
	assert.Equal(t, stats.TestTwoPopulationDependent, outcome.Test)
	assert.InDelta(t, 4.460447471648084, outcome.Statistic, 1e-9)

	_, err = svc.Build(context.Background(), BasketRequest{X: reference, Y: stats.Sample{1, 2}, Config: cfg})
	assert.True(t, core.IsLengthMismatch(err))
}

func TestBasketService_RemoveOutliers(t *testing.T) {
	svc := newService()

	t.Run("single", func(t *testing.T) {
		basket, err := svc.Build(context.Background(), BasketRequest{
			X:              stats.Sample{1, 2, 100, 3, 4, 5, 6, 7},
			Config:         stats.DefaultTestConfig(),
			RemoveOutliers: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 7, basket.Stats[0].N)
		assert.Equal(t, 1, basket.Stats[0].OutliersRemoved)
		assert.Equal(t, 7.0, basket.Stats[0].Max)
	})

	t.Run("dependent keeps pairs aligned", func(t *testing.T) {
		cfg := stats.DefaultTestConfig()
		cfg.SamplesDependent = true
		basket, err := svc.Build(context.Background(), BasketRequest{
			X:              stats.Sample{5, 7, 6, 9, 8, 7, 6, 100},
			Y:              stats.Sample{1, 2, 3, 4, 5, 6, 7, 8},
			Config:         cfg,
			RemoveOutliers: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, basket.Stats[0].OutliersRemoved)
		assert.Equal(t, 7, basket.Stats[0].N)

		pair, ok := basket.Samples.(stats.Pair)
		require.True(t, ok)
		assert.Equal(t, stats.Sample{5, 7, 6, 9, 8, 7, 6}, pair.X)
		assert.Equal(t, stats.Sample{1, 2, 3, 4, 5, 6, 7}, pair.Y)
	})
}

func TestBasketService_PopulationBasket(t *testing.T) {
	svc := newService()
	padded := stats.Sample{1, 2, 3, 4, 4, 5, 6, 10, 0, 0, 0, 0, 0}
	cfg := stats.TestConfig{IsPopulation: true, Tail: stats.TailTwo, ConfidenceLevel: stats.CL99}

	basket, err := svc.Build(context.Background(), BasketRequest{X: padded, Config: cfg})
	require.NoError(t, err)

	st := basket.Stats[0]
	assert.InDelta(t, 2.6923076923076925, st.Mean, 1e-12)
	assert.InDelta(t, 8.67455621301775, st.Variance, 1e-9)
	assert.InDelta(t, 2.9452599567810225, st.StandardDeviation, 1e-9)
	assert.InDelta(t, 0.8168681379803715, st.StandardError, 1e-9)
	require.NotNil(t, st.Skewness)
	assert.InDelta(t, 1.0251062988779507, *st.Skewness, 1e-9)
	assert.Equal(t, stats.Mode{Kind: stats.ModeUnique, Values: []float64{0}}, st.Mode)
	assert.Equal(t, stats.DistributionZ, st.Interval.Critical.Distribution)
	assert.InDelta(t, 2.104252323437437, st.Interval.MarginOfError, 1e-9)

	outcome, err := svc.Test(context.Background(), basket, 0)
	require.NoError(t, err)
	assert.InDelta(t, 3.2958902020149377, outcome.Statistic, 1e-9)
	require.NotNil(t, outcome.PValue)
}

func TestBasketService_Errors(t *testing.T) {
	svc := newService()

	_, err := svc.Build(context.Background(), BasketRequest{Config: stats.DefaultTestConfig()})
	assert.ErrorIs(t, err, core.ErrEmptySample)

	_, err = svc.Build(context.Background(), BasketRequest{X: reference, Config: stats.TestConfig{Tail: stats.TailTwo, ConfidenceLevel: 0.98}})
	assert.True(t, core.IsConfigurationError(err))

	_, err = svc.Build(context.Background(), BasketRequest{X: stats.Sample{3}, Config: stats.DefaultTestConfig()})
	assert.True(t, core.IsDegenerateSample(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Build(ctx, BasketRequest{X: reference, Config: stats.DefaultTestConfig()})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.Test(context.Background(), nil, 0)
	assert.True(t, core.IsDegenerateSample(err))
}

func TestBasketService_InputHashStable(t *testing.T) {
	svc := newService()
	req := BasketRequest{X: reference, Config: stats.DefaultTestConfig()}

	a, err := svc.Build(context.Background(), req)
	require.NoError(t, err)
	b, err := svc.Build(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, a.InputHash, b.InputHash)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestBasketService_Interval(t *testing.T) {
	svc := newService()

	ci, err := svc.Interval(context.Background(), reference, stats.DefaultTestConfig())
	require.NoError(t, err)
	assert.InDelta(t, 2.0553056048148126, ci.Lower, 1e-9)
	assert.InDelta(t, 6.694694395185188, ci.Upper, 1e-9)

	_, err = svc.Interval(context.Background(), reference, stats.TestConfig{Tail: "up", ConfidenceLevel: stats.CL95})
	assert.True(t, core.IsConfigurationError(err))
}

func TestBasketService_Hypothesis(t *testing.T) {
	svc := newService()
	cfg := stats.DefaultTestConfig()

	outcome, err := svc.Hypothesis(context.Background(), reference, nil, 0, cfg)
	require.NoError(t, err)
	assert.Equal(t, stats.TestOnePopulation, outcome.Test)
	assert.InDelta(t, 4.460447471648084, outcome.Statistic, 1e-9)
	assert.True(t, outcome.RejectNull)

	outcome, err = svc.Hypothesis(context.Background(), reference, negated, 0, cfg)
	require.NoError(t, err)
	assert.Equal(t, stats.TestTwoPopulationPooled, outcome.Test)
	assert.InDelta(t, 6.308025308657502, outcome.Statistic, 1e-9)

	cfg.SamplesDependent = true
	_, err = svc.Hypothesis(context.Background(), reference, stats.Sample{1, 2}, 0, cfg)
	assert.True(t, core.IsLengthMismatch(err))

	_, err = svc.Hypothesis(context.Background(), reference, nil, 0, cfg)
	assert.True(t, core.IsLengthMismatch(err))
}

func TestBasketService_DependentWithoutSecondSample(t *testing.T) {
	svc := newService()
	cfg := stats.DefaultTestConfig()
	cfg.SamplesDependent = true

	basket, err := svc.Build(context.Background(), BasketRequest{X: reference, Config: cfg})
	assert.Nil(t, basket)
	assert.True(t, core.IsLengthMismatch(err))

	_, err = svc.Build(context.Background(), BasketRequest{X: reference, Y: stats.Sample{1, 2}, Config: cfg})
	assert.True(t, core.IsLengthMismatch(err))
}
