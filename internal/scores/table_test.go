package scores

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestLookup_KnownEntries(t *testing.T) {
	tests := []struct {
		df       int
		alpha    float64
		expected float64
	}{
		{1, 0.005, 63.657},
		{7, 0.025, 2.365},
		{7, 0.05, 1.895},
		{30, 0.1, 1.31},
		{35, 0.01, 2.438},
		{120, 0.025, 1.98},
		{NormalDF, 0.1, 1.282},
		{NormalDF, 0.05, 1.645},
		{NormalDF, 0.025, 1.96},
		{NormalDF, 0.01, 2.326},
		{NormalDF, 0.005, 2.576},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("df=%d/alpha=%g", tt.df, tt.alpha), func(t *testing.T) {
			got, ok := Lookup(tt.df, tt.alpha)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestLookup_Misses(t *testing.T) {
	_, ok := Lookup(31, 0.05)
	assert.False(t, ok, "31 has no row")

	_, ok = Lookup(10, 0.02)
	assert.False(t, ok, "0.02 has no column")

	err := &LookupError{LookupDF: 31, Alpha: 0.02}
	assert.Contains(t, err.Error(), "df=31")
}

func TestLookupKeys(t *testing.T) {
	keys := LookupKeys()
	require.Len(t, keys, 36)
	assert.Equal(t, 1, keys[0])
	assert.Equal(t, []int{30, 35, 40, 50, 60, 120, NormalDF}, keys[29:])
	assert.Equal(t, []float64{0.1, 0.05, 0.025, 0.01, 0.005}, Alphas())
}

// Scores grow as alpha shrinks.
func TestTable_MonotoneInAlpha(t *testing.T) {
	for _, df := range LookupKeys() {
		row := tTable[df]
		for i := 1; i < len(row); i++ {
			assert.Greater(t, row[i], row[i-1], "df=%d column %d", df, i)
		}
	}
}

func TestTable_MonotoneInDF(t *testing.T) {
	keys := LookupKeys()
	for i := 1; i < len(keys); i++ {
		prev, cur := tTable[keys[i-1]], tTable[keys[i]]
		for c := range cur {
			assert.LessOrEqual(t, cur[c], prev[c], "df %d vs %d column %d", keys[i-1], keys[i], c)
		}
	}
}

// TestTable_MatchesDistribution checks every entry against gonum's exact
// quantiles; the table is rounded to three decimals.
func TestTable_MatchesDistribution(t *testing.T) {
	for _, df := range LookupKeys() {
		for _, alpha := range Alphas() {
			got, ok := Lookup(df, alpha)
			require.True(t, ok)

			var want float64
			if df == NormalDF {
				want = distuv.UnitNormal.Quantile(1 - alpha)
			} else {
				want = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Quantile(1 - alpha)
			}
			assert.InDelta(t, want, got, 1e-3, "df=%d alpha=%g", df, alpha)
		}
	}
}
