package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"statbasket/adapters/stats/moments"
	"statbasket/app"
	"statbasket/domain/stats"
	"statbasket/internal"
	"statbasket/internal/config"
	"statbasket/internal/scores"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", MetricsEnabled: true},
		Defaults: config.DefaultsConfig{
			ConfidenceLevel: stats.CL95,
			Tail:            stats.TailTwo,
			RoundPlaces:     3,
		},
		Limits: config.LimitConfig{MaxSampleSize: 100},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	engine := scores.NewEngine()
	srv := NewServer(testConfig(), app.NewBasketService(moments.NewCalculator(), engine), engine, internal.NewLogger(internal.LogLevelError))
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func post(t *testing.T, ts *httptest.Server, path, payload string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodeError(t *testing.T, body []byte) errorResponse {
	t.Helper()
	var e errorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	return e
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestCritical(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name  string
		query string
		score float64
		dist  stats.Distribution
		look  int
	}{
		{"default two-tailed", "df=7", 2.365, stats.DistributionT, 7},
		{"one-tailed", "df=14&cl=0.95&tail=left", 1.761, stats.DistributionT, 14},
		{"sparse row", "df=33&cl=95%25", 2.042, stats.DistributionT, 30},
		{"population", "df=3&cl=99&population=true", 2.576, stats.DistributionZ, scores.NormalDF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, ts, "/api/v1/critical?"+tt.query)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

			var got stats.CriticalScore
			require.NoError(t, json.Unmarshal(body, &got))
			assert.InDelta(t, tt.score, got.Score, 1e-9)
			assert.Equal(t, tt.dist, got.Distribution)
			assert.Equal(t, tt.look, got.LookupDF)
		})
	}
}

func TestCritical_Errors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		query  string
		status int
		code   string
	}{
		{"df=abc", http.StatusBadRequest, "INVALID_INPUT"},
		{"df=5&cl=0.98", http.StatusBadRequest, "CONFIG_INVALID"},
		{"df=5&tail=up", http.StatusBadRequest, "CONFIG_INVALID"},
		{"df=5&population=maybe", http.StatusBadRequest, "INVALID_INPUT"},
		{"df=0", http.StatusUnprocessableEntity, "UNPROCESSABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, body := get(t, ts, "/api/v1/critical?"+tt.query)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, body).Code)
		})
	}
}

func TestPValue(t *testing.T) {
	ts := newTestServer(t)

	resp, body := get(t, ts, "/api/v1/pvalue?z=3.2958902020149377")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got pValueResponse
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, stats.TailTwo, got.Tail)
	assert.InDelta(t, 0.001, got.PValue, 1e-12)

	resp, _ = get(t, ts, "/api/v1/pvalue?z=high")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestInterval(t *testing.T) {
	ts := newTestServer(t)

	resp, body := post(t, ts, "/api/v1/interval", `{"sample":[1,2,3,4,4,5,6,10]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var ci stats.ConfidenceInterval
	require.NoError(t, json.Unmarshal(body, &ci))
	assert.InDelta(t, 2.0553056048148126, ci.Lower, 1e-9)
	assert.InDelta(t, 6.694694395185188, ci.Upper, 1e-9)

	resp, body = post(t, ts, "/api/v1/interval", `{"sample":[1,2,3,4,4,5,6,10],"cl":0.90}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &ci))
	assert.InDelta(t, 2.516301953963666, ci.Lower, 1e-9)
}

func TestInterval_Errors(t *testing.T) {
	ts := newTestServer(t)

	resp, body := post(t, ts, "/api/v1/interval", `{"sample":[5]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "UNPROCESSABLE", decodeError(t, body).Code)

	resp, _ = post(t, ts, "/api/v1/interval", `{"sample":[1,2],"colour":"red"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = post(t, ts, "/api/v1/interval", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	big := "[" + strings.Repeat("1,", 100) + "1]"
	resp, body = post(t, ts, "/api/v1/interval", `{"sample":`+big+`}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeError(t, body).Error, "limit is 100")
}

func TestHypothesis(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name      string
		payload   string
		test      stats.TestKind
		statistic float64
		pValue    bool
	}{
		{
			name:      "one population",
			payload:   `{"sample1":[1,2,3,4,4,5,6,10],"h0":0}`,
			test:      stats.TestOnePopulation,
			statistic: 4.460447471648084,
		},
		{
			name:      "pooled",
			payload:   `{"sample1":[1,2,3,4,4,5,6,10],"sample2":[-1,-2,-3,-4,-4,-5,-6,-10]}`,
			test:      stats.TestTwoPopulationPooled,
			statistic: 6.308025308657502,
		},
		{
			name:      "dependent",
			payload:   `{"sample1":[1,2,3,4,4,5,6,10],"sample2":[0,0,0,0,0,0,0,0],"samples_dependent":true}`,
			test:      stats.TestTwoPopulationDependent,
			statistic: 4.460447471648084,
		},
		{
			name:      "known variance",
			payload:   `{"sample1":[1,2,3,4,4,5,6,10],"sample2":[-1,-2,-3,-4,-4,-5,-6,-10],"is_population":true}`,
			test:      stats.TestTwoPopulationKnownVariance,
			statistic: 6.743562712027233,
			pValue:    true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := post(t, ts, "/api/v1/hypothesis", tt.payload)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

			var got stats.HypothesisOutcome
			require.NoError(t, json.Unmarshal(body, &got))
			assert.Equal(t, tt.test, got.Test)
			assert.InDelta(t, tt.statistic, got.Statistic, 1e-9)
			assert.True(t, got.RejectNull)
			assert.Equal(t, tt.pValue, got.PValue != nil)
		})
	}
}

func TestHypothesis_LengthMismatch(t *testing.T) {
	ts := newTestServer(t)

	resp, body := post(t, ts, "/api/v1/hypothesis", `{"sample1":[1,2,3],"sample2":[1,2],"samples_dependent":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "UNPROCESSABLE", decodeError(t, body).Code)

	resp, body = post(t, ts, "/api/v1/hypothesis", `{"sample1":[1,2,3,4,4,5,6,10],"samples_dependent":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "UNPROCESSABLE", decodeError(t, body).Code)

	resp, body = post(t, ts, "/api/v1/describe", `{"sample1":[1,2,3,4,4,5,6,10],"samples_dependent":true}`)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "UNPROCESSABLE", decodeError(t, body).Code)
}

func TestDescribe(t *testing.T) {
	ts := newTestServer(t)

	resp, body := post(t, ts, "/api/v1/describe?format=markdown", `{"sample1":[1,2,3,4,4,5,6,10],"name1":"scores","h0":0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, "text/markdown; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Report-ID"))
	assert.Contains(t, string(body), "# DESCRIPTION OF scores")
	assert.Contains(t, string(body), "Hypothesis Test Results")

	resp, body = post(t, ts, "/api/v1/describe", `{"sample1":[1,2,3,4,4,5,6,10],"round_places":1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "4.4")
	assert.NotContains(t, string(body), "Hypothesis Test Results")

	resp, body = post(t, ts, "/api/v1/describe?format=pdf", `{"sample1":[1,2,3]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "CONFIG_INVALID", decodeError(t, body).Code)
}

type panicScorer struct {
	mock.Mock
}

func (p *panicScorer) LookupDF(df int, isPopulation bool) int {
	return scores.ResolveLookupDF(df, isPopulation)
}

func (p *panicScorer) CriticalScore(df int, cl stats.ConfidenceLevel, tail stats.Tail, isPopulation bool) (stats.CriticalScore, error) {
	p.Called(df)
	panic(&scores.LookupError{LookupDF: df, Alpha: 0.5})
}

func TestRecoverer(t *testing.T) {
	scorer := &panicScorer{}
	scorer.On("CriticalScore", 7).Return()
	srv := NewServer(testConfig(), app.NewBasketService(moments.NewCalculator(), scores.NewEngine()), scorer, internal.NewLogger(internal.LogLevelError))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, body := get(t, ts, "/api/v1/critical?df=7")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, body).Code)
	scorer.AssertExpectations(t)
}

func TestMetrics(t *testing.T) {
	ts := newTestServer(t)

	post(t, ts, "/api/v1/hypothesis", `{"sample1":[1,2,3,4,4,5,6,10]}`)
	get(t, ts, "/healthz")

	resp, body := get(t, ts, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	text := string(body)
	assert.Contains(t, text, `statbasket_hypothesis_tests_total{decision="reject",test="one_population"} 1`)
	assert.Contains(t, text, `statbasket_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
	assert.Contains(t, text, "statbasket_sample_size_count 1")
}

func TestMetrics_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Server.MetricsEnabled = false
	engine := scores.NewEngine()
	srv := NewServer(cfg, app.NewBasketService(moments.NewCalculator(), engine), engine, internal.NewLogger(internal.LogLevelError))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, _ := get(t, ts, "/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProfiler(t *testing.T) {
	cfg := testConfig()
	cfg.Server.ProfilingEnabled = true
	engine := scores.NewEngine()
	srv := NewServer(cfg, app.NewBasketService(moments.NewCalculator(), engine), engine, internal.NewLogger(internal.LogLevelError))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, _ := get(t, ts, "/debug/pprof/cmdline")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, newTestServer(t), "/debug/pprof/cmdline")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
