package api

import (
	"fmt"
	"net/http"
	"strconv"

	"statbasket/app"
	"statbasket/domain/stats"
	apperrors "statbasket/internal/errors"
	"statbasket/internal/report"
	"statbasket/internal/scores"
)

// testOptions are the test settings shared by the POST endpoints. Omitted
// fields fall back to the configured defaults.
type testOptions struct {
	ConfidenceLevel  *float64 `json:"cl,omitempty"`
	Tail             string   `json:"tail,omitempty"`
	IsPopulation     bool     `json:"is_population,omitempty"`
	SamplesDependent bool     `json:"samples_dependent,omitempty"`
}

type intervalRequest struct {
	Sample stats.Sample `json:"sample"`
	testOptions
}

type hypothesisRequest struct {
	Sample1 stats.Sample `json:"sample1"`
	Sample2 stats.Sample `json:"sample2,omitempty"`
	H0      float64      `json:"h0"`
	testOptions
}

type describeRequest struct {
	Sample1        stats.Sample `json:"sample1"`
	Sample2        stats.Sample `json:"sample2,omitempty"`
	Name1          string       `json:"name1,omitempty"`
	Name2          string       `json:"name2,omitempty"`
	H0             *float64     `json:"h0,omitempty"`
	RemoveOutliers bool         `json:"remove_outliers,omitempty"`
	RoundPlaces    *int         `json:"round_places,omitempty"`
	testOptions
}

type pValueResponse struct {
	Z      float64    `json:"z"`
	Tail   stats.Tail `json:"tail"`
	PValue float64    `json:"p_value"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCritical(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	df, err := strconv.Atoi(q.Get("df"))
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(fmt.Sprintf("df must be an integer, got %q", q.Get("df"))))
		return
	}
	cfg, err := s.queryConfig(q.Get("cl"), q.Get("tail"), q.Get("population"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	score, err := s.scorer.CriticalScore(df, cfg.ConfidenceLevel, cfg.Tail, cfg.IsPopulation)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, score)
}

func (s *Server) handlePValue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	z, err := strconv.ParseFloat(q.Get("z"), 64)
	if err != nil {
		s.writeError(w, apperrors.InvalidInput(fmt.Sprintf("z must be a number, got %q", q.Get("z"))))
		return
	}
	cfg, err := s.queryConfig("", q.Get("tail"), "")
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pValueResponse{Z: z, Tail: cfg.Tail, PValue: scores.PValue(z, cfg.Tail)})
}

func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	var req intervalRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	cfg, err := s.testConfig(req.testOptions)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.checkSize(req.Sample); err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveSamples(req.Sample)

	ci, err := s.baskets.Interval(r.Context(), req.Sample, cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ci)
}

func (s *Server) handleHypothesis(w http.ResponseWriter, r *http.Request) {
	var req hypothesisRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	cfg, err := s.testConfig(req.testOptions)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.checkSize(req.Sample1, req.Sample2); err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveSamples(req.Sample1, req.Sample2)

	outcome, err := s.baskets.Hypothesis(r.Context(), req.Sample1, req.Sample2, req.H0, cfg)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveTest(outcome)
	s.writeJSON(w, http.StatusOK, outcome)
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var req describeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	cfg, err := s.testConfig(req.testOptions)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.checkSize(req.Sample1, req.Sample2); err != nil {
		s.writeError(w, err)
		return
	}
	s.metrics.ObserveSamples(req.Sample1, req.Sample2)

	basket, err := s.baskets.Build(r.Context(), app.BasketRequest{
		X:              req.Sample1,
		Y:              req.Sample2,
		NameX:          req.Name1,
		NameY:          req.Name2,
		Config:         cfg,
		RemoveOutliers: req.RemoveOutliers,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	var outcome *stats.HypothesisOutcome
	if req.H0 != nil {
		if outcome, err = s.baskets.Test(r.Context(), basket, *req.H0); err != nil {
			s.writeError(w, err)
			return
		}
		s.metrics.ObserveTest(outcome)
	}

	places := s.cfg.Defaults.RoundPlaces
	if req.RoundPlaces != nil {
		places = *req.RoundPlaces
	}
	doc, err := report.Render(basket, outcome, report.Options{RoundPlaces: places, Format: format})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("X-Report-ID", doc.ID.String())
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Body); err != nil {
		s.logger.Error("write report %s: %v", doc.ID, err)
	}
}

func (s *Server) testConfig(opts testOptions) (stats.TestConfig, error) {
	cfg := s.cfg.TestConfig()
	if opts.ConfidenceLevel != nil {
		cl, err := stats.ParseConfidenceLevel(strconv.FormatFloat(*opts.ConfidenceLevel, 'f', -1, 64))
		if err != nil {
			return cfg, err
		}
		cfg.ConfidenceLevel = cl
	}
	if opts.Tail != "" {
		tail, err := stats.ParseTail(opts.Tail)
		if err != nil {
			return cfg, err
		}
		cfg.Tail = tail
	}
	cfg.IsPopulation = opts.IsPopulation
	cfg.SamplesDependent = opts.SamplesDependent
	return cfg, nil
}

func (s *Server) queryConfig(cl, tail, population string) (stats.TestConfig, error) {
	cfg := s.cfg.TestConfig()
	if cl != "" {
		v, err := stats.ParseConfidenceLevel(cl)
		if err != nil {
			return cfg, err
		}
		cfg.ConfidenceLevel = v
	}
	if tail != "" {
		v, err := stats.ParseTail(tail)
		if err != nil {
			return cfg, err
		}
		cfg.Tail = v
	}
	if population != "" {
		v, err := strconv.ParseBool(population)
		if err != nil {
			return cfg, apperrors.InvalidInput(fmt.Sprintf("population must be a boolean, got %q", population))
		}
		cfg.IsPopulation = v
	}
	return cfg, nil
}

func (s *Server) checkSize(samples ...stats.Sample) error {
	for _, sample := range samples {
		if len(sample) > s.cfg.Limits.MaxSampleSize {
			return apperrors.InvalidInput(fmt.Sprintf("sample has %d values, limit is %d", len(sample), s.cfg.Limits.MaxSampleSize))
		}
	}
	return nil
}
