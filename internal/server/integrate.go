package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agbru/picalc/internal/integration"
	"github.com/agbru/picalc/internal/logging"
	"github.com/agbru/picalc/internal/orchestration"
)

// RunResponse is one strategy's outcome.
type RunResponse struct {
	Strategy         string  `json:"strategy"`
	Name             string  `json:"name"`
	Value            float64 `json:"value,omitempty"`
	AbsError         float64 `json:"abs_error,omitempty"`
	Workers          int     `json:"workers,omitempty"`
	RequestedWorkers int     `json:"requested_workers,omitempty"`
	ElapsedMs        float64 `json:"elapsed_ms,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// IntegrateResponse is the body of a /integrate reply.
type IntegrateResponse struct {
	Steps   int64         `json:"steps"`
	Results []RunResponse `json:"results"`
}

type integrateRequest struct {
	steps    int64
	workers  int
	strategy string
}

func (s *Server) parseIntegrateRequest(r *http.Request) (integrateRequest, error) {
	q := r.URL.Query()
	req := integrateRequest{steps: s.defaultSteps, strategy: integration.PostReduction.String()}

	if v := q.Get("steps"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("steps: %q is not an integer", v)
		}
		req.steps = n
	}
	if req.steps < 1 || req.steps > s.security.MaxSteps {
		return req, fmt.Errorf("steps must be between 1 and %d", s.security.MaxSteps)
	}

	if v := q.Get("workers"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("workers: %q is not an integer", v)
		}
		req.workers = n
	}
	if req.workers < 0 || req.workers > s.security.MaxWorkers {
		return req, fmt.Errorf("workers must be between 0 and %d", s.security.MaxWorkers)
	}
	if req.workers == 0 {
		req.workers = integration.HardwareConcurrency()
	}

	if v := strings.TrimSpace(q.Get("strategy")); v != "" {
		if strings.EqualFold(v, "all") {
			req.strategy = "all"
		} else {
			st, err := integration.ParseStrategy(v)
			if err != nil {
				return req, err
			}
			req.strategy = st.String()
		}
	}
	return req, nil
}

func (s *Server) handleIntegrate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	req, err := s.parseIntegrateRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	integrators := orchestration.GetIntegratorsToRun(req.strategy, s.factory)
	if len(integrators) == 0 {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown strategy %q", req.strategy))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	job := orchestration.Job{
		Steps:      req.steps,
		Workers:    req.workers,
		MaxWorkers: s.maxWorkers,
		Recorder:   s.metrics.Runs(),
		Logger:     s.zerolog(),
	}
	start := time.Now()
	results := orchestration.ExecuteIntegrations(ctx, integrators, job, orchestration.NullProgressReporter{}, io.Discard)

	resp := IntegrateResponse{Steps: req.steps, Results: make([]RunResponse, 0, len(results))}
	status := http.StatusInternalServerError
	for _, res := range results {
		rr := RunResponse{Strategy: res.Strategy.String(), Name: res.Name}
		if res.Err != nil {
			s.logger.Debug("strategy failed", logging.String("strategy", rr.Strategy), logging.Err(res.Err))
			rr.Error = res.Err.Error()
			if errors.Is(res.Err, context.DeadlineExceeded) && status != http.StatusOK {
				status = http.StatusGatewayTimeout
			}
		} else {
			status = http.StatusOK
			rr.Value = res.Result.Value
			rr.AbsError = math.Abs(res.Result.Value - math.Pi)
			rr.Workers = res.Result.Workers
			rr.RequestedWorkers = res.Result.RequestedWorkers
			rr.ElapsedMs = float64(res.Duration) / float64(time.Millisecond)
			s.logger.Debug("strategy finished",
				logging.String("strategy", rr.Strategy),
				logging.Float64("value", rr.Value),
				logging.Int("workers", rr.Workers),
			)
		}
		resp.Results = append(resp.Results, rr)
	}

	s.logger.Info("integrate request served",
		logging.String("strategy", req.strategy),
		logging.Int64("steps", req.steps),
		logging.Int("workers", req.workers),
		logging.Int("status", status),
		logging.Duration("elapsed", time.Since(start)),
	)
	s.writeJSON(w, status, resp)
}

// zerolog hands the orchestration layer the underlying logger when the
// configured logger is zerolog-backed.
func (s *Server) zerolog() *zerolog.Logger {
	if z, ok := s.logger.(interface{ Zerolog() zerolog.Logger }); ok {
		l := z.Zerolog()
		return &l
	}
	return nil
}
