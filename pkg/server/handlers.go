package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/matzehuels/floorplan/pkg/buildinfo"
	"github.com/matzehuels/floorplan/pkg/errors"
	"github.com/matzehuels/floorplan/pkg/inspect"
	"github.com/matzehuels/floorplan/pkg/observability"
	"github.com/matzehuels/floorplan/pkg/pipeline"
)

type transformRequest struct {
	SVG     string            `json:"svg"`
	Renames map[string]string `json:"renames"`
	Refresh bool              `json:"refresh"`
}

type transformResponse struct {
	*pipeline.Result
	ReductionPercent float64 `json:"reduction_percent"`
}

type inspectRequest struct {
	SVG string `json:"svg"`
}

func (s *Server) decode(r *http.Request, w http.ResponseWriter, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := s.decode(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.SVG) == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "svg is required"))
		return
	}
	if req.Renames == nil {
		req.Renames = map[string]string{}
	}

	res, err := s.runner.Transform(r.Context(), req.SVG, pipeline.Options{
		Rules:   s.rules,
		Policy:  s.policy,
		Renames: req.Renames,
		Refresh: req.Refresh,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, transformResponse{Result: res, ReductionPercent: res.Stats.Reduction()})
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	var req inspectRequest
	if err := s.decode(r, w, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.SVG) == "" {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "svg is required"))
		return
	}

	ctx := r.Context()
	key := s.runner.Keyer.InspectKey(req.SVG) + ":" + s.rules.Hash()
	if data, hit, err := s.runner.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "inspect")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	}
	observability.Cache().OnCacheMiss(ctx, "inspect")

	report, err := inspect.Inspect(req.SVG, s.rules)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "inspect"))
		return
	}
	data, err := json.Marshal(report)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.runner.Cache.Set(ctx, key, append(data, '\n'), s.runner.CacheTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "inspect", len(data))
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(append(data, '\n'))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
	})
}
