package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/granulab/spherepack/pkg/buildinfo"
	"github.com/granulab/spherepack/pkg/errors"
	"github.com/granulab/spherepack/pkg/mixture"
	"github.com/granulab/spherepack/pkg/pipeline"
	"github.com/granulab/spherepack/pkg/report"
	"github.com/granulab/spherepack/pkg/runstore"
)

// maxBodyBytes bounds request bodies. A mixture of thousands of
// components is well under this.
const maxBodyBytes = 1 << 20

// packRequest is the body of POST /v1/pack and POST /v1/runs.
// The mixture can be given inline or as a URL; either one overrides the
// corresponding field inside options.
type packRequest struct {
	Mixture    mixture.Mixture  `json:"mixture,omitempty"`
	MixtureURL string           `json:"mixture_url,omitempty"`
	Options    pipeline.Options `json:"options"`
}

// pipelineOptions merges the request into pipeline options.
func (req *packRequest) pipelineOptions() pipeline.Options {
	opts := req.Options
	if len(req.Mixture) > 0 {
		opts.Mixture = req.Mixture
	}
	if req.MixtureURL != "" {
		opts.MixturePath = req.MixtureURL
	}
	return opts
}

// packResponse is the body of a successful POST /v1/pack.
type packResponse struct {
	RunID  string         `json:"run_id"`
	Result *report.Result `json:"result"`

	// Residual is the worst remaining overlap when the run did not
	// converge; the result is then marked approximate.
	Residual float64 `json:"residual,omitempty"`

	MixtureCacheHit bool `json:"mixture_cache_hit"`
	PackCacheHit    bool `json:"pack_cache_hit"`
}

// submitResponse is the body of a 202 from POST /v1/runs.
type submitResponse struct {
	RunID  string          `json:"run_id"`
	Status runstore.Status `json:"status"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

// handlePack runs the pipeline synchronously.
func (s *Server) handlePack(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodePackRequest(w, r)
	if !ok {
		return
	}

	res, err := s.runner.Execute(r.Context(), req.pipelineOptions())
	if err != nil && !errors.IsRecoverable(err) {
		s.writeError(w, r, err)
		return
	}

	resp := packResponse{
		RunID:           res.RunID,
		Result:          res.Report,
		MixtureCacheHit: res.CacheInfo.MixtureHit,
		PackCacheHit:    res.CacheInfo.PackHit,
	}
	if err != nil && res.Packing != nil {
		resp.Residual = res.Packing.Residual
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleSubmitRun queues an asynchronous run.
func (s *Server) handleSubmitRun(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodePackRequest(w, r)
	if !ok {
		return
	}

	opts := req.pipelineOptions()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	run := runstore.New(opts)
	if err := s.runs.Put(r.Context(), run); err != nil {
		s.writeError(w, r, err)
		return
	}

	select {
	case s.jobs <- run.ID:
	default:
		run.Error = "run queue full"
		run.Transition(runstore.StatusFailed)
		s.runs.Put(r.Context(), run)
		s.writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error: "run queue full",
		})
		return
	}

	s.writeJSON(w, http.StatusAccepted, submitResponse{
		RunID:  run.ID,
		Status: run.Status,
	})
}

// handleGetRun returns one run record.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.runs.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if run == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id))
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

// handleListRuns returns all runs, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runs.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []*runstore.Run{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion returns build information.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version": buildinfo.Version,
		"commit":  buildinfo.Commit,
		"date":    buildinfo.Date,
	})
}

// decodePackRequest reads and decodes the request body, writing a 400 on
// failure.
func (s *Server) decodePackRequest(w http.ResponseWriter, r *http.Request) (packRequest, bool) {
	var req packRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return req, false
	}
	return req, true
}

// writeJSON writes v as a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

// writeError maps an error to an HTTP status and writes the error body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"err", err,
			"request_id", reqID(r.Context()))
	}
	s.writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  errors.GetCode(err),
	})
}

// statusForError maps error codes to HTTP statuses.
func statusForError(err error) int {
	switch {
	case errors.Is(err, errors.ErrCodeConfiguration),
		errors.Is(err, errors.ErrCodeInvalidInput),
		errors.Is(err, errors.ErrCodeInvalidFormat),
		errors.Is(err, errors.ErrCodeInvalidPath),
		errors.Is(err, errors.ErrCodeUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeGeometry):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrCodeNotFound),
		errors.Is(err, errors.ErrCodeFileNotFound),
		errors.Is(err, errors.ErrCodeRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrCodeRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errors.ErrCodeNetwork),
		errors.Is(err, errors.ErrCodeTimeout):
		return http.StatusBadGateway
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
