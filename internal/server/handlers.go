package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/matzehuels/pipecheck/pkg/buildinfo"
	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
)

// errorBody is the JSON shape of every non-2xx response.
type errorBody struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// handlePing answers the editor's connectivity probe.
func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"Ping": "Pong"})
}

// handleHealth reports liveness for load balancers and uptime checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleParse decodes a pipeline document, runs the analysis, and returns the
// report. Structural errors map to 4xx; anything that goes wrong inside the
// analysis itself is reported as a 500 with the failure in the detail string.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), s.logger)

	p, err := pipeline.ReadJSON(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			err = errors.New(errors.ErrCodePayloadTooLarge, "request body exceeds %d bytes", maxErr.Limit)
		}
		writeError(w, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), p, pipeline.Options{
		Source:   pipeline.SourceAPI,
		CacheTTL: s.cfg.Cache.TTL,
		Logger:   logger,
	})
	if err != nil {
		if errors.GetCode(err) == errors.ErrCodeInternal {
			err = errors.New(errors.ErrCodeInternal, "Error processing pipeline: %s", errors.UserMessage(err))
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res.Report)
}

// handleNotFound matches the error shape of the other endpoints for unknown
// paths.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{
		Detail: "Not Found",
		Code:   string(errors.ErrCodeNotFound),
	})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorBody{Detail: "Method Not Allowed"})
}

// writeJSON writes v with the given status. Encoding failures at this point
// cannot be reported to the client anymore, only logged by the caller.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its HTTP status and standard body.
func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorBody{
		Detail: errors.UserMessage(err),
		Code:   string(code),
	})
}

// statusFor translates error codes into HTTP statuses.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeInvalidPipeline:
		return http.StatusUnprocessableEntity
	case errors.ErrCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
