package server

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/matzehuels/growtree/pkg/behavior"
	"github.com/matzehuels/growtree/pkg/buildinfo"
	"github.com/matzehuels/growtree/pkg/config"
	"github.com/matzehuels/growtree/pkg/errors"
	"github.com/matzehuels/growtree/pkg/graph"
	"github.com/matzehuels/growtree/pkg/pipeline"
	"github.com/matzehuels/growtree/pkg/shape"
)

// LayoutRequest is the JSON body of POST /v1/layout. A YAML body is read as
// a bare input document with seed, passes and refresh taken from the query.
type LayoutRequest struct {
	Input   graph.Input    `json:"input"`
	Seed    *uint64        `json:"seed,omitempty"`
	Config  *config.Layout `json:"config,omitempty"`
	Passes  int            `json:"passes,omitempty"`
	Refresh bool           `json:"refresh,omitempty"`
}

// LayoutResponse is the body of a successful POST /v1/layout.
type LayoutResponse struct {
	RequestID string       `json:"request_id"`
	InputHash string       `json:"input_hash"`
	Cached    bool         `json:"cached"`
	Stats     LayoutStats  `json:"stats"`
	Layout    graph.Layout `json:"layout"`
}

// LayoutStats summarizes a run.
type LayoutStats struct {
	Categories      int     `json:"categories"`
	Nodes           int     `json:"nodes"`
	Edges           int     `json:"edges"`
	CrossingsBefore int     `json:"crossings_before"`
	CrossingsAfter  int     `json:"crossings_after"`
	Fallbacks       int     `json:"fallbacks"`
	Warnings        int     `json:"warnings"`
	DurationMS      float64 `json:"duration_ms"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleShapes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]shape.Info{"shapes": s.opts.Shapes.Describe()})
}

func (s *Server) handleBehaviors(w http.ResponseWriter, r *http.Request) {
	catalog := s.opts.Behaviors
	if catalog == nil {
		catalog = behavior.Builtin()
	}
	writeJSON(w, http.StatusOK, map[string][]behavior.Behavior{"behaviors": catalog.All()})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeLayoutRequest(w, r)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	opts := pipeline.Options{
		Input:     req.Input,
		Seed:      req.Seed,
		Config:    s.opts.Config,
		Parallel:  s.opts.Parallel,
		Passes:    req.Passes,
		Refresh:   req.Refresh,
		Override:  req.Config,
		Shapes:    s.opts.Shapes,
		Behaviors: s.opts.Behaviors,
		Logger:    s.opts.Logger.With("request_id", RequestIDFrom(r.Context())),
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.opts.Runner.Execute(ctx, opts)
	if err != nil {
		writeErr(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LayoutResponse{
		RequestID: RequestIDFrom(r.Context()),
		InputHash: res.InputHash,
		Cached:    res.CacheHit,
		Stats: LayoutStats{
			Categories:      res.Stats.Categories,
			Nodes:           res.Stats.Nodes,
			Edges:           res.Stats.Edges,
			CrossingsBefore: res.Stats.CrossingsBefore,
			CrossingsAfter:  res.Stats.CrossingsAfter,
			Fallbacks:       res.Stats.Fallbacks,
			Warnings:        res.Stats.Warnings,
			DurationMS:      float64(time.Since(start).Microseconds()) / 1000,
		},
		Layout: res.Layout,
	})
}

func (s *Server) decodeLayoutRequest(w http.ResponseWriter, r *http.Request) (LayoutRequest, error) {
	var req LayoutRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return req, err
		}
		return req, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/yaml", "application/x-yaml", "text/yaml":
		in, err := graph.UnmarshalInput(body, graph.FormatYAML)
		if err != nil {
			return req, err
		}
		req.Input = in
		q := r.URL.Query()
		if v := q.Get("seed"); v != "" {
			seed, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return req, errors.New(errors.ErrCodeInvalidInput, "seed %q is not an unsigned integer", v)
			}
			req.Seed = &seed
		}
		if v := q.Get("passes"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return req, errors.New(errors.ErrCodeInvalidInput, "passes %q is not an integer", v)
			}
			req.Passes = n
		}
		req.Refresh = q.Get("refresh") == "true"
	case "", "application/json":
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return req, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request")
		}
	default:
		return req, errors.New(errors.ErrCodeUnsupported, "unsupported content type %q", mediaType)
	}
	return req, nil
}

// =============================================================================
// Response Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code, RequestID: RequestIDFrom(r.Context())})
}

// statusClientClosed is the de facto status for a client that went away.
const statusClientClosed = 499

// writeErr maps coded errors onto HTTP statuses. Uncoded errors are
// classified by their cause.
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(err, code)
	if code == "" {
		switch status {
		case http.StatusRequestEntityTooLarge:
			code = "PAYLOAD_TOO_LARGE"
		case http.StatusGatewayTimeout:
			code = errors.ErrCodeTimeout
		case statusClientClosed:
			code = "CANCELED"
		default:
			code = errors.ErrCodeInternal
		}
	}
	writeError(w, r, status, string(code), errors.UserMessage(err))
}

func statusFor(err error, code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidShape, errors.ErrCodeInvalidBehavior, errors.ErrCodeInvalidSector:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case stderrors.Is(err, context.Canceled):
		return statusClientClosed
	}
	var maxErr *http.MaxBytesError
	if stderrors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}
