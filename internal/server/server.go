// Package server exposes the routing pipeline over HTTP.
//
// Endpoints:
//
//	GET  /healthz                 liveness and build version
//	POST /v1/route                full rip-up and reroute sweep
//	POST /v1/nets/{net}/route     reroute a single net
//	POST /v1/nets                 list nets with cost and region
//
// Routing endpoints take a design file as the request body and accept the
// query parameters solver, formats (comma-separated), labels and refresh.
// Every request routes on its own grid; results are cached by the runner.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cellroute/pkg/buildinfo"
	"github.com/matzehuels/cellroute/pkg/config"
	"github.com/matzehuels/cellroute/pkg/design"
	errs "github.com/matzehuels/cellroute/pkg/errors"
	"github.com/matzehuels/cellroute/pkg/observability"
	"github.com/matzehuels/cellroute/pkg/pipeline"
	"github.com/matzehuels/cellroute/pkg/router"
)

// MaxBodyBytes bounds the size of an uploaded design.
const MaxBodyBytes = 32 << 20

// Server serves the routing API.
type Server struct {
	runner *pipeline.Runner
	cfg    config.Config
	logger *log.Logger
	mux    chi.Router
}

// New creates a server. cfg supplies the defaults that query parameters
// override; it must have defaults set.
func New(runner *pipeline.Runner, cfg config.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{runner: runner, cfg: cfg, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/route", s.handleRoute)
		r.Post("/nets", s.handleNets)
		r.Post("/nets/{net}/route", s.handleRoute)
	})
	s.mux = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// =============================================================================
// Handlers
// =============================================================================

// RouteResponse is the body of a successful routing request.
type RouteResponse struct {
	Design    json.RawMessage    `json:"design"`
	Sweep     *router.SweepStats `json:"sweep,omitempty"`
	Net       *router.NetStats   `json:"net,omitempty"`
	Artifacts map[string][]byte  `json:"artifacts,omitempty"`
	Cached    bool               `json:"cached"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Short(),
	})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if result.Net != nil && !result.Net.Routed {
		s.writeError(w, r, errs.New(errs.ErrCodeUnroutable, "net %s cannot be routed", result.Net.Net))
		return
	}

	resp := RouteResponse{
		Design: result.Output,
		Sweep:  result.Sweep,
		Net:    result.Net,
		Cached: result.CacheInfo.RouteHit,
	}
	if len(result.Artifacts) > 0 {
		resp.Artifacts = result.Artifacts
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNets(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if v := r.URL.Query().Get("region"); v != "" {
		opts.Config.Region = v
		if err := opts.Config.Validate(); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	d, err := design.Unmarshal(opts.Design)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	nets, err := pipeline.Summarize(d, opts.Config)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nets)
}

// options reads the design body and query parameters into pipeline options.
func (s *Server) options(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		return pipeline.Options{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "read body")
	}

	q := r.URL.Query()
	cfg := s.cfg
	if v := q.Get("solver"); v != "" {
		cfg.Solver = v
	}
	opts := pipeline.Options{
		Source:  "request " + middleware.GetReqID(r.Context()),
		Design:  body,
		Net:     chi.URLParam(r, "net"),
		Config:  cfg,
		Labels:  queryBool(q.Get("labels")),
		Refresh: queryBool(q.Get("refresh")),
		Logger:  s.logger,
	}
	if v := q.Get("formats"); v != "" {
		opts.Formats = strings.Split(v, ",")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

func queryBool(v string) bool {
	b, _ := strconv.ParseBool(v)
	return b
}

// =============================================================================
// Responses
// =============================================================================

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	code := string(errs.GetCode(err))
	if code == "" {
		code = string(errs.ErrCodeInternal)
	}
	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Middleware
// =============================================================================

// instrument reports requests to the HTTP hooks and logs them at debug level.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		start := time.Now()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), dur)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", dur)
	})
}
