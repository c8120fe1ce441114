// Package server serves the comparison pages and the JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/paulstuart/trinover/pkg/compare"
	"github.com/paulstuart/trinover/pkg/model"
	"github.com/paulstuart/trinover/pkg/view"
)

const (
	msgMissingVersions = "Both from_version and to_version are required"
	msgSelectBoth      = "Please select both versions to compare"
	msgComparePrefix   = "Error comparing versions: "
)

// Service is the comparison backend. *compare.Service satisfies it.
type Service interface {
	Compare(ctx context.Context, from, to string) (model.ComparisonResult, error)
	ConnectorHistory(ctx context.Context, name string) (model.ConnectorHistory, error)
	Versions(ctx context.Context) ([]string, error)
	Connectors(ctx context.Context) ([]string, error)
}

var _ Service = (*compare.Service)(nil)

// Options configures a Server.
type Options struct {
	Addr            string
	Ecosystem       string
	ShutdownTimeout time.Duration
}

// Server wires the HTTP routes to a Service.
type Server struct {
	svc  Service
	opts Options
	log  *zap.Logger
}

// New returns a Server for svc.
func New(svc Service, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if opts.Ecosystem == "" {
		opts.Ecosystem = view.DefaultEcosystem
	}
	return &Server{svc: svc, opts: opts, log: log}
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /breaking_changes", s.handleIndex)
	mux.HandleFunc("GET /compare", s.handleComparePage)
	mux.HandleFunc("GET /compare/results", s.handleCompareFragment)
	mux.HandleFunc("POST /api/compare_versions", s.handleCompareAPI)
	mux.HandleFunc("GET /api/connector_changes/{name}", s.handleConnectorChanges)
	mux.HandleFunc("GET /api/versions", s.handleVersions)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	return s.withRequestID(mux)
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(s.log),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		if err := srv.Shutdown(sctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) document(ctx context.Context) view.Document {
	d := view.Document{Ecosystem: s.opts.Ecosystem}
	versions, err := s.svc.Versions(ctx)
	if err != nil {
		s.logger(ctx).Warn("failed to list versions", zap.Error(err))
	}
	d.Versions = versions
	connectors, err := s.svc.Connectors(ctx)
	if err != nil {
		s.logger(ctx).Warn("failed to list connectors", zap.Error(err))
	}
	d.Connectors = connectors
	return d
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeDocument(w, r, http.StatusOK, s.document(r.Context()))
}

func (s *Server) handleComparePage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d := s.document(ctx)
	q := r.URL.Query()
	d.FromVersion = strings.TrimSpace(q.Get("fromVersion"))
	d.ToVersion = strings.TrimSpace(q.Get("toVersion"))

	switch {
	case d.FromVersion == "" && d.ToVersion == "":
		s.writeDocument(w, r, http.StatusOK, d)
		return
	case d.FromVersion == "" || d.ToVersion == "":
		d.Error = msgSelectBoth
		s.writeDocument(w, r, http.StatusBadRequest, d)
		return
	}

	result, err := s.svc.Compare(ctx, d.FromVersion, d.ToVersion)
	if err != nil {
		s.logger(ctx).Error("comparison failed", zap.Error(err))
		d.Error = msgComparePrefix + err.Error()
		s.writeDocument(w, r, compareStatus(err), d)
		return
	}
	p := view.Filter(view.Build(result, view.Options{Ecosystem: s.opts.Ecosystem}), q.Get("q"))
	d.Results = &p
	s.writeDocument(w, r, http.StatusOK, d)
}

func (s *Server) handleCompareFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	from, to := strings.TrimSpace(q.Get("fromVersion")), strings.TrimSpace(q.Get("toVersion"))
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, msgMissingVersions)
		return
	}

	result, err := s.svc.Compare(ctx, from, to)
	if err != nil {
		s.logger(ctx).Error("comparison failed", zap.Error(err))
		writeError(w, compareStatus(err), msgComparePrefix+err.Error())
		return
	}
	p := view.Filter(view.Build(result, view.Options{Ecosystem: s.opts.Ecosystem}), q.Get("q"))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := view.Render(w, p); err != nil {
		s.logger(ctx).Error("render failed", zap.Error(err))
	}
}

func (s *Server) handleCompareAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	from, to, err := compareParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if from == "" || to == "" {
		writeError(w, http.StatusBadRequest, msgMissingVersions)
		return
	}

	result, err := s.svc.Compare(ctx, from, to)
	if err != nil {
		s.logger(ctx).Error("comparison failed", zap.String("from", from), zap.String("to", to), zap.Error(err))
		writeError(w, compareStatus(err), msgComparePrefix+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// compareStatus maps a comparison error to a response code: requests for
// unusable versions are the client's fault.
func compareStatus(err error) int {
	var inErr *compare.InputError
	if errors.As(err, &inErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// compareParams reads the two versions from a form or JSON body. Both the
// camelCase and snake_case field names are accepted.
func compareParams(r *http.Request) (string, string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]string
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&body); err != nil {
			return "", "", fmt.Errorf("invalid JSON body: %w", err)
		}
		return pick(body["fromVersion"], body["from_version"]), pick(body["toVersion"], body["to_version"]), nil
	}
	if err := r.ParseForm(); err != nil {
		return "", "", fmt.Errorf("invalid form: %w", err)
	}
	return pick(r.FormValue("fromVersion"), r.FormValue("from_version")),
		pick(r.FormValue("toVersion"), r.FormValue("to_version")), nil
}

func pick(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func (s *Server) handleConnectorChanges(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("name")
	history, err := s.svc.ConnectorHistory(ctx, name)
	if err != nil {
		s.logger(ctx).Error("connector history failed", zap.String("connector", name), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleVersions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	versions, err := s.svc.Versions(ctx)
	if err != nil {
		s.logger(ctx).Error("list versions failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if versions == nil {
		versions = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"versions": versions})
}

func (s *Server) writeDocument(w http.ResponseWriter, r *http.Request, status int, d view.Document) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := view.RenderDocument(w, d); err != nil {
		s.logger(r.Context()).Error("render failed", zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
