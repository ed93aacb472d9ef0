// Package server exposes plan validation over HTTP. The transport is
// deliberately thin: decode the request, delegate to the orchestrator
// session, encode the result.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/planvet/planvet/internal/backend"
	"github.com/planvet/planvet/internal/config"
	"github.com/planvet/planvet/internal/detect"
	"github.com/planvet/planvet/internal/errors"
	"github.com/planvet/planvet/internal/extract"
	"github.com/planvet/planvet/internal/logging"
	"github.com/planvet/planvet/internal/orchestrator"
	"github.com/planvet/planvet/internal/proposal"
)

// Server serves the validation API.
type Server struct {
	cfg     *config.Config
	session *orchestrator.Session
	log     *logging.Logger
	httpSrv *http.Server
}

// New builds a Server around an initialized-or-not session. The session
// probes its backends lazily on the first request.
func New(cfg *config.Config, session *orchestrator.Session, log *logging.Logger) *Server {
	if log == nil {
		log = logging.NopLogger()
	}
	s := &Server{cfg: cfg, session: session, log: log}

	mux := http.NewServeMux()
	// Method-specific mux patterns need go 1.22; replicate them under
	// the go 1.21 toolchain this module is built with.
	mux.HandleFunc("/api/validate", requireMethod(http.MethodPost, s.handleValidate))
	mux.HandleFunc("/healthz", requireMethod(http.MethodGet, s.handleHealth))

	s.httpSrv = &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.withRequestLog(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Run serves until the context is canceled, then shuts down gracefully
// within the configured grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("server shutting down", "grace", s.cfg.Server.ShutdownGrace().String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownGrace())
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// Handler returns the HTTP handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// requireMethod rejects requests whose method does not match, mirroring
// the 405 that go 1.22 mux method patterns produce.
func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.Header().Set("Allow", method)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

// withRequestLog tags every request with an ID and logs its outcome.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		start := time.Now()
		w.Header().Set("X-Request-ID", id)

		next.ServeHTTP(w, r)

		s.log.WithRequest(id).Info("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type validateRequest struct {
	// PlanPath is a plan file to read. Ignored when PlanContent is set.
	PlanPath string `json:"plan_path,omitempty"`
	// PlanContent is the plan text itself.
	PlanContent string `json:"plan_content,omitempty"`
	// ProjectPath is the working directory for the primary backend.
	ProjectPath string `json:"project_path,omitempty"`
	// Destructive switches the backend to apply mode.
	Destructive bool `json:"destructive,omitempty"`
	// RequireConfirmation asks for a confirmation summary alongside
	// the proposals.
	RequireConfirmation bool `json:"require_confirmation,omitempty"`
}

type validateResponse struct {
	Record       extract.ValidationRecord `json:"record"`
	Proposals    []proposal.Proposal      `json:"proposals"`
	Confirmation *proposal.Confirmation   `json:"confirmation,omitempty"`
	Provenance   orchestrator.Provenance  `json:"provenance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	planText, err := resolvePlan(req)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errors.ErrPlanNotFound) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	technologies := detect.Detect(planText)

	res, err := s.session.Execute(r.Context(), orchestrator.Request{
		Request: backend.Request{
			PlanText:     planText,
			WorkingDir:   req.ProjectPath,
			Destructive:  req.Destructive,
			Timeout:      s.cfg.Backend.Timeout(),
			ExtraContext: strings.Join(technologies, ", "),
		},
		Propose: true,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errors.ErrNoBackendAvailable) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	resp := validateResponse{
		Record:     res.Record,
		Proposals:  res.Proposals,
		Provenance: res.Provenance,
	}
	if resp.Proposals == nil {
		resp.Proposals = []proposal.Proposal{}
	}
	if req.RequireConfirmation {
		c := proposal.RequestConfirmation(res.Proposals)
		resp.Confirmation = &c
	}
	writeJSON(w, http.StatusOK, resp)
}

// resolvePlan picks the plan text from the request. Content wins over
// path; an empty plan is rejected either way.
func resolvePlan(req validateRequest) (string, error) {
	if strings.TrimSpace(req.PlanContent) != "" {
		return req.PlanContent, nil
	}
	if req.PlanPath == "" {
		return "", errors.ErrPlanEmpty
	}
	data, err := os.ReadFile(req.PlanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", errors.ErrPlanNotFound, req.PlanPath)
		}
		return "", fmt.Errorf("read plan: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("%w: %s", errors.ErrPlanEmpty, req.PlanPath)
	}
	return string(data), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
