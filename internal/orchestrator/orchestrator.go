// Package orchestrator routes analysis requests across backends.
// A Session probes backend availability once, runs every request on the
// primary CLI backend, and fails over to the metered HTTP backend on
// quota exhaustion. Each request re-attempts the primary when it is
// installed; the sticky fallback flag only records that the session
// degraded at some point, it never redirects later requests.
package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/planvet/planvet/internal/backend"
	"github.com/planvet/planvet/internal/config"
	"github.com/planvet/planvet/internal/errors"
	"github.com/planvet/planvet/internal/extract"
	"github.com/planvet/planvet/internal/logging"
	"github.com/planvet/planvet/internal/proposal"
)

// Request is a backend request plus orchestration options.
type Request struct {
	backend.Request

	// Propose derives change proposals from the backend response.
	Propose bool
}

// Result bundles everything one validation produced.
type Result struct {
	// Outcome is the final backend outcome, after any failover hop.
	Outcome backend.Outcome `json:"outcome"`
	// Record is the structured verdict. Always fully populated; failed
	// outcomes carry the degraded record.
	Record extract.ValidationRecord `json:"record"`
	// Proposals is nil unless the request asked for them.
	Proposals []proposal.Proposal `json:"proposals,omitempty"`
	// Provenance records which backend served the request.
	Provenance Provenance `json:"provenance"`
}

// Provenance records which backend served a request and why.
type Provenance struct {
	// RequestID uniquely identifies the request across log entries.
	RequestID string `json:"request_id"`
	// Backend is the backend that produced the final outcome.
	Backend backend.Kind `json:"backend"`
	// FallbackOccurred is true when the secondary backend served this
	// request. Session-lifetime state lives on FallbackTriggered.
	FallbackOccurred bool `json:"fallback_occurred"`
	// FallbackReason explains the first fallback of the session.
	FallbackReason string `json:"fallback_reason,omitempty"`
}

// Session owns backend selection for a sequence of requests.
// It is safe for concurrent use.
type Session struct {
	// ID identifies the session in logs.
	ID string

	primary   backend.Invoker
	secondary backend.Invoker
	log       *logging.Logger

	mu          sync.Mutex
	initOnce    *sync.Once
	initErr     error
	primaryOK   bool
	secondaryOK bool

	fallbackEver   atomic.Bool
	fallbackReason atomic.Value // string

	// probePrimary reports whether the primary CLI is runnable.
	// Overridable in tests.
	probePrimary func() error
}

// NewSession builds a Session from configuration. Backends are
// constructed but not probed; probing happens on first use.
func NewSession(cfg *config.Config, log *logging.Logger) *Session {
	if log == nil {
		log = logging.NopLogger()
	}

	s := &Session{
		ID:       uuid.NewString(),
		primary:  backend.NewClaudeInvoker(cfg.Backend.Command, cfg.Backend.ExtraArgs),
		log:      log,
		initOnce: new(sync.Once),
	}
	s.probePrimary = func() error { return probeCommand(cfg.Backend.Command) }

	if key := cfg.Backend.APIKey(); key != "" {
		s.secondary = backend.NewChatInvoker(cfg.Backend.APIBaseURL, key, cfg.Backend.Model, cfg.Backend.MaxTokens)
	}
	return s
}

// NewSessionWith builds a Session from explicit invokers. Either invoker
// may be nil. Used by the server and by tests.
func NewSessionWith(primary, secondary backend.Invoker, log *logging.Logger) *Session {
	if log == nil {
		log = logging.NopLogger()
	}
	s := &Session{
		ID:        uuid.NewString(),
		primary:   primary,
		secondary: secondary,
		log:       log,
		initOnce:  new(sync.Once),
	}
	s.probePrimary = func() error {
		if primary == nil {
			return errors.ErrPrimaryNotInstalled
		}
		return nil
	}
	return s
}

// Initialize probes backend availability exactly once. Repeated calls
// return the first probe's result. The session is usable when at least
// one backend is available; ErrNoBackendAvailable is returned otherwise.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	once := s.initOnce
	s.mu.Unlock()

	once.Do(func() {
		s.initErr = s.probe(ctx)
	})
	return s.initErr
}

func (s *Session) probe(ctx context.Context) error {
	log := s.log.With("session_id", s.ID)

	if s.primary != nil {
		if err := s.probePrimary(); err != nil {
			log.Warn("primary backend unavailable", "error", err.Error())
		} else {
			s.primaryOK = true
		}
	}
	s.secondaryOK = s.secondary != nil

	switch {
	case s.primaryOK:
		log.Info("session initialized", "backend", backend.KindPrimary.String(), "secondary_configured", s.secondaryOK)
	case s.secondaryOK:
		// The primary never becomes available mid-session, so record the
		// fallback once and route everything to the secondary.
		s.markFallback("primary backend not installed")
		log.Info("session initialized", "backend", backend.KindSecondary.String(), "reason", "primary backend not installed")
	default:
		log.Error("no backend available")
		return errors.ErrNoBackendAvailable
	}
	return nil
}

// Execute runs one analysis request end to end: backend routing,
// record extraction, and optional proposal parsing. The primary backend
// serves the request whenever it is installed; a quota-exhausted
// primary outcome triggers at most one hop to the secondary backend for
// this request only. All other failures are returned as-is, with a
// degraded record in place of extraction.
func (s *Session) Execute(ctx context.Context, req Request) (Result, error) {
	outcome, prov, err := s.route(ctx, req.Request)
	if err != nil {
		return Result{Outcome: outcome, Provenance: prov}, err
	}

	res := Result{Outcome: outcome, Provenance: prov}
	if outcome.Succeeded {
		res.Record = extract.Extract(outcome.Stdout)
	} else {
		res.Record = extract.Degraded()
	}
	if req.Propose && outcome.Succeeded {
		res.Proposals = proposal.Parse(outcome.Stdout)
	}
	return res, nil
}

func (s *Session) route(ctx context.Context, req backend.Request) (backend.Outcome, Provenance, error) {
	if err := s.Initialize(ctx); err != nil {
		return backend.Outcome{}, Provenance{}, err
	}

	prov := Provenance{RequestID: uuid.NewString()}
	log := s.log.WithRequest(prov.RequestID).With("session_id", s.ID)

	active := s.primary
	if !s.primaryOK {
		if !s.secondaryOK {
			return backend.Outcome{}, prov, errors.ErrNoBackendAvailable
		}
		active = s.secondary
	}

	log.Info("invoking backend", "backend", active.Kind().String())
	outcome, err := active.Invoke(ctx, req)
	if err != nil {
		return outcome, s.finishProvenance(prov, active.Kind()), err
	}

	if active.Kind() == backend.KindPrimary && outcome.Failure == backend.FailureQuotaExhausted && s.secondaryOK {
		s.markFallback("primary backend quota exhausted")
		log.Warn("primary quota exhausted, falling back", "exit_code", outcome.ExitCode)

		outcome, err = s.secondary.Invoke(ctx, req)
		return outcome, s.finishProvenance(prov, backend.KindSecondary), err
	}

	return outcome, s.finishProvenance(prov, active.Kind()), nil
}

// FallbackTriggered reports whether this session has ever fallen back
// to the secondary backend.
func (s *Session) FallbackTriggered() bool {
	return s.fallbackEver.Load()
}

// Reset re-arms the availability probe and clears the fallback state.
// The next request probes backends again.
func (s *Session) Reset() {
	s.mu.Lock()
	s.initOnce = new(sync.Once)
	s.initErr = nil
	s.primaryOK = false
	s.secondaryOK = false
	s.mu.Unlock()

	s.fallbackEver.Store(false)
	s.fallbackReason.Store("")
}

// markFallback flips the sticky fallback flag. Only the first caller
// records a reason; later triggers keep the original one.
func (s *Session) markFallback(reason string) {
	if s.fallbackEver.CompareAndSwap(false, true) {
		s.fallbackReason.Store(reason)
	}
}

// finishProvenance stamps the serving backend. The secondary only ever
// serves as a fallback, so serving it means this request fell back.
func (s *Session) finishProvenance(prov Provenance, served backend.Kind) Provenance {
	prov.Backend = served
	if served == backend.KindSecondary {
		prov.FallbackOccurred = true
		if reason, ok := s.fallbackReason.Load().(string); ok && reason != "" {
			prov.FallbackReason = reason
		}
	}
	return prov
}
