package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planvet/planvet/internal/backend"
	"github.com/planvet/planvet/internal/config"
	"github.com/planvet/planvet/internal/orchestrator"
)

// fakeInvoker returns one fixed outcome for every request.
type fakeInvoker struct {
	kind    backend.Kind
	outcome backend.Outcome
}

func (f *fakeInvoker) Kind() backend.Kind { return f.kind }

func (f *fakeInvoker) Invoke(ctx context.Context, req backend.Request) (backend.Outcome, error) {
	out := f.outcome
	out.Backend = f.kind
	return out, nil
}

func newTestServer(t *testing.T, primary backend.Invoker) *Server {
	t.Helper()
	session := orchestrator.NewSessionWith(primary, nil, nil)
	return New(config.Default(), session, nil)
}

func postValidate(t *testing.T, srv *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/validate", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestValidateWithPlanContent(t *testing.T) {
	primary := &fakeInvoker{
		kind: backend.KindPrimary,
		outcome: backend.Outcome{
			Succeeded: true,
			Stdout:    "Feasibility: 85\nCompleteness: 90\nComplexity: low\ncreate: src/widget.ts\n",
		},
	}
	srv := newTestServer(t, primary)

	rec := postValidate(t, srv, validateRequest{PlanContent: "Add a widget to the dashboard in src/widget.ts."})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Equal(t, 85, resp.Record.Feasibility.Score)
	require.Equal(t, 90, resp.Record.Completeness.Completeness)
	require.Len(t, resp.Proposals, 1)
	require.Equal(t, "src/widget.ts", resp.Proposals[0].TargetPath)
	require.Nil(t, resp.Confirmation)
	require.Equal(t, backend.KindPrimary, resp.Provenance.Backend)
	require.NotEmpty(t, resp.Provenance.RequestID)
}

func TestValidateWithPlanPath(t *testing.T) {
	planPath := filepath.Join(t.TempDir(), "plan.md")
	require.NoError(t, os.WriteFile(planPath, []byte("Refactor the importer."), 0o644))

	primary := &fakeInvoker{
		kind:    backend.KindPrimary,
		outcome: backend.Outcome{Succeeded: true, Stdout: "Feasibility: 70\n"},
	}
	srv := newTestServer(t, primary)

	rec := postValidate(t, srv, validateRequest{PlanPath: planPath})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 70, resp.Record.Feasibility.Score)
}

func TestValidateConfirmation(t *testing.T) {
	primary := &fakeInvoker{
		kind:    backend.KindPrimary,
		outcome: backend.Outcome{Succeeded: true, Stdout: "delete: legacy/old.ts\n"},
	}
	srv := newTestServer(t, primary)

	rec := postValidate(t, srv, validateRequest{
		PlanContent:         "Remove the legacy module.",
		RequireConfirmation: true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Confirmation)
	require.True(t, resp.Confirmation.RequiresApproval)
	require.Equal(t, 1, resp.Confirmation.HighImpactCount)
}

func TestValidateRejectsEmptyPlan(t *testing.T) {
	srv := newTestServer(t, &fakeInvoker{kind: backend.KindPrimary})

	rec := postValidate(t, srv, validateRequest{})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postValidate(t, srv, validateRequest{PlanContent: "   \n  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidatePlanNotFound(t *testing.T) {
	srv := newTestServer(t, &fakeInvoker{kind: backend.KindPrimary})

	rec := postValidate(t, srv, validateRequest{PlanPath: filepath.Join(t.TempDir(), "missing.md")})
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Error, "missing.md")
}

func TestValidateRejectsBadJSON(t *testing.T) {
	srv := newTestServer(t, &fakeInvoker{kind: backend.KindPrimary})

	req := httptest.NewRequest(http.MethodPost, "/api/validate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidateNoBackend(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := postValidate(t, srv, validateRequest{PlanContent: "Do a thing."})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestValidateDegradedOnBackendFailure(t *testing.T) {
	primary := &fakeInvoker{
		kind:    backend.KindPrimary,
		outcome: backend.Outcome{Failure: backend.FailureTimeout},
	}
	srv := newTestServer(t, primary)

	rec := postValidate(t, srv, validateRequest{PlanContent: "Do a thing."})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 50, resp.Record.Feasibility.Score)
	require.Contains(t, resp.Record.Feasibility.Risks, "analysis incomplete")
	require.Empty(t, resp.Proposals)
	require.NotNil(t, resp.Proposals)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &fakeInvoker{kind: backend.KindPrimary})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
