package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teemow/outlook-mcp/internal/outlook/outlooktest"
)

func decodeHealth(t *testing.T, rec *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid health JSON: %v", err)
	}
	return resp
}

func TestLivenessHandler(t *testing.T) {
	h := NewHealthChecker(nil)
	rec := httptest.NewRecorder()
	h.LivenessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := decodeHealth(t, rec).Status; got != healthStatusOK {
		t.Errorf("status field = %q", got)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name        string
		connectErr  error
		notReady    bool
		shutdown    bool
		wantCode    int
		wantOutlook string
	}{
		{name: "ready", wantCode: http.StatusOK, wantOutlook: healthStatusOK},
		{name: "outlook unreachable", connectErr: errors.New("class not registered"), wantCode: http.StatusServiceUnavailable, wantOutlook: healthStatusUnreachable},
		{name: "marked not ready", notReady: true, wantCode: http.StatusServiceUnavailable, wantOutlook: healthStatusOK},
		{name: "shutting down", shutdown: true, wantCode: http.StatusServiceUnavailable, wantOutlook: healthStatusUnreachable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := outlooktest.NewOutlook()
			fake.ConnectErr = tt.connectErr
			sc := newTestServerContext(t, fake)
			h := NewHealthChecker(sc)
			h.SetReady(!tt.notReady)
			if tt.shutdown {
				_ = sc.Shutdown()
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/readyz", nil).WithContext(sc.Context())
			h.ReadinessHandler().ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			resp := decodeHealth(t, rec)
			if resp.Checks["outlook"] != tt.wantOutlook {
				t.Errorf("outlook check = %q, want %q", resp.Checks["outlook"], tt.wantOutlook)
			}
		})
	}
}

func TestReadinessHandler_NoServerContext(t *testing.T) {
	h := NewHealthChecker(nil)
	rec := httptest.NewRecorder()
	h.ReadinessHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if _, ok := decodeHealth(t, rec).Checks["outlook"]; ok {
		t.Error("outlook check should be omitted without a server context")
	}
}

func TestDetailedHealthHandler(t *testing.T) {
	sc := newTestServerContext(t, outlooktest.NewOutlook())
	h := NewHealthChecker(sc)

	rec := httptest.NewRecorder()
	h.DetailedHealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz/detailed", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	var resp DetailedHealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Outlook != healthStatusOK || resp.Uptime == "" {
		t.Errorf("unexpected response %+v", resp)
	}
}
