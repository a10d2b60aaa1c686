package health

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fd1az/aptos-dex/internal/logger"
)

func newTestServer() *Server {
	return NewServer(0, "test", logger.New(io.Discard, logger.LevelError, "test", nil))
}

func TestHealth_AllHealthy(t *testing.T) {
	s := newTestServer()
	s.RegisterCheck("node", func(context.Context) (bool, string) { return true, "ledger 42" })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Status != "ok" || !st.Checks["node"].Healthy {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestHealth_Degraded(t *testing.T) {
	s := newTestServer()
	s.RegisterCheck("node", func(context.Context) (bool, string) { return true, "" })
	s.RegisterCheck("price_feed", func(context.Context) (bool, string) { return false, "timeout" })

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable || rec.Body.String() != "not ready" {
		t.Errorf("unexpected ready response %d %q", rec.Code, rec.Body.String())
	}
}

func TestLive(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/live", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "alive" {
		t.Errorf("unexpected live response %d %q", rec.Code, rec.Body.String())
	}
}
