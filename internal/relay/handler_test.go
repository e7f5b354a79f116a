package relay

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Hamzas-Aigentic/Forgeflow/pkg/protocol"
)

func TestHealth(t *testing.T) {
	h, registry := newTestHandler(&fakeExecutor{stream: &fakeStream{}})
	registry.Create(&capturePusher{})
	registry.Create(&capturePusher{})

	router := chi.NewRouter()
	h.Mount(router)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}

	var body protocol.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Status != "healthy" {
		t.Errorf("Status = %q, want healthy", body.Status)
	}
	if body.Sessions != 2 {
		t.Errorf("Sessions = %d, want 2", body.Sessions)
	}
	if body.Timestamp.IsZero() {
		t.Error("Timestamp is zero")
	}
}
