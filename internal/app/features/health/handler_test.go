package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/sidequest/internal/app/features/health"
	"github.com/dalemusser/sidequest/internal/testutil"
	"go.uber.org/zap"
)

type downStore struct{}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestServe(t *testing.T) {
	tests := []struct {
		name       string
		store      health.Pinger
		wantStatus int
		wantStore  string
	}{
		{"connected", testutil.SetupTestBackend(t), http.StatusOK, "connected"},
		{"store down", downStore{}, http.StatusServiceUnavailable, "disconnected"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := health.NewHandler(tt.store, "memory", zap.NewNop())

			rec := httptest.NewRecorder()
			handler.Serve(rec, httptest.NewRequest("GET", "/health", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var resp struct {
				Status  string `json:"status"`
				Backend string `json:"backend"`
				Store   string `json:"store"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if resp.Store != tt.wantStore || resp.Backend != "memory" {
				t.Errorf("unexpected response %+v", resp)
			}
		})
	}
}
