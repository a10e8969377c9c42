package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/sidequest/internal/app/system/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func TestPrometheus_Exposition(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := metrics.NewPrometheus("sq", reg)
	if err != nil {
		t.Fatalf("NewPrometheus: %v", err)
	}
	p.ObserveOperation("join", metrics.OutcomeOK, 5*time.Millisecond)
	p.ObserveOperation("join", metrics.OutcomeRejected, time.Millisecond)
	p.AddConflictRetry("join")
	p.AddSwept("quest-expiry-sweep", 2)

	rec := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`sq_operations_total{operation="join",outcome="ok"} 1`,
		`sq_operations_total{operation="join",outcome="rejected"} 1`,
		`sq_conflict_retries_total{operation="join"} 1`,
		`sq_swept_quests_total{job="quest-expiry-sweep"} 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q", want)
		}
	}
}

func TestPrometheus_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := metrics.NewPrometheus("sq", reg)
	if err != nil {
		t.Fatalf("first NewPrometheus: %v", err)
	}
	second, err := metrics.NewPrometheus("sq", reg)
	if err != nil {
		t.Fatalf("second NewPrometheus: %v", err)
	}
	first.AddConflictRetry("complete")
	second.AddConflictRetry("complete")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() == "sq_conflict_retries_total" {
			if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 2 {
				t.Errorf("shared counter: got %v, want 2", got)
			}
			return
		}
	}
	t.Error("conflict retries metric not gathered")
}
