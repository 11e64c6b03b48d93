package metrics

import (
	"net/http/httptest"
	"testing"
)

func TestNewRegistersMetrics(t *testing.T) {
	m := New()

	if m.ConsistencyChecks == nil || m.TrialBalanceMinorUnits == nil || m.OutboxPublished == nil {
		t.Fatalf("expected key metrics to be initialized: %+v", m)
	}

	m.ConsistencyChecks.WithLabelValues("pass").Inc()
	m.TrialBalanceMinorUnits.Set(0)

	metricFamilies, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	if len(metricFamilies) == 0 {
		t.Fatalf("expected registered metrics, got none")
	}
}

func TestInstancesDoNotCollide(t *testing.T) {
	// Each instance registers into its own registry.
	a := New()
	b := New()

	a.OutboxPublished.Inc()
	b.OutboxPublished.Inc()
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New()
	m.OutboxPublished.Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	m.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected metrics output")
	}
}
