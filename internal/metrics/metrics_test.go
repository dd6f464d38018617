package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewWithRegistry(registry)

	m.PollsTotal.Inc()
	m.PollsTotal.Inc()
	m.ArticlesDetected.Inc()
	m.ConsecutiveFailures.Set(3)

	if got := testutil.ToFloat64(m.PollsTotal); got != 2 {
		t.Errorf("polls_total = %f, want 2", got)
	}
	if got := testutil.ToFloat64(m.ArticlesDetected); got != 1 {
		t.Errorf("articles_detected_total = %f, want 1", got)
	}
	if got := testutil.ToFloat64(m.ConsecutiveFailures); got != 3 {
		t.Errorf("consecutive_poll_failures = %f, want 3", got)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected registered metric families")
	}
}

func TestNewWithRegistry_Isolated(t *testing.T) {
	// Separate registries must not collide on metric names.
	a := NewWithRegistry(prometheus.NewRegistry())
	b := NewWithRegistry(prometheus.NewRegistry())

	a.WebhookSends.Inc()
	if got := testutil.ToFloat64(b.WebhookSends); got != 0 {
		t.Errorf("registries should be isolated, got %f", got)
	}
}
