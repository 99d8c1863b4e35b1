package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.SearchQueriesTotal.WithLabelValues("ranked", "hit").Inc()
	m.SearchQueriesTotal.WithLabelValues("ranked", "hit").Inc()
	m.IndexTerms.Set(42)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	values := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[mf.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[mf.GetName()] += metric.GetGauge().GetValue()
			}
		}
	}
	if got := values["search_queries_total"]; got != 2 {
		t.Fatalf("search_queries_total = %v, want 2", got)
	}
	if got := values["index_terms"]; got != 42 {
		t.Fatalf("index_terms = %v, want 42", got)
	}
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	NewWithRegistry(prometheus.NewRegistry())
	NewWithRegistry(prometheus.NewRegistry())
}
