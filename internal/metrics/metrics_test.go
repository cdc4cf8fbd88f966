package metrics

import (
	"strconv"
	"testing"
)

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		// Known exact routes.
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/metrics", "/metrics"},
		{"/api/v1/satellites", "/api/v1/satellites"},
		{"/api/v1/connectivity", "/api/v1/connectivity"},
		{"/api/v1/filters", "/api/v1/filters"},

		// Parameterized record routes collapse to one label.
		{"/api/v1/satellites/25544", "/api/v1/satellites/{id}"},
		{"/api/v1/satellites/28485", "/api/v1/satellites/{id}"},
		{"/api/v1/satellites/1", "/api/v1/satellites/{id}"},

		// Unknown/bot paths collapse to "other".
		{"/api/v1/satellites/", "other"},
		{"/api/v1/satellites/1/extra", "other"},
		{"/wp-admin", "other"},
		{"/.env", "other"},
		{"/api/v2/something", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := normalizeRoute(tt.path)
			if got != tt.want {
				t.Errorf("normalizeRoute(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

// TestMetricsCardinality verifies that 100 distinct satellite ids produce
// exactly 1 distinct path label, not 100.
func TestMetricsCardinality(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[normalizeRoute("/api/v1/satellites/"+strconv.Itoa(20000+i))] = true
	}
	if len(seen) != 1 {
		t.Errorf("expected 1 unique label for parameterized paths, got %d: %v", len(seen), seen)
	}
}
