package metrics

import (
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(404, 20*time.Millisecond)
	c.Record(403, 0)
	c.Record(429, 0)
	c.Record(500, 30*time.Millisecond)

	snap := c.Snapshot()
	checks := map[string]uint64{
		"requestsTotal":     5,
		"clientErrorsTotal": 3,
		"errorsTotal":       1,
		"deniedTotal":       1,
		"rateLimitedTotal":  1,
		"totalDurationMs":   60,
	}
	for key, want := range checks {
		if got := snap[key].(uint64); got != want {
			t.Fatalf("%s: expected %d, got %d", key, want, got)
		}
	}
	if avg := snap["avgDurationMs"].(float64); avg != 12 {
		t.Fatalf("expected avg 12, got %v", avg)
	}
}

func TestCollectorEmptySnapshot(t *testing.T) {
	snap := New().Snapshot()
	if snap["avgDurationMs"].(float64) != 0 {
		t.Fatal("expected zero average without requests")
	}
}
