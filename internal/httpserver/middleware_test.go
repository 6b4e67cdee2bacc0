package httpserver

import (
	"testing"
	"time"
)

func TestLimiterSweepDropsIdleBuckets(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	l := newLimiter(1, 1)
	l.now = func() time.Time { return now }

	if !l.get("10.0.0.1").Allow() {
		t.Fatal("first request refused")
	}
	now = now.Add(5 * time.Minute)
	l.get("10.0.0.2")

	if n := l.sweep(time.Minute); n != 1 {
		t.Fatalf("sweep pruned %d, want 1", n)
	}
	if _, ok := l.byKey["10.0.0.1"]; ok {
		t.Error("idle bucket kept")
	}
	if _, ok := l.byKey["10.0.0.2"]; !ok {
		t.Error("recent bucket pruned")
	}
	if n := l.sweep(time.Minute); n != 0 {
		t.Errorf("second sweep pruned %d", n)
	}
}
