package assembler

import (
	"math"
	"testing"
	"time"
)

func TestAdaptiveWindow(t *testing.T) {
	tests := []struct {
		name         string
		threadLength int
		want         time.Duration
	}{
		{"new correspondent", 0, 30 * 24 * time.Hour},
		{"single reply", 1, 60 * 24 * time.Hour},
		{"short thread boundary", 3, 60 * 24 * time.Hour},
		{"established thread", 4, 90 * 24 * time.Hour},
		{"long thread", 20, 90 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AdaptiveWindow(tt.threadLength); got != tt.want {
				t.Errorf("AdaptiveWindow(%d) = %v, want %v", tt.threadLength, got, tt.want)
			}
		})
	}
}

func TestRecencyScore(t *testing.T) {
	const halfLife = 14.0

	if got := RecencyScore(0, halfLife); got != 1.0 {
		t.Errorf("RecencyScore(0) = %g, want 1.0", got)
	}
	if got := RecencyScore(-3, halfLife); got != 1.0 {
		t.Errorf("RecencyScore(-3) = %g, want 1.0", got)
	}

	if got := RecencyScore(halfLife, halfLife); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("RecencyScore at half-life = %g, want 0.5", got)
	}
	if got := RecencyScore(2*halfLife, halfLife); math.Abs(got-0.25) > 1e-9 {
		t.Errorf("RecencyScore at double half-life = %g, want 0.25", got)
	}

	prev := 1.0
	for age := 1.0; age <= 90; age++ {
		score := RecencyScore(age, halfLife)
		if score >= prev {
			t.Fatalf("RecencyScore not strictly decreasing at age %g: %g >= %g", age, score, prev)
		}
		prev = score
	}
}

func TestFusedScoreRanksFreshOverStale(t *testing.T) {
	// A perfectly similar but stale message should rank below a fresh,
	// moderately similar one.
	stale := FusedScore(1.0, 60, 14, 0.7)
	fresh := FusedScore(0.8, 0, 14, 0.7)

	if stale >= fresh {
		t.Errorf("stale = %g should rank below fresh = %g", stale, fresh)
	}
}

func TestFusedScoreWeights(t *testing.T) {
	// With age 0 the recency term is 1, so the score is
	// weight·sim + (1−weight).
	got := FusedScore(0.5, 0, 14, 0.7)
	want := 0.7*0.5 + 0.3
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("FusedScore = %g, want %g", got, want)
	}
}

func TestQueryTextDuplicatesSubject(t *testing.T) {
	got := QueryText("invoice", "please pay")
	want := "invoice\ninvoice\nplease pay"
	if got != want {
		t.Errorf("QueryText = %q, want %q", got, want)
	}
}
