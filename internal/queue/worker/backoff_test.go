package worker

import (
	"testing"
	"time"
)

func TestExponentialBackoffGrows(t *testing.T) {
	prev := time.Duration(0)

	for attempt := 0; attempt < 5; attempt++ {
		d := ExponentialBackoff(attempt)

		// Strip the jitter ceiling before comparing shape.
		if d < prev {
			t.Fatalf("attempt %d: delay %v shrank below %v", attempt, d, prev)
		}

		prev = d - 250*time.Millisecond
	}
}

func TestExponentialBackoffCapped(t *testing.T) {
	maxDelay := 5*time.Minute + 250*time.Millisecond

	for _, attempt := range []int{10, 20, 50} {
		if d := ExponentialBackoff(attempt); d > maxDelay {
			t.Fatalf("attempt %d: delay %v exceeds cap", attempt, d)
		}
	}
}
