package worker

import (
	"math"
	"math/rand"
	"time"
)

// ExponentialBackoff returns the retry delay for the given attempt:
// 2s, 4s, 8s, ... capped at 5 minutes, plus up to 250ms of jitter to
// avoid thundering herds.
func ExponentialBackoff(attempt int) time.Duration {
	base := 2 * time.Second
	capDelay := 5 * time.Minute

	multiple := math.Pow(2, float64(attempt))
	delay := time.Duration(float64(base) * multiple)

	if delay > capDelay {
		delay = capDelay
	}

	delay += time.Duration(rand.Intn(250)) * time.Millisecond

	return delay
}
