package resilience

import (
	"math/rand"
	"time"
)

// Backoff returns the wait before retry attempt (1-based), doubling the
// base each attempt up to max, with up to 25% random jitter added so
// concurrent fetchers do not retry in lockstep.
func Backoff(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if attempt < 1 {
		attempt = 1
	}

	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if max > 0 && d >= max {
			d = max
			break
		}
	}
	if max > 0 && d > max {
		d = max
	}

	return d + time.Duration(rand.Int63n(int64(d)/4+1))
}

// PolitenessDelay picks a random duration in [min, max], the crawl
// pause between consecutive requests to the same host.
func PolitenessDelay(min, max time.Duration) time.Duration {
	if min < 0 {
		min = 0
	}
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}
