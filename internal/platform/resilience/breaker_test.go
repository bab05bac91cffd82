package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestBreaker_BasicTransitions(t *testing.T) {
	b := NewBreaker(2, 5*time.Second)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	if err := b.Allow(); err != nil {
		t.Fatalf("expected allow in closed state: %v", err)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}

	b.RecordFailure()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}

	now = now.Add(6 * time.Second)
	if err := b.Allow(); err != nil {
		t.Fatalf("expected half-open probe to pass, got %v", err)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected second half-open probe to be rejected, got %v", err)
	}

	b.RecordSuccess()
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}
}

func TestBreaker_TripOpensImmediately(t *testing.T) {
	b := NewBreaker(5, 10*time.Second)

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.Trip()
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after trip, got %s", state)
	}
	if err := b.Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}
}

func TestHostBreakers_IsolatesHosts(t *testing.T) {
	h := NewHostBreakers(1, 10*time.Second)

	h.For("www.pro-football-reference.com").Trip()

	if err := h.For("www.pro-football-reference.com").Allow(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected tripped host to be rejected, got %v", err)
	}
	if err := h.For("www.basketball-reference.com").Allow(); err != nil {
		t.Fatalf("expected other host to be allowed, got %v", err)
	}
	if got := h.For("www.pro-football-reference.com"); got != h.For("www.pro-football-reference.com") {
		t.Fatal("expected same breaker instance per host")
	}
}

func TestBackoff_DoublesUpToMax(t *testing.T) {
	base := 500 * time.Millisecond
	max := 4 * time.Second

	for attempt, want := range map[int]time.Duration{
		1: 500 * time.Millisecond,
		2: time.Second,
		3: 2 * time.Second,
		4: 4 * time.Second,
		5: 4 * time.Second,
	} {
		got := Backoff(base, max, attempt)
		if got < want || got > want+want/4 {
			t.Fatalf("attempt %d: backoff %v outside [%v, %v]", attempt, got, want, want+want/4)
		}
	}
}

func TestPolitenessDelay_WithinBounds(t *testing.T) {
	min, max := time.Second, 3*time.Second
	for i := 0; i < 100; i++ {
		d := PolitenessDelay(min, max)
		if d < min || d > max {
			t.Fatalf("delay %v outside [%v, %v]", d, min, max)
		}
	}
}
