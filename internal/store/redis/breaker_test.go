package redis

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBreaker_StartsClosed(t *testing.T) {
	b := NewBreaker(3, 100*time.Millisecond)
	if b.State() != BreakerClosed {
		t.Errorf("expected closed, got %v", b.State())
	}
}

func TestBreaker_OpensAfterFailures(t *testing.T) {
	b := NewBreaker(3, 100*time.Millisecond)
	errFail := errors.New("fail")

	for i := 0; i < 3; i++ {
		err := b.Execute(func() error { return errFail })
		if err != errFail {
			t.Fatalf("expected errFail, got %v", err)
		}
	}

	if b.State() != BreakerOpen {
		t.Errorf("expected open after 3 failures, got %v", b.State())
	}

	// Calls should be rejected immediately
	err := b.Execute(func() error { return nil })
	if err != ErrCircuitOpen {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b := NewBreaker(2, 50*time.Millisecond)

	errFail := errors.New("fail")
	for i := 0; i < 2; i++ {
		b.Execute(func() error { return errFail })
	}
	if b.State() != BreakerOpen {
		t.Fatal("expected open")
	}

	// Wait for reset timeout, then the probe succeeds and closes the circuit
	time.Sleep(60 * time.Millisecond)

	err := b.Execute(func() error { return nil })
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if b.State() != BreakerClosed {
		t.Errorf("expected closed after successful probe, got %v", b.State())
	}
}

func TestBreaker_HalfOpenFailure(t *testing.T) {
	b := NewBreaker(2, 50*time.Millisecond)
	errFail := errors.New("fail")

	for i := 0; i < 2; i++ {
		b.Execute(func() error { return errFail })
	}

	// Wait and fail the probe
	time.Sleep(60 * time.Millisecond)
	b.Execute(func() error { return errFail })

	if b.State() != BreakerOpen {
		t.Errorf("expected open after failed probe, got %v", b.State())
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(3, 100*time.Millisecond)
	errFail := errors.New("fail")

	// 2 failures, then a success
	b.Execute(func() error { return errFail })
	b.Execute(func() error { return errFail })
	b.Execute(func() error { return nil }) // resets counter

	// 2 more failures shouldn't trip because counter was reset
	b.Execute(func() error { return errFail })
	b.Execute(func() error { return errFail })

	if b.State() != BreakerClosed {
		t.Errorf("expected closed (counter should have reset), got %v", b.State())
	}
}

func TestBreaker_OnStateChangeCallback(t *testing.T) {
	var mu sync.Mutex
	var transitions []BreakerState

	b := NewBreaker(1, 50*time.Millisecond)
	// Callbacks fire on their own goroutine; collect under a lock.
	b.OnStateChange = func(from, to BreakerState) {
		mu.Lock()
		transitions = append(transitions, to)
		mu.Unlock()
	}

	b.Execute(func() error { return errors.New("fail") })
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	if len(transitions) != 1 || transitions[0] != BreakerOpen {
		t.Errorf("expected [open], got %v", transitions)
	}
	mu.Unlock()

	time.Sleep(50 * time.Millisecond)
	b.Execute(func() error { return nil })
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(transitions) != 3 {
		t.Fatalf("expected 3 transitions, got %d: %v", len(transitions), transitions)
	}
	// The half-open and closed callbacks run on separate goroutines, so only
	// membership is guaranteed, not ordering.
	seen := map[BreakerState]bool{}
	for _, s := range transitions {
		seen[s] = true
	}
	if !seen[BreakerHalfOpen] || !seen[BreakerClosed] {
		t.Errorf("expected open, half-open and closed, got %v", transitions)
	}
}
