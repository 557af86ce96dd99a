package resilience

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAfterMaxFailures(t *testing.T) {
	b := NewBreaker(3, time.Minute)
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		if err := b.Execute(func() error { return boom }); !errors.Is(err, boom) {
			t.Fatalf("call %d: err = %v, want boom", i, err)
		}
	}

	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerHalfOpenRecovers(t *testing.T) {
	b := NewBreaker(1, time.Minute)
	now := time.Now()
	b.now = func() time.Time { return now }

	_ = b.Execute(func() error { return errors.New("boom") })
	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}

	// After the timeout a probe is allowed; success closes the circuit.
	now = now.Add(2 * time.Minute)
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe: %v", err)
	}
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("closed circuit: %v", err)
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker(1, time.Minute)
	now := time.Now()
	b.now = func() time.Time { return now }

	_ = b.Execute(func() error { return errors.New("boom") })
	now = now.Add(2 * time.Minute)

	// Failed probe reopens immediately.
	_ = b.Execute(func() error { return errors.New("boom again") })
	if err := b.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen after failed probe", err)
	}
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(2, time.Minute)

	_ = b.Execute(func() error { return errors.New("boom") })
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("success: %v", err)
	}
	_ = b.Execute(func() error { return errors.New("boom") })

	// Only one consecutive failure, circuit stays closed.
	if err := b.Execute(func() error { return nil }); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}
