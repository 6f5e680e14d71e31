package otp

import (
	"errors"
	"testing"
	"time"

	"github.com/altivest/portal-service/internal/workflow"
)

// fakeClock lets the tests step the store's notion of time.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time       { return c.t }
func (c *fakeClock) tick(d time.Duration) { c.t = c.t.Add(d) }

func newTestStore() (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	s := NewStore()
	s.now = clock.now
	return s, clock
}

func TestCreateAndVerify(t *testing.T) {
	s, _ := newTestStore()

	id, code, err := s.Create("+15550001111", nil)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(code) != CodeLength {
		t.Fatalf("expected %d-digit code, got %q", CodeLength, code)
	}

	state, err := s.State(id)
	if err != nil {
		t.Fatalf("State returned error: %v", err)
	}
	if state != workflow.OTPSent {
		t.Fatalf("expected OTPSent, got %v", state)
	}

	if err := s.Verify(id, code); err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	state, _ = s.State(id)
	if state != workflow.RequestSubmitted {
		t.Fatalf("expected RequestSubmitted after accept, got %v", state)
	}

	s.Complete(id)
	if _, err := s.Phone(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected challenge gone after Complete, got %v", err)
	}
}

func TestVerifyMismatchAllowsRetry(t *testing.T) {
	s, _ := newTestStore()
	id, code, _ := s.Create("+15550001111", nil)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	if err := s.Verify(id, wrong); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch, got %v", err)
	}

	state, _ := s.State(id)
	if state != workflow.OTPSent {
		t.Fatalf("expected return to OTPSent after rejection, got %v", state)
	}

	if err := s.Verify(id, code); err != nil {
		t.Fatalf("retry with correct code failed: %v", err)
	}
}

func TestVerifyAttemptCap(t *testing.T) {
	s, _ := newTestStore()
	id, code, _ := s.Create("+15550001111", nil)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}

	var err error
	for i := 0; i < maxAttempts; i++ {
		err = s.Verify(id, wrong)
	}
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts on final attempt, got %v", err)
	}
	if err := s.Verify(id, code); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected challenge invalidated, got %v", err)
	}
}

func TestVerifyExpiry(t *testing.T) {
	s, clock := newTestStore()
	id, code, _ := s.Create("+15550001111", nil)

	clock.tick(challengeTTL + time.Second)

	if err := s.Verify(id, code); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestResendCooldown(t *testing.T) {
	s, clock := newTestStore()
	id, _, _ := s.Create("+15550001111", nil)

	if s.CanResend(id) {
		t.Fatal("expected CanResend false immediately after send")
	}
	if got := s.ResendRemaining(id); got != 15 {
		t.Fatalf("expected counter at 15, got %d", got)
	}

	if _, _, err := s.Resend(id); !errors.Is(err, ErrCooldownActive) {
		t.Fatalf("expected ErrCooldownActive, got %v", err)
	}

	for i := 0; i < 15; i++ {
		clock.tick(time.Second)
	}

	if !s.CanResend(id) {
		t.Fatal("expected CanResend true after 15 one-second ticks")
	}
	if got := s.ResendRemaining(id); got != 0 {
		t.Fatalf("expected counter at 0, got %d", got)
	}

	phone, code, err := s.Resend(id)
	if err != nil {
		t.Fatalf("Resend returned error: %v", err)
	}
	if phone != "+15550001111" {
		t.Fatalf("unexpected phone %q", phone)
	}
	if len(code) != CodeLength {
		t.Fatalf("expected fresh %d-digit code, got %q", CodeLength, code)
	}

	// Resend restarts the cooldown.
	if s.CanResend(id) {
		t.Fatal("expected cooldown restarted after resend")
	}
}

func TestCodeBuffer(t *testing.T) {
	t.Run("assembles six digits", func(t *testing.T) {
		var b CodeBuffer
		for i, d := range []string{"1", "2", "3", "4", "5", "6"} {
			if !b.Set(i, d) {
				t.Fatalf("Set(%d, %q) rejected", i, d)
			}
		}
		code, ok := b.Code()
		if !ok {
			t.Fatal("expected complete buffer")
		}
		if code != "123456" {
			t.Fatalf("expected 123456, got %q", code)
		}
	})

	t.Run("non-numeric entry leaves prior value", func(t *testing.T) {
		var b CodeBuffer
		b.Set(2, "7")
		for _, bad := range []string{"a", "!", "12", ""} {
			if b.Set(2, bad) {
				t.Fatalf("Set accepted %q", bad)
			}
		}
		if b[2] != "7" {
			t.Fatalf("prior value mutated: %q", b[2])
		}
	})

	t.Run("incomplete buffer yields no code", func(t *testing.T) {
		var b CodeBuffer
		b.Set(0, "1")
		if _, ok := b.Code(); ok {
			t.Fatal("expected incomplete buffer to report !ok")
		}
	})

	t.Run("clear resets a single position", func(t *testing.T) {
		var b CodeBuffer
		b.Set(0, "9")
		b.Clear(0)
		if b[0] != "" {
			t.Fatalf("expected cleared position, got %q", b[0])
		}
	})
}
