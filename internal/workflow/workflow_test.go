package workflow

import "testing"

func TestNextRegistration(t *testing.T) {
	tests := []struct {
		name  string
		state RegistrationState
		event RegistrationEvent
		want  RegistrationState
	}{
		{"submit starts duplicate check", Idle, EventSubmit, DuplicateCheck},
		{"duplicate aborts to idle", DuplicateCheck, EventDuplicateFound, Idle},
		{"code sent", DuplicateCheck, EventCodeSent, OTPSent},
		{"send failure aborts to idle", DuplicateCheck, EventSendFailed, Idle},
		{"code entered", OTPSent, EventCodeEntered, OTPVerifying},
		{"code accepted is terminal", OTPVerifying, EventCodeAccepted, RequestSubmitted},
		{"code rejected allows retry", OTPVerifying, EventCodeRejected, OTPSent},
		{"persist failure aborts to idle", OTPVerifying, EventPersistFailed, Idle},
		{"terminal state ignores events", RequestSubmitted, EventSubmit, RequestSubmitted},
		{"unrelated event leaves state", OTPSent, EventSubmit, OTPSent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextRegistration(tt.state, tt.event); got != tt.want {
				t.Fatalf("NextRegistration(%v, %v) = %v, want %v", tt.state, tt.event, got, tt.want)
			}
		})
	}
}

func TestNextReset(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		s := ResetState{Stage: AwaitingCode}
		s = NextReset(s, ResetEvent{Kind: EventCodeValid})
		if s.Stage != ShowingForm || s.Err != "" {
			t.Fatalf("expected clean ShowingForm, got %+v", s)
		}
		s = NextReset(s, ResetEvent{Kind: EventSubmitOK})
		if s.Stage != Success {
			t.Fatalf("expected Success, got %+v", s)
		}
	})

	t.Run("invalid code overlays error without advancing", func(t *testing.T) {
		s := NextReset(ResetState{Stage: AwaitingCode}, ResetEvent{Kind: EventCodeInvalid, Reason: "expired_action_code"})
		if s.Stage != AwaitingCode {
			t.Fatalf("expected stage to stay AwaitingCode, got %v", s.Stage)
		}
		if s.Err != "expired_action_code" {
			t.Fatalf("expected overlaid error, got %q", s.Err)
		}
	})

	t.Run("submit failure keeps form and error is transient", func(t *testing.T) {
		s := NextReset(ResetState{Stage: ShowingForm}, ResetEvent{Kind: EventSubmitFailed, Reason: "password_mismatch"})
		if s.Stage != ShowingForm || s.Err != "password_mismatch" {
			t.Fatalf("unexpected state %+v", s)
		}
		s = NextReset(s, ResetEvent{Kind: EventSubmitOK})
		if s.Stage != Success || s.Err != "" {
			t.Fatalf("expected error cleared on success, got %+v", s)
		}
	})

	t.Run("success is terminal", func(t *testing.T) {
		s := NextReset(ResetState{Stage: Success}, ResetEvent{Kind: EventCodeInvalid, Reason: "x"})
		if s.Stage != Success {
			t.Fatalf("expected Success to be terminal, got %v", s.Stage)
		}
	})
}
