// Package workflow defines the portal's finite-state flows as pure
// transition functions, independent of transport and storage.
package workflow

// RegistrationState is the stage of a signup attempt.
type RegistrationState int

const (
	Idle RegistrationState = iota
	DuplicateCheck
	OTPSent
	OTPVerifying
	RequestSubmitted // terminal
)

func (s RegistrationState) String() string {
	switch s {
	case Idle:
		return "idle"
	case DuplicateCheck:
		return "duplicate_check"
	case OTPSent:
		return "otp_sent"
	case OTPVerifying:
		return "otp_verifying"
	case RequestSubmitted:
		return "request_submitted"
	default:
		return "unknown"
	}
}

// RegistrationEvent drives the registration state machine.
type RegistrationEvent int

const (
	EventSubmit RegistrationEvent = iota
	EventDuplicateFound
	EventCodeSent
	EventSendFailed
	EventCodeEntered
	EventCodeAccepted
	EventCodeRejected
	EventPersistFailed
)

// NextRegistration is the pure transition function. Failures return to Idle
// or OTPSent depending on where they occur; everything else is ignored,
// leaving the state unchanged.
func NextRegistration(s RegistrationState, e RegistrationEvent) RegistrationState {
	switch s {
	case Idle:
		if e == EventSubmit {
			return DuplicateCheck
		}
	case DuplicateCheck:
		switch e {
		case EventCodeSent:
			return OTPSent
		case EventDuplicateFound, EventSendFailed:
			return Idle
		}
	case OTPSent:
		if e == EventCodeEntered {
			return OTPVerifying
		}
	case OTPVerifying:
		switch e {
		case EventCodeAccepted:
			return RequestSubmitted
		case EventCodeRejected:
			return OTPSent
		case EventPersistFailed:
			return Idle
		}
	case RequestSubmitted:
		// terminal
	}
	return s
}
