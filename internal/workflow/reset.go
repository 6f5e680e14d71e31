package workflow

// ResetStage is the stage of a password-reset action flow.
type ResetStage int

const (
	AwaitingCode ResetStage = iota
	ShowingForm
	Success
)

func (s ResetStage) String() string {
	switch s {
	case AwaitingCode:
		return "awaiting_code"
	case ShowingForm:
		return "showing_form"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// ResetState is the full flow state: a stage plus an overlaid transient
// error. Err is cleared on every successful transition.
type ResetState struct {
	Stage ResetStage
	Err   string
}

// ResetEvent drives the reset flow.
type ResetEvent struct {
	Kind   ResetEventKind
	Reason string // populated for failures
}

type ResetEventKind int

const (
	EventCodeValid ResetEventKind = iota
	EventCodeInvalid
	EventSubmitOK
	EventSubmitFailed
)

// NextReset is the pure transition function for the reset flow. The only
// stage progression is AwaitingCode -> ShowingForm -> Success; failures keep
// the stage and set the transient error.
func NextReset(s ResetState, e ResetEvent) ResetState {
	switch s.Stage {
	case AwaitingCode:
		switch e.Kind {
		case EventCodeValid:
			return ResetState{Stage: ShowingForm}
		case EventCodeInvalid:
			return ResetState{Stage: AwaitingCode, Err: e.Reason}
		}
	case ShowingForm:
		switch e.Kind {
		case EventSubmitOK:
			return ResetState{Stage: Success}
		case EventSubmitFailed:
			return ResetState{Stage: ShowingForm, Err: e.Reason}
		}
	case Success:
		// terminal
	}
	return s
}
