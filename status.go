package idkit

// StatusKind is the state of a session.
type StatusKind string

const (
	StatusWaitingForConnection = StatusKind("waiting_for_connection") // World App has not yet fetched the request
	StatusAwaitingConfirmation = StatusKind("awaiting_confirmation")  // user is deciding in the World App
	StatusConfirmed            = StatusKind("confirmed")              // final: proof received
	StatusFailed               = StatusKind("failed")                 // final: see Error
)

func (kind StatusKind) Finished() bool {
	return kind == StatusConfirmed || kind == StatusFailed
}

// Status is the externally observable state of a session at some point in time.
type Status struct {
	Kind StatusKind

	// Proof is set when Kind is StatusConfirmed.
	Proof *Proof
	// Error is set when Kind is StatusFailed.
	Error *AppError
	// Err is the lower-level cause of a locally raised failure, if any. It is
	// meant for diagnostics only; Error is what should be shown to users.
	Err error
}

func (s Status) Finished() bool {
	return s.Kind.Finished()
}

// SameKind reports whether both statuses are in the same state, ignoring their payload.
func (s Status) SameKind(other Status) bool {
	return s.Kind == other.Kind
}

func (s Status) String() string {
	if s.Kind == StatusFailed && s.Error != nil {
		return string(s.Kind) + " (" + string(s.Error.Code) + ")"
	}
	return string(s.Kind)
}

func confirmed(proof *Proof) Status {
	return Status{Kind: StatusConfirmed, Proof: proof}
}

func failed(appErr AppError, cause error) Status {
	return Status{Kind: StatusFailed, Error: &appErr, Err: cause}
}
