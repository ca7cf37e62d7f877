package flow

import (
	"authbridge/internal/auth"
	"authbridge/internal/auth/client"
)

type OutcomeKind int

const (
	// OutcomeProfile means the callback finished. Profile may be nil when
	// the credentials identified nobody.
	OutcomeProfile OutcomeKind = iota + 1

	// OutcomeActionRequired carries a response the web layer must write
	// verbatim.
	OutcomeActionRequired

	// OutcomeFailure is fatal for the request and is not retried.
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeProfile:
		return "profile"
	case OutcomeActionRequired:
		return "action_required"
	case OutcomeFailure:
		return "failure"
	}
	return "unknown"
}

type FailureKind int

const (
	// FailureUnsupportedAction is reported when a client asks for an HTTP
	// response code the web layer cannot render.
	FailureUnsupportedAction FailureKind = iota + 1
)

type Failure struct {
	Kind    FailureKind
	Message string
}

// Outcome is the result of a callback. Exactly one of Profile (with
// RedirectURL), Action or Failure is meaningful, as told by Kind.
type Outcome struct {
	Kind        OutcomeKind
	Profile     *auth.Profile
	RedirectURL string
	Action      *client.HTTPAction
	Failure     *Failure
}
