// Package guard decides, per navigation, whether a protected view may
// render. The decision is a pure function of session status, evaluated on
// every navigation and re-evaluated whenever the status changes (the
// router subscribes to the session store for that).
package guard

import (
	"fmt"

	"github.com/ihwang125/NewsToText/internal/session"
)

// Decision is the guard's verdict for a protected view.
type Decision int

const (
	// DecisionWait: session state is still unresolved. Render nothing —
	// neither the protected view nor a login redirect — to avoid a flash
	// of the wrong view.
	DecisionWait Decision = iota

	// DecisionAllow: render the requested view.
	DecisionAllow

	// DecisionRedirectLogin: redirect to the login view, discarding the
	// attempted navigation.
	DecisionRedirectLogin
)

func (d Decision) String() string {
	switch d {
	case DecisionWait:
		return "wait"
	case DecisionAllow:
		return "allow"
	case DecisionRedirectLogin:
		return "redirect_login"
	}
	return fmt.Sprintf("Decision(%d)", int(d))
}

// Evaluate maps session status to a guard decision.
func Evaluate(status session.Status) Decision {
	switch status {
	case session.StatusAuthenticated:
		return DecisionAllow
	case session.StatusUnauthenticated:
		return DecisionRedirectLogin
	default:
		return DecisionWait
	}
}
