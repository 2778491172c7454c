// Package app is the presentational shell: a view registry and a router
// that applies the route guard on every navigation. Rendering is plain
// text and deliberately thin, the interesting contracts live in session,
// api, and alerts.
package app

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ihwang125/NewsToText/internal/guard"
	"github.com/ihwang125/NewsToText/internal/session"
)

// ViewLogin is the destination of every guard redirect.
const ViewLogin = "login"

// StatusSource is the slice of the session store the router consumes:
// current status plus change notifications for guard re-evaluation.
type StatusSource interface {
	Status() session.Status
	Subscribe(fn func(session.Status))
}

// View renders one screen of the client.
type View interface {
	Name() string
	Protected() bool
	Render(ctx context.Context, w io.Writer) error
}

// Router owns the view registry and the current view, and re-runs the
// guard whenever session status changes: if the status drops to
// unauthenticated while a protected view is current (a 401 landed), the
// router navigates to login without being asked.
type Router struct {
	mu       sync.Mutex
	out      io.Writer
	sessions StatusSource
	views    map[string]View
	current  string
}

// NewRouter creates a router writing to out and subscribes it to session
// status changes.
func NewRouter(out io.Writer, sessions StatusSource) *Router {
	r := &Router{
		out:      out,
		sessions: sessions,
		views:    make(map[string]View),
	}
	sessions.Subscribe(r.onStatusChange)
	return r
}

// Register adds a view to the registry. Later registrations with the same
// name replace earlier ones.
func (r *Router) Register(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[v.Name()] = v
}

// Current returns the name of the current view.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate applies the guard and renders. For protected views:
// unresolved status renders a neutral placeholder (never the wrong view),
// unauthenticated redirects to login and discards the attempted
// navigation, authenticated renders the view.
//
// The router lock is not held during Render, so a 401 surfacing inside a
// render can navigate to login reentrantly.
func (r *Router) Navigate(ctx context.Context, name string) error {
	r.mu.Lock()
	view, ok := r.views[name]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("unknown view %q", name)
	}

	decision := guard.DecisionAllow
	if view.Protected() {
		decision = guard.Evaluate(r.sessions.Status())
	}

	switch decision {
	case guard.DecisionWait:
		// Keep the requested view current so the status subscription
		// re-navigates here once the session resolves.
		r.current = name
		r.mu.Unlock()
		fmt.Fprintln(r.out, "Loading...")
		return nil

	case guard.DecisionRedirectLogin:
		r.mu.Unlock()
		log.Debug().Str("view", name).Msg("Guard redirect to login")
		return r.Navigate(ctx, ViewLogin)

	default:
		r.current = name
		r.mu.Unlock()
		return view.Render(ctx, r.out)
	}
}

// onStatusChange re-evaluates the guard for the current view. Runs
// synchronously from the session store's notification path.
func (r *Router) onStatusChange(status session.Status) {
	r.mu.Lock()
	name := r.current
	view := r.views[name]
	r.mu.Unlock()

	if view == nil {
		return
	}

	if !view.Protected() {
		return
	}

	switch guard.Evaluate(status) {
	case guard.DecisionRedirectLogin:
		log.Info().Str("view", name).Msg("Session ended, leaving protected view")
		if err := r.Navigate(context.Background(), ViewLogin); err != nil {
			log.Error().Err(err).Msg("Failed to navigate to login")
		}
	case guard.DecisionAllow:
		// A view parked on the unresolved placeholder renders for real now.
		if err := r.Navigate(context.Background(), name); err != nil {
			log.Error().Err(err).Msg("Failed to render view after session resolve")
		}
	}
}
