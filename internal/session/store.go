// Package session holds process-wide authentication state: the current
// user, the bearer token, and whether either is known yet. Exactly one
// Store exists for the process lifetime; it is constructed in main and
// injected into consumers.
//
// The token never leaves this package except through the TokenSource-shaped
// accessor the API client consumes; everything else reads Status and
// CurrentUser only.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ihwang125/NewsToText/internal/models"
	"github.com/ihwang125/NewsToText/pkg/keystore"
)

// Status is the resolution state of the session.
type Status int

const (
	// StatusUnresolved means persisted state has not been read yet.
	// Consumers must render neither protected nor redirect UI while
	// unresolved.
	StatusUnresolved Status = iota

	// StatusAuthenticated means a user and token are present.
	StatusAuthenticated

	// StatusUnauthenticated means the client has no valid session.
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUnresolved:
		return "unresolved"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Store is the single source of truth for "is this client authenticated,
// as whom". Status is StatusAuthenticated exactly when both user and token
// are held; no operation can break that invariant.
type Store struct {
	mu          sync.Mutex
	keys        keystore.Store
	user        *models.User
	token       string
	status      Status
	subscribers []func(Status)
}

// New creates a session store backed by the given durable keystore.
// The store starts unresolved; call ResolveInitial before the first
// guard decision.
func New(keys keystore.Store) *Store {
	return &Store{
		keys:   keys,
		status: StatusUnresolved,
	}
}

// ResolveInitial reads the persisted token and user and resolves the
// initial status: authenticated if both are present and well-formed,
// unauthenticated otherwise. Stale or malformed persisted state is
// deleted best-effort so the next start resolves cleanly.
//
// Deterministic and idempotent: the same persisted pair always yields the
// same status.
func (s *Store) ResolveInitial(ctx context.Context) error {
	token, tokenErr := s.keys.Get(ctx, keystore.KeyToken)
	rawUser, userErr := s.keys.Get(ctx, keystore.KeyUser)

	for _, err := range []error{tokenErr, userErr} {
		if err != nil && !errors.Is(err, keystore.ErrKeyNotFound) {
			return fmt.Errorf("read persisted session: %w", err)
		}
	}

	var user models.User
	wellFormed := tokenErr == nil && userErr == nil && token != "" &&
		json.Unmarshal([]byte(rawUser), &user) == nil && user.Email != ""

	if !wellFormed {
		// Partial or corrupt state helps nobody; drop it.
		if tokenErr == nil || userErr == nil {
			if err := s.keys.Delete(ctx, keystore.KeyToken, keystore.KeyUser); err != nil {
				log.Warn().Err(err).Msg("Failed to delete stale session keys")
			}
		}
		s.transition(nil, "", StatusUnauthenticated)
		log.Debug().Msg("No persisted session, starting unauthenticated")
		return nil
	}

	s.transition(&user, token, StatusAuthenticated)
	log.Info().Str("email", user.Email).Msg("Restored persisted session")
	return nil
}

// Set installs a new session after a successful login or register. Both
// fields are persisted durably before the in-memory state changes; a
// persistence failure leaves the store untouched.
func (s *Store) Set(ctx context.Context, user *models.User, token string) error {
	if user == nil || token == "" {
		return fmt.Errorf("session: user and token are both required")
	}

	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}
	if err := s.keys.Set(ctx, keystore.KeyToken, token); err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	if err := s.keys.Set(ctx, keystore.KeyUser, string(rawUser)); err != nil {
		return fmt.Errorf("persist user: %w", err)
	}

	u := *user
	s.transition(&u, token, StatusAuthenticated)
	log.Info().Str("email", user.Email).Msg("Session established")
	return nil
}

// Clear drops the session on explicit logout or detected authorization
// failure. It erases the persisted keys and reports whether the call
// actually transitioned the store out of an authenticated or unresolved
// state: concurrent clears collapse to a single true return, which callers
// use to run follow-up side effects (navigation to login) exactly once.
func (s *Store) Clear(ctx context.Context) bool {
	if err := s.keys.Delete(ctx, keystore.KeyToken, keystore.KeyUser); err != nil {
		// In-memory state still wins; worst case the stale token is
		// rejected with a 401 on next start and cleared again.
		log.Warn().Err(err).Msg("Failed to erase persisted session")
	}

	changed := s.transition(nil, "", StatusUnauthenticated)
	if changed {
		log.Info().Msg("Session cleared")
	}
	return changed
}

// Status returns the current resolution state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (s *Store) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// BearerToken returns the credential for outbound requests. Reserved for
// the API client; nothing else should call it.
func (s *Store) BearerToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.status == StatusAuthenticated
}

// Subscribe registers fn to be called synchronously on every status
// transition. Subscribers are invoked outside the store lock, so they may
// read back from the store.
func (s *Store) Subscribe(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// transition atomically swaps the session state and notifies subscribers
// if the status changed. Returns whether it changed.
func (s *Store) transition(user *models.User, token string, status Status) bool {
	s.mu.Lock()
	changed := s.status != status
	s.user = user
	s.token = token
	s.status = status
	subs := make([]func(Status), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	if changed {
		for _, fn := range subs {
			fn(status)
		}
	}
	return changed
}
