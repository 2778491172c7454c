// Package alerts maintains the client-side mirror of the server's alert
// collection. Mutations are optimistic only in the sense that the local
// copy is patched from server responses as they arrive; nothing is applied
// before the server confirms it, and deletion in particular is
// confirmation-gated (an erroneous early removal is not recoverable from
// the visible list).
//
// Responses are applied in completion order, not issuance order. With a
// toggle and a delete for the same alert both in flight, whichever
// response lands last wins, which can reintroduce an alert the user
// believed deleted. That is documented behavior, not a bug.
package alerts

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ihwang125/NewsToText/internal/api"
	"github.com/ihwang125/NewsToText/internal/models"
)

// AlertAPI is the slice of the request client the store consumes.
type AlertAPI interface {
	ListAlerts(ctx context.Context) ([]models.Alert, error)
	CreateAlert(ctx context.Context, req models.AlertCreateRequest) (*models.Alert, error)
	UpdateAlert(ctx context.Context, id uint, req models.AlertUpdateRequest) (*models.Alert, error)
	DeleteAlert(ctx context.Context, id uint) error
	TestAlert(ctx context.Context, id uint) error
}

// Draft is unvalidated alert form input. Keywords is the raw
// comma-separated string exactly as the user typed it.
type Draft struct {
	Topic     string
	Keywords  string
	Frequency models.AlertFrequency
}

// Store is the local view of the current user's alerts.
type Store struct {
	mu     sync.RWMutex
	api    AlertAPI
	alerts []models.Alert
}

// New creates an empty store backed by the given API client. Call Load to
// populate it.
func New(a AlertAPI) *Store {
	return &Store{api: a}
}

// Load replaces the entire local collection with the server's current
// list. On failure the local collection is left unchanged, whatever its
// prior value.
func (s *Store) Load(ctx context.Context) error {
	fetched, err := s.api.ListAlerts(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.alerts = fetched
	s.mu.Unlock()

	log.Debug().Int("count", len(fetched)).Msg("Alert collection loaded")
	return nil
}

// List returns a copy of the local collection in server order.
func (s *Store) List() []models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Get returns the local copy of the alert with the given id.
func (s *Store) Get(id uint) (models.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, a := range s.alerts {
		if a.ID == id {
			return a, true
		}
	}
	return models.Alert{}, false
}

// Create validates the draft locally and, if it passes, creates the alert
// server-side and appends the returned alert (with its server-assigned id)
// to the collection. An empty keyword list after trimming and
// comma-splitting fails with a validation error before any network call.
func (s *Store) Create(ctx context.Context, draft Draft) (*models.Alert, error) {
	keywords := ParseKeywords(draft.Keywords)
	if len(keywords) == 0 {
		return nil, api.ValidationError("Please enter at least one keyword")
	}
	if !draft.Frequency.Valid() {
		return nil, api.ValidationError("Frequency must be realtime, hourly, or daily")
	}

	created, err := s.api.CreateAlert(ctx, models.AlertCreateRequest{
		Topic:     draft.Topic,
		Keywords:  keywords,
		Frequency: draft.Frequency,
	})
	if err != nil {
		return nil, err
	}

	s.apply(*created)
	log.Info().Uint("alert_id", created.ID).Str("topic", created.Topic).Msg("Alert created")
	return created, nil
}

// Update sends a partial update and, on success, replaces the matching
// local entry with the server's returned alert verbatim. The server
// response is the sole source of post-update truth; no client-side guesses
// are merged. An id absent from the local collection (stale view) still
// goes to the network and the server's outcome is reported.
func (s *Store) Update(ctx context.Context, id uint, patch models.AlertUpdateRequest) (*models.Alert, error) {
	updated, err := s.api.UpdateAlert(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.apply(*updated)
	return updated, nil
}

// ToggleActive flips the active flag: it reads the current local value and
// sends an update requesting its negation. Not idempotent under concurrent
// toggles; the last network response wins.
func (s *Store) ToggleActive(ctx context.Context, id uint) (*models.Alert, error) {
	current, ok := s.Get(id)
	if !ok {
		// Toggling is defined against the local copy; without one there
		// is no value to negate.
		return nil, &api.Error{Kind: api.KindNotFound, Message: "Alert not found"}
	}

	active := !current.Active
	return s.Update(ctx, id, models.AlertUpdateRequest{Active: &active})
}

// Delete removes the alert server-side and drops it from the local
// collection only after the server confirms. On failure the entry remains,
// unmodified. A locally-unknown id still goes to the network.
func (s *Store) Delete(ctx context.Context, id uint) error {
	if err := s.api.DeleteAlert(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	for i, a := range s.alerts {
		if a.ID == id {
			s.alerts = append(s.alerts[:i], s.alerts[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	log.Info().Uint("alert_id", id).Msg("Alert deleted")
	return nil
}

// Test fires a one-shot delivery test. No local state changes either way.
func (s *Store) Test(ctx context.Context, id uint) error {
	return s.api.TestAlert(ctx, id)
}

// apply upserts a server-returned alert into the local collection:
// replace in place when the id is present, append otherwise. Appending is
// what lets a late update response reintroduce an alert a racing delete
// already removed — completion order wins.
func (s *Store) apply(alert models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.alerts {
		if a.ID == alert.ID {
			s.alerts[i] = alert
			return
		}
	}
	s.alerts = append(s.alerts, alert)
}
