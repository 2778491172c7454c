// Package models defines the wire types shared between the API client and
// the stores. All shapes mirror the alert service's JSON contract; the
// server owns every field of Alert and HistoryEntry, the client only caches.
package models

import "time"

// AlertFrequency is the delivery cadence of an alert.
type AlertFrequency string

const (
	FrequencyRealTime AlertFrequency = "realtime"
	FrequencyHourly   AlertFrequency = "hourly"
	FrequencyDaily    AlertFrequency = "daily"
)

// Valid reports whether f is one of the frequencies the server accepts.
func (f AlertFrequency) Valid() bool {
	switch f {
	case FrequencyRealTime, FrequencyHourly, FrequencyDaily:
		return true
	}
	return false
}

// Alert is a keyword subscription as returned by the server. The ID is
// server-assigned and immutable; LastChecked is nil until the matcher has
// run the alert at least once.
type Alert struct {
	ID          uint           `json:"id"`
	Topic       string         `json:"topic"`
	Keywords    []string       `json:"keywords"`
	Frequency   AlertFrequency `json:"frequency"`
	Active      bool           `json:"active"`
	LastChecked *time.Time     `json:"last_checked"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// AlertCreateRequest is the body for POST /alerts. Active is deliberately
// absent: whether the server accepts it on create is server-defined, so the
// client never sends it and lets the server default apply.
type AlertCreateRequest struct {
	Topic     string         `json:"topic"`
	Keywords  []string       `json:"keywords"`
	Frequency AlertFrequency `json:"frequency"`
}

// AlertUpdateRequest is the body for PUT /alerts/{id}. All fields are
// optional; nil fields are omitted and left untouched server-side.
type AlertUpdateRequest struct {
	Topic     *string         `json:"topic,omitempty"`
	Keywords  *[]string       `json:"keywords,omitempty"`
	Frequency *AlertFrequency `json:"frequency,omitempty"`
	Active    *bool           `json:"active,omitempty"`
}

// TestAlertRequest is the body for POST /alerts/test.
type TestAlertRequest struct {
	AlertID uint `json:"alert_id"`
}

// HistoryEntry is one delivery attempt from GET /alerts/history. Read-only
// on the client; ErrorMsg is empty for successful deliveries.
type HistoryEntry struct {
	ID         uint      `json:"id"`
	AlertID    uint      `json:"alert_id"`
	NewsTitle  string    `json:"news_title"`
	NewsURL    string    `json:"news_url"`
	NewsSource string    `json:"news_source"`
	SentAt     time.Time `json:"sent_at"`
	Success    bool      `json:"success"`
	ErrorMsg   string    `json:"error_msg"`
}
