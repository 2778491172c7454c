// Package testutil provides common testing utilities, fixtures, and helpers
// for use across all test files in the NewsToText client.
package testutil

import (
	"time"

	"github.com/ihwang125/NewsToText/internal/models"
)

// TestUser creates a test user with default values
func TestUser() *models.User {
	return &models.User{
		ID:    42,
		Email: "test@example.com",
	}
}

// TestToken is an opaque bearer credential for tests
const TestToken = "test-token-abc123"

// TestAlert creates a test alert with default values
func TestAlert(id uint) models.Alert {
	return models.Alert{
		ID:        id,
		Topic:     "Technology",
		Keywords:  []string{"ai", "ml"},
		Frequency: models.FrequencyDaily,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// TestAlertWithTopic creates a test alert with a specific topic
func TestAlertWithTopic(id uint, topic string) models.Alert {
	alert := TestAlert(id)
	alert.Topic = topic
	return alert
}

// TestHistoryEntry creates a delivery history entry with default values
func TestHistoryEntry(id uint) models.HistoryEntry {
	return models.HistoryEntry{
		ID:         id,
		AlertID:    1,
		NewsTitle:  "AI breakthrough announced",
		NewsURL:    "https://news.example.com/ai-breakthrough",
		NewsSource: "Example News",
		SentAt:     time.Now(),
		Success:    true,
	}
}

// TimePtr returns a pointer to the given time
func TimePtr(t time.Time) *time.Time {
	return &t
}

// StringPtr returns a pointer to the given string
func StringPtr(s string) *string {
	return &s
}

// BoolPtr returns a pointer to the given bool
func BoolPtr(b bool) *bool {
	return &b
}
