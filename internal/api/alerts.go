package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ihwang125/NewsToText/internal/models"
)

// ListAlerts fetches the caller's full alert collection.
func (c *Client) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	var alerts []models.Alert
	if err := c.do(ctx, http.MethodGet, "/alerts", nil, &alerts, "Failed to fetch alerts"); err != nil {
		return nil, err
	}
	return alerts, nil
}

// CreateAlert creates an alert and returns it with its server-assigned id.
func (c *Client) CreateAlert(ctx context.Context, req models.AlertCreateRequest) (*models.Alert, error) {
	var alert models.Alert
	if err := c.do(ctx, http.MethodPost, "/alerts", req, &alert, "Failed to create alert"); err != nil {
		return nil, err
	}
	return &alert, nil
}

// UpdateAlert applies a partial update and returns the server's
// authoritative post-update alert.
func (c *Client) UpdateAlert(ctx context.Context, id uint, req models.AlertUpdateRequest) (*models.Alert, error) {
	var alert models.Alert
	path := fmt.Sprintf("/alerts/%d", id)
	if err := c.do(ctx, http.MethodPut, path, req, &alert, "Failed to update alert"); err != nil {
		return nil, err
	}
	return &alert, nil
}

// DeleteAlert deletes the alert with the given id.
func (c *Client) DeleteAlert(ctx context.Context, id uint) error {
	path := fmt.Sprintf("/alerts/%d", id)
	return c.do(ctx, http.MethodDelete, path, nil, nil, "Failed to delete alert")
}

// AlertHistory fetches the full delivery history.
func (c *Client) AlertHistory(ctx context.Context) ([]models.HistoryEntry, error) {
	var history []models.HistoryEntry
	if err := c.do(ctx, http.MethodGet, "/alerts/history", nil, &history, "Failed to fetch alert history"); err != nil {
		return nil, err
	}
	return history, nil
}

// TestAlert fires a one-shot delivery test for the alert. No local state
// is touched; success or failure is the whole result.
func (c *Client) TestAlert(ctx context.Context, id uint) error {
	req := models.TestAlertRequest{AlertID: id}
	return c.do(ctx, http.MethodPost, "/alerts/test", req, nil, "Failed to send test alert")
}
