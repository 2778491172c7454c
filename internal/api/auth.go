package api

import (
	"context"
	"net/http"

	"github.com/ihwang125/NewsToText/internal/models"
)

// Register creates a new account and returns the session payload.
func (c *Client) Register(ctx context.Context, req models.UserCreateRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp, "Failed to register"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for a session payload.
func (c *Client) Login(ctx context.Context, req models.UserLoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp, "Failed to log in"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the current token server-side. The caller is
// responsible for clearing the local session afterwards.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, "Failed to log out")
}
