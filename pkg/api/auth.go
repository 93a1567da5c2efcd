package api

import (
	"context"
	"fmt"

	"github.com/NicolasHaas/badgeboard/pkg/model"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for the account's identity. Bad credentials
// surface as a *model.RejectedError with status 401.
func (c *Client) Login(ctx context.Context, username, password string) (model.LoginResult, error) {
	var result model.LoginResult
	if err := c.post(ctx, "/login", loginRequest{Username: username, Password: password}, &result); err != nil {
		return model.LoginResult{}, fmt.Errorf("api: login: %w", err)
	}
	return result, nil
}

type registerResponse struct {
	UserID model.ID `json:"user_id"`
}

// Register creates an account and returns its id (which may be empty if the
// server did not report one).
func (c *Client) Register(ctx context.Context, reg model.Registration) (model.ID, error) {
	var result registerResponse
	if err := c.post(ctx, "/register", reg, &result); err != nil {
		return "", fmt.Errorf("api: register: %w", err)
	}
	return result.UserID, nil
}
