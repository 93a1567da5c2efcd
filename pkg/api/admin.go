package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/NicolasHaas/badgeboard/pkg/model"
)

// ListAccounts returns every account with email and role. Admin only.
func (c *Client) ListAccounts(ctx context.Context) ([]model.Account, error) {
	var accounts []model.Account
	if err := c.get(ctx, "/admin/users", &accounts); err != nil {
		return nil, fmt.Errorf("api: list accounts: %w", err)
	}
	return accounts, nil
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// ResetPassword sets a new password on an account.
func (c *Client) ResetPassword(ctx context.Context, userID model.ID, password string) error {
	path := "/admin/users/" + url.PathEscape(userID.String()) + "/reset-password"
	if err := c.post(ctx, path, resetPasswordRequest{Password: password}, nil); err != nil {
		return fmt.Errorf("api: reset password: %w", err)
	}
	return nil
}

// DeleteAccount removes an account. The server refuses to delete admins.
func (c *Client) DeleteAccount(ctx context.Context, userID model.ID) error {
	if err := c.delete(ctx, "/admin/users/"+url.PathEscape(userID.String())); err != nil {
		return fmt.Errorf("api: delete account: %w", err)
	}
	return nil
}
