package api

import (
	"context"
	"fmt"
	"net/url"

	"github.com/NicolasHaas/badgeboard/pkg/model"
)

// ListUsers returns the public user directory.
func (c *Client) ListUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := c.get(ctx, "/users", &users); err != nil {
		return nil, fmt.Errorf("api: list users: %w", err)
	}
	return users, nil
}

// UserBadges returns the badges held by a user, each with the per-user count.
func (c *Client) UserBadges(ctx context.Context, userID model.ID) ([]model.UserBadge, error) {
	var badges []model.UserBadge
	if err := c.get(ctx, "/users/"+url.PathEscape(userID.String())+"/badges", &badges); err != nil {
		return nil, fmt.Errorf("api: user badges: %w", err)
	}
	return badges, nil
}

// ActivityFeed returns the most recent awards, newest first.
func (c *Client) ActivityFeed(ctx context.Context) ([]model.ActivityEntry, error) {
	var feed []model.ActivityEntry
	if err := c.get(ctx, "/activity-feed", &feed); err != nil {
		return nil, fmt.Errorf("api: activity feed: %w", err)
	}
	return feed, nil
}
