package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/NicolasHaas/badgeboard/pkg/model"
)

// ListBadges returns every badge with its total award count.
func (c *Client) ListBadges(ctx context.Context) ([]model.Badge, error) {
	var badges []model.Badge
	if err := c.get(ctx, "/badges", &badges); err != nil {
		return nil, fmt.Errorf("api: list badges: %w", err)
	}
	return badges, nil
}

// CreateBadge creates a badge and returns it with its assigned id.
func (c *Client) CreateBadge(ctx context.Context, in model.BadgeInput) (model.Badge, error) {
	var badge model.Badge
	if err := c.post(ctx, "/badges", in, &badge); err != nil {
		return model.Badge{}, fmt.Errorf("api: create badge: %w", err)
	}
	return badge, nil
}

// UpdateBadge replaces a badge's name, description and icon.
func (c *Client) UpdateBadge(ctx context.Context, id model.ID, in model.BadgeInput) error {
	if err := c.put(ctx, "/badges/"+url.PathEscape(id.String()), in, nil); err != nil {
		return fmt.Errorf("api: update badge: %w", err)
	}
	return nil
}

// DeleteBadge removes a badge definition.
func (c *Client) DeleteBadge(ctx context.Context, id model.ID) error {
	if err := c.delete(ctx, "/badges/"+url.PathEscape(id.String())); err != nil {
		return fmt.Errorf("api: delete badge: %w", err)
	}
	return nil
}

// AwardBadge records one award. The server refuses self-awards with 400.
func (c *Client) AwardBadge(ctx context.Context, req model.AwardRequest) error {
	if err := c.post(ctx, "/badges/award", req, nil); err != nil {
		return fmt.Errorf("api: award badge: %w", err)
	}
	return nil
}

// RemoveBadge revokes every award of a badge held by a user.
func (c *Client) RemoveBadge(ctx context.Context, req model.RemoveRequest) error {
	if err := c.post(ctx, "/badges/remove", req, nil); err != nil {
		return fmt.Errorf("api: remove badge: %w", err)
	}
	return nil
}

// BadgeDetails returns a badge with the users holding it. An unknown id is a
// *model.RejectedError with status 404.
func (c *Client) BadgeDetails(ctx context.Context, id model.ID) (model.BadgeDetails, error) {
	var details model.BadgeDetails
	if err := c.get(ctx, "/badge-details-api/"+url.PathEscape(id.String()), &details); err != nil {
		return model.BadgeDetails{}, fmt.Errorf("api: badge details: %w", err)
	}
	return details, nil
}

// UploadResult is the body of a successful image upload.
type UploadResult struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// UploadBadgeImage stores an icon under filename and returns the name the
// server actually used.
func (c *Client) UploadBadgeImage(ctx context.Context, filename string, image io.Reader) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return UploadResult{}, fmt.Errorf("api: upload badge image: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return UploadResult{}, fmt.Errorf("api: upload badge image: read image: %w", err)
	}
	if err := mw.WriteField("filename", filename); err != nil {
		return UploadResult{}, fmt.Errorf("api: upload badge image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("api: upload badge image: %w", err)
	}

	var result UploadResult
	if err := c.do(ctx, http.MethodPost, "/upload/badge-image", mw.FormDataContentType(), &buf, &result); err != nil {
		return UploadResult{}, fmt.Errorf("api: upload badge image: %w", err)
	}
	return result, nil
}
