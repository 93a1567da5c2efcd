package client

import (
	"context"
	"fmt"
	"io"

	"github.com/NicolasHaas/badgeboard/pkg/model"
	"github.com/NicolasHaas/badgeboard/pkg/rbac"
)

// Image is an optional icon uploaded before a badge is created.
type Image struct {
	Name string // original file name, used to derive the stored name
	Data io.Reader
}

// Login authenticates, persists the session and loads the user's badges.
// The in-memory session only changes after the persisted one has.
func (c *Coordinator) Login(ctx context.Context, username, password string) (*model.Session, error) {
	if err := model.ValidateUsername(username); err != nil {
		return nil, c.fail(err)
	}
	if password == "" {
		return nil, c.fail(model.ErrPasswordEmpty)
	}

	gen, err := c.begin()
	if err != nil {
		return nil, err
	}
	defer c.end()

	res, err := c.backend.Login(ctx, username, password)
	if err != nil {
		return nil, c.fail(err)
	}
	sess, err := res.Session()
	if err != nil {
		return nil, c.fail(&model.DecodeError{Source: "POST /login", Err: err})
	}
	if err := c.sessions.Save(sess); err != nil {
		return nil, c.fail(fmt.Errorf("client: persist session: %w", err))
	}
	if !c.swapSession(gen, &sess) {
		return nil, ErrClosed
	}
	c.log.Info("logged in", "user", sess.Username, "role", sess.Role)

	c.invalidate(ctx, gen, secProfile)
	return copySession(&sess), nil
}

// Logout clears the persisted and in-memory session.
func (c *Coordinator) Logout() error {
	gen, err := c.begin()
	if err != nil {
		return err
	}
	defer c.end()

	if err := c.sessions.Clear(); err != nil {
		return c.fail(fmt.Errorf("client: clear session: %w", err))
	}
	if !c.swapSession(gen, nil) {
		return ErrClosed
	}
	c.log.Info("logged out")
	return nil
}

// Register creates an account. It does not log in.
func (c *Coordinator) Register(ctx context.Context, reg model.Registration) (model.ID, error) {
	if err := reg.Validate(); err != nil {
		return "", c.fail(err)
	}
	if _, err := c.begin(); err != nil {
		return "", err
	}
	defer c.end()

	id, err := c.backend.Register(ctx, reg)
	if err != nil {
		return "", c.fail(err)
	}
	c.notice(NoticeInfo, "Registration successful! Please log in.")
	return id, nil
}

// Award grants badgeID to targetUserID on behalf of the session user.
// Awarding yourself is refused locally without contacting the server.
func (c *Coordinator) Award(ctx context.Context, targetUserID, badgeID model.ID) error {
	sess := c.Session()
	if err := rbac.Require(sess, rbac.PermAwardBadge); err != nil {
		return c.fail(err)
	}
	req := model.AwardRequest{UserID: targetUserID, BadgeID: badgeID, AwardedBy: sess.ID}
	if err := req.Validate(); err != nil {
		return c.fail(err)
	}

	gen, err := c.begin()
	if err != nil {
		return err
	}
	defer c.end()

	if err := c.backend.AwardBadge(ctx, req); err != nil {
		return c.fail(err)
	}
	c.notice(NoticeInfo, "Badge awarded successfully!")

	// the recipient is never the session user, so only the feed moves
	c.invalidate(ctx, gen, secFeed)
	return nil
}

// RemoveAward revokes every award of badgeID held by userID. An empty
// userID means the session user.
func (c *Coordinator) RemoveAward(ctx context.Context, userID, badgeID model.ID) error {
	sess := c.Session()
	if err := rbac.Require(sess, rbac.PermRemoveAward); err != nil {
		return c.fail(err)
	}
	if userID == "" {
		userID = sess.ID
	}
	req := model.RemoveRequest{UserID: userID, BadgeID: badgeID}
	if err := req.Validate(); err != nil {
		return c.fail(err)
	}

	gen, err := c.begin()
	if err != nil {
		return err
	}
	defer c.end()

	if err := c.backend.RemoveBadge(ctx, req); err != nil {
		return c.fail(err)
	}

	which := secBadges
	if sess.IsSelf(userID) {
		which |= secProfile
	}
	c.invalidate(ctx, gen, which)
	return nil
}

// CreateBadge creates a badge, uploading img first when given. A failed
// upload is reported and the badge is created without an icon.
func (c *Coordinator) CreateBadge(ctx context.Context, in model.BadgeInput, img *Image) (model.Badge, error) {
	if err := rbac.Require(c.Session(), rbac.PermCreateBadge); err != nil {
		return model.Badge{}, c.fail(err)
	}
	if err := in.ValidateCreate(); err != nil {
		return model.Badge{}, c.fail(err)
	}

	gen, err := c.begin()
	if err != nil {
		return model.Badge{}, err
	}
	defer c.end()

	if img != nil && img.Data != nil {
		filename := model.IconFilename(img.Name, c.now())
		res, err := c.backend.UploadBadgeImage(ctx, filename, img.Data)
		if err != nil {
			c.log.Warn("image upload failed, proceeding without image", "file", filename, "err", err)
			c.notice(NoticeError, "Image upload failed, the badge will be created without an image.")
			in.Icon = ""
		} else {
			in.Icon = res.Filename
		}
	}

	badge, err := c.backend.CreateBadge(ctx, in)
	if err != nil {
		return model.Badge{}, c.fail(err)
	}
	c.notice(NoticeInfo, "Badge created successfully!")

	c.invalidate(ctx, gen, secBadges)
	return badge, nil
}

// UpdateBadge edits a badge. Admin only.
func (c *Coordinator) UpdateBadge(ctx context.Context, id model.ID, in model.BadgeInput) error {
	if err := rbac.Require(c.Session(), rbac.PermEditBadge); err != nil {
		return c.fail(err)
	}
	if id == "" {
		return c.fail(model.ErrBadgeIDEmpty)
	}
	if err := in.ValidateUpdate(); err != nil {
		return c.fail(err)
	}

	gen, err := c.begin()
	if err != nil {
		return err
	}
	defer c.end()

	if err := c.backend.UpdateBadge(ctx, id, in); err != nil {
		return c.fail(err)
	}
	c.notice(NoticeInfo, "Badge updated successfully!")

	c.invalidate(ctx, gen, secBadges|secProfile)
	return nil
}

// DeleteBadge removes a badge definition. Admin only.
func (c *Coordinator) DeleteBadge(ctx context.Context, id model.ID) error {
	if err := rbac.Require(c.Session(), rbac.PermDeleteBadge); err != nil {
		return c.fail(err)
	}
	if id == "" {
		return c.fail(model.ErrBadgeIDEmpty)
	}

	gen, err := c.begin()
	if err != nil {
		return err
	}
	defer c.end()

	if err := c.backend.DeleteBadge(ctx, id); err != nil {
		return c.fail(err)
	}
	c.notice(NoticeInfo, "Badge deleted successfully!")

	c.invalidate(ctx, gen, secBadges|secProfile)
	return nil
}

// ResetPassword sets a new password on an account. Admin only.
func (c *Coordinator) ResetPassword(ctx context.Context, userID model.ID, password string) error {
	if err := rbac.Require(c.Session(), rbac.PermManageAccounts); err != nil {
		return c.fail(err)
	}
	if userID == "" {
		return c.fail(model.ErrUserIDEmpty)
	}
	if password == "" {
		return c.fail(model.ErrPasswordEmpty)
	}

	if _, err := c.begin(); err != nil {
		return err
	}
	defer c.end()

	if err := c.backend.ResetPassword(ctx, userID, password); err != nil {
		return c.fail(err)
	}
	c.notice(NoticeInfo, "Password updated successfully")
	return nil
}

// DeleteAccount removes an account. Admin only; the server refuses to
// delete administrators.
func (c *Coordinator) DeleteAccount(ctx context.Context, userID model.ID) error {
	if err := rbac.Require(c.Session(), rbac.PermManageAccounts); err != nil {
		return c.fail(err)
	}
	if userID == "" {
		return c.fail(model.ErrUserIDEmpty)
	}

	gen, err := c.begin()
	if err != nil {
		return err
	}
	defer c.end()

	if err := c.backend.DeleteAccount(ctx, userID); err != nil {
		return c.fail(err)
	}
	c.notice(NoticeInfo, "User removed successfully")

	c.invalidate(ctx, gen, secAccounts|secUsers)
	return nil
}

// Refresh re-fetches every section that applies to the page and session.
func (c *Coordinator) Refresh(ctx context.Context) error {
	gen, err := c.begin()
	if err != nil {
		return err
	}
	defer c.end()

	c.invalidate(ctx, gen, secBadges|secFeed|secUsers|secAccounts|secProfile)
	return nil
}

// BadgeDetails fetches a badge with its holders. It does not touch the view.
func (c *Coordinator) BadgeDetails(ctx context.Context, id model.ID) (model.BadgeDetails, error) {
	if id == "" {
		return model.BadgeDetails{}, c.fail(model.ErrBadgeIDEmpty)
	}
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return model.BadgeDetails{}, ErrClosed
	}

	details, err := c.backend.BadgeDetails(ctx, id)
	if err != nil {
		return model.BadgeDetails{}, c.fail(err)
	}
	return details, nil
}
