package client

import (
	"context"
	"sync"

	"github.com/NicolasHaas/badgeboard/pkg/model"
	"github.com/NicolasHaas/badgeboard/pkg/rbac"
)

// sections is a set of view sections to re-fetch.
type sections uint8

const (
	secBadges sections = 1 << iota
	secFeed
	secUsers
	secProfile
	secAccounts
)

// invalidate re-fetches the requested sections concurrently and waits for
// all of them. Sections that do not apply to the current page or session
// are skipped. Failures are recorded per section and never abort siblings.
func (c *Coordinator) invalidate(ctx context.Context, gen uint64, which sections) {
	c.mu.RLock()
	page := c.page
	sess := copySession(c.session)
	c.mu.RUnlock()
	admin := rbac.CapabilitiesOf(sess).IsAdmin

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	if which&secBadges != 0 {
		run(func() {
			_ = fetchSection(ctx, c, gen, "badges", func(v *View) *Section[model.Badge] { return &v.Badges }, c.backend.ListBadges)
		})
	}
	if which&secFeed != 0 && page.HasFeed() {
		run(func() {
			_ = fetchSection(ctx, c, gen, "feed", func(v *View) *Section[model.ActivityEntry] { return &v.Feed }, c.backend.ActivityFeed)
		})
	}
	if which&secUsers != 0 {
		run(func() {
			_ = fetchSection(ctx, c, gen, "users", func(v *View) *Section[model.User] { return &v.Users }, c.backend.ListUsers)
		})
	}
	if which&secAccounts != 0 && page.AdminOnly() && admin {
		run(func() {
			_ = fetchSection(ctx, c, gen, "accounts", func(v *View) *Section[model.Account] { return &v.Accounts }, c.backend.ListAccounts)
		})
	}
	if which&secProfile != 0 && sess != nil {
		run(func() {
			_ = c.fetchProfile(ctx, gen, sess.ID)
		})
	}
	wg.Wait()
}

// fetchSection loads one list section. On failure the section is emptied
// and marked SectionFailed.
func fetchSection[T any](
	ctx context.Context,
	c *Coordinator,
	gen uint64,
	name string,
	sel func(*View) *Section[T],
	fetch func(context.Context) ([]T, error),
) error {
	c.apply(gen, func(v *View) { sel(v).Status = SectionLoading })

	items, err := fetch(ctx)
	c.apply(gen, func(v *View) {
		if err != nil {
			*sel(v) = Section[T]{Status: SectionFailed, Err: err}
			return
		}
		*sel(v) = Section[T]{Status: SectionLoaded, Items: items}
	})
	if err != nil {
		c.metrics.sectionFailed(name)
		c.log.Warn("section fetch failed", "section", name, "err", err)
	}
	return err
}

// fetchProfile loads the session user's badges. The result is dropped if
// the session changed to someone else meanwhile.
func (c *Coordinator) fetchProfile(ctx context.Context, gen uint64, userID model.ID) error {
	c.apply(gen, func(v *View) {
		if c.session.IsSelf(userID) {
			v.Profile.Status = SectionLoading
		}
	})

	items, err := c.backend.UserBadges(ctx, userID)
	c.apply(gen, func(v *View) {
		if !c.session.IsSelf(userID) {
			return
		}
		if err != nil {
			v.Profile = Section[model.UserBadge]{Status: SectionFailed, Err: err}
			return
		}
		v.Profile = Section[model.UserBadge]{Status: SectionLoaded, Items: items}
	})
	if err != nil {
		c.metrics.sectionFailed("profile")
		c.log.Warn("section fetch failed", "section", "profile", "err", err)
	}
	return err
}
