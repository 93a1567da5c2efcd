package client

import (
	"github.com/NicolasHaas/badgeboard/pkg/model"
)

// HandleEvent folds a realtime event into the view. The result matches what
// re-fetching the affected sections would show, without a round-trip.
func (c *Coordinator) HandleEvent(ev model.RealtimeEvent) {
	gen, err := c.begin()
	if err != nil {
		return
	}
	defer c.end()

	applied := c.apply(gen, func(v *View) {
		switch e := ev.(type) {
		case model.BadgeAwarded:
			c.applyAwardedLocked(v, e)
		case model.BadgeRemoved:
			c.applyRemovedLocked(v, e)
		}
	})
	if !applied {
		return
	}
	c.metrics.eventApplied(ev.Type())
	c.log.Debug("realtime event applied", "type", ev.Type())
	if c.OnEventApplied != nil {
		c.OnEventApplied(ev)
	}
}

func (c *Coordinator) applyAwardedLocked(v *View, e model.BadgeAwarded) {
	if c.page.HasFeed() {
		name := e.RecipientName
		if name == "" {
			name = userName(v.Users.Items, e.RecipientUserID)
		}
		date := e.AwardedAt
		if date == "" {
			date = model.FormatAwardDate(c.now())
		}
		v.Feed.Items = model.PrependActivity(v.Feed.Items,
			model.ActivityEntry{User: name, Badge: e.Badge.Name, Date: date}, model.FeedLimit)
	}

	if i := indexBadge(v.Badges.Items, e.Badge.ID); i >= 0 {
		v.Badges.Items[i].Count++
	}

	if !c.session.IsSelf(e.RecipientUserID) {
		return
	}
	if i := indexUserBadge(v.Profile.Items, e.Badge.ID); i >= 0 {
		v.Profile.Items[i].Count++
		return
	}
	card := e.Badge
	if i := indexBadge(v.Badges.Items, e.Badge.ID); i >= 0 {
		card = v.Badges.Items[i]
	}
	card.Count = 1
	v.Profile.Items = append(v.Profile.Items, model.UserBadge{Badge: card})
}

func (c *Coordinator) applyRemovedLocked(v *View, e model.BadgeRemoved) {
	if !c.session.IsSelf(e.UserID) {
		if e.Count > 0 {
			decrementCount(v.Badges.Items, e.BadgeID, e.Count)
		}
		return
	}

	i := indexUserBadge(v.Profile.Items, e.BadgeID)
	if i < 0 {
		return
	}
	n := max(v.Profile.Items[i].Count, 1)
	v.Profile.Items = append(v.Profile.Items[:i:i], v.Profile.Items[i+1:]...)
	decrementCount(v.Badges.Items, e.BadgeID, n)
}
