package client

import (
	"slices"

	"github.com/NicolasHaas/badgeboard/pkg/model"
	"github.com/NicolasHaas/badgeboard/pkg/rbac"
)

// Section is one independently loaded part of the view. A failed section
// keeps no items and records the error.
type Section[T any] struct {
	Status SectionStatus
	Items  []T
	Err    error
}

func (s Section[T]) clone() Section[T] {
	s.Items = slices.Clone(s.Items)
	return s
}

// View is a point-in-time copy of everything the coordinator renders.
// Callers own the returned value.
type View struct {
	Page     Page
	Session  *model.Session
	Badges   Section[model.Badge]
	Feed     Section[model.ActivityEntry]
	Users    Section[model.User]
	Profile  Section[model.UserBadge]
	Accounts Section[model.Account]

	// Unawarded is every badge the session user does not hold yet.
	Unawarded []model.Badge
}

// IsAdmin reports whether the view belongs to an admin session.
func (v View) IsAdmin() bool {
	return rbac.CapabilitiesOf(v.Session).IsAdmin
}

func (v View) clone() View {
	out := v
	if v.Session != nil {
		s := *v.Session
		out.Session = &s
	}
	out.Badges = v.Badges.clone()
	out.Feed = v.Feed.clone()
	out.Users = v.Users.clone()
	out.Profile = v.Profile.clone()
	out.Accounts = v.Accounts.clone()
	out.Unawarded = slices.Clone(v.Unawarded)
	return out
}

func indexBadge(items []model.Badge, id model.ID) int {
	return slices.IndexFunc(items, func(b model.Badge) bool { return b.ID == id })
}

func indexUserBadge(items []model.UserBadge, id model.ID) int {
	return slices.IndexFunc(items, func(b model.UserBadge) bool { return b.ID == id })
}

// decrementCount lowers a badge's award count by n without going negative.
func decrementCount(items []model.Badge, id model.ID, n int) {
	if i := indexBadge(items, id); i >= 0 {
		items[i].Count = max(items[i].Count-n, 0)
	}
}

func userName(users []model.User, id model.ID) string {
	if i := slices.IndexFunc(users, func(u model.User) bool { return u.ID == id }); i >= 0 {
		return users[i].Username
	}
	return id.String()
}
