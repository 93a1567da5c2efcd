package client

import (
	"context"
	"io"
	"slices"
	"sync"

	"github.com/NicolasHaas/badgeboard/pkg/api"
	"github.com/NicolasHaas/badgeboard/pkg/model"
)

// fakeBackend is an in-memory Backend that records every call.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	login      model.LoginResult
	loginErr   error
	badges     []model.Badge
	badgesErr  error
	feed       []model.ActivityEntry
	feedErr    error
	users      []model.User
	usersErr   error
	accounts   []model.Account
	userBadges map[model.ID][]model.UserBadge
	created    model.Badge
	mutateErr  error
	uploadErr  error

	lastLogin  string
	lastCreate model.BadgeInput
	lastUpload string
	lastAward  model.AwardRequest
	lastRemove model.RemoveRequest
	badgeUsers []model.ID

	// badgesGate and userBadgesGate, when set, block ListBadges and
	// UserBadges until they are closed.
	badgesGate     chan struct{}
	userBadgesGate chan struct{}
}

var _ Backend = (*fakeBackend)(nil)

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeBackend) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) set(fn func(f *fakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

func (f *fakeBackend) Login(_ context.Context, username, _ string) (model.LoginResult, error) {
	f.record("Login")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLogin = username
	return f.login, f.loginErr
}

func (f *fakeBackend) Register(_ context.Context, _ model.Registration) (model.ID, error) {
	f.record("Register")
	f.mu.Lock()
	defer f.mu.Unlock()
	return "new", f.mutateErr
}

func (f *fakeBackend) ListBadges(ctx context.Context) ([]model.Badge, error) {
	f.record("ListBadges")
	f.mu.Lock()
	gate := f.badgesGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &model.NetworkError{Op: "GET /badges", Err: ctx.Err()}
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.badges), f.badgesErr
}

func (f *fakeBackend) CreateBadge(_ context.Context, in model.BadgeInput) (model.Badge, error) {
	f.record("CreateBadge")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCreate = in
	return f.created, f.mutateErr
}

func (f *fakeBackend) UpdateBadge(_ context.Context, _ model.ID, _ model.BadgeInput) error {
	f.record("UpdateBadge")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutateErr
}

func (f *fakeBackend) DeleteBadge(_ context.Context, _ model.ID) error {
	f.record("DeleteBadge")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutateErr
}

func (f *fakeBackend) AwardBadge(_ context.Context, req model.AwardRequest) error {
	f.record("AwardBadge")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastAward = req
	return f.mutateErr
}

func (f *fakeBackend) RemoveBadge(_ context.Context, req model.RemoveRequest) error {
	f.record("RemoveBadge")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastRemove = req
	return f.mutateErr
}

func (f *fakeBackend) BadgeDetails(_ context.Context, id model.ID) (model.BadgeDetails, error) {
	f.record("BadgeDetails")
	return model.BadgeDetails{Badge: model.Badge{ID: id}}, nil
}

func (f *fakeBackend) UploadBadgeImage(_ context.Context, filename string, image io.Reader) (api.UploadResult, error) {
	f.record("UploadBadgeImage")
	data, _ := io.ReadAll(image)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpload = filename
	if f.uploadErr != nil {
		return api.UploadResult{}, f.uploadErr
	}
	return api.UploadResult{Filename: filename, Size: int64(len(data))}, nil
}

func (f *fakeBackend) ListUsers(_ context.Context) ([]model.User, error) {
	f.record("ListUsers")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.users), f.usersErr
}

func (f *fakeBackend) UserBadges(ctx context.Context, userID model.ID) ([]model.UserBadge, error) {
	f.record("UserBadges")
	f.mu.Lock()
	f.badgeUsers = append(f.badgeUsers, userID)
	gate := f.userBadgesGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, &model.NetworkError{Op: "GET /users/" + string(userID) + "/badges", Err: ctx.Err()}
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.userBadges[userID]), nil
}

func (f *fakeBackend) ActivityFeed(_ context.Context) ([]model.ActivityEntry, error) {
	f.record("ActivityFeed")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.feed), f.feedErr
}

func (f *fakeBackend) ListAccounts(_ context.Context) ([]model.Account, error) {
	f.record("ListAccounts")
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.accounts), nil
}

func (f *fakeBackend) ResetPassword(_ context.Context, _ model.ID, _ string) error {
	f.record("ResetPassword")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutateErr
}

func (f *fakeBackend) DeleteAccount(_ context.Context, _ model.ID) error {
	f.record("DeleteAccount")
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mutateErr
}
