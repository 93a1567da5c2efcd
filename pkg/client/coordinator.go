// Package client implements the badgeboard session and sync coordinator.
//
// A Coordinator owns the current session and a View of server data. It
// hydrates the view on Start, re-fetches only the sections an action
// affects, and folds realtime events into the view without a round-trip.
package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/NicolasHaas/badgeboard/pkg/api"
	"github.com/NicolasHaas/badgeboard/pkg/model"
	"github.com/NicolasHaas/badgeboard/pkg/rbac"
	"github.com/NicolasHaas/badgeboard/pkg/realtime"
)

var (
	ErrClosed         = errors.New("client: coordinator closed")
	ErrAlreadyStarted = errors.New("client: coordinator already started")
)

// Backend is the server API the coordinator drives. *api.Client implements it.
type Backend interface {
	Login(ctx context.Context, username, password string) (model.LoginResult, error)
	Register(ctx context.Context, reg model.Registration) (model.ID, error)

	ListBadges(ctx context.Context) ([]model.Badge, error)
	CreateBadge(ctx context.Context, in model.BadgeInput) (model.Badge, error)
	UpdateBadge(ctx context.Context, id model.ID, in model.BadgeInput) error
	DeleteBadge(ctx context.Context, id model.ID) error
	AwardBadge(ctx context.Context, req model.AwardRequest) error
	RemoveBadge(ctx context.Context, req model.RemoveRequest) error
	BadgeDetails(ctx context.Context, id model.ID) (model.BadgeDetails, error)
	UploadBadgeImage(ctx context.Context, filename string, image io.Reader) (api.UploadResult, error)

	ListUsers(ctx context.Context) ([]model.User, error)
	UserBadges(ctx context.Context, userID model.ID) ([]model.UserBadge, error)
	ActivityFeed(ctx context.Context) ([]model.ActivityEntry, error)

	ListAccounts(ctx context.Context) ([]model.Account, error)
	ResetPassword(ctx context.Context, userID model.ID, password string) error
	DeleteAccount(ctx context.Context, userID model.ID) error
}

// SessionPersister stores the session between runs. *store.SessionStore
// implements it.
type SessionPersister interface {
	Load() (*model.Session, error)
	Save(s model.Session) error
	Clear() error
}

// EventSource delivers realtime events. *realtime.Channel implements it.
type EventSource interface {
	OnEvent(h realtime.Handler)
}

var (
	_ Backend     = (*api.Client)(nil)
	_ EventSource = (*realtime.Channel)(nil)
)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPage selects the page being served. Default PageHome.
func WithPage(p Page) Option {
	return func(c *Coordinator) {
		c.page = p
	}
}

// WithMetrics records coordinator telemetry.
func WithMetrics(m *Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// WithLogger overrides the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

// WithClock overrides time.Now, used for icon filenames and event dates.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// Coordinator keeps the session, the view and the server in step.
//
// The On* callbacks must be set before Start. They run on whichever
// goroutine caused the change and must not call back into the coordinator
// while holding their own locks.
type Coordinator struct {
	backend  Backend
	sessions SessionPersister
	metrics  *Metrics
	log      *slog.Logger
	now      func() time.Time

	mu       sync.RWMutex
	state    State
	page     Page
	session  *model.Session
	view     View
	inflight int
	gen      uint64
	closed   bool

	// sessionVer counts session swaps. Start uses it to notice a login
	// or logout that finished while the persisted session was loading.
	sessionVer uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Callbacks for UI updates
	OnStateChange   func(state State)
	OnViewChange    func(view View)
	OnNotice        func(n Notice)
	OnRedirect      func(to Page)
	OnSessionChange func(s *model.Session)
	OnEventApplied  func(ev model.RealtimeEvent)
}

// NewCoordinator creates a coordinator in StateUninitialized.
func NewCoordinator(backend Backend, sessions SessionPersister, opts ...Option) *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		backend:  backend,
		sessions: sessions,
		log:      slog.Default().With("component", "coordinator"),
		now:      time.Now,
		state:    StateUninitialized,
		page:     PageHome,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.metrics.coordinatorState(StateUninitialized)
	return c
}

// Start hydrates the coordinator: it restores the persisted session, gates
// admin-only pages, then loads every section concurrently. Each section
// fails on its own; Start reaches Ready regardless. The session user's
// badges load in the background and do not delay Ready.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != StateUninitialized {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	c.state = StateHydrating
	gen := c.gen
	ver := c.sessionVer
	c.mu.Unlock()
	c.notifyState(StateHydrating)

	sess := c.loadSession()

	c.mu.Lock()
	restored := c.sessionVer == ver
	if restored {
		c.session = sess
	} else {
		sess = copySession(c.session)
		c.log.Debug("session changed while loading, keeping the newer one")
	}
	redirect := false
	if c.page.AdminOnly() && rbac.RequireAdmin(sess) != nil {
		c.page = PageHome
		redirect = true
	}
	// a session installed by Login already fetched its own profile
	background := restored && sess != nil && !c.closed
	if background {
		c.view.Profile.Status = SectionLoading
		c.wg.Add(1)
	}
	c.mu.Unlock()

	if restored && sess != nil && c.OnSessionChange != nil {
		s := *sess
		c.OnSessionChange(&s)
	}
	if redirect {
		c.log.Info("admin page requires an admin session, redirecting", "to", PageHome)
		if c.OnRedirect != nil {
			c.OnRedirect(PageHome)
		}
	}

	if background {
		userID := sess.ID
		go func() {
			defer c.wg.Done()
			_ = c.fetchProfile(c.ctx, gen, userID)
		}()
	}

	c.invalidate(ctx, gen, secBadges|secFeed|secUsers|secAccounts)

	c.mu.Lock()
	next := c.state
	if !c.closed && c.state == StateHydrating {
		next = StateReady
		if c.inflight > 0 {
			next = StateRefreshing
		}
		c.state = next
	}
	c.mu.Unlock()
	if next != StateHydrating {
		c.notifyState(next)
	}
	c.log.Info("coordinator ready", "page", c.Page(), "logged_in", sess != nil)
	return nil
}

func (c *Coordinator) loadSession() *model.Session {
	sess, err := c.sessions.Load()
	if err == nil {
		return sess
	}
	if errors.Is(err, model.ErrDeserialization) {
		c.log.Warn("persisted session was malformed and has been cleared", "err", err)
		c.notice(NoticeError, "Your saved login could not be read. Please log in again.")
	} else {
		c.log.Error("failed to load persisted session", "err", err)
		c.notice(NoticeError, "Your saved login could not be loaded. Please log in again.")
	}
	return nil
}

// Close discards completions still in flight and waits for background work.
// It is idempotent.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.gen++
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// Attach routes src's events into HandleEvent, replacing any handler src had.
func (c *Coordinator) Attach(src EventSource) {
	src.OnEvent(c.HandleEvent)
}

// State returns the lifecycle state.
func (c *Coordinator) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Page returns the page being served, after any redirect.
func (c *Coordinator) Page() Page {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.page
}

// Session returns a copy of the current session, or nil when logged out.
func (c *Coordinator) Session() *model.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copySession(c.session)
}

// Capabilities returns what the current session may do.
func (c *Coordinator) Capabilities() rbac.Capabilities {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return rbac.CapabilitiesOf(c.session)
}

// View returns a snapshot of the current view.
func (c *Coordinator) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() View {
	v := c.view.clone()
	v.Page = c.page
	v.Session = copySession(c.session)
	return v
}

func copySession(s *model.Session) *model.Session {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// begin marks an operation in flight, moving Ready to Refreshing.
func (c *Coordinator) begin() (uint64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}
	c.inflight++
	changed := c.state == StateReady
	if changed {
		c.state = StateRefreshing
	}
	gen := c.gen
	c.mu.Unlock()

	if changed {
		c.notifyState(StateRefreshing)
	}
	return gen, nil
}

// end settles an operation started with begin.
func (c *Coordinator) end() {
	c.mu.Lock()
	c.inflight--
	changed := c.inflight == 0 && c.state == StateRefreshing && !c.closed
	if changed {
		c.state = StateReady
	}
	c.mu.Unlock()

	if changed {
		c.notifyState(StateReady)
	}
}

// apply mutates the view under the lock and publishes the result. It is a
// no-op once the coordinator is closed or gen is stale.
func (c *Coordinator) apply(gen uint64, fn func(v *View)) bool {
	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		return false
	}
	fn(&c.view)
	c.recomputeUnawardedLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.OnViewChange != nil {
		c.OnViewChange(snap)
	}
	return true
}

func (c *Coordinator) recomputeUnawardedLocked() {
	if c.session == nil {
		c.view.Unawarded = nil
		return
	}
	c.view.Unawarded = model.Unawarded(c.view.Badges.Items, c.view.Profile.Items)
}

// swapSession installs s as the in-memory session. Callers persist first.
// Leaving an admin session on an admin-only page redirects home.
func (c *Coordinator) swapSession(gen uint64, s *model.Session) bool {
	c.mu.Lock()
	if c.closed || c.gen != gen {
		c.mu.Unlock()
		return false
	}
	c.session = copySession(s)
	c.sessionVer++
	if s == nil {
		c.view.Profile = Section[model.UserBadge]{}
	}
	redirect := false
	if c.page.AdminOnly() && rbac.RequireAdmin(s) != nil {
		c.page = PageHome
		c.view.Accounts = Section[model.Account]{}
		redirect = true
	}
	c.recomputeUnawardedLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.OnSessionChange != nil {
		c.OnSessionChange(copySession(s))
	}
	if redirect && c.OnRedirect != nil {
		c.OnRedirect(PageHome)
	}
	if c.OnViewChange != nil {
		c.OnViewChange(snap)
	}
	return true
}

func (c *Coordinator) notifyState(s State) {
	c.metrics.coordinatorState(s)
	if c.OnStateChange != nil {
		c.OnStateChange(s)
	}
}

func (c *Coordinator) notice(level NoticeLevel, msg string) {
	if c.OnNotice != nil {
		c.OnNotice(Notice{Level: level, Message: msg})
	}
}

// fail reports err to the user and returns it.
func (c *Coordinator) fail(err error) error {
	c.log.Debug("action failed", "err", err)
	c.notice(NoticeError, model.UserMessage(err))
	return err
}
