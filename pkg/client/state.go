package client

// State is the coordinator lifecycle state.
type State int

const (
	StateUninitialized State = iota
	StateHydrating
	StateReady
	// StateRefreshing is held while at least one action or event
	// application started from Ready is still running.
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHydrating:
		return "hydrating"
	case StateReady:
		return "ready"
	case StateRefreshing:
		return "refreshing"
	default:
		return "unknown"
	}
}

// Page identifies which screen the coordinator is serving. It decides which
// sections are loaded and whether admin access is required.
type Page int

const (
	PageHome Page = iota
	PageBadgeManagement
	PageUserManagement
)

func (p Page) String() string {
	switch p {
	case PageHome:
		return "home"
	case PageBadgeManagement:
		return "badge-management"
	case PageUserManagement:
		return "user-management"
	default:
		return "unknown"
	}
}

// HasFeed reports whether the page shows the activity feed.
func (p Page) HasFeed() bool { return p == PageHome }

// AdminOnly reports whether the page requires an admin session.
func (p Page) AdminOnly() bool { return p == PageUserManagement }

// SectionStatus is the load status of one part of the view.
type SectionStatus int

const (
	SectionIdle SectionStatus = iota
	SectionLoading
	SectionLoaded
	SectionFailed
)

func (s SectionStatus) String() string {
	switch s {
	case SectionIdle:
		return "idle"
	case SectionLoading:
		return "loading"
	case SectionLoaded:
		return "loaded"
	case SectionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// NoticeLevel grades a Notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a user-visible message such as "Badge awarded successfully!".
type Notice struct {
	Level   NoticeLevel
	Message string
}
