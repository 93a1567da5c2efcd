package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxBadgeNameLength = 60

	// FeedLimit is the number of entries GET /activity-feed returns.
	FeedLimit = 10
)

// Badge is a badge definition as listed by GET /badges. Count is the number
// of times it has been awarded across all users.
type Badge struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
	Count       int    `json:"count"`
}

// UserBadge is a badge held by one user. Count is how many times that user
// holds it.
type UserBadge struct {
	Badge
}

// BadgeInput is the body of POST /badges and PUT /badges/{id}.
type BadgeInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// ValidateCreate checks a new badge. Description may be empty on create.
func (in BadgeInput) ValidateCreate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrBadgeNameEmpty
	}
	if utf8.RuneCountInString(in.Name) > MaxBadgeNameLength {
		return ErrBadgeNameTooLong
	}
	return validIcon(in.Icon)
}

// ValidateUpdate checks an edited badge; both name and description are required.
func (in BadgeInput) ValidateUpdate() error {
	if err := in.ValidateCreate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrBadgeDescEmpty
	}
	return nil
}

func validIcon(icon string) error {
	if strings.Contains(icon, "/") || strings.Contains(icon, `\`) || strings.Contains(icon, "..") {
		return ErrIconFilenameInvalid
	}
	return nil
}

var whitespace = regexp.MustCompile(`\s+`)

// IconFilename generates the name an uploaded badge image is stored under:
// badge_<unix-ms>_<original name with whitespace runs replaced by '_'>.
func IconFilename(original string, now time.Time) string {
	base := whitespace.ReplaceAllString(original, "_")
	base = strings.NewReplacer("/", "_", `\`, "_").Replace(base)
	return fmt.Sprintf("badge_%d_%s", now.UnixMilli(), base)
}

// AwardRequest is the body of POST /badges/award.
type AwardRequest struct {
	UserID    ID `json:"user_id"`
	BadgeID   ID `json:"badge_id"`
	AwardedBy ID `json:"awarded_by"`
}

// Validate rejects self-awards and missing ids. It never touches the network.
func (r AwardRequest) Validate() error {
	if r.UserID == "" {
		return ErrUserIDEmpty
	}
	if r.BadgeID == "" {
		return ErrBadgeIDEmpty
	}
	if r.AwardedBy == r.UserID {
		return ErrSelfAward
	}
	return nil
}

// RemoveRequest is the body of POST /badges/remove.
type RemoveRequest struct {
	UserID  ID `json:"user_id"`
	BadgeID ID `json:"badge_id"`
}

// Validate rejects missing ids.
func (r RemoveRequest) Validate() error {
	if r.UserID == "" {
		return ErrUserIDEmpty
	}
	if r.BadgeID == "" {
		return ErrBadgeIDEmpty
	}
	return nil
}

// BadgeDetails is the body of GET /badge-details-api/{id}.
type BadgeDetails struct {
	Badge           Badge         `json:"badge"`
	AwardCount      int           `json:"award_count"`
	UniqueUserCount int           `json:"unique_user_count"`
	Users           []BadgeHolder `json:"users"`
}

// BadgeHolder is one user listed on a badge's details page.
type BadgeHolder struct {
	ID          ID       `json:"id"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	AwardDate   string   `json:"award_date"`
	AwardedBy   *Awarder `json:"awarded_by,omitempty"`
}

// Name returns the display name, falling back to the username.
func (h BadgeHolder) Name() string {
	if h.DisplayName != "" {
		return h.DisplayName
	}
	return h.Username
}

// Awarder identifies who granted an award.
type Awarder struct {
	ID          ID     `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Name returns the display name, falling back to the username.
func (a Awarder) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

// Unawarded returns the badges in all that are not present in held,
// preserving the order of all.
func Unawarded(all []Badge, held []UserBadge) []Badge {
	owned := make(map[ID]struct{}, len(held))
	for _, b := range held {
		owned[b.ID] = struct{}{}
	}
	out := make([]Badge, 0, len(all))
	for _, b := range all {
		if _, ok := owned[b.ID]; !ok {
			out = append(out, b)
		}
	}
	return out
}
