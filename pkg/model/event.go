package model

// EventType tags a RealtimeEvent.
type EventType string

const (
	EventBadgeAwarded EventType = "badge_awarded"
	EventBadgeRemoved EventType = "badge_removed"
)

// RealtimeEvent is a server-pushed notification. Exactly one of the concrete
// types below implements it.
type RealtimeEvent interface {
	Type() EventType
}

// BadgeAwarded reports that Badge was granted to RecipientUserID.
type BadgeAwarded struct {
	Badge           Badge
	RecipientUserID ID
	RecipientName   string
	AwardedAt       string
}

func (BadgeAwarded) Type() EventType { return EventBadgeAwarded }

// BadgeRemoved reports that every award of BadgeID held by UserID was
// revoked. Count is the number of awards removed, or 0 if the server did not
// say.
type BadgeRemoved struct {
	BadgeID ID
	UserID  ID
	Count   int
}

func (BadgeRemoved) Type() EventType { return EventBadgeRemoved }
