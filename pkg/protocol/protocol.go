// Package protocol defines the realtime frame format pushed over /ws.
//
// Every frame is one JSON text message:
//
//	{"type":"badge_awarded","badge":{"id":"b1","name":"Helper","description":"...",
//	 "icon":"helper.png","user_id":"u2","user":"bob","awarded_at":"2024-05-01T10:00:00Z"}}
//	{"type":"badge_removed","badge":{"id":"b1","user_id":"u2","count":2}}
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NicolasHaas/badgeboard/pkg/model"
)

// MaxFrameSize is the largest frame the client accepts (64KB).
const MaxFrameSize = 65536

const sourceRealtime = "realtime"

var (
	ErrFrameTooLarge = errors.New("protocol: frame too large")
	ErrUnknownType   = errors.New("protocol: unknown frame type")
	ErrMissingField  = errors.New("protocol: missing required field")
)

// Frame is the envelope of every realtime message.
type Frame struct {
	Type  model.EventType `json:"type"`
	Badge *FrameBadge     `json:"badge,omitempty"`
}

// FrameBadge carries the badge payload. Award frames fill the badge fields
// plus the recipient; removal frames only need ID, UserID and optionally Count.
type FrameBadge struct {
	ID          model.ID `json:"id"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Icon        string   `json:"icon,omitempty"`
	UserID      model.ID `json:"user_id"`
	User        string   `json:"user,omitempty"`
	AwardedAt   string   `json:"awarded_at,omitempty"`
	Count       *int     `json:"count,omitempty"`
}

// DecodeEvent parses one frame. Every failure is a *model.DecodeError so the
// caller can drop it and keep reading.
func DecodeEvent(data []byte) (model.RealtimeEvent, error) {
	ev, err := decode(data)
	if err != nil {
		return nil, &model.DecodeError{Source: sourceRealtime, Err: err}
	}
	return ev, nil
}

func decode(data []byte) (model.RealtimeEvent, error) {
	if len(data) > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("protocol: unmarshal: %w", err)
	}

	switch f.Type {
	case model.EventBadgeAwarded:
		b := f.Badge
		if b == nil || b.ID == "" || b.UserID == "" || b.Name == "" {
			return nil, fmt.Errorf("%w: badge_awarded needs badge.id, badge.name and badge.user_id", ErrMissingField)
		}
		return model.BadgeAwarded{
			Badge: model.Badge{
				ID:          b.ID,
				Name:        b.Name,
				Description: b.Description,
				Icon:        b.Icon,
			},
			RecipientUserID: b.UserID,
			RecipientName:   b.User,
			AwardedAt:       b.AwardedAt,
		}, nil

	case model.EventBadgeRemoved:
		b := f.Badge
		if b == nil || b.ID == "" || b.UserID == "" {
			return nil, fmt.Errorf("%w: badge_removed needs badge.id and badge.user_id", ErrMissingField)
		}
		ev := model.BadgeRemoved{BadgeID: b.ID, UserID: b.UserID}
		if b.Count != nil {
			if *b.Count < 0 {
				return nil, fmt.Errorf("protocol: negative count %d", *b.Count)
			}
			ev.Count = *b.Count
		}
		return ev, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, f.Type)
	}
}

// EncodeEvent renders ev as a frame, the inverse of DecodeEvent.
func EncodeEvent(ev model.RealtimeEvent) ([]byte, error) {
	var f Frame
	switch e := ev.(type) {
	case model.BadgeAwarded:
		f = Frame{Type: model.EventBadgeAwarded, Badge: &FrameBadge{
			ID:          e.Badge.ID,
			Name:        e.Badge.Name,
			Description: e.Badge.Description,
			Icon:        e.Badge.Icon,
			UserID:      e.RecipientUserID,
			User:        e.RecipientName,
			AwardedAt:   e.AwardedAt,
		}}
	case model.BadgeRemoved:
		fb := &FrameBadge{ID: e.BadgeID, UserID: e.UserID}
		if e.Count > 0 {
			n := e.Count
			fb.Count = &n
		}
		f = Frame{Type: model.EventBadgeRemoved, Badge: fb}
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, ev)
	}

	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal: %w", err)
	}
	if len(data) > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}
	return data, nil
}
