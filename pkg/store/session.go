package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/NicolasHaas/badgeboard/pkg/crypto"
	"github.com/NicolasHaas/badgeboard/pkg/model"
)

// SessionStore persists the current Session under KeyCurrentUser. A value
// that fails to decode is removed on read, so the store holds either a
// complete valid session or nothing.
type SessionStore struct {
	storage LocalStorage
	sealer  *crypto.Sealer
	log     *slog.Logger
}

// SessionOption configures a SessionStore.
type SessionOption func(*SessionStore)

// WithSealer encrypts the persisted session with s.
func WithSealer(s *crypto.Sealer) SessionOption {
	return func(ss *SessionStore) {
		ss.sealer = s
	}
}

// WithSessionLogger overrides the logger.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(ss *SessionStore) {
		ss.log = l
	}
}

// NewSessionStore builds a SessionStore over storage.
func NewSessionStore(storage LocalStorage, opts ...SessionOption) *SessionStore {
	ss := &SessionStore{
		storage: storage,
		log:     slog.Default().With("component", "session-store"),
	}
	for _, opt := range opts {
		opt(ss)
	}
	return ss
}

// Load returns the persisted session, or (nil, nil) when none is stored.
// A malformed value is cleared and reported as a *model.DecodeError; the
// caller should treat that as logged out.
func (ss *SessionStore) Load() (*model.Session, error) {
	raw, ok, err := ss.storage.GetItem(KeyCurrentUser)
	if err != nil {
		return nil, fmt.Errorf("store: load session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	sess, decodeErr := ss.decode(raw)
	if decodeErr == nil {
		return sess, nil
	}

	ss.log.Warn("discarding malformed persisted session", "error", decodeErr)
	if err := ss.storage.RemoveItem(KeyCurrentUser); err != nil {
		ss.log.Error("failed to clear malformed session", "error", err)
		return nil, errors.Join(&model.DecodeError{Source: "storage:" + KeyCurrentUser, Err: decodeErr}, err)
	}
	return nil, &model.DecodeError{Source: "storage:" + KeyCurrentUser, Err: decodeErr}
}

func (ss *SessionStore) decode(raw string) (*model.Session, error) {
	payload := []byte(raw)
	if ss.sealer != nil {
		opened, err := ss.sealer.Open(KeyCurrentUser, raw)
		if err != nil {
			return nil, err
		}
		payload = opened
	}

	var sess model.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, err
	}
	if err := sess.Validate(); err != nil {
		return nil, err
	}
	return &sess, nil
}

// Save replaces the persisted session with s in a single write.
func (ss *SessionStore) Save(s model.Session) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("store: save session: %w", err)
	}
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("store: encode session: %w", err)
	}

	value := string(payload)
	if ss.sealer != nil {
		value, err = ss.sealer.Seal(KeyCurrentUser, payload)
		if err != nil {
			return fmt.Errorf("store: seal session: %w", err)
		}
	}
	if err := ss.storage.SetItem(KeyCurrentUser, value); err != nil {
		return fmt.Errorf("store: save session: %w", err)
	}
	return nil
}

// Clear removes the persisted session.
func (ss *SessionStore) Clear() error {
	if err := ss.storage.RemoveItem(KeyCurrentUser); err != nil {
		return fmt.Errorf("store: clear session: %w", err)
	}
	return nil
}
