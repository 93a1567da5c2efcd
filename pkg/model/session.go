package model

import "strings"

// Session is the client's record of the currently authenticated user.
// It is replaced wholesale, never patched field by field.
type Session struct {
	ID          ID     `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

// Validate reports whether every field a session needs is populated.
func (s *Session) Validate() error {
	if s == nil {
		return ErrInvalidSession
	}
	if strings.TrimSpace(string(s.ID)) == "" {
		return ErrSessionIDEmpty
	}
	if err := ValidateUsername(s.Username); err != nil {
		return err
	}
	if !s.Role.Valid() {
		return ErrInvalidRole
	}
	return nil
}

// Valid is shorthand for Validate() == nil.
func (s *Session) Valid() bool {
	return s.Validate() == nil
}

// Name returns the display name, falling back to the username.
func (s *Session) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Username
}

// IsSelf reports whether userID identifies the session's user.
func (s *Session) IsSelf(userID ID) bool {
	return s != nil && userID != "" && s.ID == userID
}

// LoginResult is the decoded body of a successful POST /login.
type LoginResult struct {
	UserID      ID     `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Session builds the Session a successful login establishes. A missing role
// means "user", matching the server's default for new accounts.
func (r LoginResult) Session() (Session, error) {
	role := RoleUser
	if r.Role != "" {
		parsed, err := ParseRole(r.Role)
		if err != nil {
			return Session{}, err
		}
		role = parsed
	}
	s := Session{
		ID:          r.UserID,
		Username:    r.Username,
		DisplayName: r.DisplayName,
		Role:        role,
	}
	if err := s.Validate(); err != nil {
		return Session{}, err
	}
	return s, nil
}
