package model

import (
	"encoding/json"
	"fmt"
)

// Role is the permission level attached to a session at login time.
type Role string

const (
	RoleUser  Role = "user"  // can award, remove own awards, create badges
	RoleAdmin Role = "admin" // additionally edits/deletes badges and manages accounts
)

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a string to a Role. Unlike a lenient default it rejects
// unknown values so a tampered persisted session fails closed.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
}

// Valid returns true if the role is a recognised value (user or admin).
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// UnmarshalJSON rejects unknown roles.
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
