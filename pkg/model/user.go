package model

import "strings"

// User is the public view of an account returned by GET /users.
type User struct {
	ID          ID     `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Name returns the display name, falling back to the username.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// Account is the admin view of a user returned by GET /admin/users.
type Account struct {
	ID          ID     `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
}

// Registration is the body of POST /register.
type Registration struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

// Validate checks the fields the server requires. Display name falls back to
// the username server-side, so it is optional here.
func (r Registration) Validate() error {
	if err := ValidateUsername(r.Username); err != nil {
		return err
	}
	if r.Password == "" {
		return ErrPasswordEmpty
	}
	return nil
}

// ValidateUsername checks that a username is present. The server owns
// length and character set rules.
func ValidateUsername(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrUsernameEmpty
	}
	return nil
}
