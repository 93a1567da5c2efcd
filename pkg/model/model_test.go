package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"valid simple", "alice", nil},
		{"valid with numbers", "user123", nil},
		{"long name left to the server", strings.Repeat("a", 200), nil},
		{"empty", "", ErrUsernameEmpty},
		{"whitespace only", "   ", ErrUsernameEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.input)
			if err != tt.wantErr {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input   string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"user", RoleUser, false},
		{"", "", true},
		{"moderator", "", true},
		{"ADMIN", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRole(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) err = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if err != nil && !errors.Is(err, ErrInvalidRole) {
				t.Errorf("ParseRole(%q) error %v does not match ErrInvalidRole", tt.input, err)
			}
		})
	}
}

func TestSessionValidate(t *testing.T) {
	valid := Session{ID: "1", Username: "alice", Role: RoleUser}
	tests := []struct {
		name    string
		mutate  func(s *Session)
		wantErr error
	}{
		{"valid", func(*Session) {}, nil},
		{"missing id", func(s *Session) { s.ID = "" }, ErrSessionIDEmpty},
		{"missing username", func(s *Session) { s.Username = "" }, ErrUsernameEmpty},
		{"unknown role", func(s *Session) { s.Role = "root" }, ErrInvalidRole},
		{"empty role", func(s *Session) { s.Role = "" }, ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			if err := s.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	var nilSession *Session
	if nilSession.Valid() {
		t.Error("nil session must not be valid")
	}
}

func TestSessionUnmarshalRejectsUnknownRole(t *testing.T) {
	var s Session
	err := json.Unmarshal([]byte(`{"id":"1","username":"alice","role":"superuser"}`), &s)
	if !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("Unmarshal error = %v, want ErrInvalidRole", err)
	}
}

func TestLoginResultSession(t *testing.T) {
	got, err := LoginResult{UserID: "1", Username: "alice", Role: "user"}.Session()
	if err != nil {
		t.Fatalf("Session(): %v", err)
	}
	want := Session{ID: "1", Username: "alice", Role: RoleUser}
	if got != want {
		t.Errorf("Session() = %+v, want %+v", got, want)
	}

	got, err = LoginResult{UserID: "2", Username: "bob"}.Session()
	if err != nil || got.Role != RoleUser {
		t.Errorf("missing role should default to user, got %+v err=%v", got, err)
	}

	if _, err := (LoginResult{Username: "carol", Role: "user"}).Session(); err == nil {
		t.Error("expected error for missing user id")
	}
}

func TestAwardRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     AwardRequest
		wantErr error
	}{
		{"valid", AwardRequest{UserID: "2", BadgeID: "b", AwardedBy: "1"}, nil},
		{"self award", AwardRequest{UserID: "1", BadgeID: "b", AwardedBy: "1"}, ErrSelfAward},
		{"missing user", AwardRequest{BadgeID: "b", AwardedBy: "1"}, ErrUserIDEmpty},
		{"missing badge", AwardRequest{UserID: "2", AwardedBy: "1"}, ErrBadgeIDEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.req.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBadgeInputValidate(t *testing.T) {
	if err := (BadgeInput{Name: "Chip"}).ValidateCreate(); err != nil {
		t.Errorf("create without description: %v", err)
	}
	if err := (BadgeInput{Name: "Chip"}).ValidateUpdate(); err != ErrBadgeDescEmpty {
		t.Errorf("update without description = %v, want ErrBadgeDescEmpty", err)
	}
	if err := (BadgeInput{Name: strings.Repeat("x", MaxBadgeNameLength+1)}).ValidateCreate(); err != ErrBadgeNameTooLong {
		t.Errorf("long name = %v, want ErrBadgeNameTooLong", err)
	}
	if err := (BadgeInput{Name: "Chip", Icon: "../etc/passwd"}).ValidateCreate(); err != ErrIconFilenameInvalid {
		t.Errorf("traversal icon = %v, want ErrIconFilenameInvalid", err)
	}
	if !errors.Is(ErrBadgeNameEmpty, ErrInvalidInput) {
		t.Error("validation errors must match ErrInvalidInput")
	}
}

func TestIconFilename(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	got := IconFilename("my  cool\tbadge.png", now)
	if got != "badge_1700000000123_my_cool_badge.png" {
		t.Errorf("IconFilename = %q", got)
	}
}

func TestUnawarded(t *testing.T) {
	all := []Badge{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	held := []UserBadge{{Badge: Badge{ID: "b", Count: 2}}}
	got := Unawarded(all, held)
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "c" {
		t.Errorf("Unawarded = %+v", got)
	}
}

func TestPrependActivity(t *testing.T) {
	feed := []ActivityEntry{{User: "a"}, {User: "b"}, {User: "c"}}
	got := PrependActivity(feed, ActivityEntry{User: "new"}, 3)
	if len(got) != 3 || got[0].User != "new" || got[2].User != "b" {
		t.Errorf("PrependActivity = %+v", got)
	}
	if feed[0].User != "a" {
		t.Error("input slice was modified")
	}

	got = PrependActivity(nil, ActivityEntry{User: "only"}, FeedLimit)
	if len(got) != 1 {
		t.Errorf("PrependActivity on empty feed = %+v", got)
	}
}

func TestThemeToggle(t *testing.T) {
	if ThemeLight.Toggled() != ThemeDark || ThemeDark.Toggled() != ThemeLight {
		t.Error("toggle must swap light and dark")
	}
	if _, err := ParseTheme("solarized"); err != ErrInvalidTheme {
		t.Errorf("ParseTheme(solarized) = %v", err)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"network", &NetworkError{Op: "GET /badges", Err: errors.New("refused")}, ErrNetworkFailure},
		{"rejected", &RejectedError{Op: "POST /login", StatusCode: 401, Message: "Invalid credentials"}, ErrServerRejected},
		{"decode", &DecodeError{Source: "realtime", Err: errors.New("eof")}, ErrDeserialization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.target) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.target)
			}
		})
	}

	if got := UserMessage(&RejectedError{Op: "POST /login", StatusCode: 401, Message: "Invalid credentials"}); got != "Invalid credentials" {
		t.Errorf("UserMessage(rejected) = %q", got)
	}
	if got := UserMessage(ErrSelfAward); got != "you cannot award badges to yourself" {
		t.Errorf("UserMessage(self award) = %q", got)
	}
}

func TestIDUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ID
		wantErr bool
	}{
		{"string", `"42"`, "42", false},
		{"number", `42`, "42", false},
		{"null", `null`, "", false},
		{"bool", `true`, "", true},
		{"object", `{}`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ID
			err := json.Unmarshal([]byte(tt.input), &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Unmarshal(%s) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	var b Badge
	if err := json.Unmarshal([]byte(`{"id":7,"name":"Helper","count":3}`), &b); err != nil {
		t.Fatalf("Unmarshal badge: %v", err)
	}
	if b.ID != "7" || b.Count != 3 {
		t.Errorf("badge = %+v, want id 7 count 3", b)
	}
	out, _ := json.Marshal(AwardRequest{UserID: "2", BadgeID: "7", AwardedBy: "1"})
	if string(out) != `{"user_id":"2","badge_id":"7","awarded_by":"1"}` {
		t.Errorf("AwardRequest encoding = %s", out)
	}
}
