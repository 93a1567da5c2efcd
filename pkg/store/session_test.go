package store_test

import (
	"errors"
	"testing"

	"github.com/NicolasHaas/badgeboard/pkg/crypto"
	"github.com/NicolasHaas/badgeboard/pkg/model"
	"github.com/NicolasHaas/badgeboard/pkg/store"

	"github.com/google/go-cmp/cmp"
)

var alice = model.Session{ID: "u1", Username: "alice", DisplayName: "Alice", Role: model.RoleUser}

func TestSessionSaveLoadRoundTrip(t *testing.T) {
	withStorages(t, func(t *testing.T, st store.LocalStorage) {
		ss := store.NewSessionStore(st)

		if err := ss.Save(alice); err != nil {
			t.Fatalf("Save: unexpected error: %v", err)
		}
		got, err := ss.Load()
		if err != nil {
			t.Fatalf("Load: unexpected error: %v", err)
		}
		if diff := cmp.Diff(&alice, got); diff != "" {
			t.Errorf("Load mismatch (-want +got):\n%s", diff)
		}

		if err := ss.Clear(); err != nil {
			t.Fatalf("Clear: unexpected error: %v", err)
		}
		got, err = ss.Load()
		if err != nil || got != nil {
			t.Fatalf("Load after Clear: got (%v, %v), want (nil, nil)", got, err)
		}
	})
}

func TestSessionSaveReplacesWholesale(t *testing.T) {
	st := store.NewMemory()
	ss := store.NewSessionStore(st)

	admin := model.Session{ID: "u2", Username: "root", Role: model.RoleAdmin}
	if err := ss.Save(alice); err != nil {
		t.Fatalf("Save alice: %v", err)
	}
	if err := ss.Save(admin); err != nil {
		t.Fatalf("Save admin: %v", err)
	}
	got, err := ss.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(&admin, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}
}

func TestSessionSaveRejectsInvalid(t *testing.T) {
	tcases := map[string]model.Session{
		"empty_id":       {Username: "alice", Role: model.RoleUser},
		"empty_username": {ID: "u1", Role: model.RoleUser},
		"unknown_role":   {ID: "u1", Username: "alice", Role: "superuser"},
	}

	for name, sess := range tcases {
		t.Run(name, func(t *testing.T) {
			st := store.NewMemory()
			ss := store.NewSessionStore(st)
			err := ss.Save(sess)
			if !errors.Is(err, model.ErrInvalidInput) {
				t.Fatalf("Save: want ErrInvalidInput, got %v", err)
			}
			if _, ok, _ := st.GetItem(store.KeyCurrentUser); ok {
				t.Errorf("Save: invalid session must not be written")
			}
		})
	}
}

func TestSessionLoadClearsCorruptValue(t *testing.T) {
	tcases := map[string]string{
		"not_json":       "{not json",
		"wrong_shape":    `["alice"]`,
		"missing_id":     `{"username":"alice","role":"user"}`,
		"unknown_role":   `{"id":"u1","username":"alice","role":"owner"}`,
		"empty_username": `{"id":"u1","username":"","role":"user"}`,
	}

	for name, raw := range tcases {
		t.Run(name, func(t *testing.T) {
			withStorages(t, func(t *testing.T, st store.LocalStorage) {
				if err := st.SetItem(store.KeyCurrentUser, raw); err != nil {
					t.Fatalf("SetItem: %v", err)
				}
				ss := store.NewSessionStore(st)

				got, err := ss.Load()
				if got != nil {
					t.Errorf("Load: expected no session, got %+v", got)
				}
				if !errors.Is(err, model.ErrDeserialization) {
					t.Fatalf("Load: want ErrDeserialization, got %v", err)
				}
				var de *model.DecodeError
				if !errors.As(err, &de) || de.Source != "storage:currentUser" {
					t.Errorf("Load: want *model.DecodeError for storage:currentUser, got %#v", err)
				}
				if _, ok, _ := st.GetItem(store.KeyCurrentUser); ok {
					t.Errorf("Load: corrupt value was not cleared")
				}

				// second load observes the cleared key
				got, err = ss.Load()
				if got != nil || err != nil {
					t.Errorf("second Load: got (%v, %v), want (nil, nil)", got, err)
				}
			})
		})
	}
}

func TestSealedSession(t *testing.T) {
	key, err := crypto.GenerateKey(crypto.Chacha20KeySize)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	sealer, err := crypto.NewSealer(crypto.XChaCha20Poly1305, key)
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}

	st := store.NewMemory()
	ss := store.NewSessionStore(st, store.WithSealer(sealer))

	if err := ss.Save(alice); err != nil {
		t.Fatalf("Save: %v", err)
	}
	raw, _, _ := st.GetItem(store.KeyCurrentUser)
	if raw == "" || raw[0] == '{' {
		t.Fatalf("sealed value looks like plaintext: %q", raw)
	}

	got, err := ss.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(&alice, got); diff != "" {
		t.Errorf("Load mismatch (-want +got):\n%s", diff)
	}

	// a plaintext value written by an unsealed client is rejected
	if err := st.SetItem(store.KeyCurrentUser, `{"id":"u1","username":"alice","role":"admin"}`); err != nil {
		t.Fatalf("SetItem: %v", err)
	}
	got, err = ss.Load()
	if got != nil || !errors.Is(err, model.ErrDeserialization) {
		t.Fatalf("Load tampered: got (%v, %v), want (nil, ErrDeserialization)", got, err)
	}
	if _, ok, _ := st.GetItem(store.KeyCurrentUser); ok {
		t.Errorf("tampered value was not cleared")
	}
}

func TestPreferencesTheme(t *testing.T) {
	withStorages(t, func(t *testing.T, st store.LocalStorage) {
		p := store.NewPreferences(st)

		theme, err := p.Theme()
		if err != nil || theme != model.ThemeLight {
			t.Fatalf("Theme default: got (%q, %v), want (light, nil)", theme, err)
		}

		next, err := p.ToggleTheme()
		if err != nil || next != model.ThemeDark {
			t.Fatalf("ToggleTheme: got (%q, %v), want (dark, nil)", next, err)
		}
		if theme, _ := p.Theme(); theme != model.ThemeDark {
			t.Errorf("Theme after toggle: got %q, want dark", theme)
		}

		if err := p.SetTheme("sepia"); !errors.Is(err, model.ErrInvalidTheme) {
			t.Errorf("SetTheme sepia: want ErrInvalidTheme, got %v", err)
		}

		// bare legacy value and garbage
		_ = st.SetItem(store.KeyTheme, "dark")
		if theme, _ := p.Theme(); theme != model.ThemeDark {
			t.Errorf("Theme legacy: got %q, want dark", theme)
		}
		_ = st.SetItem(store.KeyTheme, `"neon"`)
		if theme, _ := p.Theme(); theme != model.ThemeLight {
			t.Errorf("Theme unknown: got %q, want light", theme)
		}
	})
}
