package store

import (
	"encoding/json"
	"fmt"

	"github.com/NicolasHaas/badgeboard/pkg/model"
)

// Preferences holds UI preferences that outlive a session.
type Preferences struct {
	storage LocalStorage
}

// NewPreferences builds Preferences over storage.
func NewPreferences(storage LocalStorage) *Preferences {
	return &Preferences{storage: storage}
}

// Theme returns the stored theme. Missing or unrecognised values read as
// model.DefaultTheme.
func (p *Preferences) Theme() (model.Theme, error) {
	raw, ok, err := p.storage.GetItem(KeyTheme)
	if err != nil {
		return model.DefaultTheme, fmt.Errorf("store: load theme: %w", err)
	}
	if !ok {
		return model.DefaultTheme, nil
	}

	// Older clients stored the bare name rather than a JSON string.
	name := raw
	var decoded string
	if json.Unmarshal([]byte(raw), &decoded) == nil {
		name = decoded
	}
	theme, err := model.ParseTheme(name)
	if err != nil {
		return model.DefaultTheme, nil
	}
	return theme, nil
}

// SetTheme persists t.
func (p *Preferences) SetTheme(t model.Theme) error {
	if _, err := model.ParseTheme(string(t)); err != nil {
		return fmt.Errorf("store: set theme: %w", err)
	}
	payload, err := json.Marshal(string(t))
	if err != nil {
		return fmt.Errorf("store: encode theme: %w", err)
	}
	if err := p.storage.SetItem(KeyTheme, string(payload)); err != nil {
		return fmt.Errorf("store: set theme: %w", err)
	}
	return nil
}

// ToggleTheme flips between light and dark and returns the new theme.
func (p *Preferences) ToggleTheme() (model.Theme, error) {
	current, err := p.Theme()
	if err != nil {
		return current, err
	}
	next := current.Toggled()
	if err := p.SetTheme(next); err != nil {
		return current, err
	}
	return next, nil
}
