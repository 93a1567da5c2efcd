package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NicolasHaas/badgeboard/pkg/client"
	"github.com/NicolasHaas/badgeboard/pkg/model"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer description", 8, "a longe…"},
		{"ünïcödé text", 5, "ünïc…"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.n))
		})
	}
}

func TestReadSecret(t *testing.T) {
	got, err := readSecret(strings.NewReader("ignored\n"), "Password: ", "from-flag")
	require.NoError(t, err)
	assert.Equal(t, "from-flag", got)

	got, err = readSecret(strings.NewReader("typed\r\n"), "Password: ", "")
	require.NoError(t, err)
	assert.Equal(t, "typed", got)

	got, err = readSecret(strings.NewReader("no newline"), "Password: ", "")
	require.NoError(t, err)
	assert.Equal(t, "no newline", got)

	_, err = readSecret(strings.NewReader(""), "Password: ", "")
	assert.Error(t, err)
}

func TestLoaded(t *testing.T) {
	items, err := loaded(client.Section[model.Badge]{Status: client.SectionLoaded, Items: []model.Badge{{ID: "b1"}}})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	boom := errors.New("boom")
	_, err = loaded(client.Section[model.Badge]{Status: client.SectionFailed, Err: boom})
	assert.ErrorIs(t, err, boom)
}
