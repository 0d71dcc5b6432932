package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntheticEmail(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Marco", "marco@famiglia.local"},
		{"NONNO PINO", "nonnopino@famiglia.local"},
		{"  zia   Maria  ", "ziamaria@famiglia.local"},
		{"Marco", "marco@famiglia.local"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SyntheticEmail(tc.name), "name %q", tc.name)
	}
}

func TestQuickLoginRejectsBlankName(t *testing.T) {
	backend := newFakeBackend()
	adapter := NewSessionAdapter(backend)

	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := adapter.QuickLogin(context.Background(), name)
		assert.ErrorIs(t, err, ErrEmptyName, "name %q", name)
	}
	assert.Empty(t, backend.accounts, "blank names must not create accounts")
}

func TestQuickLoginRegistersThenReusesAccount(t *testing.T) {
	backend := newFakeBackend()
	adapter := NewSessionAdapter(backend)

	first, err := adapter.QuickLogin(context.Background(), "Marco")
	require.NoError(t, err)
	assert.Equal(t, "marco@famiglia.local", first.Identity.Email)
	assert.Equal(t, "Marco", first.Identity.DisplayName)
	assert.NotEmpty(t, first.Token)

	// Same name again, even with different spacing and case, lands on the
	// same account rather than creating a second one.
	second, err := adapter.QuickLogin(context.Background(), "  MARCO ")
	require.NoError(t, err)
	assert.Equal(t, first.Identity.ID, second.Identity.ID)
	assert.Len(t, backend.accounts, 1)
}

func TestQuickLoginConfirmationRequiredIsFatal(t *testing.T) {
	backend := newFakeBackend()
	backend.requireConfirmation = true
	adapter := NewSessionAdapter(backend)

	_, err := adapter.QuickLogin(context.Background(), "Laura")
	assert.ErrorIs(t, err, ErrConfirmationRequired)
}
