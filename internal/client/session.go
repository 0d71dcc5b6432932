package client

import (
	"context"
	"strings"
)

// The whole circle shares one fixed password: a deliberate trade of
// credential secrecy for zero-friction onboarding in a closed trusted group.
// The same name always maps to the same account, no secret to remember.
const (
	sharedPassword = "famiglia123"
	emailDomain    = "famiglia.local"
)

// SessionAdapter turns a human-entered display name into an authenticated
// session against the identity provider.
type SessionAdapter struct {
	provider IdentityProvider
}

func NewSessionAdapter(provider IdentityProvider) *SessionAdapter {
	return &SessionAdapter{provider: provider}
}

// SyntheticEmail derives the stable credential for a display name: lowercase,
// whitespace stripped, fixed domain appended.
func SyntheticEmail(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "")) + "@" + emailDomain
}

// QuickLogin signs in with the synthetic credential for name, registering the
// account first if it does not exist yet. A blank name fails locally with
// ErrEmptyName before any network call. ErrConfirmationRequired from
// registration is passed through untouched; it cannot be resolved client-side.
func (a *SessionAdapter) QuickLogin(ctx context.Context, name string) (*Session, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	email := SyntheticEmail(name)

	session, err := a.provider.SignIn(ctx, email, sharedPassword)
	if err == nil {
		return session, nil
	}

	// Sign-in failed, most likely a first visit: register with the display
	// name as profile metadata.
	return a.provider.SignUp(ctx, email, sharedPassword, name)
}
