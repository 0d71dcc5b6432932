// Package client implements the chat synchronization core: a name-only
// identity adapter, the chat directory, message and media gateways, the live
// update channel and the view-model state container. All network access goes
// through the backend contracts below; the REST/WebSocket bindings in this
// package talk to the bundled service, and tests substitute fakes.
package client

import (
	"context"
	"errors"
	"io"

	"github.com/famchat/famchat/internal/models"
)

// Session is an authenticated identity plus its bearer token.
type Session struct {
	Identity models.Identity
	Token    string
}

var (
	// ErrEmptyName is the local validation error for blank display names;
	// no network call is made.
	ErrEmptyName = errors.New("enter a name")

	// ErrConfirmationRequired means the deployment demands email
	// confirmation, which a name-only client can never complete. Fatal
	// configuration error.
	ErrConfirmationRequired = errors.New("confirmation required")
)

// IdentityProvider is the external auth service: password sign-in and
// sign-up with display-name metadata.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignUp(ctx context.Context, email, password, displayName string) (*Session, error)
}

// RecordStore is the relational store: a queryable profiles table and an
// insert-only messages table.
type RecordStore interface {
	Profiles(ctx context.Context) ([]models.Identity, error)
	Messages(ctx context.Context, peerID string) ([]models.Message, error)
	InsertMessage(ctx context.Context, receiverID, content, messageType, mediaURL string) (*models.Message, error)
}

// ObjectStore uploads a blob under a caller-chosen key and resolves its
// durable public URL.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

// ChangeFeed delivers message rows as they are inserted. Subscribe returns a
// receive channel and a teardown func; the channel closes when the
// subscription ends.
type ChangeFeed interface {
	Subscribe(ctx context.Context) (<-chan models.Message, func(), error)
}
