package client

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/famchat/famchat/internal/models"
)

// Client ties the adapters together behind the operations the UI calls:
// quick login, directory refresh, conversation selection, sending text and
// files, live updates. All view-visible effects land in State.
type Client struct {
	State *AppState

	sessions  *SessionAdapter
	directory *Directory
	messages  *MessageGateway
	media     *MediaGateway
	feed      ChangeFeed

	mu       sync.Mutex
	stopLive func()
}

// New wires a client against an HTTP backend at baseURL.
func New(baseURL string) *Client {
	rest := NewREST(baseURL)
	return NewWithBackend(rest, rest, rest, rest)
}

// NewWithBackend wires a client from explicit adapters.
func NewWithBackend(provider IdentityProvider, store RecordStore, objects ObjectStore, feed ChangeFeed) *Client {
	return &Client{
		State:     NewAppState(),
		sessions:  NewSessionAdapter(provider),
		directory: NewDirectory(store),
		messages:  NewMessageGateway(store),
		media:     NewMediaGateway(objects, store),
		feed:      feed,
	}
}

// Login signs the user in by display name, loads the directory and opens the
// live channel. A directory or live-channel failure is logged but does not
// fail the login; both can be retried later.
func (c *Client) Login(ctx context.Context, name string) error {
	session, err := c.sessions.QuickLogin(ctx, name)
	if err != nil {
		return err
	}
	c.State.SetSession(session)

	if err := c.RefreshDirectory(ctx); err != nil {
		log.Printf("directory refresh after login: %v", err)
	}
	if err := c.startLive(ctx); err != nil {
		log.Printf("live channel: %v", err)
	}
	return nil
}

func (c *Client) startLive(ctx context.Context) error {
	if c.feed == nil {
		return nil
	}
	events, stop, err := c.feed.Subscribe(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.stopLive = stop
	c.mu.Unlock()

	go func() {
		for m := range events {
			c.State.AppendMessage(m)
		}
	}()
	return nil
}

// RefreshDirectory reloads the chat list for the current session.
func (c *Client) RefreshDirectory(ctx context.Context) error {
	session := c.State.Session()
	if session == nil {
		return fmt.Errorf("not signed in")
	}
	chats, err := c.directory.Chats(ctx, session.Identity)
	if err != nil {
		return err
	}
	c.State.SetChats(chats)
	return nil
}

// SelectChat opens a conversation and loads its history. The buffer stays
// empty if the history fetch fails or the user has moved on meanwhile.
func (c *Client) SelectChat(ctx context.Context, chat models.ChatPreview) error {
	session := c.State.Session()
	if session == nil {
		return fmt.Errorf("not signed in")
	}
	c.State.SelectChat(chat)

	history, err := c.messages.LoadHistory(ctx, chat.Key, session.Identity.ID)
	if err != nil {
		return err
	}
	c.State.ApplyHistory(chat.Key, history)
	return nil
}

// SendText sends the composer text to the open conversation. The composer is
// cleared only after the backend confirms, so a failed send leaves the draft
// in place.
func (c *Client) SendText(ctx context.Context, text string) error {
	session := c.State.Session()
	if session == nil {
		return fmt.Errorf("not signed in")
	}
	chat, ok := c.State.Selected()
	if !ok {
		return fmt.Errorf("no conversation selected")
	}

	m, err := c.messages.SendText(ctx, chat.Key, session.Identity.ID, text)
	if err != nil {
		return err
	}
	c.State.AppendMessage(*m)
	c.State.ClearComposer()
	return nil
}

// SendFile uploads a file and sends it as a media message to the open
// conversation. The uploading flag is set for the whole round trip.
func (c *Client) SendFile(ctx context.Context, filename, contentType string, r io.Reader) error {
	session := c.State.Session()
	if session == nil {
		return fmt.Errorf("not signed in")
	}
	chat, ok := c.State.Selected()
	if !ok {
		return fmt.Errorf("no conversation selected")
	}

	c.State.SetUploading(true)
	defer c.State.SetUploading(false)

	m, err := c.media.SendFile(ctx, chat.Key, session.Identity.ID, filename, r, contentType)
	if err != nil {
		return err
	}
	c.State.AppendMessage(*m)
	return nil
}

// Logout closes the live channel and drops all local state.
func (c *Client) Logout() {
	c.mu.Lock()
	stop := c.stopLive
	c.stopLive = nil
	c.mu.Unlock()
	if stop != nil {
		stop()
	}
	c.State.Reset()
}
