package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/famchat/famchat/internal/models"
)

// fakeBackend implements all four backend contracts in memory, mimicking the
// reference service closely enough for adapter tests: password accounts,
// append-only messages, blob uploads and an insert feed.
type fakeBackend struct {
	mu sync.Mutex

	accounts            map[string]fakeAccount // keyed by email
	messages            []models.Message
	uploads             map[string][]byte
	subscribers         []chan models.Message
	requireConfirmation bool
	insertErr           error

	// senderID stamps rows appended through InsertMessage, standing in for
	// the identity the bearer token would resolve to on the real service.
	senderID string
}

type fakeAccount struct {
	identity     models.Identity
	passwordHash []byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		accounts: make(map[string]fakeAccount),
		uploads:  make(map[string][]byte),
	}
}

func (f *fakeBackend) SignIn(ctx context.Context, email, password string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	acct, ok := f.accounts[email]
	if !ok {
		return nil, errors.New("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) != nil {
		return nil, errors.New("invalid credentials")
	}
	return &Session{Identity: acct.identity, Token: "token-" + acct.identity.ID}, nil
}

func (f *fakeBackend) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[email]; ok {
		return nil, errors.New("email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	acct := fakeAccount{
		identity: models.Identity{
			ID:          uuid.NewString(),
			Email:       email,
			DisplayName: displayName,
			CreatedAt:   time.Now().UTC(),
		},
		passwordHash: hash,
	}
	f.accounts[email] = acct
	if f.requireConfirmation {
		return nil, ErrConfirmationRequired
	}
	return &Session{Identity: acct.identity, Token: "token-" + acct.identity.ID}, nil
}

func (f *fakeBackend) Profiles(ctx context.Context) ([]models.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Identity, 0, len(f.accounts))
	for _, acct := range f.accounts {
		out = append(out, acct.identity)
	}
	return out, nil
}

func (f *fakeBackend) Messages(ctx context.Context, peerID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Message
	for _, m := range f.messages {
		if m.SenderID == peerID || m.ReceiverID == peerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeBackend) InsertMessage(ctx context.Context, receiverID, content, messageType, mediaURL string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	m := models.Message{
		ID:          uuid.NewString(),
		SenderID:    f.senderID,
		ReceiverID:  receiverID,
		Content:     content,
		MessageType: messageType,
		MediaURL:    mediaURL,
		CreatedAt:   time.Now().UTC(),
	}
	f.messages = append(f.messages, m)
	for _, sub := range f.subscribers {
		select {
		case sub <- m:
		default:
		}
	}
	return &m, nil
}

func (f *fakeBackend) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if strings.Contains(key, "..") {
		return "", errors.New("invalid key")
	}
	f.uploads[key] = data
	return "http://files.test/" + key, nil
}

func (f *fakeBackend) Subscribe(ctx context.Context) (<-chan models.Message, func(), error) {
	ch := make(chan models.Message, 16)
	f.mu.Lock()
	f.subscribers = append(f.subscribers, ch)
	f.mu.Unlock()
	var once sync.Once
	stop := func() {
		once.Do(func() {
			f.mu.Lock()
			for i, sub := range f.subscribers {
				if sub == ch {
					f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
					break
				}
			}
			f.mu.Unlock()
			close(ch)
		})
	}
	return ch, stop, nil
}

func (f *fakeBackend) failInserts(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insertErr = err
}

func (f *fakeBackend) mustSignUp(name string) models.Identity {
	session, err := f.SignUp(context.Background(), SyntheticEmail(name), sharedPassword, name)
	if err != nil {
		panic(fmt.Sprintf("fake signup %s: %v", name, err))
	}
	return session.Identity
}
