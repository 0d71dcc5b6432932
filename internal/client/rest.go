package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/famchat/famchat/internal/models"
)

// REST binds the backend contracts to the service's HTTP API. One value
// implements IdentityProvider, RecordStore, ObjectStore and ChangeFeed; the
// token captured at sign-in/sign-up authenticates everything after it.
type REST struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewREST(baseURL string) *REST {
	return &REST{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *REST) Token() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.token
}

func (r *REST) SetToken(token string) {
	r.mu.Lock()
	r.token = token
	r.mu.Unlock()
}

type authPayload struct {
	Token                string          `json:"token"`
	User                 models.Identity `json:"user"`
	ConfirmationRequired bool            `json:"confirmation_required"`
}

func (r *REST) SignIn(ctx context.Context, email, password string) (*Session, error) {
	payload := &authPayload{}
	err := r.doJSON(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, payload)
	if err != nil {
		return nil, err
	}

	r.SetToken(payload.Token)
	return &Session{Identity: payload.User, Token: payload.Token}, nil
}

func (r *REST) SignUp(ctx context.Context, email, password, displayName string) (*Session, error) {
	payload := &authPayload{}
	err := r.doJSON(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":        email,
		"password":     password,
		"display_name": displayName,
	}, payload)
	if err != nil {
		return nil, err
	}

	// Registered but no session: confirmation is pending server-side and
	// nothing the client does can finish it.
	if payload.ConfirmationRequired || payload.Token == "" {
		return nil, ErrConfirmationRequired
	}

	r.SetToken(payload.Token)
	return &Session{Identity: payload.User, Token: payload.Token}, nil
}

func (r *REST) Profiles(ctx context.Context) ([]models.Identity, error) {
	var payload struct {
		Profiles []models.Identity `json:"profiles"`
	}
	if err := r.doJSON(ctx, http.MethodGet, "/api/profiles", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Profiles, nil
}

func (r *REST) Messages(ctx context.Context, peerID string) ([]models.Message, error) {
	var payload struct {
		Messages []models.Message `json:"messages"`
	}
	path := "/api/messages?peer_id=" + url.QueryEscape(peerID)
	if err := r.doJSON(ctx, http.MethodGet, path, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Messages, nil
}

func (r *REST) InsertMessage(ctx context.Context, receiverID, content, messageType, mediaURL string) (*models.Message, error) {
	msg := &models.Message{}
	err := r.doJSON(ctx, http.MethodPost, "/api/messages", map[string]string{
		"receiver_id":  receiverID,
		"content":      content,
		"message_type": messageType,
		"media_url":    mediaURL,
	}, msg)
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Upload streams one blob to the object store and returns its public URL.
func (r *REST) Upload(ctx context.Context, key string, src io.Reader, contentType string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("key", key); err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	part, err := writer.CreateFormFile("file", key)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return "", fmt.Errorf("failed to read attachment: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/api/upload", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	r.authorize(req)

	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", apiError(resp)
	}

	var payload struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if payload.URL == "" {
		return "", fmt.Errorf("upload returned no url")
	}
	return payload.URL, nil
}

func (r *REST) authorize(req *http.Request) {
	if token := r.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (r *REST) doJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.authorize(req)

	resp, err := r.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return apiError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s", payload.Error)
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode)
}
