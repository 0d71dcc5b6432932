package client

import (
	"sync"

	"github.com/famchat/famchat/internal/models"
)

// ComposerEmojis is the fixed picker set offered next to the composer.
var ComposerEmojis = []string{"😀", "😂", "😍", "🥰", "😎", "🤔", "👍", "❤️", "🔥", "✨", "🎉", "💯"}

// AppState is the disposable client-side view of what is on screen: current
// session, chat directory, selected conversation with its message buffer,
// composer text and transient UI flags. It is never the source of truth and
// is rebuilt from the store on every navigation.
//
// Two paths append concurrently (the synchronous send/upload responses and
// the asynchronous live channel), so every mutation goes through one of the
// transition methods below and nothing else. Appends are deduplicated by
// message id, which closes the double-append race between the send response
// and the live event for the same row.
type AppState struct {
	mu sync.Mutex

	session  *Session
	chats    []models.ChatPreview
	selected *models.ChatPreview
	messages []models.Message
	seen     map[string]struct{}

	composer        string
	uploading       bool
	emojiPickerOpen bool
	fullscreenMedia string
}

func NewAppState() *AppState {
	return &AppState{seen: make(map[string]struct{})}
}

// SetSession records the authenticated identity.
func (s *AppState) SetSession(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
}

func (s *AppState) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// SetChats replaces the chat directory.
func (s *AppState) SetChats(chats []models.ChatPreview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = append([]models.ChatPreview(nil), chats...)
}

func (s *AppState) Chats() []models.ChatPreview {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatPreview(nil), s.chats...)
}

// SelectChat switches the open conversation. The previous buffer is
// discarded; history must be re-fetched and applied afterwards.
func (s *AppState) SelectChat(chat models.ChatPreview) {
	s.mu.Lock()
	defer s.mu.Unlock()
	selected := chat
	s.selected = &selected
	s.messages = nil
	s.seen = make(map[string]struct{})
}

// ClearSelection leaves the conversation view, dropping its buffer.
func (s *AppState) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.messages = nil
	s.seen = make(map[string]struct{})
}

// Selected returns the open conversation, if any.
func (s *AppState) Selected() (models.ChatPreview, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return models.ChatPreview{}, false
	}
	return *s.selected, true
}

// ApplyHistory installs a fetched history, tagged with the conversation key
// the fetch was issued for. A result arriving after the selection moved on is
// discarded: without this guard a slow response would corrupt the buffer of
// whichever conversation is open now. Reports whether the result was applied.
func (s *AppState) ApplyHistory(key models.ConversationKey, history []models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil || s.selected.Key != key {
		return false
	}

	s.messages = append([]models.Message(nil), history...)
	s.seen = make(map[string]struct{}, len(history))
	for _, m := range history {
		s.seen[m.ID] = struct{}{}
	}
	return true
}

// AppendMessage adds one message to the open conversation's buffer. Messages
// for other conversations and ids already present are ignored, whichever path
// they arrive on. Reports whether the message was appended.
func (s *AppState) AppendMessage(m models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil || !s.selected.Key.Matches(&m) {
		return false
	}
	if _, dup := s.seen[m.ID]; dup {
		return false
	}

	s.seen[m.ID] = struct{}{}
	s.messages = append(s.messages, m)
	return true
}

func (s *AppState) MessagesView() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages...)
}

func (s *AppState) SetComposer(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composer = text
}

func (s *AppState) Composer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.composer
}

func (s *AppState) ClearComposer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composer = ""
}

// InsertEmoji appends a picked emoji to the composer and closes the picker.
func (s *AppState) InsertEmoji(emoji string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.composer += emoji
	s.emojiPickerOpen = false
}

func (s *AppState) ToggleEmojiPicker() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emojiPickerOpen = !s.emojiPickerOpen
}

func (s *AppState) EmojiPickerOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.emojiPickerOpen
}

func (s *AppState) SetUploading(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading = active
}

func (s *AppState) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading
}

func (s *AppState) SetFullscreenMedia(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fullscreenMedia = url
}

func (s *AppState) FullscreenMedia() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fullscreenMedia
}

// Reset drops everything on logout.
func (s *AppState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.chats = nil
	s.selected = nil
	s.messages = nil
	s.seen = make(map[string]struct{})
	s.composer = ""
	s.uploading = false
	s.emojiPickerOpen = false
	s.fullscreenMedia = ""
}
