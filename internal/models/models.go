package models

import "time"

// Message types as stored in the messages table.
const (
	TypeText     = "text"
	TypeImage    = "image"
	TypeVideo    = "video"
	TypeDocument = "document"
)

// Identity is a registered account: an opaque id plus the human display name.
// Email is synthetic (derived from the name), never shown to users.
type Identity struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Message is one row of the append-only message log. MediaURL is set iff
// MessageType is not "text".
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	ReceiverID  string    `json:"receiver_id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	MediaURL    string    `json:"media_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ChatPreview is one selectable entry in the chat directory. UnreadCount and
// LastMessage are placeholders; nothing populates them from the store.
type ChatPreview struct {
	Key         ConversationKey `json:"key"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Avatar      string          `json:"avatar"`
	LastMessage string          `json:"last_message,omitempty"`
	UnreadCount int             `json:"unread_count"`
}

// ConversationKey is the canonical, order-independent pairing of two identity
// ids. It is derived, never stored.
type ConversationKey struct {
	Low  string `json:"low"`
	High string `json:"high"`
}

// NewConversationKey builds the canonical key for the unordered pair (a, b).
// The same pair yields the same key regardless of argument order.
func NewConversationKey(a, b string) ConversationKey {
	if b < a {
		a, b = b, a
	}
	return ConversationKey{Low: a, High: b}
}

// Contains reports whether id is one of the two participants.
func (k ConversationKey) Contains(id string) bool {
	return id == k.Low || id == k.High
}

// Peer returns the participant that is not selfID.
func (k ConversationKey) Peer(selfID string) string {
	if selfID == k.Low {
		return k.High
	}
	return k.Low
}

// Matches reports whether a message belongs to this conversation: both its
// endpoints must be participants.
func (k ConversationKey) Matches(m *Message) bool {
	return k.Contains(m.SenderID) && k.Contains(m.ReceiverID)
}
