package client

import (
	"context"
	"errors"
	"strings"

	"github.com/famchat/famchat/internal/models"
)

// ErrEmptyMessage rejects blank text sends locally.
var ErrEmptyMessage = errors.New("empty message")

// MessageGateway reads and appends the two-party message log.
type MessageGateway struct {
	store RecordStore
}

func NewMessageGateway(store RecordStore) *MessageGateway {
	return &MessageGateway{store: store}
}

// LoadHistory fetches the full history of the conversation, ascending by
// creation time. Which participant asks does not matter: the store matches
// both orderings of the pair.
func (g *MessageGateway) LoadHistory(ctx context.Context, key models.ConversationKey, selfID string) ([]models.Message, error) {
	return g.store.Messages(ctx, key.Peer(selfID))
}

// SendText appends one text message and returns the persisted record with its
// server-assigned id and timestamp. On error nothing was appended; the caller
// keeps its composer input for a retry.
func (g *MessageGateway) SendText(ctx context.Context, key models.ConversationKey, senderID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}

	receiverID := key.Peer(senderID)
	return g.store.InsertMessage(ctx, receiverID, content, models.TypeText, "")
}
