package client

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/famchat/famchat/internal/models"
)

// MediaGateway uploads one attachment blob and appends its metadata row.
type MediaGateway struct {
	objects ObjectStore
	store   RecordStore
	now     func() time.Time
}

func NewMediaGateway(objects ObjectStore, store RecordStore) *MediaGateway {
	return &MediaGateway{objects: objects, store: store, now: time.Now}
}

// ClassifyMIME maps a content type onto a message type by prefix.
func ClassifyMIME(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.TypeImage
	case strings.HasPrefix(contentType, "video/"):
		return models.TypeVideo
	default:
		return models.TypeDocument
	}
}

// StorageKey namespaces the blob under the sender and a nanosecond timestamp,
// keeping the original extension. No global lock needed to avoid collisions.
func StorageKey(senderID, filename string, now time.Time) string {
	return senderID + "/" + strconv.FormatInt(now.UnixNano(), 10) + path.Ext(filename)
}

// SendFile uploads the blob, then appends the metadata row carrying the
// resolved public URL, with the original filename as content. If the metadata
// insert fails after a successful upload the blob stays orphaned in the
// object store; that is accepted, there is no rollback.
func (g *MediaGateway) SendFile(ctx context.Context, key models.ConversationKey, senderID, filename string, src io.Reader, contentType string) (*models.Message, error) {
	storageKey := StorageKey(senderID, filename, g.now())

	mediaURL, err := g.objects.Upload(ctx, storageKey, src, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	receiverID := key.Peer(senderID)
	msg, err := g.store.InsertMessage(ctx, receiverID, filename, ClassifyMIME(contentType), mediaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return msg, nil
}
