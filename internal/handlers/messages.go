package handlers

import (
	"database/sql"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/famchat/famchat/internal/models"
	"github.com/famchat/famchat/internal/push"
	"github.com/famchat/famchat/internal/storage"
)

// InsertBroadcaster feeds newly inserted message rows into the change feed.
type InsertBroadcaster interface {
	BroadcastInsert(m *models.Message)
}

type MessageHandler struct {
	db            *sql.DB
	broadcaster   InsertBroadcaster
	notifier      *push.Notifier
	store         *storage.Store
	maxUploadSize int64
}

func NewMessageHandler(db *sql.DB, broadcaster InsertBroadcaster, notifier *push.Notifier, store *storage.Store, maxUploadSize int64) *MessageHandler {
	return &MessageHandler{
		db:            db,
		broadcaster:   broadcaster,
		notifier:      notifier,
		store:         store,
		maxUploadSize: maxUploadSize,
	}
}

// GetProfiles returns every registered identity except the caller, newest
// first. This is the backing query of the chat directory.
func (h *MessageHandler) GetProfiles(c *gin.Context) {
	userID := c.GetString("user_id")

	rows, err := h.db.Query(`
		SELECT id, email, display_name, created_at
		FROM profiles
		WHERE id != ?
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": __("failed to fetch profiles")})
		return
	}
	defer rows.Close()

	profiles := []*models.Identity{}
	for rows.Next() {
		p := &models.Identity{}
		if err := rows.Scan(&p.ID, &p.Email, &p.DisplayName, &p.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": __("failed to fetch profiles")})
			return
		}
		profiles = append(profiles, p)
	}

	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// GetMessages returns the full history between the caller and peer_id,
// matching either ordering of the pair, ascending by creation time. No
// pagination: the history of a trusted-circle chat stays small.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	userID := c.GetString("user_id")

	peerID := c.Query("peer_id")
	if peerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": __("peer_id query parameter required")})
		return
	}

	rows, err := h.db.Query(`
		SELECT id, sender_id, receiver_id, content, message_type, media_url, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, rowid ASC
	`, userID, peerID, peerID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": __("failed to fetch messages")})
		return
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		msg := &models.Message{}
		if err := rows.Scan(&msg.ID, &msg.SenderID, &msg.ReceiverID, &msg.Content, &msg.MessageType, &msg.MediaURL, &msg.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": __("failed to scan message")})
			return
		}
		messages = append(messages, msg)
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

type SendMessageRequest struct {
	ReceiverID  string `json:"receiver_id" binding:"required"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	MediaURL    string `json:"media_url"`
}

// SendMessage appends one row to the message log and returns the persisted
// record with its server-assigned id and timestamp. Rows are never mutated or
// deleted afterwards.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	userID := c.GetString("user_id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": __("invalid request")})
		return
	}

	if req.MessageType == "" {
		req.MessageType = models.TypeText
	}

	switch req.MessageType {
	case models.TypeText:
		req.MediaURL = ""
		if strings.TrimSpace(req.Content) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": __("empty message")})
			return
		}
	case models.TypeImage, models.TypeVideo, models.TypeDocument:
		if req.MediaURL == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": __("media_url required for media messages")})
			return
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": __("invalid message type")})
		return
	}

	if req.ReceiverID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": __("cannot message yourself")})
		return
	}

	var receiverExists bool
	if err := h.db.QueryRow("SELECT EXISTS(SELECT 1 FROM profiles WHERE id = ?)", req.ReceiverID).Scan(&receiverExists); err != nil || !receiverExists {
		c.JSON(http.StatusNotFound, gin.H{"error": __("receiver not found")})
		return
	}

	msg := &models.Message{
		ID:          uuid.NewString(),
		SenderID:    userID,
		ReceiverID:  req.ReceiverID,
		Content:     req.Content,
		MessageType: req.MessageType,
		MediaURL:    req.MediaURL,
		CreatedAt:   time.Now().UTC(),
	}

	_, err := h.db.Exec(`
		INSERT INTO messages (id, sender_id, receiver_id, content, message_type, media_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.SenderID, msg.ReceiverID, msg.Content, msg.MessageType, msg.MediaURL, msg.CreatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": __("failed to send message")})
		return
	}

	if h.broadcaster != nil {
		h.broadcaster.BroadcastInsert(msg)
	}
	h.notifyReceiver(msg)

	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) notifyReceiver(msg *models.Message) {
	if h.notifier == nil {
		return
	}
	var senderName string
	if err := h.db.QueryRow("SELECT display_name FROM profiles WHERE id = ?", msg.SenderID).Scan(&senderName); err != nil {
		senderName = "?"
	}
	h.notifier.SendNewMessageNotification(msg.ReceiverID, senderName)
}

// UploadFile stores one attachment blob and returns its public URL. The
// storage key is chosen by the client and must live under the caller's own
// namespace; the metadata row is a separate insert, so an orphaned blob is
// possible when that later insert fails. That is accepted, not rolled back.
func (h *MessageHandler) UploadFile(c *gin.Context) {
	userID := c.GetString("user_id")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": __("file is required")})
		return
	}
	defer file.Close()

	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": __("file too large")})
		return
	}

	key := c.PostForm("key")
	if key == "" {
		// Same shape the client would pick: sender namespace, nanosecond
		// timestamp, original extension.
		key = userID + "/" + strconv.FormatInt(time.Now().UnixNano(), 10) + path.Ext(header.Filename)
	}

	if !storage.ValidKey(key) || !strings.HasPrefix(key, userID+"/") {
		c.JSON(http.StatusBadRequest, gin.H{"error": __("invalid storage key")})
		return
	}

	if _, err := h.store.Upload(key, file); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": __("failed to store file")})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key":  key,
		"url":  h.store.PublicURL(key),
		"size": header.Size,
	})
}

type PushSubscribeRequest struct {
	Endpoint  string `json:"endpoint" binding:"required"`
	KeyP256dh string `json:"p256dh" binding:"required"`
	KeyAuth   string `json:"auth" binding:"required"`
}

// SubscribePush stores a Web Push subscription for the caller.
func (h *MessageHandler) SubscribePush(c *gin.Context) {
	userID := c.GetString("user_id")

	if h.notifier == nil {
		c.JSON(http.StatusOK, gin.H{"status": "disabled"})
		return
	}

	var req PushSubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": __("invalid subscription")})
		return
	}

	err := h.notifier.SaveSubscription(userID, push.Subscription{
		Endpoint:  req.Endpoint,
		KeyP256dh: req.KeyP256dh,
		KeyAuth:   req.KeyAuth,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": __("failed to save subscription")})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "subscribed", "vapid_public_key": h.notifier.VAPIDPublicKey()})
}
