package feed

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/famchat/famchat/internal/models"
)

// redisChannel is the pub/sub channel shared by all instances when a redis
// bridge is configured.
const redisChannel = "famchat:messages"

// InsertEvent is one change-feed notification: a row inserted into the
// messages table. Every active subscriber receives every event; filtering
// against the selected conversation happens client-side.
type InsertEvent struct {
	Type   string          `json:"type"`
	Table  string          `json:"table"`
	Record *models.Message `json:"record"`
}

type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan *InsertEvent
	deliver    chan *InsertEvent
	register   chan *Client
	unregister chan *Client
	rdb        *redis.Client
	mu         sync.RWMutex
}

type Client struct {
	userID string
	conn   *websocket.Conn
	hub    *Hub
	send   chan *InsertEvent
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// In production, validate origin
		return true
	},
}

// NewHub creates an in-process change feed. If rdb is non-nil, events are
// published through redis so every instance sharing the address sees every
// insert; pass nil for single-instance fan-out.
func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan *InsertEvent, 256),
		deliver:    make(chan *InsertEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
	}
}

// BroadcastInsert feeds one inserted message row into the change feed.
func (h *Hub) BroadcastInsert(m *models.Message) {
	ev := &InsertEvent{Type: "insert", Table: "messages", Record: m}
	select {
	case h.broadcast <- ev:
	default:
		log.Printf("feed: broadcast channel full, dropping event %s", m.ID)
	}
}

// SubscriberCount reports how many channels are currently attached.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = struct{}{}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("feed: user %s subscribed (total: %d)", client.userID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			log.Printf("feed: user %s unsubscribed (total: %d)", client.userID, total)

		case ev := <-h.broadcast:
			if h.rdb != nil {
				h.publishRedis(ev)
			} else {
				h.fanOut(ev)
			}

		case ev := <-h.deliver:
			h.fanOut(ev)
		}
	}
}

func (h *Hub) fanOut(ev *InsertEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- ev:
		default:
			log.Printf("feed: send channel full for user %s", client.userID)
		}
	}
}

func (h *Hub) publishRedis(ev *InsertEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("feed: marshal event: %v", err)
		return
	}
	if err := h.rdb.Publish(context.Background(), redisChannel, data).Err(); err != nil {
		log.Printf("feed: redis publish: %v", err)
	}
}

// RunRedisBridge subscribes to the shared redis channel and feeds received
// events into local fan-out. Run it in its own goroutine when redis is
// configured; it returns when ctx is done.
func (h *Hub) RunRedisBridge(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, redisChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			ev := &InsertEvent{}
			if err := json.Unmarshal([]byte(msg.Payload), ev); err != nil {
				log.Printf("feed: bad redis payload: %v", err)
				continue
			}
			select {
			case h.deliver <- ev:
			default:
				log.Printf("feed: deliver channel full, dropping event")
			}
		}
	}
}

// HandleWebSocket upgrades an authenticated request into a feed subscription.
// One subscription per session; the connection is torn down on close.
func (h *Hub) HandleWebSocket(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": __("unauthorized")})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("feed: upgrade error: %v", err)
		return
	}

	client := &Client{
		userID: userID.(string),
		conn:   conn,
		hub:    h,
		send:   make(chan *InsertEvent, 256),
	}

	h.register <- client

	go client.readPump()
	go client.writePump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	// Subscribers never send application data; the read loop only services
	// control frames and detects closure.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("feed: read error: %v", err)
			}
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
