package feed

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/famchat/famchat/internal/models"
)

func TestHubCreation(t *testing.T) {
	hub := NewHub(nil)
	if hub == nil {
		t.Fatal("NewHub returned nil")
	}
	if hub.clients == nil {
		t.Error("Hub clients map is nil")
	}
	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}
	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}
	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := &Client{
		userID: "user-1",
		hub:    hub,
		send:   make(chan *InsertEvent, 256),
	}

	hub.register <- client
	time.Sleep(10 * time.Millisecond)

	if got := hub.SubscriberCount(); got != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", got)
	}

	hub.unregister <- client
	time.Sleep(10 * time.Millisecond)

	if got := hub.SubscriberCount(); got != 0 {
		t.Fatalf("SubscriberCount = %d, want 0", got)
	}
}

func TestBroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	first := &Client{userID: "user-1", hub: hub, send: make(chan *InsertEvent, 256)}
	second := &Client{userID: "user-2", hub: hub, send: make(chan *InsertEvent, 256)}
	hub.register <- first
	hub.register <- second
	time.Sleep(10 * time.Millisecond)

	msg := &models.Message{
		ID:          "msg-1",
		SenderID:    "user-1",
		ReceiverID:  "user-2",
		Content:     "Ciao",
		MessageType: models.TypeText,
		CreatedAt:   time.Now(),
	}
	hub.BroadcastInsert(msg)

	for _, client := range []*Client{first, second} {
		select {
		case ev := <-client.send:
			if ev.Type != "insert" || ev.Table != "messages" {
				t.Errorf("event envelope = %q/%q", ev.Type, ev.Table)
			}
			if ev.Record.ID != "msg-1" {
				t.Errorf("record id = %q", ev.Record.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("user %s did not receive the insert event", client.userID)
		}
	}
}

func TestWebSocketDelivery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := NewHub(nil)
	go hub.Run()

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		hub.HandleWebSocket(c)
	})

	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	// Wait for the subscription to land before broadcasting
	deadline := time.Now().Add(time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastInsert(&models.Message{
		ID:          "msg-7",
		SenderID:    "user-2",
		ReceiverID:  "user-1",
		Content:     "Ciao Marco",
		MessageType: models.TypeText,
		CreatedAt:   time.Now(),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}

	ev := &InsertEvent{}
	if err := json.Unmarshal(data, ev); err != nil {
		t.Fatalf("bad event payload: %v", err)
	}
	if ev.Record == nil || ev.Record.Content != "Ciao Marco" {
		t.Errorf("unexpected record: %+v", ev.Record)
	}
}

func TestUnsubscribeOnClose(t *testing.T) {
	gin.SetMode(gin.TestMode)

	hub := NewHub(nil)
	go hub.Run()

	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		hub.HandleWebSocket(c)
	})

	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for hub.SubscriberCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn.Close()

	deadline = time.Now().Add(2 * time.Second)
	for hub.SubscriberCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscription not released after close")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
