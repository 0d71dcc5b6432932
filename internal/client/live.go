package client

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/famchat/famchat/internal/feed"
	"github.com/famchat/famchat/internal/models"
)

// Subscribe opens the live update channel: a websocket onto the message
// table's insert feed, authenticated with the current session token. Every
// inserted row arrives on the returned channel; conversation filtering is the
// receiver's job. The channel closes when the connection drops or the
// teardown func runs.
func (r *REST) Subscribe(ctx context.Context) (<-chan models.Message, func(), error) {
	wsURL := websocketURL(r.baseURL) + "/ws?token=" + r.Token()

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, nil, err
	}
	if resp != nil {
		resp.Body.Close()
	}

	ch := make(chan models.Message, 64)
	done := make(chan struct{})
	var once sync.Once
	teardown := func() {
		once.Do(func() {
			close(done)
			conn.Close()
		})
	}

	go func() {
		defer teardown()
		defer close(ch)

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				select {
				case <-done:
				default:
					log.Printf("live: read error: %v", err)
				}
				return
			}

			ev := &feed.InsertEvent{}
			if err := json.Unmarshal(data, ev); err != nil {
				log.Printf("live: bad event payload: %v", err)
				continue
			}
			if ev.Type != "insert" || ev.Record == nil {
				continue
			}

			select {
			case ch <- *ev.Record:
			case <-done:
				return
			}
		}
	}()

	return ch, teardown, nil
}

func websocketURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://")
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://")
	}
	return baseURL
}
