package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
)

// WatchEvents connects to the service's websocket and streams the names of
// task events ("task.created", ...). The channel closes when ctx ends or the
// connection drops.
func WatchEvents(ctx context.Context, baseURL, token string) (<-chan string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/api/ws")
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	headers := http.Header{}
	if token != "" {
		headers.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), headers)
	if err != nil {
		return nil, fmt.Errorf("%w: dial event websocket: %v", ErrTransport, err)
	}

	events := make(chan string, 64)
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	go func() {
		defer close(events)
		defer conn.Close()
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("Event stream closed: %v", err)
				}
				return
			}

			var msg struct {
				Type  string `json:"type"`
				Event string `json:"event"`
			}
			if err := json.Unmarshal(data, &msg); err != nil || msg.Type != "event" {
				continue
			}

			select {
			case events <- msg.Event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}
