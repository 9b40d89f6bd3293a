// handlers/events.go - Websocket feed of puzzle lifecycle events
//
// Clients subscribe to /ws/events and receive a JSON event whenever a
// puzzle opens, closes, or the daily post finds an empty queue. This
// is the announcement channel the chat adapter listens on.
package handlers

import (
	"log"
	"sync"

	"dailypuzzle/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// EventHub fans lifecycle events out to connected subscribers.
// Implements services.Notifier.
type EventHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

var eventHub = &EventHub{conns: make(map[*websocket.Conn]bool)}

// GetEventHub returns the process-wide hub.
func GetEventHub() *EventHub {
	return eventHub
}

// Notify broadcasts one event to every subscriber. Dead connections
// are dropped on write failure.
func (h *EventHub) Notify(e services.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		if err := conn.WriteJSON(e); err != nil {
			log.Printf("Event feed: dropping subscriber: %v", err)
			conn.Close()
			delete(h.conns, conn)
		}
	}
}

// BroadcastEvent pushes an event through the hub.
func BroadcastEvent(e services.Event) {
	eventHub.Notify(e)
}

func (h *EventHub) register(conn *websocket.Conn) {
	h.mu.Lock()
	h.conns[conn] = true
	h.mu.Unlock()
}

func (h *EventHub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
}

// UpgradeEvents gates the websocket route: non-upgrade requests 426.
func UpgradeEvents(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// EventsFeed holds the subscriber connection open. The read loop only
// exists to notice disconnects; subscribers never send anything.
var EventsFeed = websocket.New(func(conn *websocket.Conn) {
	eventHub.register(conn)
	defer func() {
		eventHub.unregister(conn)
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
})
