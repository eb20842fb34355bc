// Package realtime pushes engine events to connected UI clients over
// websockets. The engine never waits on a client: slow consumers are dropped.
package realtime

import (
	"encoding/json"

	"github.com/vibing2/vibing-desktop/internal/events"
	"github.com/vibing2/vibing-desktop/internal/logging"
)

// Message is the wire envelope for every event pushed to the UI.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	shutdown   chan struct{}
}

// NewHub creates a hub and starts its run loop.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		shutdown:   make(chan struct{}),
	}
	go h.run()
	return h
}

// Bridge subscribes the hub to the full event stream and returns the
// unsubscribe function. Every engine event becomes a {type, data} frame.
func (h *Hub) Bridge(subject *events.Subject) func() {
	return subject.Subscribe(events.TopicAll, func(topic string, payload any) {
		h.Broadcast(&Message{Type: topic, Data: payload})
	})
}

// Broadcast sends msg to every connected client. Drops the message if the
// broadcast buffer is full rather than blocking the emitter.
func (h *Hub) Broadcast(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Errorf("realtime: marshal broadcast: %v", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		logging.Warnf("realtime: broadcast buffer full, dropping %s", msg.Type)
	}
}

// Close disconnects all clients and stops the run loop.
func (h *Hub) Close() {
	close(h.shutdown)
}

func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case data := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Slow consumer: drop it rather than stall everyone.
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-h.shutdown:
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			return
		}
	}
}
