package server

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// subscriber is one realtime connection. All frames leave through the outbox
// channel and a single writer goroutine, which keeps per-connection delivery
// FIFO and gives gorilla its one-writer guarantee.
type subscriber struct {
	conn   *websocket.Conn
	outbox chan []byte
	closed bool
}

// hub fans events out to the players group and the privileged bot group.
// Publish never blocks on a subscriber: the outbox is buffered and a
// subscriber that cannot keep up is dropped.
type hub struct {
	mu     sync.Mutex
	groups map[string]map[*subscriber]struct{}
}

func newHub() *hub {
	return &hub{
		groups: make(map[string]map[*subscriber]struct{}),
	}
}

func (h *hub) Subscribe(group string, conn *websocket.Conn) *subscriber {
	sub := &subscriber{
		conn:   conn,
		outbox: make(chan []byte, 32),
	}
	h.mu.Lock()
	members := h.groups[group]
	if members == nil {
		members = make(map[*subscriber]struct{})
		h.groups[group] = members
	}
	members[sub] = struct{}{}
	h.mu.Unlock()
	go sub.writeLoop()
	return sub
}

func (h *hub) Unsubscribe(group string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(group, sub)
}

func (h *hub) dropLocked(group string, sub *subscriber) {
	members := h.groups[group]
	if members != nil {
		delete(members, sub)
		if len(members) == 0 {
			delete(h.groups, group)
		}
	}
	if !sub.closed {
		sub.closed = true
		close(sub.outbox)
	}
	_ = sub.conn.Close()
}

// Publish delivers payload to every current member of group, in publish
// order per subscriber. A broken or slow member is dropped without
// disturbing the rest of the fan-out.
func (h *hub) Publish(group string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("broadcast marshal failed group=%s error=%v", group, err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.groups[group] {
		if sub.closed {
			continue
		}
		select {
		case sub.outbox <- data:
		default:
			log.Printf("dropping slow subscriber group=%s", group)
			h.dropLocked(group, sub)
		}
	}
}

// Send queues a direct reply to one subscriber, through the same outbox as
// broadcasts so replies and fan-out stay ordered.
func (h *hub) Send(sub *subscriber, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub.closed {
		return
	}
	select {
	case sub.outbox <- data:
	default:
	}
}

func (sub *subscriber) writeLoop() {
	for data := range sub.outbox {
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
