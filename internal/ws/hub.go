package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"market-chat-service/internal/observability"
)

// Broker is the pub/sub fan-out contract the channel router runs on.
// Topics are plain strings: a conversation name, or an account's private
// notification topic. An in-process Hub implements it; a message-broker
// backed implementation can replace it for multi-process fan-out.
type Broker interface {
	Subscribe(topic string, conn *websocket.Conn, info ConnInfo)
	Unsubscribe(topic string, conn *websocket.Conn)
	Broadcast(topic string, event interface{})
	Send(conn *websocket.Conn, event interface{}) error
}

// Hub maintains active websocket subscriptions per topic. Writes to one
// connection are serialized through a per-connection mutex; gorilla allows
// a single writer at a time.
type Hub struct {
	topics   map[string]map[*websocket.Conn]bool
	connInfo map[string]map[*websocket.Conn]ConnInfo
	writeMu  map[*websocket.Conn]*sync.Mutex
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		topics:   make(map[string]map[*websocket.Conn]bool),
		connInfo: make(map[string]map[*websocket.Conn]ConnInfo),
		writeMu:  make(map[*websocket.Conn]*sync.Mutex),
	}
}

var _ Broker = (*Hub)(nil)

// Subscribe registers a websocket connection on a topic.
func (h *Hub) Subscribe(topic string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[*websocket.Conn]bool)
	}
	h.topics[topic][conn] = true
	if _, ok := h.connInfo[topic]; !ok {
		h.connInfo[topic] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[topic][conn] = info
	if _, ok := h.writeMu[conn]; !ok {
		h.writeMu[conn] = &sync.Mutex{}
	}
}

// Unsubscribe removes a websocket connection from a topic.
func (h *Hub) Unsubscribe(topic string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.topics[topic]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.topics, topic)
		}
	}
	if infos, ok := h.connInfo[topic]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, topic)
		}
	}
	delete(h.writeMu, conn)
}

// Broadcast fans an event out to every connection subscribed to the topic.
// Connections that fail to take the write are closed and evicted.
func (h *Hub) Broadcast(topic string, event interface{}) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.topics[topic]))
	locks := make([]*sync.Mutex, 0, len(h.topics[topic]))
	for conn := range h.topics[topic] {
		conns = append(conns, conn)
		locks = append(locks, h.writeMu[conn])
	}
	h.mu.RUnlock()

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket marshal error: %v", err)
		return
	}
	for i, conn := range conns {
		err := h.lockedWrite(locks[i], conn, payload)
		if err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.publishWSError(topic, conn, err)
			h.Unsubscribe(topic, conn)
		}
	}
}

// Send writes an event to a single connection, serialized against broadcasts
// hitting the same connection.
func (h *Hub) Send(conn *websocket.Conn, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	h.mu.RLock()
	mu := h.writeMu[conn]
	h.mu.RUnlock()

	return h.lockedWrite(mu, conn, payload)
}

func (h *Hub) lockedWrite(mu *sync.Mutex, conn *websocket.Conn, payload []byte) error {
	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// SubscriberCount reports how many connections a topic currently has.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) publishWSError(topic string, conn *websocket.Conn, err error) {
	h.mu.RLock()
	info, ok := h.connInfo[topic][conn]
	h.mu.RUnlock()
	if !ok {
		return
	}

	payload := observability.WSEventPayload{
		Channel:      "conversation",
		Conversation: topic,
		Event:        "ws_error",
		ConnID:       info.ConnID,
		DurationMS:   time.Since(info.ConnectedAt).Milliseconds(),
		Reason:       err.Error(),
		AccountID:    info.AccountID,
		IP:           info.IP,
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.conversations", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("conversation", "ws_error")
}
