// Package ws tracks connected websocket clients and fans status updates out
// to them.
package ws

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RFC 6455 text frame opcode.
const textMessage = 1

// Conn is the subset of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Hub maintains the set of live connections on this instance. Clients get
// every update; per-client filtering happens client side.
//
// The underlying websocket connection supports at most one concurrent
// writer, so the hub keeps a mutex per client and serializes every
// WriteMessage through it. Broadcasts may arrive concurrently from the
// event dispatcher and the redis bridge.
type Hub struct {
	mu      sync.RWMutex
	clients map[Conn]*sync.Mutex
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[Conn]*sync.Mutex),
		logger:  logger,
	}
}

// Register adds a connection.
func (h *Hub) Register(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = &sync.Mutex{}
}

// Unregister removes a connection. Safe to call for an unknown connection.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// ClientCount reports connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast writes the message to every client. A connection that fails to
// accept the write is dropped and closed; slow or dead clients must not
// wedge the rest.
func (h *Hub) Broadcast(message []byte) {
	type target struct {
		conn    Conn
		writeMu *sync.Mutex
	}

	h.mu.RLock()
	targets := make([]target, 0, len(h.clients))
	for conn, writeMu := range h.clients {
		targets = append(targets, target{conn: conn, writeMu: writeMu})
	}
	h.mu.RUnlock()

	var failed []Conn
	for _, t := range targets {
		t.writeMu.Lock()
		err := t.conn.WriteMessage(textMessage, message)
		t.writeMu.Unlock()
		if err != nil {
			failed = append(failed, t.conn)
		}
	}
	for _, conn := range failed {
		h.Unregister(conn)
		_ = conn.Close()
		if h.logger != nil {
			h.logger.Debug("dropped unresponsive websocket client")
		}
	}
}

// RunRedisBridge consumes the pub/sub channel and relays each payload to
// local clients. Blocks until ctx is cancelled; run it in its own goroutine.
func (h *Hub) RunRedisBridge(ctx context.Context, client *redis.Client, channel string) {
	pubsub := client.Subscribe(ctx, channel)
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
			h.Broadcast([]byte(msg.Payload))
		}
	}
}
