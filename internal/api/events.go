package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"parkcore/internal/core"
)

const (
	clientBuffer = 64
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// EventHub fans committed changes out to websocket subscribers. It is a
// core.ChangeListener; slow subscribers lose events rather than blocking
// the engine.
type EventHub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	send chan EventMessage
}

var _ core.ChangeListener = (*EventHub)(nil)

// NewEventHub returns an empty hub. A nil logger uses slog.Default.
func NewEventHub(logger *slog.Logger) *EventHub {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventHub{
		logger: logger.With("component", "events"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// OnChange implements core.ChangeListener.
func (h *EventHub) OnChange(_ context.Context, event core.ChangeEvent) {
	msg := toEventMessage(event)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping event for slow subscriber", "event_id", msg.ID)
		}
	}
}

// Clients returns the number of connected subscribers.
func (h *EventHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *EventHub) register(c *hubClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *EventHub) unregister(c *hubClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// Handle upgrades GET /events and streams EventMessages until the client
// disconnects.
func (h *EventHub) Handle(c *gin.Context) {
	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = ws.Close() }()

	client := &hubClient{send: make(chan EventMessage, clientBuffer)}
	h.register(client)
	defer h.unregister(client)
	h.logger.Info("subscriber connected", "request_id", requestID(c))

	// the read loop only detects close frames and dead peers
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			h.logger.Info("subscriber disconnected", "request_id", requestID(c))
			return
		case <-c.Request.Context().Done():
			return
		case msg := <-client.send:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteJSON(msg); err != nil {
				h.logger.Warn("write event failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
