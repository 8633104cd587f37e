package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/HerbHall/fleetpulse/internal/auth"
	"github.com/HerbHall/fleetpulse/internal/event"
	"github.com/HerbHall/fleetpulse/internal/status"
	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// TokenValidator checks WebSocket access tokens (consumer-side interface,
// satisfied by auth.Service). Nil disables authentication on the stream.
type TokenValidator interface {
	ValidateToken(tokenString string) (*auth.Claims, error)
}

// Handler provides the WebSocket endpoint for real-time status updates.
type Handler struct {
	hub    *Hub
	cache  *status.Cache
	tokens TokenValidator
	logger *zap.Logger
}

// NewHandler creates a WebSocket handler and subscribes to status events.
func NewHandler(cache *status.Cache, bus *event.Bus, tokens TokenValidator, logger *zap.Logger) *Handler {
	h := &Handler{
		hub:    NewHub(logger),
		cache:  cache,
		tokens: tokens,
		logger: logger,
	}
	h.subscribeToEvents(bus)
	return h
}

// RegisterRoutes registers WebSocket routes on the server mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/ws/status", h.handleStatusStream)
}

// ClientCount returns the number of connected stream clients.
func (h *Handler) ClientCount() int {
	return h.hub.ClientCount()
}

// handleStatusStream upgrades the connection and streams status events. The
// client receives one status.snapshot message on connect, then incremental
// updates.
func (h *Handler) handleStatusStream(w http.ResponseWriter, r *http.Request) {
	// Validate JWT from query parameter (browser WS API doesn't support headers).
	username := "anonymous"
	if h.tokens != nil {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token parameter", http.StatusUnauthorized)
			return
		}
		claims, err := h.tokens.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		username = claims.Username
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// Any origin is allowed; the JWT gates access.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Error("websocket accept failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:     conn,
		username: username,
		send:     make(chan Message, 256),
		logger:   h.logger,
	}

	h.hub.Register(client)

	// Seed the client with the current cache state.
	client.send <- Message{
		Type:      MessageSnapshot,
		Timestamp: time.Now(),
		Data:      snapshotData(h.cache.Snapshot()),
	}

	ctx := r.Context()
	done := make(chan struct{})
	go func() {
		client.writePump(ctx)
		close(done)
	}()

	// readPump blocks until the client disconnects.
	client.readPump(ctx)

	h.hub.Unregister(client)
	conn.Close(websocket.StatusNormalClosure, "")
	<-done
}

// subscribeToEvents forwards status bus events to all connected clients.
func (h *Handler) subscribeToEvents(bus *event.Bus) {
	if bus == nil {
		return
	}

	bus.Subscribe(status.TopicDeviceUpdated, func(_ context.Context, ev event.Event) {
		upd, ok := ev.Payload.(*status.DeviceUpdatedEvent)
		if !ok {
			return
		}
		h.hub.Broadcast(Message{
			Type:      MessageDeviceUpdated,
			Timestamp: ev.Timestamp,
			Data: DeviceUpdatedData{
				ContactID: upd.ContactID,
				Device:    upd.Info,
				Flipped:   upd.Flipped,
			},
		})
	})

	bus.Subscribe(status.TopicCleared, func(_ context.Context, ev event.Event) {
		h.hub.Broadcast(Message{
			Type:      MessageCleared,
			Timestamp: ev.Timestamp,
		})
	})

	h.logger.Info("subscribed to status events for WebSocket broadcasting")
}
