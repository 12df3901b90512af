package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"promptbox-backend/internal/middleware"
	"promptbox-backend/internal/models"
)

// writeWait bounds each write to a page.
const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type displayReader interface {
	Get(ctx context.Context, sessionID uuid.UUID) (*models.DisplayState, error)
}

// client serializes writes; gorilla connections allow one writer at a time.
type client struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	writeWait time.Duration
}

// write closes the connection when a write fails or times out, which ends the
// read loop and unregisters the client.
func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.conn.Close()
		return err
	}
	return nil
}

// Hub pushes display updates to the pages of a session. With a Redis client,
// updates travel through pub/sub so any instance can serve the socket.
type Hub struct {
	mu          sync.RWMutex
	connections map[uuid.UUID][]*client
	redisClient *redis.Client
	sessions    *middleware.SessionAuth
	display     displayReader
	cancelFuncs map[uuid.UUID]context.CancelFunc
	writeWait   time.Duration
}

// NewHub creates a hub. redisClient may be nil for a single-instance setup.
func NewHub(redisClient *redis.Client, sessions *middleware.SessionAuth, display displayReader) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID][]*client),
		redisClient: redisClient,
		sessions:    sessions,
		display:     display,
		cancelFuncs: make(map[uuid.UUID]context.CancelFunc),
		writeWait:   writeWait,
	}
}

func displayChannel(sessionID uuid.UUID) string {
	return "display_updates:" + sessionID.String()
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.sessions.SessionFromRequest(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, writeWait: h.writeWait}
	h.registerConnection(sessionID, c)

	// Send the current slot so a reloaded page shows it right away
	if state, err := h.display.Get(r.Context(), sessionID); err == nil && state.Sequence > 0 {
		if data, err := json.Marshal(models.WSMessage{Type: models.WSTypeDisplayUpdate, Payload: state}); err == nil {
			c.write(data)
		}
	}

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(sessionID, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(sessionID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[sessionID] = append(h.connections[sessionID], c)

	// Start pub/sub subscription if this is the first connection for this session
	if h.redisClient != nil && len(h.connections[sessionID]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[sessionID] = cancel
		go h.subscribeToPubSub(ctx, sessionID)
	}

	log.Printf("WebSocket connected: session %s (total: %d)", sessionID, len(h.connections[sessionID]))
}

func (h *Hub) unregisterConnection(sessionID uuid.UUID, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	conns := h.connections[sessionID]
	for i, existing := range conns {
		if existing == c {
			h.connections[sessionID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}

	// If no more connections, cancel pub/sub
	if len(h.connections[sessionID]) == 0 {
		delete(h.connections, sessionID)
		if cancel, ok := h.cancelFuncs[sessionID]; ok {
			cancel()
			delete(h.cancelFuncs, sessionID)
		}
	}

	log.Printf("WebSocket disconnected: session %s", sessionID)
}

func (h *Hub) subscribeToPubSub(ctx context.Context, sessionID uuid.UUID) {
	pubsub := h.redisClient.Subscribe(ctx, displayChannel(sessionID))
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
			h.broadcast(sessionID, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(sessionID uuid.UUID, data []byte) {
	h.mu.RLock()
	conns := append([]*client(nil), h.connections[sessionID]...)
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.write(data); err != nil {
			log.Printf("WebSocket write failed: session %s: %v", sessionID, err)
		}
	}
}

// PublishDisplay sends an applied display state to every page of its session.
func (h *Hub) PublishDisplay(ctx context.Context, state models.DisplayState) {
	data, err := json.Marshal(models.WSMessage{Type: models.WSTypeDisplayUpdate, Payload: state})
	if err != nil {
		return
	}

	if h.redisClient == nil {
		h.broadcast(state.SessionID, data)
		return
	}
	if err := h.redisClient.Publish(ctx, displayChannel(state.SessionID), string(data)).Err(); err != nil {
		log.Printf("Failed to publish display update for session %s: %v", state.SessionID, err)
	}
}

// Connections reports how many sockets a session has open.
func (h *Hub) Connections(sessionID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[sessionID])
}
