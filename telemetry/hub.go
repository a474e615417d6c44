package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rustyeddy/marketmind/internal/logger"
)

// Event kinds pushed to websocket clients.
const (
	EventDecision = "decision"
	EventFill     = "fill"
)

// Event is the envelope written to every client.
type Event struct {
	Type string    `json:"type"`
	Time time.Time `json:"timestamp"`
	Data any       `json:"data"`
}

// Publisher accepts events for fan-out.
type Publisher interface {
	Publish(Event)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const writeWait = 5 * time.Second

// Hub fans events out to connected websocket clients. Publish never blocks:
// when the buffer is full the event is dropped.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	lock      sync.Mutex
	dropped   int
}

func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 64
	}
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, buffer),
	}
}

// Run delivers queued events until ctx is done, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.lock.Lock()
			for client := range h.clients {
				_ = client.Close()
				delete(h.clients, client)
			}
			h.lock.Unlock()
			return
		case message := <-h.broadcast:
			h.lock.Lock()
			for client := range h.clients {
				_ = client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					_ = client.Close()
					delete(h.clients, client)
				}
			}
			h.lock.Unlock()
		}
	}
}

func (h *Hub) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		logger.Warnf("telemetry: encode %s event: %v", ev.Type, err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.lock.Lock()
		h.dropped++
		h.lock.Unlock()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// Dropped returns how many events were discarded because the buffer was full.
func (h *Hub) Dropped() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.dropped
}

// ServeWS upgrades the request and registers the connection. Incoming
// messages are read and discarded so that closes are noticed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("telemetry: websocket upgrade: %v", err)
		return
	}
	h.lock.Lock()
	h.clients[conn] = true
	h.lock.Unlock()

	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.lock.Lock()
				if h.clients[conn] {
					delete(h.clients, conn)
					_ = conn.Close()
				}
				h.lock.Unlock()
				return
			}
		}
	}()
}
