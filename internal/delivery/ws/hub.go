package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

// client serializes writes; gorilla allows one concurrent writer per conn.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, msg)
}

type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]*client
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	log.Debug("[hub] init")
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]*client),
		log:   log,
	}
}

func (h *Hub) Register(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]*client)
		h.log.Debug("[hub] create room", zap.String("room", roomID))
	}

	h.rooms[roomID][conn] = &client{conn: conn}
	h.log.Debug("[hub] register", zap.String("room", roomID), zap.Int("conns", len(h.rooms[roomID])))
}

// Unregister closes conn and reports how many conns remain in the room.
func (h *Hub) Unregister(roomID string, conn *websocket.Conn) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.rooms[roomID]
	if !ok {
		return 0
	}

	if _, ok := conns[conn]; ok {
		delete(conns, conn)
		conn.Close()
		h.log.Debug("[hub] unregister", zap.String("room", roomID), zap.Int("conns", len(conns)))
	}

	left := len(conns)
	if left == 0 {
		delete(h.rooms, roomID)
		h.log.Debug("[hub] delete room", zap.String("room", roomID))
	}
	return left
}

func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) SendToRoom(roomID string, msg []byte) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[roomID]))
	for _, c := range h.rooms[roomID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	if len(clients) == 0 {
		h.log.Debug("[hub][SEND-SKIP] no active connections", zap.String("room", roomID))
		return
	}

	for _, c := range clients {
		if err := c.write(msg); err != nil {
			h.log.Warn("[hub][SEND-ERR]", zap.String("room", roomID), zap.Error(err))
		}
	}
}

// SendToConn writes to a single member of the room.
func (h *Hub) SendToConn(roomID string, conn *websocket.Conn, msg []byte) {
	h.mu.RLock()
	c, ok := h.rooms[roomID][conn]
	h.mu.RUnlock()
	if !ok {
		return
	}
	if err := c.write(msg); err != nil {
		h.log.Warn("[hub][SEND-ERR]", zap.String("room", roomID), zap.Error(err))
	}
}

// CloseRoom drops and closes every conn in the room.
func (h *Hub) CloseRoom(roomID string) {
	h.mu.Lock()
	conns := h.rooms[roomID]
	delete(h.rooms, roomID)
	h.mu.Unlock()

	for conn, c := range conns {
		c.mu.Lock()
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "conversation ended"),
			time.Now().Add(writeWait),
		)
		c.mu.Unlock()
		conn.Close()
	}
}

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}
