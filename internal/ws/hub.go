package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans game events out to spectator websocket clients, keyed by game id.
type Hub struct {
	mu    sync.RWMutex
	games map[string]map[*websocket.Conn]bool
}

func NewHub() *Hub {
	return &Hub{
		games: make(map[string]map[*websocket.Conn]bool),
	}
}

func (h *Hub) AddConnection(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.games[gameID] == nil {
		h.games[gameID] = make(map[*websocket.Conn]bool)
	}
	h.games[gameID][conn] = true
	log.Printf("ws: client connected to game %s (total: %d)", gameID, len(h.games[gameID]))
}

func (h *Hub) RemoveConnection(gameID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.games[gameID]; ok {
		delete(conns, conn)
		conn.Close()
		if len(conns) == 0 {
			delete(h.games, gameID)
		}
		log.Printf("ws: client disconnected from game %s", gameID)
	}
}

func (h *Hub) Broadcast(gameID string, message WSMessage) {
	// Write lock: failed clients are dropped from the map during the fan-out.
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.games[gameID]
	if !ok {
		return
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("ws: marshal error: %v", err)
		return
	}

	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("ws: write error: %v", err)
			conn.Close()
			delete(conns, conn)
		}
	}
}
