package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Feed message types broadcast to connected admin dashboards
const (
	FeedDonationCreated  = "donation_created"
	FeedDonationVerified = "donation_verified"
	FeedDonationDeleted  = "donation_deleted"
)

// FeedMessage represents a message on the admin live feed
type FeedMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// feedSession wraps a connection with a write lock. gorilla/websocket
// allows at most one concurrent writer per connection, and Broadcast may
// run from several handler goroutines at once.
type feedSession struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (s *feedSession) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// FeedHub manages WebSocket connections from admin dashboards and fans
// donation lifecycle events out to all of them
type FeedHub struct {
	mu          sync.RWMutex
	connections map[string]*feedSession
}

// NewFeedHub creates a new admin feed hub
func NewFeedHub() *FeedHub {
	return &FeedHub{
		connections: make(map[string]*feedSession),
	}
}

// Register registers a new admin session connection
func (h *FeedHub) Register(sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[sessionID]; exists {
		existing.conn.Close()
	}
	h.connections[sessionID] = &feedSession{conn: conn}

	log.Info().Str("session_id", sessionID).Msg("Admin feed connection registered")
}

// Unregister removes an admin session connection
func (h *FeedHub) Unregister(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if session, exists := h.connections[sessionID]; exists {
		session.conn.Close()
		delete(h.connections, sessionID)
		log.Info().Str("session_id", sessionID).Msg("Admin feed connection unregistered")
	}
}

// Sessions returns the number of connected admin sessions
func (h *FeedHub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// Broadcast sends a message to every connected admin session. Connections
// that fail the write are dropped.
func (h *FeedHub) Broadcast(message FeedMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Error().Err(err).Str("type", message.Type).Msg("Failed to marshal feed message")
		return
	}

	h.mu.RLock()
	sessions := make(map[string]*feedSession, len(h.connections))
	for id, session := range h.connections {
		sessions[id] = session
	}
	h.mu.RUnlock()

	for sessionID, session := range sessions {
		if err := session.write(data); err != nil {
			log.Error().
				Err(err).
				Str("session_id", sessionID).
				Str("type", message.Type).
				Msg("Failed to send feed message, dropping connection")
			h.Unregister(sessionID)
		}
	}
}
