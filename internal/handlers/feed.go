package handlers

import (
	"net/http"

	"ngo-site-backend/internal/services"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the admin dashboard is served from another origin
	},
}

// FeedHandler handles the admin live feed WebSocket endpoint
type FeedHandler struct {
	hub          *services.FeedHub
	adminService *services.AdminService
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(hub *services.FeedHub, adminService *services.AdminService) *FeedHandler {
	return &FeedHandler{
		hub:          hub,
		adminService: adminService,
	}
}

// HandleFeed handles GET /ws/admin-feed. The token travels as a query
// parameter because browsers cannot set headers on WebSocket upgrades.
func (h *FeedHandler) HandleFeed(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	adminID, err := h.adminService.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade feed connection")
		return
	}

	// One admin may keep several dashboard tabs open, each gets its own
	// session in the hub.
	sessionID := uuid.New().String()
	h.hub.Register(sessionID, conn)
	defer h.hub.Unregister(sessionID)

	log.Info().
		Str("admin_id", adminID).
		Str("session_id", sessionID).
		Msg("Admin feed connection established")

	// The feed is one-way. Drain incoming frames so pings are answered and
	// closes are noticed.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("session_id", sessionID).Msg("Feed connection error")
			}
			return
		}
	}
}
