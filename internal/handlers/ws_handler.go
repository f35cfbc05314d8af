package handlers

import (
	"net/http"

	"github.com/Dias221467/Questline/internal/cache"
	"github.com/Dias221467/Questline/internal/engine"
	"github.com/Dias221467/Questline/internal/realtime"
	"github.com/Dias221467/Questline/internal/services"
	"github.com/Dias221467/Questline/pkg/logger"
	"github.com/Dias221467/Questline/pkg/middleware"
	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WSHandler upgrades /ws and streams the user's journey view. The first
// frame is the current view; later frames follow every mutation.
type WSHandler struct {
	Hub       *realtime.Hub
	Journeys  *services.JourneyService
	Sessions  *engine.Registry
	JWTSecret string
	Denylist  cache.Denylist
	Upgrader  websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub, journeys *services.JourneyService, sessions *engine.Registry, secret string, denylist cache.Denylist, origins []string) *WSHandler {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &WSHandler{
		Hub:       hub,
		Journeys:  journeys,
		Sessions:  sessions,
		JWTSecret: secret,
		Denylist:  denylist,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
	}
}

// GET /ws?token=...
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	claims, err := middleware.Authenticate(r.Context(), token, h.JWTSecret, h.Denylist)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := h.Hub.Register(userID, conn)
	view, err := h.Journeys.View(r.Context(), h.Sessions.For(userID))
	if err != nil {
		logger.Log.WithError(err).Warn("Failed to load initial view")
	} else {
		h.Hub.PublishView(userID, view)
	}
	client.ReadLoop()
}
