package signaling

import (
	"log/slog"
	"net/http"

	"vidstream-platform/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Handler upgrades authenticated HTTP requests to signaling connections.
type Handler struct {
	relay    *Relay
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(relay *Relay, log *slog.Logger) *Handler {
	return &Handler{
		relay: relay,
		log:   log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The bearer token is the access control; the browser clients are
			// served from multiple first-party origins.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws. Requires auth middleware upstream.
func (h *Handler) Serve(c *gin.Context) {
	userID, err := auth.UserID(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response.
		h.log.Warn("websocket upgrade failed", "user_id", userID, "err", err)
		return
	}

	client := NewClient(h.relay, conn, userID, h.log)
	h.log.Info("signaling connection opened", "user_id", userID)
	client.Run()
	h.log.Info("signaling connection closed", "user_id", userID)
}
