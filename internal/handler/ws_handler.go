package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/middleware"
	"github.com/titanmarket/titanmarket-backend/internal/ws"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
)

// WSHandler upgrades authenticated requests to the real-time event stream
type WSHandler struct {
	hub      *ws.Hub
	origins  map[string]struct{}
	upgrader websocket.Upgrader
}

// NewWSHandler creates a WSHandler. allowedOrigins is the comma separated CORS
// origin list; when empty every origin is accepted.
func NewWSHandler(hub *ws.Hub, allowedOrigins string) *WSHandler {
	h := &WSHandler{hub: hub, origins: make(map[string]struct{})}
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			h.origins[o] = struct{}{}
		}
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.originAllowed,
	}
	return h
}

func (h *WSHandler) originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.origins) == 0 {
		return true
	}
	_, ok := h.origins[strings.TrimRight(origin, "/")]
	return ok
}

// Connect handles GET /ws
// @Summary Real-time message and conversation events
// @Description Pushes message.created and conversation.updated events. Pass the access token as ?token= when headers cannot be set.
// @Tags messages
// @Param token query string false "Access token"
// @Security BearerAuth
// @Router /ws [get]
func (h *WSHandler) Connect(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	if !h.originAllowed(c.Request) {
		common.ErrorResponse(c, http.StatusForbidden, "Origin not allowed", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		pkglogger.GetLogger().Debug().Err(err).Uint64("user_id", userID).Msg("ws: upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
