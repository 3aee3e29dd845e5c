package handler

import (
	"net/http"

	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/service"
	"github.com/nazirsaif/nexus-sub000/internal/signal"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// SignalingHandler upgrades authorized clients onto the room relay.
type SignalingHandler struct {
	hub      *signal.Hub
	tokens   *service.TokenService
	calls    *service.VideoCallService
	upgrader websocket.Upgrader
}

func NewSignalingHandler(hub *signal.Hub, tokens *service.TokenService, calls *service.VideoCallService) *SignalingHandler {
	return &SignalingHandler{
		hub:    hub,
		tokens: tokens,
		calls:  calls,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Cross-origin is enforced at the HTTP layer by the CORS wrapper.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Serve handles GET /ws/calls/:roomId. Browsers cannot set headers on a
// websocket dial, so the access token arrives as a query parameter.
func (h *SignalingHandler) Serve(c *gin.Context) {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		c.JSON(http.StatusUnauthorized, model.NewErrorResponse("Missing authentication token", ""))
		return
	}
	claims, err := h.tokens.ParseAccessToken(tokenStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, model.NewErrorResponse("Invalid or expired token", ""))
		return
	}
	userID, err := util.ParseObjectID(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, model.NewErrorResponse("Invalid token claims", ""))
		return
	}

	roomID := c.Param("roomId")
	if _, err := h.calls.Authorize(c.Request.Context(), roomID, userID); err != nil {
		respondError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	peer := signal.NewPeer(userID, roomID, conn)
	h.hub.Serve(c.Request.Context(), peer)
}
