package realtime

import (
	"net/http"

	"github.com/NijasTp/trainup-sub002/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type Handler struct {
	gateway  *Gateway
	upgrader websocket.Upgrader
}

func NewHandler(gateway *Gateway, allowedOrigin string) *Handler {
	return &Handler{
		gateway: gateway,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// Connect godoc
// @Summary      Open the realtime socket
// @Description  Upgrades to a websocket after validating the session token from the auth_token cookie or token query param.
// @Tags         realtime
// @Success      101
// @Failure      401  {object}  gin.H
// @Router       /ws [get]
func (h *Handler) Connect(c *gin.Context) {
	token := extractToken(c)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing session token"})
		return
	}

	// Authentication happens before the upgrade, so a bad session never
	// reaches any room.
	account, err := h.gateway.Authenticate(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication failed"})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Errorf("Websocket upgrade failed for user %d: %v", account.ID, err)
		return
	}

	client := NewClient(ws, account.ID, account.Role)
	client.TokenVersion = account.TokenVersion
	logger.Infof("Socket connected: user %d (%s)", account.ID, account.Role)

	g := h.gateway
	go func() {
		g.ServeClient(client)
		logger.Infof("Socket disconnected: user %d", account.ID)
	}()
}

func extractToken(c *gin.Context) string {
	if cookie, err := c.Cookie("auth_token"); err == nil && cookie != "" {
		return cookie
	}
	return c.Query("token")
}
