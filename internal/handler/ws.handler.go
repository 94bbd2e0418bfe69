package handler

import (
	"net/http"
	"strings"

	"github.com/Houmeecl/pilotonotary-backend/pkg/middleware"
	"github.com/Houmeecl/pilotonotary-backend/pkg/notifier/ws"
	"github.com/Houmeecl/pilotonotary-backend/pkg/response"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsReadLimit = 4096

type WSHandler struct {
	manager  *ws.Manager
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWSHandler(manager *ws.Manager, allowedOrigins []string, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// originChecker accepts the origins the CORS layer accepts. Requests without
// an Origin header are not from a browser and pass.
func originChecker(allowed []string) func(*http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}

// HandleWS upgrades an authenticated request and keeps the socket registered
// until the client goes away. Clients only receive; anything they send is
// treated as a keepalive.
func (h *WSHandler) HandleWS(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Error(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	c := h.manager.Add(userID, conn)
	defer h.manager.Remove(c)

	conn.SetReadLimit(wsReadLimit)
	conn.SetPongHandler(func(string) error {
		c.Touch()
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("ws read error", zap.String("user_id", userID), zap.Error(err))
			}
			return
		}
		c.Touch()
	}
}
