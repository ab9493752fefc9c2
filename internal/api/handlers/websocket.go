package handlers

import (
	"net/http"

	ws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ashwinrao/auction-arena/internal/api/middleware"
	"github.com/ashwinrao/auction-arena/internal/websocket"
)

var upgrader = ws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub       *websocket.Hub
	jwtSecret string
}

func NewWebSocketHandler(hub *websocket.Hub, jwtSecret string) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, jwtSecret: jwtSecret}
}

func (h *WebSocketHandler) Handle(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Token required", http.StatusUnauthorized)
		return
	}

	identity, displayName, err := middleware.VerifyToken(token, h.jwtSecret)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, identity, displayName)
	go client.WritePump()
	go client.ReadPump()
}
