package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/silat-bracket/brackets"
	"github.com/Dosada05/silat-bracket/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served cross-origin to tournament display clients.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebsocketHandler struct {
	hub            *brackets.Hub
	bracketService services.BracketService
	logger         *slog.Logger
}

func NewWebsocketHandler(hub *brackets.Hub, bs services.BracketService, logger *slog.Logger) *WebsocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebsocketHandler{hub: hub, bracketService: bs, logger: logger}
}

// ServeBracketRoom handles GET /ws/brackets/{bracketID}: it upgrades the
// connection and subscribes the client to the bracket's event room.
func (h *WebsocketHandler) ServeBracketRoom(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "bracketID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.bracketService.Detail(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.Int("bracket_id", id),
			slog.Any("error", err),
		)
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: brackets.RoomForBracket(id),
	}
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
