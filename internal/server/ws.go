package server

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vibing2/vibing-desktop/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Webviews may send no Origin at all.
		return origin == "" || isLocalOrigin(origin)
	},
}

// serveWS upgrades the connection and hands it to the event hub.
func (h *handlers) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Errorf("server: websocket upgrade: %v", err)
		return
	}
	h.svc.Hub.Serve(conn)
}
