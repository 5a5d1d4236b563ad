package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"
)

// Handler upgrades requests to websocket connections served by hub.
// originPatterns lists the extra hosts allowed to connect; an empty list
// only admits same-origin pages.
func Handler(hub *Hub, logger *slog.Logger, originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			OriginPatterns: originPatterns,
		})
		if err != nil {
			logger.Warn("websocket accept failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.CloseNow()

		NewClient(hub, conn).Run(r.Context())
		conn.Close(ws.StatusNormalClosure, "")
	}
}
