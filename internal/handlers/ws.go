package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/minefield/internal/minefield"
)

const wsWriteTimeout = 10 * time.Second

// ConnectWS streams batches over a websocket: every text message is run
// through [ExecuteBatch] and answered with the game, or with an error that
// leaves the game untouched.
func (g *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	id, err := g.authorize(r)
	if err != nil {
		sendError(w, g.log, err)
		return
	}
	if _, err := g.store.FetchGameSession(r.Context(), id); err != nil {
		sendError(w, g.log, err)
		return
	}
	c, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.WithError(err).Warn("upgrade")
		return
	}
	defer c.Close()
	c.SetReadLimit(maxBatchBytes)

	log := g.log.WithField("gameSessionId", id)
	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("read")
			}
			return
		}
		if mt != websocket.TextMessage {
			c.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "text only"),
				time.Now().Add(wsWriteTimeout),
			)
			return
		}
		log.Debug("> ", string(message))

		var reply any
		game, err := g.play(r.Context(), id, func(f *minefield.Minefield) error {
			return ExecuteBatch(f, string(message))
		})
		switch {
		case err == nil:
			reply = game
		case statusFor(err) == http.StatusInternalServerError:
			log.WithError(err).Error("ws move failed")
			return
		default:
			reply = wrapError(err)
		}

		c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.WriteJSON(reply); err != nil {
			log.WithError(err).Warn("write")
			return
		}
	}
}
