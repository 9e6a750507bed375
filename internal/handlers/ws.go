package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type wsReply struct {
	Session SessionDTO `json:"session"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// Connect upgrades to a websocket and plays the session over the text
// command protocol, one batch of newline-separated commands per
// message, answering each batch with the updated session.
func (g Game) Connect(w http.ResponseWriter, r *http.Request) {
	session, state, ok := g.fetch(w, r)
	if !ok {
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Error("unable to upgrade connection", "error", err)
		return
	}
	defer conn.Close()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				g.logger.Warn("websocket read", "error", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			return
		}

		reply := wsReply{}
		for _, cmd := range strings.Split(strings.TrimSpace(string(message)), "\n") {
			msg, err := state.Execute(cmd, g.rnd, g.opts)
			if err != nil {
				reply.Error = err.Error()
				break
			}
			if msg != "" {
				reply.Message = msg
			}
			if state.Over() {
				state.RevealMines()
				break
			}
		}

		if state.Over() && session.EndedAt == nil {
			now := time.Now().UTC()
			session.EndedAt = &now
		}
		if err := g.repo.UpdateSession(
			r.Context(), session.SessionId, state, session.EndedAt,
		); err != nil {
			g.logger.Error("unable to update session", "error", err)
			return
		}
		reply.Session = sessionDTO(session, state)
		if err := conn.WriteJSON(reply); err != nil {
			g.logger.Error("websocket write", "error", err)
			return
		}
	}
}
