package remote

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/fakeyudi/intervals/internal/playback"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is meant for phones on the local network.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const socketWriteTimeout = 5 * time.Second

// handleSocket streams updates as JSON text frames and accepts commands
// ("start", "pause", "resume", "skip", "end") as text frames.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates := s.ctl.Subscribe(16)
	defer s.ctl.Unsubscribe(updates)
	send := func(u playback.Update) error {
		conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
		return conn.WriteJSON(u)
	}
	if err := send(playback.Update{Display: s.ctl.Display()}); err != nil {
		return
	}

	// Only this goroutine reads; only the loop below writes.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			messageType, p, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.log.Warn("websocket read failed", "error", err)
				}
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}
			if err := s.apply(strings.TrimSpace(string(p))); err != nil {
				s.log.Warn("websocket command rejected", "command", string(p), "error", err)
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-done:
			return
		case u, ok := <-updates:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run closed"))
				return
			}
			if err := send(u); err != nil {
				return
			}
		}
	}
}

var errUnknownCommand = errors.New("unknown command")

// apply runs a named controller command.
func (s *Server) apply(name string) error {
	switch strings.ToLower(name) {
	case "start":
		return s.ctl.Start()
	case "pause":
		s.ctl.Pause()
	case "resume":
		s.ctl.Resume()
	case "skip":
		s.ctl.Skip()
	case "end":
		s.ctl.End()
	default:
		return errUnknownCommand
	}
	return nil
}
