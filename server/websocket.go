// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"net/http"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/multitechword/taskhub/hub"
)

const (
	// writeWait is the deadline for a single outbound frame.
	writeWait = 10 * time.Second

	// pongWait is how long the connection may stay silent before it is
	// considered dead.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = 54 * time.Second

	// joinWait is how long the server waits for the join signal after the
	// upgrade.
	joinWait = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from a separately served frontend.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// joinSignal is the first message a client sends after connecting. It names
// the identity whose channel the connection subscribes to, and must match
// the authenticated caller.
type joinSignal struct {
	Event string `json:"event"`
	ID    string `json:"id"`
}

// handleWebSocket upgrades the connection, waits for the join signal, and
// then relays hub events until either side goes away. Teardown unsubscribes
// the connection from the hub.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFrom(r)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(joinWait))
	var join joinSignal
	if err := conn.ReadJSON(&join); err != nil || join.Event != "join" || join.ID != caller.ID {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected join signal"),
			time.Now().Add(writeWait))
		return
	}

	sub := s.coordinator.Hub().Subscribe(caller.ID)
	defer s.coordinator.Hub().Unsubscribe(sub)

	done := make(chan struct{})
	go s.wsReadPump(conn, done)
	s.wsWritePump(conn, sub, done)
	s.logger.Debug("websocket closed", zap.String("identity", sub.IdentityID()))
}

// wsReadPump drains inbound frames so pongs are processed, and signals the
// write pump when the client disconnects.
func (s *Server) wsReadPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// wsWritePump relays hub events to the client and keeps the connection alive
// with pings.
func (s *Server) wsWritePump(conn *websocket.Conn, sub *hub.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return

		case event, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				s.logger.Error("failed to marshal event", zap.Error(err))
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
