// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/toeirei/stratus/internal/agent"
	"github.com/toeirei/stratus/internal/logging"
)

const writeWait = 10 * time.Second

// Stream clients are pinged every pingPeriod and dropped when no pong arrives
// within pongWait. NewRouter copies both into the Server.
var (
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// streamFrame is one websocket message.
type streamFrame struct {
	Timestamp time.Time             `json:"timestamp"`
	Metrics   agent.ResourceMetrics `json:"metrics"`
}

// handleAgentStream pushes ResourceMetrics every stream interval until the
// client goes away.
func (s *Server) handleAgentStream(w http.ResponseWriter, r *http.Request) {
	ag, release, ok := s.agentFor(w, r)
	if !ok {
		return
	}
	defer release()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warnf("http: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	interval := s.agentCfg.StreamInterval
	if interval <= 0 {
		interval = defaultStreamInterval
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go readPump(conn, s.pongWait, cancel)

	logging.Debugf("http: stream opened for %s every %s", r.RemoteAddr, interval)
	send := func() bool {
		frame := streamFrame{Timestamp: time.Now().UTC(), Metrics: ag.ResourceMetrics(ctx)}
		if ctx.Err() != nil {
			return false
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(frame); err != nil {
			logging.Debugf("http: stream write failed: %v", err)
			return false
		}
		return true
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	ping := time.NewTicker(s.pingPeriod)
	defer ping.Stop()
	if !send() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logging.Debugf("http: stream ping failed: %v", err)
				return
			}
		case <-ticker.C:
			if !send() {
				return
			}
		}
	}
}

// readPump drains client frames so control messages are processed and
// cancels when the connection closes.
func readPump(conn *websocket.Conn, pongWait time.Duration, cancel context.CancelFunc) {
	defer cancel()
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Debugf("http: stream read error: %v", err)
			}
			return
		}
	}
}
