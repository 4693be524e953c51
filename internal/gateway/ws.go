// ABOUTME: WebSocket endpoint: token handshake, session registration, and the
// ABOUTME: per-connection read/write pumps implementing the lifecycle state machine

package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/2389/babel-gateway/internal/auth"
	"github.com/2389/babel-gateway/internal/metrics"
	"github.com/2389/babel-gateway/internal/router"
	"github.com/2389/babel-gateway/internal/session"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound frame size allowed from peer.
	maxFrameSize = 8192
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Token auth happens after the upgrade; the origin check adds nothing
	// for a bearer-token protocol.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// rawInboundFrame mirrors router.InboundFrame with pointer fields so missing
// keys are distinguishable from zero values. A frame missing either field is
// a protocol error.
type rawInboundFrame struct {
	ReceiverID *int64  `json:"receiver_id"`
	Message    *string `json:"message"`
}

// handleWebSocket handles GET /ws/{token} requests.
//
// Connection state machine: verify the token (failure closes with a policy
// violation, no session is created), register the session, then read frames
// until the peer disconnects, a frame is malformed, or persistence fails.
// Every exit path unregisters this connection's session.
func (g *Gateway) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error
		g.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	principal, err := g.authSvc.Authenticate(r.Context(), token)
	if err != nil {
		g.logger.Info("websocket authentication failed", "error", err)
		g.closeWith(conn, websocket.ClosePolicyViolation, "authentication failed")
		conn.Close()
		return
	}

	sess := session.New(principal.ID)
	g.registry.Register(sess)

	logger := g.logger.With(
		"user_id", principal.ID,
		"username", principal.Username,
		"conn_id", sess.ConnID,
	)
	logger.Info("websocket connected")

	go g.writePump(conn, sess, logger)
	g.readPump(r.Context(), conn, sess, principal, logger)
}

// readPump reads inbound frames and dispatches them synchronously, preserving
// per-connection ordering. It owns connection cleanup: on any exit the session
// is closed and unregistered (a stale unregister after a supersede is a no-op).
func (g *Gateway) readPump(ctx context.Context, conn *websocket.Conn, sess *session.Session, principal *auth.Principal, logger *slog.Logger) {
	defer func() {
		sess.Close()
		g.registry.Unregister(sess)
		conn.Close()
		logger.Info("websocket disconnected")
	}()

	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("websocket read error", "error", err)
			}
			return
		}

		var raw rawInboundFrame
		if err := json.Unmarshal(data, &raw); err != nil || raw.ReceiverID == nil || raw.Message == nil {
			logger.Warn("malformed frame, closing connection")
			g.closeWith(conn, websocket.CloseInvalidFramePayloadData, "malformed frame")
			return
		}

		frame := router.InboundFrame{ReceiverID: *raw.ReceiverID, Message: *raw.Message}
		if err := g.router.HandleFrame(ctx, principal, frame); err != nil {
			// Persistence failure: tear the connection down rather than
			// continue past an undurable message.
			logger.Error("frame handling failed", "error", err)
			g.closeWith(conn, websocket.CloseInternalServerErr, "internal error")
			return
		}
	}
}

// writePump pushes delivery frames from the session channel to the peer and
// keeps the connection alive with pings. It exits when the session closes
// (disconnect or supersede) or a write fails.
func (g *Gateway) writePump(conn *websocket.Conn, sess *session.Session, logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame := <-sess.Frames():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logger.Debug("websocket write failed", "error", err)
				g.collector.Delivery(metrics.DeliveryFailed)
				sess.Close()
				return
			}

		case <-sess.Done():
			// Session closed: drain nothing further, tell the peer goodbye.
			g.closeWith(conn, websocket.CloseNormalClosure, "")
			return

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				sess.Close()
				return
			}
		}
	}
}

// closeWith sends a close control frame with the given code and reason.
func (g *Gateway) closeWith(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}
