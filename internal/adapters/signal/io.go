package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"pointdeck/internal/app"
	"pointdeck/internal/domain"
)

func (ctl *GatewayController) writePump(ctx context.Context, c *WsConn) {
	ticker := time.NewTicker(ctl.cfg.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump ping error")
				return
			}
		}
	}
}

func (ctl *GatewayController) readPump(ctx context.Context, sid app.SessionID, c *WsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		ctl.handleDisconnect(sid, c)
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
				return
			}
			ctl.handleAction(sid, c, data)
		}
	}
}

func (ctl *GatewayController) handleAction(sid app.SessionID, c *WsConn, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	switch env.Type {
	case "join":
		ctl.handleJoin(sid, c, data)
	case "start-round":
		ctl.handleStartRound(sid, c)
	case "select-card":
		ctl.handleSelectCard(sid, c, data)
	case "reveal-cards":
		ctl.handleReveal(sid, c)
	case "leave-room":
		ctl.handleLeave(sid, c)
	case "remove-player":
		ctl.handleRemovePlayer(sid, c, data)
	case "ping":
		ctl.handlePing(c)
	default:
		log.Warn().Str("module", "signal").Str("type", env.Type).Msg("unknown action")
		ctl.sendError(c, "unknown action")
	}
}

func (ctl *GatewayController) sendJSON(conn app.Conn, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("sendJSON marshal")
		return
	}
	_ = conn.TrySend(b)
}

// sendError goes only to the acting connection; errors are never
// broadcast to a room.
func (ctl *GatewayController) sendError(conn app.Conn, msg string) {
	ctl.sendJSON(conn, map[string]any{
		"type":  "error",
		"error": msg,
	})
}

// broadcastRoom fans v out to every session bound to the room,
// applying the backpressure policy to full buffers.
func (ctl *GatewayController) broadcastRoom(room domain.RoomName, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("broadcast marshal")
		return
	}
	for _, peer := range ctl.reg.PeersOfRoom(room) {
		ctl.deliver(peer, b)
	}
}

// broadcastFrom is broadcastRoom minus the acting session.
func (ctl *GatewayController) broadcastFrom(sid app.SessionID, room domain.RoomName, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("broadcast marshal")
		return
	}
	for _, peer := range ctl.reg.PeersOfRoom(room) {
		if peer.SID == sid {
			continue
		}
		ctl.deliver(peer, b)
	}
}

func (ctl *GatewayController) deliver(peer app.Peer, b []byte) {
	if err := peer.Conn.TrySend(b); err == nil {
		return
	}
	switch ctl.policy.OnBackPressure(peer.SID) {
	case app.KickSession:
		ctl.reg.Cancel(peer.SID)
	case app.DropMessage, app.NoAction:
		log.Debug().Str("module", "signal").Str("sid", string(peer.SID)).Msg("dropped broadcast")
	}
}
