package signal

import (
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"pointdeck/internal/app"
	"pointdeck/internal/domain"
)

type roomView struct {
	Name      domain.RoomName `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
}

func (ctl *GatewayController) handleJoin(
	sid app.SessionID,
	conn *WsConn,
	data []byte,
) {
	if !ctl.joins.Allow(sid) {
		ctl.sendError(conn, "too many join attempts")
		return
	}

	type joinPayload struct {
		Type string `json:"type"`
		Room string `json:"room"`
		Name string `json:"name"`
	}
	var p joinPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	// A session already seated somewhere leaves that room first: a
	// participant is in at most one room at a time.
	if token, _, ok := ctl.reg.PlayerOf(sid); ok {
		if left, prevRoom, err := ctl.rooms.LeaveRoom(token); err == nil {
			ctl.reg.ClearPlayer(sid)
			ctl.notifyDeparture(sid, prevRoom, "player-left", left)
		}
	}

	// Rooms are auto-created on first join; the name is an idempotent
	// creation key.
	room, err := ctl.rooms.CreateRoom(p.Room)
	if err != nil {
		ctl.sendError(conn, err.Error())
		return
	}

	player, err := ctl.rooms.JoinRoom(room.Name, p.Name)
	if err != nil {
		ctl.sendError(conn, err.Error())
		return
	}
	// The session can vanish between upgrade and join; undo the seat
	// rather than leave an unbound participant in the room.
	if !ctl.reg.BindPlayer(sid, player.Token, room.Name) {
		_, _, _ = ctl.rooms.LeaveRoom(player.Token)
		ctl.sendError(conn, "session closed")
		return
	}

	players, _ := ctl.votes.SelectionStatus(room.Name)
	resp := struct {
		Type    string             `json:"type"`
		Room    roomView           `json:"room"`
		You     domain.Participant `json:"you"`
		Players []app.PlayerStatus `json:"players"`
		Result  *app.Result        `json:"result,omitempty"`
	}{
		Type:    "room-joined",
		Room:    roomView{Name: room.Name, CreatedAt: room.CreatedAt},
		You:     *player,
		Players: players,
	}
	// A joiner arriving after reveal still sees the historical result.
	if result, err := ctl.votes.Result(room.Name); err == nil {
		resp.Result = result
	}
	ctl.sendJSON(conn, resp)

	ctl.broadcastFrom(sid, room.Name, struct {
		Type   string             `json:"type"`
		Player domain.Participant `json:"player"`
	}{
		Type:   "player-joined",
		Player: *player,
	})
	ctl.pushStatusFrom(sid, room.Name)
}

// handleLeave removes the caller's participant; the connection itself
// stays open.
func (ctl *GatewayController) handleLeave(
	sid app.SessionID,
	conn *WsConn,
) {
	token, _, ok := ctl.reg.PlayerOf(sid)
	if !ok {
		ctl.sendError(conn, errNotSeated.Error())
		return
	}
	player, roomName, err := ctl.rooms.LeaveRoom(token)
	if err != nil {
		ctl.sendError(conn, err.Error())
		return
	}
	ctl.reg.ClearPlayer(sid)
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("room", string(roomName)).Msg("leave")

	ctl.sendJSON(conn, map[string]any{"type": "left"})
	ctl.notifyDeparture(sid, roomName, "player-left", player)
}

func (ctl *GatewayController) handleRemovePlayer(
	sid app.SessionID,
	conn *WsConn,
	data []byte,
) {
	_, roomName, ok := ctl.reg.PlayerOf(sid)
	if !ok {
		ctl.sendError(conn, errNotSeated.Error())
		return
	}

	type removePayload struct {
		Type   string `json:"type"`
		Target string `json:"target"`
	}
	var p removePayload
	if err := json.Unmarshal(data, &p); err != nil || p.Target == "" {
		ctl.sendError(conn, "bad_payload")
		return
	}

	removed, err := ctl.rooms.RemovePlayer(roomName, domain.ParticipantToken(p.Target))
	if err != nil {
		ctl.sendError(conn, err.Error())
		return
	}
	log.Info().Str("module", "signal").Str("room", string(roomName)).Str("name", removed.Name).Msg("player removed")
	ctl.broadcastRoom(roomName, struct {
		Type   string             `json:"type"`
		Player domain.Participant `json:"player"`
	}{
		Type:   "player-removed",
		Player: *removed,
	})
	ctl.pushStatus(roomName)
}

// handleDisconnect runs when the socket drops. The participant is
// only marked inactive; their identity survives for a rejoin and a
// revealed round keeps their submission. Cleanup for a socket that
// was already displaced by a newer connection on the same session is
// a no-op.
func (ctl *GatewayController) handleDisconnect(sid app.SessionID, conn *WsConn) {
	token, roomName, ok := ctl.reg.Release(sid, conn)
	if !ok || token == "" {
		return
	}
	completeBefore := ctl.votes.IsComplete(roomName)
	if _, err := ctl.rooms.UpdateConnectionStatus(token, false); err != nil {
		return
	}
	ctl.pushStatus(roomName)
	// Dropping the last holdout completes the round for the players
	// still connected.
	if !completeBefore && ctl.votes.IsComplete(roomName) {
		ctl.broadcastRoom(roomName, map[string]any{"type": "all-submitted"})
	}
}

func (ctl *GatewayController) notifyDeparture(sid app.SessionID, room domain.RoomName, kind string, player *domain.Participant) {
	ctl.broadcastFrom(sid, room, struct {
		Type   string             `json:"type"`
		Player domain.Participant `json:"player"`
	}{
		Type:   kind,
		Player: *player,
	})
	ctl.pushStatusFrom(sid, room)
}

// pushStatus broadcasts the privacy-safe selection status: who has
// submitted and who is connected, never the values.
func (ctl *GatewayController) pushStatus(room domain.RoomName) {
	players, err := ctl.votes.SelectionStatus(room)
	if err != nil {
		return
	}
	ctl.broadcastRoom(room, statusUpdate(players))
}

func (ctl *GatewayController) pushStatusFrom(sid app.SessionID, room domain.RoomName) {
	players, err := ctl.votes.SelectionStatus(room)
	if err != nil {
		return
	}
	ctl.broadcastFrom(sid, room, statusUpdate(players))
}

func statusUpdate(players []app.PlayerStatus) any {
	return struct {
		Type    string             `json:"type"`
		Players []app.PlayerStatus `json:"players"`
	}{
		Type:    "selection-status-update",
		Players: players,
	}
}
