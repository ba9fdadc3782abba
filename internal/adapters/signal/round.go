package signal

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog/log"

	"pointdeck/internal/app"
	"pointdeck/internal/domain"
)

var errNotSeated = errors.New("not in a room")

func (ctl *GatewayController) handleStartRound(
	sid app.SessionID,
	conn *WsConn,
) {
	_, roomName, ok := ctl.reg.PlayerOf(sid)
	if !ok {
		ctl.sendError(conn, errNotSeated.Error())
		return
	}
	if err := ctl.votes.StartRound(roomName); err != nil {
		ctl.sendError(conn, err.Error())
		return
	}
	log.Info().Str("module", "signal").Str("room", string(roomName)).Msg("round started")
	ctl.broadcastRoom(roomName, map[string]any{"type": "round-started"})
	ctl.pushStatus(roomName)
}

func (ctl *GatewayController) handleSelectCard(
	sid app.SessionID,
	conn *WsConn,
	data []byte,
) {
	token, roomName, ok := ctl.reg.PlayerOf(sid)
	if !ok {
		ctl.sendError(conn, errNotSeated.Error())
		return
	}

	type selectPayload struct {
		Type  string `json:"type"`
		Value string `json:"value"`
	}
	var p selectPayload
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad select payload")
		ctl.sendError(conn, "bad_payload")
		return
	}

	completeBefore := ctl.votes.IsComplete(roomName)
	if err := ctl.votes.SubmitCard(roomName, token, domain.CardValue(p.Value)); err != nil {
		ctl.sendError(conn, err.Error())
		return
	}
	ctl.pushStatus(roomName)

	// A pick after reveal recalculates the aggregates for everyone;
	// before reveal it may complete the round instead.
	if result, err := ctl.votes.Result(roomName); err == nil {
		ctl.broadcastResult(roomName, result)
		return
	}
	if !completeBefore && ctl.votes.IsComplete(roomName) {
		ctl.broadcastRoom(roomName, map[string]any{"type": "all-submitted"})
	}
}

func (ctl *GatewayController) handleReveal(
	sid app.SessionID,
	conn *WsConn,
) {
	_, roomName, ok := ctl.reg.PlayerOf(sid)
	if !ok {
		ctl.sendError(conn, errNotSeated.Error())
		return
	}
	if err := ctl.votes.Reveal(roomName); err != nil {
		ctl.sendError(conn, err.Error())
		return
	}
	result, err := ctl.votes.Result(roomName)
	if err != nil {
		ctl.sendError(conn, err.Error())
		return
	}
	log.Info().Str("module", "signal").Str("room", string(roomName)).Msg("cards revealed")
	ctl.broadcastResult(roomName, result)
}

func (ctl *GatewayController) broadcastResult(roomName domain.RoomName, result *app.Result) {
	disc, _ := ctl.votes.Discussion(roomName)
	ctl.broadcastRoom(roomName, struct {
		Type       string          `json:"type"`
		Result     *app.Result     `json:"result"`
		Discussion *app.Discussion `json:"discussion,omitempty"`
	}{
		Type:       "cards-revealed",
		Result:     result,
		Discussion: disc,
	})
}
