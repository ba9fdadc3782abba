package app

import (
	"github.com/rs/zerolog/log"

	"pointdeck/internal/core"
	"pointdeck/internal/domain"
)

// PlayerStatus is the pre-reveal view of one participant. It carries
// a has-submitted flag but never the value itself.
type PlayerStatus struct {
	Token        domain.ParticipantToken `json:"token"`
	Name         string                  `json:"name"`
	HasSubmitted bool                    `json:"has_submitted"`
	IsConnected  bool                    `json:"is_connected"`
}

// Engine drives the per-room round state machine. All state lives in
// the store; the engine never caches a round across calls.
type Engine struct {
	store *core.Store
}

func NewEngine(store *core.Store) *Engine {
	return &Engine{store: store}
}

// StartRound begins a fresh round, discarding any prior one. Valid
// from any state: "start" always means "start over". A room with no
// participants at all cannot start a round.
func (e *Engine) StartRound(roomName domain.RoomName) error {
	room, ok := e.store.GetRoom(roomName)
	if !ok {
		return ErrRoomNotFound
	}
	if len(room.Participants) == 0 {
		return ErrEmptyRoom
	}
	e.store.SetRound(roomName, domain.NewRound())
	log.Info().Str("module", "app.engine").Str("room", string(roomName)).Msg("round started")
	return nil
}

// SubmitCard records the token's card, overwriting any prior pick.
// Submissions are deliberately accepted after reveal too, so players
// can adjust an estimate and see recalculated aggregates.
func (e *Engine) SubmitCard(roomName domain.RoomName, token domain.ParticipantToken, value domain.CardValue) error {
	if !value.IsPlayable() {
		return ErrNotInDeck
	}
	room, ok := e.store.GetRoom(roomName)
	if !ok {
		return ErrRoomNotFound
	}
	if room.FindByToken(token) == nil {
		return ErrPlayerNotFound
	}
	if !e.store.AddSubmission(roomName, token, value) {
		return ErrNoRound
	}
	return nil
}

// Reveal exposes the current round. Repeat calls are allowed and
// change nothing, which is what lets clients recalculate after a
// post-reveal adjustment without a separate action.
func (e *Engine) Reveal(roomName domain.RoomName) error {
	if _, ok := e.store.GetRoom(roomName); !ok {
		return ErrRoomNotFound
	}
	if !e.store.RevealRound(roomName) {
		return ErrNoRound
	}
	return nil
}

// IsComplete reports whether every currently connected participant
// has submitted. An empty set of connected players is never complete.
func (e *Engine) IsComplete(roomName domain.RoomName) bool {
	room, ok := e.store.GetRoom(roomName)
	if !ok || room.Round == nil {
		return false
	}
	connected := 0
	for _, p := range room.Participants {
		if !p.Connected {
			continue
		}
		connected++
		if _, ok := room.Round.Submissions[p.Token]; !ok {
			return false
		}
	}
	return connected > 0
}

// SelectionStatus lists every participant with submission and
// connectivity flags. Values are omitted: this is the privacy
// boundary until reveal.
func (e *Engine) SelectionStatus(roomName domain.RoomName) ([]PlayerStatus, error) {
	room, ok := e.store.GetRoom(roomName)
	if !ok {
		return nil, ErrRoomNotFound
	}
	out := make([]PlayerStatus, 0, len(room.Participants))
	for _, p := range room.Participants {
		st := PlayerStatus{
			Token:       p.Token,
			Name:        p.Name,
			IsConnected: p.Connected,
		}
		if room.Round != nil {
			_, st.HasSubmitted = room.Round.Submissions[p.Token]
		}
		out = append(out, st)
	}
	return out, nil
}

// Result computes statistics for the revealed round. Derived and
// ephemeral: recomputed on every call, never stored.
func (e *Engine) Result(roomName domain.RoomName) (*Result, error) {
	room, ok := e.store.GetRoom(roomName)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.Round == nil {
		return nil, ErrNoRound
	}
	if !room.Round.Revealed {
		return nil, ErrRoundHidden
	}
	return ComputeResult(room, room.Round), nil
}

// Discussion runs the richer variance/consensus classification over
// the revealed round, for discussion-prompt consumers.
func (e *Engine) Discussion(roomName domain.RoomName) (*Discussion, error) {
	room, ok := e.store.GetRoom(roomName)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.Round == nil {
		return nil, ErrNoRound
	}
	if !room.Round.Revealed {
		return nil, ErrRoundHidden
	}
	return AnalyzeDiscussion(room.Round), nil
}
