package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"pointdeck/internal/domain"
)

// SessionID identifies one live client session (the browser's token
// cookie), independent of any participant identity.
type SessionID string

// Conn abstracts the gateway's transport endpoint. Owned by the
// adapter; the adapter must Close() it.
type Conn interface {
	TrySend([]byte) error
	Close()
}

type sessionEntry struct {
	Token  domain.ParticipantToken
	Room   domain.RoomName
	Conn   Conn
	Cancel context.CancelFunc
}

// Registry owns the connection↔participant binding, a separate
// ownership domain from the session store. A binding is set
// explicitly at join and never guessed back from room state: losing
// it means NotFound, not heuristic recovery.
type Registry struct {
	mu       sync.RWMutex
	sessions map[SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[SessionID]*sessionEntry)}
}

// Bind registers a live connection. A session that already has an
// entry keeps its player binding: a reconnect on the same session
// token inherits the seat, and the displaced socket is torn down.
func (r *Registry) Bind(sid SessionID, conn Conn, cancel context.CancelFunc) {
	r.mu.Lock()
	old := r.sessions[sid]
	e := &sessionEntry{Conn: conn, Cancel: cancel}
	if old != nil {
		e.Token = old.Token
		e.Room = old.Room
	}
	r.sessions[sid] = e
	r.mu.Unlock()

	if old != nil {
		if old.Cancel != nil {
			old.Cancel()
		}
		if old.Conn != nil {
			old.Conn.Close()
		}
		log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("displaced stale connection")
		return
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound connection")
}

// BindPlayer attaches a participant token and room to the session.
func (r *Registry) BindPlayer(sid SessionID, token domain.ParticipantToken, room domain.RoomName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.Token = token
	e.Room = room
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(room)).Msg("bound player")
	return true
}

// ClearPlayer detaches the participant but keeps the connection.
func (r *Registry) ClearPlayer(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[sid]; ok {
		e.Token = ""
		e.Room = ""
	}
}

// Release detaches the session, but only when conn is still the
// bound endpoint: a stale socket's deferred cleanup must never evict
// a newer binding for the same session. Returns the player binding
// that was released.
func (r *Registry) Release(sid SessionID, conn Conn) (domain.ParticipantToken, domain.RoomName, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.Conn != conn {
		return "", "", false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("released session")
	return e.Token, e.Room, true
}

// PlayerOf returns the session's participant binding, if any.
func (r *Registry) PlayerOf(sid SessionID) (domain.ParticipantToken, domain.RoomName, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.Token == "" {
		return "", "", false
	}
	return e.Token, e.Room, true
}

func (r *Registry) ConnOf(sid SessionID) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Conn, true
	}
	return nil, false
}

// Peer is a snapshot of one room-bound session for fanout.
type Peer struct {
	SID   SessionID
	Token domain.ParticipantToken
	Conn  Conn
}

// PeersOfRoom lists every session currently bound to the room.
func (r *Registry) PeersOfRoom(room domain.RoomName) []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Peer, 0, len(r.sessions))
	for sid, e := range r.sessions {
		if e.Room == room {
			out = append(out, Peer{SID: sid, Token: e.Token, Conn: e.Conn})
		}
	}
	return out
}

// Cancel tears down the session's pump context, if still running.
func (r *Registry) Cancel(sid SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	return true
}
