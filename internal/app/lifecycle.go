package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"pointdeck/internal/core"
	"pointdeck/internal/domain"
)

// Lifecycle enforces room and participant business rules above the
// raw store. Its mutex serializes check-then-act sequences (name
// uniqueness, identity reuse) so there is one logical writer path.
type Lifecycle struct {
	mu    sync.Mutex
	store *core.Store
}

func NewLifecycle(store *core.Store) *Lifecycle {
	return &Lifecycle{store: store}
}

// CreateRoom returns the existing room when the trimmed name is
// already taken: room names are idempotent creation keys, which is
// what lets the gateway auto-create on first join.
func (l *Lifecycle) CreateRoom(name string) (*domain.Room, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	room, err := domain.NewRoom(name)
	if err != nil {
		return nil, err
	}
	if existing, ok := l.store.GetRoom(room.Name); ok {
		return existing, nil
	}
	l.store.CreateRoom(room)
	return room.Clone(), nil
}

// JoinRoom attaches a named identity to the room. A matching inactive
// participant is reactivated rather than recreated, preserving their
// token across reconnects; a matching active one is a conflict.
func (l *Lifecycle) JoinRoom(roomName domain.RoomName, playerName string) (*domain.Participant, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	room, ok := l.store.GetRoom(roomName)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if existing := room.FindByName(playerName); existing != nil {
		if existing.Connected {
			return nil, ErrNameTaken
		}
		connected := true
		l.store.UpdateParticipant(roomName, existing.Token, core.ParticipantUpdate{Connected: &connected})
		existing.Connected = true
		log.Info().Str("module", "app.lifecycle").Str("room", string(roomName)).Str("name", existing.Name).Msg("player reconnected")
		return existing, nil
	}
	p, err := domain.NewParticipant(playerName)
	if err != nil {
		return nil, err
	}
	if !l.store.AddParticipant(roomName, p) {
		return nil, ErrRoomNotFound
	}
	log.Info().Str("module", "app.lifecycle").Str("room", string(roomName)).Str("name", p.Name).Msg("player joined")
	return p, nil
}

// LeaveRoom removes the token's participant from their current room.
// The emptied room is reclaimed.
func (l *Lifecycle) LeaveRoom(token domain.ParticipantToken) (*domain.Participant, domain.RoomName, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	roomName, ok := l.store.RoomOf(token)
	if !ok {
		return nil, "", ErrPlayerNotFound
	}
	room, _ := l.store.GetRoom(roomName)
	p := room.FindByToken(token)
	if p == nil || !l.store.RemoveParticipant(roomName, token) {
		return nil, "", ErrPlayerNotFound
	}
	l.reclaimIfEmpty(roomName)
	return p, roomName, nil
}

// RemovePlayer removes somebody else's participant from roomName.
// Only inactive players may be removed; an active one, or a token
// belonging to another room, is rejected with no change.
func (l *Lifecycle) RemovePlayer(roomName domain.RoomName, token domain.ParticipantToken) (*domain.Participant, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	actual, ok := l.store.RoomOf(token)
	if !ok || actual != roomName {
		return nil, ErrPlayerNotFound
	}
	room, _ := l.store.GetRoom(roomName)
	p := room.FindByToken(token)
	if p == nil {
		return nil, ErrPlayerNotFound
	}
	if p.Connected {
		return nil, ErrPlayerStillActive
	}
	l.store.RemoveParticipant(roomName, token)
	l.reclaimIfEmpty(roomName)
	return p, nil
}

// UpdateConnectionStatus flips the connectivity flag via the reverse
// map. Store-side rules clear an unrevealed submission on disconnect.
func (l *Lifecycle) UpdateConnectionStatus(token domain.ParticipantToken, connected bool) (domain.RoomName, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	roomName, ok := l.store.RoomOf(token)
	if !ok {
		return "", ErrPlayerNotFound
	}
	if !l.store.UpdateParticipant(roomName, token, core.ParticipantUpdate{Connected: &connected}) {
		return "", ErrPlayerNotFound
	}
	return roomName, nil
}

func (l *Lifecycle) reclaimIfEmpty(name domain.RoomName) {
	if room, ok := l.store.GetRoom(name); ok && len(room.Participants) == 0 {
		l.store.DeleteRoom(name)
	}
}
