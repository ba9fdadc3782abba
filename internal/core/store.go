// Package core holds the session store: the single authoritative
// owner of room and participant state while the process runs.
package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"pointdeck/internal/domain"
)

// ParticipantUpdate is a partial patch; nil fields are left untouched.
type ParticipantUpdate struct {
	Name      *string
	Connected *bool
}

// RoomInfo is a read-only listing view (no participant details).
type RoomInfo struct {
	Name         domain.RoomName `json:"name"`
	Participants int             `json:"participants"`
}

// Store is a threadsafe in-memory session store. All reads hand out
// independent clones and all writes copy in, so no caller ever holds
// an alias to live state. Mutators report failure as a plain false;
// for an in-memory map the only failure mode is an absent key.
type Store struct {
	mu       sync.RWMutex
	rooms    map[domain.RoomName]*domain.Room
	memberOf map[domain.ParticipantToken]domain.RoomName
}

func NewStore() *Store {
	return &Store{
		rooms:    make(map[domain.RoomName]*domain.Room),
		memberOf: make(map[domain.ParticipantToken]domain.RoomName),
	}
}

// CreateRoom inserts a new room. It never merges: callers check for
// existence first, and a duplicate insert is refused.
func (s *Store) CreateRoom(room *domain.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[room.Name]; ok {
		return false
	}
	s.rooms[room.Name] = room.Clone()
	for _, p := range room.Participants {
		s.memberOf[p.Token] = room.Name
	}
	log.Info().Str("module", "core.store").Str("room", string(room.Name)).Msg("room created")
	return true
}

func (s *Store) GetRoom(name domain.RoomName) (*domain.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[name]
	if !ok {
		return nil, false
	}
	return room.Clone(), true
}

// UpdateRoom replaces the stored room wholesale from the given
// snapshot. The reverse map is rebuilt for the new membership.
func (s *Store) UpdateRoom(name domain.RoomName, room *domain.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.rooms[name]
	if !ok {
		return false
	}
	for _, p := range old.Participants {
		delete(s.memberOf, p.Token)
	}
	s.rooms[name] = room.Clone()
	for _, p := range room.Participants {
		s.memberOf[p.Token] = name
	}
	return true
}

// DeleteRoom removes the room and every reverse mapping of its
// members.
func (s *Store) DeleteRoom(name domain.RoomName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[name]
	if !ok {
		return false
	}
	for _, p := range room.Participants {
		delete(s.memberOf, p.Token)
	}
	delete(s.rooms, name)
	log.Info().Str("module", "core.store").Str("room", string(name)).Msg("room deleted")
	return true
}

// AddParticipant appends the participant to the room. A token already
// mapped to a different room is first removed there: a participant is
// in at most one room, enforced here rather than by callers.
func (s *Store) AddParticipant(name domain.RoomName, p *domain.Participant) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[name]
	if !ok {
		return false
	}
	if prev, ok := s.memberOf[p.Token]; ok && prev != name {
		s.removeParticipantLocked(prev, p.Token)
	}
	pc := *p
	room.Participants = append(room.Participants, &pc)
	s.memberOf[p.Token] = name
	log.Info().Str("module", "core.store").Str("room", string(name)).Str("name", p.Name).Msg("participant added")
	return true
}

// RemoveParticipant drops the participant from the room. A submission
// in an unrevealed round is cleared so a later rejoin starts clean.
func (s *Store) RemoveParticipant(name domain.RoomName, token domain.ParticipantToken) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeParticipantLocked(name, token)
}

func (s *Store) removeParticipantLocked(name domain.RoomName, token domain.ParticipantToken) bool {
	room, ok := s.rooms[name]
	if !ok {
		return false
	}
	idx := -1
	for i, p := range room.Participants {
		if p.Token == token {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	room.Participants = append(room.Participants[:idx], room.Participants[idx+1:]...)
	delete(s.memberOf, token)
	if room.Round != nil && !room.Round.Revealed {
		delete(room.Round.Submissions, token)
	}
	log.Info().Str("module", "core.store").Str("room", string(name)).Str("token", string(token)).Msg("participant removed")
	return true
}

// UpdateParticipant applies the patch. Marking a participant as
// disconnected clears their submission in an unrevealed round, so a
// reconnect votes again; a revealed round keeps its history.
func (s *Store) UpdateParticipant(name domain.RoomName, token domain.ParticipantToken, upd ParticipantUpdate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[name]
	if !ok {
		return false
	}
	p := room.FindByToken(token)
	if p == nil {
		return false
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Connected != nil {
		p.Connected = *upd.Connected
		if !*upd.Connected && room.Round != nil && !room.Round.Revealed {
			delete(room.Round.Submissions, token)
		}
	}
	return true
}

// SetRound replaces the room's round wholesale; nil clears it.
func (s *Store) SetRound(name domain.RoomName, round *domain.Round) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[name]
	if !ok {
		return false
	}
	room.Round = round.Clone()
	return true
}

func (s *Store) GetRound(name domain.RoomName) (*domain.Round, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[name]
	if !ok || room.Round == nil {
		return nil, false
	}
	return room.Round.Clone(), true
}

// AddSubmission records (or overwrites) the token's value in the
// current round. Fails gracefully when no round is active.
func (s *Store) AddSubmission(name domain.RoomName, token domain.ParticipantToken, value domain.CardValue) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[name]
	if !ok || room.Round == nil {
		return false
	}
	room.Round.Submissions[token] = value
	return true
}

// RevealRound flips the revealed flag. Calling it twice is harmless;
// whether a repeat reveal is business-valid is the engine's call.
func (s *Store) RevealRound(name domain.RoomName) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[name]
	if !ok || room.Round == nil {
		return false
	}
	room.Round.Revealed = true
	return true
}

// RoomOf is the reverse lookup: which room currently holds the token.
func (s *Store) RoomOf(token domain.ParticipantToken) (domain.RoomName, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.memberOf[token]
	return name, ok
}

// Rooms lists every room with its member count.
func (s *Store) Rooms() []RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]RoomInfo, 0, len(s.rooms))
	for name, r := range s.rooms {
		out = append(out, RoomInfo{Name: name, Participants: len(r.Participants)})
	}
	return out
}
