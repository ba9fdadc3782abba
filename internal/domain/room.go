package domain

import (
	"strings"
	"time"
)

type RoomName string

// Room is a named isolation boundary: one participant list, at most
// one round. The name doubles as the unique key.
type Room struct {
	Name         RoomName
	CreatedAt    time.Time
	Participants []*Participant
	Round        *Round
}

// NewRoom validates the trimmed name using the same bounds as display
// names.
func NewRoom(name string) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &Room{
		Name:      RoomName(name),
		CreatedAt: time.Now(),
	}, nil
}

// Clone returns an independent copy: fresh participant structs and a
// cloned round, so callers never alias live store state.
func (r *Room) Clone() *Room {
	if r == nil {
		return nil
	}
	cp := &Room{
		Name:         r.Name,
		CreatedAt:    r.CreatedAt,
		Participants: make([]*Participant, 0, len(r.Participants)),
		Round:        r.Round.Clone(),
	}
	for _, p := range r.Participants {
		pc := *p
		cp.Participants = append(cp.Participants, &pc)
	}
	return cp
}

// FindByName scans participants case-insensitively, join order.
func (r *Room) FindByName(name string) *Participant {
	for _, p := range r.Participants {
		if p.SameName(name) {
			return p
		}
	}
	return nil
}

// FindByToken returns the participant holding token, if any.
func (r *Room) FindByToken(token ParticipantToken) *Participant {
	for _, p := range r.Participants {
		if p.Token == token {
			return p
		}
	}
	return nil
}
