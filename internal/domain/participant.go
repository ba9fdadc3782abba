// Package domain contains entities without logic, just meta-data.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const MaxNameLen = 36

var (
	ErrNameEmpty   = errors.New("name empty")
	ErrNameTooLong = errors.New("name too long")
)

// ParticipantToken is the server-generated identity of a participant.
// It is stable across reconnects as long as the identity is reused.
type ParticipantToken string

type Participant struct {
	Token     ParticipantToken `json:"token"`
	Name      string           `json:"name"`
	Connected bool             `json:"connected"`
	JoinedAt  time.Time        `json:"joined_at"`
}

// NewParticipant validates the display name and mints a fresh token.
func NewParticipant(name string) (*Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &Participant{
		Token:     ParticipantToken(uuid.NewString()),
		Name:      name,
		Connected: true,
		JoinedAt:  time.Now(),
	}, nil
}

// SameName compares display names case-insensitively, the uniqueness
// rule inside a room.
func (p *Participant) SameName(name string) bool {
	return strings.EqualFold(p.Name, strings.TrimSpace(name))
}
