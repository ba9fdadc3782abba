package domain

import "time"

// Round is one collect-then-reveal voting cycle. Submissions stay
// confidential until Revealed flips.
type Round struct {
	Submissions map[ParticipantToken]CardValue
	Revealed    bool
	StartedAt   time.Time
}

// NewRound always starts empty and hidden; starting over discards any
// prior round wholesale.
func NewRound() *Round {
	return &Round{
		Submissions: make(map[ParticipantToken]CardValue),
		StartedAt:   time.Now(),
	}
}

// Clone returns an independent copy with its own submission map.
func (r *Round) Clone() *Round {
	if r == nil {
		return nil
	}
	cp := &Round{
		Submissions: make(map[ParticipantToken]CardValue, len(r.Submissions)),
		Revealed:    r.Revealed,
		StartedAt:   r.StartedAt,
	}
	for t, v := range r.Submissions {
		cp.Submissions[t] = v
	}
	return cp
}
