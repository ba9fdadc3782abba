package app

import "errors"

// Business failures are plain sentinel values checked with errors.Is.
// They are surfaced to the acting client only; nothing here escalates.
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrNameTaken         = errors.New("name already taken in this room")
	ErrNoRound           = errors.New("no active round")
	ErrRoundHidden       = errors.New("round not revealed yet")
	ErrEmptyRoom         = errors.New("room has no participants")
	ErrNotInDeck         = errors.New("value is not a deck card")
	ErrPlayerStillActive = errors.New("cannot remove a connected player")
)
