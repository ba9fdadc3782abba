package app

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropMessage
	KickSession
)

// Policy decides what happens to a session whose send buffer is full
// during a room broadcast.
type Policy interface {
	OnBackPressure(sid SessionID) BackpressureAction
}

// DropPolicy sheds the message: every broadcast is a full snapshot,
// so a slow client converges on the next one.
type DropPolicy struct{}

func (DropPolicy) OnBackPressure(sid SessionID) BackpressureAction {
	return DropMessage
}
