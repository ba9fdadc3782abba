package domain

import "strconv"

// CardValue is one token from the fixed estimation deck.
type CardValue string

const (
	CardUnknown CardValue = "?"
	CardBreak   CardValue = "☕"
)

// Deck is the fixed set of playable cards. Order matters: result range
// sets are sorted by this order.
var Deck = []CardValue{"0.5", "1", "2", "3", "5", "8", "13", "21", CardUnknown, CardBreak}

var deckIndex = func() map[CardValue]int {
	m := make(map[CardValue]int, len(Deck))
	for i, c := range Deck {
		m[c] = i
	}
	return m
}()

// IsPlayable reports whether v is a member of the deck. Only deck
// members are accepted as submissions.
func (v CardValue) IsPlayable() bool {
	_, ok := deckIndex[v]
	return ok
}

// Numeric parses the card as a real number. The sentinel cards (and
// anything else unparseable) report ok=false.
func (v CardValue) Numeric() (float64, bool) {
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// DeckIndex returns the card's position in the deck, or len(Deck) for
// values outside it, so off-deck values sort after deck members.
func DeckIndex(v CardValue) int {
	if i, ok := deckIndex[v]; ok {
		return i
	}
	return len(Deck)
}
