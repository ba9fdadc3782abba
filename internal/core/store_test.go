package core

import (
	"testing"

	"pointdeck/internal/domain"
)

func newTestRoom(t *testing.T, name string) *domain.Room {
	t.Helper()
	room, err := domain.NewRoom(name)
	if err != nil {
		t.Fatalf("new room: %v", err)
	}
	return room
}

func newTestPlayer(t *testing.T, name string) *domain.Participant {
	t.Helper()
	p, err := domain.NewParticipant(name)
	if err != nil {
		t.Fatalf("new participant: %v", err)
	}
	return p
}

func seedRoom(t *testing.T, s *Store, room string, players ...string) []*domain.Participant {
	t.Helper()
	if !s.CreateRoom(newTestRoom(t, room)) {
		t.Fatalf("create room %q", room)
	}
	out := make([]*domain.Participant, 0, len(players))
	for _, name := range players {
		p := newTestPlayer(t, name)
		if !s.AddParticipant(domain.RoomName(room), p) {
			t.Fatalf("add participant %q", name)
		}
		out = append(out, p)
	}
	return out
}

func TestCreateRoomNoMerge(t *testing.T) {
	s := NewStore()
	if !s.CreateRoom(newTestRoom(t, "alpha")) {
		t.Fatal("first create should succeed")
	}
	if s.CreateRoom(newTestRoom(t, "alpha")) {
		t.Fatal("duplicate create must be refused, not merged")
	}
}

func TestGetRoomReturnsSnapshot(t *testing.T) {
	s := NewStore()
	players := seedRoom(t, s, "alpha", "ann")

	snap, ok := s.GetRoom("alpha")
	if !ok {
		t.Fatal("room should exist")
	}
	snap.Participants[0].Name = "mutated"
	snap.Participants = nil

	again, _ := s.GetRoom("alpha")
	if len(again.Participants) != 1 || again.Participants[0].Name != "ann" {
		t.Fatal("mutating a snapshot must not touch stored state")
	}
	if again.Participants[0].Token != players[0].Token {
		t.Fatal("token changed between snapshots")
	}
}

func TestAddParticipantMovesBetweenRooms(t *testing.T) {
	s := NewStore()
	players := seedRoom(t, s, "alpha", "ann")
	seedRoom(t, s, "beta")

	if !s.AddParticipant("beta", players[0]) {
		t.Fatal("add to second room failed")
	}
	alpha, _ := s.GetRoom("alpha")
	if len(alpha.Participants) != 0 {
		t.Fatal("participant should have been removed from the first room")
	}
	if room, _ := s.RoomOf(players[0].Token); room != "beta" {
		t.Fatalf("reverse map points at %q, want beta", room)
	}
}

func TestRemoveParticipantClearsUnrevealedSubmission(t *testing.T) {
	s := NewStore()
	players := seedRoom(t, s, "alpha", "ann", "bob")
	s.SetRound("alpha", domain.NewRound())
	s.AddSubmission("alpha", players[0].Token, "5")

	s.RemoveParticipant("alpha", players[0].Token)

	round, _ := s.GetRound("alpha")
	if _, ok := round.Submissions[players[0].Token]; ok {
		t.Fatal("unrevealed submission must be cleared on removal")
	}
	if _, ok := s.RoomOf(players[0].Token); ok {
		t.Fatal("reverse mapping must be gone")
	}
}

func TestDisconnectClearsSubmissionOnlyBeforeReveal(t *testing.T) {
	s := NewStore()
	players := seedRoom(t, s, "alpha", "ann")
	token := players[0].Token
	disconnected := false

	s.SetRound("alpha", domain.NewRound())
	s.AddSubmission("alpha", token, "8")
	s.UpdateParticipant("alpha", token, ParticipantUpdate{Connected: &disconnected})

	round, _ := s.GetRound("alpha")
	if _, ok := round.Submissions[token]; ok {
		t.Fatal("disconnect before reveal must clear the submission")
	}

	s.AddSubmission("alpha", token, "8")
	s.RevealRound("alpha")
	s.UpdateParticipant("alpha", token, ParticipantUpdate{Connected: &disconnected})

	round, _ = s.GetRound("alpha")
	if v, ok := round.Submissions[token]; !ok || v != "8" {
		t.Fatal("disconnect after reveal must preserve the submission")
	}
}

func TestAddSubmissionWithoutRound(t *testing.T) {
	s := NewStore()
	players := seedRoom(t, s, "alpha", "ann")
	if s.AddSubmission("alpha", players[0].Token, "5") {
		t.Fatal("submission without a round must fail gracefully")
	}
}

func TestRevealRoundIdempotent(t *testing.T) {
	s := NewStore()
	players := seedRoom(t, s, "alpha", "ann")
	s.SetRound("alpha", domain.NewRound())
	s.AddSubmission("alpha", players[0].Token, "13")

	if !s.RevealRound("alpha") || !s.RevealRound("alpha") {
		t.Fatal("repeat reveal must not fail")
	}
	round, _ := s.GetRound("alpha")
	if !round.Revealed || round.Submissions[players[0].Token] != "13" {
		t.Fatal("repeat reveal must not alter state")
	}
}

func TestDeleteRoomCascades(t *testing.T) {
	s := NewStore()
	players := seedRoom(t, s, "alpha", "ann", "bob")
	if !s.DeleteRoom("alpha") {
		t.Fatal("delete failed")
	}
	for _, p := range players {
		if _, ok := s.RoomOf(p.Token); ok {
			t.Fatalf("reverse mapping for %q survived room deletion", p.Name)
		}
	}
	if _, ok := s.GetRoom("alpha"); ok {
		t.Fatal("room still present")
	}
}

func TestUpdateRoomReplacesWholesale(t *testing.T) {
	s := NewStore()
	players := seedRoom(t, s, "alpha", "ann", "bob")

	snap, _ := s.GetRoom("alpha")
	snap.Participants = snap.Participants[:1]
	if !s.UpdateRoom("alpha", snap) {
		t.Fatal("update failed")
	}

	again, _ := s.GetRoom("alpha")
	if len(again.Participants) != 1 {
		t.Fatalf("participants = %d, want 1", len(again.Participants))
	}
	if _, ok := s.RoomOf(players[1].Token); ok {
		t.Fatal("reverse map must track the replaced membership")
	}
	if s.UpdateRoom("ghost", snap) {
		t.Fatal("updating an absent room must fail")
	}
}

func TestSetRoundReplacesWholesale(t *testing.T) {
	s := NewStore()
	players := seedRoom(t, s, "alpha", "ann")
	s.SetRound("alpha", domain.NewRound())
	s.AddSubmission("alpha", players[0].Token, "3")

	s.SetRound("alpha", domain.NewRound())
	round, _ := s.GetRound("alpha")
	if len(round.Submissions) != 0 {
		t.Fatal("new round must start with an empty submission map")
	}

	s.SetRound("alpha", nil)
	if _, ok := s.GetRound("alpha"); ok {
		t.Fatal("nil round must clear the slot")
	}
}

func TestGetRoundSnapshotIndependence(t *testing.T) {
	s := NewStore()
	players := seedRoom(t, s, "alpha", "ann")
	s.SetRound("alpha", domain.NewRound())
	s.AddSubmission("alpha", players[0].Token, "2")

	round, _ := s.GetRound("alpha")
	round.Submissions[players[0].Token] = "21"

	again, _ := s.GetRound("alpha")
	if again.Submissions[players[0].Token] != "2" {
		t.Fatal("snapshot map must be independent of stored state")
	}
}

func TestRoomsListing(t *testing.T) {
	s := NewStore()
	seedRoom(t, s, "alpha", "ann", "bob")
	seedRoom(t, s, "beta", "cyd")

	counts := make(map[domain.RoomName]int)
	for _, info := range s.Rooms() {
		counts[info.Name] = info.Participants
	}
	if counts["alpha"] != 2 || counts["beta"] != 1 {
		t.Fatalf("unexpected listing: %v", counts)
	}
}
