package app

import (
	"reflect"
	"testing"

	"pointdeck/internal/domain"
)

// statsRoom builds a revealed round from (name, value) pairs in join
// order.
func statsRoom(t *testing.T, picks [][2]string) (*domain.Room, *domain.Round) {
	t.Helper()
	room, err := domain.NewRoom("stats")
	if err != nil {
		t.Fatalf("room: %v", err)
	}
	round := domain.NewRound()
	round.Revealed = true
	for _, pick := range picks {
		p, err := domain.NewParticipant(pick[0])
		if err != nil {
			t.Fatalf("participant: %v", err)
		}
		room.Participants = append(room.Participants, p)
		if pick[1] != "" {
			round.Submissions[p.Token] = domain.CardValue(pick[1])
		}
	}
	room.Round = round
	return room, round
}

func cards(vals ...string) []domain.CardValue {
	out := make([]domain.CardValue, 0, len(vals))
	for _, v := range vals {
		out = append(out, domain.CardValue(v))
	}
	return out
}

func TestResultNumericOnly(t *testing.T) {
	room, round := statsRoom(t, [][2]string{{"ann", "5"}, {"bob", "8"}, {"cyd", "3"}})
	res := ComputeResult(room, round)

	if res.Average != 5.33 {
		t.Fatalf("average = %v, want 5.33", res.Average)
	}
	if res.Median != "5" {
		t.Fatalf("median = %q, want 5", res.Median)
	}
	if !reflect.DeepEqual(res.Range, cards("3", "5", "8")) {
		t.Fatalf("range = %v, want deck-ordered {3,5,8}", res.Range)
	}
	if !res.HasVariance {
		t.Fatal("8-3=5 > 2: variance expected")
	}
}

func TestResultWithSentinels(t *testing.T) {
	room, round := statsRoom(t, [][2]string{{"ann", "?"}, {"bob", "☕"}, {"cyd", "5"}})
	res := ComputeResult(room, round)

	if res.Average != 5 {
		t.Fatalf("average = %v, want 5 (numeric subset only)", res.Average)
	}
	if res.Median != "5" {
		t.Fatalf("median = %q, want 5", res.Median)
	}
	if !reflect.DeepEqual(res.Range, cards("5", "?", "☕")) {
		t.Fatalf("range = %v, want {5,?,☕} in deck order", res.Range)
	}
	if res.HasVariance {
		t.Fatal("fewer than 2 numeric values: no variance")
	}
}

func TestResultAllSentinels(t *testing.T) {
	room, round := statsRoom(t, [][2]string{{"ann", "?"}, {"bob", "☕"}})
	res := ComputeResult(room, round)

	if res.Average != 0 {
		t.Fatalf("average = %v, want 0", res.Average)
	}
	if res.Median != "?" {
		t.Fatalf("median = %q, want first non-numeric in join order", res.Median)
	}
	if res.HasVariance {
		t.Fatal("no numeric values: no variance")
	}
}

func TestResultEmptyRound(t *testing.T) {
	room, round := statsRoom(t, [][2]string{{"ann", ""}})
	res := ComputeResult(room, round)

	if res.Average != 0 || res.Median != "0" {
		t.Fatalf("empty round: average=%v median=%q, want 0/\"0\"", res.Average, res.Median)
	}
	if len(res.Votes) != 0 || len(res.Range) != 0 {
		t.Fatal("empty round must produce empty votes and range")
	}
}

func TestResultVotesInJoinOrder(t *testing.T) {
	room, round := statsRoom(t, [][2]string{{"ann", "8"}, {"bob", "2"}, {"cyd", "13"}})
	res := ComputeResult(room, round)

	names := []string{res.Votes[0].Name, res.Votes[1].Name, res.Votes[2].Name}
	if !reflect.DeepEqual(names, []string{"ann", "bob", "cyd"}) {
		t.Fatalf("votes out of join order: %v", names)
	}
}

func TestResultMedianEvenCount(t *testing.T) {
	room, round := statsRoom(t, [][2]string{{"ann", "5"}, {"bob", "8"}})
	res := ComputeResult(room, round)
	if res.Median != "6.5" {
		t.Fatalf("median = %q, want 6.5", res.Median)
	}
}

func TestVarianceThresholds(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"small absolute, wide ratio", "1", "3", true},
		{"adjacent small", "2", "3", false},
		{"wide absolute", "3", "8", true},
		{"adjacent large", "13", "21", true}, // 21-13=8 > 2
		{"identical", "5", "5", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			room, round := statsRoom(t, [][2]string{{"ann", tc.a}, {"bob", tc.b}})
			if got := ComputeResult(room, round).HasVariance; got != tc.want {
				t.Fatalf("%s vs %s: variance=%v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestDiscussionLevels(t *testing.T) {
	_, round := statsRoom(t, [][2]string{{"ann", "3"}, {"bob", "8"}})
	if d := AnalyzeDiscussion(round); d.Level != VarianceModerate {
		t.Fatalf("3 vs 8: level=%s, want moderate", d.Level)
	}

	_, round = statsRoom(t, [][2]string{{"ann", "1"}, {"bob", "13"}})
	if d := AnalyzeDiscussion(round); d.Level != VarianceHigh {
		t.Fatalf("1 vs 13: level=%s, want high", d.Level)
	}

	_, round = statsRoom(t, [][2]string{{"ann", "5"}, {"bob", "5"}})
	if d := AnalyzeDiscussion(round); d.Level != VarianceNone {
		t.Fatalf("5 vs 5: level=%s, want none", d.Level)
	}
}

func TestDiscussionHighlightsEveryExtremeVoter(t *testing.T) {
	room, round := statsRoom(t, [][2]string{{"ann", "1"}, {"bob", "1"}, {"cyd", "13"}})
	d := AnalyzeDiscussion(round)

	if len(d.Highlighted) != 3 {
		t.Fatalf("highlighted %d tokens, want all three extremes", len(d.Highlighted))
	}
	flagged := make(map[domain.ParticipantToken]bool)
	for _, tok := range d.Highlighted {
		flagged[tok] = true
	}
	for _, p := range room.Participants {
		if !flagged[p.Token] {
			t.Fatalf("%s sits at an extreme but was not flagged", p.Name)
		}
	}
}

func TestDiscussionConsensusAndMajority(t *testing.T) {
	_, round := statsRoom(t, [][2]string{{"ann", "5"}, {"bob", "5"}, {"cyd", "5"}})
	d := AnalyzeDiscussion(round)
	if !d.Consensus {
		t.Fatal("single distinct value must be consensus")
	}
	if d.MajorityCard == nil || *d.MajorityCard != "5" {
		t.Fatal("consensus value is also the majority card")
	}

	_, round = statsRoom(t, [][2]string{{"ann", "5"}, {"bob", "5"}, {"cyd", "8"}})
	d = AnalyzeDiscussion(round)
	if d.Consensus {
		t.Fatal("two distinct values is not consensus")
	}
	if d.MajorityCard == nil || *d.MajorityCard != "5" {
		t.Fatal("2 of 3 is a strict majority")
	}

	// An exact 50/50 split has no majority.
	_, round = statsRoom(t, [][2]string{{"ann", "5"}, {"bob", "8"}})
	if d = AnalyzeDiscussion(round); d.MajorityCard != nil {
		t.Fatalf("50/50 split: majority=%v, want none", *d.MajorityCard)
	}
}

func TestDiscussionOutliers(t *testing.T) {
	// With only two submissions a lone value is just the other
	// opinion, not an outlier.
	_, round := statsRoom(t, [][2]string{{"ann", "5"}, {"bob", "21"}})
	if d := AnalyzeDiscussion(round); len(d.Outliers) != 0 {
		t.Fatalf("outliers with 2 submissions: %v", d.Outliers)
	}

	_, round = statsRoom(t, [][2]string{{"ann", "5"}, {"bob", "5"}, {"cyd", "21"}})
	d := AnalyzeDiscussion(round)
	if !reflect.DeepEqual(d.Outliers, cards("21")) {
		t.Fatalf("outliers = %v, want {21}", d.Outliers)
	}
}
