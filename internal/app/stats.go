package app

import (
	"math"
	"sort"
	"strconv"

	"pointdeck/internal/domain"
)

// PlayerVote is one revealed (name, value) pair.
type PlayerVote struct {
	Token domain.ParticipantToken `json:"token"`
	Name  string                  `json:"name"`
	Value domain.CardValue        `json:"value"`
}

// Result aggregates a revealed round. Non-numeric cards are excluded
// from the average and median but still appear in the range set.
type Result struct {
	Votes       []PlayerVote       `json:"votes"`
	Average     float64            `json:"average"`
	Median      string             `json:"median"`
	Range       []domain.CardValue `json:"range"`
	HasVariance bool               `json:"has_variance"`
}

type VarianceLevel string

const (
	VarianceNone     VarianceLevel = "none"
	VarianceModerate VarianceLevel = "moderate"
	VarianceHigh     VarianceLevel = "high"
)

// Discussion is the richer classification consumed by discussion
// prompts; deliberately decoupled from Result.
type Discussion struct {
	Level        VarianceLevel             `json:"level"`
	Highlighted  []domain.ParticipantToken `json:"highlighted"`
	Consensus    bool                      `json:"consensus"`
	MajorityCard *domain.CardValue         `json:"majority_card"`
	Outliers     []domain.CardValue        `json:"outliers"`
}

// orderedSubmissions lists the round's submissions deterministically:
// current participants in join order first, then submissions left by
// departed players, sorted by deck order and token.
func orderedSubmissions(room *domain.Room, round *domain.Round) []PlayerVote {
	out := make([]PlayerVote, 0, len(round.Submissions))
	seen := make(map[domain.ParticipantToken]bool, len(round.Submissions))
	for _, p := range room.Participants {
		if v, ok := round.Submissions[p.Token]; ok {
			out = append(out, PlayerVote{Token: p.Token, Name: p.Name, Value: v})
			seen[p.Token] = true
		}
	}
	var left []PlayerVote
	for t, v := range round.Submissions {
		if !seen[t] {
			left = append(left, PlayerVote{Token: t, Value: v})
		}
	}
	sort.Slice(left, func(i, j int) bool {
		di, dj := domain.DeckIndex(left[i].Value), domain.DeckIndex(left[j].Value)
		if di != dj {
			return di < dj
		}
		return left[i].Token < left[j].Token
	})
	return append(out, left...)
}

// ComputeResult is a pure function over a revealed round's
// submissions. It never mutates its inputs.
func ComputeResult(room *domain.Room, round *domain.Round) *Result {
	votes := orderedSubmissions(room, round)

	var nums []float64
	firstNonNumeric := domain.CardValue("")
	for _, v := range votes {
		if f, ok := v.Value.Numeric(); ok {
			nums = append(nums, f)
		} else if firstNonNumeric == "" {
			firstNonNumeric = v.Value
		}
	}

	res := &Result{
		Votes:       votes,
		Average:     average(nums),
		Median:      median(nums, firstNonNumeric),
		Range:       rangeSet(votes),
		HasVariance: hasVariance(nums),
	}
	return res
}

// AnalyzeDiscussion classifies a revealed round's disagreement.
func AnalyzeDiscussion(round *domain.Round) *Discussion {
	var nums []float64
	numericOf := make(map[domain.ParticipantToken]float64)
	counts := make(map[domain.CardValue]int)
	total := 0
	for t, v := range round.Submissions {
		total++
		counts[v]++
		if f, ok := v.Numeric(); ok {
			nums = append(nums, f)
			numericOf[t] = f
		}
	}

	d := &Discussion{Level: VarianceNone}
	if hasVariance(nums) {
		lo, hi := minMax(nums)
		if hi-lo > 8 || (lo > 0 && hi/lo > 5) {
			d.Level = VarianceHigh
		} else {
			d.Level = VarianceModerate
		}
		// Every participant sitting at an extreme gets flagged, not
		// just one per extreme value.
		for t, f := range numericOf {
			if f == lo || f == hi {
				d.Highlighted = append(d.Highlighted, t)
			}
		}
		sort.Slice(d.Highlighted, func(i, j int) bool { return d.Highlighted[i] < d.Highlighted[j] })
	}

	d.Consensus = len(counts) == 1 && total > 0
	for v, n := range counts {
		if n*2 > total {
			card := v
			d.MajorityCard = &card
			break
		}
	}
	if total >= 3 {
		for v, n := range counts {
			if n == 1 {
				d.Outliers = append(d.Outliers, v)
			}
		}
		sort.Slice(d.Outliers, func(i, j int) bool {
			return domain.DeckIndex(d.Outliers[i]) < domain.DeckIndex(d.Outliers[j])
		})
	}
	return d
}

func average(nums []float64) float64 {
	if len(nums) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range nums {
		sum += f
	}
	return math.Round(sum/float64(len(nums))*100) / 100
}

// median formats the midpoint back to a textual card-like value. With
// no numeric input it falls back to the first non-numeric submission,
// or "0" when there were no submissions at all.
func median(nums []float64, firstNonNumeric domain.CardValue) string {
	if len(nums) == 0 {
		if firstNonNumeric != "" {
			return string(firstNonNumeric)
		}
		return "0"
	}
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	var m float64
	if len(sorted)%2 == 1 {
		m = sorted[mid]
	} else {
		m = (sorted[mid-1] + sorted[mid]) / 2
	}
	return strconv.FormatFloat(m, 'f', -1, 64)
}

// rangeSet is the set of distinct submitted values, deck order first,
// then alphabetically for anything outside the deck.
func rangeSet(votes []PlayerVote) []domain.CardValue {
	seen := make(map[domain.CardValue]bool)
	var out []domain.CardValue
	for _, v := range votes {
		if !seen[v.Value] {
			seen[v.Value] = true
			out = append(out, v.Value)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		di, dj := domain.DeckIndex(out[i]), domain.DeckIndex(out[j])
		if di != dj {
			return di < dj
		}
		return out[i] < out[j]
	})
	return out
}

// hasVariance flags disagreement worth discussing: a wide absolute
// spread, or a proportionally wide one at small scale (1 vs 3 counts,
// 20 vs 21 does not). Fewer than two numeric votes never vary.
func hasVariance(nums []float64) bool {
	if len(nums) < 2 {
		return false
	}
	lo, hi := minMax(nums)
	return hi-lo > 2 || (lo > 0 && hi/lo > 2)
}

func minMax(nums []float64) (lo, hi float64) {
	lo, hi = nums[0], nums[0]
	for _, f := range nums[1:] {
		if f < lo {
			lo = f
		}
		if f > hi {
			hi = f
		}
	}
	return lo, hi
}
