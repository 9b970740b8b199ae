package scoring

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// ScoredEntry is the input to ranking: a name and its composite score.
type ScoredEntry struct {
	EntryName string
	Score     decimal.Decimal
}

// RankedEntry carries an entry's competition rank. Tied entries share the
// rank of the first member of their tie group.
type RankedEntry struct {
	EntryName string
	Score     decimal.Decimal
	Rank      int
	Tied      bool
}

// Rank assigns competition-style positions ("1,2,2,4" not "1,2,2,3") over
// composite scores, lower is better. The sort is stable so repeated runs
// against unchanged data present equal-score entries in the same order.
func Rank(entries []ScoredEntry) []RankedEntry {
	sorted := make([]ScoredEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score.LessThan(sorted[j].Score)
	})

	ranked := make([]RankedEntry, len(sorted))
	for i, e := range sorted {
		ranked[i] = RankedEntry{EntryName: e.EntryName, Score: e.Score}
	}

	groupStart := 0
	for i := 1; i <= len(ranked); i++ {
		if i < len(ranked) && ranked[i].Score.Equal(ranked[groupStart].Score) {
			continue
		}
		tied := i-groupStart > 1
		for j := groupStart; j < i; j++ {
			ranked[j].Rank = groupStart + 1
			ranked[j].Tied = tied
		}
		groupStart = i
	}
	return ranked
}

// Label renders a rank the way golf leaderboards do: "T4" for a tie, plain
// "4" for a singleton.
func (r RankedEntry) Label() string {
	if r.Tied {
		return "T" + strconv.Itoa(r.Rank)
	}
	return strconv.Itoa(r.Rank)
}
