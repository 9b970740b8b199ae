package scoring

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// EntrySize is the number of golfer slots on every entry.
const EntrySize = 8

// GolferResult is the slice of a golfer's leaderboard line the scorer needs.
// A zero value (empty Total, empty Position) represents an unresolved pick
// and normalizes to the eligibility sentinel.
type GolferResult struct {
	PlayerID string
	Total    string
	Position string
}

// normalized returns the eight stroke values for an entry, padded to
// EntrySize with sentinels and sorted ascending.
func normalized(golfers []GolferResult) []int {
	values := make([]int, 0, EntrySize)
	for _, g := range golfers {
		values = append(values, Normalize(g.Total, g.Position))
	}
	for len(values) < EntrySize {
		values = append(values, IneligibleScore)
	}
	sort.Ints(values)
	return values
}

// Composite produces the single totally-ordered ranking score for an entry.
// The integer part is the sum of the best five stroke values; each of the
// eight sorted values also contributes value/10^(i+3), so an ascending sort
// of composites reproduces best-5 ordering with ties broken by the 1st-best
// golfer, then 2nd-best, through the 8th. Decimal arithmetic keeps the
// power-of-ten fractions exact; float64 rounding here would silently break
// tie-break determinism.
func Composite(golfers []GolferResult) decimal.Decimal {
	values := normalized(golfers)

	bestFive := 0
	for _, v := range values[:5] {
		bestFive += v
	}

	score := decimal.NewFromInt(int64(bestFive))
	for i, v := range values {
		weight := decimal.New(1, -int32(i+3)) // 10^-(i+3)
		score = score.Add(decimal.NewFromInt(int64(v)).Mul(weight))
	}
	return score
}

// Display produces the human-facing "to par" number: the unweighted sum of
// the five lowest stroke values. If four or more golfers are ineligible the
// entry itself is cut and the boolean is false; the numeric result is
// meaningless in that case. Display is presentation-only and never feeds
// ranking or payouts.
func Display(golfers []GolferResult) (int, bool) {
	ineligible := 0
	for _, g := range golfers {
		if Ineligible(g.Position) || Normalize(g.Total, g.Position) == IneligibleScore {
			ineligible++
		}
	}
	ineligible += EntrySize - len(golfers)
	if ineligible >= 4 {
		return 0, false
	}

	values := normalized(golfers)
	sum := 0
	for _, v := range values[:5] {
		sum += v
	}
	return sum, true
}

// FormatDisplay renders a display score the way the leaderboard shows it:
// "CUT" for an eliminated entry, "E" for even, signed otherwise.
func FormatDisplay(score int, ok bool) string {
	if !ok {
		return "CUT"
	}
	if score == 0 {
		return "E"
	}
	if score > 0 {
		return "+" + strconv.Itoa(score)
	}
	return strconv.Itoa(score)
}
