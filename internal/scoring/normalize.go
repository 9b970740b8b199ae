// Package scoring implements the pool's scoring, ranking, and payout
// algorithms. All stroke comparisons in the codebase go through Normalize so
// that the eligibility sentinel and tie-break behavior stay deterministic.
package scoring

import (
	"strconv"
	"strings"
)

// IneligibleScore is the worst-case placeholder substituted for a golfer who
// is cut, withdrawn, disqualified, or could not be resolved against stored
// scores. It is rankable (sorts last) but never shown as a real number.
const IneligibleScore = 99

// Ineligible reports whether a leaderboard position flags the golfer out of
// the field.
func Ineligible(position string) bool {
	switch position {
	case "CUT", "WD", "DQ":
		return true
	}
	return false
}

// Normalize converts one golfer's (total, position) pair into a signed
// stroke value relative to par. "E" means even, and a blank total with a
// normal position is a golfer who has not teed off yet, so both read as
// zero. Totals carry an explicit +/- prefix otherwise; anything unparsable
// degrades to the sentinel rather than failing the entry.
func Normalize(total, position string) int {
	if Ineligible(position) {
		return IneligibleScore
	}
	total = strings.TrimSpace(total)
	if total == "" || total == "E" {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(total, "+"))
	if err != nil {
		return IneligibleScore
	}
	return n
}
