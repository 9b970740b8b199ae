package scoring

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func golfer(total, position string) GolferResult {
	return GolferResult{Total: total, Position: position}
}

func TestCompositeExactValue(t *testing.T) {
	// Sorted stroke values: [-5, -3, 0, 1, 2, 4, 6, 99].
	// Best five sum to -5; the weighted tail appends each value at
	// decreasing significance.
	golfers := []GolferResult{
		golfer("+1", "T10"),
		golfer("-5", "1"),
		golfer("E", "T7"),
		golfer("+4", "T30"),
		golfer("-3", "2"),
		golfer("+2", "T15"),
		golfer("-2", "CUT"),
		golfer("+6", "T40"),
	}

	got := Composite(golfers)
	want := decimal.RequireFromString("-5.0052987441")
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestCompositeTieBreakBySixthGolfer(t *testing.T) {
	// Same best five, different 6th-best golfer. The entry whose 6th
	// golfer stands lower must sort first.
	base := []GolferResult{
		golfer("-4", "1"), golfer("-3", "2"), golfer("-2", "3"),
		golfer("-1", "4"), golfer("E", "5"),
	}
	a := append(append([]GolferResult{}, base...),
		golfer("+2", "T20"), golfer("+5", "T40"), golfer("+8", "T60"))
	b := append(append([]GolferResult{}, base...),
		golfer("+3", "T25"), golfer("+5", "T40"), golfer("+8", "T60"))

	scoreA := Composite(a)
	scoreB := Composite(b)
	require.True(t, scoreA.LessThan(scoreB), "6th-best golfer must break the tie: %s vs %s", scoreA, scoreB)

	// And the integer parts agree since the best five are identical.
	assert.True(t, scoreA.Floor().Equal(scoreB.Floor()))
}

func TestCompositeSortOrderMatchesLexicographicTieBreak(t *testing.T) {
	// Entries identical through the 7th golfer differ only on the 8th;
	// the composite must still order them.
	common := []GolferResult{
		golfer("-4", "1"), golfer("-3", "2"), golfer("-2", "3"),
		golfer("-1", "4"), golfer("E", "5"), golfer("+1", "6"),
		golfer("+2", "7"),
	}
	better := append(append([]GolferResult{}, common...), golfer("+3", "8"))
	worse := append(append([]GolferResult{}, common...), golfer("+4", "9"))

	assert.True(t, Composite(better).LessThan(Composite(worse)))
}

func TestCompositeMissingGolfersPadToSentinel(t *testing.T) {
	// Five resolved golfers; the three unresolved slots pad with 99s and
	// only perturb the fractional tail.
	partial := []GolferResult{
		golfer("-2", "1"), golfer("-1", "2"), golfer("E", "3"),
		golfer("+1", "4"), golfer("+2", "5"),
	}
	full := append(append([]GolferResult{}, partial...),
		golfer("", "WD"), golfer("", "WD"), golfer("", "WD"))

	assert.True(t, Composite(partial).Equal(Composite(full)))
}

func TestDisplay(t *testing.T) {
	t.Run("sums lowest five unweighted", func(t *testing.T) {
		golfers := []GolferResult{
			golfer("-4", "1"), golfer("-2", "T3"), golfer("E", "T10"),
			golfer("+1", "T12"), golfer("+1", "T12"), golfer("+5", "T40"),
			golfer("+9", "T70"), golfer("-1", "CUT"),
		}
		score, ok := Display(golfers)
		require.True(t, ok)
		assert.Equal(t, -4, score)
	})

	t.Run("four ineligible golfers cut the entry", func(t *testing.T) {
		golfers := []GolferResult{
			golfer("-4", "1"), golfer("-2", "T3"), golfer("E", "T10"),
			golfer("+1", "T12"),
			golfer("E", "CUT"), golfer("E", "WD"), golfer("E", "DQ"),
			golfer("E", "CUT"),
		}
		_, ok := Display(golfers)
		assert.False(t, ok)
	})

	t.Run("three ineligible still shows a number", func(t *testing.T) {
		golfers := []GolferResult{
			golfer("-4", "1"), golfer("-2", "T3"), golfer("E", "T10"),
			golfer("+1", "T12"), golfer("+2", "T15"),
			golfer("E", "CUT"), golfer("E", "WD"), golfer("E", "DQ"),
		}
		score, ok := Display(golfers)
		require.True(t, ok)
		assert.Equal(t, -3, score)
	})

	t.Run("missing slots count toward the cut", func(t *testing.T) {
		// Four resolved golfers, four missing: entry is cut.
		golfers := []GolferResult{
			golfer("-4", "1"), golfer("-2", "T3"), golfer("E", "T10"),
			golfer("+1", "T12"),
		}
		_, ok := Display(golfers)
		assert.False(t, ok)
	})
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "CUT", FormatDisplay(0, false))
	assert.Equal(t, "E", FormatDisplay(0, true))
	assert.Equal(t, "+7", FormatDisplay(7, true))
	assert.Equal(t, "-12", FormatDisplay(-12, true))
}
