package scoring

import (
	"github.com/shopspring/decimal"
)

// payoutCurve is the share of the total pool paid to each finishing place.
// Places beyond the tenth receive nothing. The percentages sum to roughly
// 85.4%, leaving headroom for the charity carve-out.
var payoutCurve = map[int]decimal.Decimal{
	1:  decimal.RequireFromString("0.202765957446809"),
	2:  decimal.RequireFromString("0.149574468085106"),
	3:  decimal.RequireFromString("0.12298"),
	4:  decimal.RequireFromString("0.09638"),
	5:  decimal.RequireFromString("0.06979"),
	6:  decimal.RequireFromString("0.06383"),
	7:  decimal.RequireFromString("0.05319"),
	8:  decimal.RequireFromString("0.04255"),
	9:  decimal.RequireFromString("0.03191"),
	10: decimal.RequireFromString("0.02128"),
}

// Distribution is the computed prize pool split. All amounts are whole
// dollars; the sum of Payouts never exceeds PayablePool.
type Distribution struct {
	TotalPool   int
	Donation    int
	PayablePool int
	Payouts     map[string]int
}

// Distribute allocates the purse across ranked entries. Tied entries
// occupying places p..p+k-1 share the curve's payout for all k places,
// split equally in whole dollars with the leftover dollars going to the
// earliest entries in the group. Re-derivable purely from the ranked
// composite scores; the display "CUT" sentinel plays no part here.
func Distribute(ranked []RankedEntry, feePerEntry int, donationRate float64) Distribution {
	totalPool := len(ranked) * feePerEntry
	total := decimal.NewFromInt(int64(totalPool))
	donation := total.Mul(decimal.NewFromFloat(donationRate)).Round(0)

	dist := Distribution{
		TotalPool: totalPool,
		Donation:  int(donation.IntPart()),
		Payouts:   make(map[string]int, len(ranked)),
	}
	dist.PayablePool = dist.TotalPool - dist.Donation

	for start := 0; start < len(ranked); {
		end := start + 1
		for end < len(ranked) && ranked[end].Rank == ranked[start].Rank {
			end++
		}
		size := end - start

		groupShare := decimal.Zero
		for place := start + 1; place <= end; place++ {
			if pct, ok := payoutCurve[place]; ok {
				groupShare = groupShare.Add(total.Mul(pct))
			}
		}

		// Whole dollars only; flooring keeps the running total under the
		// payable pool, and the remainder goes a dollar at a time to the
		// numerically first tied entries.
		groupDollars := int(groupShare.Floor().IntPart())
		base := groupDollars / size
		remainder := groupDollars % size
		for i := start; i < end; i++ {
			payout := base
			if i-start < remainder {
				payout++
			}
			dist.Payouts[ranked[i].EntryName] = payout
		}

		start = end
	}
	return dist
}
