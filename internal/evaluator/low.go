package evaluator

import (
	"sort"

	"github.com/lox/pokervariants/internal/deck"
)

// Low orderings reuse the high-category machinery and invert it so that
// HandValue still compares higher-is-better: a better low hand gets a
// larger Rank/OrderedRank.

// lowRankBand converts a high category into its low-game band
func lowRankBand(cat int) int {
	return CatFiveOfAKind + 1 - cat
}

// invertPack packs significance-ordered values with each nibble complemented,
// so lower cards produce larger tiebreaks
func invertPackGroups(groups []group) int {
	t := 0
	for _, g := range groups {
		for i := 0; i < g.count; i++ {
			t = t<<4 | (15 - g.val)
		}
	}
	return t
}

// aceLowVals returns descending values with aces counted as 1
func aceLowVals(cards []deck.Card) []int {
	vals := make([]int, len(cards))
	for i, c := range cards {
		vals[i] = lowValue(c.Rank)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
	return vals
}

// evalA5Low ranks ace-to-five lowball: aces low, straights and flushes
// do not count, fewer made hands and lower cards win.
func evalA5Low(cards []deck.Card) HandValue {
	vals := aceLowVals(cards)
	groups := groupVals(vals)
	cat, _ := partialCategory(groups)
	return HandValue{
		Rank:        lowRankBand(cat),
		OrderedRank: invertPackGroups(groups),
		Description: describeLow(cat, vals),
	}
}

// evalA5LowHigh ranks hands by high-hand category over the A-5 card ordering:
// aces play low and straights/flushes do not count, but pairs and sets still
// win. Used by bring-in and visible-hand ordering in low stud games.
func evalA5LowHigh(cards []deck.Card) HandValue {
	vals := aceLowVals(cards)
	groups := groupVals(vals)
	cat, tick := partialCategory(groups)
	return HandValue{
		Rank:        cat,
		OrderedRank: tick,
		Description: describeHigh(cat, vals, false),
	}
}

// evalTwoSevenLow ranks deuce-to-seven lowball: aces high, straights and
// flushes count against the hand.
func evalTwoSevenLow(cards []deck.Card) HandValue {
	vals := cardVals(cards)
	groups := groupVals(vals)

	cat, _ := partialCategory(groups)
	if len(cards) == 5 {
		// Aces are strictly high here, so the A-5 wheel is no straight.
		run := true
		for i := 1; i < 5; i++ {
			if vals[i] != vals[i-1]-1 {
				run = false
				break
			}
		}
		if run {
			if isFlush(cards) {
				cat = CatStraightFlush
			} else {
				cat = CatStraight
			}
		} else if isFlush(cards) {
			cat = CatFlush
		}
	}

	tick := invertPackGroups(groups)
	return HandValue{
		Rank:        lowRankBand(cat),
		OrderedRank: tick,
		Description: describeLow(cat, vals),
	}
}
