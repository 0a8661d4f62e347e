package evaluator

import (
	"sort"
	"sync"

	"github.com/lox/pokervariants/internal/deck"
)

// wheel selects which five-card run counts as the low straight
type wheel int

const (
	wheelStandard wheel = iota // A-2-3-4-5
	wheelShort                 // A-6-7-8-9 (36-card deck)
)

// entry is a precomputed (category, tiebreak) pair
type entry struct {
	cat  int
	tick int
}

var (
	tablesOnce sync.Once

	// five-card rank tables keyed by canonical multiset key.
	// One per wheel rule; short-deck category remapping happens at lookup.
	highTable      map[uint32]entry
	highShortTable map[uint32]entry
)

// Init precomputes the shared rank tables. Safe to call from multiple
// goroutines; the work happens once per process. Game construction calls
// this so evaluation never builds tables under a hot path.
func Init() {
	initTables()
}

func initTables() {
	tablesOnce.Do(func() {
		highTable = buildHighTable(wheelStandard)
		highShortTable = buildHighTable(wheelShort)
	})
}

// canonKey packs five descending rank values (2..14) into 4-bit fields,
// with bit 20 flagging a flush. The key identifies a card multiset up to
// suit isomorphism, which is all the high-style orderings need.
func canonKey(vals []int, flush bool) uint32 {
	var k uint32
	for _, v := range vals {
		k = k<<4 | uint32(v-1)
	}
	if flush {
		k |= 1 << 20
	}
	return k
}

// buildHighTable enumerates every 5-rank multiset (and the flush variant for
// distinct-rank sets) and stores its category and tiebreak.
func buildHighTable(w wheel) map[uint32]entry {
	table := make(map[uint32]entry, 8192)
	var vals [5]int
	var rec func(pos, start int)
	rec = func(pos, start int) {
		if pos == 5 {
			counts := map[int]int{}
			for _, v := range vals {
				counts[v]++
			}
			for _, c := range counts {
				if c > 4 {
					return // impossible without wilds; wild path handles quints
				}
			}
			sorted := vals
			sort.Sort(sort.Reverse(sort.IntSlice(sorted[:])))
			cat, tick := classify(sorted[:], false, w)
			table[canonKey(sorted[:], false)] = entry{cat, tick}
			if len(counts) == 5 {
				cat, tick = classify(sorted[:], true, w)
				table[canonKey(sorted[:], true)] = entry{cat, tick}
			}
			return
		}
		for v := 2; v <= 14; v++ {
			if v < start {
				continue
			}
			vals[pos] = v
			rec(pos+1, v)
		}
	}
	rec(0, 2)
	return table
}

// classify computes (category, tiebreak) for five descending rank values
func classify(desc []int, flush bool, w wheel) (int, int) {
	straightHigh := straightHighCard(desc, w)
	if straightHigh > 0 && flush {
		return CatStraightFlush, packVals([]int{straightHigh})
	}

	groups := groupVals(desc)
	switch {
	case groups[0].count == 4:
		return CatFourOfAKind, packGroups(groups)
	case groups[0].count == 3 && len(groups) > 1 && groups[1].count == 2:
		return CatFullHouse, packGroups(groups)
	case flush:
		return CatFlush, packVals(desc)
	case straightHigh > 0:
		return CatStraight, packVals([]int{straightHigh})
	case groups[0].count == 3:
		return CatThreeOfAKind, packGroups(groups)
	case groups[0].count == 2 && len(groups) > 1 && groups[1].count == 2:
		return CatTwoPair, packGroups(groups)
	case groups[0].count == 2:
		return CatPair, packGroups(groups)
	default:
		return CatHighCard, packVals(desc)
	}
}

// straightHighCard returns the high card value of a straight, or 0
func straightHighCard(desc []int, w wheel) int {
	if len(desc) != 5 {
		return 0
	}
	run := true
	for i := 1; i < 5; i++ {
		if desc[i] != desc[i-1]-1 {
			run = false
			break
		}
	}
	if run {
		return desc[0]
	}
	// Ace-low wheel per deck type. The wheel's straight ranks below every
	// other straight, so its high card is the top non-ace card.
	switch w {
	case wheelStandard:
		if desc[0] == 14 && desc[1] == 5 && desc[2] == 4 && desc[3] == 3 && desc[4] == 2 {
			return 5
		}
	case wheelShort:
		if desc[0] == 14 && desc[1] == 9 && desc[2] == 8 && desc[3] == 7 && desc[4] == 6 {
			return 9
		}
	}
	return 0
}

type group struct {
	val   int
	count int
}

// groupVals groups descending values by count desc, then value desc
func groupVals(desc []int) []group {
	counts := map[int]int{}
	for _, v := range desc {
		counts[v]++
	}
	groups := make([]group, 0, len(counts))
	for v, c := range counts {
		groups = append(groups, group{v, c})
	}
	sort.Slice(groups, func(i, j int) bool {
		if groups[i].count != groups[j].count {
			return groups[i].count > groups[j].count
		}
		return groups[i].val > groups[j].val
	})
	return groups
}

// packVals packs significance-ordered values into a 4-bit-per-card int
func packVals(vals []int) int {
	t := 0
	for _, v := range vals {
		t = t<<4 | (v - 1)
	}
	return t
}

// packGroups packs group values in significance order, one nibble per card
// so equal-length hands always compare on aligned fields
func packGroups(groups []group) int {
	t := 0
	for _, g := range groups {
		for i := 0; i < g.count; i++ {
			t = t<<4 | (g.val - 1)
		}
	}
	return t
}

// cardVals returns descending rank values (aces high)
func cardVals(cards []deck.Card) []int {
	vals := make([]int, len(cards))
	for i, c := range cards {
		vals[i] = int(c.Rank)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
	return vals
}

func isFlush(cards []deck.Card) bool {
	if len(cards) < 5 {
		return false
	}
	for _, c := range cards[1:] {
		if c.Suit != cards[0].Suit {
			return false
		}
	}
	return true
}

// evalHigh ranks a standard high hand. Five cards hit the precomputed table;
// shorter hands are classified directly (no straights or flushes apply).
func evalHigh(cards []deck.Card, w wheel) HandValue {
	desc := cardVals(cards)
	if len(cards) == 5 {
		table := highTable
		if w == wheelShort {
			table = highShortTable
		}
		e := table[canonKey(desc, isFlush(cards))]
		return HandValue{Rank: e.cat, OrderedRank: e.tick, Description: describeHigh(e.cat, desc, w == wheelShort)}
	}
	groups := groupVals(desc)
	cat, tick := partialCategory(groups)
	return HandValue{Rank: cat, OrderedRank: tick, Description: describeHigh(cat, desc, false)}
}

// evalShortHigh applies the 36-card ordering: flushes beat full houses.
// The category band swaps; the description stays truthful to the cards.
func evalShortHigh(cards []deck.Card) HandValue {
	v := evalHigh(cards, wheelShort)
	switch v.Rank {
	case CatFlush:
		v.Rank = CatFullHouse
	case CatFullHouse:
		v.Rank = CatFlush
	}
	return v
}

// partialCategory classifies a 1-4 card hand on made groups only
func partialCategory(groups []group) (int, int) {
	switch {
	case groups[0].count == 4:
		return CatFourOfAKind, packGroups(groups)
	case groups[0].count == 3 && len(groups) > 1 && groups[1].count == 2:
		return CatFullHouse, packGroups(groups)
	case groups[0].count == 3:
		return CatThreeOfAKind, packGroups(groups)
	case groups[0].count == 2 && len(groups) > 1 && groups[1].count == 2:
		return CatTwoPair, packGroups(groups)
	case groups[0].count == 2:
		return CatPair, packGroups(groups)
	default:
		return CatHighCard, packGroups(groups)
	}
}
