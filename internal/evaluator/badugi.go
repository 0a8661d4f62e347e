package evaluator

import (
	"sort"

	"github.com/lox/pokervariants/internal/deck"
)

// evalBadugi ranks a badugi hand: the best subset of cards with no shared
// rank or suit. Rank is the badugi size (four-card badugi beats any
// three-card hand). For badugi proper (low=true) aces are low and lower
// cards win; hidugi reverses the card ordering.
func evalBadugi(cards []deck.Card, low bool) HandValue {
	best := bestBadugiSubset(cards, low)

	vals := make([]int, len(best))
	for i, c := range best {
		if low {
			vals[i] = lowValue(c.Rank)
		} else {
			vals[i] = int(c.Rank)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))

	tick := 0
	for _, v := range vals {
		if low {
			tick = tick<<4 | (15 - v)
		} else {
			tick = tick<<4 | (v - 1)
		}
	}
	return HandValue{
		Rank:        len(best),
		OrderedRank: tick,
		Description: describeBadugi(len(best), vals, low),
	}
}

// bestBadugiSubset finds the largest rainbow, rank-distinct subset; among
// equal sizes the best by the game's card ordering.
func bestBadugiSubset(cards []deck.Card, low bool) []deck.Card {
	var best []deck.Card
	var bestKey int

	n := len(cards)
	for mask := 1; mask < 1<<n; mask++ {
		var subset []deck.Card
		suits := map[deck.Suit]bool{}
		ranks := map[deck.Rank]bool{}
		ok := true
		for i := 0; i < n && ok; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			c := cards[i]
			if c.IsJoker() || suits[c.Suit] || ranks[c.Rank] {
				ok = false
				break
			}
			suits[c.Suit] = true
			ranks[c.Rank] = true
			subset = append(subset, c)
		}
		if !ok {
			continue
		}
		key := subsetKey(subset, low)
		if len(subset) > len(best) || (len(subset) == len(best) && key > bestKey) {
			best = subset
			bestKey = key
		}
	}
	return best
}

func subsetKey(subset []deck.Card, low bool) int {
	vals := make([]int, len(subset))
	for i, c := range subset {
		if low {
			vals[i] = lowValue(c.Rank)
		} else {
			vals[i] = int(c.Rank)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
	key := 0
	for _, v := range vals {
		if low {
			key = key<<4 | (15 - v)
		} else {
			key = key<<4 | (v - 1)
		}
	}
	return key
}
