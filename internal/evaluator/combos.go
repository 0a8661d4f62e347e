package evaluator

import (
	"fmt"

	"github.com/lox/pokervariants/internal/deck"
)

// SubsetSpec bounds how many cards a named hole subset contributes
type SubsetSpec struct {
	Name string
	Min  int
	Max  int
}

// Combinator selects which card combinations FindBest may form.
// With no Subsets, hole cards are pooled and HoleMin/HoleMax bound the hole
// contribution (-1 for either means unconstrained, the "any 5 of N" case).
type Combinator struct {
	HandSize int // 0 means 5
	HoleMin  int
	HoleMax  int
	Subsets  []SubsetSpec
	// ExcludeUsed removes cards consumed by a prior hand configuration,
	// for variants where a second hand plays the leftovers.
	ExcludeUsed []deck.Card
}

// AnyFive is the pool-everything combinator used by stud and draw games
var AnyFive = Combinator{HoleMin: -1, HoleMax: -1}

// ExactHole returns the hold'em/omaha style combinator: exactly k hole cards
func ExactHole(k int) Combinator {
	return Combinator{HoleMin: k, HoleMax: k}
}

// FindBest returns the strongest HandValue formable from the player's
// subset holdings and the community under the combinator's constraints.
func FindBest(hole map[string][]deck.Card, community []deck.Card, t Type, comb Combinator, opts Options) (HandValue, error) {
	initTables()

	size := comb.HandSize
	if size == 0 {
		size = 5
	}

	excluded := func(c deck.Card) bool {
		return contains(comb.ExcludeUsed, c)
	}
	comm := filterCards(community, excluded)

	best := HandValue{}
	found := false
	var evalErr error
	consider := func(cards []deck.Card) {
		if evalErr != nil {
			return
		}
		v, err := Evaluate(cards, t, opts)
		if err != nil {
			evalErr = err
			return
		}
		if !found || v.Compare(best) > 0 {
			v.CardsUsed = append([]deck.Card(nil), cards...)
			best = v
			found = true
		}
	}

	if len(comb.Subsets) > 0 {
		pools := make([][]deck.Card, len(comb.Subsets))
		for i, ss := range comb.Subsets {
			pools[i] = filterCards(hole[ss.Name], excluded)
		}
		enumerateSubsetPicks(pools, comb.Subsets, comm, size, consider)
	} else {
		pool := make([]deck.Card, 0, 8)
		for _, cards := range hole {
			pool = append(pool, filterCards(cards, excluded)...)
		}
		if len(pool)+len(comm) < size {
			// short hand, rank what is present (stud up-card ordering)
			consider(append(append([]deck.Card{}, pool...), comm...))
			if evalErr != nil {
				return HandValue{}, evalErr
			}
			return best, nil
		}
		lo, hi := comb.HoleMin, comb.HoleMax
		if lo < 0 {
			lo = size - len(comm)
			if lo < 0 {
				lo = 0
			}
		}
		if hi < 0 || hi > len(pool) {
			hi = len(pool)
		}
		for h := lo; h <= hi && h <= size; h++ {
			need := size - h
			if need > len(comm) {
				continue
			}
			combinations(pool, min(h, len(pool)), func(hc []deck.Card) {
				combinations(comm, need, func(cc []deck.Card) {
					consider(append(append([]deck.Card{}, hc...), cc...))
				})
			})
		}
	}
	if evalErr != nil {
		return HandValue{}, evalErr
	}
	if !found {
		return HandValue{}, fmt.Errorf("find best: no combination of %d cards available", size)
	}
	return best, nil
}

// enumerateSubsetPicks walks every legal per-subset contribution count, then
// every combination at those counts, topping up from the community.
func enumerateSubsetPicks(pools [][]deck.Card, specs []SubsetSpec, comm []deck.Card, size int, consider func([]deck.Card)) {
	counts := make([]int, len(specs))
	var walk func(i, total int)
	walk = func(i, total int) {
		if i == len(specs) {
			need := size - total
			if need < 0 || need > len(comm) {
				return
			}
			pickFromPools(pools, counts, nil, 0, func(picked []deck.Card) {
				combinations(comm, need, func(cc []deck.Card) {
					consider(append(append([]deck.Card{}, picked...), cc...))
				})
			})
			return
		}
		max := specs[i].Max
		if max > len(pools[i]) {
			max = len(pools[i])
		}
		for n := specs[i].Min; n <= max; n++ {
			counts[i] = n
			walk(i+1, total+n)
		}
	}
	walk(0, 0)
}

func pickFromPools(pools [][]deck.Card, counts []int, acc []deck.Card, i int, fn func([]deck.Card)) {
	if i == len(pools) {
		fn(acc)
		return
	}
	combinations(pools[i], counts[i], func(cs []deck.Card) {
		pickFromPools(pools, counts, append(acc, cs...), i+1, fn)
	})
}

// combinations invokes fn with every k-subset of cards
func combinations(cards []deck.Card, k int, fn func([]deck.Card)) {
	if k == 0 {
		fn(nil)
		return
	}
	if k > len(cards) {
		return
	}
	pick := make([]deck.Card, k)
	var rec func(pos, start int)
	rec = func(pos, start int) {
		if pos == k {
			fn(pick)
			return
		}
		for i := start; i <= len(cards)-(k-pos); i++ {
			pick[pos] = cards[i]
			rec(pos+1, i+1)
		}
	}
	rec(0, 0)
}

func filterCards(cards []deck.Card, drop func(deck.Card) bool) []deck.Card {
	out := make([]deck.Card, 0, len(cards))
	for _, c := range cards {
		if !drop(c) {
			out = append(out, c)
		}
	}
	return out
}
