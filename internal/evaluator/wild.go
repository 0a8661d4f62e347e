package evaluator

import (
	"fmt"

	"github.com/lox/pokervariants/internal/deck"
)

// WildRole distinguishes how a wild card may substitute
type WildRole string

const (
	// RoleWild substitutes for any card, including duplicates of cards
	// already held, so five of a kind is reachable.
	RoleWild WildRole = "wild"
	// RoleBug substitutes only as an ace or to complete a straight or flush.
	RoleBug WildRole = "bug"
	// RoleJoker substitutes for any card not already in play: no five of a
	// kind and no double-ace flushes. This is the high_wild joker.
	RoleJoker WildRole = "joker"
)

// WildKind selects which cards a rule makes wild
type WildKind string

const (
	WildJoker           WildKind = "joker"
	WildRank            WildKind = "rank"
	WildLowestCommunity WildKind = "lowest_community"
	WildLowestHole      WildKind = "lowest_hole"
	WildLastCommunity   WildKind = "last_community_rank"
)

// WildScope records whether a dynamic rule resolves per player or globally.
// The kind already implies it: hole-derived rules are per player and
// community-derived rules global, and rule compilation rejects a document
// declaring the opposite, so resolution needs no scope branch of its own.
type WildScope string

const (
	ScopePlayer WildScope = "player"
	ScopeGlobal WildScope = "global"
)

// WildRule declares one wild-card rule from a variant document
type WildRule struct {
	Kind  WildKind
	Role  WildRole
	Scope WildScope
	Rank  deck.Rank // for Kind == WildRank
}

// ResolveWilds maps each card that any rule makes wild to its role, given the
// player's cards, the community cards, and the most recently dealt community
// card (for dynamic last-card rules).
func ResolveWilds(rules []WildRule, hole, community []deck.Card, lastCommunity *deck.Card) map[deck.Card]WildRole {
	if len(rules) == 0 {
		return nil
	}
	wildRanks := map[deck.Rank]WildRole{}
	var jokerRole WildRole

	for _, r := range rules {
		role := r.Role
		if role == "" {
			// an undeclared joker role means no duplication, not fully wild
			if r.Kind == WildJoker {
				role = RoleJoker
			} else {
				role = RoleWild
			}
		}
		switch r.Kind {
		case WildJoker:
			jokerRole = role
		case WildRank:
			wildRanks[r.Rank] = role
		case WildLowestCommunity:
			if r := lowestRankOf(community); r != 0 {
				wildRanks[r] = role
			}
		case WildLowestHole:
			if r := lowestRankOf(hole); r != 0 {
				wildRanks[r] = role
			}
		case WildLastCommunity:
			if lastCommunity != nil && !lastCommunity.IsJoker() {
				wildRanks[lastCommunity.Rank] = role
			}
		}
	}

	wilds := map[deck.Card]WildRole{}
	mark := func(cards []deck.Card) {
		for _, c := range cards {
			if c.IsJoker() {
				if jokerRole != "" {
					wilds[c] = jokerRole
				}
				continue
			}
			if role, ok := wildRanks[c.Rank]; ok {
				wilds[c] = role
			}
		}
	}
	mark(hole)
	mark(community)
	return wilds
}

func lowestRankOf(cards []deck.Card) deck.Rank {
	var lowest deck.Rank
	lowVal := 99
	for _, c := range cards {
		if c.IsJoker() {
			continue
		}
		if v := lowValue(c.Rank); v < lowVal {
			lowVal = v
			lowest = c.Rank
		}
	}
	return lowest
}

func countWild(cards []deck.Card, wilds map[deck.Card]WildRole) int {
	n := 0
	for _, c := range cards {
		if _, ok := wilds[c]; ok {
			n++
		}
	}
	return n
}

// evaluateWild finds the strongest substitution for every wild card in the
// hand. Substitution candidates are bounded by role: RoleWild may duplicate
// held cards, RoleJoker may not, RoleBug only makes aces, straights and
// flushes.
func evaluateWild(cards []deck.Card, t Type, opts Options) (HandValue, error) {
	naturals := make([]deck.Card, 0, len(cards))
	roles := make([]WildRole, 0, 2)
	for _, c := range cards {
		if role, ok := opts.WildCards[c]; ok {
			roles = append(roles, role)
		} else {
			naturals = append(naturals, c)
		}
	}
	if len(roles) > 4 {
		return HandValue{}, fmt.Errorf("evaluate: %d wild cards in one hand", len(roles))
	}

	best := HandValue{}
	found := false
	trial := make([]deck.Card, len(naturals), len(cards))
	copy(trial, naturals)

	var rec func(i int) error
	rec = func(i int) error {
		if i == len(roles) {
			v, err := scoreSubstitution(trial, t)
			if err != nil {
				return err
			}
			if !bugLegal(trial, naturals, roles, v, t) {
				return nil
			}
			if !found || v.Compare(best) > 0 {
				best = v
				found = true
			}
			return nil
		}
		for suit := deck.Clubs; suit <= deck.Spades; suit++ {
			for rank := deck.Two; rank <= deck.Ace; rank++ {
				sub := deck.NewCard(suit, rank)
				if roles[i] != RoleWild && contains(trial, sub) {
					continue
				}
				trial = append(trial, sub)
				if err := rec(i + 1); err != nil {
					return err
				}
				trial = trial[:len(trial)-1]
			}
		}
		return nil
	}
	if err := rec(0); err != nil {
		return HandValue{}, err
	}
	if !found {
		return HandValue{}, fmt.Errorf("evaluate: no legal wild substitution")
	}
	return best, nil
}

// scoreSubstitution evaluates a fully substituted hand, catching the
// five-of-a-kind case the plain tables cannot represent
func scoreSubstitution(cards []deck.Card, t Type) (HandValue, error) {
	if isHighFamily(t) && len(cards) == 5 {
		counts := map[deck.Rank]int{}
		for _, c := range cards {
			counts[c.Rank]++
		}
		for r, n := range counts {
			if n == 5 {
				return HandValue{
					Rank:        CatFiveOfAKind,
					OrderedRank: packVals([]int{int(r)}),
					Description: fmt.Sprintf("Five of a Kind, %s", rankPlural(int(r))),
				}, nil
			}
		}
	}
	return evaluatePlain(cards, t)
}

// bugLegal restricts bug substitutions: each bug must have become an ace or
// the hand must be a straight or flush. Low orderings accept any substitution
// since the bug simply plays as the lowest non-pairing card there.
func bugLegal(trial, naturals []deck.Card, roles []WildRole, v HandValue, t Type) bool {
	if !isHighFamily(t) {
		return true
	}
	switch v.Rank {
	case CatStraight, CatFlush, CatStraightFlush:
		return true
	}
	for i, role := range roles {
		if role == RoleBug && trial[len(naturals)+i].Rank != deck.Ace {
			return false
		}
	}
	return true
}

func isHighFamily(t Type) bool {
	switch t {
	case High, HighWild, ShortHigh, TwentyHigh:
		return true
	}
	return false
}

func contains(cards []deck.Card, c deck.Card) bool {
	for _, x := range cards {
		if x == c {
			return true
		}
	}
	return false
}
