// Package evaluator ranks poker hands under the evaluation-type taxonomy used
// by variant rule documents. Rank tables are precomputed once at startup and
// shared process-wide; call Init before evaluating (Game does this).
package evaluator

import (
	"fmt"
	"sort"

	"github.com/lox/pokervariants/internal/deck"
)

// Type identifies a hand-evaluation ordering
type Type string

const (
	High       Type = "high"
	A5Low      Type = "a5_low"
	A5LowHigh  Type = "a5_low_high"
	TwoSeven   Type = "27_low"
	Badugi     Type = "badugi"
	Hidugi     Type = "hidugi"
	HighWild   Type = "high_wild"
	ShortHigh  Type = "short_high"
	TwentyHigh Type = "20_high"
	Pip49      Type = "49"
	PipZero    Type = "zero"
	PipSix     Type = "6"
	LowPipSix  Type = "low_pip_6"
	Pip21      Type = "21"
)

// Known reports whether t is a recognised evaluation type
func (t Type) Known() bool {
	switch t {
	case High, A5Low, A5LowHigh, TwoSeven, Badugi, Hidugi, HighWild,
		ShortHigh, TwentyHigh, Pip49, PipZero, PipSix, LowPipSix, Pip21:
		return true
	}
	return false
}

// Hand category constants shared by the high-style orderings.
// Higher is stronger.
const (
	CatNone          = 0
	CatHighCard      = 1
	CatPair          = 2
	CatTwoPair       = 3
	CatThreeOfAKind  = 4
	CatStraight      = 5
	CatFlush         = 6
	CatFullHouse     = 7
	CatFourOfAKind   = 8
	CatStraightFlush = 9
	CatFiveOfAKind   = 10
)

// HandValue is the comparable result of evaluating a hand. Rank is the
// category band and OrderedRank the tiebreak within it; both compare
// higher-is-better regardless of evaluation type (low orderings invert
// internally). A Rank of 0 means the hand failed its qualifier.
type HandValue struct {
	Rank        int
	OrderedRank int
	Description string
	CardsUsed   []deck.Card
}

// Compare returns 1 if v is stronger than other, -1 if weaker, 0 if equal
func (v HandValue) Compare(other HandValue) int {
	if v.Rank != other.Rank {
		if v.Rank > other.Rank {
			return 1
		}
		return -1
	}
	if v.OrderedRank != other.OrderedRank {
		if v.OrderedRank > other.OrderedRank {
			return 1
		}
		return -1
	}
	return 0
}

// Qualifier is the minimum strength a hand must reach to win a pot share
type Qualifier struct {
	Rank        int
	OrderedRank int
}

// Options modify a single evaluation
type Options struct {
	Qualifier *Qualifier
	WildRules []WildRule
	// WildCards is the resolved set of wild card identities for this hand,
	// produced by ResolveWilds from the rules plus game state.
	WildCards map[deck.Card]WildRole
}

// Evaluate ranks cards under the given evaluation type. Hands shorter than
// the type's natural size are ranked on what is present; stud games use this
// to order partial up-card hands.
func Evaluate(cards []deck.Card, t Type, opts Options) (HandValue, error) {
	initTables()

	if len(cards) == 0 {
		return HandValue{}, fmt.Errorf("evaluate: no cards")
	}

	var v HandValue
	var err error
	if len(opts.WildCards) > 0 && countWild(cards, opts.WildCards) > 0 {
		v, err = evaluateWild(cards, t, opts)
	} else {
		v, err = evaluatePlain(cards, t)
	}
	if err != nil {
		return HandValue{}, err
	}

	v.CardsUsed = append([]deck.Card(nil), cards...)
	if opts.Qualifier != nil {
		q := HandValue{Rank: opts.Qualifier.Rank, OrderedRank: opts.Qualifier.OrderedRank}
		if v.Compare(q) < 0 {
			v.Rank = 0
			v.OrderedRank = 0
		}
	}
	return v, nil
}

// evaluatePlain dispatches to the per-type ordering, no wild handling
func evaluatePlain(cards []deck.Card, t Type) (HandValue, error) {
	for _, c := range cards {
		if c.IsJoker() && t != HighWild {
			return HandValue{}, fmt.Errorf("evaluate: joker in %s hand without wild rule", t)
		}
	}
	switch t {
	case High, TwentyHigh, HighWild:
		return evalHigh(cards, wheelStandard), nil
	case ShortHigh:
		return evalShortHigh(cards), nil
	case A5Low:
		return evalA5Low(cards), nil
	case A5LowHigh:
		return evalA5LowHigh(cards), nil
	case TwoSeven:
		return evalTwoSevenLow(cards), nil
	case Badugi:
		return evalBadugi(cards, true), nil
	case Hidugi:
		return evalBadugi(cards, false), nil
	case Pip49, PipZero, PipSix, LowPipSix, Pip21:
		return evalPip(cards, t), nil
	default:
		return HandValue{}, fmt.Errorf("unknown evaluation type %q", t)
	}
}

// Compare evaluates both hands under t and compares the results
func Compare(a, b []deck.Card, t Type) (int, error) {
	va, err := Evaluate(a, t, Options{})
	if err != nil {
		return 0, err
	}
	vb, err := Evaluate(b, t, Options{})
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

// Sort orders cards strongest-first under the given type's card ordering
func Sort(cards []deck.Card, t Type) {
	aceLow := t == A5Low || t == A5LowHigh || t == Badugi
	sort.SliceStable(cards, func(i, j int) bool {
		return cardOrder(cards[i], aceLow) > cardOrder(cards[j], aceLow)
	})
	if t.Low() {
		for i, j := 0, len(cards)-1; i < j; i, j = i+1, j-1 {
			cards[i], cards[j] = cards[j], cards[i]
		}
	}
}

// Low reports whether t orders hands low-to-win. Declaration matching in
// split-pot games keys on this.
func (t Type) Low() bool {
	switch t {
	case A5Low, TwoSeven, Badugi, PipZero, LowPipSix:
		return true
	}
	return false
}

func cardOrder(c deck.Card, aceLow bool) int {
	if c.IsJoker() {
		return 0
	}
	if aceLow && c.Rank == deck.Ace {
		return 1
	}
	return int(c.Rank)
}

// lowValue returns the rank value with aces low
func lowValue(r deck.Rank) int {
	if r == deck.Ace {
		return 1
	}
	return int(r)
}
