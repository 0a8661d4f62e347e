package evaluator

import (
	"fmt"

	"github.com/lox/pokervariants/internal/deck"
)

// Pip games rank hands by card point totals rather than made hands.
// Aces count one; court cards count their face ordinal except in "21",
// which uses the blackjack convention of ten.

// pipValue returns the point value of a card under the given pip game
func pipValue(c deck.Card, t Type) int {
	if c.IsJoker() {
		return 0
	}
	v := int(c.Rank)
	if c.Rank == deck.Ace {
		v = 1
	}
	if t == Pip21 && v > 10 {
		v = 10
	}
	if t == LowPipSix && v > 6 {
		// low_pip_6 counts only small pips; everything above a six is dross
		v = 0
	}
	return v
}

// evalPip scores a pip hand. All pip orderings share Rank 1; a busted
// target game (over 49 or over 21) scores Rank 0.
func evalPip(cards []deck.Card, t Type) HandValue {
	total := 0
	for _, c := range cards {
		total += pipValue(c, t)
	}

	v := HandValue{Rank: 1, Description: fmt.Sprintf("Pip total %d", total)}
	switch t {
	case Pip49:
		if total > 49 {
			return HandValue{Description: fmt.Sprintf("Bust (%d)", total)}
		}
		v.OrderedRank = total
	case Pip21:
		if total > 21 {
			return HandValue{Description: fmt.Sprintf("Bust (%d)", total)}
		}
		v.OrderedRank = total
	case PipSix:
		// closest to six, ties to the lower total
		d := total - 6
		if d < 0 {
			d = -d
		}
		v.OrderedRank = -(d<<8 + total)
	case PipZero, LowPipSix:
		v.OrderedRank = -total
	}
	return v
}
