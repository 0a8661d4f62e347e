package evaluator

import (
	"fmt"
	"strings"
)

var rankNames = map[int]string{
	1: "Ace", 2: "Two", 3: "Three", 4: "Four", 5: "Five", 6: "Six",
	7: "Seven", 8: "Eight", 9: "Nine", 10: "Ten", 11: "Jack",
	12: "Queen", 13: "King", 14: "Ace",
}

var rankSymbols = map[int]string{
	1: "A", 2: "2", 3: "3", 4: "4", 5: "5", 6: "6", 7: "7", 8: "8",
	9: "9", 10: "T", 11: "J", 12: "Q", 13: "K", 14: "A",
}

func rankName(v int) string {
	if n, ok := rankNames[v]; ok {
		return n
	}
	return "?"
}

func rankPlural(v int) string {
	if v == 6 {
		return "Sixes"
	}
	return rankName(v) + "s"
}

func symbolList(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = rankSymbols[v]
	}
	return strings.Join(parts, "-")
}

// describeHigh renders a made-hand description from the category and the
// hand's descending rank values. short selects the 36-card wheel when naming
// straights.
func describeHigh(cat int, vals []int, short bool) string {
	groups := groupVals(vals)
	switch cat {
	case CatStraightFlush:
		return fmt.Sprintf("Straight Flush, %s High", rankName(straightTop(vals, short)))
	case CatFourOfAKind:
		return fmt.Sprintf("Four of a Kind, %s", rankPlural(groups[0].val))
	case CatFullHouse:
		return fmt.Sprintf("Full House, %s over %s", rankPlural(groups[0].val), rankPlural(groups[1].val))
	case CatFlush:
		return fmt.Sprintf("Flush, %s High", rankName(vals[0]))
	case CatStraight:
		return fmt.Sprintf("Straight, %s High", rankName(straightTop(vals, short)))
	case CatThreeOfAKind:
		return fmt.Sprintf("Three of a Kind, %s", rankPlural(groups[0].val))
	case CatTwoPair:
		return fmt.Sprintf("Two Pair, %s and %s", rankPlural(groups[0].val), rankPlural(groups[1].val))
	case CatPair:
		return fmt.Sprintf("Pair of %s", rankPlural(groups[0].val))
	case CatHighCard:
		return fmt.Sprintf("%s High", rankName(vals[0]))
	}
	return "No Hand"
}

// straightTop names a straight's high card from descending values, treating
// the ace-low wheel as topping at its highest non-ace card
func straightTop(vals []int, short bool) int {
	if len(vals) == 5 && vals[0] == 14 {
		if short && vals[1] == 9 {
			return 9
		}
		if !short && vals[1] == 5 {
			return 5
		}
	}
	return vals[0]
}

// describeLow renders a low-hand description. Unpaired hands read as the
// card list; made hands keep their truthful high-style name.
func describeLow(cat int, vals []int) string {
	if cat == CatHighCard {
		return symbolList(vals) + " Low"
	}
	return describeHigh(cat, vals, false)
}

func describeBadugi(n int, vals []int, low bool) string {
	list := symbolList(vals)
	name := "Badugi"
	if !low {
		name = "Hidugi"
	}
	if n == 4 {
		return fmt.Sprintf("%s, %s", name, list)
	}
	return fmt.Sprintf("%d-card %s, %s", n, name, list)
}
