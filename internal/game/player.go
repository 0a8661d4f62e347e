package game

import (
	"sort"

	"github.com/lox/pokervariants/internal/deck"
	"github.com/lox/pokervariants/internal/rules"
)

// Status is a seat's state within the current hand
type Status int

const (
	StatusActive Status = iota
	StatusFolded
	StatusAllIn
	StatusSittingOut
	StatusDisconnected
)

func (s Status) String() string {
	return [...]string{"active", "folded", "all_in", "sitting_out", "disconnected"}[s]
}

// HoleCard is a card in a player's hand with its table visibility
type HoleCard struct {
	Card      deck.Card
	FaceUp    bool
	ExposedAt int // step index of the exposure, -1 while face-down from the deal
}

// Player is a seated player and their per-hand state
type Player struct {
	ID     string
	Name   string
	Seat   int
	Chips  int
	Status Status

	Bet      int // committed this betting round
	TotalBet int // committed this hand, across rounds

	// Hole holds cards per named subset; separations create further subsets
	Hole        map[string][]HoleCard
	Declaration string
	Choices     map[string]string
}

// InHand reports whether the player still contests the pot
func (p *Player) InHand() bool {
	return p.Status == StatusActive || p.Status == StatusAllIn
}

// CanAct reports whether the player can take a voluntary action
func (p *Player) CanAct() bool {
	return p.Status == StatusActive
}

// AddCards appends dealt cards to a subset
func (p *Player) AddCards(subset string, cards []deck.Card, faceUp bool) {
	if p.Hole == nil {
		p.Hole = map[string][]HoleCard{}
	}
	for _, c := range cards {
		p.Hole[subset] = append(p.Hole[subset], HoleCard{Card: c, FaceUp: faceUp, ExposedAt: -1})
	}
}

// Cards returns the plain cards of a subset
func (p *Player) Cards(subset string) []deck.Card {
	out := make([]deck.Card, 0, len(p.Hole[subset]))
	for _, hc := range p.Hole[subset] {
		out = append(out, hc.Card)
	}
	return out
}

// AllCards returns every hole card across subsets
func (p *Player) AllCards() []deck.Card {
	var out []deck.Card
	for subset := range p.Hole {
		out = append(out, p.Cards(subset)...)
	}
	return out
}

// CardsBySubset returns the plain card map the evaluator combinators consume
func (p *Player) CardsBySubset() map[string][]deck.Card {
	out := make(map[string][]deck.Card, len(p.Hole))
	for subset := range p.Hole {
		out[subset] = p.Cards(subset)
	}
	return out
}

// UpCards returns the player's face-up cards, deal order preserved within a
// subset and subsets visited in name order. Bring-in tiebreaks read the last
// card, so the order has to be stable.
func (p *Player) UpCards() []deck.Card {
	subsets := make([]string, 0, len(p.Hole))
	for name := range p.Hole {
		subsets = append(subsets, name)
	}
	sort.Strings(subsets)
	var out []deck.Card
	for _, name := range subsets {
		for _, hc := range p.Hole[name] {
			if hc.FaceUp {
				out = append(out, hc.Card)
			}
		}
	}
	return out
}

// HandSize counts all hole cards
func (p *Player) HandSize() int {
	n := 0
	for _, cards := range p.Hole {
		n += len(cards)
	}
	return n
}

// HasExposed reports whether any card was flipped after the deal
func (p *Player) HasExposed() bool {
	for _, cards := range p.Hole {
		for _, hc := range cards {
			if hc.ExposedAt >= 0 {
				return true
			}
		}
	}
	return false
}

// RemoveCards takes the cards at the given indexes out of a subset, keeping
// the remainder in order. Indexes must be valid and distinct.
func (p *Player) RemoveCards(subset string, indexes []int) []HoleCard {
	cards := p.Hole[subset]
	take := map[int]bool{}
	for _, i := range indexes {
		take[i] = true
	}
	removed := make([]HoleCard, 0, len(indexes))
	kept := cards[:0]
	for i, hc := range cards {
		if take[i] {
			removed = append(removed, hc)
		} else {
			kept = append(kept, hc)
		}
	}
	p.Hole[subset] = kept
	return removed
}

// ResetForHand clears per-hand state. Seated players with chips start
// ACTIVE; a prior FOLDED status never survives into the next hand.
func (p *Player) ResetForHand() {
	p.Bet = 0
	p.TotalBet = 0
	p.Hole = map[string][]HoleCard{rules.DefaultSubset: nil}
	p.Declaration = ""
	p.Choices = map[string]string{}
	if p.Status == StatusDisconnected || p.Status == StatusSittingOut {
		return
	}
	if p.Chips > 0 {
		p.Status = StatusActive
	} else {
		p.Status = StatusSittingOut
	}
}
