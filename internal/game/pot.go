package game

import (
	"fmt"
	"sort"
)

// Pot is the main pot or one side pot. Cap is the per-player contribution
// level the pot covers.
type Pot struct {
	Amount   int
	Eligible []int // seats eligible to win this pot
	Cap      int
}

// PotManager accumulates collected bets and derives the main/side pot
// structure from per-player hand totals on demand. The main pot is always
// index zero; side pots follow in all-in level order.
type PotManager struct {
	total     int
	liveRound int // bets placed this round, not yet collected
}

// NewPotManager creates an empty pot
func NewPotManager() *PotManager {
	return &PotManager{}
}

// Collect freezes the current round's bets into the pot
func (pm *PotManager) Collect(players []*Player) {
	for _, p := range players {
		if p.Bet > 0 {
			pm.total += p.Bet
			p.Bet = 0
		}
	}
	pm.liveRound = 0
}

// Total is the collected pot, excluding live round bets
func (pm *PotManager) Total() int {
	return pm.total
}

// TotalWithLive includes bets still sitting in front of players
func (pm *PotManager) TotalWithLive() int {
	return pm.total + pm.liveRound
}

// Pots builds the pot structure from hand-total contributions. Every all-in
// contribution level caps a pot; folded players' chips count toward amounts
// but folded seats are never eligible.
func (pm *PotManager) Pots(players []*Player) []Pot {
	levels := map[int]bool{}
	maxContribution := 0
	for _, p := range players {
		if p.TotalBet > maxContribution {
			maxContribution = p.TotalBet
		}
		if p.Status == StatusAllIn && p.TotalBet > 0 {
			levels[p.TotalBet] = true
		}
	}
	sorted := make([]int, 0, len(levels)+1)
	for l := range levels {
		sorted = append(sorted, l)
	}
	if maxContribution > 0 && !levels[maxContribution] {
		sorted = append(sorted, maxContribution)
	}
	sort.Ints(sorted)

	var pots []Pot
	prev := 0
	for _, level := range sorted {
		pot := Pot{Cap: level}
		for _, p := range players {
			c := min(p.TotalBet, level) - prev
			if c > 0 {
				pot.Amount += c
			}
			if p.InHand() && p.TotalBet >= level {
				pot.Eligible = append(pot.Eligible, p.Seat)
			}
		}
		if pot.Amount > 0 {
			pots = append(pots, pot)
		}
		prev = level
	}
	if len(pots) == 0 {
		pots = []Pot{{}}
	}
	return pots
}

// Award moves a pot share onto the winner's stack
func (pm *PotManager) Award(p *Player, amount int) error {
	if amount > pm.total {
		return fmt.Errorf("%w: awarding %d from pot of %d", ErrEngine, amount, pm.total)
	}
	pm.total -= amount
	p.Chips += amount
	return nil
}

// Reset clears the pot between hands
func (pm *PotManager) Reset() {
	pm.total = 0
	pm.liveRound = 0
}
