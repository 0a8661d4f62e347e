package game

import (
	"github.com/lox/pokervariants/internal/rules"
)

// Stakes fixes the chip amounts for a game. SmallBet/BigBet are the Limit
// rungs; NewStakes derives them from the big blind when unset.
type Stakes struct {
	SmallBlind int
	BigBlind   int
	Ante       int
	BringIn    int
	SmallBet   int
	BigBet     int
}

// NewStakes fills derived amounts: small bet = big blind, big bet = twice it
func NewStakes(smallBlind, bigBlind int) Stakes {
	return Stakes{
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		SmallBet:   bigBlind,
		BigBet:     bigBlind * 2,
	}
}

// limitRaiseCap is the conventional cap of aggressive actions per Limit
// round: an opening bet plus three raises. Heads-up rounds are uncapped.
const limitRaiseCap = 4

// BettingManager runs one betting round at a time and enforces the
// structure's sizing rules. All bet amounts are round totals, not deltas.
type BettingManager struct {
	structure rules.Structure
	stakes    Stakes
	pot       *PotManager

	currentBet int
	minRaise   int // last aggressive raise increment
	betSize    int // Limit rung for this round
	raises     int
	aggressor  int // seat of the last aggressive action, -1 when none
	actors     int // players able to act when the round began
	acted      map[int]bool
}

// NewBettingManager creates a manager feeding collected bets into pot
func NewBettingManager(structure rules.Structure, stakes Stakes, pot *PotManager) *BettingManager {
	return &BettingManager{
		structure: structure,
		stakes:    stakes,
		pot:       pot,
		aggressor: -1,
		acted:     map[int]bool{},
	}
}

// NewRound begins a betting round. preserve keeps the current bet level and
// acted flags from forced posting; otherwise round bets are frozen into the
// pot and bet state clears. betSize selects the Limit rung.
func (bm *BettingManager) NewRound(players []*Player, preserve bool, betSize int) {
	bm.betSize = betSize
	bm.actors = 0
	for _, p := range players {
		if p.CanAct() {
			bm.actors++
		}
	}
	if preserve {
		if bm.minRaise == 0 {
			bm.minRaise = betSize
		}
		if bm.currentBet > 0 {
			// the forced post is this round's opening bet
			bm.raises = 1
		}
		return
	}
	bm.pot.Collect(players)
	bm.currentBet = 0
	bm.minRaise = betSize
	bm.raises = 0
	bm.aggressor = -1
	bm.acted = map[int]bool{}
}

// CurrentBet is the round's bet level
func (bm *BettingManager) CurrentBet() int { return bm.currentBet }

// Aggressor is the seat of the last aggressive action this round, -1 if none
func (bm *BettingManager) Aggressor() int { return bm.aggressor }

// AdditionalRequired is the delta the player owes to call
func (bm *BettingManager) AdditionalRequired(p *Player) int {
	owe := bm.currentBet - p.Bet
	if owe < 0 {
		return 0
	}
	if owe > p.Chips {
		return p.Chips
	}
	return owe
}

// MinBet is the minimum total the player may bet to. With a live bet it is a
// call; otherwise the opening bet for the structure.
func (bm *BettingManager) MinBet(p *Player) int {
	if bm.currentBet > 0 {
		return min(bm.currentBet, p.Bet+p.Chips)
	}
	open := bm.betSize
	if bm.structure != rules.Limit {
		open = bm.stakes.BigBlind
	}
	return min(open, p.Bet+p.Chips)
}

// MinRaise is the minimum total a raise must reach
func (bm *BettingManager) MinRaise(p *Player) int {
	var target int
	if bm.structure == rules.Limit {
		if bm.currentBet > 0 && bm.currentBet < bm.betSize {
			// live bring-in: the next rung is completing to the full bet
			target = bm.betSize
		} else {
			target = bm.currentBet + bm.betSize
		}
	} else {
		increment := bm.minRaise
		if increment == 0 {
			increment = bm.stakes.BigBlind
		}
		target = bm.currentBet + increment
	}
	return min(target, p.Bet+p.Chips)
}

// MaxBet is the maximum total the player may bet to
func (bm *BettingManager) MaxBet(p *Player) int {
	stack := p.Bet + p.Chips
	switch bm.structure {
	case rules.Limit:
		if bm.raises >= bm.raiseCap() && bm.currentBet > 0 {
			return min(bm.currentBet, stack)
		}
		if bm.currentBet > 0 && bm.currentBet < bm.betSize {
			return min(bm.betSize, stack)
		}
		return min(bm.currentBet+bm.betSize, stack)
	case rules.PotLimit:
		// pot-limit raise cap: call amount plus the pot after calling
		call := bm.currentBet
		potAfterCall := bm.pot.Total() + bm.roundTotal() + (call - p.Bet)
		return min(call+potAfterCall, stack)
	default:
		return stack
	}
}

func (bm *BettingManager) raiseCap() int {
	if bm.actors <= 2 {
		return 1 << 30
	}
	return limitRaiseCap
}

// roundTotal sums live bets not yet collected into the pot
func (bm *BettingManager) roundTotal() int {
	return bm.pot.liveRound
}

// PlaceBet commits the player to the round total totalTo. Forced bets
// (blinds, antes, bring-in) bypass minimum sizing but still mark the bet
// level; the poster keeps their option to act later.
func (bm *BettingManager) PlaceBet(p *Player, totalTo int, forced bool) error {
	stack := p.Bet + p.Chips
	if totalTo > stack {
		return userErr(CodeInsufficientChips, "bet to %d with stack %d", totalTo, stack)
	}
	if totalTo < p.Bet {
		return userErr(CodeInvalidAction, "bet total %d below committed %d", totalTo, p.Bet)
	}
	allIn := totalTo == stack

	if !forced {
		if totalTo < bm.currentBet && !allIn {
			return userErr(CodeBelowMinBet, "bet to %d below current bet %d", totalTo, bm.currentBet)
		}
		if totalTo > bm.currentBet {
			if totalTo > bm.MaxBet(p) {
				return userErr(CodeAboveMaxBet, "bet to %d above maximum %d", totalTo, bm.MaxBet(p))
			}
			if !allIn && totalTo < bm.MinRaise(p) {
				code := CodeBelowMinRaise
				if bm.currentBet == 0 {
					code = CodeBelowMinBet
				}
				return userErr(code, "bet to %d below minimum %d", totalTo, bm.MinRaise(p))
			}
		}
	}

	delta := totalTo - p.Bet
	p.Chips -= delta
	p.Bet = totalTo
	p.TotalBet += delta
	bm.pot.liveRound += delta
	if p.Chips == 0 {
		p.Status = StatusAllIn
	}

	if totalTo > bm.currentBet {
		increment := totalTo - bm.currentBet
		// completing a live bring-in to the full bet is a short increment
		// but still reopens the action
		completion := bm.structure == rules.Limit &&
			bm.currentBet > 0 && bm.currentBet < bm.betSize && totalTo >= bm.betSize
		bm.currentBet = totalTo
		if !forced {
			// a short all-in raise does not reopen the betting
			if increment >= bm.minRaise || bm.minRaise == 0 || completion {
				if !completion {
					bm.minRaise = increment
				}
				bm.aggressor = p.Seat
				bm.raises++
				for seat := range bm.acted {
					if seat != p.Seat {
						delete(bm.acted, seat)
					}
				}
			}
		}
	}
	if !forced {
		bm.acted[p.Seat] = true
	}
	return nil
}

// MarkActed records a non-betting acknowledgement (a check)
func (bm *BettingManager) MarkActed(seat int) {
	bm.acted[seat] = true
}

// RoundComplete reports whether every player who can act has acted and
// matched the current bet
func (bm *BettingManager) RoundComplete(players []*Player) bool {
	for _, p := range players {
		if !p.CanAct() {
			continue
		}
		if p.Bet != bm.currentBet {
			return false
		}
		if !bm.acted[p.Seat] {
			return false
		}
	}
	return true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
