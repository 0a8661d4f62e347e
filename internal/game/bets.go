package game

import (
	"fmt"

	"github.com/lox/pokervariants/internal/evaluator"
	"github.com/lox/pokervariants/internal/rules"
)

// beginBet starts a bet action: forced styles post first, then the betting
// round opens with the variant's turn-order policy. Antes-only posts never
// open a round.
func (g *Game) beginBet(a rules.BetAction) error {
	rung := g.stakes.SmallBet
	if a.Type == rules.BetBig {
		rung = g.stakes.BigBet
	}

	players := g.table.Seated()
	g.betting.NewRound(players, false, rung)

	var first int
	var err error
	switch a.Type {
	case rules.ForcedAntesOnly:
		return g.postAntes()

	case rules.ForcedBlinds:
		if err := g.postAntes(); err != nil {
			return err
		}
		if err := g.postBlinds(); err != nil {
			return err
		}
		g.betting.NewRound(players, true, rung)
		first, err = g.firstActor(true)

	case rules.ForcedBringIn:
		if err := g.postBringIn(); err != nil {
			return err
		}
		g.betting.NewRound(players, true, rung)
		first, err = g.firstActor(true)

	default: // small / big
		first, err = g.firstActor(g.isFirstBetStep())
	}
	if err != nil {
		return err
	}

	g.state = StateBetting
	g.betRunning = true
	g.firstBetDone = true

	actor := g.nextBettor(first, true)
	if actor < 0 {
		return g.finishBetRound()
	}
	g.actorSeat = actor
	return nil
}

// isFirstBetStep reports whether no bet action has run yet this hand. A
// voluntary round can open the hand in ante-only variants.
func (g *Game) isFirstBetStep() bool {
	return !g.firstBetDone
}

// postAntes takes the ante from every player in the hand
func (g *Game) postAntes() error {
	if g.stakes.Ante <= 0 {
		return nil
	}
	for _, p := range g.table.InHand() {
		amount := min(g.stakes.Ante, p.Chips)
		if amount <= 0 {
			continue
		}
		if err := g.betting.PlaceBet(p, p.Bet+amount, true); err != nil {
			return fmt.Errorf("%w: ante: %v", ErrEngine, err)
		}
		g.forcedEvent(p, "ante", amount)
	}
	// antes are dead money: collect immediately and clear the bet level
	g.pot.Collect(g.table.Seated())
	g.betting.currentBet = 0
	return g.assertConservation("ante collection")
}

// postBlinds posts the small and big blind. Heads-up the dealer posts small.
func (g *Game) postBlinds() error {
	sb := g.table.SmallBlindSeat()
	bb := g.table.BigBlindSeat()
	if sb < 0 || bb < 0 {
		return fmt.Errorf("%w: cannot place blinds", ErrEngine)
	}
	sbp := g.table.Seat(sb)
	if err := g.betting.PlaceBet(sbp, min(g.stakes.SmallBlind, sbp.Bet+sbp.Chips), true); err != nil {
		return fmt.Errorf("%w: small blind: %v", ErrEngine, err)
	}
	g.forcedEvent(sbp, "small_blind", g.stakes.SmallBlind)

	bbp := g.table.Seat(bb)
	if err := g.betting.PlaceBet(bbp, min(g.stakes.BigBlind, bbp.Bet+bbp.Chips), true); err != nil {
		return fmt.Errorf("%w: big blind: %v", ErrEngine, err)
	}
	g.forcedEvent(bbp, "big_blind", g.stakes.BigBlind)
	return nil
}

// postBringIn finds the bring-in seat under the variant's bring-in evaluation
// and posts the forced amount
func (g *Game) postBringIn() error {
	eval := g.bringInEval()
	seat, err := g.table.BringInSeat(eval)
	if err != nil {
		return err
	}
	p := g.table.Seat(seat)
	if err := g.betting.PlaceBet(p, min(g.stakes.BringIn, p.Bet+p.Chips), true); err != nil {
		return fmt.Errorf("%w: bring-in: %v", ErrEngine, err)
	}
	g.forcedEvent(p, "bring_in", g.stakes.BringIn)
	g.lastAggressor = seat
	return nil
}

func (g *Game) bringInEval() evaluator.Type {
	fb := g.rules.ForcedStyle(g.choices)
	if fb.BringInEval != "" {
		return fb.BringInEval
	}
	return evaluator.High
}

func (g *Game) forcedEvent(p *Player, kind string, amount int) {
	g.events.Append(Event{
		Type:   EventForcedBet,
		Step:   g.stepIndex,
		Actor:  p.ID,
		Action: kind,
		Amount: amount,
	})
	g.logger.Debug("forced bet", "player", p.ID, "kind", kind, "amount", amount)
}

// effectiveOrder resolves the turn-order policy, applying any override whose
// condition holds
func (g *Game) effectiveOrder() rules.BettingOrder {
	order := g.rules.Order
	for _, ov := range order.Overrides {
		if g.evalCondition(ov.When, nil) {
			if ov.Initial != "" {
				order.Initial = ov.Initial
			}
			if ov.Subsequent != "" {
				order.Subsequent = ov.Subsequent
			}
		}
	}
	return order
}

// firstActor picks the seat that opens the round per the order policy
func (g *Game) firstActor(initial bool) (int, error) {
	order := g.effectiveOrder()
	policy := order.Subsequent
	if initial {
		policy = order.Initial
	}

	switch policy {
	case rules.OrderAfterBigBlind:
		return g.table.nextInHand(g.table.BigBlindSeat()), nil
	case rules.OrderBringIn:
		// the bring-in already posted; action continues to their left
		if g.lastAggressor >= 0 {
			return g.table.nextInHand(g.lastAggressor), nil
		}
		return g.table.nextInHand(g.table.Button()), nil
	case rules.OrderDealer:
		return g.table.nextInHand(g.table.Button()), nil
	case rules.OrderHighHand:
		seat, err := g.table.HighHandSeat(g.bringInEval())
		if err != nil {
			return -1, err
		}
		return seat, nil
	case rules.OrderLastActor:
		if g.lastAggressor >= 0 && g.table.Seat(g.lastAggressor) != nil &&
			g.table.Seat(g.lastAggressor).InHand() {
			return g.table.nextInHand(g.lastAggressor), nil
		}
		return g.table.nextInHand(g.table.Button()), nil
	default:
		return -1, fmt.Errorf("%w: unknown order policy %q", ErrEngine, policy)
	}
}

// nextBettor finds the next seat owing action, scanning clockwise from `from`
// (inclusive when inclusive is set). Returns -1 when the round is settled.
func (g *Game) nextBettor(from int, inclusive bool) int {
	if from < 0 {
		return -1
	}
	// with at most one player able to act and nothing owed, betting is moot
	if len(g.table.Actionable()) < 2 {
		if len(g.table.Actionable()) == 1 {
			p := g.table.Actionable()[0]
			if p.Bet < g.betting.CurrentBet() {
				return p.Seat
			}
		}
		return -1
	}

	n := len(g.table.seats)
	start := 0
	if !inclusive {
		start = 1
	}
	for i := start; i < n+start; i++ {
		seat := (from + i) % n
		p := g.table.Seat(seat)
		if p == nil || !p.CanAct() {
			continue
		}
		if !g.betting.acted[seat] || p.Bet < g.betting.CurrentBet() {
			return seat
		}
	}
	return -1
}

// finishBetRound freezes the round bets into the pot and resumes the step
func (g *Game) finishBetRound() error {
	if agg := g.betting.Aggressor(); agg >= 0 {
		g.lastAggressor = agg
	}
	g.pot.Collect(g.table.Seated())
	if err := g.assertConservation("round close"); err != nil {
		return err
	}
	g.completeAction()
	return nil
}
