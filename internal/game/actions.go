package game

import (
	"github.com/lox/pokervariants/internal/rules"
)

// ActionType is a player-initiated action
type ActionType string

const (
	ActionFold     ActionType = "fold"
	ActionCheck    ActionType = "check"
	ActionCall     ActionType = "call"
	ActionBet      ActionType = "bet"
	ActionRaise    ActionType = "raise"
	ActionDiscard  ActionType = "discard"
	ActionExpose   ActionType = "expose"
	ActionPass     ActionType = "pass"
	ActionSeparate ActionType = "separate"
	ActionDeclare  ActionType = "declare"
	ActionChoose   ActionType = "choose"
)

// Payload carries the parameters of an action. Amount is a round total for
// bet/raise. Cards are indexes into the step's subset. Subsets maps target
// subset names to card indexes for a separate action.
type Payload struct {
	Amount  int
	Cards   []int
	Value   string
	Subsets map[string][]int
}

// ActionOption describes one legal action for the current actor
type ActionOption struct {
	Type     ActionType
	Min      int // minimum total for bet/raise, call amount for call
	Max      int
	Cards    int // maximum cards to select
	MinCards int
	Values   []string // legal values for declare/choose
}

// ValidActions lists the legal actions for a player. Empty when it is not
// their turn.
func (g *Game) ValidActions(playerID string) []ActionOption {
	p := g.currentPlayer()
	if p == nil || p.ID != playerID {
		return nil
	}

	if g.betRunning {
		return g.validBetActions(p)
	}

	step, ok := g.currentStep()
	if !ok || g.actionIndex >= len(step.Actions) {
		return nil
	}
	opts := []ActionOption{{Type: ActionFold}}
	switch a := step.Actions[g.actionIndex].(type) {
	case rules.DiscardAction:
		n := a.Number
		minCards := a.Min
		if a.EntireSubset {
			n = len(p.Hole[a.Subset])
			minCards = n
		}
		opts = append(opts, ActionOption{Type: ActionDiscard, Cards: n, MinCards: minCards})
	case rules.ExposeAction:
		opts = append(opts, ActionOption{Type: ActionExpose, Cards: a.Number, MinCards: a.Number})
	case rules.PassAction:
		opts = append(opts, ActionOption{Type: ActionPass, Cards: a.Number, MinCards: a.Number})
	case rules.SeparateAction:
		opts = append(opts, ActionOption{Type: ActionSeparate})
	case rules.DeclareAction:
		opts = append(opts, ActionOption{Type: ActionDeclare, Values: a.Options})
	case rules.ChooseAction:
		// choosing is not folding out of the hand
		opts = []ActionOption{{Type: ActionChoose, Values: a.Values}}
	}
	return opts
}

func (g *Game) validBetActions(p *Player) []ActionOption {
	opts := []ActionOption{{Type: ActionFold}}
	current := g.betting.CurrentBet()
	if p.Bet >= current {
		opts = append(opts, ActionOption{Type: ActionCheck})
	} else {
		opts = append(opts, ActionOption{Type: ActionCall, Min: g.betting.AdditionalRequired(p)})
	}
	if current == 0 {
		if max := g.betting.MaxBet(p); max > 0 {
			opts = append(opts, ActionOption{Type: ActionBet, Min: g.betting.MinBet(p), Max: max})
		}
	} else if max := g.betting.MaxBet(p); max > current {
		opts = append(opts, ActionOption{Type: ActionRaise, Min: g.betting.MinRaise(p), Max: max})
	}
	return opts
}

// PlayerAction validates and applies one player action. Rejected actions
// return a UserError and leave state untouched; accepted ones advance the
// hand, running non-interactive steps when AutoProgress is set.
func (g *Game) PlayerAction(playerID string, action ActionType, payload Payload) error {
	p := g.currentPlayer()
	if p == nil || p.ID != playerID {
		return userErr(CodeNotPlayersTurn, "not %s's turn", playerID)
	}

	var err error
	if g.betRunning {
		err = g.applyBetAction(p, action, payload)
	} else {
		err = g.applyCardAction(p, action, payload)
	}
	if err != nil {
		return err
	}
	if g.autoProgress && g.actorSeat < 0 && g.state != StateComplete {
		return g.run()
	}
	return nil
}

func (g *Game) applyBetAction(p *Player, action ActionType, payload Payload) error {
	switch action {
	case ActionFold:
		g.recordFold(p)
		if done, err := g.foldShortCircuit(); err != nil || done {
			return err
		}
		return g.advanceBetting(p.Seat)

	case ActionCheck:
		if p.Bet < g.betting.CurrentBet() {
			return userErr(CodeInvalidAction, "cannot check facing a bet of %d", g.betting.CurrentBet())
		}
		g.betting.MarkActed(p.Seat)
		g.actionEvent(p, ActionCheck, 0)

	case ActionCall:
		target := min(g.betting.CurrentBet(), p.Bet+p.Chips)
		if target <= p.Bet {
			return userErr(CodeInvalidAction, "nothing to call")
		}
		if err := g.betting.PlaceBet(p, target, false); err != nil {
			return err
		}
		g.actionEvent(p, ActionCall, target)

	case ActionBet, ActionRaise:
		if err := g.betting.PlaceBet(p, payload.Amount, false); err != nil {
			return err
		}
		g.actionEvent(p, action, payload.Amount)

	default:
		return userErr(CodeInvalidAction, "action %q not available in a betting round", action)
	}

	return g.advanceBetting(p.Seat)
}

// advanceBetting moves the turn or closes the round
func (g *Game) advanceBetting(from int) error {
	next := g.nextBettor(from, false)
	if next < 0 {
		return g.finishBetRound()
	}
	g.actorSeat = next
	return nil
}

func (g *Game) applyCardAction(p *Player, action ActionType, payload Payload) error {
	step, ok := g.currentStep()
	if !ok || g.actionIndex >= len(step.Actions) {
		return userErr(CodeInvalidAction, "no action pending")
	}
	stepAction := step.Actions[g.actionIndex]

	if action == ActionFold {
		if _, choosing := stepAction.(rules.ChooseAction); choosing {
			return userErr(CodeInvalidAction, "cannot fold a choice")
		}
		g.recordFold(p)
		if done, err := g.foldShortCircuit(); err != nil || done {
			return err
		}
		return g.advanceCardQueue(stepAction)
	}

	var err error
	switch a := stepAction.(type) {
	case rules.DiscardAction:
		if action != ActionDiscard {
			return userErr(CodeInvalidAction, "expected a discard")
		}
		err = g.applyDiscard(p, a, payload.Cards)
	case rules.ExposeAction:
		if action != ActionExpose {
			return userErr(CodeInvalidAction, "expected an expose")
		}
		err = g.applyExpose(p, a, payload.Cards)
	case rules.PassAction:
		if action != ActionPass {
			return userErr(CodeInvalidAction, "expected a pass")
		}
		err = g.collectPass(p, a, payload.Cards)
	case rules.SeparateAction:
		if action != ActionSeparate {
			return userErr(CodeInvalidAction, "expected a separation")
		}
		err = g.applySeparate(p, a, payload.Subsets)
	case rules.DeclareAction:
		if action != ActionDeclare {
			return userErr(CodeInvalidAction, "expected a declaration")
		}
		err = g.applyDeclare(p, a, payload.Value)
	case rules.ChooseAction:
		if action != ActionChoose {
			return userErr(CodeInvalidAction, "expected a choice")
		}
		err = g.applyChoose(p, a, payload.Value)
	default:
		return userErr(CodeInvalidAction, "action %q not available", action)
	}
	if err != nil {
		return err
	}
	return g.advanceCardQueue(stepAction)
}

// advanceCardQueue moves a per-actor card step to its next actor, finalizing
// simultaneous steps once every actor is in
func (g *Game) advanceCardQueue(stepAction rules.Action) error {
	for len(g.queue) > 0 && g.queue[0] == g.actorSeat {
		g.queue = g.queue[1:]
	}
	for len(g.queue) > 0 {
		seat := g.queue[0]
		p := g.table.Seat(seat)
		if p != nil && p.InHand() {
			g.actorSeat = seat
			return nil
		}
		g.queue = g.queue[1:]
	}

	// queue exhausted: finalize
	switch a := stepAction.(type) {
	case rules.PassAction:
		if err := g.applyPasses(a); err != nil {
			return err
		}
	case rules.DeclareAction:
		if g.declareSealed {
			g.declareSealed = false
			for _, p := range g.table.InHand() {
				g.events.Append(Event{
					Type:   EventAction,
					Step:   g.stepIndex,
					Actor:  p.ID,
					Action: string(rules.KindDeclare),
					Value:  p.Declaration,
				})
			}
		}
	}
	g.completeAction()
	return nil
}

// recordFold marks the fold and logs it
func (g *Game) recordFold(p *Player) {
	p.Status = StatusFolded
	g.actionEvent(p, ActionFold, 0)
	g.logger.Debug("fold", "player", p.ID)
}

func (g *Game) actionEvent(p *Player, action ActionType, amount int) {
	g.events.Append(Event{
		Type:   EventAction,
		Step:   g.stepIndex,
		Actor:  p.ID,
		Action: string(action),
		Amount: amount,
	})
}
