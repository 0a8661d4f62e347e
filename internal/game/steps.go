package game

import (
	"fmt"

	"github.com/lox/pokervariants/internal/rules"
)

// dispatch executes one step action. Non-interactive actions run to
// completion; interactive ones install the actor queue and return with
// actorSeat set.
func (g *Game) dispatch(step *rules.Step, action rules.Action) error {
	switch a := action.(type) {
	case rules.DealAction:
		return g.execDeal(step, a)
	case rules.RemoveAction:
		return g.execRemove(a)
	case rules.RollDieAction:
		return g.execRollDie(a)
	case rules.BetAction:
		return g.beginBet(a)
	case rules.ChooseAction:
		return g.beginChoose(a)
	case rules.DiscardAction:
		g.state = StateDrawing
		return g.beginCardStep(a.OncePerStep)
	case rules.DrawAction:
		return g.execDraw(a)
	case rules.ExposeAction:
		g.state = StateDrawing
		return g.beginCardStep(false)
	case rules.PassAction:
		g.state = StateDrawing
		return g.beginCardStep(false)
	case rules.SeparateAction:
		g.state = StateDrawing
		return g.beginCardStep(false)
	case rules.DeclareAction:
		g.state = StateDrawing
		g.declareSealed = !a.Sequential
		return g.beginCardStep(false)
	case rules.ShowdownAction:
		return g.runShowdown()
	default:
		return fmt.Errorf("%w: unknown action kind %T", ErrEngine, action)
	}
}

// beginCardStep queues every in-hand player for a per-actor card action,
// starting left of the button. oncePerStep restricts the pass to one actor.
func (g *Game) beginCardStep(oncePerStep bool) error {
	order := g.table.OrderFrom(g.table.nextInHand(g.table.Button()))
	if len(order) == 0 {
		return fmt.Errorf("%w: card step with no players in hand", ErrEngine)
	}
	if oncePerStep {
		order = order[:1]
	}
	g.queue = order
	g.collected = map[int]pendingAction{}
	g.actorSeat = order[0]
	return nil
}

// execDeal deals to players (clockwise from the button) or the community
func (g *Game) execDeal(step *rules.Step, a rules.DealAction) error {
	g.state = StateDealing
	switch a.Location {
	case rules.LocationPlayer:
		start := g.table.nextInHand(g.table.Button())
		for _, seat := range g.table.OrderFrom(start) {
			p := g.table.Seat(seat)
			state := a.State
			if a.StateWhen != nil {
				if g.evalCondition(a.StateWhen.When, p) {
					state = a.StateWhen.Then
				} else {
					state = a.StateWhen.Else
				}
			}
			cards, err := g.deck.Deal(a.Number)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrEngine, err)
			}
			faceUp := state == rules.FaceUp
			p.AddCards(a.Subset, cards, faceUp)

			ev := Event{
				Type:     EventDeal,
				Step:     g.stepIndex,
				StepName: step.Name,
				Actor:    p.ID,
				Subset:   a.Subset,
			}
			for _, c := range cards {
				ev.Cards = append(ev.Cards, EventCard{Card: c, FaceUp: faceUp, Owner: p.ID})
			}
			g.events.Append(ev)
		}
	case rules.LocationCommunity:
		cards, err := g.deck.Deal(a.Number)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEngine, err)
		}
		g.community[a.Subset] = append(g.community[a.Subset], cards...)
		for range cards {
			g.communityDown[a.Subset] = append(g.communityDown[a.Subset], a.State != rules.FaceUp)
		}
		last := cards[len(cards)-1]
		g.lastCommunity = &last

		ev := Event{
			Type:     EventDeal,
			Step:     g.stepIndex,
			StepName: step.Name,
			Subset:   a.Subset,
		}
		for _, c := range cards {
			ev.Cards = append(ev.Cards, EventCard{Card: c, FaceUp: a.State == rules.FaceUp})
		}
		g.events.Append(ev)
	}
	return nil
}

// execRemove takes cards off the top of a community subset
func (g *Game) execRemove(a rules.RemoveAction) error {
	cards := g.community[a.Subset]
	n := a.Number
	if n > len(cards) {
		n = len(cards)
	}
	g.community[a.Subset] = cards[:len(cards)-n]
	if down := g.communityDown[a.Subset]; len(down) >= n {
		g.communityDown[a.Subset] = down[:len(down)-n]
	}
	g.events.Append(Event{
		Type:   EventAction,
		Step:   g.stepIndex,
		Action: string(rules.KindRemove),
		Subset: a.Subset,
		Amount: n,
	})
	return nil
}

// execRollDie rolls and records a die for conditional branching
func (g *Game) execRollDie(a rules.RollDieAction) error {
	roll := g.rng.IntN(a.Sides) + 1
	g.dice[a.Subset] = roll
	g.events.Append(Event{
		Type:   EventAction,
		Step:   g.stepIndex,
		Action: string(rules.KindRollDie),
		Subset: a.Subset,
		Amount: roll,
	})
	g.logger.Debug("die rolled", "subset", a.Subset, "roll", roll)
	return nil
}

// execDraw deals replacement cards to every player in hand. Draws grouped
// after a discard in the same step were already filled per-actor by
// applyDiscard, so the interpreter skips them here.
func (g *Game) execDraw(a rules.DrawAction) error {
	if step, ok := g.currentStep(); ok {
		for i := 0; i < g.actionIndex; i++ {
			if _, grouped := step.Actions[i].(rules.DiscardAction); grouped {
				return nil
			}
		}
	}
	deal := func(p *Player) error {
		n := a.Number
		if a.RelativeTo == "discard" {
			n = g.stepDiscards[p.Seat] + a.Offset
		}
		if n <= 0 {
			return nil
		}
		cards, err := g.deck.Deal(n)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrEngine, err)
		}
		p.AddCards(a.Subset, cards, false)
		ev := Event{
			Type:     EventDeal,
			Step:     g.stepIndex,
			Actor:    p.ID,
			Subset:   a.Subset,
			StepName: g.rules.Steps[g.stepIndex].Name,
		}
		for _, c := range cards {
			ev.Cards = append(ev.Cards, EventCard{Card: c, FaceUp: false, Owner: p.ID})
		}
		g.events.Append(ev)
		return nil
	}

	for _, p := range g.table.InHand() {
		if err := deal(p); err != nil {
			return err
		}
	}
	return nil
}

// applyDiscard validates and executes one actor's discard selection
func (g *Game) applyDiscard(p *Player, a rules.DiscardAction, indexes []int) error {
	if a.EntireSubset {
		// the whole subset goes regardless of the selection or the bounds
		indexes = make([]int, len(p.Hole[a.Subset]))
		for i := range indexes {
			indexes[i] = i
		}
	} else {
		if len(indexes) > a.Number {
			return userErr(CodeUnknownCardSelection, "discard of %d cards exceeds maximum %d", len(indexes), a.Number)
		}
		if len(indexes) < a.Min {
			return userErr(CodeUnknownCardSelection, "discard of %d cards below minimum %d", len(indexes), a.Min)
		}
	}
	if err := validIndexes(indexes, len(p.Hole[a.Subset])); err != nil {
		return err
	}
	if a.Rule == "matching_ranks" && len(indexes) > 1 {
		first := p.Hole[a.Subset][indexes[0]].Card.Rank
		for _, i := range indexes[1:] {
			if p.Hole[a.Subset][i].Card.Rank != first {
				return userErr(CodeUnknownCardSelection, "discards must share a rank")
			}
		}
	}

	removed := p.RemoveCards(a.Subset, indexes)
	g.stepDiscards[p.Seat] = len(removed)
	if a.ToCommunity != "" {
		// discarded cards keep their table visibility in the shared subset
		for _, hc := range removed {
			g.community[a.ToCommunity] = append(g.community[a.ToCommunity], hc.Card)
			g.communityDown[a.ToCommunity] = append(g.communityDown[a.ToCommunity], !hc.FaceUp)
		}
	}
	g.events.Append(Event{
		Type:   EventAction,
		Step:   g.stepIndex,
		Actor:  p.ID,
		Action: string(rules.KindDiscard),
		Subset: a.Subset,
		Amount: len(removed),
	})

	// a grouped draw refills this actor before the turn moves on
	if draw, ok := g.groupedDraw(); ok {
		n := draw.Number
		if draw.RelativeTo == "discard" {
			n = len(removed) + draw.Offset
		}
		if n > 0 {
			cards, err := g.deck.Deal(n)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrEngine, err)
			}
			p.AddCards(draw.Subset, cards, false)
			ev := Event{
				Type:   EventDeal,
				Step:   g.stepIndex,
				Actor:  p.ID,
				Subset: draw.Subset,
			}
			for _, c := range cards {
				ev.Cards = append(ev.Cards, EventCard{Card: c, FaceUp: false, Owner: p.ID})
			}
			g.events.Append(ev)
		}
	}
	return nil
}

// groupedDraw finds a draw action grouped after the current discard action
// in the same step
func (g *Game) groupedDraw() (rules.DrawAction, bool) {
	step, ok := g.currentStep()
	if !ok {
		return rules.DrawAction{}, false
	}
	for i := g.actionIndex + 1; i < len(step.Actions); i++ {
		if d, ok := step.Actions[i].(rules.DrawAction); ok {
			return d, true
		}
	}
	return rules.DrawAction{}, false
}

// applyExpose flips the selected face-down cards face-up
func (g *Game) applyExpose(p *Player, a rules.ExposeAction, indexes []int) error {
	if len(indexes) != a.Number {
		return userErr(CodeUnknownCardSelection, "expose needs exactly %d cards", a.Number)
	}
	if err := validIndexes(indexes, len(p.Hole[a.Subset])); err != nil {
		return err
	}
	for _, i := range indexes {
		if p.Hole[a.Subset][i].FaceUp {
			return userErr(CodeUnknownCardSelection, "card %d is already face up", i)
		}
	}
	ev := Event{
		Type:   EventAction,
		Step:   g.stepIndex,
		Actor:  p.ID,
		Action: string(rules.KindExpose),
		Subset: a.Subset,
	}
	for _, i := range indexes {
		p.Hole[a.Subset][i].FaceUp = true
		p.Hole[a.Subset][i].ExposedAt = g.stepIndex
		ev.Cards = append(ev.Cards, EventCard{Card: p.Hole[a.Subset][i].Card, FaceUp: true, Owner: p.ID})
	}
	g.events.Append(ev)
	return nil
}

// collectPass buffers one actor's pass selection; applyPasses moves all of
// them at once so nobody sees incoming cards before choosing
func (g *Game) collectPass(p *Player, a rules.PassAction, indexes []int) error {
	if len(indexes) != a.Number {
		return userErr(CodeUnknownCardSelection, "pass needs exactly %d cards", a.Number)
	}
	if err := validIndexes(indexes, len(p.Hole[a.Subset])); err != nil {
		return err
	}
	g.collected[p.Seat] = pendingAction{cards: append([]int(nil), indexes...)}
	return nil
}

// applyPasses executes the simultaneous card transfer once every actor chose
func (g *Game) applyPasses(a rules.PassAction) error {
	order := g.table.OrderFrom(g.table.nextInHand(g.table.Button()))
	moved := map[int][]HoleCard{}
	for _, seat := range order {
		p := g.table.Seat(seat)
		sel, ok := g.collected[seat]
		if !ok {
			return fmt.Errorf("%w: pass selection missing for seat %d", ErrEngine, seat)
		}
		moved[seat] = p.RemoveCards(a.Subset, sel.cards)
	}
	for i, seat := range order {
		var target int
		switch a.Direction {
		case rules.PassLeft:
			target = order[(i+1)%len(order)]
		case rules.PassRight:
			target = order[(i+len(order)-1)%len(order)]
		case rules.PassAcross:
			target = order[(i+len(order)/2)%len(order)]
		}
		dst := g.table.Seat(target)
		for _, hc := range moved[seat] {
			hc.ExposedAt = -1
			dst.Hole[a.Subset] = append(dst.Hole[a.Subset], hc)
		}
		g.events.Append(Event{
			Type:   EventAction,
			Step:   g.stepIndex,
			Actor:  g.table.Seat(seat).ID,
			Action: string(rules.KindPass),
			Subset: a.Subset,
			Amount: len(moved[seat]),
			Value:  dst.ID,
		})
	}
	return nil
}

// applySeparate partitions the actor's default-subset cards into the
// declared target subsets
func (g *Game) applySeparate(p *Player, a rules.SeparateAction, subsets map[string][]int) error {
	source := p.Hole[rules.DefaultSubset]
	used := map[int]bool{}
	total := 0
	for _, tgt := range a.Targets {
		sel := subsets[tgt.Name]
		if len(sel) != tgt.Size {
			return userErr(CodeBadSubsetSizes, "subset %q needs %d cards, got %d", tgt.Name, tgt.Size, len(sel))
		}
		faceUp := 0
		for _, i := range sel {
			if i < 0 || i >= len(source) {
				return userErr(CodeUnknownCardSelection, "card index %d out of range", i)
			}
			if used[i] {
				return userErr(CodeUnknownCardSelection, "card index %d used twice", i)
			}
			used[i] = true
			if source[i].FaceUp {
				faceUp++
			}
		}
		if faceUp < tgt.MinFaceUp {
			return userErr(CodeBadSubsetSizes, "subset %q needs %d face-up cards", tgt.Name, tgt.MinFaceUp)
		}
		total += len(sel)
	}
	if total != len(source) {
		return userErr(CodeBadSubsetSizes, "separation must use all %d cards", len(source))
	}

	for _, tgt := range a.Targets {
		for _, i := range subsets[tgt.Name] {
			p.Hole[tgt.Name] = append(p.Hole[tgt.Name], source[i])
		}
	}
	p.Hole[rules.DefaultSubset] = nil
	g.events.Append(Event{
		Type:   EventAction,
		Step:   g.stepIndex,
		Actor:  p.ID,
		Action: string(rules.KindSeparate),
	})
	return nil
}

// applyDeclare records a declaration. Simultaneous declares stay sealed
// until the last one lands.
func (g *Game) applyDeclare(p *Player, a rules.DeclareAction, value string) error {
	ok := false
	for _, opt := range a.Options {
		if value == opt {
			ok = true
		}
	}
	if !ok {
		return userErr(CodeIllegalDeclaration, "declaration %q not allowed", value)
	}
	p.Declaration = value
	ev := Event{
		Type:   EventAction,
		Step:   g.stepIndex,
		Actor:  p.ID,
		Action: string(rules.KindDeclare),
	}
	if !g.declareSealed {
		ev.Value = value
	}
	g.events.Append(ev)
	return nil
}

// beginChoose queues the designated position for a choice
func (g *Game) beginChoose(a rules.ChooseAction) error {
	var seat int
	switch a.Position {
	case rules.PositionButton, rules.PositionDealer:
		seat = g.table.Button()
	case rules.PositionSB:
		seat = g.table.SmallBlindSeat()
	case rules.PositionBB:
		seat = g.table.BigBlindSeat()
	case rules.PositionUTG:
		seat = g.table.nextInHand(g.table.BigBlindSeat())
	default:
		return fmt.Errorf("%w: unknown choose position %q", ErrEngine, a.Position)
	}
	if seat < 0 || g.table.Seat(seat) == nil {
		return fmt.Errorf("%w: choose position %q empty", ErrEngine, a.Position)
	}
	g.state = StateDrawing
	g.queue = []int{seat}
	g.collected = map[int]pendingAction{}
	g.actorSeat = seat
	return nil
}

// applyChoose stores the choice for conditional resolution
func (g *Game) applyChoose(p *Player, a rules.ChooseAction, value string) error {
	ok := false
	for _, v := range a.Values {
		if v == value {
			ok = true
		}
	}
	if !ok {
		return userErr(CodeInvalidAction, "choice %q not in %v", value, a.Values)
	}
	g.choices[a.Name] = value
	p.Choices[a.Name] = value
	g.events.Append(Event{
		Type:   EventAction,
		Step:   g.stepIndex,
		Actor:  p.ID,
		Action: string(rules.KindChoose),
		Subset: a.Name,
		Value:  value,
	})
	g.logger.Info("choice made", "name", a.Name, "value", value, "player", p.ID)
	return nil
}

func validIndexes(indexes []int, n int) error {
	seen := map[int]bool{}
	for _, i := range indexes {
		if i < 0 || i >= n {
			return userErr(CodeUnknownCardSelection, "card index %d out of range", i)
		}
		if seen[i] {
			return userErr(CodeUnknownCardSelection, "card index %d selected twice", i)
		}
		seen[i] = true
	}
	return nil
}
