package game

import (
	"fmt"

	"github.com/lox/pokervariants/internal/deck"
	"github.com/lox/pokervariants/internal/evaluator"
	"github.com/lox/pokervariants/internal/rules"
)

// WinnerShare is one player's cut of one pot
type WinnerShare struct {
	PlayerID    string
	Seat        int
	Amount      int
	HandName    string // best-hand configuration name, "" for uncontested
	Description string
}

// PotResult is the resolution of one pot (main pot first)
type PotResult struct {
	Amount int
	Shares []WinnerShare
}

// HandResult is the authoritative outcome of a completed hand
type HandResult struct {
	HandNumber int
	Variant    string
	Pots       []PotResult
	Stacks     map[string]int // chips per player after settlement
}

// showdownHand is one player's evaluated hand under one configuration
type showdownHand struct {
	seat  int
	value evaluator.HandValue
}

// runShowdown resolves every pot: evaluates each surviving player under each
// best-hand configuration, applies declarations and qualifiers, and splits
// main and side pots with odd chips to the earliest winner clockwise from
// the button.
func (g *Game) runShowdown() error {
	g.pot.Collect(g.table.Seated())
	if done, err := g.foldShortCircuit(); err != nil {
		return err
	} else if done {
		return nil
	}
	g.state = StateShowdown
	g.revealAll = true

	contenders := g.table.InHand()
	configs := g.activeShowdownConfigs()
	if len(configs) == 0 {
		return fmt.Errorf("%w: no applicable showdown configuration", ErrEngine)
	}

	// evaluate everyone under every configuration; usedBy records the cards
	// each configuration consumed so unused_from can exclude them
	hands := make(map[string][]showdownHand, len(configs))
	usedBy := map[string]map[int][]deck.Card{}
	for _, cfg := range configs {
		usedBy[cfg.Name] = map[int][]deck.Card{}
		for _, p := range contenders {
			var consumed []deck.Card
			if cfg.UnusedFrom != "" {
				consumed = usedBy[cfg.UnusedFrom][p.Seat]
			}
			v, err := g.evaluateFor(p, cfg, consumed)
			if err != nil {
				return err
			}
			usedBy[cfg.Name][p.Seat] = v.CardsUsed
			hands[cfg.Name] = append(hands[cfg.Name], showdownHand{seat: p.Seat, value: v})
			g.emitShowdownHand(p, cfg.Name, v)
		}
	}

	pots := g.pot.Pots(g.table.Seated())
	results := make([]PotResult, 0, len(pots))
	for _, pot := range pots {
		res, err := g.settlePot(pot, configs, hands)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	g.results = &HandResult{
		HandNumber: g.handNumber,
		Variant:    g.rules.Key,
		Pots:       results,
		Stacks:     g.stackSnapshot(),
	}
	if err := g.assertConservation("showdown settlement"); err != nil {
		return err
	}
	g.finishHand()
	return nil
}

// activeShowdownConfigs filters best-hand configurations on their conditions
func (g *Game) activeShowdownConfigs() []rules.BestHand {
	var out []rules.BestHand
	for _, cfg := range g.rules.Showdown.BestHands {
		if g.evalCondition(cfg.When, nil) {
			out = append(out, cfg)
		}
	}
	return out
}

// evaluateFor finds a player's best hand under one configuration
func (g *Game) evaluateFor(p *Player, cfg rules.BestHand, consumed []deck.Card) (evaluator.HandValue, error) {
	hole := p.CardsBySubset()
	community := g.communityFor(cfg)
	comb := cfg.Combinator(consumed)

	opts := evaluator.Options{Qualifier: cfg.Qualifier}
	if len(g.rules.Wilds) > 0 {
		opts.WildCards = evaluator.ResolveWilds(g.rules.Wilds, p.AllCards(), community, g.lastCommunity)
	}
	v, err := evaluator.FindBest(hole, community, cfg.Evaluation, comb, opts)
	if err != nil {
		return evaluator.HandValue{}, fmt.Errorf("%w: showdown eval for %s: %v", ErrEngine, p.ID, err)
	}
	return v, nil
}

func (g *Game) communityFor(cfg rules.BestHand) []deck.Card {
	name := cfg.Community
	if name == "" {
		name = rules.DefaultSubset
	}
	return g.community[name]
}

// settlePot splits one pot across the configurations that have a qualifying
// winner among the pot's eligible seats
func (g *Game) settlePot(pot Pot, configs []rules.BestHand, hands map[string][]showdownHand) (PotResult, error) {
	res := PotResult{Amount: pot.Amount}
	if pot.Amount == 0 {
		return res, nil
	}
	eligible := map[int]bool{}
	for _, seat := range pot.Eligible {
		eligible[seat] = true
	}

	type configWin struct {
		cfg     rules.BestHand
		winners []showdownHand
	}
	var winning []configWin
	for _, cfg := range configs {
		w := g.potWinners(hands[cfg.Name], cfg, eligible)
		if len(w) > 0 {
			winning = append(winning, configWin{cfg: cfg, winners: w})
		}
	}

	if len(winning) == 0 {
		return g.settleByDefault(pot, eligible)
	}

	// split the pot across configurations; any odd remainder goes to the
	// first configuration, conventionally the high side
	base := pot.Amount / len(winning)
	extra := pot.Amount - base*len(winning)
	for i, cw := range winning {
		share := base
		if i == 0 {
			share += extra
		}
		if err := g.awardShare(&res, share, cw.cfg.Name, cw.winners); err != nil {
			return res, err
		}
	}
	return res, nil
}

// potWinners finds the best qualifying, declaration-eligible hands among the
// pot's eligible seats
func (g *Game) potWinners(hands []showdownHand, cfg rules.BestHand, eligible map[int]bool) []showdownHand {
	declare := g.rules.Showdown.DeclarationMode == rules.DeclareMode
	var best []showdownHand
	for _, h := range hands {
		if !eligible[h.seat] || h.value.Rank == 0 {
			continue
		}
		if declare && !declarationMatches(g.table.Seat(h.seat).Declaration, cfg.Evaluation) {
			continue
		}
		if len(best) == 0 {
			best = []showdownHand{h}
			continue
		}
		switch h.value.Compare(best[0].value) {
		case 1:
			best = []showdownHand{h}
		case 0:
			best = append(best, h)
		}
	}
	return best
}

// declarationMatches reports whether a declaration contests an evaluation
// side. Declaring both ways contests everything.
func declarationMatches(declaration string, eval evaluator.Type) bool {
	switch declaration {
	case rules.DeclareBoth:
		return true
	case rules.DeclareLow:
		return eval.Low()
	case rules.DeclareHigh:
		return !eval.Low()
	}
	// no declaration recorded: cards speak for this player
	return true
}

// settleByDefault applies the showdown default when no configuration has a
// qualifying winner
func (g *Game) settleByDefault(pot Pot, eligible map[int]bool) (PotResult, error) {
	res := PotResult{Amount: pot.Amount}
	def := g.rules.Showdown.Default
	if def != nil && def.Action == rules.DefaultFallback {
		var best []showdownHand
		for _, p := range g.table.InHand() {
			if !eligible[p.Seat] {
				continue
			}
			v, err := evaluator.FindBest(p.CardsBySubset(), g.community[rules.DefaultSubset],
				def.Evaluation, evaluator.AnyFive, evaluator.Options{})
			if err != nil {
				return res, fmt.Errorf("%w: fallback eval: %v", ErrEngine, err)
			}
			h := showdownHand{seat: p.Seat, value: v}
			if len(best) == 0 || h.value.Compare(best[0].value) > 0 {
				best = []showdownHand{h}
			} else if h.value.Compare(best[0].value) == 0 {
				best = append(best, h)
			}
		}
		if len(best) > 0 {
			err := g.awardShare(&res, pot.Amount, "fallback", best)
			return res, err
		}
	}

	// split among all eligible seats
	var split []showdownHand
	for _, p := range g.table.InHand() {
		if eligible[p.Seat] {
			split = append(split, showdownHand{seat: p.Seat})
		}
	}
	if len(split) == 0 {
		return res, fmt.Errorf("%w: pot of %d with no eligible seats", ErrEngine, pot.Amount)
	}
	err := g.awardShare(&res, pot.Amount, "split", split)
	return res, err
}

// awardShare divides an amount among tied winners, odd chip to the first
// winner clockwise from the button
func (g *Game) awardShare(res *PotResult, amount int, handName string, winners []showdownHand) error {
	ordered := g.orderFromButton(winners)
	base := amount / len(ordered)
	extra := amount - base*len(ordered)
	for i, h := range ordered {
		share := base
		if i == 0 {
			share += extra
		}
		if share == 0 {
			continue
		}
		p := g.table.Seat(h.seat)
		if err := g.pot.Award(p, share); err != nil {
			return err
		}
		res.Shares = append(res.Shares, WinnerShare{
			PlayerID:    p.ID,
			Seat:        p.Seat,
			Amount:      share,
			HandName:    handName,
			Description: h.value.Description,
		})
		g.events.Append(Event{
			Type:   EventPotAwarded,
			Step:   g.stepIndex,
			Actor:  p.ID,
			Amount: share,
			Value:  handName,
		})
		g.logger.Info("pot awarded", "player", p.ID, "amount", share,
			"hand", handName, "holding", h.value.Description)
	}
	return g.assertConservation("pot award")
}

// orderFromButton sorts winners clockwise starting left of the button
func (g *Game) orderFromButton(winners []showdownHand) []showdownHand {
	bySeat := make(map[int]showdownHand, len(winners))
	for _, h := range winners {
		bySeat[h.seat] = h
	}
	out := make([]showdownHand, 0, len(winners))
	for _, seat := range g.table.OrderFrom(g.table.nextInHand(g.table.Button())) {
		if h, ok := bySeat[seat]; ok {
			out = append(out, h)
		}
	}
	return out
}

// emitShowdownHand publishes a contender's revealed hand and its evaluation
func (g *Game) emitShowdownHand(p *Player, handName string, v evaluator.HandValue) {
	ev := Event{
		Type:   EventShowdown,
		Step:   g.stepIndex,
		Actor:  p.ID,
		Value:  handName + ": " + v.Description,
		Subset: handName,
	}
	for _, c := range v.CardsUsed {
		ev.Cards = append(ev.Cards, EventCard{Card: c, FaceUp: true, Owner: p.ID})
	}
	g.events.Append(ev)
}
