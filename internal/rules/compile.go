package rules

import (
	"fmt"

	"github.com/lox/pokervariants/internal/deck"
	"github.com/lox/pokervariants/internal/evaluator"
)

// compile validates one variant document and builds the immutable Rules.
// Validation is a single pass: nothing is deferred to step execution.
func compile(doc *variantDoc) (*Rules, error) {
	fail := func(format string, args ...any) error {
		return fmt.Errorf("%w: variant %q: %s", ErrInvalidRules, doc.Key, fmt.Sprintf(format, args...))
	}

	if doc.SchemaVersion != SchemaVersion {
		return nil, fail("schema_version %d unsupported, want %d", doc.SchemaVersion, SchemaVersion)
	}
	if doc.Players == nil {
		return nil, fail("players block required")
	}
	if doc.Players.Min < 2 || doc.Players.Max < doc.Players.Min {
		return nil, fail("players min/max %d/%d invalid", doc.Players.Min, doc.Players.Max)
	}
	if doc.Deck == nil {
		return nil, fail("deck block required")
	}

	r := &Rules{
		Key:           doc.Key,
		Name:          doc.Name,
		SchemaVersion: doc.SchemaVersion,
		Players:       MinMax{Min: doc.Players.Min, Max: doc.Players.Max},
		Deck: deck.Descriptor{
			Type:   deck.Type(doc.Deck.Type),
			Cards:  doc.Deck.Cards,
			Jokers: doc.Deck.Jokers,
		},
	}
	if r.Name == "" {
		r.Name = r.Key
	}
	switch r.Deck.Type {
	case deck.Standard, deck.Short, deck.Twenty:
	default:
		return nil, fail("unknown deck type %q", doc.Deck.Type)
	}

	if len(doc.BettingStructures) == 0 {
		return nil, fail("betting_structures must not be empty")
	}
	for _, s := range doc.BettingStructures {
		switch Structure(s) {
		case Limit, NoLimit, PotLimit:
			r.Structures = append(r.Structures, Structure(s))
		default:
			return nil, fail("unknown betting structure %q", s)
		}
	}

	if len(doc.ForcedBets) == 0 {
		return nil, fail("forced_bets block required")
	}
	unconditional := 0
	for _, fb := range doc.ForcedBets {
		c, err := compileCondition(fb.When)
		if err != nil {
			return nil, fail("forced_bets: %v", err)
		}
		if c == nil {
			unconditional++
		} else if c.Choice == "" {
			return nil, fail("conditional forced_bets must key on a choice")
		}
		rec := ForcedBets{Style: fb.Style, Rule: fb.Rule, When: c}
		switch fb.Style {
		case ForcedBlinds, ForcedAntesOnly:
		case ForcedBringIn:
			if fb.BringInEval == "" {
				return nil, fail("bring_in forced bets need bring_in_eval")
			}
		default:
			return nil, fail("unknown forced bet style %q", fb.Style)
		}
		if fb.BringInEval != "" {
			t := evaluator.Type(fb.BringInEval)
			if !t.Known() {
				return nil, fail("unknown bring_in_eval %q", fb.BringInEval)
			}
			rec.BringInEval = t
		}
		r.ForcedBets = append(r.ForcedBets, rec)
	}
	if unconditional != 1 {
		return nil, fail("exactly one unconditional forced_bets record required, have %d", unconditional)
	}

	if doc.Order == nil {
		return nil, fail("betting_order block required")
	}
	order, err := compileOrder(doc.Order)
	if err != nil {
		return nil, fail("%v", err)
	}
	r.Order = *order
	if err := checkOrderConsistency(r); err != nil {
		return nil, fail("%v", err)
	}

	for _, w := range doc.Wilds {
		wr, err := compileWild(w)
		if err != nil {
			return nil, fail("%v", err)
		}
		r.Wilds = append(r.Wilds, wr)
	}

	// Subset tracking: steps may only reference hole/community subsets a
	// prior step introduced. Deals introduce their subset; separations
	// introduce their targets; draws deal into existing subsets only.
	holeSubsets := map[string]bool{}
	communitySubsets := map[string]bool{}
	choiceNames := map[string]bool{}
	sawShowdown := false

	for _, sd := range doc.Steps {
		step, err := compileStep(sd, holeSubsets, communitySubsets, choiceNames)
		if err != nil {
			return nil, fail("step %q: %v", sd.Name, err)
		}
		for _, a := range step.Actions {
			if _, ok := a.(ShowdownAction); ok {
				sawShowdown = true
			}
		}
		r.Steps = append(r.Steps, *step)
	}
	if len(r.Steps) == 0 {
		return nil, fail("no steps")
	}
	if !sawShowdown {
		return nil, fail("no showdown step")
	}

	if doc.Showdown == nil {
		return nil, fail("showdown_rule block required")
	}
	sh, err := compileShowdown(doc.Showdown, holeSubsets, communitySubsets)
	if err != nil {
		return nil, fail("showdown_rule: %v", err)
	}
	r.Showdown = *sh

	return r, nil
}

func compileCondition(c *conditionDoc) (*Condition, error) {
	if c == nil {
		return nil, nil
	}
	out := &Condition{
		Choice:        c.Choice,
		Equals:        c.Equals,
		Subset:        c.Subset,
		Count:         c.Count,
		LastCardColor: c.LastCard,
		HandSize:      c.HandSize,
		Exposed:       c.Exposed,
	}
	if c.Choice != "" && c.Equals == "" {
		return nil, fmt.Errorf("choice condition %q needs equals", c.Choice)
	}
	switch c.LastCard {
	case "", "red", "black":
	default:
		return nil, fmt.Errorf("last_card_color must be red or black, got %q", c.LastCard)
	}
	if c.Choice == "" && c.Count == nil && c.LastCard == "" && c.HandSize == nil && c.Exposed == nil {
		return nil, fmt.Errorf("empty condition")
	}
	return out, nil
}

func compileOrder(o *orderDoc) (*BettingOrder, error) {
	checkInitial := func(v string) error {
		switch v {
		case OrderAfterBigBlind, OrderBringIn, OrderDealer:
			return nil
		}
		return fmt.Errorf("unknown initial order %q", v)
	}
	checkSubsequent := func(v string) error {
		switch v {
		case OrderHighHand, OrderDealer, OrderLastActor:
			return nil
		}
		return fmt.Errorf("unknown subsequent order %q", v)
	}

	if err := checkInitial(o.Initial); err != nil {
		return nil, err
	}
	if err := checkSubsequent(o.Subsequent); err != nil {
		return nil, err
	}
	out := &BettingOrder{Initial: o.Initial, Subsequent: o.Subsequent}
	for _, ov := range o.Overrides {
		c, err := compileCondition(ov.When)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("betting_order override needs a when block")
		}
		if ov.Initial != "" {
			if err := checkInitial(ov.Initial); err != nil {
				return nil, err
			}
		}
		if ov.Subsequent != "" {
			if err := checkSubsequent(ov.Subsequent); err != nil {
				return nil, err
			}
		}
		out.Overrides = append(out.Overrides, OrderOverride{
			Initial: ov.Initial, Subsequent: ov.Subsequent, When: c,
		})
	}
	return out, nil
}

// checkOrderConsistency rejects order policies with no forced-bet record
// that can seed them
func checkOrderConsistency(r *Rules) error {
	hasStyle := func(style string) bool {
		for _, fb := range r.ForcedBets {
			if fb.Style == style {
				return true
			}
		}
		return false
	}
	if r.Order.Initial == OrderAfterBigBlind && !hasStyle(ForcedBlinds) {
		return fmt.Errorf("initial order after_big_blind without blinds forced bets")
	}
	if r.Order.Initial == OrderBringIn && !hasStyle(ForcedBringIn) {
		return fmt.Errorf("initial order bring_in without bring_in forced bets")
	}
	if r.Order.Subsequent == OrderHighHand {
		// high_hand ordering ranks visible cards with the bring-in eval
		ok := false
		for _, fb := range r.ForcedBets {
			if fb.BringInEval != "" {
				ok = true
			}
		}
		if !ok {
			return fmt.Errorf("subsequent order high_hand without a bring_in_eval")
		}
	}
	return nil
}

func compileWild(w wildDoc) (evaluator.WildRule, error) {
	rule := evaluator.WildRule{
		Kind:  evaluator.WildKind(w.Kind),
		Role:  evaluator.WildRole(w.Role),
		Scope: evaluator.WildScope(w.Scope),
	}
	switch rule.Kind {
	case evaluator.WildJoker, evaluator.WildLowestCommunity,
		evaluator.WildLowestHole, evaluator.WildLastCommunity:
	case evaluator.WildRank:
		cards, err := deck.ParseCards(w.Rank + "s")
		if err != nil || w.Rank == "" {
			return rule, fmt.Errorf("wild rank %q invalid", w.Rank)
		}
		rule.Rank = cards[0].Rank
	default:
		return rule, fmt.Errorf("unknown wild kind %q", w.Kind)
	}
	switch rule.Role {
	case "", evaluator.RoleWild, evaluator.RoleBug, evaluator.RoleJoker:
	default:
		return rule, fmt.Errorf("unknown wild role %q", w.Role)
	}
	switch rule.Scope {
	case "", evaluator.ScopePlayer, evaluator.ScopeGlobal:
	default:
		return rule, fmt.Errorf("unknown wild scope %q", w.Scope)
	}
	// hole-derived rules resolve per player, community-derived ones globally;
	// a document asking for the opposite is inconsistent
	switch rule.Kind {
	case evaluator.WildLowestHole:
		if rule.Scope == evaluator.ScopeGlobal {
			return rule, fmt.Errorf("wild %s resolves per player, not globally", w.Kind)
		}
	case evaluator.WildLowestCommunity, evaluator.WildLastCommunity:
		if rule.Scope == evaluator.ScopePlayer {
			return rule, fmt.Errorf("wild %s resolves globally, not per player", w.Kind)
		}
	}
	return rule, nil
}

func compileStep(sd stepDoc, holeSubsets, communitySubsets, choiceNames map[string]bool) (*Step, error) {
	when, err := compileCondition(sd.When)
	if err != nil {
		return nil, err
	}
	step := &Step{Name: sd.Name, When: when}

	requireHole := func(name string) (string, error) {
		if name == "" {
			name = DefaultSubset
		}
		if !holeSubsets[name] {
			return "", fmt.Errorf("references hole subset %q before it exists", name)
		}
		return name, nil
	}

	// Non-interactive setup actions run before anything an actor does
	for _, c := range sd.Chooses {
		switch c.Position {
		case PositionUTG, PositionButton, PositionDealer, PositionSB, PositionBB:
		default:
			return nil, fmt.Errorf("unknown choose position %q", c.Position)
		}
		if len(c.Values) == 0 {
			return nil, fmt.Errorf("choose %q has no values", c.Name)
		}
		choiceNames[c.Name] = true
		step.Actions = append(step.Actions, ChooseAction{Name: c.Name, Position: c.Position, Values: c.Values})
	}
	for _, rd := range sd.Rolls {
		sides := rd.Sides
		if sides == 0 {
			sides = 6
		}
		subset := rd.Subset
		if subset == "" {
			subset = "die"
		}
		communitySubsets[subset] = true
		step.Actions = append(step.Actions, RollDieAction{Sides: sides, Subset: subset})
	}
	for _, d := range sd.Deals {
		subset := d.Subset
		if subset == "" {
			subset = DefaultSubset
		}
		state := d.State
		var stateWhen *DealStateCond
		if d.StateWhen != nil {
			c, err := compileCondition(d.StateWhen.When)
			if err != nil {
				return nil, err
			}
			if c == nil {
				return nil, fmt.Errorf("state_when needs a when block")
			}
			if !validDealState(d.StateWhen.Then) || !validDealState(d.StateWhen.Else) {
				return nil, fmt.Errorf("state_when then/else must be face_up or face_down")
			}
			stateWhen = &DealStateCond{When: c, Then: d.StateWhen.Then, Else: d.StateWhen.Else}
		}
		switch d.Location {
		case LocationPlayer:
			if state == "" {
				state = FaceDown
			}
			holeSubsets[subset] = true
		case LocationCommunity:
			if state == "" {
				state = FaceUp
			}
			communitySubsets[subset] = true
		default:
			return nil, fmt.Errorf("unknown deal location %q", d.Location)
		}
		if !validDealState(state) {
			return nil, fmt.Errorf("unknown deal state %q", state)
		}
		if d.Number < 1 {
			return nil, fmt.Errorf("deal number must be positive")
		}
		step.Actions = append(step.Actions, DealAction{
			Location: d.Location, Number: d.Number, Subset: subset,
			State: state, StateWhen: stateWhen,
		})
	}
	for _, d := range sd.Discards {
		subset, err := requireHole(d.Subset)
		if err != nil {
			return nil, err
		}
		if d.ToCommunity != "" {
			communitySubsets[d.ToCommunity] = true
		}
		if d.Number < 0 || (!d.EntireSubset && d.Number == 0) {
			return nil, fmt.Errorf("discard number must be positive")
		}
		step.Actions = append(step.Actions, DiscardAction{
			Number: d.Number, Min: d.Min, Subset: subset,
			EntireSubset: d.EntireSubset, ToCommunity: d.ToCommunity,
			OncePerStep: d.OncePerStep, Rule: d.Rule,
		})
	}
	for _, d := range sd.Draws {
		subset, err := requireHole(d.Subset)
		if err != nil {
			return nil, err
		}
		if d.RelativeTo != "" && d.RelativeTo != "discard" {
			return nil, fmt.Errorf("draw relative_to must be discard")
		}
		if d.RelativeTo == "" && d.Number < 1 {
			return nil, fmt.Errorf("draw number must be positive")
		}
		step.Actions = append(step.Actions, DrawAction{
			Number: d.Number, Subset: subset, RelativeTo: d.RelativeTo, Offset: d.Offset,
		})
	}
	for _, rm := range sd.Removes {
		loc := rm.Location
		if loc == "" {
			loc = LocationCommunity
		}
		if loc != LocationCommunity {
			return nil, fmt.Errorf("remove supports community only")
		}
		subset := rm.Subset
		if subset == "" {
			subset = DefaultSubset
		}
		if !communitySubsets[subset] {
			return nil, fmt.Errorf("references community subset %q before it exists", subset)
		}
		step.Actions = append(step.Actions, RemoveAction{Location: loc, Subset: subset, Number: rm.Number})
	}
	for _, e := range sd.Exposes {
		subset, err := requireHole(e.Subset)
		if err != nil {
			return nil, err
		}
		step.Actions = append(step.Actions, ExposeAction{Number: e.Number, Subset: subset, Immediate: e.Immediate})
	}
	for _, p := range sd.Passes {
		subset, err := requireHole(p.Subset)
		if err != nil {
			return nil, err
		}
		switch p.Direction {
		case PassLeft, PassRight, PassAcross:
		default:
			return nil, fmt.Errorf("unknown pass direction %q", p.Direction)
		}
		step.Actions = append(step.Actions, PassAction{Number: p.Number, Direction: p.Direction, Subset: subset})
	}
	for _, s := range sd.Separates {
		if len(s.Targets) < 2 {
			return nil, fmt.Errorf("separate needs at least two target subsets")
		}
		sa := SeparateAction{}
		for _, tgt := range s.Targets {
			holeSubsets[tgt.Name] = true
			sa.Targets = append(sa.Targets, SeparateTarget{Name: tgt.Name, Size: tgt.Size, MinFaceUp: tgt.MinFaceUp})
		}
		step.Actions = append(step.Actions, sa)
	}
	for _, d := range sd.Declares {
		if len(d.Options) == 0 {
			return nil, fmt.Errorf("declare has no options")
		}
		for _, o := range d.Options {
			switch o {
			case DeclareHigh, DeclareLow, DeclareBoth:
			default:
				return nil, fmt.Errorf("unknown declaration option %q", o)
			}
		}
		step.Actions = append(step.Actions, DeclareAction{Options: d.Options, Sequential: d.Sequential})
	}
	// Bets come after any dealing in the same step so grouped deal-then-bet
	// streets (stud third street with its bring-in) execute in table order
	for _, b := range sd.Bets {
		switch b.Type {
		case BetSmall, BetBig, ForcedBlinds, ForcedAntesOnly, ForcedBringIn:
		default:
			return nil, fmt.Errorf("unknown bet type %q", b.Type)
		}
		step.Actions = append(step.Actions, BetAction{Type: b.Type})
	}
	for range sd.Showdowns {
		step.Actions = append(step.Actions, ShowdownAction{})
	}

	if len(step.Actions) == 0 {
		return nil, fmt.Errorf("step has no actions")
	}
	if when != nil && when.Choice != "" && !choiceNames[when.Choice] {
		return nil, fmt.Errorf("condition references choice %q before it exists", when.Choice)
	}
	return step, nil
}

func validDealState(s string) bool {
	return s == FaceUp || s == FaceDown
}

func compileShowdown(sd *showdownDoc, holeSubsets, communitySubsets map[string]bool) (*Showdown, error) {
	mode := sd.DeclarationMode
	if mode == "" {
		mode = CardsSpeak
	}
	if mode != CardsSpeak && mode != DeclareMode {
		return nil, fmt.Errorf("unknown declaration mode %q", mode)
	}
	if len(sd.BestHands) == 0 {
		return nil, fmt.Errorf("no best_hand configurations")
	}

	out := &Showdown{DeclarationMode: mode, Classification: sd.Classification}
	names := map[string]bool{}
	for _, bh := range sd.BestHands {
		t := evaluator.Type(bh.Evaluation)
		if !t.Known() {
			return nil, fmt.Errorf("best_hand %q: unknown evaluation %q", bh.Name, bh.Evaluation)
		}
		q, ok := evaluator.NamedQualifier(bh.Qualifier, t)
		if !ok {
			return nil, fmt.Errorf("best_hand %q: qualifier %q invalid for %s", bh.Name, bh.Qualifier, t)
		}
		when, err := compileCondition(bh.When)
		if err != nil {
			return nil, fmt.Errorf("best_hand %q: %v", bh.Name, err)
		}
		c := BestHand{
			Name:       bh.Name,
			Evaluation: t,
			HandSize:   bh.HandSize,
			HoleMin:    -1,
			HoleMax:    -1,
			Community:  bh.Community,
			Qualifier:  q,
			UnusedFrom: bh.UnusedFrom,
			When:       when,
		}
		if bh.HoleMin != nil {
			c.HoleMin = *bh.HoleMin
		}
		if bh.HoleMax != nil {
			c.HoleMax = *bh.HoleMax
		}
		if bh.UnusedFrom != "" && !names[bh.UnusedFrom] {
			return nil, fmt.Errorf("best_hand %q: unused_from %q not defined earlier", bh.Name, bh.UnusedFrom)
		}
		for _, su := range bh.Subsets {
			if !holeSubsets[su.Name] {
				return nil, fmt.Errorf("best_hand %q: unknown hole subset %q", bh.Name, su.Name)
			}
			c.Subsets = append(c.Subsets, evaluator.SubsetSpec{Name: su.Name, Min: su.Min, Max: su.Max})
		}
		if bh.Community != "" && !communitySubsets[bh.Community] {
			return nil, fmt.Errorf("best_hand %q: unknown community subset %q", bh.Name, bh.Community)
		}
		names[bh.Name] = true
		out.BestHands = append(out.BestHands, c)
	}

	if sd.Default != nil {
		da := &DefaultAction{Action: sd.Default.Action}
		switch sd.Default.Action {
		case DefaultSplitPot:
		case DefaultFallback:
			t := evaluator.Type(sd.Default.Evaluation)
			if !t.Known() {
				return nil, fmt.Errorf("default_action fallback needs a known evaluation")
			}
			da.Evaluation = t
		default:
			return nil, fmt.Errorf("unknown default_action %q", sd.Default.Action)
		}
		out.Default = da
	}
	return out, nil
}
