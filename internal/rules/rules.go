// Package rules loads declarative poker variant documents and compiles them
// into the immutable step graphs the game engine interprets. Documents are
// HCL; the builtin library ships embedded.
package rules

import (
	"errors"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokervariants/internal/deck"
	"github.com/lox/pokervariants/internal/evaluator"
)

// SchemaVersion is the document schema this build understands
const SchemaVersion = 1

// ErrInvalidRules wraps every validation failure
var ErrInvalidRules = errors.New("invalid rules")

// Structure is a betting structure a variant permits
type Structure string

const (
	Limit    Structure = "limit"
	NoLimit  Structure = "no_limit"
	PotLimit Structure = "pot_limit"
)

// Forced bet styles
const (
	ForcedBlinds    = "blinds"
	ForcedBringIn   = "bring_in"
	ForcedAntesOnly = "antes_only"
)

// Initial betting order policies
const (
	OrderAfterBigBlind = "after_big_blind"
	OrderBringIn       = "bring_in"
	OrderDealer        = "dealer"
)

// Subsequent betting order policies (OrderDealer is shared)
const (
	OrderHighHand  = "high_hand"
	OrderLastActor = "last_actor"
)

// DefaultSubset is the hole-card subset used when a step names none
const DefaultSubset = "default"

// Condition gates a step, deal state, forced-bet record or showdown
// configuration on current game state
type Condition struct {
	Choice        string
	Equals        string
	Subset        string
	Count         *int
	LastCardColor string // "red" or "black"
	HandSize      *int
	Exposed       *bool
}

// ForcedBets describes one forced-bet record, optionally gated by a choice
type ForcedBets struct {
	Style       string
	Rule        string
	BringInEval evaluator.Type
	When        *Condition
}

// OrderOverride swaps order policies when its condition holds
type OrderOverride struct {
	Initial    string
	Subsequent string
	When       *Condition
}

// BettingOrder is the variant's turn-order policy
type BettingOrder struct {
	Initial    string
	Subsequent string
	Overrides  []OrderOverride
}

// ActionKind tags the closed union of step actions
type ActionKind string

const (
	KindBet      ActionKind = "bet"
	KindDeal     ActionKind = "deal"
	KindDiscard  ActionKind = "discard"
	KindDraw     ActionKind = "draw"
	KindRemove   ActionKind = "remove"
	KindExpose   ActionKind = "expose"
	KindPass     ActionKind = "pass"
	KindSeparate ActionKind = "separate"
	KindDeclare  ActionKind = "declare"
	KindChoose   ActionKind = "choose"
	KindRollDie  ActionKind = "roll_die"
	KindShowdown ActionKind = "showdown"
)

// Action is one member of the step-action union. The interpreter is an
// exhaustive type switch over the concrete types.
type Action interface {
	Kind() ActionKind
}

// Bet types within a bet action
const (
	BetSmall = "small"
	BetBig   = "big"
)

type BetAction struct {
	// Type is "small" or "big" for a betting round (selecting the Limit
	// rung), or a forced style: "blinds", "antes_only", "bring_in".
	Type string
}

// DealState values
const (
	FaceDown = "face_down"
	FaceUp   = "face_up"
)

// Deal locations
const (
	LocationPlayer    = "player"
	LocationCommunity = "community"
)

type DealStateCond struct {
	When *Condition
	Then string
	Else string
}

type DealAction struct {
	Location  string
	Number    int
	Subset    string
	State     string
	StateWhen *DealStateCond
}

type DiscardAction struct {
	Number       int
	Min          int
	Subset       string
	EntireSubset bool
	ToCommunity  string // community subset to move into; empty discards to muck
	OncePerStep  bool
	Rule         string // e.g. "matching_ranks"
}

type DrawAction struct {
	Number     int
	Subset     string
	RelativeTo string // "discard" derives the count from this step's discard
	Offset     int
}

type RemoveAction struct {
	Location string
	Subset   string
	Number   int
}

type ExposeAction struct {
	Number    int
	Subset    string
	Immediate bool
}

// Pass directions
const (
	PassLeft   = "left"
	PassRight  = "right"
	PassAcross = "across"
)

type PassAction struct {
	Number    int
	Direction string
	Subset    string
}

type SeparateTarget struct {
	Name      string
	Size      int
	MinFaceUp int
}

type SeparateAction struct {
	Targets []SeparateTarget
}

// Declaration values
const (
	DeclareHigh = "high"
	DeclareLow  = "low"
	DeclareBoth = "high_low"
)

type DeclareAction struct {
	Options    []string
	Sequential bool
}

// Choose positions
const (
	PositionUTG    = "utg"
	PositionButton = "button"
	PositionDealer = "dealer"
	PositionSB     = "sb"
	PositionBB     = "bb"
)

type ChooseAction struct {
	Name     string
	Position string
	Values   []string
}

type RollDieAction struct {
	Sides  int
	Subset string
}

type ShowdownAction struct{}

func (BetAction) Kind() ActionKind      { return KindBet }
func (DealAction) Kind() ActionKind     { return KindDeal }
func (DiscardAction) Kind() ActionKind  { return KindDiscard }
func (DrawAction) Kind() ActionKind     { return KindDraw }
func (RemoveAction) Kind() ActionKind   { return KindRemove }
func (ExposeAction) Kind() ActionKind   { return KindExpose }
func (PassAction) Kind() ActionKind     { return KindPass }
func (SeparateAction) Kind() ActionKind { return KindSeparate }
func (DeclareAction) Kind() ActionKind  { return KindDeclare }
func (ChooseAction) Kind() ActionKind   { return KindChoose }
func (RollDieAction) Kind() ActionKind  { return KindRollDie }
func (ShowdownAction) Kind() ActionKind { return KindShowdown }

// Step is one node of the step graph. Multiple actions means a grouped pass:
// each actor performs all of them before the turn moves on.
type Step struct {
	Name    string
	When    *Condition
	Actions []Action
}

// Interactive reports whether the step waits on player input
func (s Step) Interactive() bool {
	for _, a := range s.Actions {
		switch a.(type) {
		case BetAction, DiscardAction, DrawAction, ExposeAction, PassAction,
			SeparateAction, DeclareAction, ChooseAction:
			return true
		}
	}
	return false
}

// BestHand is one showdown hand configuration
type BestHand struct {
	Name       string
	Evaluation evaluator.Type
	HandSize   int
	HoleMin    int // -1 means unconstrained
	HoleMax    int
	Community  string
	Qualifier  *evaluator.Qualifier
	UnusedFrom string
	Subsets    []evaluator.SubsetSpec
	When       *Condition
}

// Combinator translates the configuration into an evaluator combinator.
// Cards already consumed by a prior configuration are supplied by the caller.
func (b BestHand) Combinator(exclude []deck.Card) evaluator.Combinator {
	comb := evaluator.Combinator{
		HandSize:    b.HandSize,
		HoleMin:     b.HoleMin,
		HoleMax:     b.HoleMax,
		ExcludeUsed: exclude,
	}
	comb.Subsets = append(comb.Subsets, b.Subsets...)
	return comb
}

// Declaration modes
const (
	CardsSpeak  = "cards_speak"
	DeclareMode = "declare"
)

// Default actions when no hand qualifies for a configuration
const (
	DefaultSplitPot = "split_pot"
	DefaultFallback = "fallback"
)

type DefaultAction struct {
	Action     string
	Evaluation evaluator.Type // for fallback
}

type Showdown struct {
	DeclarationMode string
	Classification  string
	BestHands       []BestHand
	Default         *DefaultAction
}

// MinMax bounds the player count
type MinMax struct {
	Min int
	Max int
}

// Rules is a compiled, immutable variant definition
type Rules struct {
	Key           string
	Name          string
	SchemaVersion int
	Players       MinMax
	Deck          deck.Descriptor
	ForcedBets    []ForcedBets
	Structures    []Structure
	Order         BettingOrder
	Wilds         []evaluator.WildRule
	Steps         []Step
	Showdown      Showdown
}

// SupportsStructure reports whether the variant permits the structure
func (r *Rules) SupportsStructure(s Structure) bool {
	for _, x := range r.Structures {
		if x == s {
			return true
		}
	}
	return false
}

// ForcedStyle resolves the forced-bet record for the given choice state.
// Unconditional records win when no conditional record matches.
func (r *Rules) ForcedStyle(choices map[string]string) ForcedBets {
	var fallback ForcedBets
	for _, fb := range r.ForcedBets {
		if fb.When == nil {
			fallback = fb
			continue
		}
		if choices[fb.When.Choice] == fb.When.Equals {
			return fb
		}
	}
	return fallback
}

// Parse compiles a single-variant HCL document. Multi-variant documents go
// through ParseAll.
func Parse(src []byte, filename string) (*Rules, error) {
	all, err := ParseAll(src, filename)
	if err != nil {
		return nil, err
	}
	if len(all) != 1 {
		return nil, fmt.Errorf("%w: %s defines %d variants, want 1", ErrInvalidRules, filename, len(all))
	}
	return all[0], nil
}

// ParseAll compiles every variant in an HCL document
func ParseAll(src []byte, filename string) ([]*Rules, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRules, diags.Error())
	}

	var doc documentDoc
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRules, diags.Error())
	}
	if len(doc.Variants) == 0 {
		return nil, fmt.Errorf("%w: %s defines no variants", ErrInvalidRules, filename)
	}

	out := make([]*Rules, 0, len(doc.Variants))
	for i := range doc.Variants {
		r, err := compile(&doc.Variants[i])
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
