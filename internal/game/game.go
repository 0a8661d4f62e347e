// Package game implements the variant-driven poker engine: a state machine
// that interprets a compiled rule document one step at a time, validating
// every player action server-side and conserving chips across arbitrary
// all-in scenarios.
package game

import (
	"fmt"
	"io"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/pokervariants/internal/deck"
	"github.com/lox/pokervariants/internal/evaluator"
	"github.com/lox/pokervariants/internal/randutil"
	"github.com/lox/pokervariants/internal/rules"
)

// State is the engine's lifecycle phase
type State int

const (
	StateWaiting State = iota
	StateDealing
	StateBetting
	StateDrawing
	StateShowdown
	StateComplete
)

func (s State) String() string {
	return [...]string{"waiting", "dealing", "betting", "drawing", "showdown", "complete"}[s]
}

// Config configures a Game
type Config struct {
	Rules     *rules.Rules
	Structure rules.Structure
	Stakes    Stakes
	// BuyInMin/BuyInMax bound AddPlayer buy-ins; zero leaves a bound open
	BuyInMin int
	BuyInMax int
	// Seed fixes the shuffle RNG for reproducible hands; zero selects a
	// crypto-seeded source.
	Seed int64
	// AutoProgress advances through non-interactive steps after every
	// accepted action. When false the caller drives Advance explicitly.
	AutoProgress bool
	Logger       *log.Logger
}

// Game drives hands of a single variant at a single table
type Game struct {
	rules     *rules.Rules
	structure rules.Structure
	stakes    Stakes
	buyInMin  int
	buyInMax  int
	logger    *log.Logger

	table   *Table
	pot     *PotManager
	betting *BettingManager
	deck    *deck.Deck
	events  *EventLog
	rng     *rand.Rand

	state        State
	handNumber   int
	handChips    int // chips on the table at the deal, checked at every settlement
	stepIndex    int
	actionIndex  int
	advanceStep  bool
	autoProgress bool

	// interactive sub-state
	actorSeat  int   // seat to act, -1 when none
	queue      []int // seats pending in a per-actor card step
	collected  map[int]pendingAction
	betRunning bool

	community     map[string][]deck.Card
	communityDown map[string][]bool
	lastCommunity *deck.Card
	choices       map[string]string
	dice          map[string]int
	stepDiscards  map[int]int
	declareSealed bool
	revealAll     bool
	firstBetDone  bool
	lastAggressor int

	results *HandResult

	// rig replaces the shuffled deck at hand start; scripted tests use it
	// for known deals
	rig []deck.Card
}

// pendingAction buffers a simultaneous step's input until all actors are in
type pendingAction struct {
	cards []int
}

// NewGame creates a game for the given variant. Evaluation tables are
// prepared here so hands never build them mid-deal.
func NewGame(cfg Config) (*Game, error) {
	if cfg.Rules == nil {
		return nil, fmt.Errorf("game: rules required")
	}
	if !cfg.Rules.SupportsStructure(cfg.Structure) {
		return nil, fmt.Errorf("game: variant %q does not allow %s", cfg.Rules.Key, cfg.Structure)
	}
	if cfg.Stakes.BigBlind <= 0 && cfg.Stakes.Ante <= 0 && cfg.Stakes.BringIn <= 0 {
		return nil, fmt.Errorf("game: stakes required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	var rng *rand.Rand
	if cfg.Seed != 0 {
		rng = randutil.New(cfg.Seed)
	} else {
		rng = randutil.Secure()
	}
	evaluator.Init()

	st := cfg.Stakes
	if st.SmallBet == 0 {
		st.SmallBet = st.BigBlind
	}
	if st.BigBet == 0 {
		st.BigBet = st.SmallBet * 2
	}
	if st.BringIn == 0 {
		st.BringIn = st.SmallBet / 2
	}

	g := &Game{
		rules:         cfg.Rules,
		structure:     cfg.Structure,
		stakes:        st,
		buyInMin:      cfg.BuyInMin,
		buyInMax:      cfg.BuyInMax,
		logger:        logger,
		table:         NewTable(cfg.Rules.Players.Max),
		pot:           NewPotManager(),
		events:        &EventLog{},
		rng:           rng,
		state:         StateWaiting,
		stepIndex:     -1,
		actorSeat:     -1,
		lastAggressor: -1,
		autoProgress:  cfg.AutoProgress,
	}
	g.betting = NewBettingManager(cfg.Structure, st, g.pot)
	return g, nil
}

// AddPlayer seats a player with a buy-in. Valid only between hands.
func (g *Game) AddPlayer(id, name string, buyIn int) error {
	if g.state != StateWaiting && g.state != StateComplete {
		return ErrHandInProgress
	}
	if buyIn <= 0 {
		return fmt.Errorf("game: buy-in must be positive")
	}
	if g.buyInMin > 0 && buyIn < g.buyInMin {
		return fmt.Errorf("game: buy-in %d below minimum %d", buyIn, g.buyInMin)
	}
	if g.buyInMax > 0 && buyIn > g.buyInMax {
		return fmt.Errorf("game: buy-in %d above maximum %d", buyIn, g.buyInMax)
	}
	p := &Player{ID: id, Name: name, Chips: buyIn, Status: StatusSittingOut}
	return g.table.AddPlayer(p)
}

// RemovePlayer frees a seat between hands, or mid-hand for a player who is
// sitting out
func (g *Game) RemovePlayer(id string) error {
	if g.state != StateWaiting && g.state != StateComplete {
		p, ok := g.table.Get(id)
		if !ok {
			return ErrUnknownPlayer
		}
		if p.Status != StatusSittingOut {
			return ErrHandInProgress
		}
	}
	p, err := g.table.RemovePlayer(id)
	if err != nil {
		return err
	}
	// the departing stack leaves the conservation baseline with it
	g.handChips -= p.Chips
	return nil
}

// State returns the engine phase
func (g *Game) State() State { return g.state }

// HandNumber returns the current hand's sequence number
func (g *Game) HandNumber() int { return g.handNumber }

// PotTotal returns all chips in the pot, including uncollected round bets
func (g *Game) PotTotal() int { return g.pot.TotalWithLive() }

// CurrentActor returns the id of the player to act, empty when none
func (g *Game) CurrentActor() string {
	if p := g.currentPlayer(); p != nil {
		return p.ID
	}
	return ""
}

func (g *Game) currentPlayer() *Player {
	if g.actorSeat < 0 {
		return nil
	}
	return g.table.Seat(g.actorSeat)
}

// Table exposes seat inspection
func (g *Game) Table() *Table { return g.table }

// DrainEvents returns and clears the undelivered event log
func (g *Game) DrainEvents() []Event { return g.events.Drain() }

// StartHand begins a new hand: resets table, pot and deck, advances the
// button (after the first hand), and processes steps until input is needed.
func (g *Game) StartHand() error {
	if g.state != StateWaiting && g.state != StateComplete {
		return ErrHandInProgress
	}

	eligible := 0
	for _, p := range g.table.Seated() {
		if p.Chips > 0 && p.Status != StatusDisconnected {
			p.Status = StatusActive
			eligible++
		}
	}
	if eligible < g.rules.Players.Min {
		return fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPlayers, eligible, g.rules.Players.Min)
	}

	g.table.ClearHands()
	if g.handNumber > 0 {
		g.table.AdvanceButton()
	}
	g.handNumber++
	g.pot.Reset()

	d, err := deck.New(g.rules.Deck, g.rng)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEngine, err)
	}
	d.Shuffle()
	if len(g.rig) > 0 {
		d.Stack(g.rig)
	}
	g.deck = d

	g.state = StateDealing
	g.stepIndex = -1
	g.actionIndex = 0
	g.actorSeat = -1
	g.queue = nil
	g.collected = nil
	g.betRunning = false
	g.advanceStep = false
	g.community = map[string][]deck.Card{}
	g.communityDown = map[string][]bool{}
	g.lastCommunity = nil
	g.choices = map[string]string{}
	g.dice = map[string]int{}
	g.stepDiscards = map[int]int{}
	g.declareSealed = false
	g.revealAll = false
	g.firstBetDone = false
	g.lastAggressor = -1
	g.results = nil
	g.handChips = g.tableChips()

	g.events.Append(Event{
		Type:   EventHandStarted,
		Amount: g.handNumber,
		Value:  g.rules.Key,
	})
	g.logger.Info("hand started", "hand", g.handNumber, "variant", g.rules.Key, "players", eligible)

	return g.run()
}

// HandResults returns the authoritative results, valid once COMPLETE
func (g *Game) HandResults() (*HandResult, error) {
	if g.state != StateComplete || g.results == nil {
		return nil, ErrHandNotComplete
	}
	return g.results, nil
}

// Advance processes non-interactive steps until a player action is required
// or the hand completes. Safe to call when nothing is pending.
func (g *Game) Advance() error {
	return g.run()
}

// run is the interpreter loop: it dispatches actions until one needs input
func (g *Game) run() error {
	for g.state != StateComplete {
		// waiting on a player
		if g.actorSeat >= 0 {
			return nil
		}
		step, ok := g.currentStep()
		if !ok || g.actionIndex >= len(step.Actions) {
			if err := g.nextStep(); err != nil {
				return err
			}
			continue
		}
		action := step.Actions[g.actionIndex]
		if err := g.dispatch(step, action); err != nil {
			return err
		}
		if g.actorSeat < 0 {
			g.actionIndex++
		}
	}
	return nil
}

func (g *Game) currentStep() (*rules.Step, bool) {
	if g.stepIndex < 0 || g.stepIndex >= len(g.rules.Steps) {
		return nil, false
	}
	return &g.rules.Steps[g.stepIndex], true
}

// nextStep moves to the next step whose condition holds
func (g *Game) nextStep() error {
	for {
		g.stepIndex++
		g.actionIndex = 0
		g.stepDiscards = map[int]int{}
		if g.stepIndex >= len(g.rules.Steps) {
			return fmt.Errorf("%w: ran out of steps without a showdown", ErrEngine)
		}
		step := &g.rules.Steps[g.stepIndex]
		if !g.evalCondition(step.When, nil) {
			continue
		}
		g.events.Append(Event{
			Type:     EventPhaseChange,
			Step:     g.stepIndex,
			StepName: step.Name,
			Value:    step.Name,
		})
		return nil
	}
}

// completeAction finishes the current interactive action and resumes the
// interpreter when auto-progress is on
func (g *Game) completeAction() {
	g.actorSeat = -1
	g.queue = nil
	g.collected = nil
	g.betRunning = false
	g.actionIndex++
	g.advanceStep = true
}

// tableChips sums every seated stack plus the pot, live round bets included
func (g *Game) tableChips() int {
	total := g.pot.TotalWithLive()
	for _, p := range g.table.Seated() {
		total += p.Chips
	}
	return total
}

// assertConservation fails the hand when chips appeared or vanished since the
// deal. Round closes and pot awards all pass through here.
func (g *Game) assertConservation(where string) error {
	if got := g.tableChips(); got != g.handChips {
		return fmt.Errorf("%w: chip conservation broken at %s: %d on the table, dealt %d",
			ErrEngine, where, got, g.handChips)
	}
	return nil
}

// foldShortCircuit ends the hand immediately when one player remains
func (g *Game) foldShortCircuit() (bool, error) {
	inHand := g.table.InHand()
	if len(inHand) != 1 {
		return false, nil
	}
	g.pot.Collect(g.table.Seated())
	winner := inHand[0]
	amount := g.pot.Total()
	if err := g.pot.Award(winner, amount); err != nil {
		return false, err
	}
	g.events.Append(Event{
		Type:   EventPotAwarded,
		Step:   g.stepIndex,
		Actor:  winner.ID,
		Amount: amount,
	})
	g.logger.Info("pot awarded uncontested", "player", winner.ID, "amount", amount)

	g.results = &HandResult{
		HandNumber: g.handNumber,
		Variant:    g.rules.Key,
		Pots: []PotResult{{
			Amount: amount,
			Shares: []WinnerShare{{
				PlayerID: winner.ID, Seat: winner.Seat, Amount: amount,
				Description: "uncontested",
			}},
		}},
		Stacks: g.stackSnapshot(),
	}
	if err := g.assertConservation("uncontested award"); err != nil {
		return false, err
	}
	g.finishHand()
	return true, nil
}

func (g *Game) finishHand() {
	g.state = StateComplete
	g.actorSeat = -1
	g.queue = nil
	g.betRunning = false
	g.events.Append(Event{Type: EventPhaseChange, Step: g.stepIndex, Value: "complete"})
}

func (g *Game) stackSnapshot() map[string]int {
	out := map[string]int{}
	for _, p := range g.table.Seated() {
		out[p.ID] = p.Chips
	}
	return out
}
