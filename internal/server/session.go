package server

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokervariants/internal/game"
	"github.com/lox/pokervariants/internal/rules"
)

// subscriber receives server-to-client messages. Connections implement it;
// tests substitute a recorder.
type subscriber interface {
	Send(*Message)
}

// TableSession owns one table: the game, its subscribers, and the action
// deadline. All game access goes through the session mutex.
type TableSession struct {
	name   string
	cfg    TableConfig
	rules  *rules.Rules
	logger *log.Logger
	clock  quartz.Clock

	mu    sync.Mutex
	game  *game.Game
	subs  map[string]subscriber
	timer *quartz.Timer
	// deadlineGen invalidates timers for actions that already resolved
	deadlineGen int
}

// NewTableSession builds a session from configuration. The variant comes
// from the builtin library unless rules_file overrides it.
func NewTableSession(cfg TableConfig, logger *log.Logger, clock quartz.Clock) (*TableSession, error) {
	var (
		r   *rules.Rules
		err error
	)
	if cfg.RulesFile != "" {
		r, err = rules.LoadFile(cfg.RulesFile)
	} else {
		r, err = rules.Builtin(cfg.Variant)
	}
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", cfg.Name, err)
	}

	g, err := game.NewGame(game.Config{
		Rules:     r,
		Structure: rules.Structure(cfg.Structure),
		Stakes: game.Stakes{
			SmallBlind: cfg.SmallBlind,
			BigBlind:   cfg.BigBlind,
			Ante:       cfg.Ante,
			BringIn:    cfg.BringIn,
			SmallBet:   cfg.SmallBet,
			BigBet:     cfg.BigBet,
		},
		BuyInMin:     cfg.BuyInMin,
		BuyInMax:     cfg.BuyInMax,
		Seed:         cfg.Seed,
		AutoProgress: true,
		Logger:       logger.WithPrefix(cfg.Name),
	})
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", cfg.Name, err)
	}

	return &TableSession{
		name:   cfg.Name,
		cfg:    cfg,
		rules:  r,
		logger: logger.WithPrefix(cfg.Name),
		clock:  clock,
		game:   g,
		subs:   map[string]subscriber{},
	}, nil
}

// Name returns the table name
func (s *TableSession) Name() string { return s.name }

// Join seats a player and subscribes them to table traffic
func (s *TableSession) Join(playerID, name string, buyIn int, sub subscriber) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if buyIn < s.cfg.BuyInMin || (s.cfg.BuyInMax > 0 && buyIn > s.cfg.BuyInMax) {
		return -1, fmt.Errorf("buy-in %d outside %d..%d", buyIn, s.cfg.BuyInMin, s.cfg.BuyInMax)
	}
	if name == "" {
		name = playerID
	}
	if err := s.game.AddPlayer(playerID, name, buyIn); err != nil {
		return -1, err
	}
	s.subs[playerID] = sub
	p, _ := s.game.Table().Get(playerID)
	s.logger.Info("player joined", "player", playerID, "seat", p.Seat, "buy_in", buyIn)

	s.maybeStartHand()
	return p.Seat, nil
}

// Leave removes the player. Mid-hand the seat folds first.
func (s *TableSession) Leave(playerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.game.CurrentActor() == playerID {
		if err := s.game.PlayerAction(playerID, game.ActionFold, game.Payload{}); err == nil {
			s.afterAdvanceLocked()
		}
	}
	delete(s.subs, playerID)
	return s.game.RemovePlayer(playerID)
}

// HandleAction applies a player decision
func (s *TableSession) HandleAction(playerID string, data ActionData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.game.PlayerAction(playerID, data.Action, game.Payload{
		Amount:  data.Amount,
		Cards:   data.Cards,
		Value:   data.Value,
		Subsets: data.Subsets,
	})
	if err != nil {
		return err
	}
	s.afterAdvanceLocked()
	return nil
}

// StateFor returns the redacted snapshot for one player
func (s *TableSession) StateFor(playerID string) game.GameStateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.ViewFor(playerID)
}

// StartHand begins a hand explicitly (auto_start tables do this on join)
func (s *TableSession) StartHand() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.game.StartHand(); err != nil {
		return err
	}
	s.afterAdvanceLocked()
	return nil
}

func (s *TableSession) maybeStartHand() {
	if !s.cfg.AutoStart {
		return
	}
	if s.game.State() != game.StateWaiting && s.game.State() != game.StateComplete {
		return
	}
	if err := s.game.StartHand(); err != nil {
		return
	}
	s.afterAdvanceLocked()
}

// afterAdvanceLocked publishes everything the last advance produced: events,
// snapshots, the next action request with its deadline, and hand results.
func (s *TableSession) afterAdvanceLocked() {
	events := s.game.DrainEvents()
	for id, sub := range s.subs {
		if len(events) > 0 {
			if msg, err := NewMessage(MsgEvents, EventsData{
				Table:  s.name,
				Events: game.ProjectFor(id, events),
			}); err == nil {
				sub.Send(msg)
			}
		}
		if msg, err := NewMessage(MsgState, StateData{
			Table: s.name,
			State: s.game.ViewFor(id),
		}); err == nil {
			sub.Send(msg)
		}
	}

	s.stopTimerLocked()
	if actor := s.game.CurrentActor(); actor != "" {
		s.requestActionLocked(actor)
		return
	}

	if s.game.State() == game.StateComplete {
		if res, err := s.game.HandResults(); err == nil {
			s.broadcastLocked(MsgHandResult, HandResultData{Table: s.name, Result: res})
		}
		s.maybeStartHand()
	}
}

func (s *TableSession) requestActionLocked(actor string) {
	sub, ok := s.subs[actor]
	deadline := s.clock.Now().Add(s.cfg.Timeout())
	if ok {
		if msg, err := NewMessage(MsgActionRequest, ActionRequestData{
			Table:    s.name,
			Options:  s.game.ValidActions(actor),
			Deadline: deadline,
		}); err == nil {
			sub.Send(msg)
		}
	}

	s.deadlineGen++
	gen := s.deadlineGen
	s.timer = s.clock.AfterFunc(s.cfg.Timeout(), func() {
		s.timeoutActor(gen, actor)
	})
}

// timeoutActor applies the default action when the deadline passes
func (s *TableSession) timeoutActor(gen int, actor string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.deadlineGen || s.game.CurrentActor() != actor {
		return
	}
	action, payload := defaultAction(s.game.ValidActions(actor))
	s.logger.Info("action timeout", "player", actor, "default", action)
	if err := s.game.PlayerAction(actor, action, payload); err != nil {
		s.logger.Error("timeout default rejected", "player", actor, "err", err)
		return
	}
	s.afterAdvanceLocked()
}

// defaultAction picks the least destructive legal action: check when free,
// otherwise fold; prompts without a fold take their first legal value.
func defaultAction(options []game.ActionOption) (game.ActionType, game.Payload) {
	var fallback *game.ActionOption
	for i, opt := range options {
		switch opt.Type {
		case game.ActionCheck:
			return game.ActionCheck, game.Payload{}
		case game.ActionChoose, game.ActionDeclare:
			return opt.Type, game.Payload{Value: opt.Values[0]}
		case game.ActionDiscard:
			if opt.MinCards == 0 {
				return game.ActionDiscard, game.Payload{}
			}
		case game.ActionFold:
			fallback = &options[i]
		}
	}
	if fallback != nil {
		return game.ActionFold, game.Payload{}
	}
	return game.ActionCheck, game.Payload{}
}

func (s *TableSession) broadcastLocked(t MessageType, data any) {
	msg, err := NewMessage(t, data)
	if err != nil {
		return
	}
	for _, sub := range s.subs {
		sub.Send(msg)
	}
}

func (s *TableSession) stopTimerLocked() {
	s.deadlineGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Close stops the deadline timer
func (s *TableSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}
