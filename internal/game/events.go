package game

import (
	"github.com/lox/pokervariants/internal/deck"
)

// EventType tags entries in the hand event log
type EventType string

const (
	EventHandStarted EventType = "hand_started"
	EventForcedBet   EventType = "forced_bet"
	EventDeal        EventType = "deal"
	EventAction      EventType = "action"
	EventPhaseChange EventType = "phase_change"
	EventShowdown    EventType = "showdown"
	EventPotAwarded  EventType = "pot_awarded"
)

// EventCard is a card reference in an event. Face-down cards belong to their
// owner only; projection blanks them for everyone else.
type EventCard struct {
	Card   deck.Card
	FaceUp bool
	Owner  string // player id; empty for community cards
	Hidden bool   // set on projection when the viewer may not see the card
}

// Event is one totally ordered entry in the hand log
type Event struct {
	Seq      int
	Type     EventType
	Step     int
	StepName string
	Actor    string // player id, when applicable
	Action   string // action kind for EventAction
	Amount   int
	Subset   string
	Value    string // declaration, choice value, step/phase name
	Cards    []EventCard
}

// EventLog is the append-only per-hand log. Events are monotonic; the caller
// drains between ticks and projects per player.
type EventLog struct {
	seq    int
	events []Event
}

// Append stamps and stores an event
func (l *EventLog) Append(e Event) Event {
	e.Seq = l.seq
	l.seq++
	l.events = append(l.events, e)
	return e
}

// Drain returns all undrained events and clears the buffer. Sequence numbers
// keep increasing across drains.
func (l *EventLog) Drain() []Event {
	out := l.events
	l.events = nil
	return out
}

// Pending returns undrained events without clearing them
func (l *EventLog) Pending() []Event {
	return append([]Event(nil), l.events...)
}

// ProjectFor redacts an event stream for one viewer: face-down cards the
// viewer does not own are blanked, card identity removed.
func ProjectFor(viewer string, events []Event) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		if len(e.Cards) > 0 {
			cards := make([]EventCard, len(e.Cards))
			copy(cards, e.Cards)
			for j := range cards {
				if !cards[j].FaceUp && cards[j].Owner != viewer {
					cards[j].Card = deck.Card{}
					cards[j].Hidden = true
				}
			}
			e.Cards = cards
		}
		out[i] = e
	}
	return out
}
