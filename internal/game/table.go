package game

import (
	"fmt"

	"github.com/lox/pokervariants/internal/evaluator"
)

// Table owns the seats and the button, and computes turn order. Seats are
// numbered clockwise; the button always points at an occupied seat.
type Table struct {
	seats  []*Player
	button int
}

// NewTable creates a table with the given number of seats
func NewTable(maxSeats int) *Table {
	return &Table{seats: make([]*Player, maxSeats), button: -1}
}

// AddPlayer seats a player at the lowest open seat
func (t *Table) AddPlayer(p *Player) error {
	for _, s := range t.seats {
		if s != nil && s.ID == p.ID {
			return ErrDuplicatePlayer
		}
	}
	for i, s := range t.seats {
		if s == nil {
			p.Seat = i
			t.seats[i] = p
			if t.button < 0 {
				t.button = i
			}
			return nil
		}
	}
	return ErrTableFull
}

// RemovePlayer frees the player's seat
func (t *Table) RemovePlayer(id string) (*Player, error) {
	for i, s := range t.seats {
		if s != nil && s.ID == id {
			t.seats[i] = nil
			if t.button == i {
				t.button = t.nextOccupied(i)
			}
			return s, nil
		}
	}
	return nil, ErrUnknownPlayer
}

// Get finds a seated player by id
func (t *Table) Get(id string) (*Player, bool) {
	for _, s := range t.seats {
		if s != nil && s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// Seated returns all seated players in seat order
func (t *Table) Seated() []*Player {
	out := make([]*Player, 0, len(t.seats))
	for _, s := range t.seats {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

// InHand returns players still contesting the pot, in seat order
func (t *Table) InHand() []*Player {
	out := make([]*Player, 0, len(t.seats))
	for _, s := range t.seats {
		if s != nil && s.InHand() {
			out = append(out, s)
		}
	}
	return out
}

// Actionable returns players who can still act voluntarily
func (t *Table) Actionable() []*Player {
	out := make([]*Player, 0, len(t.seats))
	for _, s := range t.seats {
		if s != nil && s.CanAct() {
			out = append(out, s)
		}
	}
	return out
}

// Button returns the dealer button seat
func (t *Table) Button() int {
	return t.button
}

// HeadsUp reports whether exactly two players are in the hand
func (t *Table) HeadsUp() bool {
	return len(t.InHand()) == 2
}

// nextOccupied returns the first occupied seat clockwise after from, or -1
func (t *Table) nextOccupied(from int) int {
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if t.seats[seat] != nil {
			return seat
		}
	}
	return -1
}

// nextInHand returns the first in-hand seat clockwise after from, or -1
func (t *Table) nextInHand(from int) int {
	n := len(t.seats)
	for i := 1; i <= n; i++ {
		seat := (from + i) % n
		if t.seats[seat] != nil && t.seats[seat].InHand() {
			return seat
		}
	}
	return -1
}

// AdvanceButton moves the button clockwise to the next occupied seat
func (t *Table) AdvanceButton() {
	if next := t.nextOccupied(t.button); next >= 0 {
		t.button = next
	}
}

// ClearHands resets per-hand state on every seated player
func (t *Table) ClearHands() {
	for _, s := range t.seats {
		if s != nil {
			s.ResetForHand()
		}
	}
}

// OrderFrom lists in-hand seats clockwise starting at (and including) start
func (t *Table) OrderFrom(start int) []int {
	n := len(t.seats)
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		seat := (start + i) % n
		if t.seats[seat] != nil && t.seats[seat].InHand() {
			out = append(out, seat)
		}
	}
	return out
}

// SmallBlindSeat applies the heads-up inversion: two-handed, the dealer
// posts the small blind
func (t *Table) SmallBlindSeat() int {
	if t.HeadsUp() {
		if t.seats[t.button] != nil && t.seats[t.button].InHand() {
			return t.button
		}
	}
	return t.nextInHand(t.button)
}

// BigBlindSeat is the seat clockwise of the small blind
func (t *Table) BigBlindSeat() int {
	return t.nextInHand(t.SmallBlindSeat())
}

// Seat returns the player at a seat, nil if empty
func (t *Table) Seat(i int) *Player {
	if i < 0 || i >= len(t.seats) {
		return nil
	}
	return t.seats[i]
}

// BringInSeat finds the forced bring-in: the player whose exposed cards rank
// worst under the bring-in evaluation. Stud's lowest up-card and razz's
// highest both fall out of their respective evaluations. Card-rank ties
// break by suit, clubs lowest through spades.
func (t *Table) BringInSeat(eval evaluator.Type) (int, error) {
	worst := -1
	var worstVal evaluator.HandValue
	var worstSuit int

	for _, seat := range t.OrderFrom(t.nextInHand(t.button)) {
		p := t.seats[seat]
		up := p.UpCards()
		if len(up) == 0 {
			continue
		}
		v, err := evaluator.Evaluate(up, eval, evaluator.Options{})
		if err != nil {
			return -1, fmt.Errorf("%w: bring-in eval: %v", ErrEngine, err)
		}
		suit := int(up[len(up)-1].Suit)
		if worst < 0 || v.Compare(worstVal) < 0 ||
			(v.Compare(worstVal) == 0 && suit < worstSuit) {
			worst, worstVal, worstSuit = seat, v, suit
		}
	}
	if worst < 0 {
		return -1, fmt.Errorf("%w: no exposed cards for bring-in", ErrEngine)
	}
	return worst, nil
}

// HighHandSeat finds the seat whose exposed cards rank best under the given
// evaluation. Ties break clockwise from the button, matching the first seat
// reached in deal order.
func (t *Table) HighHandSeat(eval evaluator.Type) (int, error) {
	best := -1
	var bestVal evaluator.HandValue
	for _, seat := range t.OrderFrom(t.nextInHand(t.button)) {
		p := t.seats[seat]
		up := p.UpCards()
		if len(up) == 0 {
			continue
		}
		v, err := evaluator.Evaluate(up, eval, evaluator.Options{})
		if err != nil {
			return -1, fmt.Errorf("%w: high-hand eval: %v", ErrEngine, err)
		}
		if best < 0 || v.Compare(bestVal) > 0 {
			best, bestVal = seat, v
		}
	}
	if best < 0 {
		return -1, fmt.Errorf("%w: no exposed cards for high-hand order", ErrEngine)
	}
	return best, nil
}
