package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/lox/pokervariants/internal/randutil"
)

// ErrDeckExhausted is returned when a deal requests more cards than remain.
var ErrDeckExhausted = errors.New("deck exhausted")

// Type identifies a deck composition
type Type string

const (
	// Standard is the usual 52-card deck
	Standard Type = "standard"
	// Short is the 36-card deck (sixes up)
	Short Type = "short"
	// Twenty is the 20-card deck (tens up)
	Twenty Type = "twenty"
)

// Descriptor describes a deck: composition type, expected card count and
// number of jokers. Cards of 0 means "whatever the type implies".
type Descriptor struct {
	Type   Type
	Cards  int
	Jokers int
}

// lowestRank returns the lowest rank present in a deck of the given type
func (t Type) lowestRank() (Rank, error) {
	switch t {
	case Standard, "":
		return Two, nil
	case Short:
		return Six, nil
	case Twenty:
		return Ten, nil
	default:
		return 0, fmt.Errorf("unknown deck type %q", t)
	}
}

// build produces the ordered, unshuffled cards for a descriptor
func (d Descriptor) build() ([]Card, error) {
	low, err := d.Type.lowestRank()
	if err != nil {
		return nil, err
	}
	cards := make([]Card, 0, int(Ace-low+1)*4+d.Jokers)
	for suit := Clubs; suit <= Spades; suit++ {
		for rank := low; rank <= Ace; rank++ {
			cards = append(cards, NewCard(suit, rank))
		}
	}
	for i := 0; i < d.Jokers; i++ {
		cards = append(cards, NewJoker(i))
	}
	if d.Cards != 0 && d.Cards != len(cards) {
		return nil, fmt.Errorf("invalid deck: descriptor declares %d cards, composition has %d", d.Cards, len(cards))
	}
	return cards, nil
}

// Deck is an ordered sequence of cards dealt strictly from the top.
type Deck struct {
	desc  Descriptor
	cards []Card
	rng   *rand.Rand
}

// New creates a deck from a descriptor. A nil rng selects a CSPRNG-seeded
// source; tests pass randutil.New(seed) for reproducible shuffles.
func New(desc Descriptor, rng *rand.Rand) (*Deck, error) {
	cards, err := desc.build()
	if err != nil {
		return nil, err
	}
	if rng == nil {
		rng = randutil.Secure()
	}
	return &Deck{desc: desc, cards: cards, rng: rng}, nil
}

// Shuffle randomizes the order of cards in the deck
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Deal removes and returns the top n cards
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrDeckExhausted, n, len(d.cards))
	}
	dealt := make([]Card, n)
	copy(dealt, d.cards[:n])
	d.cards = d.cards[n:]
	return dealt, nil
}

// DealOne removes and returns the top card
func (d *Deck) DealOne() (Card, error) {
	cards, err := d.Deal(1)
	if err != nil {
		return Card{}, err
	}
	return cards[0], nil
}

// Burn discards the top card
func (d *Deck) Burn() error {
	_, err := d.Deal(1)
	return err
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Size returns the full size of the deck as built
func (d *Deck) Size() int {
	low, _ := d.desc.Type.lowestRank()
	return int(Ace-low+1)*4 + d.desc.Jokers
}

// Reset rebuilds the full deck and shuffles it
func (d *Deck) Reset() {
	cards, _ := d.desc.build()
	d.cards = cards
	d.Shuffle()
}

// Stack replaces the deck contents with the given cards in order. Used by
// scripted tests that need known deals.
func (d *Deck) Stack(cards []Card) {
	d.cards = append(d.cards[:0], cards...)
}
