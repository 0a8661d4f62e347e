package deck

import "fmt"

// Suit represents a card suit. Jokers carry NoSuit; their Rank distinguishes
// them from ordinary cards and the Ordinal distinguishes joker from joker.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
	NoSuit
)

// String returns the string representation of a suit
func (s Suit) String() string {
	switch s {
	case Spades:
		return "♠"
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	default:
		return ""
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank
type Rank int

const (
	Two Rank = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
	Joker
)

// String returns the string representation of a rank
func (r Rank) String() string {
	switch r {
	case Ten:
		return "T"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	case Joker:
		return "W"
	default:
		if r >= Two && r <= Nine {
			return fmt.Sprintf("%d", int(r))
		}
		return "?"
	}
}

// Card represents a playing card. Jokers are distinguishable tokens: two
// jokers in the same deck differ by Ordinal.
type Card struct {
	Suit    Suit
	Rank    Rank
	Ordinal int
}

// NewCard creates a new card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank}
}

// NewJoker creates the nth joker of a deck
func NewJoker(n int) Card {
	return Card{Suit: NoSuit, Rank: Joker, Ordinal: n}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	if c.Rank == Joker {
		return "Jk"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// IsJoker returns true if the card is a joker
func (c Card) IsJoker() bool {
	return c.Rank == Joker
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// Value returns the numeric value of the card for comparison.
// Aces are high (14), but can be used as low (1) in specific contexts.
func (c Card) Value() int {
	return int(c.Rank)
}
