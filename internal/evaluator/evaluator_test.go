package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokervariants/internal/deck"
)

func mustEval(t *testing.T, cards string, typ Type) HandValue {
	t.Helper()
	v, err := Evaluate(deck.MustParseCards(cards), typ, Options{})
	require.NoError(t, err)
	return v
}

func TestHighCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cards string
		rank  int
		desc  string
	}{
		{"straight flush", "9h8h7h6h5h", CatStraightFlush, "Straight Flush, Nine High"},
		{"four of a kind", "QsQhQdQc2s", CatFourOfAKind, "Four of a Kind, Queens"},
		{"full house", "KsKhKd4c4s", CatFullHouse, "Full House, Kings over Fours"},
		{"flush", "AhJh8h5h2h", CatFlush, "Flush, Ace High"},
		{"straight", "Ts9c8d7h6s", CatStraight, "Straight, Ten High"},
		{"wheel straight", "Ah2c3d4h5s", CatStraight, "Straight, Five High"},
		{"trips", "7s7h7d9c2s", CatThreeOfAKind, "Three of a Kind, Sevens"},
		{"two pair", "AsAh6d6cKs", CatTwoPair, "Two Pair, Aces and Sixes"},
		{"pair", "9s9h5d3cKs", CatPair, "Pair of Nines"},
		{"high card", "AsJh8d5c2s", CatHighCard, "Ace High"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := mustEval(t, tt.cards, High)
			assert.Equal(t, tt.rank, v.Rank)
			assert.Equal(t, tt.desc, v.Description)
		})
	}
}

func TestHighTiebreaks(t *testing.T) {
	t.Parallel()

	// Same category, kicker decides
	a := mustEval(t, "9s9h5d3cAs", High)
	b := mustEval(t, "9c9d5h3sKs", High)
	assert.Equal(t, 1, a.Compare(b))

	// Wheel is the lowest straight
	wheel := mustEval(t, "Ah2c3d4h5s", High)
	six := mustEval(t, "2c3d4h5s6d", High)
	assert.Equal(t, -1, wheel.Compare(six))

	// Identical ranks across suits tie
	x := mustEval(t, "AsKs8d5c2s", High)
	y := mustEval(t, "AhKh8c5d2h", High)
	assert.Equal(t, 0, x.Compare(y))
}

func TestShortDeckOrdering(t *testing.T) {
	t.Parallel()

	flush := mustEval(t, "AhJh9h8h6h", ShortHigh)
	full := mustEval(t, "KsKhKd9c9s", ShortHigh)
	assert.Equal(t, 1, flush.Compare(full), "flush beats full house in short deck")
	assert.Equal(t, "Flush, Ace High", flush.Description)
	assert.Equal(t, "Full House, Kings over Nines", full.Description)

	// A-6-7-8-9 plays as the short-deck wheel
	wheel := mustEval(t, "Ah6c7d8h9s", ShortHigh)
	assert.Equal(t, CatStraight, wheel.Rank)
	assert.Equal(t, "Straight, Nine High", wheel.Description)
	ten := mustEval(t, "6c7d8h9sTd", ShortHigh)
	assert.Equal(t, -1, wheel.Compare(ten))
}

func TestAceToFiveLow(t *testing.T) {
	t.Parallel()

	// Straights and flushes do not count; the wheel is the nuts
	wheel := mustEval(t, "Ah2h3h4h5h", A5Low)
	six := mustEval(t, "Ah2c3d4h6s", A5Low)
	assert.Equal(t, 1, wheel.Compare(six))
	assert.Equal(t, "5-4-3-2-A Low", wheel.Description)

	// Any unpaired hand beats any paired hand
	nine := mustEval(t, "9s8h5d3c2s", A5Low)
	pairAces := mustEval(t, "AsAh2d3c4s", A5Low)
	assert.Equal(t, 1, nine.Compare(pairAces))

	// Lower top card wins between unpaired hands
	eight := mustEval(t, "8s7h5d3c2s", A5Low)
	assert.Equal(t, 1, eight.Compare(nine))
}

func TestAceToFiveLowHighOrdering(t *testing.T) {
	t.Parallel()

	// Pairs still win under the high-category ordering, but aces play low,
	// so a pair of aces is the weakest pair
	pairKings := mustEval(t, "KsKh2d3c4s", A5LowHigh)
	pairAces := mustEval(t, "AsAh2d3c4s", A5LowHigh)
	assert.Equal(t, 1, pairKings.Compare(pairAces))

	// A lone king outranks a lone ace (up-card ordering for the bring-in)
	king := mustEval(t, "Ks", A5LowHigh)
	ace := mustEval(t, "As", A5LowHigh)
	assert.Equal(t, 1, king.Compare(ace))
}

func TestDeuceToSevenLow(t *testing.T) {
	t.Parallel()

	// Seven-five is the nuts
	nuts := mustEval(t, "7s5h4d3c2s", TwoSeven)
	eight := mustEval(t, "8s5h4d3c2s", TwoSeven)
	assert.Equal(t, 1, nuts.Compare(eight))

	// The A-5 wheel is no straight here, but the ace plays high
	wheel := mustEval(t, "Ah2c3d4h5s", TwoSeven)
	assert.NotEqual(t, lowRankBand(CatStraight), wheel.Rank)
	assert.Equal(t, lowRankBand(CatHighCard), wheel.Rank)
	assert.Equal(t, -1, wheel.Compare(eight), "ace-high beats nothing in 2-7")

	// The ordering is fully inverted: a straight ranks below every unpaired
	// hand and below paired hands too
	straight := mustEval(t, "2c3d4h5s6d", TwoSeven)
	pair := mustEval(t, "2c2d4h5s6d", TwoSeven)
	assert.Equal(t, -1, straight.Compare(eight))
	assert.Equal(t, -1, straight.Compare(pair))

	// Flushes count against the hand
	flush := mustEval(t, "8h5h4h3h2h", TwoSeven)
	assert.Equal(t, -1, flush.Compare(eight))
}

func TestBadugi(t *testing.T) {
	t.Parallel()

	// Four distinct ranks and suits make a badugi
	v := mustEval(t, "As2h3d4c", Badugi)
	assert.Equal(t, 4, v.Rank)
	assert.Equal(t, "Badugi, 4-3-2-A", v.Description)

	// Any four-card badugi beats any three-card hand
	roughBadugi := mustEval(t, "KsQhJdTc", Badugi)
	threeCard := mustEval(t, "As2h3d4d", Badugi)
	assert.Equal(t, 3, threeCard.Rank)
	assert.Equal(t, 1, roughBadugi.Compare(threeCard))

	// Between badugis, lower cards win
	smooth := mustEval(t, "As2h3d4c", Badugi)
	assert.Equal(t, 1, smooth.Compare(roughBadugi))

	// Hidugi reverses the ordering: high distinct cards win
	hiSmooth := mustEval(t, "KsQhJdTc", Hidugi)
	hiRough := mustEval(t, "As2h3d4c", Hidugi)
	assert.Equal(t, 1, hiSmooth.Compare(hiRough))
}

func TestPipGames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		typ    Type
		better string
		worse  string
	}{
		{"49 closer wins", Pip49, "KsQhJd9c", "KsQhJd2c"},
		{"zero lower wins", PipZero, "As2h3d", "KsQhJd"},
		{"6 closest wins", PipSix, "As2h3d", "As2h4d"},
		{"6 ties break low", PipSix, "As4h", "3s4h"},
		{"low pip 6 ignores big cards", LowPipSix, "KsQh2d", "As2h3d"},
		{"21 face cards count ten", Pip21, "KsQh", "KsAh"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := mustEval(t, tt.better, tt.typ)
			b := mustEval(t, tt.worse, tt.typ)
			assert.Equal(t, 1, a.Compare(b))
		})
	}

	// Busting past the target zeroes the hand
	bust := mustEval(t, "KsQhJdTc9s", Pip49)
	assert.Equal(t, 0, bust.Rank)
	bust21 := mustEval(t, "KsQh5d", Pip21)
	assert.Equal(t, 0, bust21.Rank)
}

func TestQualifier(t *testing.T) {
	t.Parallel()

	// Eight-or-better: the qualifier is the worst qualifying low
	q := &Qualifier{Rank: lowRankBand(CatHighCard), OrderedRank: invertPackGroups(groupVals([]int{8, 7, 6, 5, 4}))}

	good, err := Evaluate(deck.MustParseCards("8s6h4d3c2s"), A5Low, Options{Qualifier: q})
	require.NoError(t, err)
	assert.NotEqual(t, 0, good.Rank)

	bad, err := Evaluate(deck.MustParseCards("9s6h4d3c2s"), A5Low, Options{Qualifier: q})
	require.NoError(t, err)
	assert.Equal(t, 0, bad.Rank, "nine-low misses an eight qualifier")
}

func TestWildCards(t *testing.T) {
	t.Parallel()

	t.Run("rank wilds reach five of a kind", func(t *testing.T) {
		cards := deck.MustParseCards("AsAhAd2c2s")
		wilds := ResolveWilds([]WildRule{{Kind: WildRank, Rank: deck.Two, Role: RoleWild}}, cards, nil, nil)
		require.Len(t, wilds, 2)

		v, err := Evaluate(cards, HighWild, Options{WildCards: wilds})
		require.NoError(t, err)
		assert.Equal(t, CatFiveOfAKind, v.Rank)
		assert.Equal(t, "Five of a Kind, Aces", v.Description)
	})

	t.Run("joker cannot duplicate", func(t *testing.T) {
		cards := append(deck.MustParseCards("AsAhAdAc"), deck.NewJoker(0))
		wilds := ResolveWilds([]WildRule{{Kind: WildJoker}}, cards, nil, nil)
		require.Len(t, wilds, 1)

		v, err := Evaluate(cards, HighWild, Options{WildCards: wilds})
		require.NoError(t, err)
		assert.Equal(t, CatFourOfAKind, v.Rank, "no fifth ace exists for the joker")
	})

	t.Run("bug completes straights or plays as ace", func(t *testing.T) {
		cards := append(deck.MustParseCards("9h8h7h6h"), deck.NewJoker(0))
		wilds := map[deck.Card]WildRole{deck.NewJoker(0): RoleBug}

		v, err := Evaluate(cards, HighWild, Options{WildCards: wilds})
		require.NoError(t, err)
		assert.Equal(t, CatStraightFlush, v.Rank)

		cards = append(deck.MustParseCards("KhQs7h2c"), deck.NewJoker(0))
		v, err = Evaluate(cards, HighWild, Options{WildCards: wilds})
		require.NoError(t, err)
		assert.Equal(t, CatHighCard, v.Rank)
		assert.Equal(t, "Ace High", v.Description, "bug plays as an ace")
	})

	t.Run("lowest hole card wild", func(t *testing.T) {
		hole := deck.MustParseCards("KsKh2d2cQs")
		wilds := ResolveWilds([]WildRule{{Kind: WildLowestHole, Role: RoleWild, Scope: ScopePlayer}}, hole, nil, nil)
		require.Len(t, wilds, 2)

		v, err := Evaluate(hole, HighWild, Options{WildCards: wilds})
		require.NoError(t, err)
		assert.Equal(t, CatFourOfAKind, v.Rank)
	})
}

func TestFindBest(t *testing.T) {
	t.Parallel()

	t.Run("exactly two hole cards", func(t *testing.T) {
		hole := map[string][]deck.Card{"default": deck.MustParseCards("AsAhKsKh")}
		community := deck.MustParseCards("AdKd2c3c4c")

		v, err := FindBest(hole, community, High, ExactHole(2), Options{})
		require.NoError(t, err)
		// Only one board ace and one board king: exactly-two-hole caps the
		// hand at trips, where pooling every card would find quads
		assert.Equal(t, CatThreeOfAKind, v.Rank)
		assert.Equal(t, "Three of a Kind, Aces", v.Description)
	})

	t.Run("any five pools everything", func(t *testing.T) {
		hole := map[string][]deck.Card{"default": deck.MustParseCards("AsAh")}
		community := deck.MustParseCards("AdAcKc3c4c")

		v, err := FindBest(hole, community, High, AnyFive, Options{})
		require.NoError(t, err)
		assert.Equal(t, CatFourOfAKind, v.Rank)
	})

	t.Run("subset bounds", func(t *testing.T) {
		hole := map[string][]deck.Card{
			"high": deck.MustParseCards("AsAhKd"),
			"low":  deck.MustParseCards("2c2d"),
		}
		comb := Combinator{Subsets: []SubsetSpec{
			{Name: "high", Min: 2, Max: 2},
			{Name: "low", Min: 0, Max: 1},
		}}
		v, err := FindBest(hole, deck.MustParseCards("Qc8d7h"), High, comb, Options{})
		require.NoError(t, err)
		assert.Equal(t, CatPair, v.Rank)
		assert.Equal(t, "Pair of Aces", v.Description)
	})

	t.Run("excluded cards never play", func(t *testing.T) {
		hole := map[string][]deck.Card{"default": deck.MustParseCards("AsAhKsKh9d")}
		comb := AnyFive
		comb.ExcludeUsed = deck.MustParseCards("AsAh")

		v, err := FindBest(hole, nil, High, comb, Options{})
		require.NoError(t, err)
		assert.Equal(t, CatPair, v.Rank)
		assert.Equal(t, "Pair of Kings", v.Description)
		assert.Len(t, v.CardsUsed, 3)
	})
}

func TestPartialHands(t *testing.T) {
	t.Parallel()

	pair := mustEval(t, "9s9h", High)
	high := mustEval(t, "AsKh", High)
	assert.Equal(t, CatPair, pair.Rank)
	assert.Equal(t, 1, pair.Compare(high))
}

func TestSort(t *testing.T) {
	t.Parallel()

	cards := deck.MustParseCards("2sAh9dKc")
	Sort(cards, High)
	assert.Equal(t, deck.Ace, cards[0].Rank)
	assert.Equal(t, deck.Two, cards[3].Rank)

	Sort(cards, A5Low)
	assert.Equal(t, deck.Ace, cards[0].Rank, "aces lead a low-sorted hand")
	assert.Equal(t, deck.King, cards[3].Rank)
}
