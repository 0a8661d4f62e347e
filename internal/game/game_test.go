package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokervariants/internal/deck"
	"github.com/lox/pokervariants/internal/rules"
)

func mustBuiltin(t *testing.T, key string) *rules.Rules {
	t.Helper()
	r, err := rules.Builtin(key)
	require.NoError(t, err)
	return r
}

func newTestGame(t *testing.T, r *rules.Rules, structure rules.Structure, st Stakes, buyIns ...int) *Game {
	t.Helper()
	g, err := NewGame(Config{
		Rules:        r,
		Structure:    structure,
		Stakes:       st,
		Seed:         42,
		AutoProgress: true,
	})
	require.NoError(t, err)
	for i, chips := range buyIns {
		require.NoError(t, g.AddPlayer(playerID(i), playerID(i), chips))
	}
	return g
}

func playerID(i int) string {
	return fmt.Sprintf("p%d", i+1)
}

func act(t *testing.T, g *Game, id string, a ActionType, payload Payload) {
	t.Helper()
	require.NoError(t, g.PlayerAction(id, a, payload), "%s %s", id, a)
}

func totalChips(g *Game) int {
	total := g.pot.TotalWithLive()
	for _, p := range g.table.Seated() {
		total += p.Chips
	}
	return total
}

func TestHeadsUpFoldShortCircuit(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "texas_holdem"), rules.NoLimit, NewStakes(1, 2), 200, 200)

	// heads-up the dealer posts small; deal starts left of the button
	g.rig = deck.MustParseCards("2c7dAsKs")
	require.NoError(t, g.StartHand())

	require.Equal(t, StateBetting, g.State())
	require.Equal(t, "p1", g.CurrentActor(), "dealer acts first heads-up preflop")

	act(t, g, "p1", ActionFold, Payload{})

	require.Equal(t, StateComplete, g.State())
	res, err := g.HandResults()
	require.NoError(t, err)
	require.Len(t, res.Pots, 1)
	assert.Equal(t, 3, res.Pots[0].Amount)
	require.Len(t, res.Pots[0].Shares, 1)
	assert.Equal(t, "p2", res.Pots[0].Shares[0].PlayerID)

	assert.Equal(t, 201, res.Stacks["p2"])
	assert.Equal(t, 199, res.Stacks["p1"])
	assert.Empty(t, g.community, "no community cards after a preflop fold")
	assert.Equal(t, 400, totalChips(g))
}

func TestHoldemPreflopCallRound(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "texas_holdem"), rules.NoLimit, NewStakes(1, 2), 200, 200, 200)
	require.NoError(t, g.StartHand())

	// button p1, SB p2, BB p3; UTG is the button three-handed
	require.Equal(t, "p1", g.CurrentActor())
	act(t, g, "p1", ActionCall, Payload{})
	require.Equal(t, "p2", g.CurrentActor())
	act(t, g, "p2", ActionCall, Payload{})
	require.Equal(t, "p3", g.CurrentActor(), "big blind keeps the option")
	act(t, g, "p3", ActionCheck, Payload{})

	require.Equal(t, StateBetting, g.State())
	assert.Equal(t, 6, g.PotTotal())
	assert.Len(t, g.community[rules.DefaultSubset], 3, "flop dealt")
	assert.Equal(t, "p2", g.CurrentActor(), "first active clockwise of the dealer opens post-flop")
	assert.Equal(t, 600, totalChips(g))
}

func TestStudBringInAndHighHandOrder(t *testing.T) {
	st := Stakes{Ante: 1, BringIn: 3, SmallBet: 6, BigBet: 12}
	g := newTestGame(t, mustBuiltin(t, "seven_card_stud"), rules.Limit, st, 100, 100, 100, 100, 100)

	// third street: two down and one up per player, dealt from the button's
	// left (p2 first); fourth street pairs p4's king
	g.rig = deck.MustParseCards(
		"4h5h" + "4d5d" + "4s5s" + "6h7h" + "6d7d" + // down cards p2..p1
			"9hJdKsQc2c" + // up cards p2..p1
			"8c8dKh8h8s") // fourth street p2..p1
	require.NoError(t, g.StartHand())

	require.Equal(t, StateBetting, g.State())
	p1, _ := g.table.Get("p1")
	assert.Equal(t, 3, p1.Bet, "lowest up-card posts the bring-in")
	assert.Equal(t, "p2", g.CurrentActor(), "action continues left of the bring-in")

	for _, id := range []string{"p2", "p3", "p4", "p5"} {
		act(t, g, id, ActionCall, Payload{})
	}
	require.Equal(t, "p1", g.CurrentActor(), "bring-in keeps the option")
	act(t, g, "p1", ActionCheck, Payload{})

	// fourth street dealt; best exposed hand opens
	require.Equal(t, StateBetting, g.State())
	assert.Equal(t, "p4", g.CurrentActor(), "pair of kings showing acts first")
	assert.Equal(t, 20, g.PotTotal(), "five antes plus five bring-in calls")
	assert.Equal(t, 500, totalChips(g))
}

func TestOmahaHiLoSplitWithQualifier(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "omaha_8"), rules.Limit, NewStakes(1, 2), 200, 200)

	// p2 makes the nut low (and a wheel for high); p1 makes quad kings.
	// p1 has no low so the low half goes to p2 alone.
	g.rig = deck.MustParseCards(
		"4c5c9h9s" + "KsKhQhJh" + // hole cards p2 then p1
			"Ah2s3d" + "Kc" + "Kd") // board
	require.NoError(t, g.StartHand())

	act(t, g, "p1", ActionCall, Payload{})
	act(t, g, "p2", ActionCheck, Payload{})
	for i := 0; i < 3; i++ { // flop, turn, river
		act(t, g, "p2", ActionCheck, Payload{})
		act(t, g, "p1", ActionCheck, Payload{})
	}

	require.Equal(t, StateComplete, g.State())
	res, err := g.HandResults()
	require.NoError(t, err)
	require.Len(t, res.Pots, 1)
	require.Len(t, res.Pots[0].Shares, 2)

	byConfig := map[string]WinnerShare{}
	for _, s := range res.Pots[0].Shares {
		byConfig[s.HandName] = s
	}
	assert.Equal(t, "p1", byConfig["high"].PlayerID)
	assert.Equal(t, 2, byConfig["high"].Amount)
	assert.Equal(t, "p2", byConfig["low"].PlayerID)
	assert.Equal(t, 2, byConfig["low"].Amount)
	assert.Equal(t, 400, totalChips(g))
}

func TestOmahaHiLoScoopWhenNoLow(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "omaha_8"), rules.Limit, NewStakes(1, 2), 200, 200)

	// board has only two low cards: no hand can qualify for low, the high
	// winner scoops
	g.rig = deck.MustParseCards(
		"4c5c9h9s" + "KsKhQhJh" +
			"Ah9c3d" + "Kc" + "Kd")
	require.NoError(t, g.StartHand())

	act(t, g, "p1", ActionCall, Payload{})
	act(t, g, "p2", ActionCheck, Payload{})
	for i := 0; i < 3; i++ {
		act(t, g, "p2", ActionCheck, Payload{})
		act(t, g, "p1", ActionCheck, Payload{})
	}

	res, err := g.HandResults()
	require.NoError(t, err)
	require.Len(t, res.Pots[0].Shares, 1)
	assert.Equal(t, "p1", res.Pots[0].Shares[0].PlayerID)
	assert.Equal(t, 4, res.Pots[0].Shares[0].Amount)
}

func TestMultiWayAllInSidePots(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "texas_holdem"), rules.NoLimit, NewStakes(1, 2), 100, 60, 40)

	// deal order p2, p3, p1; p3 flops nothing but holds aces
	g.rig = deck.MustParseCards(
		"KhKd" + "AhAd" + "QhQd" +
			"2c7d8h" + "Ts" + "3s")
	require.NoError(t, g.StartHand())

	require.Equal(t, "p1", g.CurrentActor())
	act(t, g, "p1", ActionRaise, Payload{Amount: 100})
	act(t, g, "p2", ActionCall, Payload{}) // all-in for 60
	act(t, g, "p3", ActionCall, Payload{}) // all-in for 40

	require.Equal(t, StateComplete, g.State())
	res, err := g.HandResults()
	require.NoError(t, err)
	require.Len(t, res.Pots, 3)
	assert.Equal(t, 120, res.Pots[0].Amount, "main pot covers the short stack")
	assert.Equal(t, 40, res.Pots[1].Amount)
	assert.Equal(t, 40, res.Pots[2].Amount, "uncalled overage returns to the raiser")

	assert.Equal(t, "p3", res.Pots[0].Shares[0].PlayerID, "aces take the main pot")
	assert.Equal(t, "p2", res.Pots[1].Shares[0].PlayerID)
	assert.Equal(t, "p1", res.Pots[2].Shares[0].PlayerID)

	assert.Equal(t, 120, res.Stacks["p3"])
	assert.Equal(t, 40, res.Stacks["p2"])
	assert.Equal(t, 40, res.Stacks["p1"])
	assert.Equal(t, 200, totalChips(g))
}

const relativeDrawDoc = `
variant "draw_minus_one" {
  schema_version     = 1
  name               = "Draw Minus One"
  betting_structures = ["no_limit"]

  players {
    min = 2
    max = 6
  }

  deck {
    type  = "standard"
    cards = 52
  }

  forced_bets {
    style = "blinds"
  }

  betting_order {
    initial    = "after_big_blind"
    subsequent = "dealer"
  }

  step "deal" {
    deal {
      location = "player"
      number   = 5
      state    = "face_down"
    }
  }

  step "first betting" {
    bet {
      type = "blinds"
    }
  }

  step "draw" {
    discard {
      number = 5
      min    = 0
    }

    draw {
      number      = 0
      relative_to = "discard"
      offset      = -1
    }
  }

  step "second betting" {
    bet {
      type = "big"
    }
  }

  step "showdown" {
    showdown {}
  }

  showdown_rule {
    best_hand "high" {
      evaluation = "high"
    }
  }
}
`

func TestDrawRelativeToDiscardOffset(t *testing.T) {
	r, err := rules.Parse([]byte(relativeDrawDoc), "draw_minus_one.hcl")
	require.NoError(t, err)

	g := newTestGame(t, r, rules.NoLimit, NewStakes(1, 2), 200, 200)
	require.NoError(t, g.StartHand())

	act(t, g, "p1", ActionCall, Payload{})
	act(t, g, "p2", ActionCheck, Payload{})

	// draw step runs from the button's left: p2 first
	require.Equal(t, StateDrawing, g.State())
	require.Equal(t, "p2", g.CurrentActor())
	act(t, g, "p2", ActionDiscard, Payload{Cards: []int{0, 1, 2, 3}})
	act(t, g, "p1", ActionDiscard, Payload{Cards: nil})

	p2, _ := g.table.Get("p2")
	p1, _ := g.table.Get("p1")
	assert.Equal(t, 4, p2.HandSize(), "discard four, draw three")
	assert.Equal(t, 5, p1.HandSize(), "standing pat keeps five")

	act(t, g, "p2", ActionCheck, Payload{})
	act(t, g, "p1", ActionCheck, Payload{})
	require.Equal(t, StateComplete, g.State())
	assert.Equal(t, 400, totalChips(g))
}

func TestStatusResetBetweenHands(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "texas_holdem"), rules.NoLimit, NewStakes(1, 2), 200, 200, 200)
	require.NoError(t, g.StartHand())

	act(t, g, g.CurrentActor(), ActionFold, Payload{})
	act(t, g, g.CurrentActor(), ActionFold, Payload{})
	require.Equal(t, StateComplete, g.State())

	require.NoError(t, g.StartHand())
	for _, p := range g.table.Seated() {
		assert.NotEqual(t, StatusFolded, p.Status, "folds never survive into the next hand")
	}
	assert.Equal(t, 2, g.HandNumber())
}

func TestButtonAdvancesEachHand(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "texas_holdem"), rules.NoLimit, NewStakes(1, 2), 200, 200, 200)

	require.NoError(t, g.StartHand())
	first := g.table.Button()
	act(t, g, g.CurrentActor(), ActionFold, Payload{})
	act(t, g, g.CurrentActor(), ActionFold, Payload{})

	require.NoError(t, g.StartHand())
	assert.Equal(t, (first+1)%len(g.table.seats), g.table.Button())
}

func TestViewRedaction(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "texas_holdem"), rules.NoLimit, NewStakes(1, 2), 200, 200, 200)
	require.NoError(t, g.StartHand())

	view := g.ViewFor("p1")
	for _, pv := range view.Players {
		for _, cards := range pv.Cards {
			for _, cv := range cards {
				if pv.ID == "p1" {
					assert.False(t, cv.Hidden, "own cards are visible")
					assert.NotZero(t, cv.Card.Rank)
				} else {
					assert.True(t, cv.Hidden, "opponent hole cards are hidden")
					assert.Zero(t, cv.Card.Rank)
				}
			}
		}
	}
}

func TestEventProjectionHidesHoleCards(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "texas_holdem"), rules.NoLimit, NewStakes(1, 2), 200, 200)
	require.NoError(t, g.StartHand())

	events := g.DrainEvents()
	projected := ProjectFor("p2", events)
	for _, e := range projected {
		for _, c := range e.Cards {
			if c.Owner != "" && c.Owner != "p2" && !c.FaceUp {
				assert.True(t, c.Hidden)
				assert.Zero(t, c.Card.Rank)
			}
		}
	}
	// sequence numbers keep increasing across drains
	require.NotEmpty(t, events)
	act(t, g, g.CurrentActor(), ActionFold, Payload{})
	more := g.DrainEvents()
	require.NotEmpty(t, more)
	assert.Greater(t, more[0].Seq, events[len(events)-1].Seq)
}

func TestDeterministicReplay(t *testing.T) {
	play := func() *HandResult {
		g := newTestGame(t, mustBuiltin(t, "texas_holdem"), rules.NoLimit, NewStakes(1, 2), 200, 200, 200)
		require.NoError(t, g.StartHand())
		act(t, g, "p1", ActionCall, Payload{})
		act(t, g, "p2", ActionCall, Payload{})
		act(t, g, "p3", ActionCheck, Payload{})
		for g.State() == StateBetting {
			act(t, g, g.CurrentActor(), ActionCheck, Payload{})
		}
		res, err := g.HandResults()
		require.NoError(t, err)
		return res
	}

	a, b := play(), play()
	require.Equal(t, a.Pots, b.Pots)
	require.Equal(t, a.Stacks, b.Stacks)
}

func TestNotPlayersTurn(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "texas_holdem"), rules.NoLimit, NewStakes(1, 2), 200, 200, 200)
	require.NoError(t, g.StartHand())

	err := g.PlayerAction("p3", ActionCall, Payload{})
	ue, ok := AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, CodeNotPlayersTurn, ue.Code)
	assert.Equal(t, "p1", g.CurrentActor(), "rejected action leaves state untouched")
}

func TestConservationViolationSurfaces(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "texas_holdem"), rules.NoLimit, NewStakes(1, 2), 200, 200)
	require.NoError(t, g.StartHand())

	// chips appearing from nowhere must abort settlement
	p2, _ := g.table.Get("p2")
	p2.Chips += 5

	err := g.PlayerAction("p1", ActionFold, Payload{})
	require.ErrorIs(t, err, ErrEngine)
	assert.Contains(t, err.Error(), "conservation")
}

const blindBoardDoc = `
variant "blind_board" {
  schema_version     = 1
  name               = "Blind Board"
  betting_structures = ["no_limit"]

  players {
    min = 2
    max = 6
  }

  deck {
    type = "standard"
  }

  forced_bets {
    style = "blinds"
  }

  betting_order {
    initial    = "after_big_blind"
    subsequent = "dealer"
  }

  step "deal" {
    deal {
      location = "player"
      number   = 2
      state    = "face_down"
    }
  }

  step "down card" {
    deal {
      location = "community"
      number   = 1
      state    = "face_down"
    }
  }

  step "betting" {
    bet {
      type = "blinds"
    }
  }

  step "showdown" {
    showdown {}
  }

  showdown_rule {
    best_hand "high" {
      evaluation = "high"
    }
  }
}
`

func TestFaceDownCommunityHiddenInViews(t *testing.T) {
	r, err := rules.Parse([]byte(blindBoardDoc), "blind_board.hcl")
	require.NoError(t, err)

	g := newTestGame(t, r, rules.NoLimit, NewStakes(1, 2), 200, 200)
	require.NoError(t, g.StartHand())

	view := g.ViewFor("p1")
	require.Len(t, view.Community[rules.DefaultSubset], 1)
	cv := view.Community[rules.DefaultSubset][0]
	assert.True(t, cv.Hidden, "down card identity stays off the snapshot")
	assert.False(t, cv.FaceUp)
	assert.Zero(t, cv.Card.Rank)

	act(t, g, "p1", ActionCall, Payload{})
	act(t, g, "p2", ActionCheck, Payload{})
	require.Equal(t, StateComplete, g.State())

	view = g.ViewFor("p1")
	cv = view.Community[rules.DefaultSubset][0]
	assert.False(t, cv.Hidden, "showdown reveals the board")
	assert.NotZero(t, cv.Card.Rank)
}

const fullRedrawDoc = `
variant "full_redraw" {
  schema_version     = 1
  name               = "Full Redraw"
  betting_structures = ["no_limit"]

  players {
    min = 2
    max = 6
  }

  deck {
    type = "standard"
  }

  forced_bets {
    style = "blinds"
  }

  betting_order {
    initial    = "after_big_blind"
    subsequent = "dealer"
  }

  step "deal" {
    deal {
      location = "player"
      number   = 5
      state    = "face_down"
    }
  }

  step "first betting" {
    bet {
      type = "blinds"
    }
  }

  step "redraw" {
    discard {
      number        = 0
      entire_subset = true
    }

    draw {
      number = 5
    }
  }

  step "second betting" {
    bet {
      type = "big"
    }
  }

  step "showdown" {
    showdown {}
  }

  showdown_rule {
    best_hand "high" {
      evaluation = "high"
    }
  }
}
`

func TestEntireSubsetDiscard(t *testing.T) {
	r, err := rules.Parse([]byte(fullRedrawDoc), "full_redraw.hcl")
	require.NoError(t, err)

	g := newTestGame(t, r, rules.NoLimit, NewStakes(1, 2), 200, 200)
	require.NoError(t, g.StartHand())

	act(t, g, "p1", ActionCall, Payload{})
	act(t, g, "p2", ActionCheck, Payload{})

	require.Equal(t, StateDrawing, g.State())
	require.Equal(t, "p2", g.CurrentActor())
	opts := g.ValidActions("p2")
	var discard *ActionOption
	for i, o := range opts {
		if o.Type == ActionDiscard {
			discard = &opts[i]
		}
	}
	require.NotNil(t, discard)
	assert.Equal(t, 5, discard.Cards)
	assert.Equal(t, 5, discard.MinCards, "the whole hand goes")

	// the selection is irrelevant: the entire subset is replaced
	act(t, g, "p2", ActionDiscard, Payload{})
	act(t, g, "p1", ActionDiscard, Payload{Cards: []int{0}})

	p2, _ := g.table.Get("p2")
	p1, _ := g.table.Get("p1")
	assert.Equal(t, 5, p2.HandSize())
	assert.Equal(t, 5, p1.HandSize())

	act(t, g, "p2", ActionCheck, Payload{})
	act(t, g, "p1", ActionCheck, Payload{})
	require.Equal(t, StateComplete, g.State())
	assert.Equal(t, 400, totalChips(g))
}

const fiveCardDeclareDoc = `
variant "five_card_declare" {
  schema_version     = 1
  name               = "Five-card Hi-Lo, Declare"
  betting_structures = ["limit"]

  players {
    min = 2
    max = 6
  }

  deck {
    type = "standard"
  }

  forced_bets {
    style = "blinds"
  }

  betting_order {
    initial    = "after_big_blind"
    subsequent = "dealer"
  }

  step "deal" {
    deal {
      location = "player"
      number   = 5
      state    = "face_down"
    }
  }

  step "betting" {
    bet {
      type = "blinds"
    }
  }

  step "declare" {
    declare {
      options = ["high", "low", "high_low"]
    }
  }

  step "showdown" {
    showdown {}
  }

  showdown_rule {
    declaration_mode = "declare"

    best_hand "high" {
      evaluation = "high"
    }

    best_hand "low" {
      evaluation = "a5_low"
    }
  }
}
`

func TestDeclarationFiltersShowdown(t *testing.T) {
	r, err := rules.Parse([]byte(fiveCardDeclareDoc), "five_card_declare.hcl")
	require.NoError(t, err)

	g := newTestGame(t, r, rules.Limit, NewStakes(1, 2), 200, 200)

	// p2 holds a flush and the best low; p1 a pair of kings. Declaring low
	// only takes p2 out of the high half despite the stronger high hand.
	g.rig = deck.MustParseCards("2c3c4c5c7c" + "KsKhQdJd9c")
	require.NoError(t, g.StartHand())

	act(t, g, "p1", ActionCall, Payload{})
	act(t, g, "p2", ActionCheck, Payload{})

	require.Equal(t, "p2", g.CurrentActor())
	act(t, g, "p2", ActionDeclare, Payload{Value: rules.DeclareLow})

	// simultaneous declarations stay sealed until the last one lands
	for _, e := range g.DrainEvents() {
		if e.Action == string(rules.KindDeclare) && e.Actor == "p2" {
			assert.Empty(t, e.Value, "declaration sealed while p1 is still to act")
		}
	}

	act(t, g, "p1", ActionDeclare, Payload{Value: rules.DeclareHigh})
	require.Equal(t, StateComplete, g.State())

	revealed := map[string]string{}
	for _, e := range g.DrainEvents() {
		if e.Action == string(rules.KindDeclare) && e.Value != "" {
			revealed[e.Actor] = e.Value
		}
	}
	assert.Equal(t, rules.DeclareLow, revealed["p2"])
	assert.Equal(t, rules.DeclareHigh, revealed["p1"])

	res, err := g.HandResults()
	require.NoError(t, err)
	require.Len(t, res.Pots, 1)
	require.Len(t, res.Pots[0].Shares, 2)

	byConfig := map[string]WinnerShare{}
	for _, s := range res.Pots[0].Shares {
		byConfig[s.HandName] = s
	}
	assert.Equal(t, "p1", byConfig["high"].PlayerID, "p2's flush is out of the high half")
	assert.Equal(t, 2, byConfig["high"].Amount)
	assert.Equal(t, "p2", byConfig["low"].PlayerID)
	assert.Equal(t, 2, byConfig["low"].Amount)
	assert.Equal(t, 400, totalChips(g))
}

const passLeftDoc = `
variant "pass_one_left" {
  schema_version     = 1
  name               = "Pass One Left"
  betting_structures = ["no_limit"]

  players {
    min = 2
    max = 7
  }

  deck {
    type = "standard"
  }

  forced_bets {
    style = "blinds"
  }

  betting_order {
    initial    = "after_big_blind"
    subsequent = "dealer"
  }

  step "deal" {
    deal {
      location = "player"
      number   = 5
      state    = "face_down"
    }
  }

  step "first betting" {
    bet {
      type = "blinds"
    }
  }

  step "pass" {
    pass {
      number    = 1
      direction = "left"
    }
  }

  step "second betting" {
    bet {
      type = "big"
    }
  }

  step "showdown" {
    showdown {}
  }

  showdown_rule {
    best_hand "high" {
      evaluation = "high"
    }
  }
}
`

func TestPassLeftExchangesCards(t *testing.T) {
	r, err := rules.Parse([]byte(passLeftDoc), "pass_one_left.hcl")
	require.NoError(t, err)

	g := newTestGame(t, r, rules.NoLimit, NewStakes(1, 2), 200, 200)

	// heads-up, passing left means the two players swap their selections
	g.rig = deck.MustParseCards("As2d5h8c9d" + "Kc3d6h7c8d")
	require.NoError(t, g.StartHand())

	act(t, g, "p1", ActionCall, Payload{})
	act(t, g, "p2", ActionCheck, Payload{})

	require.Equal(t, StateDrawing, g.State())
	require.Equal(t, "p2", g.CurrentActor())
	act(t, g, "p2", ActionPass, Payload{Cards: []int{0}}) // the ace
	act(t, g, "p1", ActionPass, Payload{Cards: []int{0}}) // the king

	p1, _ := g.table.Get("p1")
	p2, _ := g.table.Get("p2")
	assert.Contains(t, p1.AllCards(), deck.MustParseCards("As")[0])
	assert.Contains(t, p2.AllCards(), deck.MustParseCards("Kc")[0])
	assert.Equal(t, 5, p1.HandSize())
	assert.Equal(t, 5, p2.HandSize())

	act(t, g, "p2", ActionCheck, Payload{})
	act(t, g, "p1", ActionCheck, Payload{})
	require.Equal(t, StateComplete, g.State())

	res, err := g.HandResults()
	require.NoError(t, err)
	require.Len(t, res.Pots[0].Shares, 1)
	assert.Equal(t, "p1", res.Pots[0].Shares[0].PlayerID, "the passed ace plays")
	assert.Equal(t, 4, res.Pots[0].Shares[0].Amount)
}

const optionalBoardDoc = `
variant "optional_board" {
  schema_version     = 1
  name               = "Optional Board"
  betting_structures = ["no_limit"]

  players {
    min = 2
    max = 6
  }

  deck {
    type = "standard"
  }

  forced_bets {
    style = "blinds"
  }

  betting_order {
    initial    = "after_big_blind"
    subsequent = "dealer"
  }

  step "pick" {
    choose "board" {
      position = "dealer"
      values   = ["yes", "no"]
    }
  }

  step "deal" {
    deal {
      location = "player"
      number   = 5
      state    = "face_down"
    }
  }

  step "board" {
    when {
      choice = "board"
      equals = "yes"
    }

    deal {
      location = "community"
      number   = 1
    }
  }

  step "betting" {
    bet {
      type = "blinds"
    }
  }

  step "showdown" {
    showdown {}
  }

  showdown_rule {
    best_hand "high" {
      evaluation = "high"
    }
  }
}
`

func TestChooseDrivesConditionalStep(t *testing.T) {
	r, err := rules.Parse([]byte(optionalBoardDoc), "optional_board.hcl")
	require.NoError(t, err)

	g := newTestGame(t, r, rules.NoLimit, NewStakes(1, 2), 200, 200)
	require.NoError(t, g.StartHand())

	require.Equal(t, "p1", g.CurrentActor(), "the dealer picks")
	opts := g.ValidActions("p1")
	require.Len(t, opts, 1)
	assert.Equal(t, ActionChoose, opts[0].Type)
	assert.Equal(t, []string{"yes", "no"}, opts[0].Values)

	err = g.PlayerAction("p1", ActionFold, Payload{})
	ue, ok := AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidAction, ue.Code)

	act(t, g, "p1", ActionChoose, Payload{Value: "yes"})
	assert.Len(t, g.community[rules.DefaultSubset], 1, "the chosen board is dealt")
	assert.Equal(t, "yes", g.ViewFor("p2").Choices["board"])

	act(t, g, "p1", ActionCall, Payload{})
	act(t, g, "p2", ActionCheck, Payload{})
	require.Equal(t, StateComplete, g.State())
	assert.Equal(t, 400, totalChips(g))

	// declining the board skips the conditional step entirely
	g2 := newTestGame(t, r, rules.NoLimit, NewStakes(1, 2), 200, 200)
	require.NoError(t, g2.StartHand())
	act(t, g2, "p1", ActionChoose, Payload{Value: "no"})
	assert.Empty(t, g2.community)
}

const exposeOneDoc = `
variant "expose_one" {
  schema_version     = 1
  name               = "Expose One"
  betting_structures = ["no_limit"]

  players {
    min = 2
    max = 6
  }

  deck {
    type = "standard"
  }

  forced_bets {
    style = "blinds"
  }

  betting_order {
    initial    = "after_big_blind"
    subsequent = "dealer"
  }

  step "deal" {
    deal {
      location = "player"
      number   = 5
      state    = "face_down"
    }
  }

  step "first betting" {
    bet {
      type = "blinds"
    }
  }

  step "expose" {
    expose {
      number = 1
    }
  }

  step "second betting" {
    bet {
      type = "big"
    }
  }

  step "showdown" {
    showdown {}
  }

  showdown_rule {
    best_hand "high" {
      evaluation = "high"
    }
  }
}
`

func TestExposeFlipsCardFaceUp(t *testing.T) {
	r, err := rules.Parse([]byte(exposeOneDoc), "expose_one.hcl")
	require.NoError(t, err)

	g := newTestGame(t, r, rules.NoLimit, NewStakes(1, 2), 200, 200)
	require.NoError(t, g.StartHand())

	act(t, g, "p1", ActionCall, Payload{})
	act(t, g, "p2", ActionCheck, Payload{})

	require.Equal(t, "p2", g.CurrentActor())
	act(t, g, "p2", ActionExpose, Payload{Cards: []int{2}})

	p2, _ := g.table.Get("p2")
	assert.True(t, p2.Hole[rules.DefaultSubset][2].FaceUp)
	assert.True(t, p2.HasExposed())

	// the flipped card is public in the opponent's snapshot
	view := g.ViewFor("p1")
	for _, pv := range view.Players {
		if pv.ID != "p2" {
			continue
		}
		cv := pv.Cards[rules.DefaultSubset][2]
		assert.True(t, cv.FaceUp)
		assert.False(t, cv.Hidden)
		assert.NotZero(t, cv.Card.Rank)
	}

	act(t, g, "p1", ActionExpose, Payload{Cards: []int{0}})
	act(t, g, "p2", ActionCheck, Payload{})
	act(t, g, "p1", ActionCheck, Payload{})
	require.Equal(t, StateComplete, g.State())
	assert.Equal(t, 400, totalChips(g))
}

const splitPairsDoc = `
variant "split_pairs" {
  schema_version     = 1
  name               = "Split Pairs"
  betting_structures = ["no_limit"]

  players {
    min = 2
    max = 6
  }

  deck {
    type = "standard"
  }

  forced_bets {
    style = "blinds"
  }

  betting_order {
    initial    = "after_big_blind"
    subsequent = "dealer"
  }

  step "deal" {
    deal {
      location = "player"
      number   = 4
      state    = "face_down"
    }
  }

  step "betting" {
    bet {
      type = "blinds"
    }
  }

  step "separate" {
    separate {
      subset "front" {
        size = 2
      }

      subset "back" {
        size = 2
      }
    }
  }

  step "showdown" {
    showdown {}
  }

  showdown_rule {
    best_hand "back" {
      evaluation = "high"
      hand_size  = 2

      use_subset "back" {
        min = 2
        max = 2
      }
    }
  }
}
`

func TestSeparatePartitionsHand(t *testing.T) {
	r, err := rules.Parse([]byte(splitPairsDoc), "split_pairs.hcl")
	require.NoError(t, err)

	g := newTestGame(t, r, rules.NoLimit, NewStakes(1, 2), 200, 200)

	// p2 can bury a pair in back; p1's best back is ace-king high
	g.rig = deck.MustParseCards("2c3d4c4d" + "AsKs7h8c")
	require.NoError(t, g.StartHand())

	act(t, g, "p1", ActionCall, Payload{})
	act(t, g, "p2", ActionCheck, Payload{})

	require.Equal(t, StateDrawing, g.State())
	require.Equal(t, "p2", g.CurrentActor())

	// a lopsided split is rejected before any cards move
	err = g.PlayerAction("p2", ActionSeparate, Payload{Subsets: map[string][]int{
		"front": {0}, "back": {1, 2, 3},
	}})
	ue, ok := AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, CodeBadSubsetSizes, ue.Code)

	act(t, g, "p2", ActionSeparate, Payload{Subsets: map[string][]int{
		"front": {0, 1}, "back": {2, 3},
	}})
	act(t, g, "p1", ActionSeparate, Payload{Subsets: map[string][]int{
		"front": {2, 3}, "back": {0, 1},
	}})

	p2, _ := g.table.Get("p2")
	assert.Len(t, p2.Hole["front"], 2)
	assert.Len(t, p2.Hole["back"], 2)
	assert.Empty(t, p2.Hole[rules.DefaultSubset])

	require.Equal(t, StateComplete, g.State())
	res, err := g.HandResults()
	require.NoError(t, err)
	require.Len(t, res.Pots[0].Shares, 1)
	assert.Equal(t, "p2", res.Pots[0].Shares[0].PlayerID, "buried pair beats ace high")
	assert.Equal(t, 4, res.Pots[0].Shares[0].Amount)
}

const diceTrimDoc = `
variant "dice_trim" {
  schema_version     = 1
  name               = "Dice Trim"
  betting_structures = ["no_limit"]

  players {
    min = 2
    max = 6
  }

  deck {
    type = "standard"
  }

  forced_bets {
    style = "blinds"
  }

  betting_order {
    initial    = "after_big_blind"
    subsequent = "dealer"
  }

  step "deal" {
    deal {
      location = "player"
      number   = 5
      state    = "face_down"
    }
  }

  step "board" {
    deal {
      location = "community"
      number   = 3
      state    = "face_up"
    }
  }

  step "roll" {
    roll_die {
      sides = 6
    }
  }

  step "trim" {
    remove {
      number = 1
    }
  }

  step "betting" {
    bet {
      type = "blinds"
    }
  }

  step "showdown" {
    showdown {}
  }

  showdown_rule {
    best_hand "high" {
      evaluation = "high"
    }
  }
}
`

func TestRollDieAndRemove(t *testing.T) {
	r, err := rules.Parse([]byte(diceTrimDoc), "dice_trim.hcl")
	require.NoError(t, err)

	g := newTestGame(t, r, rules.NoLimit, NewStakes(1, 2), 200, 200)
	require.NoError(t, g.StartHand())

	assert.Len(t, g.community[rules.DefaultSubset], 2, "remove trims the board")

	var rolled, removed bool
	for _, e := range g.DrainEvents() {
		switch e.Action {
		case string(rules.KindRollDie):
			rolled = true
			assert.GreaterOrEqual(t, e.Amount, 1)
			assert.LessOrEqual(t, e.Amount, 6)
		case string(rules.KindRemove):
			removed = true
			assert.Equal(t, 1, e.Amount)
		}
	}
	assert.True(t, rolled)
	assert.True(t, removed)

	act(t, g, "p1", ActionCall, Payload{})
	act(t, g, "p2", ActionCheck, Payload{})
	require.Equal(t, StateComplete, g.State())
	assert.Equal(t, 400, totalChips(g))
}

func TestBelowMinRaiseRejected(t *testing.T) {
	g := newTestGame(t, mustBuiltin(t, "texas_holdem"), rules.NoLimit, NewStakes(1, 2), 200, 200, 200)
	require.NoError(t, g.StartHand())

	err := g.PlayerAction("p1", ActionRaise, Payload{Amount: 3})
	ue, ok := AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, CodeBelowMinRaise, ue.Code)

	act(t, g, "p1", ActionRaise, Payload{Amount: 4})
	assert.Equal(t, 4, g.betting.CurrentBet())
}
