package rules

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokervariants/internal/evaluator"
)

func TestBuiltinsCompile(t *testing.T) {
	t.Parallel()

	names := BuiltinNames()
	require.NotEmpty(t, names)
	for _, name := range names {
		r, err := Builtin(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, r.Key)
		assert.NotEmpty(t, r.Steps)
		assert.NotEmpty(t, r.Showdown.BestHands)
	}

	for _, want := range []string{
		"texas_holdem", "omaha_8", "seven_card_stud", "razz",
		"five_card_draw", "badugi", "seven_stud_hilo_declare",
		"anaconda", "deuces_wild_draw",
	} {
		assert.Contains(t, names, want)
	}
}

func TestHoldemShape(t *testing.T) {
	t.Parallel()

	r, err := Builtin("texas_holdem")
	require.NoError(t, err)

	assert.Equal(t, OrderAfterBigBlind, r.Order.Initial)
	assert.True(t, r.SupportsStructure(NoLimit))
	assert.True(t, r.SupportsStructure(Limit))
	assert.Equal(t, ForcedBlinds, r.ForcedStyle(nil).Style)

	deal, ok := r.Steps[0].Actions[0].(DealAction)
	require.True(t, ok)
	assert.Equal(t, LocationPlayer, deal.Location)
	assert.Equal(t, 2, deal.Number)
	assert.Equal(t, FaceDown, deal.State)
	assert.Equal(t, DefaultSubset, deal.Subset)
	assert.False(t, r.Steps[0].Interactive())
	assert.True(t, r.Steps[1].Interactive())
}

func TestStudThirdStreetGrouping(t *testing.T) {
	t.Parallel()

	r, err := Builtin("seven_card_stud")
	require.NoError(t, err)

	var third *Step
	for i := range r.Steps {
		if r.Steps[i].Name == "third street" {
			third = &r.Steps[i]
		}
	}
	require.NotNil(t, third)
	require.Len(t, third.Actions, 3)

	// deals precede the bring-in bet
	assert.Equal(t, KindDeal, third.Actions[0].Kind())
	assert.Equal(t, KindDeal, third.Actions[1].Kind())
	bet, ok := third.Actions[2].(BetAction)
	require.True(t, ok)
	assert.Equal(t, ForcedBringIn, bet.Type)
}

func TestOmahaCombinatorBounds(t *testing.T) {
	t.Parallel()

	r, err := Builtin("omaha_8")
	require.NoError(t, err)
	require.Len(t, r.Showdown.BestHands, 2)

	high := r.Showdown.BestHands[0]
	assert.Equal(t, evaluator.High, high.Evaluation)
	assert.Equal(t, 2, high.HoleMin)
	assert.Equal(t, 2, high.HoleMax)
	assert.Nil(t, high.Qualifier)

	low := r.Showdown.BestHands[1]
	assert.Equal(t, evaluator.A5Low, low.Evaluation)
	require.NotNil(t, low.Qualifier)

	comb := high.Combinator(nil)
	assert.Equal(t, 2, comb.HoleMin)
	assert.Equal(t, 2, comb.HoleMax)
}

func TestDeclareVariant(t *testing.T) {
	t.Parallel()

	r, err := Builtin("seven_stud_hilo_declare")
	require.NoError(t, err)
	assert.Equal(t, DeclareMode, r.Showdown.DeclarationMode)

	var found bool
	for _, s := range r.Steps {
		for _, a := range s.Actions {
			if d, ok := a.(DeclareAction); ok {
				found = true
				assert.ElementsMatch(t, []string{DeclareHigh, DeclareLow, DeclareBoth}, d.Options)
				assert.False(t, d.Sequential)
			}
		}
	}
	assert.True(t, found)
}

func TestWildRuleCompilation(t *testing.T) {
	t.Parallel()

	r, err := Builtin("deuces_wild_draw")
	require.NoError(t, err)
	require.Len(t, r.Wilds, 1)
	assert.Equal(t, evaluator.WildRank, r.Wilds[0].Kind)
	assert.Equal(t, evaluator.RoleWild, r.Wilds[0].Role)
}

// minimal valid variant used as a template for invalid-document tests
const validVariant = `
variant "test" {
  schema_version     = 1
  betting_structures = %s

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
    initial    = "%s"
    subsequent = "dealer"
  }

  step "deal" {
    deal {
      location = "player"
      number   = 5
    }
  }

  %s

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

func buildDoc(structures, initial, extraStep string) []byte {
	return []byte(fmt.Sprintf(validVariant, structures, initial, extraStep))
}

func TestParseValidation(t *testing.T) {
	t.Parallel()

	_, err := Parse(buildDoc(`["no_limit"]`, "after_big_blind", ""), "test.hcl")
	require.NoError(t, err)

	tests := []struct {
		name string
		doc  []byte
	}{
		{"empty betting structures", buildDoc(`[]`, "after_big_blind", "")},
		{"unknown betting structure", buildDoc(`["fixed"]`, "after_big_blind", "")},
		{"order inconsistent with forced bets", buildDoc(`["no_limit"]`, "bring_in", "")},
		{"draw before subset exists", buildDoc(`["no_limit"]`, "after_big_blind", `
  step "bad draw" {
    draw {
      number = 1
      subset = "point"
    }
  }
`)},
		{"condition on unknown choice", buildDoc(`["no_limit"]`, "after_big_blind", `
  step "conditional" {
    when {
      choice = "game"
      equals = "holdem"
    }

    deal {
      location = "community"
      number   = 1
    }
  }
`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.doc, "test.hcl")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRules)
		})
	}
}

func TestWildScopeConsistency(t *testing.T) {
	t.Parallel()

	wildDoc := func(block string) []byte {
		return []byte(fmt.Sprintf(`
variant "wild_test" {
  schema_version     = 1
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

  %s

  step "deal" {
    deal {
      location = "player"
      number   = 5
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
`, block))
	}

	_, err := Parse(wildDoc(`
  wild "lowest_hole" {
    scope = "player"
  }
`), "test.hcl")
	require.NoError(t, err)

	// hole-derived wilds cannot resolve globally, community-derived ones
	// cannot resolve per player
	for name, block := range map[string]string{
		"global lowest_hole": `
  wild "lowest_hole" {
    scope = "global"
  }
`,
		"per-player lowest_community": `
  wild "lowest_community" {
    scope = "player"
  }
`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(wildDoc(block), "test.hcl")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidRules)
		})
	}
}

func TestUnknownKeysRejected(t *testing.T) {
	t.Parallel()

	doc := buildDoc(`["no_limit"]`, "after_big_blind", `
  step "mystery" {
    teleport {
      number = 1
    }
  }
`)
	_, err := Parse(doc, "test.hcl")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRules)
}

func TestSchemaVersionRequired(t *testing.T) {
	t.Parallel()

	doc := []byte(`
variant "v2" {
  schema_version     = 2
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

  step "showdown" {
    showdown {}
  }

  showdown_rule {
    best_hand "high" {
      evaluation = "high"
    }
  }
}
`)
	_, err := Parse(doc, "test.hcl")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRules)
	assert.Contains(t, err.Error(), "schema_version")
}

func TestConditionalForcedBets(t *testing.T) {
	t.Parallel()

	doc := []byte(`
variant "choice_game" {
  schema_version     = 1
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

  forced_bets {
    style = "antes_only"

    when {
      choice = "game"
      equals = "stud"
    }
  }

  betting_order {
    initial    = "after_big_blind"
    subsequent = "dealer"
  }

  step "pick game" {
    choose "game" {
      position = "dealer"
      values   = ["holdem", "stud"]
    }
  }

  step "deal" {
    deal {
      location = "player"
      number   = 5
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
`)
	r, err := Parse(doc, "test.hcl")
	require.NoError(t, err)

	assert.Equal(t, ForcedBlinds, r.ForcedStyle(nil).Style)
	assert.Equal(t, ForcedBlinds, r.ForcedStyle(map[string]string{"game": "holdem"}).Style)
	assert.Equal(t, ForcedAntesOnly, r.ForcedStyle(map[string]string{"game": "stud"}).Style)
}
