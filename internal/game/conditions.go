package game

import (
	"github.com/lox/pokervariants/internal/rules"
)

// evalCondition resolves a rule condition against current game state.
// Player-scoped matchers (hand size, exposure) need p; a nil player fails
// them rather than guessing.
func (g *Game) evalCondition(c *rules.Condition, p *Player) bool {
	if c == nil {
		return true
	}
	if c.Choice != "" {
		return g.choices[c.Choice] == c.Equals
	}
	if c.Count != nil {
		subset := c.Subset
		if subset == "" {
			subset = rules.DefaultSubset
		}
		if die, ok := g.dice[subset]; ok {
			return die == *c.Count
		}
		return len(g.community[subset]) == *c.Count
	}
	if c.LastCardColor != "" {
		if g.lastCommunity == nil {
			return false
		}
		red := g.lastCommunity.IsRed()
		return (c.LastCardColor == "red") == red
	}
	if c.HandSize != nil {
		return p != nil && p.HandSize() == *c.HandSize
	}
	if c.Exposed != nil {
		return p != nil && p.HasExposed() == *c.Exposed
	}
	return true
}
