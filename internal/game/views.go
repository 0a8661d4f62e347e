package game

import (
	"sort"

	"github.com/lox/pokervariants/internal/deck"
)

// CardView is a card as one viewer sees it. Hidden cards carry no identity.
type CardView struct {
	Card   deck.Card
	FaceUp bool
	Hidden bool
}

// PlayerView is a seat as seen by one viewer
type PlayerView struct {
	ID          string
	Name        string
	Seat        int
	Chips       int
	Bet         int
	TotalBet    int
	Status      Status
	Cards       map[string][]CardView
	Declaration string // populated once declarations are revealed
}

// GameStateView is the redacted state snapshot returned by ViewFor
type GameStateView struct {
	Variant      string
	State        State
	HandNumber   int
	StepIndex    int
	StepName     string
	CurrentActor string
	Button       int
	PotTotal     int
	Pots         []Pot
	Community    map[string][]CardView
	Players      []PlayerView
	Choices      map[string]string
}

// ViewFor builds the state snapshot for one viewer. Face-down cards of other
// players are present but hidden: counts are public, identities are not.
func (g *Game) ViewFor(viewer string) GameStateView {
	v := GameStateView{
		Variant:    g.rules.Key,
		State:      g.state,
		HandNumber: g.handNumber,
		StepIndex:  g.stepIndex,
		Button:     g.table.Button(),
		PotTotal:   g.pot.TotalWithLive(),
		Pots:       g.pot.Pots(g.table.Seated()),
		Community:  map[string][]CardView{},
		Choices:    map[string]string{},
	}
	if g.stepIndex >= 0 && g.stepIndex < len(g.rules.Steps) {
		v.StepName = g.rules.Steps[g.stepIndex].Name
	}
	if actor := g.currentPlayer(); actor != nil {
		v.CurrentActor = actor.ID
	}
	// community cards dealt face down stay hidden until the showdown reveal
	for name, cards := range g.community {
		down := g.communityDown[name]
		views := make([]CardView, 0, len(cards))
		for i, c := range cards {
			cv := CardView{Card: c, FaceUp: !(i < len(down) && down[i])}
			if !cv.FaceUp && !g.revealAll {
				cv.Card = deck.Card{}
				cv.Hidden = true
			}
			views = append(views, cv)
		}
		v.Community[name] = views
	}
	for name, val := range g.choices {
		v.Choices[name] = val
	}

	declarationsPublic := g.declarationsRevealed()
	for _, p := range g.table.Seated() {
		pv := PlayerView{
			ID:       p.ID,
			Name:     p.Name,
			Seat:     p.Seat,
			Chips:    p.Chips,
			Bet:      p.Bet,
			TotalBet: p.TotalBet,
			Status:   p.Status,
			Cards:    map[string][]CardView{},
		}
		if declarationsPublic {
			pv.Declaration = p.Declaration
		}
		own := p.ID == viewer
		subsets := make([]string, 0, len(p.Hole))
		for name := range p.Hole {
			subsets = append(subsets, name)
		}
		sort.Strings(subsets)
		for _, name := range subsets {
			views := make([]CardView, 0, len(p.Hole[name]))
			for _, hc := range p.Hole[name] {
				cv := CardView{Card: hc.Card, FaceUp: hc.FaceUp}
				shownDown := g.revealAll && p.InHand()
				if !hc.FaceUp && !own && !shownDown {
					cv.Card = deck.Card{}
					cv.Hidden = true
				}
				views = append(views, cv)
			}
			pv.Cards[name] = views
		}
		v.Players = append(v.Players, pv)
	}
	return v
}

// declarationsRevealed reports whether declare results are public yet: a
// simultaneous declare step stays sealed until every actor has declared
func (g *Game) declarationsRevealed() bool {
	if g.declareSealed {
		return false
	}
	return true
}
