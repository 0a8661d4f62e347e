// Command dealer is an auto-play harness: it deals many hands of a variant
// with scripted random players and verifies that chips are conserved across
// every settlement. Useful for soak-testing rule documents.
package main

import (
	"fmt"
	rand "math/rand/v2"
	"os"
	"sort"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokervariants/internal/game"
	"github.com/lox/pokervariants/internal/randutil"
	"github.com/lox/pokervariants/internal/rules"
)

type CLI struct {
	Variant   string `default:"texas_holdem" help:"Variant key, or 'all' for the whole builtin library"`
	Structure string `default:"no_limit" help:"Betting structure: limit, no_limit, pot_limit"`
	Hands     int    `default:"1000" help:"Hands to deal per table"`
	Tables    int    `default:"4" help:"Concurrent tables per variant"`
	Players   int    `default:"4" help:"Players per table"`
	BuyIn     int    `default:"200" help:"Chips per player"`
	Seed      int64  `default:"0" help:"RNG seed (0 for random)"`
	Verbose   bool   `short:"v" help:"Verbose logging"`
}

type tableStats struct {
	variant   string
	hands     int
	showdowns int
	maxPots   int
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("dealer"),
		kong.Description("Deal hands against random players and verify chip conservation."))

	logger := log.New(os.Stderr)
	if cli.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	variants := []string{cli.Variant}
	if cli.Variant == "all" {
		variants = rules.BuiltinNames()
	}

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("dealing", "variants", len(variants), "tables", cli.Tables,
		"hands", cli.Hands, "seed", seed)

	start := time.Now()
	var eg errgroup.Group
	results := make(chan tableStats, len(variants)*cli.Tables)
	for _, key := range variants {
		for i := 0; i < cli.Tables; i++ {
			key, i := key, i
			eg.Go(func() error {
				st, err := runTable(cli, key, seed+int64(i)+hashKey(key), logger)
				if err != nil {
					return fmt.Errorf("%s table %d: %w", key, i, err)
				}
				results <- st
				return nil
			})
		}
	}
	if err := eg.Wait(); err != nil {
		kctx.FatalIfErrorf(err)
	}
	close(results)

	byVariant := map[string]*tableStats{}
	for st := range results {
		agg := byVariant[st.variant]
		if agg == nil {
			agg = &tableStats{variant: st.variant}
			byVariant[st.variant] = agg
		}
		agg.hands += st.hands
		agg.showdowns += st.showdowns
		if st.maxPots > agg.maxPots {
			agg.maxPots = st.maxPots
		}
	}
	names := make([]string, 0, len(byVariant))
	for name := range byVariant {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		agg := byVariant[name]
		fmt.Printf("%-28s %7d hands  %6d showdowns  max %d pots\n",
			agg.variant, agg.hands, agg.showdowns, agg.maxPots)
	}
	fmt.Printf("all chips conserved across %d variants in %s\n", len(names), time.Since(start).Round(time.Millisecond))
}

func hashKey(s string) int64 {
	var h int64
	for _, c := range s {
		h = h*31 + int64(c)
	}
	return h
}

// runTable plays cli.Hands hands with random-policy players, checking chip
// conservation after every hand
func runTable(cli CLI, variant string, seed int64, logger *log.Logger) (tableStats, error) {
	st := tableStats{variant: variant}
	r, err := rules.Builtin(variant)
	if err != nil {
		return st, err
	}

	structure := rules.Structure(cli.Structure)
	if !r.SupportsStructure(structure) {
		structure = r.Structures[0]
	}

	g, err := game.NewGame(game.Config{
		Rules:        r,
		Structure:    structure,
		Stakes:       game.Stakes{SmallBlind: 1, BigBlind: 2, Ante: 1, BringIn: 1},
		Seed:         seed,
		AutoProgress: true,
		Logger:       logger,
	})
	if err != nil {
		return st, err
	}

	players := cli.Players
	if players > r.Players.Max {
		players = r.Players.Max
	}
	if players < r.Players.Min {
		players = r.Players.Min
	}
	for i := 0; i < players; i++ {
		id := fmt.Sprintf("bot%d", i+1)
		if err := g.AddPlayer(id, id, cli.BuyIn); err != nil {
			return st, err
		}
	}
	total := players * cli.BuyIn
	rng := randutil.New(seed)

	for h := 0; h < cli.Hands; h++ {
		if err := g.StartHand(); err != nil {
			// players bust down below the minimum eventually
			break
		}
		steps := 0
		for g.State() != game.StateComplete {
			steps++
			if steps > 10000 {
				return st, fmt.Errorf("hand %d did not terminate", g.HandNumber())
			}
			actor := g.CurrentActor()
			if actor == "" {
				if err := g.Advance(); err != nil {
					return st, err
				}
				continue
			}
			action, payload := pickAction(rng, g, actor)
			if err := g.PlayerAction(actor, action, payload); err != nil {
				if _, ok := game.AsUserError(err); ok {
					// random sizing missed a bound, just fold
					if ferr := g.PlayerAction(actor, game.ActionFold, game.Payload{}); ferr != nil {
						return st, ferr
					}
					continue
				}
				return st, err
			}
		}

		res, err := g.HandResults()
		if err != nil {
			return st, err
		}
		sum := 0
		for _, chips := range res.Stacks {
			sum += chips
		}
		if sum != total {
			return st, fmt.Errorf("hand %d leaked chips: have %d, want %d", g.HandNumber(), sum, total)
		}
		st.hands++
		if len(res.Pots) > st.maxPots {
			st.maxPots = len(res.Pots)
		}
		if len(res.Pots) > 0 && len(res.Pots[0].Shares) > 0 && res.Pots[0].Shares[0].Description != "uncontested" {
			st.showdowns++
		}
	}
	return st, nil
}

// pickAction plays loose-passive with occasional aggression, enough to
// exercise raises, all-ins and every interactive step kind
func pickAction(rng *rand.Rand, g *game.Game, actor string) (game.ActionType, game.Payload) {
	options := g.ValidActions(actor)
	byType := map[game.ActionType]game.ActionOption{}
	for _, opt := range options {
		byType[opt.Type] = opt
	}

	if opt, ok := byType[game.ActionChoose]; ok {
		return game.ActionChoose, game.Payload{Value: opt.Values[rng.IntN(len(opt.Values))]}
	}
	if opt, ok := byType[game.ActionDeclare]; ok {
		return game.ActionDeclare, game.Payload{Value: opt.Values[rng.IntN(len(opt.Values))]}
	}
	if opt, ok := byType[game.ActionDiscard]; ok {
		k := opt.MinCards
		if opt.Cards > k {
			k += rng.IntN(opt.Cards - k + 1)
		}
		return game.ActionDiscard, game.Payload{Cards: firstN(k)}
	}
	if opt, ok := byType[game.ActionExpose]; ok {
		return game.ActionExpose, game.Payload{Cards: firstN(opt.Cards)}
	}
	if opt, ok := byType[game.ActionPass]; ok {
		return game.ActionPass, game.Payload{Cards: firstN(opt.Cards)}
	}

	roll := rng.IntN(100)
	switch {
	case roll < 10:
		if _, ok := byType[game.ActionFold]; ok && byType[game.ActionCall].Min > 0 {
			return game.ActionFold, game.Payload{}
		}
	case roll < 20:
		if opt, ok := byType[game.ActionRaise]; ok {
			return game.ActionRaise, game.Payload{Amount: opt.Min}
		}
		if opt, ok := byType[game.ActionBet]; ok {
			return game.ActionBet, game.Payload{Amount: opt.Min}
		}
	}
	if _, ok := byType[game.ActionCheck]; ok {
		return game.ActionCheck, game.Payload{}
	}
	if _, ok := byType[game.ActionCall]; ok {
		return game.ActionCall, game.Payload{}
	}
	return game.ActionFold, game.Payload{}
}

func firstN(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
