package main

import (
	"fmt"
	"os"

	"github.com/lox/svara/internal/bot"
	"github.com/lox/svara/internal/game"
	"github.com/lox/svara/internal/randutil"
)

// SimulateCmd plays a headless bots-only game, useful for exercising
// the rules engine and eyeballing chip flow.
type SimulateCmd struct {
	Players int   `short:"p" default:"3" help:"Number of seats"`
	Rounds  int   `short:"r" default:"10" help:"Rounds to play"`
	Seed    int64 `help:"RNG seed; 0 uses the clock"`
	Chips   int   `default:"1000" help:"Starting chips per player"`
}

// envIdentity bridges the host platform's notion of who the local
// player is, the way the original mini-app read it from the chat app.
type envIdentity struct{}

func (envIdentity) DisplayName() string {
	if name := os.Getenv("SVARA_USER"); name != "" {
		return name
	}
	return "You"
}

func (cmd *SimulateCmd) Run(cli *CLI) error {
	logger := setupLogger(cli.Debug)

	rng := randutil.NewTimeSeeded()
	if cmd.Seed != 0 {
		rng = randutil.New(cmd.Seed)
	}

	var identity game.IdentityProvider = envIdentity{}
	seeds := []game.PlayerSeed{{ID: "p1", Name: identity.DisplayName(), Chips: cmd.Chips}}
	for i := 2; i <= cmd.Players; i++ {
		seeds = append(seeds, game.PlayerSeed{
			ID:    fmt.Sprintf("p%d", i),
			Name:  fmt.Sprintf("Bot %d", i),
			Chips: cmd.Chips,
		})
	}

	g, err := game.New(game.DefaultConfig(), seeds, rng, logger)
	if err != nil {
		return err
	}

	b := bot.New(rng, logger)
	for round := 0; round < cmd.Rounds; round++ {
		update, err := g.StartRound()
		if err != nil {
			return err
		}
		if update, err = drive(g, b, update); err != nil {
			return err
		}
		if update.Result != nil {
			logger.Info("round finished",
				"round", update.RoundID,
				"winners", update.Result.WinnerSeats,
				"pot", update.Result.Pot,
				"split", update.Result.Split)
		}

		solvent := 0
		for _, p := range g.Players() {
			logger.Info("standings", "player", p.Name, "chips", p.Chips)
			if p.Chips > 0 {
				solvent++
			}
		}
		if solvent < 2 {
			logger.Info("game over: one player left solvent")
			break
		}
	}
	return nil
}

// drive pumps bot decisions through the engine until the round
// resolves, handling the swara join window inline.
func drive(g *game.Game, b *bot.Bot, update *game.RoundUpdate) (*game.RoundUpdate, error) {
	for !update.Resolved {
		if update.SwaraPending {
			next, err := driveSwaraWindow(g, b)
			if err != nil {
				return nil, err
			}
			update = next
			continue
		}

		active := g.ActivePlayerID()
		if active == "" {
			return update, nil
		}
		view, err := g.View(active)
		if err != nil {
			return nil, err
		}
		action, ok := b.Decide(view, g.ValidActions(active))
		if !ok {
			action = game.Action{Type: game.Fold}
		}
		next, err := g.SubmitAction(active, action)
		if err != nil {
			next, err = g.SubmitAction(active, game.Action{Type: game.Fold})
			if err != nil {
				return nil, err
			}
		}
		update = next
	}
	return update, nil
}

func driveSwaraWindow(g *game.Game, b *bot.Bot) (*game.RoundUpdate, error) {
	// Buy-backs first, then split offers: a tied player only settles
	// for a split when nobody re-entered the pot.
	for _, want := range []game.ActionType{game.JoinSwara, game.SplitPot} {
		for _, p := range g.Players() {
			var valid []game.ValidAction
			for _, va := range g.ValidActions(p.ID) {
				if va.Type == want {
					valid = append(valid, va)
				}
			}
			if len(valid) == 0 {
				continue
			}
			view, err := g.View(p.ID)
			if err != nil {
				continue
			}
			action, ok := b.Decide(view, valid)
			if !ok {
				continue
			}
			if update, err := g.SubmitAction(p.ID, action); err == nil && update.Resolved {
				return update, nil
			}
		}
	}
	return g.BeginSwara()
}
