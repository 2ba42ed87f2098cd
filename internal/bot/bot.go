// Package bot implements the automated opponents. The decision
// function is synchronous and side-effect-free; turn pacing is owned
// by whatever drives the bot, not by the bot itself.
package bot

import (
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/svara/internal/game"
)

// Bot picks actions from the weighted policy distribution.
type Bot struct {
	sampler *Sampler
	logger  *log.Logger
}

// New creates a bot over the given RNG
func New(rng *rand.Rand, logger *log.Logger) *Bot {
	return &Bot{
		sampler: NewSampler(rng),
		logger:  logger.WithPrefix("bot"),
	}
}

// Decide returns the bot's next action given its view of the round.
// ok is false when the bot has nothing legal to do.
func (b *Bot) Decide(view game.PlayerVisibleState, valid []game.ValidAction) (game.Action, bool) {
	if len(valid) == 0 {
		return game.Action{}, false
	}

	action, ok := b.sampler.Pick(Policy(view.YourScore, valid))
	if !ok {
		// Every weight was zero; fall back to the first legal action.
		action = game.Action{Type: valid[0].Type, Amount: valid[0].MinAmount}
	}

	b.logger.Debug("decision",
		"round", view.RoundID,
		"seat", view.YourSeat,
		"score", view.YourScore,
		"action", action.Type)
	return action, true
}
