package bot

import (
	rand "math/rand/v2"

	"github.com/lox/svara/internal/game"
)

// WeightedAction pairs an action with a selection weight. Zero-weight
// entries are never picked.
type WeightedAction struct {
	Action game.Action
	Weight int
}

// Sampler draws from a declared discrete distribution. Keeping the
// sampler separate from the policy keeps the policy pure and lets
// tests pin the RNG.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a sampler over the given RNG
func NewSampler(rng *rand.Rand) *Sampler {
	return &Sampler{rng: rng}
}

// Pick selects one action proportionally to its weight. ok is false
// when the distribution is empty or entirely zero-weighted.
func (s *Sampler) Pick(actions []WeightedAction) (game.Action, bool) {
	total := 0
	for _, wa := range actions {
		if wa.Weight > 0 {
			total += wa.Weight
		}
	}
	if total == 0 {
		return game.Action{}, false
	}

	n := s.rng.IntN(total)
	for _, wa := range actions {
		if wa.Weight <= 0 {
			continue
		}
		if n < wa.Weight {
			return wa.Action, true
		}
		n -= wa.Weight
	}
	return game.Action{}, false
}
