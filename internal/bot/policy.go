package bot

import "github.com/lox/svara/internal/game"

// Strength bands over the 0..34 score range.
const (
	strongHand = 27
	decentHand = 18
)

// Policy maps hand strength onto a weight for each legal action. It is
// a pure function of its inputs; selection happens in the Sampler.
//
// A blind bot (strength unknown, See available) mostly peeks, with a
// small chance of staying blind for another rotation.
func Policy(strength int, valid []game.ValidAction) []WeightedAction {
	var out []WeightedAction
	for _, va := range valid {
		out = append(out, WeightedAction{
			Action: actionFor(va, strength),
			Weight: weightFor(va.Type, strength),
		})
	}
	return out
}

func actionFor(va game.ValidAction, strength int) game.Action {
	a := game.Action{Type: va.Type}
	if va.Type == game.Raise {
		a.Amount = va.MinAmount
		if strength >= strongHand {
			// Press the advantage, but stay inside the cap.
			a.Amount = va.MinAmount * 2
			if a.Amount > va.MaxAmount {
				a.Amount = va.MaxAmount
			}
		}
	}
	return a
}

func weightFor(t game.ActionType, strength int) int {
	blind := strength == 0

	switch t {
	case game.Fold:
		switch {
		case blind:
			return 1
		case strength >= decentHand:
			return 1
		default:
			return 6
		}
	case game.Call:
		switch {
		case blind:
			return 2
		case strength >= strongHand:
			return 4
		case strength >= decentHand:
			return 6
		default:
			return 3
		}
	case game.Raise:
		switch {
		case blind:
			return 1
		case strength >= strongHand:
			return 6
		case strength >= decentHand:
			return 2
		default:
			return 0
		}
	case game.See:
		return 8
	case game.Blind:
		return 1
	case game.Showdown:
		if strength >= strongHand {
			return 3
		}
		return 0
	case game.SplitPot:
		return 1
	case game.JoinSwara:
		return 2
	default:
		return 0
	}
}
