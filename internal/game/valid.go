package game

// ValidAction describes an action a player may legally take right now.
// Min/MaxAmount are only meaningful for Raise, bounding the new table
// bet.
type ValidAction struct {
	Type      ActionType
	MinAmount int
	MaxAmount int
}

// ValidActions lists the legal actions for the given seat. Outside the
// player's turn (or the swara join window) the list is empty.
func (r *Round) ValidActions(seat int) []ValidAction {
	if seat < 0 || seat >= len(r.Players) {
		return nil
	}

	if r.Phase == PhaseSwaraJoin {
		return r.validSwaraActions(seat)
	}
	if r.Phase != PhaseBetting || seat != r.ActiveSeat {
		return nil
	}

	p := r.Players[seat]
	actions := []ValidAction{{Type: Fold}, {Type: Call}}

	if p.Blind {
		actions = append(actions, ValidAction{Type: See})
	}
	if r.CurrentBet < r.cfg.MaxBet {
		minRaise := r.CurrentBet + r.cfg.BaseBet
		if minRaise > r.cfg.MaxBet {
			minRaise = r.cfg.MaxBet
		}
		actions = append(actions, ValidAction{Type: Raise, MinAmount: minRaise, MaxAmount: r.cfg.MaxBet})
	}
	if seat == r.firstSeat() && !r.sawSighted && r.BettingRounds == 0 && !p.Blind {
		actions = append(actions, ValidAction{Type: Blind})
	}
	if r.BettingRounds >= 1 && r.precedingInHand(seat) != -1 {
		actions = append(actions, ValidAction{Type: Showdown})
	}
	return actions
}

func (r *Round) validSwaraActions(seat int) []ValidAction {
	var actions []ValidAction

	for _, s := range r.TiedSeats {
		if s == seat && len(r.Joiners) == 0 {
			actions = append(actions, ValidAction{Type: SplitPot})
		}
	}

	for _, d := range r.Dropped {
		if d.Seat != seat || d.Insolvent {
			continue
		}
		joined := false
		for _, j := range r.Joiners {
			if j == seat {
				joined = true
			}
		}
		if !joined && r.Players[seat].Chips >= r.SwaraBuyIn {
			actions = append(actions, ValidAction{Type: JoinSwara})
		}
	}
	return actions
}
