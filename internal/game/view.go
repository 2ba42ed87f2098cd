package game

// PlayerVisibleState is a per-player projection of the round: the
// viewer's own cards are included (unless they are playing blind),
// opponents' cards only once revealed by a showdown.
type PlayerVisibleState struct {
	RoundID    string
	Phase      Phase
	Pot        int
	CurrentBet int
	BaseBet    int
	MaxBet     int
	DealerSeat int
	ActiveSeat int
	YourSeat   int
	YourHand   []string
	YourScore  int // 0 until the viewer's own cards are visible
	YourTurn   bool
	Swara      bool
	SwaraBuyIn int
	TiedSeats  []int
	Players    []PlayerInfo
}

// viewFor builds the projection for the player at the given seat. A
// negative seat produces the spectator view: no hand, no turn.
func (r *Round) viewFor(seat int) PlayerVisibleState {
	v := PlayerVisibleState{
		RoundID:    r.ID,
		Phase:      r.Phase,
		Pot:        r.Pot,
		CurrentBet: r.CurrentBet,
		BaseBet:    r.cfg.BaseBet,
		MaxBet:     r.cfg.MaxBet,
		DealerSeat: r.DealerSeat,
		ActiveSeat: r.ActiveSeat,
		YourSeat:   seat,
		Swara:      r.Swara,
		SwaraBuyIn: r.SwaraBuyIn,
		TiedSeats:  append([]int(nil), r.TiedSeats...),
		Players:    r.publicPlayers(),
	}
	if seat >= 0 && seat < len(r.Players) {
		p := r.Players[seat]
		// A blind player has chosen not to look at their own cards.
		if !p.Blind {
			v.YourHand = cardStrings(p)
			if len(p.Hand) == 3 {
				v.YourScore = Score(p.Hand)
			}
		}
		v.YourTurn = r.Phase == PhaseBetting && r.ActiveSeat == seat
	}
	return v
}

// publicPlayers snapshots every player with only publicly-known
// information.
func (r *Round) publicPlayers() []PlayerInfo {
	infos := make([]PlayerInfo, len(r.Players))
	for i, p := range r.Players {
		infos[i] = PlayerInfo{
			Seat:         p.Seat,
			ID:           p.ID,
			Name:         p.Name,
			Chips:        p.Chips,
			Folded:       p.Folded,
			Blind:        p.Blind,
			CommittedBet: p.CommittedBet,
		}
		if p.Revealed {
			infos[i].Hand = cardStrings(p)
		}
	}
	return infos
}

func cardStrings(p *Player) []string {
	out := make([]string, len(p.Hand))
	for i, c := range p.Hand {
		out[i] = c.String()
	}
	return out
}
