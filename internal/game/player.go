package game

import "github.com/lox/svara/internal/deck"

// Player represents a seated player. The roster is fixed for the life
// of a round: rotation and resolution filter on status flags rather
// than splicing players out, so seat indexes stay valid throughout.
type Player struct {
	Seat         int
	ID           string
	Name         string
	Chips        int
	Hand         []deck.Card // empty or exactly three cards
	Folded       bool
	Blind        bool
	Revealed     bool // hand shown publicly by a showdown comparison
	CommittedBet int  // chips committed in the current round
	MatchedBet   int  // table bet level this player has met; the blind
	// cost asymmetry means chips paid and level met can differ
}

// InHand returns true if the player still holds a live hand this round.
func (p *Player) InHand() bool {
	return !p.Folded
}

// Commit debits chips and credits the player's committed bet. It
// returns ErrInsufficientChips when amount exceeds available chips;
// callers must treat that as a forced fold, not a hard error. On
// success exactly amount moves from Chips to CommittedBet, keeping the
// pot invariant intact.
func (p *Player) Commit(amount int) error {
	if amount > p.Chips {
		return ErrInsufficientChips
	}
	p.Chips -= amount
	p.CommittedBet += amount
	return nil
}

// clone returns a deep copy, used by the reducer's snapshot-per-
// transition application.
func (p *Player) clone() *Player {
	cp := *p
	cp.Hand = make([]deck.Card, len(p.Hand))
	copy(cp.Hand, p.Hand)
	return &cp
}

// DroppedPlayer is a snapshot of a player removed from the round,
// retained so the swara resolver can offer a buy-back. Insolvent
// players are flagged so they are never re-offered entry.
type DroppedPlayer struct {
	Seat         int
	ID           string
	Name         string
	Chips        int
	CommittedBet int
	Insolvent    bool
}

// PlayerSeed describes a player joining a new game.
type PlayerSeed struct {
	ID    string
	Name  string
	Chips int
}
