package game

import (
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/svara/internal/deck"
	"github.com/lox/svara/internal/gameid"
)

// IdentityProvider supplies the display name for the local human
// player, typically bridged from the hosting platform.
type IdentityProvider interface {
	DisplayName() string
}

// RoundUpdate is returned from SubmitAction so callers can drive the
// outer loop: when Resolved is set the driver starts the next round,
// when SwaraPending is set it runs the join window first.
type RoundUpdate struct {
	RoundID      string
	Phase        Phase
	Pot          int
	CurrentBet   int
	ActiveSeat   int
	Resolved     bool
	SwaraPending bool
	Result       *RoundResult
}

// Game owns the persistent roster and drives rounds through the Round
// reducer. It is not safe for concurrent use; callers serialise access
// (the server runs one goroutine per table).
type Game struct {
	cfg    Config
	rng    *rand.Rand
	logger *log.Logger
	bus    *Bus

	seats      []*Player // canonical roster, chips persist across rounds
	dealerSeat int
	round      *Round
	seatByID   map[string]int // current round's seat per player ID

	newDeck func() *deck.Deck
}

// Option customises game construction.
type Option func(*Game)

// WithDeckFactory overrides the deck source for every deal, including
// the dealer-selection scan. Pair with deck.NewStacked to script hands.
func WithDeckFactory(f func() *deck.Deck) Option {
	return func(g *Game) { g.newDeck = f }
}

// New creates a game with the given roster. The dealer is chosen once
// per game by scanning a freshly shuffled deck for the first Ace.
func New(cfg Config, seeds []PlayerSeed, rng *rand.Rand, logger *log.Logger, opts ...Option) (*Game, error) {
	if len(seeds) < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", len(seeds))
	}
	cfg = cfg.withDefaults()

	g := &Game{
		cfg:    cfg,
		rng:    rng,
		logger: logger.WithPrefix("engine"),
		bus:    NewBus(),
	}
	g.newDeck = func() *deck.Deck {
		d := deck.New(g.rng)
		d.Shuffle()
		return d
	}
	for _, opt := range opts {
		opt(g)
	}
	for i, seed := range seeds {
		g.seats = append(g.seats, &Player{
			Seat:  i,
			ID:    seed.ID,
			Name:  seed.Name,
			Chips: seed.Chips,
		})
	}
	g.dealerSeat = g.drawForDealer()
	g.logger.Info("dealer selected", "seat", g.dealerSeat, "name", g.seats[g.dealerSeat].Name)
	return g, nil
}

// Bus returns the event bus; subscribe notification sinks here before
// starting the first round.
func (g *Game) Bus() *Bus { return g.bus }

// drawForDealer deals a shuffled deck one card per seat in rotation;
// the seat receiving the first Ace deals for the rest of the game.
func (g *Game) drawForDealer() int {
	d := g.newDeck()
	cards := d.Cards()
	// Cards deal from the back of the slice, so scan in draw order.
	for i := 0; i < len(cards); i++ {
		if cards[len(cards)-1-i].IsAce() {
			return i % len(g.seats)
		}
	}
	// A 36-card deck always contains four aces.
	return 0
}

// StartRound deals a fresh round to the full roster. Players who
// cannot post the ante are folded before cards go out; if that leaves
// fewer than two payers the round resolves immediately and the caller
// should start another.
func (g *Game) StartRound() (*RoundUpdate, error) {
	roster := make([]*Player, len(g.seats))
	for i, p := range g.seats {
		roster[i] = &Player{Seat: i, ID: p.ID, Name: p.Name, Chips: p.Chips}
	}
	return g.deal(roster, g.dealerSeat, false, 0)
}

// BeginSwara closes the join window and deals the swara sub-round to
// the tied winners plus any buy-ins.
func (g *Game) BeginSwara() (*RoundUpdate, error) {
	r := g.round
	if r == nil || r.Phase != PhaseSwaraJoin {
		return nil, ErrIllegalAction
	}

	participants := append(append([]int(nil), r.TiedSeats...), r.Joiners...)
	roster := make([]*Player, 0, len(participants))
	dealer := 0
	for i, seat := range participants {
		prev := r.Players[seat]
		if prev.ID == g.seats[g.dealerSeat].ID {
			dealer = i
		}
		roster = append(roster, &Player{Seat: i, ID: prev.ID, Name: prev.Name, Chips: prev.Chips})
	}

	g.logger.Info("swara begins", "participants", len(roster), "pot", r.Pot)
	return g.deal(roster, dealer, true, r.Pot)
}

func (g *Game) deal(roster []*Player, dealer int, swara bool, carriedPot int) (*RoundUpdate, error) {
	d := g.newDeck()
	id := gameid.New(g.rng)
	round, events, err := NewRound(id, g.cfg, roster, dealer, d, swara, carriedPot)
	if err != nil {
		return nil, err
	}

	g.round = round
	g.seatByID = make(map[string]int, len(roster))
	for i, p := range roster {
		g.seatByID[p.ID] = i
	}
	g.syncChips()
	for _, e := range events {
		g.bus.Publish(e)
	}

	g.logger.Info("round dealt",
		"round", id, "swara", swara, "players", len(roster), "pot", round.Pot)
	return g.update(), nil
}

// SubmitAction applies a player action atomically: either the round
// advances to a new snapshot and the resulting events are published,
// or the action is rejected and nothing changes.
func (g *Game) SubmitAction(playerID string, a Action) (*RoundUpdate, error) {
	if g.round == nil {
		return nil, ErrIllegalAction
	}
	seat, ok := g.seatByID[playerID]
	if !ok {
		return nil, ErrUnknownPlayer
	}

	next, events, err := g.round.Apply(seat, a)
	if err != nil {
		g.logger.Debug("action rejected", "player", playerID, "action", a.Type, "err", err)
		return nil, err
	}

	g.round = next
	g.syncChips()
	for _, e := range events {
		g.bus.Publish(e)
	}
	return g.update(), nil
}

// View returns the player-visible projection of the current round.
func (g *Game) View(playerID string) (PlayerVisibleState, error) {
	if g.round == nil {
		return PlayerVisibleState{}, ErrIllegalAction
	}
	seat, ok := g.seatByID[playerID]
	if !ok {
		// Players outside the current swara sub-round spectate.
		if _, seated := g.seatIndexByID(playerID); !seated {
			return PlayerVisibleState{}, ErrUnknownPlayer
		}
		seat = -1
	}
	return g.round.viewFor(seat), nil
}

// ValidActions lists the actions the player may currently take, for
// bot policies and UI affordances.
func (g *Game) ValidActions(playerID string) []ValidAction {
	if g.round == nil {
		return nil
	}
	seat, ok := g.seatByID[playerID]
	if !ok {
		return nil
	}
	return g.round.ValidActions(seat)
}

// Players returns the canonical roster snapshots.
func (g *Game) Players() []PlayerInfo {
	infos := make([]PlayerInfo, len(g.seats))
	for i, p := range g.seats {
		infos[i] = PlayerInfo{Seat: p.Seat, ID: p.ID, Name: p.Name, Chips: p.Chips}
	}
	return infos
}

// Round returns the current round snapshot, primarily for tests and
// monitors.
func (g *Game) Round() *Round { return g.round }

// ActivePlayerID returns the ID of the player whose turn it is, or ""
// when no one may act.
func (g *Game) ActivePlayerID() string {
	if g.round == nil || g.round.Phase != PhaseBetting {
		return ""
	}
	return g.round.Players[g.round.ActiveSeat].ID
}

func (g *Game) update() *RoundUpdate {
	r := g.round
	return &RoundUpdate{
		RoundID:      r.ID,
		Phase:        r.Phase,
		Pot:          r.Pot,
		CurrentBet:   r.CurrentBet,
		ActiveSeat:   r.ActiveSeat,
		Resolved:     r.Phase == PhaseResolved,
		SwaraPending: r.Phase == PhaseSwaraJoin,
		Result:       r.Result,
	}
}

// syncChips writes round-local chip movements back to the canonical
// roster so they survive into the next round.
func (g *Game) syncChips() {
	for _, p := range g.round.Players {
		if i, ok := g.seatIndexByID(p.ID); ok {
			g.seats[i].Chips = p.Chips
		}
	}
}

func (g *Game) seatIndexByID(id string) (int, bool) {
	for i, p := range g.seats {
		if p.ID == id {
			return i, true
		}
	}
	return 0, false
}
