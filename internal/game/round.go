package game

import (
	"time"

	"github.com/lox/svara/internal/deck"
)

// Config holds the table rules for a game.
type Config struct {
	BaseBet        int // mandatory ante, also the opening table bet
	MaxBet         int // raises clamp here
	BlindThreshold int // a raise past this clears every blind flag
	Costs          CostPolicy
}

// DefaultConfig returns the table rules the original mini-app shipped
// with: ante 10, cap 200.
func DefaultConfig() Config {
	return Config{
		BaseBet:        10,
		MaxBet:         200,
		BlindThreshold: 20,
		Costs:          DefaultCostPolicy(),
	}
}

func (c Config) withDefaults() Config {
	if c.BaseBet <= 0 {
		c.BaseBet = 10
	}
	if c.MaxBet <= 0 {
		c.MaxBet = 200
	}
	if c.BlindThreshold <= 0 {
		c.BlindThreshold = 2 * c.BaseBet
	}
	if c.Costs == (CostPolicy{}) {
		c.Costs = DefaultCostPolicy()
	}
	return c
}

// RoundResult describes how a round ended. Swara marks a scoring tie
// that must be replayed rather than paid out.
type RoundResult struct {
	WinnerSeats []int
	TiedSeats   []int
	Swara       bool
	Split       bool
	Pot         int
	Scores      map[int]int
}

// Round is the state of a single deal. Apply returns a fresh snapshot
// per transition; the previous state is never mutated, so an illegal
// action leaves the caller's state untouched.
type Round struct {
	ID            string
	Players       []*Player
	Dropped       []DroppedPlayer
	Pot           int
	CurrentBet    int
	DealerSeat    int
	ActiveSeat    int
	Phase         Phase
	BettingRounds int // completed full rotations
	Swara         bool
	SwaraBuyIn    int
	TiedSeats     []int
	Joiners       []int
	Result        *RoundResult

	cfg        Config
	sawSighted bool   // a sighted action has occurred, ending the blind window
	acted      []bool // per-seat acted-this-rotation
}

// NewRound collects antes from the roster, deals three cards each and
// opens betting. For swara cycles the ante is skipped and carriedPot
// holds the contested pot. Players who cannot pay the ante are folded
// and snapshotted as insolvent before any card is dealt; if that
// leaves fewer than two payers the round resolves immediately.
func NewRound(id string, cfg Config, players []*Player, dealerSeat int, d *deck.Deck, swara bool, carriedPot int) (*Round, []Event, error) {
	cfg = cfg.withDefaults()
	r := &Round{
		ID:         id,
		Players:    players,
		Pot:        carriedPot,
		CurrentBet: cfg.BaseBet,
		DealerSeat: dealerSeat,
		Phase:      PhaseDealing,
		Swara:      swara,
		cfg:        cfg,
		acted:      make([]bool, len(players)),
	}

	var events []Event

	for _, p := range r.Players {
		p.MatchedBet = cfg.BaseBet
	}

	if !swara {
		for _, p := range r.Players {
			if err := p.Commit(cfg.BaseBet); err != nil {
				p.Folded = true
				r.Dropped = append(r.Dropped, snapshotDropped(p, true))
				events = append(events, ForcedFoldEvent{
					RoundID: r.ID, Seat: p.Seat, Name: p.Name,
					Required: cfg.BaseBet, Chips: p.Chips,
					timestamp: time.Now(),
				})
				continue
			}
			r.Pot += cfg.BaseBet
		}
	}

	in := r.inHandSeats()
	if len(in) < 2 {
		// Everyone but at most one player was broke at the ante.
		res := &RoundResult{Pot: r.Pot, Scores: map[int]int{}}
		if len(in) == 1 {
			w := r.Players[in[0]]
			w.Chips += r.Pot
			res.WinnerSeats = []int{w.Seat}
		}
		r.Pot = 0
		r.Phase = PhaseResolved
		r.Result = res
		return r, events, nil
	}

	// Three passes, one card at a time, starting left of the dealer.
	for pass := 0; pass < 3; pass++ {
		for _, seat := range r.seatsFrom(r.DealerSeat + 1) {
			p := r.Players[seat]
			if p.Folded {
				continue
			}
			cards, err := d.Draw(1)
			if err != nil {
				return nil, nil, err
			}
			p.Hand = append(p.Hand, cards[0])
		}
	}

	r.Phase = PhaseBetting
	r.ActiveSeat = r.firstSeat()
	events = append(events, RoundStartEvent{
		RoundID: r.ID, DealerSeat: r.DealerSeat, BaseBet: cfg.BaseBet,
		Swara: swara, Players: r.publicPlayers(), timestamp: time.Now(),
	})
	return r, events, nil
}

// Apply processes a single player action and returns the successor
// state plus the events the transition produced. The receiver is left
// unchanged; on error it is returned as-is.
func (r *Round) Apply(seat int, a Action) (*Round, []Event, error) {
	if seat < 0 || seat >= len(r.Players) {
		return r, nil, ErrUnknownPlayer
	}

	if r.Phase == PhaseSwaraJoin {
		switch a.Type {
		case JoinSwara:
			return r.applyJoinSwara(seat)
		case SplitPot:
			return r.applySplitPot(seat)
		default:
			return r, nil, ErrIllegalAction
		}
	}

	if r.Phase != PhaseBetting {
		return r, nil, ErrIllegalAction
	}
	if seat != r.ActiveSeat {
		return r, nil, ErrNotYourTurn
	}

	switch a.Type {
	case Fold:
		return r.applyFold(seat)
	case See:
		return r.applySee(seat)
	case Call:
		return r.applyCall(seat)
	case Raise:
		return r.applyRaise(seat, a.Amount)
	case Blind:
		return r.applyBlind(seat)
	case Showdown:
		return r.applyShowdown(seat)
	default:
		return r, nil, ErrIllegalAction
	}
}

func (r *Round) applyFold(seat int) (*Round, []Event, error) {
	next := r.clone()
	p := next.Players[seat]
	p.Folded = true
	next.Dropped = append(next.Dropped, snapshotDropped(p, false))
	next.acted[seat] = true
	next.sawSighted = true

	events := []Event{next.actionEvent(seat, Fold, 0)}
	events = append(events, next.advanceOrResolve(seat)...)
	return next, events, nil
}

// applySee lets a blind player look at their own cards. It costs
// nothing and does not consume the turn: the player still owes a
// betting action.
func (r *Round) applySee(seat int) (*Round, []Event, error) {
	if !r.Players[seat].Blind {
		return r, nil, ErrIllegalAction
	}
	next := r.clone()
	next.Players[seat].Blind = false
	next.sawSighted = true
	return next, []Event{next.actionEvent(seat, See, 0)}, nil
}

func (r *Round) applyCall(seat int) (*Round, []Event, error) {
	next := r.clone()
	p := next.Players[seat]

	nominal := next.CurrentBet - p.MatchedBet
	cost := next.cfg.Costs.callCost(nominal, p.Blind, next.liveBlindExcept(seat))

	events, folded := next.payOrFold(seat, cost)
	if folded {
		events = append(events, next.advanceOrResolve(seat)...)
		return next, events, nil
	}

	p.MatchedBet = next.CurrentBet
	next.acted[seat] = true
	if !p.Blind {
		next.sawSighted = true
	}
	events = append(events, next.actionEvent(seat, Call, cost))
	events = append(events, next.advanceOrResolve(seat)...)
	return next, events, nil
}

func (r *Round) applyRaise(seat int, amount int) (*Round, []Event, error) {
	newBet := amount
	if newBet > r.cfg.MaxBet {
		newBet = r.cfg.MaxBet
	}
	if newBet <= r.CurrentBet {
		// Also covers a table already betting at the cap.
		return r, nil, ErrIllegalAction
	}

	next := r.clone()
	p := next.Players[seat]

	nominal := newBet - p.MatchedBet
	cost := next.cfg.Costs.callCost(nominal, p.Blind, next.liveBlindExcept(seat))

	events, folded := next.payOrFold(seat, cost)
	if folded {
		events = append(events, next.advanceOrResolve(seat)...)
		return next, events, nil
	}

	p.MatchedBet = newBet
	next.CurrentBet = newBet
	if newBet > next.cfg.BlindThreshold {
		// Blind play only means something while the stake is small
		// enough to be unconfirmed.
		for _, other := range next.Players {
			other.Blind = false
		}
	}
	if !p.Blind {
		next.sawSighted = true
	}

	// Everyone must respond to the new bet.
	for i := range next.acted {
		next.acted[i] = false
	}
	next.acted[seat] = true

	events = append(events, next.actionEvent(seat, Raise, cost))
	events = append(events, next.advanceOrResolve(seat)...)
	return next, events, nil
}

func (r *Round) applyBlind(seat int) (*Round, []Event, error) {
	if seat != r.firstSeat() || r.sawSighted || r.BettingRounds > 0 || r.Players[seat].Blind {
		return r, nil, ErrIllegalAction
	}

	next := r.clone()
	p := next.Players[seat]

	// Blind play doubles the player's own stake up front.
	events, folded := next.payOrFold(seat, next.cfg.BaseBet)
	if folded {
		events = append(events, next.advanceOrResolve(seat)...)
		return next, events, nil
	}

	p.Blind = true
	next.acted[seat] = true
	events = append(events, next.actionEvent(seat, Blind, next.cfg.BaseBet))
	events = append(events, next.advanceOrResolve(seat)...)
	return next, events, nil
}

func (r *Round) applyShowdown(seat int) (*Round, []Event, error) {
	if r.BettingRounds < 1 {
		return r, nil, ErrIllegalAction
	}
	opponent := r.precedingInHand(seat)
	if opponent == -1 {
		return r, nil, ErrNoOpponent
	}

	next := r.clone()
	challenger := next.Players[seat]
	opp := next.Players[opponent]

	challenger.Revealed = true
	opp.Revealed = true
	challengerScore := Score(challenger.Hand)
	opponentScore := Score(opp.Hand)

	// Ties fold the challenger: calling the showdown carries the risk.
	loser := challenger
	challengerWon := challengerScore > opponentScore
	if challengerWon {
		loser = opp
	}
	loser.Folded = true
	next.Dropped = append(next.Dropped, snapshotDropped(loser, false))

	// A showdown interrupts the rotation; everyone still in must act
	// again before the round can complete.
	for i := range next.acted {
		next.acted[i] = false
	}
	next.sawSighted = true

	events := []Event{ShowdownEvent{
		RoundID:        next.ID,
		ChallengerSeat: seat,
		OpponentSeat:   opponent,
		ChallengerWon:  challengerWon,
		Scores:         map[int]int{seat: challengerScore, opponent: opponentScore},
		timestamp:      time.Now(),
	}}
	events = append(events, next.advanceOrResolve(seat)...)
	return next, events, nil
}

func (r *Round) applyJoinSwara(seat int) (*Round, []Event, error) {
	var dropped *DroppedPlayer
	for i := range r.Dropped {
		if r.Dropped[i].Seat == seat {
			dropped = &r.Dropped[i]
		}
	}
	if dropped == nil || dropped.Insolvent {
		return r, nil, ErrIllegalAction
	}
	for _, j := range r.Joiners {
		if j == seat {
			return r, nil, ErrIllegalAction
		}
	}

	next := r.clone()
	p := next.Players[seat]
	if err := p.Commit(next.SwaraBuyIn); err != nil {
		// Buy-in is optional; refusal to afford it is a rejection, not
		// a forced fold.
		return r, nil, ErrInsufficientChips
	}
	next.Pot += next.SwaraBuyIn
	next.Joiners = append(next.Joiners, seat)

	return next, []Event{next.actionEvent(seat, JoinSwara, next.SwaraBuyIn)}, nil
}

func (r *Round) applySplitPot(seat int) (*Round, []Event, error) {
	tied := false
	for _, s := range r.TiedSeats {
		if s == seat {
			tied = true
		}
	}
	if !tied || len(r.Joiners) > 0 {
		return r, nil, ErrIllegalAction
	}

	next := r.clone()
	share := next.Pot / len(next.TiedSeats)
	remainder := next.Pot - share*len(next.TiedSeats)
	for i, s := range next.TiedSeats {
		next.Players[s].Chips += share
		if i == 0 {
			next.Players[s].Chips += remainder
		}
	}
	res := &RoundResult{
		WinnerSeats: append([]int(nil), next.TiedSeats...),
		Split:       true,
		Pot:         next.Pot,
		Scores:      map[int]int{},
	}
	next.Pot = 0
	next.Phase = PhaseResolved
	next.Result = res

	events := []Event{next.actionEvent(seat, SplitPot, 0)}
	events = append(events, RoundResolvedEvent{
		RoundID: next.ID, WinnerSeats: res.WinnerSeats, Pot: res.Pot,
		Split: true, Scores: res.Scores, timestamp: time.Now(),
	})
	return next, events, nil
}

// payOrFold commits cost chips from the seat into the pot, converting
// an unaffordable payment into a forced fold. It reports whether the
// player was folded.
func (r *Round) payOrFold(seat int, cost int) ([]Event, bool) {
	p := r.Players[seat]
	if err := p.Commit(cost); err != nil {
		p.Folded = true
		r.Dropped = append(r.Dropped, snapshotDropped(p, true))
		return []Event{ForcedFoldEvent{
			RoundID: r.ID, Seat: seat, Name: p.Name,
			Required: cost, Chips: p.Chips, timestamp: time.Now(),
		}}, true
	}
	r.Pot += cost
	return nil, false
}

// advanceOrResolve moves the turn forward after an applied action and
// performs whatever resolution the new position implies: last player
// standing, completed rotation, or an all-hands comparison.
func (r *Round) advanceOrResolve(from int) []Event {
	in := r.inHandSeats()
	if len(in) <= 1 {
		return r.resolveLastStanding(in)
	}

	next := r.nextInHand(from)
	first := r.firstSeat()

	// Rotation wraps when the turn returns to the seat after the
	// dealer with every live player level and having acted.
	if next == first && r.allActedAndLevel() {
		r.BettingRounds++
		if r.BettingRounds >= 2 {
			return r.resolveComparison()
		}
		for i := range r.acted {
			r.acted[i] = false
		}
	}

	r.ActiveSeat = next
	return nil
}

func (r *Round) resolveLastStanding(in []int) []Event {
	res := &RoundResult{Pot: r.Pot, Scores: map[int]int{}}
	if len(in) == 1 {
		w := r.Players[in[0]]
		w.Chips += r.Pot
		res.WinnerSeats = []int{w.Seat}
	}
	r.Pot = 0
	r.Phase = PhaseResolved
	r.Result = res
	return []Event{RoundResolvedEvent{
		RoundID: r.ID, WinnerSeats: res.WinnerSeats, Pot: res.Pot,
		Scores: res.Scores, timestamp: time.Now(),
	}}
}

// resolveComparison scores every live hand simultaneously. A unique
// maximum wins the pot; a tie opens the swara join window.
func (r *Round) resolveComparison() []Event {
	scores := map[int]int{}
	best := -1
	for _, seat := range r.inHandSeats() {
		p := r.Players[seat]
		p.Revealed = true
		s := Score(p.Hand)
		scores[seat] = s
		if s > best {
			best = s
		}
	}

	var winners []int
	for _, seat := range r.inHandSeats() {
		if scores[seat] == best {
			winners = append(winners, seat)
		}
	}

	if len(winners) == 1 {
		w := r.Players[winners[0]]
		res := &RoundResult{WinnerSeats: winners, Pot: r.Pot, Scores: scores}
		w.Chips += r.Pot
		r.Pot = 0
		r.Phase = PhaseResolved
		r.Result = res
		return []Event{RoundResolvedEvent{
			RoundID: r.ID, WinnerSeats: winners, Pot: res.Pot,
			Scores: scores, timestamp: time.Now(),
		}}
	}

	// Tied winners replay; the pot stays on the table.
	r.Phase = PhaseSwaraJoin
	r.TiedSeats = winners
	r.SwaraBuyIn = r.Pot / 2
	r.Result = &RoundResult{TiedSeats: winners, Swara: true, Pot: r.Pot, Scores: scores}
	return []Event{SwaraStartEvent{
		RoundID: r.ID, TiedSeats: winners, BuyIn: r.SwaraBuyIn,
		Pot: r.Pot, timestamp: time.Now(),
	}}
}

// inHandSeats returns the seats still holding live hands, in seat order.
func (r *Round) inHandSeats() []int {
	var seats []int
	for _, p := range r.Players {
		if p.InHand() {
			seats = append(seats, p.Seat)
		}
	}
	return seats
}

// seatsFrom returns every seat index once, starting at from and
// wrapping circularly.
func (r *Round) seatsFrom(from int) []int {
	n := len(r.Players)
	seats := make([]int, 0, n)
	for i := 0; i < n; i++ {
		seats = append(seats, (from+i)%n)
	}
	return seats
}

// firstSeat is the first live seat after the dealer; turn order starts
// there.
func (r *Round) firstSeat() int {
	for _, seat := range r.seatsFrom(r.DealerSeat + 1) {
		if r.Players[seat].InHand() {
			return seat
		}
	}
	return -1
}

// nextInHand rotates forward from the given seat, skipping folded
// players.
func (r *Round) nextInHand(from int) int {
	for _, seat := range r.seatsFrom(from + 1) {
		if r.Players[seat].InHand() {
			return seat
		}
	}
	return -1
}

// precedingInHand finds the nearest live seat before the given one in
// turn order, the target of a showdown challenge.
func (r *Round) precedingInHand(seat int) int {
	n := len(r.Players)
	for i := 1; i < n; i++ {
		candidate := ((seat-i)%n + n) % n
		if candidate == seat {
			break
		}
		if r.Players[candidate].InHand() {
			return candidate
		}
	}
	return -1
}

// liveBlindExcept reports whether any live player other than the given
// seat is betting blind, which triggers the sighted-pays-double rule.
func (r *Round) liveBlindExcept(seat int) bool {
	for _, p := range r.Players {
		if p.Seat != seat && p.InHand() && p.Blind {
			return true
		}
	}
	return false
}

func (r *Round) allActedAndLevel() bool {
	for _, seat := range r.inHandSeats() {
		if !r.acted[seat] {
			return false
		}
		if r.Players[seat].MatchedBet < r.CurrentBet {
			return false
		}
	}
	return true
}

func (r *Round) actionEvent(seat int, action ActionType, paid int) PlayerActionEvent {
	return PlayerActionEvent{
		RoundID: r.ID, Seat: seat, Name: r.Players[seat].Name,
		Action: action, Paid: paid, Pot: r.Pot, Bet: r.CurrentBet,
		timestamp: time.Now(),
	}
}

func (r *Round) clone() *Round {
	next := *r
	next.Players = make([]*Player, len(r.Players))
	for i, p := range r.Players {
		next.Players[i] = p.clone()
	}
	next.Dropped = append([]DroppedPlayer(nil), r.Dropped...)
	next.TiedSeats = append([]int(nil), r.TiedSeats...)
	next.Joiners = append([]int(nil), r.Joiners...)
	next.acted = append([]bool(nil), r.acted...)
	return &next
}

func snapshotDropped(p *Player, insolvent bool) DroppedPlayer {
	return DroppedPlayer{
		Seat:         p.Seat,
		ID:           p.ID,
		Name:         p.Name,
		Chips:        p.Chips,
		CommittedBet: p.CommittedBet,
		Insolvent:    insolvent,
	}
}
