package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lox/svara/internal/deck"
)

func testSeats(chips ...int) []*Player {
	players := make([]*Player, len(chips))
	for i, c := range chips {
		players[i] = &Player{
			Seat:  i,
			ID:    fmt.Sprintf("p%d", i),
			Name:  fmt.Sprintf("player-%d", i),
			Chips: c,
		}
	}
	return players
}

// scriptDeck arranges cards so each seat receives the given hand when
// dealt one card at a time starting left of the dealer.
func scriptDeck(dealerSeat int, hands [][]deck.Card) *deck.Deck {
	n := len(hands)
	var cards []deck.Card
	for pass := 0; pass < 3; pass++ {
		for i := 0; i < n; i++ {
			seat := (dealerSeat + 1 + i) % n
			cards = append(cards, hands[seat][pass])
		}
	}
	return deck.NewStacked(cards)
}

func mustApply(t *testing.T, r *Round, seat int, a Action) *Round {
	t.Helper()
	next, _, err := r.Apply(seat, a)
	require.NoError(t, err, "seat %d action %s", seat, a.Type)
	return next
}

// callUntilResolved pumps calls from whoever is active. Betting always
// terminates within two zero-raise rotations, so the step cap only
// trips on a regression.
func callUntilResolved(t *testing.T, r *Round) *Round {
	t.Helper()
	for steps := 0; r.Phase == PhaseBetting; steps++ {
		require.Less(t, steps, 30, "betting did not terminate")
		r = mustApply(t, r, r.ActiveSeat, Action{Type: Call})
		if r.Phase == PhaseBetting {
			assertPotInvariant(t, r)
		}
	}
	return r
}

// assertPotInvariant checks that the pot equals the sum of committed
// bets. Only valid for non-swara rounds before resolution pays out.
func assertPotInvariant(t *testing.T, r *Round) {
	t.Helper()
	total := 0
	for _, p := range r.Players {
		total += p.CommittedBet
	}
	require.Equal(t, total, r.Pot, "pot must equal sum of committed bets")
}

func TestNewRoundCollectsAntes(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Hearts, deck.Six), card(deck.Hearts, deck.Seven), card(deck.Hearts, deck.Eight)},
		{card(deck.Diamonds, deck.Six), card(deck.Diamonds, deck.Seven), card(deck.Diamonds, deck.Eight)},
		{card(deck.Spades, deck.Six), card(deck.Spades, deck.Seven), card(deck.Spades, deck.Eight)},
	}
	r, events, err := NewRound("r1", DefaultConfig(), testSeats(100, 100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	require.Equal(t, PhaseBetting, r.Phase)
	require.Equal(t, 30, r.Pot)
	require.Equal(t, 10, r.CurrentBet)
	require.Equal(t, 1, r.ActiveSeat, "first seat after the dealer opens")
	for _, p := range r.Players {
		require.Equal(t, 90, p.Chips)
		require.Equal(t, 10, p.CommittedBet)
		require.Len(t, p.Hand, 3)
	}
	assertPotInvariant(t, r)
	require.NotEmpty(t, events)
	_, ok := events[len(events)-1].(RoundStartEvent)
	require.True(t, ok, "deal should finish with a round start event")
}

func TestScriptedDealAssignsHands(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Spades, deck.Queen), card(deck.Spades, deck.Nine), card(deck.Spades, deck.Six)},
		{card(deck.Spades, deck.Ace), card(deck.Spades, deck.Jack), card(deck.Spades, deck.Eight)},
		{card(deck.Spades, deck.King), card(deck.Spades, deck.Ten), card(deck.Spades, deck.Seven)},
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(100, 100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	for seat, want := range hands {
		require.ElementsMatch(t, want, r.Players[seat].Hand, "seat %d", seat)
	}
}

func TestAllCallsResolveAfterTwoRotations(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Spades, deck.Queen), card(deck.Spades, deck.Nine), card(deck.Spades, deck.Six)},  // 25
		{card(deck.Spades, deck.Ace), card(deck.Spades, deck.Jack), card(deck.Spades, deck.Eight)},  // 29
		{card(deck.Spades, deck.King), card(deck.Spades, deck.Ten), card(deck.Spades, deck.Seven)},  // 27
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(100, 100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	r = callUntilResolved(t, r)

	require.Equal(t, PhaseResolved, r.Phase)
	require.Equal(t, []int{1}, r.Result.WinnerSeats)
	require.Equal(t, map[int]int{0: 25, 1: 29, 2: 27}, r.Result.Scores)
	require.Equal(t, 120, r.Players[1].Chips, "winner collects the pot")
	require.Equal(t, 90, r.Players[0].Chips)
	require.Equal(t, 90, r.Players[2].Chips)
	require.Equal(t, 0, r.Pot)
	for _, seat := range []int{0, 1, 2} {
		require.True(t, r.Players[seat].Revealed, "comparison reveals every live hand")
	}
}

func TestRaiseClampsToMaxBet(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Hearts, deck.Six), card(deck.Hearts, deck.Seven), card(deck.Hearts, deck.Eight)},
		{card(deck.Diamonds, deck.Six), card(deck.Diamonds, deck.Seven), card(deck.Diamonds, deck.Eight)},
		{card(deck.Spades, deck.Six), card(deck.Spades, deck.Seven), card(deck.Spades, deck.Eight)},
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(500, 500, 500), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	r = mustApply(t, r, 1, Action{Type: Raise, Amount: 1000})
	require.Equal(t, 200, r.CurrentBet, "raise clamps to the table cap")
	require.Equal(t, 200, r.Players[1].CommittedBet)
	require.Equal(t, 300, r.Players[1].Chips)
	assertPotInvariant(t, r)

	// At the cap no further raise is possible.
	_, _, err = r.Apply(2, Action{Type: Raise, Amount: 300})
	require.ErrorIs(t, err, ErrIllegalAction)

	for _, va := range r.ValidActions(2) {
		require.NotEqual(t, Raise, va.Type, "raise should not be offered at the cap")
	}
}

func TestCallShortfallForcesFold(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Hearts, deck.Six), card(deck.Hearts, deck.Seven), card(deck.Hearts, deck.Eight)},
		{card(deck.Diamonds, deck.Six), card(deck.Diamonds, deck.Seven), card(deck.Diamonds, deck.Eight)},
		{card(deck.Spades, deck.Six), card(deck.Spades, deck.Seven), card(deck.Spades, deck.Eight)},
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(500, 500, 50), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	r = mustApply(t, r, 1, Action{Type: Raise, Amount: 200})

	// Seat 2 owes 190 with only 40 behind: forced fold, chips intact.
	next, events, err := r.Apply(2, Action{Type: Call})
	require.NoError(t, err)
	r = next
	require.True(t, r.Players[2].Folded)
	require.Equal(t, 40, r.Players[2].Chips, "a forced fold never debits chips")

	var forced bool
	for _, e := range events {
		if fe, ok := e.(ForcedFoldEvent); ok {
			forced = true
			require.Equal(t, 2, fe.Seat)
			require.Equal(t, 190, fe.Required)
		}
	}
	require.True(t, forced, "expected a forced fold event")
	require.Len(t, r.Dropped, 1)
	require.True(t, r.Dropped[0].Insolvent)

	r = mustApply(t, r, 0, Action{Type: Fold})
	require.Equal(t, PhaseResolved, r.Phase)
	require.Equal(t, []int{1}, r.Result.WinnerSeats)
	require.Equal(t, 520, r.Players[1].Chips)
}

func TestBlindPlayDoublesOwnStake(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Hearts, deck.Six), card(deck.Hearts, deck.Seven), card(deck.Hearts, deck.Eight)},
		{card(deck.Spades, deck.Six), card(deck.Spades, deck.Seven), card(deck.Spades, deck.Eight)},
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	r = mustApply(t, r, 1, Action{Type: Blind})
	p := r.Players[1]
	require.True(t, p.Blind)
	require.Equal(t, 20, p.CommittedBet, "blind play doubles the ante stake")
	require.Equal(t, 10, r.CurrentBet, "blind play does not move the table bet")
	assertPotInvariant(t, r)

	// Only the seat after the dealer may open blind.
	_, _, err = r.Apply(0, Action{Type: Blind})
	require.ErrorIs(t, err, ErrIllegalAction)

	r = mustApply(t, r, 0, Action{Type: Call})

	// Going blind twice is meaningless.
	_, _, err = r.Apply(1, Action{Type: Blind})
	require.ErrorIs(t, err, ErrIllegalAction)
}

func TestBlindCostAsymmetry(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Hearts, deck.Six), card(deck.Diamonds, deck.Seven), card(deck.Hearts, deck.Nine)},  // 15
		{card(deck.Spades, deck.Ace), card(deck.Spades, deck.King), card(deck.Spades, deck.Queen)},    // 31
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	r = mustApply(t, r, 1, Action{Type: Blind})

	// Sighted raise against a live blind costs double the difference.
	r = mustApply(t, r, 0, Action{Type: Raise, Amount: 20})
	require.Equal(t, 30, r.Players[0].CommittedBet, "10 ante + 2x10 raise difference")
	require.Equal(t, 20, r.CurrentBet)
	assertPotInvariant(t, r)

	// The blind caller pays half the difference but still meets the bet.
	r = mustApply(t, r, 1, Action{Type: Call})
	require.Equal(t, 25, r.Players[1].CommittedBet, "10 ante + 10 blind + half of 10")
	require.Equal(t, 20, r.Players[1].MatchedBet)
	assertPotInvariant(t, r)

	r = callUntilResolved(t, r)
	require.Equal(t, []int{1}, r.Result.WinnerSeats)
	require.Equal(t, 130, r.Players[1].Chips)
	require.Equal(t, 70, r.Players[0].Chips)
}

func TestSeeIsFreeAndKeepsTurn(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Hearts, deck.Six), card(deck.Diamonds, deck.Seven), card(deck.Hearts, deck.Nine)},
		{card(deck.Spades, deck.Ace), card(deck.Spades, deck.King), card(deck.Spades, deck.Queen)},
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	r = mustApply(t, r, 1, Action{Type: Blind})
	r = mustApply(t, r, 0, Action{Type: Raise, Amount: 20})

	chipsBefore := r.Players[1].Chips
	r = mustApply(t, r, 1, Action{Type: See})
	require.False(t, r.Players[1].Blind)
	require.Equal(t, chipsBefore, r.Players[1].Chips, "looking at cards costs nothing")
	require.Equal(t, 1, r.ActiveSeat, "seeing does not consume the turn")

	// Once sighted, the call costs the full difference.
	r = mustApply(t, r, 1, Action{Type: Call})
	require.Equal(t, 30, r.Players[1].CommittedBet, "10 ante + 10 blind + full 10")
}

func TestRaisePastThresholdClearsBlindFlags(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Hearts, deck.Six), card(deck.Diamonds, deck.Seven), card(deck.Hearts, deck.Nine)},
		{card(deck.Spades, deck.Ace), card(deck.Spades, deck.King), card(deck.Spades, deck.Queen)},
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(200, 200), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	r = mustApply(t, r, 1, Action{Type: Blind})
	r = mustApply(t, r, 0, Action{Type: Raise, Amount: 30})

	require.False(t, r.Players[1].Blind, "a big raise ends blind play for everyone")

	// Now a plain call at the full difference.
	r = mustApply(t, r, 1, Action{Type: Call})
	require.Equal(t, 40, r.Players[1].CommittedBet, "10 ante + 10 blind + full 20")
}

func TestShowdownFoldsLoser(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Diamonds, deck.Six), card(deck.Diamonds, deck.Seven), card(deck.Diamonds, deck.Nine)}, // 22
		{card(deck.Spades, deck.King), card(deck.Spades, deck.Ten), card(deck.Spades, deck.Seven)},       // 27
		{card(deck.Hearts, deck.Ace), card(deck.Hearts, deck.Jack), card(deck.Hearts, deck.Eight)},       // 29
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(100, 100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	// No showdown before a full rotation has completed.
	_, _, err = r.Apply(1, Action{Type: Showdown})
	require.ErrorIs(t, err, ErrIllegalAction)

	r = mustApply(t, r, 1, Action{Type: Call})
	r = mustApply(t, r, 2, Action{Type: Call})
	r = mustApply(t, r, 0, Action{Type: Call})
	require.Equal(t, 1, r.BettingRounds)

	r = mustApply(t, r, 1, Action{Type: Call})
	next, events, err := r.Apply(2, Action{Type: Showdown})
	require.NoError(t, err)
	r = next

	var sd ShowdownEvent
	found := false
	for _, e := range events {
		if se, ok := e.(ShowdownEvent); ok {
			sd, found = se, true
		}
	}
	require.True(t, found)
	require.True(t, sd.ChallengerWon, "29 beats 27")
	require.True(t, r.Players[1].Folded, "the showdown loser drops out")
	require.True(t, r.Players[1].Revealed)
	require.True(t, r.Players[2].Revealed)

	r = callUntilResolved(t, r)
	require.Equal(t, []int{2}, r.Result.WinnerSeats)
}

func TestShowdownTieFoldsChallenger(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Diamonds, deck.Six), card(deck.Diamonds, deck.Seven), card(deck.Diamonds, deck.Nine)}, // 22
		{card(deck.Spades, deck.Ace), card(deck.Spades, deck.Jack), card(deck.Spades, deck.Eight)},       // 29
		{card(deck.Hearts, deck.Ace), card(deck.Hearts, deck.Jack), card(deck.Hearts, deck.Eight)},       // 29
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(100, 100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	r = mustApply(t, r, 1, Action{Type: Call})
	r = mustApply(t, r, 2, Action{Type: Call})
	r = mustApply(t, r, 0, Action{Type: Call})

	r = mustApply(t, r, 1, Action{Type: Call})
	next, events, err := r.Apply(2, Action{Type: Showdown})
	require.NoError(t, err)
	r = next

	for _, e := range events {
		if se, ok := e.(ShowdownEvent); ok {
			require.False(t, se.ChallengerWon, "an equal score loses the challenge")
		}
	}
	require.True(t, r.Players[2].Folded, "the tying challenger folds")
	require.False(t, r.Players[1].Folded)

	r = callUntilResolved(t, r)
	require.Equal(t, []int{1}, r.Result.WinnerSeats, "29 beats 22 at comparison")
}

func TestTieOpensSwaraWindow(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Hearts, deck.Ace), card(deck.Clubs, deck.Ace), card(deck.Hearts, deck.Nine)}, // 22
		{card(deck.Spades, deck.Ace), card(deck.Diamonds, deck.Ace), card(deck.Spades, deck.Eight)}, // 22
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	for steps := 0; r.Phase == PhaseBetting; steps++ {
		require.Less(t, steps, 30)
		r = mustApply(t, r, r.ActiveSeat, Action{Type: Call})
	}

	require.Equal(t, PhaseSwaraJoin, r.Phase)
	require.Equal(t, []int{0, 1}, r.TiedSeats)
	require.Equal(t, 20, r.Pot, "the contested pot stays on the table")
	require.Equal(t, 10, r.SwaraBuyIn, "buy-in is half the pot")
	require.True(t, r.Result.Swara)

	// Tied winners may agree to split instead of replaying.
	r = mustApply(t, r, 0, Action{Type: SplitPot})
	require.Equal(t, PhaseResolved, r.Phase)
	require.True(t, r.Result.Split)
	require.Equal(t, 100, r.Players[0].Chips)
	require.Equal(t, 100, r.Players[1].Chips)
	require.Equal(t, 0, r.Pot)
}

func TestSwaraJoinBuysBackIn(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Diamonds, deck.Six), card(deck.Diamonds, deck.Seven), card(deck.Diamonds, deck.Eight)},
		{card(deck.Spades, deck.Ace), card(deck.Diamonds, deck.Ace), card(deck.Spades, deck.Six)},
		{card(deck.Hearts, deck.Ace), card(deck.Clubs, deck.Ace), card(deck.Hearts, deck.Six)},
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(100, 100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	r = mustApply(t, r, 1, Action{Type: Call})
	r = mustApply(t, r, 2, Action{Type: Call})
	r = mustApply(t, r, 0, Action{Type: Fold})
	r = mustApply(t, r, 1, Action{Type: Call})
	r = mustApply(t, r, 2, Action{Type: Call})

	require.Equal(t, PhaseSwaraJoin, r.Phase)
	require.Equal(t, []int{1, 2}, r.TiedSeats)
	require.Equal(t, 15, r.SwaraBuyIn)

	// A tied winner cannot buy in; they are already playing.
	_, _, err = r.Apply(1, Action{Type: JoinSwara})
	require.ErrorIs(t, err, ErrIllegalAction)

	r = mustApply(t, r, 0, Action{Type: JoinSwara})
	require.Equal(t, []int{0}, r.Joiners)
	require.Equal(t, 45, r.Pot)
	require.Equal(t, 75, r.Players[0].Chips)

	// Joining twice is rejected.
	_, _, err = r.Apply(0, Action{Type: JoinSwara})
	require.ErrorIs(t, err, ErrIllegalAction)

	// With an outsider bought in, splitting is off the table.
	_, _, err = r.Apply(1, Action{Type: SplitPot})
	require.ErrorIs(t, err, ErrIllegalAction)
}

func TestInsolventAnteResolvesImmediately(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Hearts, deck.Six), card(deck.Hearts, deck.Seven), card(deck.Hearts, deck.Eight)},
		{card(deck.Spades, deck.Six), card(deck.Spades, deck.Seven), card(deck.Spades, deck.Eight)},
	}
	r, events, err := NewRound("r1", DefaultConfig(), testSeats(5, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	require.Equal(t, PhaseResolved, r.Phase)
	require.Equal(t, []int{1}, r.Result.WinnerSeats)
	require.Equal(t, 100, r.Players[1].Chips, "ante returns via the instant pot")
	require.Equal(t, 5, r.Players[0].Chips)

	var forced bool
	for _, e := range events {
		if _, ok := e.(ForcedFoldEvent); ok {
			forced = true
		}
	}
	require.True(t, forced)
}

func TestWrongTurnLeavesStateUntouched(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Hearts, deck.Six), card(deck.Hearts, deck.Seven), card(deck.Hearts, deck.Eight)},
		{card(deck.Diamonds, deck.Six), card(deck.Diamonds, deck.Seven), card(deck.Diamonds, deck.Eight)},
		{card(deck.Spades, deck.Six), card(deck.Spades, deck.Seven), card(deck.Spades, deck.Eight)},
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(100, 100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	same, _, err := r.Apply(2, Action{Type: Call})
	require.ErrorIs(t, err, ErrNotYourTurn)
	require.Same(t, r, same, "a rejected action returns the original state")

	_, _, err = r.Apply(9, Action{Type: Call})
	require.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestValidActionsAtRoundOpen(t *testing.T) {
	hands := [][]deck.Card{
		{card(deck.Hearts, deck.Six), card(deck.Hearts, deck.Seven), card(deck.Hearts, deck.Eight)},
		{card(deck.Diamonds, deck.Six), card(deck.Diamonds, deck.Seven), card(deck.Diamonds, deck.Eight)},
		{card(deck.Spades, deck.Six), card(deck.Spades, deck.Seven), card(deck.Spades, deck.Eight)},
	}
	r, _, err := NewRound("r1", DefaultConfig(), testSeats(100, 100, 100), 0, scriptDeck(0, hands), false, 0)
	require.NoError(t, err)

	types := map[ActionType]ValidAction{}
	for _, va := range r.ValidActions(1) {
		types[va.Type] = va
	}
	require.Contains(t, types, Fold)
	require.Contains(t, types, Call)
	require.Contains(t, types, Blind, "the opener may play blind")
	require.NotContains(t, types, See, "nothing to see before going blind")
	require.NotContains(t, types, Showdown, "no showdown in the first rotation")

	raise, ok := types[Raise]
	require.True(t, ok)
	require.Equal(t, 20, raise.MinAmount)
	require.Equal(t, 200, raise.MaxAmount)

	require.Empty(t, r.ValidActions(0), "no actions offered out of turn")
}
