package game

import "github.com/lox/svara/internal/deck"

// Score values for the special combinations.
const (
	DoubleAceScore = 22
	TripleSixScore = 34
)

// Score maps a 3-card Svara hand to its point strength. It is pure and
// permutation-invariant: card order never affects the result.
//
// Evaluation order, first match wins:
//  1. Two or more Aces score a fixed 22.
//  2. Three of a kind (the Joker may stand in to complete a pair):
//     sixes score 34, every other rank sums the nominal values with
//     the Joker taking the completed rank's value.
//  3. Otherwise the best suit total wins. The Joker is worth 11 and
//     joins the suit holding the most cards; suit enumeration order
//     breaks ties so the result does not depend on card order.
func Score(hand []deck.Card) int {
	aces := 0
	hasJoker := false
	for _, c := range hand {
		if c.IsAce() {
			aces++
		}
		if c.Joker {
			hasJoker = true
		}
	}

	if aces >= 2 {
		return DoubleAceScore
	}

	if rank, ok := tripleRank(hand); ok {
		if rank == deck.Six {
			return TripleSixScore
		}
		// A substituting Joker takes the value of the rank it completes.
		return deck.NewCard(deck.Hearts, rank).Value() * 3
	}

	return bestSuitSum(hand, hasJoker)
}

// tripleRank reports whether the hand is three of a kind, allowing the
// Joker to substitute for the third card of a pair.
func tripleRank(hand []deck.Card) (deck.Rank, bool) {
	counts := make(map[deck.Rank]int, 3)
	for _, c := range hand {
		if c.Joker {
			continue
		}
		counts[c.Rank]++
	}
	for rank, n := range counts {
		if n == 3 {
			return rank, true
		}
		if n == 2 {
			for _, c := range hand {
				if c.Joker {
					return rank, true
				}
			}
		}
	}
	return 0, false
}

// bestSuitSum groups non-Joker cards by suit and returns the maximum
// suit total, assigning the Joker to the most populated suit first.
func bestSuitSum(hand []deck.Card, hasJoker bool) int {
	var sums [4]int
	var counts [4]int
	for _, c := range hand {
		if c.Joker {
			continue
		}
		sums[c.Suit] += c.Value()
		counts[c.Suit]++
	}

	if hasJoker {
		// Most populated suit wins the Joker; count ties go to the
		// higher total. Both rules ignore card order, keeping the
		// score permutation-invariant.
		best := deck.Hearts
		for suit := deck.Diamonds; suit <= deck.Spades; suit++ {
			if counts[suit] > counts[best] ||
				(counts[suit] == counts[best] && sums[suit] > sums[best]) {
				best = suit
			}
		}
		if counts[best] == 0 {
			// Joker with no partners stands alone.
			return deck.JokerValue
		}
		sums[best] += deck.JokerValue
	}

	max := 0
	for _, s := range sums {
		if s > max {
			max = s
		}
	}
	return max
}
