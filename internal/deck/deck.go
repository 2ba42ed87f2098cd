package deck

import (
	"errors"
	rand "math/rand/v2"
)

// Size is the number of cards in a Svara deck: 4 suits × 9 ranks.
const Size = 36

// ErrExhausted is returned when more cards are requested than remain.
// Hand sizes are fixed at three cards, so hitting this indicates a
// programmer error in round setup rather than a recoverable condition.
var ErrExhausted = errors.New("deck exhausted")

// Deck represents a 36-card Svara deck. Randomness is injected so
// shuffles are reproducible under test.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a full deck in canonical order. Call Shuffle before
// drawing in real play.
func New(rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, Size),
		rng:   rng,
	}
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Six; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	return d
}

// NewStacked builds a deck that deals the given cards in order. Cards
// are drawn front-first, so the first card in the slice is the first
// card dealt. Scripted deals keep game flows deterministic under test.
func NewStacked(cards []Card) *Deck {
	d := &Deck{cards: make([]Card, len(cards))}
	for i, c := range cards {
		d.cards[len(cards)-1-i] = c
	}
	return d
}

// Shuffle randomizes the deck in place using Fisher-Yates, visiting
// every index from last to first and swapping with a uniform index in
// [0, i].
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the last n cards from the deck.
func (d *Deck) Draw(n int) ([]Card, error) {
	if n > len(d.cards) {
		return nil, ErrExhausted
	}
	cut := len(d.cards) - n
	cards := make([]Card, n)
	copy(cards, d.cards[cut:])
	d.cards = d.cards[:cut]
	return cards, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards in order. Used by the
// dealer-selection scan and by tests asserting the permutation
// invariant.
func (d *Deck) Cards() []Card {
	out := make([]Card, len(d.cards))
	copy(out, d.cards)
	return out
}

// Reset restores the deck to the full 36 cards and reshuffles.
func (d *Deck) Reset() {
	d.cards = d.cards[:0]
	for suit := Hearts; suit <= Spades; suit++ {
		for rank := Six; rank <= Ace; rank++ {
			d.cards = append(d.cards, NewCard(suit, rank))
		}
	}
	d.Shuffle()
}
