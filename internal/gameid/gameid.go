// Package gameid generates sortable round identifiers: a millisecond
// timestamp prefix followed by random bits, encoded in Crockford
// base32 so IDs sort by creation time and are safe in URLs and logs.
package gameid

import (
	"fmt"
	rand "math/rand/v2"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length of a generated ID: 9 characters of timestamp, 8 of entropy.
const Length = 17

// New generates a round ID using the provided RNG for the entropy
// suffix, keeping ID sequences reproducible in deterministic tests.
func New(rng *rand.Rand) string {
	buf := make([]byte, Length)

	// 45 timestamp bits, 9 base32 chars, good for ~1100 years.
	ms := uint64(time.Now().UnixMilli())
	for i := 8; i >= 0; i-- {
		buf[i] = alphabet[ms&0x1f]
		ms >>= 5
	}

	entropy := rng.Uint64()
	for i := Length - 1; i >= 9; i-- {
		buf[i] = alphabet[entropy&0x1f]
		entropy >>= 5
	}
	return string(buf)
}

// Validate checks an ID's length and alphabet.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("round ID must be %d characters, got %d", Length, len(id))
	}
	for i := 0; i < len(id); i++ {
		valid := false
		for j := 0; j < len(alphabet); j++ {
			if id[i] == alphabet[j] {
				valid = true
				break
			}
		}
		if !valid {
			return fmt.Errorf("invalid character %q at position %d", id[i], i)
		}
	}
	return nil
}
