// Package matchid generates match identifiers: a UUIDv7 (time-ordered,
// random-tailed) rendered as a 26-character Crockford base32 string, so
// lexical order of IDs follows creation order.
package matchid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// RandSource supplies the random tail. Inject one for deterministic
// IDs in tests and simulations; nil means crypto/rand.
type RandSource interface {
	Intn(n int) int
}

// Generator produces match IDs. The zero value is not usable; call
// NewGenerator.
type Generator struct {
	randSource RandSource
	now        func() time.Time
}

// NewGenerator creates a generator. A nil randSource selects crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource, now: time.Now}
}

// New creates a match ID with production randomness.
func New() string {
	return NewGenerator(nil).Generate()
}

// Generate creates one match ID.
func (g *Generator) Generate() string {
	var id [16]byte

	ms := g.now().UnixMilli()
	for i := 0; i < 6; i++ {
		id[i] = byte(ms >> (40 - 8*i))
	}

	if g.randSource != nil {
		for i := 6; i < 16; i++ {
			id[i] = byte(g.randSource.Intn(256))
		}
	} else if _, err := rand.Read(id[6:]); err != nil {
		panic("matchid: crypto/rand failed: " + err.Error())
	}

	// Version 7, RFC 4122 variant.
	id[6] = (id[6] & 0x0f) | 0x70
	id[8] = (id[8] & 0x3f) | 0x80

	return encode(id)
}

// encode renders 128 bits as 26 base32 characters, consuming bits most
// significant first through a small accumulator.
func encode(id [16]byte) string {
	var b strings.Builder
	b.Grow(26)

	var acc uint64
	bits := 0
	emit := func() {
		for bits >= 5 {
			bits -= 5
			b.WriteByte(alphabet[(acc>>bits)&0x1f])
		}
	}
	for _, by := range id {
		acc = acc<<8 | uint64(by)
		bits += 8
		emit()
	}
	// 128 = 25*5 + 3: the final character carries the trailing 3 bits.
	b.WriteByte(alphabet[(acc<<(5-bits))&0x1f])
	return b.String()
}

// Validate reports whether id is a well-formed match ID.
func Validate(id string) error {
	if len(id) != 26 {
		return fmt.Errorf("match id must be 26 characters, got %d", len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("match id first character out of range: %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if !strings.ContainsRune(alphabet, rune(id[i])) {
			return fmt.Errorf("match id has invalid character %c at %d", id[i], i)
		}
	}
	return nil
}
