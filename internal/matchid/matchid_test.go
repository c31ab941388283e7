package matchid

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedRand struct{ n int }

func (f fixedRand) Intn(int) int { return f.n }

type seqRand struct{ v int }

func (s *seqRand) Intn(n int) int {
	s.v = (s.v*31 + 17) % n
	return s.v
}

func TestGenerateShape(t *testing.T) {
	id := New()
	require.Len(t, id, 26)
	assert.NoError(t, Validate(id))
}

func TestGenerateDeterministicWithInjectedRand(t *testing.T) {
	at := time.UnixMilli(1700000000000)
	a := NewGenerator(fixedRand{n: 7})
	a.now = func() time.Time { return at }
	b := NewGenerator(fixedRand{n: 7})
	b.now = func() time.Time { return at }

	assert.Equal(t, a.Generate(), b.Generate())
}

func TestGenerateTimeOrdered(t *testing.T) {
	gen := NewGenerator(&seqRand{})
	ts := time.UnixMilli(1700000000000)
	var ids []string
	for i := 0; i < 20; i++ {
		at := ts.Add(time.Duration(i) * time.Millisecond)
		gen.now = func() time.Time { return at }
		ids = append(ids, gen.Generate())
	}

	sorted := append([]string(nil), ids...)
	sort.Strings(sorted)
	assert.Equal(t, sorted, ids, "lexical order must follow creation order")
}

func TestGenerateUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := New()
		require.False(t, seen[id])
		seen[id] = true
	}
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate("short"))
	assert.Error(t, Validate("z1234567890123456789012345"), "first char beyond 7")
	assert.Error(t, Validate("0123456789012345678901234!"))
	assert.NoError(t, Validate("0123456789abcdefghjkmnpqrs"))
}
