package identity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratorMonotonic(t *testing.T) {
	g := NewGenerator(0)
	var last Thing
	for i := 0; i < 1000; i++ {
		n := g.Next()
		require.Greater(t, uint64(n), uint64(last))
		last = n
	}
}

func TestGeneratorSeed(t *testing.T) {
	g := NewGenerator(41)
	require.Equal(t, Thing(42), g.Next())
}

func TestGeneratorObserveNeverRewindsBelow(t *testing.T) {
	g := NewGenerator(0)
	g.Observe(100)
	require.Equal(t, Thing(101), g.Next())
	g.Observe(5) // lower than current, no effect
	require.Equal(t, Thing(102), g.Next())
}

func TestGeneratorConcurrentNoDuplicates(t *testing.T) {
	g := NewGenerator(0)
	const n = 2000
	seen := make(chan Thing, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seen <- g.Next()
		}()
	}
	wg.Wait()
	close(seen)
	set := make(map[Thing]bool, n)
	for v := range seen {
		require.False(t, set[v], "duplicate identity issued: %d", v)
		set[v] = true
	}
	require.Len(t, set, n)
}

func TestParseThing(t *testing.T) {
	v, ok := ParseThing("0x2a")
	require.True(t, ok)
	require.Equal(t, Thing(42), v)

	v, ok = ParseThing("42")
	require.True(t, ok)
	require.Equal(t, Thing(42), v)

	v, ok = ParseThing("")
	require.True(t, ok)
	require.Equal(t, Thing(0), v)

	_, ok = ParseThing("not-a-number")
	require.False(t, ok)
}
