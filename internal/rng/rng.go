// Package rng wraps a math/rand/v2 generator so it can be shared between
// goroutines. Generation and variation draw from one Source; tests seed it to
// make output reproducible.
package rng

import (
	"math/rand/v2"
	"sync"
)

// Source is a goroutine-safe random source
type Source struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a PCG source seeded with seed. A zero seed draws the seed from
// the runtime's entropy-backed generator.
func New(seed uint64) *Source {
	if seed == 0 {
		return &Source{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &Source{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// FromRand wraps an existing generator
func FromRand(r *rand.Rand) *Source {
	return &Source{r: r}
}

// IntN returns a value in [0, n); n <= 0 yields 0
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// Float64 returns a value in [0, 1)
func (s *Source) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Chance reports true with probability p
func (s *Source) Chance(p float64) bool {
	return s.Float64() < p
}

// Pick returns a random element of items, or "" when items is empty
func (s *Source) Pick(items []string) string {
	if len(items) == 0 {
		return ""
	}
	return items[s.IntN(len(items))]
}

// Sample returns n distinct elements of items in random order. It returns
// every element when n >= len(items).
func (s *Source) Sample(items []string, n int) []string {
	out := append([]string(nil), items...)
	s.mu.Lock()
	s.r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.mu.Unlock()
	if n < len(out) {
		out = out[:n]
	}
	return out
}
