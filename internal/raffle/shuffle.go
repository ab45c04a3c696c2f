package raffle

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// DefaultMaxWinners is used when Select is given a non-positive cap.
const DefaultMaxWinners = 11

// Source yields uniform float64 values in [0, 1).
// *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// NewSource returns a PCG generator seeded from the OS entropy pool.
func NewSource() *rand.Rand {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:])))
}

// NewSeeded returns a deterministic generator.
func NewSeeded(seed1, seed2 uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed1, seed2))
}

// Shuffle returns a uniformly permuted copy of in.
func Shuffle[T any](src Source, in []T) []T {
	out := append([]T(nil), in...)
	n := len(out)
	for i := 0; i < n-1; i++ {
		j := pick(src, i, n)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// pick returns j uniform in [i, n). Float rounding can land on n, so clamp.
func pick(src Source, i, n int) int {
	j := i + int(src.Float64()*float64(n-i))
	if j >= n {
		j = n - 1
	}
	if j < i {
		j = i
	}
	return j
}

// Select shuffles in and keeps at most limit entries.
func Select[T any](src Source, in []T, limit int) []T {
	if limit <= 0 {
		limit = DefaultMaxWinners
	}
	out := Shuffle(src, in)
	if len(out) > limit {
		out = out[:limit:limit]
	}
	return out
}
