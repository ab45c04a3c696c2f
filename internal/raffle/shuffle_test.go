package raffle

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestSelectLengthAndMembership(t *testing.T) {
	t.Parallel()
	src := NewSeeded(1, 2)
	for _, n := range []int{0, 1, 2, 5, 11, 12, 40, 200} {
		in := ints(n)
		got := Select(src, in, 11)

		want := n
		if want > 11 {
			want = 11
		}
		require.Len(t, got, want, "n=%d", n)

		seen := map[int]bool{}
		for _, v := range got {
			assert.False(t, seen[v], "duplicate %d (n=%d)", v, n)
			seen[v] = true
			assert.True(t, v >= 0 && v < n, "foreign element %d (n=%d)", v, n)
		}
	}
}

func TestSelectSmallInputKeepsEverything(t *testing.T) {
	t.Parallel()
	in := []string{"a", "b", "c", "d"}
	got := Select(NewSeeded(7, 7), in, 11)
	sorted := append([]string(nil), got...)
	sort.Strings(sorted)
	assert.Equal(t, in, sorted)
}

func TestSelectDefaultCap(t *testing.T) {
	t.Parallel()
	assert.Len(t, Select(NewSeeded(3, 4), ints(30), 0), DefaultMaxWinners)
}

func TestShuffleDoesNotModifyInput(t *testing.T) {
	t.Parallel()
	in := ints(20)
	_ = Shuffle(NewSeeded(5, 6), in)
	assert.Equal(t, ints(20), in)
}

type constSource float64

func (c constSource) Float64() float64 { return float64(c) }

func TestPickClampsToRange(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 4, pick(constSource(1.0), 2, 5))
	assert.Equal(t, 2, pick(constSource(0), 2, 5))

	// A source that always hits the top of the range must still produce a permutation.
	got := Shuffle(constSource(1.0), ints(5))
	sorted := append([]int(nil), got...)
	sort.Ints(sorted)
	assert.Equal(t, ints(5), sorted)
}

func TestShuffleUniformChiSquare(t *testing.T) {
	t.Parallel()
	const trials = 10000
	src := NewSeeded(20240301, 11)
	counts := map[string]int{}
	for i := 0; i < trials; i++ {
		counts[fmt.Sprint(Shuffle(src, []int{0, 1, 2}))]++
	}
	require.Len(t, counts, 6)

	expected := float64(trials) / 6
	chi := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	// df=5, p=0.01
	assert.Less(t, chi, 15.086, "counts=%v", counts)
}
