package pdqsort

import (
	"slices"
	"testing"

	"github.com/aclements/go-perfevent/perfbench"
	"github.com/zeebo/assert"
	"github.com/zeebo/mwc"
)

func TestSlice(t *testing.T) {
	check := func(t *testing.T, x []int64) {
		exp := slices.Clone(x)
		slices.Sort(exp)
		Slice(x)
		assert.That(t, IsSorted(x))
		assert.DeepEqual(t, x, exp)
	}

	t.Run("Empty", func(t *testing.T) {
		var x []int64
		Slice(x)
		assert.Equal(t, len(x), 0)
		assert.That(t, IsSorted(x))
	})

	t.Run("Single", func(t *testing.T) {
		check(t, []int64{7})
	})

	t.Run("Patterns", func(t *testing.T) {
		for _, n := range []int{2, 11, 12, 13, 49, 50, 51, 1000} {
			inc := make([]int64, n)
			dec := make([]int64, n)
			dup := make([]int64, n)
			saw := make([]int64, n)
			for i := range inc {
				inc[i] = int64(i)
				dec[i] = int64(n - i)
				dup[i] = int64(i % 3)
				saw[i] = int64(i % 17)
			}
			check(t, inc)
			check(t, dec)
			check(t, dup)
			check(t, saw)
		}
	})

	t.Run("Fuzz", func(t *testing.T) {
		rng := mwc.Rand()
		for c := 0; c < 1000; c++ {
			x := make([]int64, rng.Uint64n(512))
			mod := 1 + rng.Uint64n(1<<rng.Uint64n(20))
			for i := range x {
				x[i] = int64(rng.Uint64n(mod))
			}
			check(t, x)
		}
	})

	t.Run("Strings", func(t *testing.T) {
		x := []string{"pear", "apple", "fig", "", "apple", "banana"}
		Slice(x)
		assert.DeepEqual(t, x, []string{"", "apple", "apple", "banana", "fig", "pear"})
	})
}

func BenchmarkSlice(b *testing.B) {
	run := func(b *testing.B, n int) {
		rng := mwc.Rand()
		src := make([]int64, n)
		for i := range src {
			src[i] = int64(rng.Uint64())
		}
		x := make([]int64, n)

		perfbench.Open(b)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			copy(x, src)
			Slice(x)
		}

		b.ReportMetric(float64(b.Elapsed().Nanoseconds())/float64(b.N*n), "ns/elem")
	}

	b.Run("1K", func(b *testing.B) { run(b, 1<<10) })
	b.Run("64K", func(b *testing.B) { run(b, 1<<16) })
	b.Run("1M", func(b *testing.B) { run(b, 1<<20) })
}
