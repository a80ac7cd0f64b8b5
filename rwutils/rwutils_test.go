package rwutils

import (
	"errors"
	"math"
	"testing"

	"github.com/zeebo/assert"
	"github.com/zeebo/mwc"
)

func testRoundTrip[T any](
	t *testing.T,
	write func(*W, T),
	read func(*R) T,
	gen func(*mwc.T) T,
) {
	var (
		rng = mwc.Rand()
		w   W
		r   R
		vs  []T
	)

	w.Init(nil)
	for i := 0; i < 100; i++ {
		v := gen(rng)
		write(&w, v)
		vs = append(vs, v)
	}

	r.Init(w.Done())
	for _, v := range vs {
		assert.Equal(t, read(&r), v)
	}
	rest, err := r.Done()
	assert.NoError(t, err)
	assert.Equal(t, len(rest), 0)
}

func TestReadWriter(t *testing.T) {
	t.Run("Varint", func(t *testing.T) {
		testRoundTrip(t, (*W).Varint, (*R).Varint, func(rng *mwc.T) uint64 {
			return rng.Uint64n(1 << rng.Uint64n(64))
		})
	})

	t.Run("VarintEdges", func(t *testing.T) {
		edges := []uint64{0, 1, 127, 128, 1<<56 - 1, 1 << 56, 1<<63 - 1, math.MaxUint64}
		var w W
		w.Init(nil)
		for _, v := range edges {
			w.Varint(v)
		}
		var r R
		r.Init(w.Done())
		for _, v := range edges {
			assert.Equal(t, r.Varint(), v)
		}
		_, err := r.Done()
		assert.NoError(t, err)
	})

	t.Run("I64", func(t *testing.T) {
		testRoundTrip(t, I64{}.Append, I64{}.Read, func(rng *mwc.T) int64 {
			return int64(rng.Uint64()) >> rng.Uint64n(64)
		})
	})

	t.Run("Str", func(t *testing.T) {
		testRoundTrip(t, Str{}.Append, Str{}.Read, func(rng *mwc.T) string {
			b := make([]byte, rng.Uint64n(40))
			for i := range b {
				b[i] = byte(rng.Uint64())
			}
			return string(b)
		})
	})
}

func TestFrame(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		xs := []int64{math.MinInt64, -1, 0, 1, math.MaxInt64, 10_000_000}
		got, err := Decode(I64{}, Encode(I64{}, xs))
		assert.NoError(t, err)
		assert.DeepEqual(t, got, xs)
	})

	t.Run("Empty", func(t *testing.T) {
		got, err := Decode(U64{}, Encode[uint64](U64{}, nil))
		assert.NoError(t, err)
		assert.Equal(t, len(got), 0)
	})

	t.Run("BitFlip", func(t *testing.T) {
		frame := Encode(I64{}, []int64{1, 2, 3})
		frame[1] ^= 0x10
		_, err := Decode(I64{}, frame)
		assert.That(t, errors.Is(err, ErrCorrupt))
	})

	t.Run("Short", func(t *testing.T) {
		_, err := Decode(I64{}, []byte{1, 2})
		assert.That(t, errors.Is(err, ErrCorrupt))
	})

	t.Run("Trailing", func(t *testing.T) {
		var w W
		w.Init(nil)
		AppendSlice(&w, I64{}, []int64{5})
		w.Varint(7)
		_, err := Decode(I64{}, w.Done())
		assert.That(t, errors.Is(err, ErrCorrupt))
	})

	t.Run("HugeCount", func(t *testing.T) {
		var w W
		w.Init(nil)
		w.Varint(1 << 40)
		_, err := Decode(I64{}, w.Done())
		assert.That(t, errors.Is(err, ErrCorrupt))
	})
}
