package testhelp

import (
	"slices"

	"github.com/zeebo/mwc"
)

var intRng = mwc.Rand()

// Ints returns n random values in [0, mod).
func Ints(n int, mod uint64) []int64 {
	x := make([]int64, n)
	for i := range x {
		x[i] = int64(intRng.Uint64n(mod))
	}
	return x
}

// SeededInts is Ints with a fixed seed so failures reproduce.
func SeededInts(n int, seed, mod uint64) []int64 {
	rng := mwc.New(seed, seed)
	x := make([]int64, n)
	for i := range x {
		x[i] = int64(rng.Uint64n(mod))
	}
	return x
}

// Sorted returns a sorted copy of x.
func Sorted(x []int64) []int64 {
	y := slices.Clone(x)
	slices.Sort(y)
	return y
}
