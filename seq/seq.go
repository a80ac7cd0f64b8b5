// Package seq holds the process-local sequence operations of a regular
// sampling sort: splitting, sorting, sampling, pivot selection, bucketing and
// merging. None of them communicate.
package seq

import (
	"cmp"

	"github.com/histdb/psrs/mergeiter"
	"github.com/histdb/psrs/pdqsort"
)

// Sort sorts x in place in ascending order.
func Sort[E cmp.Ordered](x []E) { pdqsort.Slice(x) }

// Split cuts x into p contiguous chunks of ceil(len(x)/p) elements. Trailing
// chunks are short or empty when len(x) does not divide evenly. The chunks
// alias x.
func Split[E any](x []E, p int) [][]E {
	if p <= 0 {
		return nil
	}

	size := (len(x) + p - 1) / p
	out := make([][]E, p)
	for i := range out {
		lo, hi := min(i*size, len(x)), min((i+1)*size, len(x))
		out[i] = x[lo:hi:hi]
	}
	return out
}

// Samples returns up to p elements of sorted taken at a regular stride of
// max(1, len/p) starting at index 0. Fewer than p samples come back when
// sorted has fewer than p elements.
func Samples[E any](sorted []E, p int) []E {
	if p <= 0 || len(sorted) == 0 {
		return nil
	}

	step := max(len(sorted)/p, 1)
	out := make([]E, 0, min(p, len(sorted)))
	for i := 0; i < len(sorted) && len(out) < p; i += step {
		out = append(out, sorted[i])
	}
	return out
}

// Pivots picks at most p-1 boundary values from the union of every member's
// samples: the union is sorted and every p-th element starting at offset p is
// kept. Short sample sets yield fewer pivots.
func Pivots[E cmp.Ordered](samples [][]E, p int) []E {
	if p <= 1 {
		return nil
	}

	var all []E
	for _, s := range samples {
		all = append(all, s...)
	}
	Sort(all)

	out := make([]E, 0, p-1)
	for i := p; i < len(all) && len(out) < p-1; i += p {
		out = append(out, all[i])
	}
	return out
}

// Partition cuts sorted into len(pivots)+1 contiguous buckets. Bucket k holds
// the v with pivots[k-1] <= v < pivots[k]. The buckets alias sorted.
func Partition[E cmp.Ordered](sorted []E, pivots []E) [][]E {
	out := make([][]E, 0, len(pivots)+1)
	start := 0
	for _, pivot := range pivots {
		end := lowerBound(sorted, start, pivot)
		out = append(out, sorted[start:end:end])
		start = end
	}
	return append(out, sorted[start:])
}

// lowerBound returns the first index i >= lo with x[i] >= v.
func lowerBound[E cmp.Ordered](x []E, lo int, v E) int {
	hi := len(x)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if cmp.Less(x[mid], v) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// Merge returns a single sorted slice holding every element of the already
// sorted segments.
func Merge[E cmp.Ordered](segments [][]E) []E {
	switch len(segments) {
	case 0:
		return nil
	case 1:
		return append([]E(nil), segments[0]...)
	}
	return mergeiter.Slices(segments)
}

// Concat joins xs in order.
func Concat[E any](xs [][]E) []E {
	n := 0
	for _, x := range xs {
		n += len(x)
	}
	out := make([]E, 0, n)
	for _, x := range xs {
		out = append(out, x...)
	}
	return out
}

// IsSorted reports whether x is non-decreasing.
func IsSorted[E cmp.Ordered](x []E) bool { return pdqsort.IsSorted(x) }
