// Copyright 2009 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the Go LICENSE file.

package pdqsort

import (
	"cmp"
	"math/bits"
)

func Slice[S ~[]E, E cmp.Ordered](x S) {
	pdqsort(x, 0, len(x), bits.Len(uint(len(x))))
}

func IsSorted[S ~[]E, E cmp.Ordered](x S) bool {
	for i := len(x) - 1; i > 0; i-- {
		if cmp.Less(x[i], x[i-1]) {
			return false
		}
	}
	return true
}

//
//
//

type sortedHint int // hint for pdqsort when choosing the pivot

const (
	unknownHint sortedHint = iota
	increasingHint
	decreasingHint
)

// xorshift paper: https://www.jstatsoft.org/article/view/v008i14/xorshift.pdf
type xorshift uint64

func (r *xorshift) Next() uint64 {
	*r ^= *r << 13
	*r ^= *r >> 17
	*r ^= *r << 5
	return uint64(*r)
}

func nextPowerOfTwo(length int) uint {
	return uint(1 << uint(bits.Len(uint(length))))
}

func insertionSort[E cmp.Ordered](x []E, a, b int) {
	for i := a + 1; i < b; i++ {
		for j := i; j > a && cmp.Less(x[j], x[j-1]); j-- {
			x[j], x[j-1] = x[j-1], x[j]
		}
	}
}

func siftDown[E cmp.Ordered](x []E, lo, hi, first int) {
	root := lo
	for {
		child := 2*root + 1
		if child >= hi {
			return
		}
		if child+1 < hi && cmp.Less(x[first+child], x[first+child+1]) {
			child++
		}
		if !cmp.Less(x[first+root], x[first+child]) {
			return
		}
		x[first+root], x[first+child] = x[first+child], x[first+root]
		root = child
	}
}

func heapSort[E cmp.Ordered](x []E, a, b int) {
	first, hi := a, b-a

	for i := (hi - 1) / 2; i >= 0; i-- {
		siftDown(x, i, hi, first)
	}

	for i := hi - 1; i >= 0; i-- {
		x[first], x[first+i] = x[first+i], x[first]
		siftDown(x, 0, i, first)
	}
}

// pdqsort sorts x[a:b]. limit is the number of allowed bad (very unbalanced)
// pivots before falling back to heapsort.
// pdqsort paper: https://arxiv.org/pdf/2106.05123.pdf
func pdqsort[E cmp.Ordered](x []E, a, b, limit int) {
	const maxInsertion = 12

	var (
		wasBalanced    = true
		wasPartitioned = true
	)

	for {
		length := b - a

		if length <= maxInsertion {
			insertionSort(x, a, b)
			return
		}

		if limit == 0 {
			heapSort(x, a, b)
			return
		}

		if !wasBalanced {
			breakPatterns(x, a, b)
			limit--
		}

		pivot, hint := choosePivot(x, a, b)
		if hint == decreasingHint {
			reverseRange(x, a, b)
			pivot = (b - 1) - (pivot - a)
			hint = increasingHint
		}

		if wasBalanced && wasPartitioned && hint == increasingHint {
			if partialInsertionSort(x, a, b) {
				return
			}
		}

		// lots of duplicates: everything left of a is <= pivot, so split off
		// the run equal to it.
		if a > 0 && !cmp.Less(x[a-1], x[pivot]) {
			a = partitionEqual(x, a, b, pivot)
			continue
		}

		mid, alreadyPartitioned := partition(x, a, b, pivot)
		wasPartitioned = alreadyPartitioned

		leftLen, rightLen := mid-a, b-mid
		balanceThreshold := length / 8
		if leftLen < rightLen {
			wasBalanced = leftLen >= balanceThreshold
			pdqsort(x, a, mid, limit)
			a = mid + 1
		} else {
			wasBalanced = rightLen >= balanceThreshold
			pdqsort(x, mid+1, b, limit)
			b = mid
		}
	}
}

// partition moves x[a:b] around the pivot so that x[i] < p for i < newpivot
// and x[j] >= p for j > newpivot.
func partition[E cmp.Ordered](x []E, a, b, pivot int) (newpivot int, alreadyPartitioned bool) {
	x[a], x[pivot] = x[pivot], x[a]
	i, j := a+1, b-1

	for i <= j && cmp.Less(x[i], x[a]) {
		i++
	}
	for i <= j && !cmp.Less(x[j], x[a]) {
		j--
	}
	if i > j {
		x[j], x[a] = x[a], x[j]
		return j, true
	}
	x[i], x[j] = x[j], x[i]
	i++
	j--

	for {
		for i <= j && cmp.Less(x[i], x[a]) {
			i++
		}
		for i <= j && !cmp.Less(x[j], x[a]) {
			j--
		}
		if i > j {
			break
		}
		x[i], x[j] = x[j], x[i]
		i++
		j--
	}
	x[j], x[a] = x[a], x[j]
	return j, false
}

// partitionEqual assumes x[a:b] has nothing smaller than x[pivot].
func partitionEqual[E cmp.Ordered](x []E, a, b, pivot int) (newpivot int) {
	x[a], x[pivot] = x[pivot], x[a]
	i, j := a+1, b-1

	for {
		for i <= j && !cmp.Less(x[a], x[i]) {
			i++
		}
		for i <= j && cmp.Less(x[a], x[j]) {
			j--
		}
		if i > j {
			break
		}
		x[i], x[j] = x[j], x[i]
		i++
		j--
	}
	return i
}

func partialInsertionSort[E cmp.Ordered](x []E, a, b int) bool {
	const (
		maxSteps         = 5
		shortestShifting = 50
	)
	i := a + 1
	for range maxSteps {
		for i < b && !cmp.Less(x[i], x[i-1]) {
			i++
		}

		if i == b {
			return true
		}

		if b-a < shortestShifting {
			return false
		}

		x[i], x[i-1] = x[i-1], x[i]

		if i-a >= 2 {
			for j := i - 1; j >= 1; j-- {
				if !cmp.Less(x[j], x[j-1]) {
					break
				}
				x[j], x[j-1] = x[j-1], x[j]
			}
		}
		if b-i >= 2 {
			for j := i + 1; j < b; j++ {
				if !cmp.Less(x[j], x[j-1]) {
					break
				}
				x[j], x[j-1] = x[j-1], x[j]
			}
		}
	}
	return false
}

func breakPatterns[E cmp.Ordered](x []E, a, b int) {
	length := b - a
	if length < 8 {
		return
	}

	random := xorshift(length)
	modulus := nextPowerOfTwo(length)

	for idx := a + (length/4)*2 - 1; idx <= a+(length/4)*2+1; idx++ {
		other := int(uint(random.Next()) & (modulus - 1))
		if other >= length {
			other -= length
		}
		x[idx], x[a+other] = x[a+other], x[idx]
	}
}

// choosePivot uses a static pivot below 8 elements, median of three below
// 50, and the Tukey ninther above that.
func choosePivot[E cmp.Ordered](x []E, a, b int) (pivot int, hint sortedHint) {
	const (
		shortestNinther = 50
		maxSwaps        = 4 * 3
	)

	l := b - a

	var (
		swaps int
		i     = a + l/4*1
		j     = a + l/4*2
		k     = a + l/4*3
	)

	if l >= 8 {
		if l >= shortestNinther {
			i = median(x, i-1, i, i+1, &swaps)
			j = median(x, j-1, j, j+1, &swaps)
			k = median(x, k-1, k, k+1, &swaps)
		}
		j = median(x, i, j, k, &swaps)
	}

	switch swaps {
	case 0:
		return j, increasingHint
	case maxSwaps:
		return j, decreasingHint
	default:
		return j, unknownHint
	}
}

func order2[E cmp.Ordered](x []E, a, b int, swaps *int) (int, int) {
	if cmp.Less(x[b], x[a]) {
		*swaps++
		return b, a
	}
	return a, b
}

func median[E cmp.Ordered](x []E, a, b, c int, swaps *int) int {
	a, b = order2(x, a, b, swaps)
	b, _ = order2(x, b, c, swaps)
	_, b = order2(x, a, b, swaps)
	return b
}

func reverseRange[E cmp.Ordered](x []E, a, b int) {
	for i, j := a, b-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}
