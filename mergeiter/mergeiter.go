package mergeiter

import (
	"cmp"
	"math/bits"
)

type Iterator[E any] interface {
	Next() bool
	Key() E
	Err() error
}

// T merges sorted iterators with a tournament tree. Equal keys come out in
// iterator order.
type T[E cmp.Ordered] struct {
	_ [0]func() // no equality

	iters []Iterator[E]
	trn   []int
	win   int
	first bool
	err   error
}

func (m *T[E]) Init(iters []Iterator[E]) {
	if len(iters) == 0 {
		*m = T[E]{trn: m.trn[:0]}
		return
	}

	leaves := 1 << uint(bits.Len(uint(len(iters)-1)))
	trn := append(m.trn[:0], make([]int, leaves-1)...)
	wins := make([]int, 2*leaves-1)

	for i := range wins {
		wins[i] = i

		if uint(i) < uint(len(iters)) {
			if iter := iters[i]; !iter.Next() {
				if m.err = iter.Err(); m.err != nil {
					return
				}
				iters[i] = nil
			}
		}
	}

	for i := range trn {
		l, r := wins[2*i], wins[2*i+1]

		if uint(l) >= uint(len(iters)) || iters[l] == nil {
			goto noSwap
		} else if uint(r) >= uint(len(iters)) || iters[r] == nil {
			// swap
		} else if c := cmp.Compare(iters[l].Key(), iters[r].Key()); c < 0 || (c == 0 && l < r) {
			// swap
		} else {
			goto noSwap
		}

		r, l = l, r

	noSwap:
		trn[i] = l
		wins[leaves+i] = r
	}

	*m = T[E]{
		iters: iters,
		trn:   trn,
		win:   wins[len(wins)-1],
	}
}

func (m *T[E]) Err() error { return m.err }

func (m *T[E]) Key() (k E) {
	if uint(m.win) < uint(len(m.iters)) && m.iters[m.win] != nil {
		k = m.iters[m.win].Key()
	}
	return
}

func (m *T[E]) Next() bool {
	if m.err != nil {
		return false
	}

	iters, trn, win := m.iters, m.trn, m.win

	if uint(win) >= uint(len(iters)) || iters[win] == nil {
		return false
	}

	if !m.first {
		m.first = true
		return true
	}

	var wkey E

	if iter := iters[win]; !iter.Next() {
		if m.err = iter.Err(); m.err != nil {
			return false
		}
		iters[win] = nil
	} else {
		wkey = iter.Key()
	}

	offset := (len(trn) + 1) / 2
	for idx := win / 2; uint(idx) < uint(len(trn)); idx = offset + idx/2 {
		var ckey E
		chal := trn[idx]

		if uint(chal) >= uint(len(iters)) || iters[chal] == nil {
			goto noSwap
		} else if ckey = iters[chal].Key(); uint(win) >= uint(len(iters)) || iters[win] == nil {
			// swap
		} else if c := cmp.Compare(ckey, wkey); c < 0 || (c == 0 && chal < win) {
			// swap
		} else {
			goto noSwap
		}

		trn[idx], win, wkey = win, chal, ckey

	noSwap:
	}

	m.win = win

	return uint(win) < uint(len(iters)) && iters[win] != nil
}

//
// slice iterators
//

type Slice[E any] struct {
	x   []E
	pos int
}

func NewSlice[E any](x []E) *Slice[E] { return &Slice[E]{x: x, pos: -1} }

func (s *Slice[E]) Err() error { return nil }
func (s *Slice[E]) Key() E     { return s.x[s.pos] }

func (s *Slice[E]) Next() bool {
	if s.pos < len(s.x) {
		s.pos++
	}
	return s.pos < len(s.x)
}

// Slices merges already sorted slices into one freshly allocated slice. It
// returns nil when there is nothing to merge.
func Slices[E cmp.Ordered](xs [][]E) []E {
	n := 0
	iters := make([]Iterator[E], len(xs))
	for i, x := range xs {
		n += len(x)
		iters[i] = NewSlice(x)
	}
	if n == 0 {
		return nil
	}

	out := make([]E, 0, n)

	var m T[E]
	for m.Init(iters); m.Next(); {
		out = append(out, m.Key())
	}
	return out
}
