package rwutils

import (
	"github.com/zeebo/errs/v2"
)

// Codec writes and reads single elements of a frame body.
type Codec[E any] interface {
	Append(w *W, v E)
	Read(r *R) E
}

// I64 zigzag encodes signed values as varints.
type I64 struct{}

func (I64) Append(w *W, v int64) { w.Varint(uint64(v<<1) ^ uint64(v>>63)) }
func (I64) Read(r *R) int64 {
	u := r.Varint()
	return int64(u>>1) ^ -int64(u&1)
}

type U64 struct{}

func (U64) Append(w *W, v uint64) { w.Varint(v) }
func (U64) Read(r *R) uint64      { return r.Varint() }

// Str length prefixes strings.
type Str struct{}

func (Str) Append(w *W, v string) {
	w.Varint(uint64(len(v)))
	w.Bytes([]byte(v))
}

func (Str) Read(r *R) string {
	n := r.Varint()
	if n > uint64(r.Remaining()) {
		r.bad(int(min(n, 1<<31)))
		return ""
	}
	return string(r.Bytes(int(n)))
}

//
// slices
//

func AppendSlice[E any](w *W, c Codec[E], xs []E) {
	w.Varint(uint64(len(xs)))
	for _, x := range xs {
		c.Append(w, x)
	}
}

func ReadSlice[E any](r *R, c Codec[E]) []E {
	n := r.Varint()
	// every element takes at least one byte
	if n > uint64(r.Remaining()) {
		r.Invalid(errs.Errorf("%w: slice of %d elements in %d bytes", ErrCorrupt, n, r.Remaining()))
		return nil
	}

	out := make([]E, n)
	for i := range out {
		out[i] = c.Read(r)
	}
	return out
}

// Encode returns a sealed frame holding xs.
func Encode[E any](c Codec[E], xs []E) []byte {
	var w W
	w.Init(make([]byte, 0, 9+len(xs)*2+sumSize))
	AppendSlice(&w, c, xs)
	return w.Done()
}

// Decode reads a frame written by Encode. Trailing bytes are an error.
func Decode[E any](c Codec[E], frame []byte) ([]E, error) {
	var r R
	r.Init(frame)
	out := ReadSlice(&r, c)
	rest, err := r.Done()
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, errs.Errorf("%w: trailing data: %d bytes", ErrCorrupt, len(rest))
	}
	return out, nil
}
