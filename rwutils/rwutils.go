package rwutils

import (
	"encoding/binary"
	"errors"
	"math/bits"

	"github.com/zeebo/errs/v2"
	"github.com/zeebo/xxh3"
)

var le = binary.LittleEndian

// ErrCorrupt is wrapped by every decoding failure.
var ErrCorrupt = errors.New("corrupt frame")

const sumSize = 8

// W builds a frame: a body followed by the little endian xxh3 hash of the
// body.
type W struct {
	buf []byte
}

func (w *W) Init(buf []byte) {
	*w = W{buf: buf[:0]}
}

// Done seals the frame and returns it. The W must be re-initialized before
// reuse.
func (w *W) Done() []byte {
	sum := xxh3.Hash(w.buf)
	w.buf = le.AppendUint64(w.buf, sum)
	return w.buf
}

func (w *W) Varint(x uint64) {
	var tmp [9]byte
	n := appendVarint(&tmp, x)
	w.buf = append(w.buf, tmp[:n]...)
}

func (w *W) Bytes(buf []byte) {
	w.buf = append(w.buf, buf...)
}

// R reads a frame written by W. Errors are sticky: once a read fails every
// later read returns the zero value.
type R struct {
	buf []byte
	err error
}

func (r *R) Init(frame []byte) {
	*r = R{}

	if len(frame) < sumSize {
		r.Invalid(errs.Errorf("%w: frame too short: %d bytes", ErrCorrupt, len(frame)))
		return
	}

	body, sum := frame[:len(frame)-sumSize], le.Uint64(frame[len(frame)-sumSize:])
	if got := xxh3.Hash(body); got != sum {
		r.Invalid(errs.Errorf("%w: checksum mismatch: %016x != %016x", ErrCorrupt, got, sum))
		return
	}

	r.buf = body
}

// Done returns the unread suffix of the body and the first error.
func (r *R) Done() ([]byte, error) {
	return r.buf, r.err
}

func (r *R) Remaining() int { return len(r.buf) }

func (r *R) Invalid(err error) {
	if r.err == nil {
		r.err = err
	}
	r.buf = nil
}

func (r *R) Varint() (x uint64) {
	if r.err == nil {
		var tmp [9]byte
		copy(tmp[:], r.buf)
		n, dec := consumeVarint(&tmp)
		if int(n) <= len(r.buf) {
			x = dec
			r.buf = r.buf[n:]
		} else {
			r.bad(int(n))
		}
	}
	return
}

func (r *R) Bytes(n int) (x []byte) {
	if r.err == nil {
		if n >= 0 && len(r.buf) >= n {
			x, r.buf = r.buf[:n:n], r.buf[n:]
		} else {
			r.bad(n)
		}
	}
	return
}

func (r *R) bad(n int) {
	r.Invalid(errs.Errorf("%w: short buffer: needed %d bytes", ErrCorrupt, n))
}

//
// prefix varint: the count of trailing ones in the first byte is the number
// of extra bytes. nine byte values are 0xff followed by the raw uint64.
//

func appendVarint(dst *[9]byte, val uint64) (nbytes uintptr) {
	nbytes = 575*uintptr(bits.Len64(val))/4096 + 1

	if nbytes < 9 {
		enc := val<<nbytes + 1<<((nbytes-1)&63) - 1
		le.PutUint64(dst[:], enc)
		return
	}

	dst[0] = 0xff
	le.PutUint64(dst[1:], val)
	return
}

func consumeVarint(src *[9]byte) (nbytes uintptr, dec uint64) {
	nbytes = uintptr(bits.TrailingZeros8(^src[0])) + 1

	if nbytes < 9 {
		dec = le.Uint64(src[:]) >> nbytes
		dec &= 1<<((8*nbytes-nbytes)&63) - 1
		return
	}

	dec = le.Uint64(src[1:])
	return
}
