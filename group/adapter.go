package group

import (
	"context"
	"time"

	"github.com/zeebo/errs/v2"

	"github.com/histdb/psrs/rwutils"
)

// Adapter runs collectives over typed slices, encoding each slice as one
// checksummed frame.
type Adapter[E any] struct {
	comm  Comm
	codec rwutils.Codec[E]
}

func NewAdapter[E any](comm Comm, codec rwutils.Codec[E]) Adapter[E] {
	return Adapter[E]{comm: comm, codec: codec}
}

func (a Adapter[E]) Rank() int { return a.comm.Rank() }
func (a Adapter[E]) Size() int { return a.comm.Size() }

func (a Adapter[E]) checkRoot(root int) error {
	if root < 0 || root >= a.comm.Size() {
		return errs.Errorf("%w: root %d out of range [0, %d)", ErrProtocol, root, a.comm.Size())
	}
	return nil
}

func (a Adapter[E]) encodeAll(chunks [][]E) ([][]byte, error) {
	if len(chunks) != a.comm.Size() {
		return nil, errs.Errorf("%w: %d chunks in a group of %d", ErrProtocol, len(chunks), a.comm.Size())
	}
	frames := make([][]byte, len(chunks))
	for i, chunk := range chunks {
		frames[i] = rwutils.Encode(a.codec, chunk)
	}
	return frames, nil
}

func (a Adapter[E]) decodeAll(frames [][]byte) ([][]E, error) {
	out := make([][]E, len(frames))
	for i, frame := range frames {
		x, err := rwutils.Decode(a.codec, frame)
		if err != nil {
			return nil, errs.Errorf("frame from rank %d: %w", i, err)
		}
		out[i] = x
	}
	return out, nil
}

// Scatter hands chunks[i] from root to member i. chunks is only read on
// root, where it must have exactly one entry per member.
func (a Adapter[E]) Scatter(ctx context.Context, root int, chunks [][]E) ([]E, error) {
	if err := a.checkRoot(root); err != nil {
		return nil, err
	}

	var frames [][]byte
	if a.comm.Rank() == root {
		var err error
		if frames, err = a.encodeAll(chunks); err != nil {
			return nil, err
		}
	}

	frame, err := a.comm.Scatter(ctx, root, frames)
	if err != nil {
		return nil, err
	}
	return rwutils.Decode(a.codec, frame)
}

// Gather collects every member's slice on root, indexed by rank. Every other
// member gets nil.
func (a Adapter[E]) Gather(ctx context.Context, root int, v []E) ([][]E, error) {
	if err := a.checkRoot(root); err != nil {
		return nil, err
	}

	frames, err := a.comm.Gather(ctx, root, rwutils.Encode(a.codec, v))
	if err != nil || a.comm.Rank() != root {
		return nil, err
	}
	return a.decodeAll(frames)
}

// Broadcast replicates root's slice to every member. v is only read on root.
func (a Adapter[E]) Broadcast(ctx context.Context, root int, v []E) ([]E, error) {
	if err := a.checkRoot(root); err != nil {
		return nil, err
	}

	var frame []byte
	if a.comm.Rank() == root {
		frame = rwutils.Encode(a.codec, v)
	}

	frame, err := a.comm.Bcast(ctx, root, frame)
	if err != nil {
		return nil, err
	}
	return rwutils.Decode(a.codec, frame)
}

// AllToAll sends chunks[i] to member i and returns what every member sent
// here, indexed by source rank.
func (a Adapter[E]) AllToAll(ctx context.Context, chunks [][]E) ([][]E, error) {
	frames, err := a.encodeAll(chunks)
	if err != nil {
		return nil, err
	}

	frames, err = a.comm.AllToAll(ctx, frames)
	if err != nil {
		return nil, err
	}
	return a.decodeAll(frames)
}

// BarrierWallClock waits for every member and then reads the group clock.
func (a Adapter[E]) BarrierWallClock(ctx context.Context) (time.Duration, error) {
	if err := a.comm.Barrier(ctx); err != nil {
		return 0, err
	}
	return a.comm.Wtime(), nil
}

func (a Adapter[E]) Wtime() time.Duration { return a.comm.Wtime() }
