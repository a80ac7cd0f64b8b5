package group

import (
	"context"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/zeebo/errs/v2"
	"go.uber.org/zap"
)

type op uint8

const (
	opScatter op = iota + 1
	opGather
	opBcast
	opAllToAll
	opBarrier
)

func (o op) String() string {
	switch o {
	case opScatter:
		return "scatter"
	case opGather:
		return "gather"
	case opBcast:
		return "bcast"
	case opAllToAll:
		return "alltoall"
	case opBarrier:
		return "barrier"
	default:
		return "unknown"
	}
}

// round is the rendezvous state of one collective. send[src][dst] is the
// frame src addressed to dst, nil when nothing was sent.
type round struct {
	op      op
	root    int
	arrived *roaring.Bitmap
	send    [][][]byte
	done    chan struct{}
	closed  bool
	err     error
}

func (r *round) finish(err error) {
	if r.closed {
		return
	}
	r.err = err
	r.closed = true
	close(r.done)
}

// Hub is an in-process group substrate. Each member runs on its own
// goroutine and every frame is copied on the way through, so members share
// no memory.
type Hub struct {
	size  int
	start time.Time
	log   *zap.Logger

	mu     sync.Mutex
	rounds map[uint64]*round
	err    error
}

// New returns a hub for size members. A nil logger disables logging.
func New(size int, log *zap.Logger) (*Hub, error) {
	if size <= 0 {
		return nil, errs.Errorf("%w: group size must be positive: %d", ErrProtocol, size)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		size:   size,
		start:  time.Now(),
		log:    log,
		rounds: make(map[uint64]*round),
	}, nil
}

func (h *Hub) Size() int { return h.size }

// Member returns the Comm for rank. It must be called once per rank.
func (h *Hub) Member(rank int) Comm {
	return &member{hub: h, rank: rank}
}

// enter records the arrival of rank in collective number seq and returns
// the round to wait on.
func (h *Hub) enter(seq uint64, o op, root, rank int, send [][]byte) (*round, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.err != nil {
		return nil, h.err
	}

	r := h.rounds[seq]
	if r == nil {
		r = &round{
			op:      o,
			root:    root,
			arrived: roaring.New(),
			send:    make([][][]byte, h.size),
			done:    make(chan struct{}),
		}
		h.rounds[seq] = r
	}

	if r.op != o || r.root != root {
		err := errs.Errorf("%w: rank %d entered %s(root=%d) during %s(root=%d)",
			ErrProtocol, rank, o, root, r.op, r.root)
		h.log.Error("collective mismatch", zap.Uint64("seq", seq), zap.Error(err))
		h.fail(err)
		return nil, err
	}

	if !r.arrived.CheckedAdd(uint32(rank)) {
		err := errs.Errorf("%w: rank %d entered %s twice", ErrProtocol, rank, o)
		h.fail(err)
		return nil, err
	}

	if send != nil {
		out := make([][]byte, h.size)
		for dst, frame := range send {
			if frame != nil {
				out[dst] = append([]byte(nil), frame...)
			}
		}
		r.send[rank] = out
	}

	if r.arrived.GetCardinality() == uint64(h.size) {
		delete(h.rounds, seq)
		r.finish(nil)
	}

	return r, nil
}

// fail breaks the group: every pending round is released with err and
// every later collective returns it. Called with mu held.
func (h *Hub) fail(err error) {
	h.err = err
	for seq, r := range h.rounds {
		delete(h.rounds, seq)
		r.finish(err)
	}
}

type member struct {
	hub  *Hub
	rank int
	seq  uint64
}

func (m *member) Rank() int            { return m.rank }
func (m *member) Size() int            { return m.hub.size }
func (m *member) Wtime() time.Duration { return time.Since(m.hub.start) }

// exchange is the one primitive behind every collective: each member
// addresses frames to destinations and receives what was addressed to it,
// indexed by source.
func (m *member) exchange(ctx context.Context, o op, root int, send [][]byte) ([][]byte, error) {
	if root < 0 || root >= m.hub.size {
		return nil, errs.Errorf("%w: %s root %d out of range [0, %d)", ErrProtocol, o, root, m.hub.size)
	}
	if send != nil && len(send) != m.hub.size {
		return nil, errs.Errorf("%w: %s with %d chunks in a group of %d", ErrProtocol, o, len(send), m.hub.size)
	}

	if err := ctx.Err(); err != nil {
		return nil, errs.Errorf("rank %d entering %s: %w", m.rank, o, err)
	}

	seq := m.seq
	m.seq++

	r, err := m.hub.enter(seq, o, root, m.rank, send)
	if err != nil {
		return nil, err
	}

	select {
	case <-r.done:
	case <-ctx.Done():
		return nil, errs.Errorf("rank %d waiting in %s: %w", m.rank, o, ctx.Err())
	}

	if r.err != nil {
		return nil, r.err
	}

	recv := make([][]byte, m.hub.size)
	for src, out := range r.send {
		if out != nil {
			recv[src] = out[m.rank]
		}
	}
	return recv, nil
}

func (m *member) Scatter(ctx context.Context, root int, chunks [][]byte) ([]byte, error) {
	var send [][]byte
	if m.rank == root {
		if len(chunks) != m.hub.size {
			return nil, errs.Errorf("%w: scatter of %d chunks in a group of %d", ErrProtocol, len(chunks), m.hub.size)
		}
		send = chunks
	}
	recv, err := m.exchange(ctx, opScatter, root, send)
	if err != nil {
		return nil, err
	}
	return recv[root], nil
}

func (m *member) Gather(ctx context.Context, root int, frame []byte) ([][]byte, error) {
	if root < 0 || root >= m.hub.size {
		return nil, errs.Errorf("%w: gather root %d out of range [0, %d)", ErrProtocol, root, m.hub.size)
	}
	send := make([][]byte, m.hub.size)
	send[root] = frame
	recv, err := m.exchange(ctx, opGather, root, send)
	if err != nil || m.rank != root {
		return nil, err
	}
	return recv, nil
}

func (m *member) Bcast(ctx context.Context, root int, frame []byte) ([]byte, error) {
	var send [][]byte
	if m.rank == root {
		send = make([][]byte, m.hub.size)
		for i := range send {
			send[i] = frame
		}
	}
	recv, err := m.exchange(ctx, opBcast, root, send)
	if err != nil {
		return nil, err
	}
	return recv[root], nil
}

func (m *member) AllToAll(ctx context.Context, chunks [][]byte) ([][]byte, error) {
	if len(chunks) != m.hub.size {
		return nil, errs.Errorf("%w: alltoall of %d chunks in a group of %d", ErrProtocol, len(chunks), m.hub.size)
	}
	return m.exchange(ctx, opAllToAll, 0, chunks)
}

func (m *member) Barrier(ctx context.Context) error {
	_, err := m.exchange(ctx, opBarrier, 0, nil)
	return err
}
