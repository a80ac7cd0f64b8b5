// Package psrs implements Parallel Sorting by Regular Sampling. Every member
// of a process group runs the same Sorter; the member whose rank is the root
// also distributes the input, picks the pivots and collects the output.
package psrs

import (
	"cmp"
	"context"
	"time"

	"github.com/zeebo/errs/v2"
	"go.uber.org/zap"

	"github.com/histdb/psrs/group"
	"github.com/histdb/psrs/seq"
)

type Phase int

const (
	Distribute Phase = iota
	LocalSort
	Sample
	CollectSamples
	SelectPivots
	BroadcastPivots
	Bucket
	Exchange
	Merge
	Collect

	NumPhases = int(Collect) + 1
)

func (p Phase) String() string {
	switch p {
	case Distribute:
		return "distribute"
	case LocalSort:
		return "local-sort"
	case Sample:
		return "sample"
	case CollectSamples:
		return "collect-samples"
	case SelectPivots:
		return "select-pivots"
	case BroadcastPivots:
		return "broadcast-pivots"
	case Bucket:
		return "bucket"
	case Exchange:
		return "exchange"
	case Merge:
		return "merge"
	case Collect:
		return "collect"
	default:
		return "unknown"
	}
}

// Stats describes one member's share of a run.
type Stats struct {
	Partition int   // elements received at distribution
	Samples   int   // samples contributed
	Pivots    int   // pivots in effect
	Sent      []int // bucket sizes, indexed by destination rank
	Final     int   // elements after the merge
	Durations [NumPhases]time.Duration
}

// Sorter drives the phases of one sort for one member.
type Sorter[E cmp.Ordered] struct {
	comm group.Adapter[E]
	root int
	log  *zap.Logger

	Stats Stats
}

// NewSorter returns a Sorter for the member behind comm. A nil logger
// disables logging.
func NewSorter[E cmp.Ordered](comm group.Adapter[E], root int, log *zap.Logger) *Sorter[E] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sorter[E]{
		comm: comm,
		root: root,
		log:  log.With(zap.Int("rank", comm.Rank())),
	}
}

func (s *Sorter[E]) Coordinator() bool { return s.comm.Rank() == s.root }

// Sort runs every phase. global is only read on the coordinator, which gets
// the fully sorted output back. Every other member gets nil.
func (s *Sorter[E]) Sort(ctx context.Context, global []E) (out []E, err error) {
	coord := s.Coordinator()
	p := s.comm.Size()

	var (
		local   []E
		samples []E
		all     [][]E
		pivots  []E
		buckets [][]E
		recv    [][]E
		final   []E
	)

	steps := [NumPhases]func() error{
		Distribute: func() (err error) {
			local, err = s.distribute(ctx, coord, global)
			return err
		},
		LocalSort: func() error {
			seq.Sort(local)
			return nil
		},
		Sample: func() error {
			samples = seq.Samples(local, p)
			return nil
		},
		CollectSamples: func() (err error) {
			all, err = s.comm.Gather(ctx, s.root, samples)
			return err
		},
		SelectPivots: func() error {
			pivots = s.selectPivots(coord, all)
			return nil
		},
		BroadcastPivots: func() (err error) {
			pivots, err = s.comm.Broadcast(ctx, s.root, pivots)
			return err
		},
		Bucket: func() error {
			buckets = s.bucket(local, pivots)
			return nil
		},
		Exchange: func() (err error) {
			recv, err = s.comm.AllToAll(ctx, buckets)
			return err
		},
		Merge: func() error {
			final = seq.Merge(recv)
			return nil
		},
		Collect: func() (err error) {
			out, err = s.collect(ctx, coord, final)
			return err
		},
	}

	for phase, step := range steps {
		start := time.Now()
		if err := step(); err != nil {
			return nil, errs.Errorf("rank %d: %v: %w", s.comm.Rank(), Phase(phase), err)
		}
		s.Stats.Durations[phase] = time.Since(start)
		s.log.Debug("phase done",
			zap.Stringer("phase", Phase(phase)),
			zap.Duration("took", s.Stats.Durations[phase]))
	}

	s.Stats.Partition = len(local)
	s.Stats.Samples = len(samples)
	s.Stats.Pivots = len(pivots)
	s.Stats.Final = len(final)
	s.Stats.Sent = s.Stats.Sent[:0]
	for _, b := range buckets {
		s.Stats.Sent = append(s.Stats.Sent, len(b))
	}

	s.log.Debug("sorted",
		zap.Int("partition", s.Stats.Partition),
		zap.Int("pivots", s.Stats.Pivots),
		zap.Ints("sent", s.Stats.Sent),
		zap.Int("final", s.Stats.Final))

	return out, nil
}

// distribute cuts the global sequence into one contiguous chunk per member
// on the coordinator and scatters it.
func (s *Sorter[E]) distribute(ctx context.Context, coord bool, global []E) ([]E, error) {
	var chunks [][]E
	if coord {
		chunks = seq.Split(global, s.comm.Size())
	}
	return s.comm.Scatter(ctx, s.root, chunks)
}

func (s *Sorter[E]) selectPivots(coord bool, samples [][]E) []E {
	if !coord {
		return nil
	}
	return seq.Pivots(samples, s.comm.Size())
}

// bucket partitions the sorted local data by the pivots. Fewer pivots than
// members leave the trailing members with empty buckets.
func (s *Sorter[E]) bucket(sorted, pivots []E) [][]E {
	buckets := seq.Partition(sorted, pivots)
	for len(buckets) < s.comm.Size() {
		buckets = append(buckets, nil)
	}
	return buckets
}

// collect gathers every member's final run on the coordinator and joins them
// in rank order.
func (s *Sorter[E]) collect(ctx context.Context, coord bool, final []E) ([]E, error) {
	runs, err := s.comm.Gather(ctx, s.root, final)
	if err != nil || !coord {
		return nil, err
	}
	return seq.Concat(runs), nil
}
