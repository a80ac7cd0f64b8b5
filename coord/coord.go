// Package coord runs a complete verified sort: the coordinator generates the
// input and a reference answer, the group sorts, and the coordinator checks
// the result and times the run.
package coord

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/zeebo/errs/v2"
	"github.com/zeebo/mwc"
	"go.uber.org/zap"

	"github.com/histdb/psrs"
	"github.com/histdb/psrs/group"
	"github.com/histdb/psrs/rwutils"
)

// MaxValue bounds generated elements: values are uniform in [0, MaxValue].
const MaxValue = 10_000_000

// Generate returns n pseudo random elements. The same seed always yields the
// same sequence.
func Generate(n int, seed uint64) []int64 {
	rng := mwc.New(seed, seed^0x9e3779b97f4a7c15)
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(rng.Uint64n(MaxValue + 1))
	}
	return out
}

// Reference sorts a copy of global without going through any of the group
// code.
func Reference(global []int64) []int64 {
	ref := slices.Clone(global)
	slices.Sort(ref)
	return ref
}

// Verify reports whether out equals ref element by element.
func Verify(out, ref []int64) bool {
	if len(out) != len(ref) {
		return false
	}
	for i := range out {
		if out[i] != ref[i] {
			return false
		}
	}
	return true
}

// Report is the outcome of one run.
type Report struct {
	Procs   int
	Length  int
	Elapsed time.Duration
	Correct bool
	Output  []int64
}

// String is the single line result consumed by benchmark harnesses:
// seconds and the correctness flag, space separated.
func (r Report) String() string {
	flag := "False"
	if r.Correct {
		flag = "True"
	}
	return strconv.FormatFloat(r.Elapsed.Seconds(), 'g', -1, 64) + " " + flag
}

// Run validates cfg, prepares the input and the reference answer, and sorts
// over an in-process group of cfg.Procs members. A wrong answer is reported
// through Report.Correct, not as an error.
func Run(ctx context.Context, cfg psrs.Config, log *zap.Logger) (Report, error) {
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	global := Generate(cfg.Length, cfg.Seed)
	return RunInput(ctx, cfg, global, log)
}

// RunInput is Run with a caller supplied input. global is owned by the
// coordinator member for the length of the run.
func RunInput(ctx context.Context, cfg psrs.Config, global []int64, log *zap.Logger) (Report, error) {
	cfg.Length = len(global)
	if err := cfg.Validate(); err != nil {
		return Report{}, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	ref := Reference(global)

	hub, err := group.New(cfg.Procs, log.Named("group"))
	if err != nil {
		return Report{}, err
	}

	rep := Report{Procs: cfg.Procs, Length: cfg.Length}

	err = group.Launch(ctx, hub, func(ctx context.Context, comm group.Comm) error {
		a := group.NewAdapter[int64](comm, rwutils.I64{})
		s := psrs.NewSorter(a, cfg.Root, log.Named("psrs"))

		if !s.Coordinator() {
			_, err := s.Sort(ctx, nil)
			return err
		}

		start := a.Wtime()
		out, err := s.Sort(ctx, global)
		if err != nil {
			return err
		}
		rep.Elapsed = a.Wtime() - start
		rep.Output = out
		rep.Correct = Verify(out, ref)
		return nil
	})
	if err != nil {
		return Report{}, errs.Wrap(err)
	}

	if !rep.Correct {
		log.Error("sorted output does not match reference",
			zap.Int("procs", rep.Procs),
			zap.Int("length", rep.Length),
			zap.Int("got", len(rep.Output)))
	} else {
		log.Info("run complete",
			zap.Int("procs", rep.Procs),
			zap.Int("length", rep.Length),
			zap.Duration("elapsed", rep.Elapsed))
	}

	return rep, nil
}
