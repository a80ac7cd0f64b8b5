// Psrsbench runs the sort over a matrix of group sizes and input lengths,
// averages the elapsed time over several runs and prints the speedup over a
// single member group.
//
// Usage:
//
//	psrsbench -runs 10 -lengths 1000,10000,100000 -procs 1,2,4,8,16
//
// Each line of output is "<procs> <length> : <avg seconds> <speedup> <status>"
// where status is "correct" when every run matched the reference sort.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/errs/v2"
	"go.uber.org/zap"

	"github.com/histdb/psrs"
	"github.com/histdb/psrs/coord"
)

func main() {
	runs := flag.Int("runs", 10, "runs to average per cell")
	lengths := flag.String("lengths", "1000,10000,100000,1000000", "comma separated input lengths")
	procs := flag.String("procs", "1,2,4,8,16", "comma separated group sizes")
	seed := flag.Uint64("seed", psrs.DefaultSeed, "seed for the generated input")
	flag.Parse()

	log, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ls, err := parseInts(*lengths)
	if err != nil {
		log.Fatal("bad lengths", zap.Error(err))
	}
	ps, err := parseInts(*procs)
	if err != nil {
		log.Fatal("bad procs", zap.Error(err))
	}
	if *runs <= 0 {
		log.Fatal("runs must be positive", zap.Int("runs", *runs))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, length := range ls {
		var serial time.Duration
		for _, p := range ps {
			cfg := psrs.Config{Procs: p, Length: length, Seed: *seed}

			avg, correct, err := cell(ctx, cfg, *runs)
			if err != nil {
				log.Fatal("run failed", zap.Int("procs", p), zap.Int("length", length), zap.Error(err))
			}

			if p == 1 || serial == 0 {
				serial = avg
			}

			status := "correct"
			if !correct {
				status = "incorrect"
			}

			fmt.Println(p, length, ":", avg.Seconds(), speedup(serial, avg), status)
		}
	}
}

// cell averages runs of cfg and reports whether every run was correct.
func cell(ctx context.Context, cfg psrs.Config, runs int) (time.Duration, bool, error) {
	var total time.Duration
	correct := true
	for range runs {
		rep, err := coord.Run(ctx, cfg, nil)
		if err != nil {
			return 0, false, err
		}
		total += rep.Elapsed
		correct = correct && rep.Correct
	}
	return total / time.Duration(runs), correct, nil
}

func speedup(serial, avg time.Duration) float64 {
	if avg <= 0 {
		return 0
	}
	return serial.Seconds() / avg.Seconds()
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, errs.Errorf("parsing %q: %w", f, err)
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, errs.Errorf("empty list: %q", s)
	}
	return out, nil
}
