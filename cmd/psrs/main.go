// Psrs sorts a generated sequence with Parallel Sorting by Regular Sampling
// over an in-process group and prints the elapsed seconds and whether the
// output matched a reference sort.
//
// Usage:
//
//	psrs -l 1000000 -n 8
//
// Flags:
//
//	-l, -length  Number of elements to sort (required)
//	-n, -procs   Number of group members (default: 1)
//	-seed        Seed for the generated input (default: 666)
//	-root        Rank of the coordinator (default: 0)
//	-v           Debug logging to stderr
//
// The only line written to stdout is "<seconds> <True|False>".
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/zeebo/errs/v2"
	"go.uber.org/zap"

	"github.com/histdb/psrs"
	"github.com/histdb/psrs/coord"
)

func main() {
	cfg, verbose, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}

	log, lerr := newLogger(verbose)
	if lerr != nil {
		fmt.Fprintln(os.Stderr, lerr)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err != nil {
		log.Error("bad invocation", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := coord.Run(ctx, cfg, log)
	if err != nil {
		log.Error("run failed", zap.Error(err))
		os.Exit(1)
	}

	fmt.Println(rep)
}

func parseFlags(args []string) (cfg psrs.Config, verbose bool, err error) {
	cfg = psrs.DefaultConfig()
	cfg.Length = -1

	fs := flag.NewFlagSet("psrs", flag.ContinueOnError)
	fs.IntVar(&cfg.Length, "l", cfg.Length, "number of elements to sort")
	fs.IntVar(&cfg.Length, "length", cfg.Length, "number of elements to sort")
	fs.IntVar(&cfg.Procs, "n", cfg.Procs, "number of group members")
	fs.IntVar(&cfg.Procs, "procs", cfg.Procs, "number of group members")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "seed for the generated input")
	fs.IntVar(&cfg.Root, "root", cfg.Root, "rank of the coordinator")
	fs.BoolVar(&verbose, "v", false, "debug logging to stderr")
	if err := fs.Parse(args); err != nil {
		return cfg, verbose, err
	}

	set := false
	fs.Visit(func(f *flag.Flag) { set = set || f.Name == "l" || f.Name == "length" })
	if !set {
		fs.Usage()
		return cfg, verbose, errs.Errorf("-l is required")
	}
	if err := cfg.Validate(); err != nil {
		fs.Usage()
		return cfg, verbose, err
	}
	return cfg, verbose, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return zc.Build()
}
