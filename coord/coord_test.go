package coord

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aclements/go-perfevent/perfbench"
	"github.com/zeebo/assert"

	"github.com/histdb/psrs"
)

func TestGenerate(t *testing.T) {
	a, b := Generate(1000, 7), Generate(1000, 7)
	assert.DeepEqual(t, a, b)
	assert.That(t, !slices.Equal(a, Generate(1000, 8)))

	for _, v := range a {
		assert.That(t, v >= 0 && v <= MaxValue)
	}
	assert.Equal(t, len(Generate(0, 1)), 0)
}

func TestVerify(t *testing.T) {
	ref := []int64{1, 2, 3}
	assert.That(t, Verify([]int64{1, 2, 3}, ref))
	assert.That(t, !Verify([]int64{1, 3, 2}, ref))
	assert.That(t, !Verify([]int64{1, 2}, ref))
	assert.That(t, Verify(nil, []int64{}))

	out := []int64{3, 1}
	assert.Equal(t, Verify(out, ref), Verify(out, ref))
}

func TestReport(t *testing.T) {
	line := Report{Elapsed: 1500 * time.Millisecond, Correct: true}.String()
	assert.Equal(t, line, "1.5 True")
	assert.Equal(t, Report{}.String(), "0 False")

	fields := strings.Fields(Report{Elapsed: 1234567 * time.Nanosecond}.String())
	assert.Equal(t, len(fields), 2)
	_, err := strconv.ParseFloat(fields[0], 64)
	assert.NoError(t, err)
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	t.Run("Matrix", func(t *testing.T) {
		for _, p := range []int{1, 2, 4, 8} {
			for _, n := range []int{0, 1, p - 1, p, p + 1, 10000} {
				rep, err := Run(ctx, psrs.Config{Procs: p, Length: n, Seed: psrs.DefaultSeed}, nil)
				assert.NoError(t, err)
				assert.That(t, rep.Correct)
				assert.Equal(t, len(rep.Output), n)
				assert.Equal(t, rep.Procs, p)
			}
		}
	})

	t.Run("Scenario", func(t *testing.T) {
		input := []int64{9, 2, 7, 4, 1, 8, 6, 3, 11, 0, 10, 5}
		rep, err := RunInput(ctx, psrs.Config{Procs: 3}, input, nil)
		assert.NoError(t, err)
		assert.That(t, rep.Correct)
		assert.DeepEqual(t, rep.Output, []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11})
		assert.DeepEqual(t, input, []int64{9, 2, 7, 4, 1, 8, 6, 3, 11, 0, 10, 5})
	})

	t.Run("SingleMatchesPlainSort", func(t *testing.T) {
		rep, err := Run(ctx, psrs.Config{Procs: 1, Length: 2000, Seed: 3}, nil)
		assert.NoError(t, err)
		assert.DeepEqual(t, rep.Output, Reference(Generate(2000, 3)))
	})

	t.Run("Config", func(t *testing.T) {
		for _, cfg := range []psrs.Config{
			{Procs: 0, Length: 10},
			{Procs: 2, Length: -5},
			{Procs: 2, Length: 5, Root: 9},
		} {
			_, err := Run(ctx, cfg, nil)
			assert.That(t, errors.Is(err, psrs.ErrConfig))
		}
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Run(ctx, psrs.Config{Procs: 4, Length: 100}, nil)
		assert.That(t, errors.Is(err, context.Canceled))
	})
}

func BenchmarkRun(b *testing.B) {
	run := func(b *testing.B, p, n int) {
		global := Generate(n, psrs.DefaultSeed)
		cfg := psrs.Config{Procs: p}

		perfbench.Open(b)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			rep, err := RunInput(context.Background(), cfg, global, nil)
			assert.NoError(b, err)
			assert.That(b, rep.Correct)
		}

		b.ReportMetric(float64(b.Elapsed().Nanoseconds())/float64(b.N*n), "ns/elem")
	}

	for _, p := range []int{1, 2, 4, 8} {
		b.Run(strconv.Itoa(p), func(b *testing.B) { run(b, p, 1<<18) })
	}
}
