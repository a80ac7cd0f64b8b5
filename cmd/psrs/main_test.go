package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/zeebo/assert"

	"github.com/histdb/psrs"
)

func TestParseFlags(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, verbose, err := parseFlags([]string{"-l", "1000"})
		assert.NoError(t, err)
		assert.That(t, !verbose)
		assert.Equal(t, cfg, psrs.Config{Procs: 1, Length: 1000, Seed: psrs.DefaultSeed})
	})

	t.Run("Long", func(t *testing.T) {
		cfg, verbose, err := parseFlags([]string{"-length", "0", "-procs", "4", "-root", "3", "-seed", "7", "-v"})
		assert.NoError(t, err)
		assert.That(t, verbose)
		assert.Equal(t, cfg, psrs.Config{Procs: 4, Length: 0, Seed: 7, Root: 3})
	})

	t.Run("MissingLength", func(t *testing.T) {
		_, _, err := parseFlags([]string{"-n", "4"})
		assert.Error(t, err)
		assert.That(t, strings.Contains(err.Error(), "-l is required"))
		assert.That(t, !errors.Is(err, psrs.ErrConfig))
	})

	t.Run("Invalid", func(t *testing.T) {
		_, _, err := parseFlags([]string{"-l", "-1"})
		assert.That(t, errors.Is(err, psrs.ErrConfig))

		_, _, err = parseFlags([]string{"-l", "10", "-n", "2", "-root", "2"})
		assert.That(t, errors.Is(err, psrs.ErrConfig))
	})
}
