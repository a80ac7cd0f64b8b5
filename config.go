package psrs

import (
	"errors"

	"github.com/zeebo/errs/v2"
)

// ErrConfig is wrapped by every configuration error.
var ErrConfig = errors.New("invalid configuration")

const DefaultSeed = 666

// Config parameterizes one run: Procs members sort Length elements generated
// from Seed, with Root acting as the coordinator.
type Config struct {
	Procs  int
	Length int
	Seed   uint64
	Root   int
}

func DefaultConfig() Config {
	return Config{Procs: 1, Seed: DefaultSeed}
}

// Validate fails fast on configurations no run could complete.
func (c Config) Validate() error {
	switch {
	case c.Procs <= 0:
		return errs.Errorf("%w: process count must be positive: %d", ErrConfig, c.Procs)
	case c.Length < 0:
		return errs.Errorf("%w: length must not be negative: %d", ErrConfig, c.Length)
	case c.Root < 0 || c.Root >= c.Procs:
		return errs.Errorf("%w: root %d out of range [0, %d)", ErrConfig, c.Root, c.Procs)
	}
	return nil
}
