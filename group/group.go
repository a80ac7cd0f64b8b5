// Package group provides the blocking collective operations a fixed size
// process group uses to cooperate: scatter, gather, broadcast, all-to-all and
// barrier. Every member must issue the same collectives in the same order.
//
// Comm moves opaque frames. Adapter layers element codecs on top so callers
// work with typed slices.
package group

import (
	"context"
	"errors"
	"time"
)

// ErrProtocol is wrapped by every misuse of a collective: wrong chunk
// counts, a root out of range, or members disagreeing on which collective
// they are in.
var ErrProtocol = errors.New("collective protocol violation")

// Comm is one member's handle on the group. All collectives block until
// every member has entered the matching call.
type Comm interface {
	Rank() int
	Size() int

	// Scatter delivers chunks[i] from root to member i. chunks is only read
	// on root.
	Scatter(ctx context.Context, root int, chunks [][]byte) ([]byte, error)

	// Gather collects one frame from every member on root, indexed by rank.
	// Non-root members get nil.
	Gather(ctx context.Context, root int, frame []byte) ([][]byte, error)

	// Bcast replicates root's frame to every member.
	Bcast(ctx context.Context, root int, frame []byte) ([]byte, error)

	// AllToAll sends chunks[i] to member i and returns the chunk every
	// member sent to this one, indexed by source rank.
	AllToAll(ctx context.Context, chunks [][]byte) ([][]byte, error)

	Barrier(ctx context.Context) error

	// Wtime is a monotonic clock shared by the group. It does not
	// synchronize.
	Wtime() time.Duration
}
